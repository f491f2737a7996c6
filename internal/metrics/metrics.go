package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var documentsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "docrank_documents_processed_total",
	Help: "Documents processed through the pipeline, labelled by outcome",
}, []string{"outcome"})

var collectionsRanked = promauto.NewCounter(prometheus.CounterOpts{
	Name: "docrank_collections_ranked_total",
	Help: "Collections that completed ranking",
})

var jobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "docrank_jobs_in_queue",
	Help: "Collection jobs waiting in the queue",
})

var activeJobs = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "docrank_active_jobs",
	Help: "Collection jobs currently being processed",
})

var embeddingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "docrank_embedding_call_duration_seconds",
	Help:    "Latency of embedding capability calls",
	Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 5, 10},
})

var collectionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "docrank_collection_duration_seconds",
	Help:    "End-to-end duration of a collection run",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60},
}, []string{"status"})

func DocumentProcessed() { documentsProcessed.WithLabelValues("ok").Inc() }
func DocumentFailed()    { documentsProcessed.WithLabelValues("failed").Inc() }
func CollectionRanked()  { collectionsRanked.Inc() }

func IncrementJobsInQueue() { jobsInQueue.Inc() }
func DecrementJobsInQueue() { jobsInQueue.Dec() }
func IncrementActiveJobs()  { activeJobs.Inc() }
func DecrementActiveJobs()  { activeJobs.Dec() }

func ObserveEmbeddingCall(d time.Duration) {
	embeddingLatency.Observe(d.Seconds())
}

func ObserveCollection(status string, d time.Duration) {
	collectionDuration.WithLabelValues(status).Observe(d.Seconds())
}
