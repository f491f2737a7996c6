package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"docrank/internal/config"
	"docrank/internal/document"
	"docrank/internal/embedding"
	"docrank/internal/metrics"
	"docrank/internal/output"
	"docrank/internal/ranking"
)

// CollectionRequest is one complete ranking run: a persona+task query
// and the raw documents to rank it against.
type CollectionRequest struct {
	Persona string
	Task    string
	Files   []InputFile

	// Zero means use the configured default.
	TopSections int
	TopChunks   int
}

// Orchestrator manages collection ranking runs. The CLI calls Run
// directly; the HTTP service submits jobs to a bounded queue consumed
// by collection workers started with Start.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	emb   embedding.Embedder
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, emb embedding.Embedder, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		emb:   emb,
		log:   log,
		cfg:   cfg,
	}
}

// Start launches collection worker goroutines and the job store
// cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.CollectionWorkers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					metrics.DecrementJobsInQueue()
					o.processJob(workerCtx, job)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new collection job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		metrics.IncrementJobsInQueue()
		return nil
	default:
		job.SetStatus(StatusFailed)
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

func (o *Orchestrator) processJob(ctx context.Context, job *Job) {
	metrics.IncrementActiveJobs()
	defer metrics.DecrementActiveJobs()
	start := time.Now()

	log := o.log.With("job_id", job.ID)
	job.SetStatus(StatusProcessing)

	res, docErrs, err := o.Run(ctx, CollectionRequest{
		Persona:     job.Persona,
		Task:        job.Task,
		Files:       job.Files(),
		TopSections: job.TopSections,
		TopChunks:   job.TopChunks,
	})
	for _, de := range docErrs {
		job.AddError(de.Error())
	}

	if err != nil {
		log.Error("collection run failed", "error", err)
		job.SetStatus(StatusFailed)
		metrics.ObserveCollection("failed", time.Since(start))
		return
	}

	job.SetResult(res)
	for range len(job.Files()) - len(docErrs) {
		job.IncrDocumentsProcessed()
	}
	if len(docErrs) > 0 {
		job.SetStatus(StatusPartial)
		metrics.ObserveCollection("partial", time.Since(start))
	} else {
		job.SetStatus(StatusCompleted)
		metrics.ObserveCollection("completed", time.Since(start))
	}
	log.Info("collection run finished",
		"status", job.Snapshot().Status,
		"documents", len(job.Files()),
		"failed", len(docErrs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Run executes one collection ranking end-to-end: embed the query,
// scatter documents across the worker pool, and once every worker has
// returned, rank globally and assemble the result. Per-document
// failures come back in the second return value; the error return is
// fatal for the whole run.
func (o *Orchestrator) Run(ctx context.Context, req CollectionRequest) (*output.ResultDocument, []error, error) {
	topSections := req.TopSections
	if topSections == 0 {
		topSections = o.cfg.TopSections
	}
	topChunks := req.TopChunks
	if topChunks == 0 {
		topChunks = o.cfg.TopChunks
	}

	// Configuration problems abort the run before any work starts.
	engine, err := ranking.NewEngine(topSections, topChunks, o.log)
	if err != nil {
		return nil, nil, err
	}
	if o.emb == nil {
		return nil, nil, embedding.ErrNoEmbedder
	}

	query, err := embedding.EmbedQuery(ctx, o.emb, req.Persona, req.Task)
	if err != nil {
		return nil, nil, err
	}

	// Scatter: each document is parsed and embedded to completion in
	// its own goroutine, bounded by the worker pool size. Gather
	// preserves input order so tie-breaking stays deterministic.
	type docResult struct {
		idx int
		doc *document.Document
		err error
	}
	docs := make([]*document.Document, len(req.Files))
	sem := make(chan struct{}, o.cfg.WorkerCount)
	results := make(chan docResult, len(req.Files))

	for i, f := range req.Files {
		sem <- struct{}{}
		go func(i int, f InputFile) {
			defer func() { <-sem }()
			w := NewWorker(o.emb, o.cfg.ChunkCharBudget, o.log)
			doc, err := w.ProcessDocument(ctx, f.Name, f.Data)
			results <- docResult{idx: i, doc: doc, err: err}
		}(i, f)
	}

	failed := make([]error, len(req.Files))
	nFailed := 0
	for range req.Files {
		r := <-results
		if r.err != nil {
			failed[r.idx] = r.err
			nFailed++
			continue
		}
		docs[r.idx] = r.doc
	}
	var docErrs []error
	for _, e := range failed {
		if e != nil {
			docErrs = append(docErrs, e)
		}
	}

	if len(req.Files) > 0 && nFailed == len(req.Files) {
		return nil, docErrs, fmt.Errorf("all %d documents failed", len(req.Files))
	}

	// Barrier passed: every surviving document is complete and
	// read-only from here on.
	ranked, refined, err := engine.Rank(docs, query)
	if err != nil {
		return nil, docErrs, err
	}

	names := make([]string, 0, len(req.Files))
	for _, f := range req.Files {
		names = append(names, f.Name)
	}
	res, err := output.Assemble(ranked, refined, output.Metadata{
		InputDocuments:      names,
		Persona:             req.Persona,
		JobToBeDone:         req.Task,
		ProcessingTimestamp: time.Now().UTC().Format("2006-01-02T15:04:05"),
	})
	if err != nil {
		return nil, docErrs, err
	}

	metrics.CollectionRanked()
	return res, docErrs, nil
}
