package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"docrank/internal/config"
	"docrank/internal/embedding"
	"docrank/internal/output"
	"docrank/internal/pipeline"
	"github.com/joho/godotenv"
)

// collectionInput is the collection definition read from the -input JSON
// file: the document list plus the persona and task to rank against.
type collectionInput struct {
	Documents []struct {
		Filename string `json:"filename"`
		Title    string `json:"title"`
	} `json:"documents"`
	Persona struct {
		Role string `json:"role"`
	} `json:"persona"`
	JobToBeDone struct {
		Task string `json:"task"`
	} `json:"job_to_be_done"`
}

func main() {
	_ = godotenv.Load()

	var (
		inputPath   = flag.String("input", "", "path to the collection input JSON")
		docsDir     = flag.String("docs", "", "directory containing the documents (default: directory of -input)")
		outputPath  = flag.String("output", "output.json", "path to write the ranked result JSON")
		configPath  = flag.String("config", "", "optional YAML config file")
		topSections = flag.Int("top-sections", 0, "number of sections to keep (overrides config)")
		topChunks   = flag.Int("top-chunks", 0, "number of chunk scores averaged per section (overrides config)")
		verbose     = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: docrank -input collection.json [-docs dir] [-output output.json]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()
	if *configPath != "" {
		if err := cfg.ApplyFile(*configPath); err != nil {
			log.Error("failed to load config file", "path", *configPath, "error", err)
			os.Exit(1)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	input, err := readInput(*inputPath)
	if err != nil {
		log.Error("failed to read input", "path", *inputPath, "error", err)
		os.Exit(1)
	}
	if input.Persona.Role == "" || input.JobToBeDone.Task == "" {
		log.Error("input must define persona.role and job_to_be_done.task")
		os.Exit(1)
	}

	dir := *docsDir
	if dir == "" {
		dir = filepath.Dir(*inputPath)
	}

	var files []pipeline.InputFile
	for _, d := range input.Documents {
		data, err := os.ReadFile(filepath.Join(dir, d.Filename))
		if err != nil {
			log.Warn("skipping unreadable document", "filename", d.Filename, "error", err)
			continue
		}
		files = append(files, pipeline.InputFile{Name: d.Filename, Data: data})
	}
	if len(files) == 0 {
		log.Error("no readable documents", "dir", dir)
		os.Exit(1)
	}

	emb, err := embedding.NewFromConfig(cfg)
	if err != nil {
		log.Error("failed to create embedder", "error", err)
		os.Exit(1)
	}
	stats := embedding.NewStats(15 * time.Minute)

	orch := pipeline.NewOrchestrator(cfg, embedding.Instrument(emb, stats), log)

	start := time.Now()
	res, docErrs, err := orch.Run(context.Background(), pipeline.CollectionRequest{
		Persona:     input.Persona.Role,
		Task:        input.JobToBeDone.Task,
		Files:       files,
		TopSections: *topSections,
		TopChunks:   *topChunks,
	})
	for _, de := range docErrs {
		log.Warn("document failed", "error", de)
	}
	if err != nil {
		log.Error("collection run failed", "error", err)
		os.Exit(1)
	}

	if err := output.WriteFile(*outputPath, res); err != nil {
		log.Error("failed to write result", "path", *outputPath, "error", err)
		os.Exit(1)
	}

	log.Info("collection ranked",
		"documents", len(files),
		"failed", len(docErrs),
		"sections", len(res.ExtractedSections),
		"output", *outputPath,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func readInput(path string) (*collectionInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in collectionInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &in, nil
}
