package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/nguyentantai21042004/medscribe/internal/config"
	"github.com/nguyentantai21042004/medscribe/internal/export"
	"github.com/nguyentantai21042004/medscribe/internal/processor"
	"github.com/nguyentantai21042004/medscribe/internal/watcher"
)

const settleDelay = 500 * time.Millisecond

func runWatch(ctx context.Context, args []string) error {
	fs, g := newFlagSet("watch")
	scanExisting := fs.Bool("scan-existing", true, "process recordings already in the input folder")
	noSummary := fs.Bool("no-summary", false, "transcribe only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, err := g.load()
	if err != nil {
		return err
	}

	log.Info(ctx, "========================================")
	log.Info(ctx, "Medical Transcription Assistant")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "CPU Cores: %d", runtime.NumCPU())
	log.Info(ctx, "Max Concurrent Processing: %d", cfg.Performance.MaxConcurrent)

	if err := ensureDirectories(cfg); err != nil {
		return err
	}

	proc, err := newProcessor(cfg, !*noSummary, log)
	if err != nil {
		return err
	}

	w, err := watcher.New(watcher.Options{
		InputDir:      cfg.Paths.Input,
		MaxConcurrent: cfg.Performance.MaxConcurrent,
		SettleDelay:   settleDelay,
		ScanExisting:  *scanExisting,
	}, proc.Process, log)
	if err != nil {
		return err
	}
	defer w.Stop()

	log.Info(ctx, "========================================")
	log.Info(ctx, "Monitoring: %s", cfg.Paths.Input)
	log.Info(ctx, "Output: %s", cfg.Paths.Output)
	log.Info(ctx, "  - Whisper: %d threads, language %q", cfg.Whisper.Threads, cfg.Whisper.Language)
	log.Info(ctx, "  - Diarization: %t", cfg.Diarization.Enabled)
	log.Info(ctx, "  - Summary: %s via %s (%s)", cfg.Summary.Mode, cfg.LLM.Provider, cfg.SummaryModel())
	log.Info(ctx, "Press Ctrl+C to stop")
	log.Info(ctx, "========================================")

	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watcher: %w", err)
	}

	log.Info(ctx, "Shutting down gracefully...")
	return nil
}

func runProcess(ctx context.Context, args []string) error {
	fs, g := newFlagSet("process")
	input := fs.StringP("input", "i", "", "audio recording to process")
	noSummary := fs.Bool("no-summary", false, "transcribe only")
	keep := fs.Bool("keep", false, "do not move the recording to the archived folder")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("process: --input is required")
	}

	cfg, log, err := g.load()
	if err != nil {
		return err
	}
	if *keep {
		// Archiving into the recording's own folder leaves it in place.
		cfg.Paths.Archived = filepath.Dir(*input)
	}

	proc, err := newProcessor(cfg, !*noSummary, log)
	if err != nil {
		return err
	}

	out, err := proc.Run(ctx, *input)
	if err != nil {
		return err
	}

	fmt.Printf("Transcript: %s\n", out.TranscriptPath)
	if out.SummaryPath != "" {
		fmt.Printf("Summary:    %s\n", out.SummaryPath)
	}
	if out.ReportPath != "" {
		fmt.Printf("Report:     %s\n", out.ReportPath)
	}
	return nil
}

func runSummarize(ctx context.Context, args []string) error {
	fs, g := newFlagSet("summarize")
	input := fs.StringP("input", "i", "", "transcript text file")
	output := fs.StringP("output", "o", "", "summary file (default: summary.txt next to the input)")
	mode := fs.String("mode", "", "override summary.mode (direct or chunked)")
	chunkSize := fs.Int("chunk-size", 0, "override summary.chunk_size")
	overlap := fs.Int("overlap", -1, "override summary.overlap")
	workers := fs.Int("workers", 0, "override performance.summary_workers")
	apiMode := fs.String("api-mode", "", "override llm.api_mode (auto, chat, completions)")
	model := fs.String("model", "", "override llm.model")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("summarize: --input is required")
	}

	cfg, log, err := g.load()
	if err != nil {
		return err
	}
	if err := applySummaryOverrides(cfg, *mode, *chunkSize, *overlap, *workers, *apiMode, *model); err != nil {
		return err
	}

	text, err := os.ReadFile(*input)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	sum, err := newSummarizer(cfg, log)
	if err != nil {
		return err
	}

	outPath := *output
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(*input), "summary.txt")
	}

	res, err := sum.Summarize(ctx, string(text), processor.ChunkConfig(cfg), processor.LLMConfig(cfg))
	if err != nil {
		if len(res.PartialSummaries) > 0 {
			partial := strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".partial" + filepath.Ext(outPath)
			content := "INCOMPLETE SUMMARY\n\n" + strings.Join(res.PartialSummaries, "\n\n")
			if werr := export.WriteSummaryText(partial, content); werr == nil {
				fmt.Fprintf(os.Stderr, "Partial summaries saved to %s\n", partial)
			}
		}
		return err
	}

	if err := export.WriteSummaryText(outPath, res.FinalSummary); err != nil {
		return err
	}
	fmt.Printf("Summary (%s, %d tokens, %d chunks): %s\n", res.Strategy, res.TotalTokens, res.Chunks, outPath)
	return nil
}

// applySummaryOverrides applies command-line overrides and re-validates.
func applySummaryOverrides(cfg *config.Config, mode string, chunkSize, overlap, workers int, apiMode, model string) error {
	if mode != "" {
		cfg.Summary.Mode = mode
	}
	if chunkSize != 0 {
		cfg.Summary.ChunkSize = chunkSize
	}
	if overlap >= 0 {
		cfg.Summary.Overlap = &overlap
	}
	if workers != 0 {
		cfg.Performance.SummaryWorkers = workers
	}
	if apiMode != "" {
		cfg.LLM.APIMode = apiMode
	}
	if model != "" {
		cfg.LLM.Model = model
	}
	return cfg.Validate()
}

func runStatus(ctx context.Context, args []string) error {
	fs, g := newFlagSet("status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, err := g.load()
	if err != nil {
		return err
	}

	if cfg.LLM.Provider == config.ProviderGemini {
		fmt.Printf("Provider: gemini (%s), %d API key(s)\n", cfg.LLM.GeminiModel, len(cfg.LLM.GeminiAPIKeys))
		return nil
	}

	client := newLMStudio(cfg, log)
	status := client.Status(ctx)
	fmt.Printf("LM Studio %s: %s\n", cfg.LLM.BaseURL, status)
	for _, m := range status.Models {
		marker := " "
		if m == cfg.LLM.Model {
			marker = "*"
		}
		fmt.Printf(" %s %s\n", marker, m)
	}
	if !status.Reachable {
		return fmt.Errorf("server unreachable: %w", status.Err)
	}
	if cfg.LLM.Model != "" && !slices.Contains(status.Models, cfg.LLM.Model) {
		fmt.Printf("Configured model %q is not loaded\n", cfg.LLM.Model)
	}
	return nil
}

func runClean(ctx context.Context, args []string) error {
	fs, g := newFlagSet("clean")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, log, err := g.load()
	if err != nil {
		return err
	}

	n, err := processor.CleanTempFiles(cfg.Paths.Temp)
	if err != nil {
		return err
	}
	log.Info(ctx, "Removed %d temporary file(s) from %s", n, cfg.Paths.Temp)
	return nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(cfg *config.Config) error {
	dirs := []string{
		cfg.Paths.Input,
		cfg.Paths.Output,
		cfg.Paths.Archived,
		cfg.Paths.Temp,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
