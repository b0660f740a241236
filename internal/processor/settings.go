package processor

import (
	"context"

	"github.com/nguyentantai21042004/medscribe/internal/config"
	"github.com/nguyentantai21042004/medscribe/internal/llm"
	"github.com/nguyentantai21042004/medscribe/internal/logger"
	"github.com/nguyentantai21042004/medscribe/internal/summarizer"
)

// ChunkConfig derives the summarizer's chunk settings from a validated config.
func ChunkConfig(cfg *config.Config) summarizer.ChunkConfig {
	return summarizer.ChunkConfig{
		Mode:              summarizer.Strategy(cfg.Summary.Mode),
		MaxTokensPerChunk: cfg.Summary.ChunkSize,
		Overlap:           *cfg.Summary.Overlap,
		Workers:           cfg.Performance.SummaryWorkers,
	}
}

// LLMConfig derives the per-call LLM settings from a validated config.
func LLMConfig(cfg *config.Config) summarizer.LLMConfig {
	return summarizer.LLMConfig{
		Model:           cfg.SummaryModel(),
		SystemPrompt:    cfg.Summary.SystemPrompt,
		UserPrompt:      cfg.Summary.UserPrompt,
		Temperature:     *cfg.Summary.Temperature,
		MaxOutputTokens: cfg.Summary.MaxOutputTokens,
		APIMode:         llm.Mode(cfg.LLM.APIMode),
	}
}

// NewLogReporter returns a summarizer.Reporter that logs progress.
func NewLogReporter(log logger.Logger) summarizer.Reporter {
	return summarizer.ReporterFunc(func(ctx context.Context, p summarizer.Progress) {
		log.Info(ctx, "Summary progress: %s", p)
	})
}
