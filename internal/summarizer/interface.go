package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/nguyentantai21042004/medscribe/internal/chunker"
	"github.com/nguyentantai21042004/medscribe/internal/llm"
)

// Strategy selects how a transcript is summarized.
type Strategy string

const (
	// StrategyDirect sends the whole text in one call.
	StrategyDirect Strategy = "direct"
	// StrategyChunked summarizes token-bounded chunks, then synthesizes.
	// Texts that fit in one chunk are still summarized directly.
	StrategyChunked Strategy = "chunked"
)

// ParseStrategy maps a configuration value onto a Strategy. Empty means direct.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyDirect, "":
		return StrategyDirect, nil
	case StrategyChunked, "chunk", "chunks":
		return StrategyChunked, nil
	default:
		return "", fmt.Errorf("unknown summary mode: %s", s)
	}
}

// ChunkConfig controls the strategy decision and the chunking.
type ChunkConfig struct {
	Mode              Strategy
	MaxTokensPerChunk int
	Overlap           int
	// Workers > 1 summarizes chunks concurrently. Partial summaries keep chunk order.
	Workers int
}

func (c ChunkConfig) chunker() chunker.Config {
	return chunker.Config{MaxTokens: c.MaxTokensPerChunk, Overlap: c.Overlap}
}

// LLMConfig is passed to every summarization and synthesis call.
type LLMConfig struct {
	Model           string
	SystemPrompt    string
	UserPrompt      string
	Temperature     float64
	MaxOutputTokens int
	APIMode         llm.Mode
}

// Result is the outcome of one Summarize call.
type Result struct {
	FinalSummary string
	// PartialSummaries holds the tagged per-chunk summaries in chunk order.
	// Empty for the direct strategy.
	PartialSummaries []string
	// Incomplete is set when a call failed and FinalSummary was not produced.
	Incomplete  bool
	Strategy    Strategy
	TotalTokens int
	Chunks      int
}

// Stage names a step of a summarization run.
type Stage string

const (
	StageDirect    Stage = "direct"
	StageSplit     Stage = "split"
	StageChunk     Stage = "chunk"
	StageSynthesis Stage = "synthesis"
)

// Progress is reported before each step.
type Progress struct {
	Stage Stage
	Chunk int
	Total int
}

func (p Progress) String() string {
	switch p.Stage {
	case StageChunk:
		return fmt.Sprintf("chunk %d/%d", p.Chunk, p.Total)
	case StageSplit:
		return fmt.Sprintf("%d chunks to summarize", p.Total)
	default:
		return string(p.Stage)
	}
}

// Reporter receives progress updates. It must not block.
type Reporter interface {
	Report(ctx context.Context, p Progress)
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(ctx context.Context, p Progress)

// Report calls f.
func (f ReporterFunc) Report(ctx context.Context, p Progress) {
	f(ctx, p)
}

// Summarizer produces a structured summary of a transcript.
type Summarizer interface {
	Summarize(ctx context.Context, text string, chunkCfg ChunkConfig, llmCfg LLMConfig) (Result, error)
}
