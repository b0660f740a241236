package summarizer

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/nguyentantai21042004/medscribe/internal/apperrors"
	"github.com/nguyentantai21042004/medscribe/internal/chunker"
	"github.com/nguyentantai21042004/medscribe/internal/llm"
)

// ChunkError reports the chunk whose summarization call failed.
type ChunkError struct {
	Index int
	Total int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("summarize chunk %d/%d: %v", e.Index, e.Total, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}

// Summarize picks the direct or the chunked strategy and runs it. On a failed
// chunk call the remaining chunks and the synthesis are skipped; the returned
// Result then holds the partial summaries produced so far with Incomplete set.
func (s *implSummarizer) Summarize(ctx context.Context, text string, chunkCfg ChunkConfig, llmCfg LLMConfig) (Result, error) {
	if err := s.validate(chunkCfg, llmCfg); err != nil {
		return Result{}, err
	}

	total := s.tokenizer.Count(ctx, text)
	s.logger.Info(ctx, "Summarizing %d tokens (mode %s, chunk size %d)", total, chunkCfg.Mode, chunkCfg.MaxTokensPerChunk)

	if chunkCfg.Mode != StrategyChunked || total <= chunkCfg.MaxTokensPerChunk {
		return s.direct(ctx, text, total, llmCfg)
	}
	return s.chunked(ctx, text, total, chunkCfg, llmCfg)
}

func (s *implSummarizer) validate(chunkCfg ChunkConfig, llmCfg LLMConfig) error {
	if err := chunkCfg.chunker().Validate(); err != nil {
		return err
	}
	if s.completer == nil {
		return apperrors.NewConfigurationError("llm", "no chat/completion endpoint configured")
	}
	if llmCfg.Model == "" {
		return apperrors.NewConfigurationError("llm.model", "no model selected")
	}
	return nil
}

func (s *implSummarizer) direct(ctx context.Context, text string, total int, llmCfg LLMConfig) (Result, error) {
	s.reporter.Report(ctx, Progress{Stage: StageDirect})

	out, err := s.complete(ctx, llmCfg, directPrompt(llmCfg.UserPrompt, text))
	if err != nil {
		return Result{Strategy: StrategyDirect, TotalTokens: total, Incomplete: true}, err
	}

	return Result{
		FinalSummary:     out,
		PartialSummaries: []string{},
		Strategy:         StrategyDirect,
		TotalTokens:      total,
	}, nil
}

func (s *implSummarizer) chunked(ctx context.Context, text string, total int, chunkCfg ChunkConfig, llmCfg LLMConfig) (Result, error) {
	chunks, err := s.chunker.Split(ctx, text, chunkCfg.chunker())
	if err != nil {
		return Result{}, fmt.Errorf("split text: %w", err)
	}
	s.reporter.Report(ctx, Progress{Stage: StageSplit, Total: len(chunks)})
	s.logger.Info(ctx, "Split into %d chunks", len(chunks))

	var partials []string
	if chunkCfg.Workers > 1 {
		partials, err = s.summarizeConcurrently(ctx, chunks, chunkCfg.Workers, llmCfg)
	} else {
		partials, err = s.summarizeSequentially(ctx, chunks, llmCfg)
	}

	res := Result{
		PartialSummaries: partials,
		Strategy:         StrategyChunked,
		TotalTokens:      total,
		Chunks:           len(chunks),
	}
	if err != nil {
		res.Incomplete = true
		return res, err
	}

	s.reporter.Report(ctx, Progress{Stage: StageSynthesis, Total: len(chunks)})
	final, err := s.complete(ctx, llmCfg, synthesisPrompt(llmCfg.UserPrompt, partials))
	if err != nil {
		res.Incomplete = true
		return res, fmt.Errorf("synthesis: %w", err)
	}

	res.FinalSummary = final
	return res, nil
}

func (s *implSummarizer) summarizeSequentially(ctx context.Context, chunks []chunker.Chunk, llmCfg LLMConfig) ([]string, error) {
	partials := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		out, err := s.summarizeChunk(ctx, ch, llmCfg)
		if err != nil {
			return partials, err
		}
		partials = append(partials, out)
	}
	return partials, nil
}

// summarizeConcurrently runs chunk calls on a bounded pool. Results land in an
// index-ordered buffer; on failure the returned partials are the completed
// prefix in front of the lowest failing chunk.
func (s *implSummarizer) summarizeConcurrently(ctx context.Context, chunks []chunker.Chunk, workers int, llmCfg LLMConfig) ([]string, error) {
	results := make([]string, len(chunks))
	done := make([]bool, len(chunks))
	errs := make([]error, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, ch := range chunks {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			out, err := s.summarizeChunk(gctx, ch, llmCfg)
			if err != nil {
				// Aborted because another chunk failed first.
				if gctx.Err() != nil && errors.Is(err, context.Canceled) {
					return nil
				}
				errs[i] = err
				return err
			}
			results[i] = out
			done[i] = true
			return nil
		})
	}
	waitErr := g.Wait()

	partials := make([]string, 0, len(chunks))
	for i := range chunks {
		if !done[i] {
			break
		}
		partials = append(partials, results[i])
	}
	if len(partials) == len(chunks) {
		return partials, nil
	}

	for _, err := range errs {
		if err != nil {
			return partials, err
		}
	}
	if waitErr != nil {
		return partials, waitErr
	}
	return partials, ctx.Err()
}

func (s *implSummarizer) summarizeChunk(ctx context.Context, ch chunker.Chunk, llmCfg LLMConfig) (string, error) {
	s.reporter.Report(ctx, Progress{Stage: StageChunk, Chunk: ch.Index, Total: ch.Total})
	s.logger.Debug(ctx, "Summarizing chunk %d/%d (%d tokens)", ch.Index, ch.Total, ch.Tokens())

	out, err := s.complete(ctx, llmCfg, chunkPrompt(llmCfg.UserPrompt, ch.Index, ch.Total, ch.Text))
	if err != nil {
		return "", &ChunkError{Index: ch.Index, Total: ch.Total, Err: err}
	}
	return tagPartial(ch.Index, out), nil
}

func (s *implSummarizer) complete(ctx context.Context, llmCfg LLMConfig, prompt string) (string, error) {
	return s.completer.Complete(ctx, llm.Request{
		Model:        llmCfg.Model,
		SystemPrompt: llmCfg.SystemPrompt,
		UserPrompt:   prompt,
		Temperature:  llmCfg.Temperature,
		MaxTokens:    llmCfg.MaxOutputTokens,
		Mode:         llmCfg.APIMode,
	})
}
