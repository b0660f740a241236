package chunker

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/medscribe/internal/apperrors"
)

// Validate checks that cfg can produce windows.
func (cfg Config) Validate() error {
	if cfg.MaxTokens <= 0 {
		return apperrors.NewConfigurationError("max_tokens", fmt.Sprintf("must be positive, got %d", cfg.MaxTokens))
	}
	if cfg.Overlap < 0 {
		return apperrors.NewConfigurationError("overlap", fmt.Sprintf("must not be negative, got %d", cfg.Overlap))
	}
	return nil
}

// Window is a [Start, End) range of token positions.
type Window struct {
	Start int
	End   int
}

// Windows computes the chunk boundaries for n tokens. The next window starts
// overlap tokens before the previous end; when that would not move past the
// previous start (overlap >= maxTokens) it starts at the previous end instead.
func Windows(n int, cfg Config) ([]Window, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var windows []Window
	start := 0
	for start < n {
		end := min(start+cfg.MaxTokens, n)
		windows = append(windows, Window{Start: start, End: end})
		if end >= n {
			break
		}

		next := end - cfg.Overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return windows, nil
}

// Split encodes text, cuts the sequence into windows and decodes each window
// with the same backend.
func (c *implChunker) Split(ctx context.Context, text string, cfg Config) ([]Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seq := c.tokenizer.Encode(ctx, text)
	if seq.Len() == 0 {
		return nil, nil
	}

	windows, err := Windows(seq.Len(), cfg)
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(windows))
	for i, w := range windows {
		chunks = append(chunks, Chunk{
			Index: i + 1,
			Total: len(windows),
			Start: w.Start,
			End:   w.End,
			Text:  c.tokenizer.Decode(seq.Slice(w.Start, w.End)),
		})
	}

	c.logger.Debug(ctx, "Split %d %s tokens into %d chunks (max %d, overlap %d)",
		seq.Len(), seq.Backend, len(chunks), cfg.MaxTokens, cfg.Overlap)
	return chunks, nil
}
