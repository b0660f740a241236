// Package chunker splits text into overlapping, token-bounded windows.
package chunker

import "context"

// Config bounds the windows produced by a Chunker.
type Config struct {
	MaxTokens int // maximum tokens per chunk, must be positive
	Overlap   int // tokens shared by consecutive chunks, must not be negative
}

// Chunk is one window of the encoded text, [Start, End) in token positions.
type Chunk struct {
	Index int // 1-based position in document order
	Total int
	Start int
	End   int
	Text  string
}

// Tokens returns the number of tokens in the chunk.
func (c Chunk) Tokens() int {
	return c.End - c.Start
}

// Chunker splits text into chunks in document order.
type Chunker interface {
	Split(ctx context.Context, text string, cfg Config) ([]Chunk, error)
}
