// Package tokenizer converts text to token sequences and back using one of a
// closed set of backends: a model-matched HuggingFace tokenizer, tiktoken's
// cl100k_base encoding, or a whitespace split used when nothing else loads.
package tokenizer

import (
	"context"
	"fmt"
	"strings"
)

// Backend identifies a tokenizer implementation.
type Backend string

const (
	// BackendHuggingFace is the precise backend, matched to the summarization model.
	BackendHuggingFace Backend = "huggingface"
	// BackendTiktoken is the approximate backend (cl100k_base).
	BackendTiktoken Backend = "tiktoken"
	// BackendWhitespace treats every whitespace-delimited word as one token.
	BackendWhitespace Backend = "whitespace"
)

// ParseBackend maps a configuration value onto a Backend.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendHuggingFace, "hf", "":
		return BackendHuggingFace, nil
	case BackendTiktoken:
		return BackendTiktoken, nil
	case BackendWhitespace:
		return BackendWhitespace, nil
	default:
		return "", fmt.Errorf("unknown tokenizer backend: %s", s)
	}
}

// Codec is a loaded tokenizer able to encode and decode token ids.
type Codec interface {
	Encode(text string) ([]int, error)
	Decode(ids []int) string
}

// Tokenizer is the backend-agnostic contract used by the chunker and the summarizer.
type Tokenizer interface {
	// Encode never fails: when the configured backend cannot be used it logs a
	// warning and falls back to the next one. Empty text gives an empty Sequence.
	Encode(ctx context.Context, text string) Sequence
	// Decode maps a Sequence (or a Slice of one) back to text with the backend
	// that produced it.
	Decode(seq Sequence) string
	// Count returns the number of tokens in text.
	Count(ctx context.Context, text string) int
}

// Sequence is an ordered run of token ids produced by exactly one backend.
type Sequence struct {
	Backend Backend
	Model   string
	IDs     []int

	source string
	offset int
	total  int
}

// Len returns the number of tokens.
func (s Sequence) Len() int {
	return len(s.IDs)
}

// Slice returns the sub-sequence [start, end). Bounds are clamped.
func (s Sequence) Slice(start, end int) Sequence {
	if start < 0 {
		start = 0
	}
	if end > len(s.IDs) {
		end = len(s.IDs)
	}
	if start > end {
		start = end
	}
	return Sequence{
		Backend: s.Backend,
		Model:   s.Model,
		IDs:     s.IDs[start:end],
		source:  s.source,
		offset:  s.offset + start,
		total:   s.total,
	}
}
