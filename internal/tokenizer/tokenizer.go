package tokenizer

import (
	"context"
	"math"
	"strings"

	"github.com/nguyentantai21042004/medscribe/internal/apperrors"
)

const tiktokenCacheKey = "tiktoken:" + TiktokenEncoding

// Encode converts text into a Sequence, falling back from the precise backend to
// tiktoken and then to whitespace splitting.
func (t *implTokenizer) Encode(ctx context.Context, text string) Sequence {
	if text == "" {
		return Sequence{Backend: t.backend, Model: t.model}
	}

	backend := t.backend
	if backend == BackendHuggingFace {
		ids, err := t.encodeHuggingFace(text)
		if err == nil {
			return t.sequence(BackendHuggingFace, t.model, ids, text)
		}
		t.logger.Warn(ctx, "Precise tokenizer unavailable, falling back to tiktoken: %v", err)
		backend = BackendTiktoken
	}

	if backend == BackendTiktoken {
		ids, err := t.encodeTiktoken(text)
		if err == nil {
			return t.sequence(BackendTiktoken, TiktokenEncoding, ids, text)
		}
		t.logger.Warn(ctx, "tiktoken unavailable, falling back to whitespace split: %v", err)
	}

	words := strings.Fields(text)
	ids := make([]int, len(words))
	for i := range ids {
		ids[i] = i
	}
	return t.sequence(BackendWhitespace, "", ids, text)
}

// Decode maps seq back to text with the backend that encoded it.
func (t *implTokenizer) Decode(seq Sequence) string {
	if len(seq.IDs) == 0 {
		return ""
	}

	switch seq.Backend {
	case BackendHuggingFace:
		codec, err := t.cache.Get(seq.Model, func() (Codec, error) { return t.hfLoad(seq.Model) })
		if err == nil {
			return codec.Decode(seq.IDs)
		}
	case BackendTiktoken:
		codec, err := t.cache.Get(tiktokenCacheKey, func() (Codec, error) { return t.tikLoad(TiktokenEncoding) })
		if err == nil {
			return codec.Decode(seq.IDs)
		}
	}

	return proportionalWords(seq)
}

// Count returns len(Encode(text)).
func (t *implTokenizer) Count(ctx context.Context, text string) int {
	return t.Encode(ctx, text).Len()
}

func (t *implTokenizer) encodeHuggingFace(text string) ([]int, error) {
	codec, err := t.cache.Get(t.model, func() (Codec, error) { return t.hfLoad(t.model) })
	if err != nil {
		return nil, &apperrors.TokenizerLoadError{Model: t.model, Err: err}
	}
	ids, err := codec.Encode(text)
	if err != nil {
		return nil, &apperrors.TokenizerLoadError{Model: t.model, Err: err}
	}
	return ids, nil
}

func (t *implTokenizer) encodeTiktoken(text string) ([]int, error) {
	codec, err := t.cache.Get(tiktokenCacheKey, func() (Codec, error) { return t.tikLoad(TiktokenEncoding) })
	if err != nil {
		return nil, &apperrors.TokenizerLoadError{Model: TiktokenEncoding, Err: err}
	}
	return codec.Encode(text)
}

func (t *implTokenizer) sequence(backend Backend, model string, ids []int, text string) Sequence {
	return Sequence{
		Backend: backend,
		Model:   model,
		IDs:     ids,
		source:  text,
		total:   len(ids),
	}
}

// proportionalWords approximates the text of a token window by taking the same
// proportion of the source's whitespace-split words. Words are re-joined with a
// single space, so original spacing and line breaks are lost. For whitespace
// sequences the mapping is one word per token and the word count is exact.
func proportionalWords(seq Sequence) string {
	words := strings.Fields(seq.source)
	if len(words) == 0 || seq.total == 0 {
		return ""
	}

	ratio := float64(len(words)) / float64(seq.total)
	start := int(math.Round(float64(seq.offset) * ratio))
	end := int(math.Round(float64(seq.offset+len(seq.IDs)) * ratio))
	if end > len(words) {
		end = len(words)
	}
	if end <= start {
		end = start + 1
	}
	if start >= len(words) {
		return ""
	}
	return strings.Join(words[start:end], " ")
}
