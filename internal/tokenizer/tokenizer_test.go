package tokenizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/medscribe/internal/logger"
)

// runeCodec maps every rune to its code point, so decoding is an exact inverse.
type runeCodec struct{}

func (runeCodec) Encode(text string) ([]int, error) {
	ids := make([]int, 0, len(text))
	for _, r := range text {
		ids = append(ids, int(r))
	}
	return ids, nil
}

func (runeCodec) Decode(ids []int) string {
	var b strings.Builder
	for _, id := range ids {
		b.WriteRune(rune(id))
	}
	return b.String()
}

func loaderOK(calls *int) LoaderFunc {
	return func(string) (Codec, error) {
		*calls++
		return runeCodec{}, nil
	}
}

func loaderFail(calls *int) LoaderFunc {
	return func(string) (Codec, error) {
		*calls++
		return nil, errors.New("model not found")
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    Backend
		wantErr bool
	}{
		{"HuggingFace", BackendHuggingFace, false},
		{"hf", BackendHuggingFace, false},
		{"", BackendHuggingFace, false},
		{"tiktoken", BackendTiktoken, false},
		{" Whitespace ", BackendWhitespace, false},
		{"sentencepiece", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBackend(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeEmptyText(t *testing.T) {
	var hf, tik int
	tok := New(Options{HuggingFaceLoader: loaderOK(&hf), TiktokenLoader: loaderOK(&tik)}, logger.NewNop())

	seq := tok.Encode(context.Background(), "")

	assert.Equal(t, 0, seq.Len())
	assert.Equal(t, "", tok.Decode(seq))
	assert.Zero(t, hf, "empty text must not load a tokenizer")
}

func TestPreciseBackendRoundTrip(t *testing.T) {
	var hf, tik int
	tok := New(Options{
		Backend:           BackendHuggingFace,
		Model:             "test/model",
		HuggingFaceLoader: loaderOK(&hf),
		TiktokenLoader:    loaderOK(&tik),
	}, logger.NewNop())
	ctx := context.Background()

	texts := []string{
		"Patient presents with chest pain.",
		"  leading and trailing spaces\n\nand blank lines  ",
		"Tension artérielle 14/9, fréquence 72 bpm.",
	}
	for _, text := range texts {
		seq := tok.Encode(ctx, text)
		assert.Equal(t, BackendHuggingFace, seq.Backend)
		assert.Equal(t, text, tok.Decode(seq))
	}
	assert.Equal(t, 1, hf, "precise tokenizer must be loaded once and cached")
	assert.Zero(t, tik)
}

func TestFallbackToTiktoken(t *testing.T) {
	var hf, tik int
	tok := New(Options{
		Backend:           BackendHuggingFace,
		HuggingFaceLoader: loaderFail(&hf),
		TiktokenLoader:    loaderOK(&tik),
	}, logger.NewNop())
	ctx := context.Background()

	seq := tok.Encode(ctx, "hello world")

	assert.Equal(t, BackendTiktoken, seq.Backend)
	assert.Equal(t, len("hello world"), seq.Len())
	assert.Equal(t, "hello world", tok.Decode(seq))

	tok.Encode(ctx, "again")
	assert.Equal(t, 1, hf, "failed load is cached")
}

func TestFallbackToWhitespace(t *testing.T) {
	var hf, tik int
	tok := New(Options{
		Backend:           BackendHuggingFace,
		HuggingFaceLoader: loaderFail(&hf),
		TiktokenLoader:    loaderFail(&tik),
	}, logger.NewNop())

	seq := tok.Encode(context.Background(), "the  quick\tbrown\nfox")

	assert.Equal(t, BackendWhitespace, seq.Backend)
	assert.Equal(t, 4, seq.Len())
	assert.Equal(t, "the quick brown fox", tok.Decode(seq), "whitespace decode keeps words, not spacing")
}

func TestWhitespaceBackendSlices(t *testing.T) {
	tok := New(Options{Backend: BackendWhitespace}, logger.NewNop())

	seq := tok.Encode(context.Background(), "a b c d e f g h")
	require.Equal(t, 8, seq.Len())

	assert.Equal(t, "a b c", tok.Decode(seq.Slice(0, 3)))
	assert.Equal(t, "c d e f", tok.Decode(seq.Slice(2, 6)))
	assert.Equal(t, "g h", tok.Decode(seq.Slice(6, 100)))
	assert.Equal(t, "", tok.Decode(seq.Slice(5, 5)))
}

func TestCountMatchesEncode(t *testing.T) {
	tok := New(Options{Backend: BackendWhitespace}, logger.NewNop())
	ctx := context.Background()

	text := "one two three four five"
	assert.Equal(t, tok.Encode(ctx, text).Len(), tok.Count(ctx, text))
	assert.Equal(t, 5, tok.Count(ctx, text))
	assert.Equal(t, 0, tok.Count(ctx, ""))
}

func TestProportionalWordsForSubwordSequence(t *testing.T) {
	// 8 tokens over 4 words: every window of 2 tokens maps to one word.
	seq := Sequence{
		Backend: BackendTiktoken,
		IDs:     []int{1, 2, 3, 4, 5, 6, 7, 8},
		source:  "alpha beta gamma delta",
		total:   8,
	}

	assert.Equal(t, "alpha beta", proportionalWords(seq.Slice(0, 4)))
	assert.Equal(t, "gamma delta", proportionalWords(seq.Slice(4, 8)))
	assert.Equal(t, "beta", proportionalWords(seq.Slice(2, 3)), "tiny windows still yield a word")
}

func TestCacheBoundAndReload(t *testing.T) {
	cache, err := NewCache(2)
	require.NoError(t, err)

	loads := 0
	load := func() (Codec, error) {
		loads++
		return runeCodec{}, nil
	}

	for _, key := range []string{"a", "b", "a", "c", "b"} {
		_, err := cache.Get(key, load)
		require.NoError(t, err)
	}

	assert.Equal(t, 2, cache.Len())
	// a, b, c loaded once each, then b reloaded after being evicted by c.
	assert.Equal(t, 4, loads)

	cache.Forget("b")
	assert.Equal(t, 1, cache.Len())
}

func TestNewCacheRejectsNonPositiveSize(t *testing.T) {
	_, err := NewCache(0)
	assert.Error(t, err)
	assert.Panics(t, func() { MustNewCache(-1) })
}
