package summarizer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nguyentantai21042004/medscribe/internal/apperrors"
	"github.com/nguyentantai21042004/medscribe/internal/llm"
	"github.com/nguyentantai21042004/medscribe/internal/logger"
	"github.com/nguyentantai21042004/medscribe/internal/tokenizer"
)

var chunkMarker = regexp.MustCompile(`\*\*chunk (\d+)/(\d+)\*\*`)

type fakeCompleter struct {
	mu       sync.Mutex
	requests []llm.Request
	respond  func(req llm.Request) (string, error)
}

func (f *fakeCompleter) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.respond == nil {
		return defaultReply(req), nil
	}
	return f.respond(req)
}

func (f *fakeCompleter) prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.requests))
	for i, r := range f.requests {
		out[i] = r.UserPrompt
	}
	return out
}

// chunkOf returns the chunk number named in a chunk prompt, or 0 for other prompts.
func chunkOf(req llm.Request) int {
	m := chunkMarker.FindStringSubmatch(req.UserPrompt)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func defaultReply(req llm.Request) string {
	if n := chunkOf(req); n > 0 {
		return fmt.Sprintf("summary of chunk %d", n)
	}
	if strings.Contains(req.UserPrompt, "Here are the chunk summaries") {
		return "final summary"
	}
	return "direct summary"
}

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func newTestSummarizer(c llm.Completer, r Reporter) Summarizer {
	tok := tokenizer.New(tokenizer.Options{Backend: tokenizer.BackendWhitespace}, logger.NewNop())
	return New(Options{Completer: c, Tokenizer: tok, Reporter: r}, logger.NewNop())
}

var (
	longCfg = ChunkConfig{Mode: StrategyChunked, MaxTokensPerChunk: 6000, Overlap: 200}
	testLLM = LLMConfig{
		Model:           "qwen2-7b-instruct",
		SystemPrompt:    DefaultSystemPrompt,
		UserPrompt:      "Summarize for a cardiologist.",
		Temperature:     0.2,
		MaxOutputTokens: 1024,
		APIMode:         llm.ModeAuto,
	}
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"", StrategyDirect, false},
		{"direct", StrategyDirect, false},
		{"Chunked", StrategyChunked, false},
		{"chunks", StrategyChunked, false},
		{"map-reduce", "", true},
	}
	for _, tt := range tests {
		got, err := ParseStrategy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestSummarizeShortTextIsDirect(t *testing.T) {
	fc := &fakeCompleter{}
	text := words(500)

	res, err := newTestSummarizer(fc, nil).Summarize(context.Background(), text, longCfg, testLLM)
	require.NoError(t, err)

	assert.Equal(t, "direct summary", res.FinalSummary)
	assert.NotNil(t, res.PartialSummaries)
	assert.Empty(t, res.PartialSummaries)
	assert.False(t, res.Incomplete)
	assert.Equal(t, StrategyDirect, res.Strategy)
	assert.Equal(t, 500, res.TotalTokens)

	require.Len(t, fc.requests, 1)
	req := fc.requests[0]
	assert.Equal(t, "Summarize for a cardiologist.\n\nText to summarize:\n```text\n"+text+"\n```", req.UserPrompt)
	assert.Equal(t, testLLM.Model, req.Model)
	assert.Equal(t, testLLM.SystemPrompt, req.SystemPrompt)
	assert.Equal(t, 1024, req.MaxTokens)
	assert.Equal(t, llm.ModeAuto, req.Mode)
}

func TestSummarizeDirectModeIgnoresLength(t *testing.T) {
	fc := &fakeCompleter{}
	cfg := longCfg
	cfg.Mode = StrategyDirect

	res, err := newTestSummarizer(fc, nil).Summarize(context.Background(), words(14000), cfg, testLLM)
	require.NoError(t, err)
	assert.Equal(t, StrategyDirect, res.Strategy)
	assert.Len(t, fc.requests, 1)
}

func TestSummarizeLongTextIsChunked(t *testing.T) {
	fc := &fakeCompleter{}

	res, err := newTestSummarizer(fc, nil).Summarize(context.Background(), words(14000), longCfg, testLLM)
	require.NoError(t, err)

	prompts := fc.prompts()
	require.Len(t, prompts, 4)
	for i, start := range []int{0, 5800, 11600} {
		assert.Contains(t, prompts[i], fmt.Sprintf("You are summarizing **chunk %d/3** below.", i+1))
		assert.Contains(t, prompts[i], fmt.Sprintf("```text\nw%d ", start))
	}

	assert.Equal(t, StrategyChunked, res.Strategy)
	assert.Equal(t, 3, res.Chunks)
	assert.Equal(t, "final summary", res.FinalSummary)
	assert.Equal(t, []string{
		"### Chunk 1\nsummary of chunk 1",
		"### Chunk 2\nsummary of chunk 2",
		"### Chunk 3\nsummary of chunk 3",
	}, res.PartialSummaries)

	synth := prompts[3]
	assert.Equal(t, 0, chunkOf(fc.requests[3]))
	assert.True(t, strings.HasPrefix(synth, "Summarize for a cardiologist.\n\nHere are the chunk summaries:\n"))
	assert.Contains(t, synth, strings.Join(res.PartialSummaries, "\n\n"))
	assert.True(t, strings.HasSuffix(synth, "Do not repeat chunk by chunk."))
}

func TestSummarizeChunkFailureSkipsSynthesis(t *testing.T) {
	boom := errors.New("HTTP 500")
	fc := &fakeCompleter{respond: func(req llm.Request) (string, error) {
		if chunkOf(req) == 2 {
			return "", boom
		}
		return defaultReply(req), nil
	}}

	res, err := newTestSummarizer(fc, nil).Summarize(context.Background(), words(14000), longCfg, testLLM)
	require.Error(t, err)

	var chunkErr *ChunkError
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, 2, chunkErr.Index)
	assert.Equal(t, 3, chunkErr.Total)
	assert.ErrorIs(t, err, boom)

	assert.Len(t, fc.requests, 2)
	assert.True(t, res.Incomplete)
	assert.Empty(t, res.FinalSummary)
	assert.Equal(t, []string{"### Chunk 1\nsummary of chunk 1"}, res.PartialSummaries)
}

func TestSummarizeSynthesisFailure(t *testing.T) {
	fc := &fakeCompleter{respond: func(req llm.Request) (string, error) {
		if chunkOf(req) == 0 {
			return "", errors.New("timeout")
		}
		return defaultReply(req), nil
	}}

	res, err := newTestSummarizer(fc, nil).Summarize(context.Background(), words(14000), longCfg, testLLM)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "synthesis")
	assert.True(t, res.Incomplete)
	assert.Len(t, res.PartialSummaries, 3)
}

func TestSummarizeDirectFailurePropagates(t *testing.T) {
	callErr := &llm.CallError{Endpoint: "/v1/chat/completions", StatusCode: 500}
	fc := &fakeCompleter{respond: func(req llm.Request) (string, error) { return "", callErr }}

	res, err := newTestSummarizer(fc, nil).Summarize(context.Background(), words(10), longCfg, testLLM)
	assert.Same(t, callErr, err)
	assert.True(t, res.Incomplete)
}

func TestSummarizeConfigurationErrors(t *testing.T) {
	tests := []struct {
		name      string
		completer llm.Completer
		chunkCfg  ChunkConfig
		llmCfg    LLMConfig
	}{
		{"no endpoint", nil, longCfg, testLLM},
		{"no model", &fakeCompleter{}, longCfg, LLMConfig{UserPrompt: "x"}},
		{"zero chunk size", &fakeCompleter{}, ChunkConfig{Mode: StrategyChunked}, testLLM},
		{"negative overlap", &fakeCompleter{}, ChunkConfig{MaxTokensPerChunk: 10, Overlap: -1}, testLLM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestSummarizer(tt.completer, nil).Summarize(context.Background(), words(100), tt.chunkCfg, tt.llmCfg)
			assert.True(t, apperrors.IsConfigurationError(err), "got %v", err)
			assert.Equal(t, Result{}, res)
			if fc, ok := tt.completer.(*fakeCompleter); ok {
				assert.Empty(t, fc.requests)
			}
		})
	}
}

func TestSummarizeReportsProgress(t *testing.T) {
	var mu sync.Mutex
	var got []string
	r := ReporterFunc(func(ctx context.Context, p Progress) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, p.String())
	})

	_, err := newTestSummarizer(&fakeCompleter{}, r).Summarize(context.Background(), words(14000), longCfg, testLLM)
	require.NoError(t, err)
	assert.Equal(t, []string{"3 chunks to summarize", "chunk 1/3", "chunk 2/3", "chunk 3/3", "synthesis"}, got)
}

func TestSummarizeConcurrentKeepsOrder(t *testing.T) {
	fc := &fakeCompleter{respond: func(req llm.Request) (string, error) {
		// Earlier chunks finish last.
		if n := chunkOf(req); n > 0 {
			time.Sleep(time.Duration(4-n) * 20 * time.Millisecond)
		}
		return defaultReply(req), nil
	}}
	cfg := longCfg
	cfg.Workers = 3

	res, err := newTestSummarizer(fc, nil).Summarize(context.Background(), words(14000), cfg, testLLM)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"### Chunk 1\nsummary of chunk 1",
		"### Chunk 2\nsummary of chunk 2",
		"### Chunk 3\nsummary of chunk 3",
	}, res.PartialSummaries)

	require.Len(t, fc.requests, 4)
	assert.Equal(t, 0, chunkOf(fc.requests[3]), "synthesis must be the last call")
	assert.Contains(t, fc.requests[3].UserPrompt, strings.Join(res.PartialSummaries, "\n\n"))
}

func TestSummarizeConcurrentFailure(t *testing.T) {
	firstDone := make(chan struct{})
	fc := &fakeCompleter{respond: func(req llm.Request) (string, error) {
		switch chunkOf(req) {
		case 1:
			defer close(firstDone)
			return defaultReply(req), nil
		case 2:
			<-firstDone
			return "", errors.New("context length exceeded")
		default:
			return defaultReply(req), nil
		}
	}}
	cfg := longCfg
	cfg.Workers = 2

	res, err := newTestSummarizer(fc, nil).Summarize(context.Background(), words(14000), cfg, testLLM)

	var chunkErr *ChunkError
	require.True(t, errors.As(err, &chunkErr))
	assert.Equal(t, 2, chunkErr.Index)
	assert.True(t, res.Incomplete)
	assert.Equal(t, []string{"### Chunk 1\nsummary of chunk 1"}, res.PartialSummaries)
	for _, req := range fc.requests {
		assert.NotEqual(t, 0, chunkOf(req), "no synthesis after a failed chunk")
	}
}
