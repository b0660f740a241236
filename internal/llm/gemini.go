package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/nguyentantai21042004/medscribe/internal/logger"
)

// DefaultGeminiModel is used when a request names no model.
const DefaultGeminiModel = "gemini-2.5-flash"

// generateFunc performs one Gemini call with a single API key.
type generateFunc func(ctx context.Context, apiKey string, req Request) (string, error)

type implGemini struct {
	mu         sync.Mutex
	apiKeys    []string
	currentKey int
	model      string
	generate   generateFunc
	logger     logger.Logger
}

// NewGemini creates a Completer backed by the Gemini API. It rotates through
// apiKeys when a key hits its rate limit or quota. Request.Mode is ignored.
func NewGemini(apiKeys []string, model string, log logger.Logger) (Completer, error) {
	keys := make([]string, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil, errors.New("gemini: no API key")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &implGemini{
		apiKeys:  keys,
		model:    model,
		generate: generateContent,
		logger:   log,
	}, nil
}

// Complete sends req to Gemini, rotating keys on 429 / quota errors.
func (g *implGemini) Complete(ctx context.Context, req Request) (string, error) {
	if req.Model == "" {
		req.Model = g.model
	}

	attempts := len(g.apiKeys)
	var lastErr error

	for range attempts {
		idx, key := g.key()

		text, err := g.generate(ctx, key, req)
		if err != nil {
			if isQuotaError(err) {
				g.logger.Warn(ctx, "Key %d rate limited, rotating...", idx+1)
				g.rotateKey(idx)
				lastErr = err
				continue
			}
			return "", &CallError{Endpoint: "gemini:" + req.Model, Err: err}
		}
		if text == "" {
			return "", &CallError{Endpoint: "gemini:" + req.Model, Err: ErrEmptyOutput}
		}
		return text, nil
	}

	return "", fmt.Errorf("all API keys exhausted: %w", lastErr)
}

func (g *implGemini) key() (int, string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.currentKey, g.apiKeys[g.currentKey]
}

// rotateKey moves past idx unless another caller already rotated.
func (g *implGemini) rotateKey(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.currentKey == idx {
		g.currentKey = (g.currentKey + 1) % len(g.apiKeys)
	}
}

func isQuotaError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func generateContent(ctx context.Context, apiKey string, req Request) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create client: %w", err)
	}

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemPrompt}},
		}
	}

	result, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(req.UserPrompt), config)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
