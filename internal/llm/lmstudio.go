package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-multierror"
)

const (
	chatEndpoint        = "/v1/chat/completions"
	completionsEndpoint = "/v1/completions"
	modelsEndpoint      = "/v1/models"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Stream      bool      `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

type completionRequest struct {
	Model       string  `json:"model"`
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Stream      bool    `json:"stream"`
}

type completionResponse struct {
	Choices []struct {
		Text string `json:"text"`
	} `json:"choices"`
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// MergePrompt folds a system and a user prompt into the single prompt sent to
// /v1/completions.
func MergePrompt(system, user string) string {
	return fmt.Sprintf("### System:\n%s\n\n### User:\n%s\n\n### Assistant:\n", system, user)
}

// Complete sends req to the endpoint(s) selected by req.Mode. In auto mode an
// error or an empty answer from chat completions falls through to completions;
// when both fail the returned error lists both failures.
func (c *implClient) Complete(ctx context.Context, req Request) (string, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeAuto
	}

	switch mode {
	case ModeChat:
		return c.chat(ctx, req)
	case ModeCompletions:
		return c.completions(ctx, req)
	case ModeAuto:
	default:
		return "", fmt.Errorf("unknown api mode: %s", mode)
	}

	out, chatErr := c.chat(ctx, req)
	if chatErr == nil && out != "" {
		return out, nil
	}
	if chatErr != nil {
		c.logger.Warn(ctx, "Chat completions failed, trying completions: %v", chatErr)
	} else {
		c.logger.Warn(ctx, "Chat completions returned no text, trying completions")
	}

	out, complErr := c.completions(ctx, req)
	if complErr == nil {
		return out, nil
	}
	if chatErr == nil {
		return "", complErr
	}

	var result *multierror.Error
	result = multierror.Append(result, chatErr, complErr)
	return "", fmt.Errorf("both endpoints failed, check that the server is running and the context length fits: %w", result.ErrorOrNil())
}

func (c *implClient) chat(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model: req.Model,
		Messages: []message{
			{Role: "system", Content: strings.TrimSpace(req.SystemPrompt)},
			{Role: "user", Content: strings.TrimSpace(req.UserPrompt)},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp chatResponse
	if err := c.post(ctx, chatEndpoint, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *implClient) completions(ctx context.Context, req Request) (string, error) {
	body := completionRequest{
		Model:       req.Model,
		Prompt:      MergePrompt(req.SystemPrompt, req.UserPrompt),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var resp completionResponse
	if err := c.post(ctx, completionsEndpoint, body, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Text, nil
}

// ListModels returns the ids of the models served by the server.
func (c *implClient) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, modelsTimeout)
	defer cancel()
	return c.models(ctx)
}

// Status probes /v1/models with a short timeout.
func (c *implClient) Status(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	models, err := c.models(ctx)
	if err != nil {
		var callErr *CallError
		reachable := errors.As(err, &callErr) && !callErr.Unreachable()
		return Status{Reachable: reachable, Err: err}
	}
	return Status{Reachable: true, Models: models}
}

func (c *implClient) models(ctx context.Context) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelsEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	var resp modelsResponse
	if err := c.do(httpReq, modelsEndpoint, &resp); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(resp.Data))
	for _, m := range resp.Data {
		if m.ID != "" {
			ids = append(ids, m.ID)
		}
	}
	return ids, nil
}

func (c *implClient) post(ctx context.Context, endpoint string, in, out interface{}) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	return c.do(httpReq, endpoint, out)
}

func (c *implClient) do(httpReq *http.Request, endpoint string, out interface{}) error {
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &CallError{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &CallError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &CallError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       snippet(body),
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &CallError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       snippet(body),
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}
