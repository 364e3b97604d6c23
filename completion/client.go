// Package completion talks to an OpenAI-compatible chat completions endpoint.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"emam3/chat-relay/constants"
	"emam3/chat-relay/types"
)

// Completer turns a conversation into the text of the first returned choice.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Request struct {
	Model     string
	Messages  []types.Message
	MaxTokens int
}

// maxErrorBody bounds how much of a failed response is kept for logging.
const maxErrorBody = 4 << 10

type OpenAIClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Option func(*OpenAIClient)

func WithBaseURL(u string) Option {
	return func(c *OpenAIClient) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *OpenAIClient) { c.httpClient = hc }
}

func NewOpenAIClient(apiKey string, timeout time.Duration, opts ...Option) *OpenAIClient {
	if timeout <= 0 {
		timeout = constants.RequestTimeout
	}
	c := &OpenAIClient{
		httpClient: newHTTPClient(timeout),
		baseURL:    constants.OpenAIEndpoint,
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			TLSHandshakeTimeout:   5 * time.Second,
			MaxIdleConns:          200,
			MaxIdleConnsPerHost:   50,
			MaxConnsPerHost:       50,
			IdleConnTimeout:       30 * time.Second,
			ResponseHeaderTimeout: timeout,
		},
		Timeout: timeout,
	}
}

// Complete sends one chat completion request. It never retries.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	jsonBody, err := json.Marshal(types.ChatCompletionRequest{
		Model:     req.Model,
		Messages:  req.Messages,
		MaxTokens: req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to contact completion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}

	var out types.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to parse completion response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return out.Choices[0].Message.Content, nil
}

func errorMessage(body []byte) string {
	var env types.APIErrorBody
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		return env.Error.Message
	}
	return strings.TrimSpace(string(body))
}
