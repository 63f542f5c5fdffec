package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultGroqBaseURL is the public Groq OpenAI-compatible endpoint.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// Groq calls the Groq chat completions API. It is safe for concurrent use.
type Groq struct {
	apiKey  string
	model   string
	baseURL string
	httpc   *http.Client
}

// GroqOption configures a Groq client.
type GroqOption func(*Groq)

// WithGroqBaseURL overrides the API endpoint, mainly for tests.
func WithGroqBaseURL(url string) GroqOption {
	return func(g *Groq) { g.baseURL = url }
}

// WithGroqHTTPClient overrides the underlying HTTP client.
func WithGroqHTTPClient(c *http.Client) GroqOption {
	return func(g *Groq) { g.httpc = c }
}

// NewGroq creates a Groq client for the given model.
func NewGroq(apiKey, model string, opts ...GroqOption) *Groq {
	g := &Groq{
		apiKey:  apiKey,
		model:   model,
		baseURL: DefaultGroqBaseURL,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type groqChatRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float32       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type groqChatResponse struct {
	Choices []struct {
		Message groqMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends a single user message and returns the assistant reply.
func (g *Groq) Complete(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(groqChatRequest{
		Model:       g.model,
		Messages:    []groqMessage{{Role: "user", Content: req.Prompt}},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encoding groq request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating groq request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling groq: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("groq error (status %d): %s", resp.StatusCode, string(raw))
	}

	var out groqChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding groq response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("groq error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("groq returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
