package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req groqChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "say hi", req.Messages[0].Content)
		assert.Equal(t, float32(0.5), req.Temperature)
		assert.Equal(t, 42, req.MaxTokens)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "hi there"}},
			},
		})
	}))
	defer srv.Close()

	g := NewGroq("test-key", "test-model", WithGroqBaseURL(srv.URL))
	out, err := g.Complete(context.Background(), Request{
		Prompt:      "say hi",
		MaxTokens:   42,
		Temperature: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)
}

func TestGroqCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g := NewGroq("k", "m", WithGroqBaseURL(srv.URL))
	_, err := g.Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGroqCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid model"},
		})
	}))
	defer srv.Close()

	g := NewGroq("k", "m", WithGroqBaseURL(srv.URL))
	_, err := g.Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model")
}

func TestGroqCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	g := NewGroq("k", "m", WithGroqBaseURL(srv.URL))
	_, err := g.Complete(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
}

func TestMIMETypeForPath(t *testing.T) {
	assert.Equal(t, "image/png", MIMETypeForPath("figure_1_1.png"))
	assert.Equal(t, "image/jpeg", MIMETypeForPath("photo.JPG"))
	assert.Equal(t, "image/jpeg", MIMETypeForPath("photo.jpeg"))
	assert.Equal(t, "image/png", MIMETypeForPath("unknown.bin"))
}
