package learnpath

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAICompleter(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float32 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"test-model","choices":[{"index":0,"message":{"role":"assistant","content":"* Arrays: storage"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	completer := NewOpenAICompleter("test-key", srv.URL+"/v1", "test-model")
	text, err := completer.Complete(context.Background(), "List modules for Go", RecommendationConfig)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if text != "* Arrays: storage" {
		t.Errorf("text = %q", text)
	}

	if got.Model != "test-model" || got.MaxTokens != 70 {
		t.Errorf("request = %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[1].Content != "List modules for Go" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestOpenAICompleterUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit"}}`))
	}))
	defer srv.Close()

	completer := NewOpenAICompleter("test-key", srv.URL+"/v1", "")
	_, err := completer.Complete(context.Background(), "prompt", ProseConfig)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
