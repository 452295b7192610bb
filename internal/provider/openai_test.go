package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"tagloom/internal/types"
)

func testClient(t *testing.T, baseURL string) *OpenAIClient {
	t.Helper()
	client, err := NewOpenAIClient(OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Model:      "test-model",
		MaxRetries: 2,
	}, nil)
	if err != nil {
		t.Fatalf("NewOpenAIClient: %v", err)
	}
	return client
}

func completionBody(content string) string {
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func TestGenerateText(t *testing.T) {
	var gotReq chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(completionBody("hello back")))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	out, err := client.GenerateText(context.Background(), "be brief", []types.Turn{
		types.UserTurn("hello"),
		types.AssistantTurn("hi"),
		types.UserTurn("again"),
	})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != "hello back" {
		t.Errorf("output = %q", out)
	}

	if len(gotReq.Messages) != 4 {
		t.Fatalf("sent %d messages, want 4", len(gotReq.Messages))
	}
	if gotReq.Messages[0].Role != "system" || gotReq.Messages[0].Content != "be brief" {
		t.Errorf("system message = %+v", gotReq.Messages[0])
	}
	if gotReq.Messages[2].Role != "assistant" {
		t.Errorf("message roles = %+v", gotReq.Messages)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("model = %q", gotReq.Model)
	}
}

func TestGenerateTextRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(completionBody("after retry")))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	out, err := client.GenerateText(context.Background(), "", []types.Turn{types.UserTurn("x")})
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if out != "after retry" {
		t.Errorf("output = %q", out)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGenerateTextDoesNotRetryClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"bad request"}}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.GenerateText(context.Background(), "", []types.Turn{types.UserTurn("x")})
	if err == nil {
		t.Fatal("want error for 400 response")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry)", calls.Load())
	}
}

func TestGenerateTextEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.GenerateText(context.Background(), "", []types.Turn{types.UserTurn("x")})
	if !errors.Is(err, ErrEmptyCompletion) {
		t.Fatalf("error = %v, want ErrEmptyCompletion", err)
	}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{}, nil)
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Fatalf("error = %v, want ErrAPIKeyMissing", err)
	}
}

func TestGenerateTextRejectsBadRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("never reached")))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, err := client.GenerateText(context.Background(), "", []types.Turn{
		{Role: "narrator", Content: "meanwhile"},
	})
	if err == nil {
		t.Fatal("want error for unsupported role")
	}
}
