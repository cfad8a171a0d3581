package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-4o-mini",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "Annual leave carries over [Page 1]."}
	}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewOpenAIClient("test-key", srv.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return c
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient("", "", 0); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestGenerateSendsParameters(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody))
	})

	out, err := c.Generate(context.Background(), "gpt-4o-mini", Request{
		System:      "policy",
		Prompt:      "question",
		Temperature: 0,
		MaxTokens:   256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "Annual leave carries over [Page 1]." {
		t.Errorf("unexpected output %q", out)
	}
	if got["model"] != "gpt-4o-mini" {
		t.Errorf("expected model in request, got %v", got["model"])
	}
	if got["temperature"] != float64(0) {
		t.Errorf("expected temperature 0, got %v", got["temperature"])
	}
	if got["max_completion_tokens"] != float64(256) {
		t.Errorf("expected max_completion_tokens 256, got %v", got["max_completion_tokens"])
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(msgs))
	}
}

func TestGenerateClassifiesFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   Kind
	}{
		{"rate limited", http.StatusTooManyRequests, KindRateLimited},
		{"unknown model", http.StatusNotFound, KindModelNotFound},
		{"bad key", http.StatusUnauthorized, KindInvalidCredential},
		{"forbidden", http.StatusForbidden, KindInvalidCredential},
		{"bad request", http.StatusBadRequest, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"error","code":"x"}}`))
			})

			_, err := c.Generate(context.Background(), "m1", Request{Prompt: "q"})
			if err == nil {
				t.Fatal("expected error")
			}
			if got := KindOf(err); got != tt.want {
				t.Errorf("KindOf = %s, want %s (err: %v)", got, tt.want, err)
			}
			var llmErr *Error
			if !errors.As(err, &llmErr) || llmErr.Model != "m1" {
				t.Errorf("expected *Error carrying model, got %v", err)
			}
			if calls.Load() != 1 {
				t.Errorf("expected exactly one upstream call, got %d", calls.Load())
			}
		})
	}
}

func TestBuildMessagesWithParts(t *testing.T) {
	msgs := buildMessages(Request{
		Prompt: "what is this?",
		FileID: "file-1",
		Images: []Image{{MIMEType: "image/png", Data: []byte{1, 2, 3}}},
	})
	if len(msgs) != 1 {
		t.Fatalf("expected only a user message, got %d", len(msgs))
	}
	user := msgs[0].OfUser
	if user == nil {
		t.Fatal("expected user message")
	}
	if n := len(user.Content.OfArrayOfContentParts); n != 3 {
		t.Errorf("expected file, image and text parts, got %d", n)
	}
}

func TestDataURL(t *testing.T) {
	got := dataURL(Image{MIMEType: "image/jpeg", Data: []byte("abc")})
	if got != "data:image/jpeg;base64,YWJj" {
		t.Errorf("unexpected data url %s", got)
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if KindOf(errors.New("boom")) != KindOther {
		t.Error("plain errors should be KindOther")
	}
	wrapped := &Error{Kind: KindRateLimited, Err: errors.New("quota")}
	if KindOf(errors.Join(errors.New("ctx"), wrapped)) != KindRateLimited {
		t.Error("wrapped errors should keep their kind")
	}
}
