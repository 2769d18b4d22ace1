package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/webinar-pipeline/internal/core/domain"
)

func TestGenerateSendsChatCompletion(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hello  "}}]}`))
	}))
	defer server.Close()

	text, err := New(server.URL, "sk-test", "gpt-4o-mini").Generate(context.Background(), "system", "user")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if text != "hello" {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != "gpt-4o-mini" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "user" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestGenerateClassifiesQuotaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"You exceeded your current quota","type":"insufficient_quota"}}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "sk-test", "m").Generate(context.Background(), "s", "u")
	var perr *domain.ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected provider error, got %v", err)
	}
	if perr.Kind != domain.ProviderRateLimited || perr.Message != "insufficient_quota: You exceeded your current quota" {
		t.Fatalf("unexpected provider error: %+v", perr)
	}
}

func TestGenerateOtherFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := New(server.URL, "sk-test", "m").Generate(context.Background(), "s", "u")
	var perr *domain.ProviderError
	if !errors.As(err, &perr) || perr.Kind != domain.ProviderOther || !errors.Is(err, errEmptyChoices) {
		t.Fatalf("expected other provider error for empty choices, got %v", err)
	}

	_, err = New(server.URL, "", "m").Generate(context.Background(), "s", "u")
	if !errors.As(err, &perr) || perr.Kind != domain.ProviderOther {
		t.Fatalf("expected provider error for missing key, got %v", err)
	}
}
