package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/landscout/landscout/internal/config"
	"github.com/landscout/landscout/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func completionServer(t *testing.T, answer string, capture *chatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		fmt.Fprintf(w, `{"model": "test/model-1",
			"choices": [{"message": {"content": %q}}],
			"usage": {"prompt_tokens": 42, "completion_tokens": 1}}`, answer)
	}))
}

func validationInput(t *testing.T) (*store.Expression, *store.Land) {
	t.Helper()
	title := "Le climat en mutation"
	readable := strings.Repeat("Le climat change. ", 200)
	return &store.Expression{URL: "https://example.org/a", Title: &title, Readable: &readable},
		&store.Land{Name: "climat", Description: "transition énergétique"}
}

func newValidator(serverURL string) *OpenRouter {
	cfg := config.Default()
	cfg.LLM.BaseURL = serverURL
	cfg.LLM.Model = "test/model-1"
	cfg.LLM.APIKey = "key"
	return NewOpenRouter(cfg, testLogger())
}

func TestValidateVerdicts(t *testing.T) {
	for _, tc := range []struct {
		answer string
		want   bool
	}{
		{"OUI", true},
		{"oui", true},
		{"Oui, clairement.", true},
		{"NON", false},
		{"non pertinent", false},
		{"peut-être", false},
	} {
		srv := completionServer(t, tc.answer, nil)
		v := newValidator(srv.URL)
		expr, land := validationInput(t)

		verdict, err := v.Validate(context.Background(), expr, land)
		srv.Close()
		if err != nil {
			t.Fatalf("answer %q: %v", tc.answer, err)
		}
		if verdict.IsRelevant != tc.want {
			t.Errorf("answer %q: relevant = %v, want %v", tc.answer, verdict.IsRelevant, tc.want)
		}
		if verdict.ModelUsed != "test/model-1" {
			t.Errorf("model = %q", verdict.ModelUsed)
		}
	}
}

func TestValidateTruncatesExcerpt(t *testing.T) {
	var req chatCompletionRequest
	srv := completionServer(t, "OUI", &req)
	defer srv.Close()

	v := newValidator(srv.URL)
	expr, land := validationInput(t)
	if _, err := v.Validate(context.Background(), expr, land); err != nil {
		t.Fatal(err)
	}
	if len(req.Messages) != 1 {
		t.Fatalf("messages = %d", len(req.Messages))
	}
	// Prompt scaffolding plus at most 2000 excerpt bytes.
	if len(req.Messages[0].Content) > 2600 {
		t.Errorf("prompt length = %d, excerpt not truncated", len(req.Messages[0].Content))
	}
	if !strings.Contains(req.Messages[0].Content, land.Name) {
		t.Error("prompt misses the topic name")
	}
}

func TestValidateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	v := newValidator(srv.URL)
	expr, land := validationInput(t)
	if _, err := v.Validate(context.Background(), expr, land); err == nil {
		t.Fatal("expected error on 429")
	}
}
