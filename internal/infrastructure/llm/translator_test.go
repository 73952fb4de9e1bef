package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsrelay/internal/config"
)

func newTestTranslator(t *testing.T, handler http.HandlerFunc) *Translator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	tr := NewTranslator(config.TranslatorConfig{
		Endpoint: server.URL,
		Model:    "test-model",
		APIKey:   "test-key",
	})
	tr.httpClient = server.Client()
	return tr
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	var gotAuth string
	var gotPayload map[string]any
	tr := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "السوق يرتفع"}},
			},
		})
	})

	out, err := tr.Translate(context.Background(), "Markets are rising", "en", "ar")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if out != "السوق يرتفع" {
		t.Fatalf("translation = %q", out)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotPayload["model"] != "test-model" {
		t.Fatalf("model = %v", gotPayload["model"])
	}

	messages, _ := gotPayload["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want system + user", len(messages))
	}
	system, _ := messages[0].(map[string]any)
	if !strings.Contains(system["content"].(string), "from en to ar") {
		t.Fatalf("system prompt missing language pair: %v", system["content"])
	}
}

func TestTranslateTruncatesLongInput(t *testing.T) {
	t.Parallel()

	var gotText string
	tr := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		gotText = payload.Messages[1].Content
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]string{"content": "ok"}}},
		})
	})

	long := strings.Repeat("x", 5000)
	if _, err := tr.Translate(context.Background(), long, "en", "ar"); err != nil {
		t.Fatalf("translate: %v", err)
	}
	if len([]rune(gotText)) != maxInputLen+3 {
		t.Fatalf("input not truncated: %d runes", len([]rune(gotText)))
	}
	if !strings.HasSuffix(gotText, "...") {
		t.Fatalf("truncated input should end with ellipsis")
	}
}

func TestTranslateUpstreamErrors(t *testing.T) {
	t.Parallel()

	tr := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	if _, err := tr.Translate(context.Background(), "Markets are rising", "en", "ar"); err == nil {
		t.Fatalf("expected error on non-200 response")
	}

	empty := newTestTranslator(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})
	if _, err := empty.Translate(context.Background(), "Markets are rising", "en", "ar"); err == nil {
		t.Fatalf("expected error on empty choices")
	}
}

func TestTranslateMisconfigured(t *testing.T) {
	t.Parallel()

	tr := NewTranslator(config.TranslatorConfig{})
	if _, err := tr.Translate(context.Background(), "Markets are rising", "en", "ar"); err == nil {
		t.Fatalf("expected error when endpoint and key are unset")
	}
}

func TestTranslateTrivialInputPassesThrough(t *testing.T) {
	t.Parallel()

	tr := NewTranslator(config.TranslatorConfig{})
	out, err := tr.Translate(context.Background(), "x", "en", "ar")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if out != "x" {
		t.Fatalf("out = %q, want passthrough", out)
	}
}
