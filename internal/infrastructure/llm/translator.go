// Package llm implements the translation boundary on top of an
// OpenAI-compatible chat completions API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsrelay/internal/config"
	"newsrelay/internal/ports"
)

const maxInputLen = 1000

// Translator asks a chat model for a financial-register translation. The
// pipeline treats any failure here as non-fatal.
type Translator struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Translator = (*Translator)(nil)

// NewTranslator builds a client from configuration.
func NewTranslator(cfg config.TranslatorConfig) *Translator {
	return &Translator{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Translate posts the text as a user message with a translation system
// prompt. Empty and very short input are returned unchanged.
func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if len(text) < 2 {
		return text, nil
	}
	if t.apiKey == "" || t.endpoint == "" || t.model == "" {
		return "", fmt.Errorf("translator misconfigured")
	}

	if runes := []rune(text); len(runes) > maxInputLen {
		text = string(runes[:maxInputLen]) + "..."
	}

	system := fmt.Sprintf(
		"You are a professional financial news translator. Translate the user's text from %s to %s, keeping financial and cryptocurrency terminology accurate and natural for native readers. Reply with the translation only.",
		sourceLang, targetLang)

	body, err := json.Marshal(map[string]any{
		"model": t.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": text},
		},
		"temperature": 0.3,
		"max_tokens":  1024,
	})
	if err != nil {
		return "", fmt.Errorf("marshal translate payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("translate request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translator returned %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("translator returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
