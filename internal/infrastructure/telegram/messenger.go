// Package telegram implements the output-channel boundary via the bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"newsrelay/internal/domain"
	"newsrelay/internal/ports"
)

const defaultBaseURL = "https://api.telegram.org"

// Messenger posts messages to a Telegram chat via bot API. Send errors are
// classified so the deliverer can tell a 429 from a dead chat.
type Messenger struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

var _ ports.Messenger = (*Messenger)(nil)

// NewMessenger registers bot token and chat identifier.
func NewMessenger(botToken, chatID string) *Messenger {
	return &Messenger{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  defaultBaseURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one message. The returned error, when non-nil, is always a
// *domain.DeliveryError.
func (m *Messenger) Send(ctx context.Context, msg domain.Message) error {
	if m.botToken == "" || m.chatID == "" {
		return &domain.DeliveryError{Kind: domain.DeliveryErrPermanent, Reason: "telegram messenger misconfigured"}
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", m.baseURL, m.botToken)
	form := url.Values{}
	form.Set("chat_id", m.chatID)
	form.Set("text", msg.Text)
	if msg.DisablePreview {
		form.Set("disable_web_page_preview", "true")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &domain.DeliveryError{Kind: domain.DeliveryErrPermanent, Reason: fmt.Sprintf("new request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return &domain.DeliveryError{Kind: domain.DeliveryErrTransient, Reason: fmt.Sprintf("do request: %v", err)}
	}
	defer resp.Body.Close()

	return classifySendStatus(resp.StatusCode)
}

func classifySendStatus(status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests:
		return &domain.DeliveryError{Kind: domain.DeliveryErrRateLimited, Reason: "telegram rate limit"}
	case status == http.StatusBadRequest || status == http.StatusForbidden || status == http.StatusNotFound:
		return &domain.DeliveryError{Kind: domain.DeliveryErrPermanent, Reason: fmt.Sprintf("telegram rejected send: %d", status)}
	default:
		return &domain.DeliveryError{Kind: domain.DeliveryErrTransient, Reason: fmt.Sprintf("telegram error: %d", status)}
	}
}
