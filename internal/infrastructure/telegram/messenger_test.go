package telegram

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"newsrelay/internal/domain"
)

func newTestMessenger(t *testing.T, handler http.HandlerFunc) (*Messenger, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	m := NewMessenger("test-token", "-1001234")
	m.baseURL = server.URL
	m.client = server.Client()
	return m, server
}

func TestSendPostsForm(t *testing.T) {
	t.Parallel()

	var gotPath, gotChatID, gotText, gotPreview string
	m, _ := newTestMessenger(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotChatID = r.PostFormValue("chat_id")
		gotText = r.PostFormValue("text")
		gotPreview = r.PostFormValue("disable_web_page_preview")
		w.WriteHeader(http.StatusOK)
	})

	err := m.Send(context.Background(), domain.Message{
		Fingerprint:    "fp-1",
		Text:           "hello channel",
		DisablePreview: true,
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if gotPath != "/bottest-token/sendMessage" {
		t.Fatalf("path = %s", gotPath)
	}
	if gotChatID != "-1001234" {
		t.Fatalf("chat_id = %s", gotChatID)
	}
	if gotText != "hello channel" {
		t.Fatalf("text = %s", gotText)
	}
	if gotPreview != "true" {
		t.Fatalf("disable_web_page_preview = %s", gotPreview)
	}
}

func TestSendClassifiesStatuses(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   domain.DeliveryErrorKind
	}{
		{http.StatusTooManyRequests, domain.DeliveryErrRateLimited},
		{http.StatusBadRequest, domain.DeliveryErrPermanent},
		{http.StatusForbidden, domain.DeliveryErrPermanent},
		{http.StatusNotFound, domain.DeliveryErrPermanent},
		{http.StatusBadGateway, domain.DeliveryErrTransient},
		{http.StatusInternalServerError, domain.DeliveryErrTransient},
	}

	for _, tc := range cases {
		status := tc.status
		m, _ := newTestMessenger(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		err := m.Send(context.Background(), domain.Message{Text: "x"})
		var delErr *domain.DeliveryError
		if !errors.As(err, &delErr) {
			t.Fatalf("status %d: error %T, want *domain.DeliveryError", tc.status, err)
		}
		if delErr.Kind != tc.want {
			t.Fatalf("status %d: kind = %v, want %v", tc.status, delErr.Kind, tc.want)
		}
	}
}

func TestSendMisconfiguredIsPermanent(t *testing.T) {
	t.Parallel()

	m := NewMessenger("", "")
	err := m.Send(context.Background(), domain.Message{Text: "x"})

	var delErr *domain.DeliveryError
	if !errors.As(err, &delErr) {
		t.Fatalf("error %T, want *domain.DeliveryError", err)
	}
	if delErr.Kind != domain.DeliveryErrPermanent {
		t.Fatalf("kind = %v, want permanent", delErr.Kind)
	}
}

func TestSendNetworkFailureIsTransient(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	m := NewMessenger("test-token", "-1001234")
	m.baseURL = server.URL

	err := m.Send(context.Background(), domain.Message{Text: "x"})
	var delErr *domain.DeliveryError
	if !errors.As(err, &delErr) {
		t.Fatalf("error %T, want *domain.DeliveryError", err)
	}
	if delErr.Kind != domain.DeliveryErrTransient {
		t.Fatalf("kind = %v, want transient", delErr.Kind)
	}
}
