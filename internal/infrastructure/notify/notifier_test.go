package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tcon/auth-user-service/internal/core/domain"
)

func TestHTTPNotifier_SendEmail(t *testing.T) {
	var received domain.EmailMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, 0)
	err := n.SendEmail(context.Background(), domain.EmailMessage{
		To:           "alice@example.com",
		TemplateCode: domain.TemplateWelcome,
		Payload:      map[string]any{"name": "Alice"},
	})
	if err != nil {
		t.Fatalf("send failed: %v", err)
	}
	if received.To != "alice@example.com" || received.TemplateCode != domain.TemplateWelcome {
		t.Fatalf("unexpected payload: %+v", received)
	}
}

func TestHTTPNotifier_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewHTTPNotifier(srv.URL, 0)
	if err := n.SendEmail(context.Background(), domain.EmailMessage{To: "a@example.com"}); err == nil {
		t.Fatalf("expected error on 502 response")
	}
}

func TestNoopNotifier(t *testing.T) {
	if err := (NoopNotifier{}).SendEmail(context.Background(), domain.EmailMessage{}); err != nil {
		t.Fatalf("noop notifier must never fail: %v", err)
	}
}
