package email

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
)

func TestNoopSender_Send(t *testing.T) {
	s := NewNoopSender()
	res, err := s.Send(context.Background(), SendRequest{To: []string{"alice@example.com"}, Subject: "Hi"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if !strings.HasPrefix(res.MessageID, "noop-") {
		t.Errorf("MessageID = %q, want noop- prefix", res.MessageID)
	}
	if res.SentAt.IsZero() {
		t.Error("SentAt is zero")
	}
}

func TestNoopSender_NoRecipients(t *testing.T) {
	_, err := NewNoopSender().Send(context.Background(), SendRequest{Subject: "Hi"})
	if !errors.Is(err, ErrNoRecipients) {
		t.Errorf("error = %v, want ErrNoRecipients", err)
	}
}

func newResendTestServer(t *testing.T, status int, body string, got *map[string]any) *ResendSender {
	t.Helper()
	return newResendTestServerWithHeaders(t, status, body, got, nil)
}

func newResendTestServerWithHeaders(t *testing.T, status int, body string, got *map[string]any, headers *http.Header) *ResendSender {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/emails") {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if headers != nil {
			*headers = r.Header.Clone()
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := resend.NewClient("re_test")
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	client.BaseURL = base
	return NewResendSenderWithClient(client, "Academy <noreply@academy.test>", "planning@academy.test")
}

func TestResendSender_Send(t *testing.T) {
	var payload map[string]any
	s := newResendTestServer(t, http.StatusOK, `{"id":"msg_123"}`, &payload)

	res, err := s.Send(context.Background(), SendRequest{
		To:      []string{"alice@example.com"},
		Subject: "New session",
		HTML:    "<p>Hello</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "msg_123" {
		t.Errorf("MessageID = %q, want msg_123", res.MessageID)
	}
	if payload["from"] != "Academy <noreply@academy.test>" {
		t.Errorf("from = %v", payload["from"])
	}
	if payload["subject"] != "New session" {
		t.Errorf("subject = %v", payload["subject"])
	}
}

func TestResendSender_IdempotencyAndCategory(t *testing.T) {
	var (
		payload map[string]any
		headers http.Header
	)
	s := newResendTestServerWithHeaders(t, http.StatusOK, `{"id":"msg_456"}`, &payload, &headers)

	_, err := s.Send(context.Background(), SendRequest{
		To:             []string{"alice@example.com"},
		Subject:        "Session cancelled",
		HTML:           "<p>Bye</p>",
		IdempotencyKey: "entry-42",
		Category:       "session_cancelled",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := headers.Get("Idempotency-Key"); got != "entry-42" {
		t.Errorf("Idempotency-Key = %q, want entry-42", got)
	}
	tags, _ := payload["tags"].([]any)
	if len(tags) != 1 {
		t.Fatalf("tags = %v, want one tag", payload["tags"])
	}
	if tag, _ := tags[0].(map[string]any); tag["name"] != "category" || tag["value"] != "session_cancelled" {
		t.Errorf("tag = %v", tags[0])
	}
}

func TestResendSender_ProviderError(t *testing.T) {
	s := newResendTestServer(t, http.StatusUnprocessableEntity, `{"statusCode":422,"name":"validation_error","message":"bad from"}`, nil)

	_, err := s.Send(context.Background(), SendRequest{To: []string{"alice@example.com"}, Subject: "x"})
	if err == nil {
		t.Fatal("expected error from provider")
	}
}
