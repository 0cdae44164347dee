package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mvinicius/whatsapp-portfolio-bot/internal/errs"
)

const allowed = "5511999999999"

func TestSendText(t *testing.T) {
	var (
		gotPath   string
		gotAPIKey string
		gotBody   sendTextRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		json.NewDecoder(r.Body).Decode(&gotBody)
		fmt.Fprint(w, `{"status":"PENDING"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "myinstance", "secret", allowed)

	err := c.SendText(context.Background(), allowed+"@s.whatsapp.net", "hello there")
	if err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if gotPath != "/message/sendText/myinstance" {
		t.Errorf("Unexpected path: %q", gotPath)
	}
	if gotAPIKey != "secret" {
		t.Errorf("Unexpected apikey header: %q", gotAPIKey)
	}
	if gotBody.Number != allowed {
		t.Errorf("Expected cleaned number %q, got %q", allowed, gotBody.Number)
	}
	if gotBody.Text != "hello there" {
		t.Errorf("Unexpected text: %q", gotBody.Text)
	}
}

func TestSendText_UnauthorizedRecipient(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "myinstance", "secret", allowed)

	err := c.SendText(context.Background(), "5511888888888@s.whatsapp.net", "hello")
	if !errs.IsUnauthorized(err) {
		t.Fatalf("Expected unauthorized error, got %v", err)
	}
	if called {
		t.Error("No HTTP call may happen for an unauthorized recipient")
	}
}

func TestSendText_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"invalid api key"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "myinstance", "bad", allowed)

	err := c.SendText(context.Background(), allowed, "hello")
	if !errs.IsUpstreamUnavailable(err) {
		t.Fatalf("Expected upstream-unavailable error, got %v", err)
	}
	if !strings.Contains(err.Error(), "API Error") || !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("Expected API error body in message, got %q", err.Error())
	}
}
