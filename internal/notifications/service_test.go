package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewServiceWithoutTopicIsNoop(t *testing.T) {
	service := NewService("   ", 5)
	if _, ok := service.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", service)
	}
	if err := service.NotifyError(context.Background(), errors.New("boom"), "ripping"); err != nil {
		t.Fatalf("noop must never fail: %v", err)
	}
}

func TestNotifyRipCompletedSendsHeadersAndBody(t *testing.T) {
	var gotTitle, gotTags, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	service := NewService(server.URL, 5)
	if err := service.NotifyRipCompleted(context.Background(), "The Dark Crystal"); err != nil {
		t.Fatalf("NotifyRipCompleted: %v", err)
	}
	if gotTitle != "Platter - Rip Complete" {
		t.Fatalf("unexpected title header %q", gotTitle)
	}
	if gotTags != "platter,rip,completed" {
		t.Fatalf("unexpected tags header %q", gotTags)
	}
	if gotBody != "Rip complete: The Dark Crystal" {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestNotifyErrorCarriesContextAndPriority(t *testing.T) {
	var gotPriority, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	service := NewService(server.URL, 5)
	if err := service.NotifyError(context.Background(), errors.New("read error"), "ripping"); err != nil {
		t.Fatalf("NotifyError: %v", err)
	}
	if gotPriority != "high" {
		t.Fatalf("error notifications must be high priority, got %q", gotPriority)
	}
	if gotBody != "Error with ripping: read error" {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestSendRejectsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic over quota", http.StatusTooManyRequests)
	}))
	defer server.Close()

	service := NewService(server.URL, 5)
	if err := service.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}
