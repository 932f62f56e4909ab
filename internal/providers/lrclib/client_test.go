package lrclib

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lyricard/lyricard/internal/provider"
)

func TestClient_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("artist_name") != "John Lennon" || q.Get("track_name") != "Imagine" || q.Get("album_name") != "Imagine" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing User-Agent")
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":           1,
			"trackName":    "Imagine",
			"syncedLyrics": "[ar:John Lennon]\n[00:12.34]Imagine there's no heaven\n[00:17.00]\n[00:18.500]It's easy if you try\n",
		})
	}))
	defer server.Close()

	lines, err := New(Config{BaseURL: server.URL}).Fetch(context.Background(), "John Lennon", "Imagine", "Imagine")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %+v", lines)
	}
	if lines[0].Text != "Imagine there's no heaven" || lines[1].Text != "It's easy if you try" {
		t.Errorf("unexpected lines: %+v", lines)
	}
	if lines[1].Time != 18.5 {
		t.Errorf("second line time = %v, want 18.5", lines[1].Time)
	}
}

func TestClient_FetchNotFoundIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"code":404,"name":"TrackNotFound","message":"Failed to find specified track"}`))
	}))
	defer server.Close()

	lines, err := New(Config{BaseURL: server.URL}).Fetch(context.Background(), "a", "b", "c")
	if err != nil {
		t.Fatalf("404 should not be an error, got %v", err)
	}
	if lines == nil || len(lines) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", lines)
	}
}

func TestClient_FetchWithoutSyncedLyrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":3,"plainLyrics":"only plain text","syncedLyrics":null}`))
	}))
	defer server.Close()

	lines, err := New(Config{BaseURL: server.URL}).Fetch(context.Background(), "a", "b", "c")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("expected no lines, got %+v", lines)
	}
}

func TestClient_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) }},
		{"bad request", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadRequest) }},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTooManyRequests) }},
		{"bad json", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := New(Config{BaseURL: server.URL}).Fetch(context.Background(), "a", "b", "c")
			if !provider.IsLyrics(err) {
				t.Errorf("expected ErrLyrics, got %v", err)
			}
		})
	}
}
