package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmylchreest/pigments/internal/version"
)

func TestFetch(t *testing.T) {
	headers := make(chan http.Header, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.Write([]byte("image bytes"))
	}))
	defer server.Close()

	data, err := Fetch(context.Background(), server.URL, FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("Fetch() = %q, want %q", data, "image bytes")
	}
	got := <-headers
	gotAgent := got.Get("User-Agent")
	if want := UserAgentName + "/" + version.Short(); gotAgent != want {
		t.Errorf("User-Agent = %q, want %q", gotAgent, want)
	}
}

func TestFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	tests := []struct {
		name string
		url  string
		opts FetchOptions
	}{
		{name: "not found", url: server.URL + "/missing"},
		{name: "too large", url: server.URL + "/big", opts: FetchOptions{MaxBytes: 10}},
		{name: "bad url", url: "http://[::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Fetch(context.Background(), tt.url, tt.opts); err == nil {
				t.Error("Fetch() expected error, got nil")
			}
		})
	}
}
