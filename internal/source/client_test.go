package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const batchJSON = `{"nodes":[{"id":"n1","type":"Account","label":"Acme","decayedRelevance":80}],"links":[]}`

func TestFetch_HTTP(t *testing.T) {
	var gotAccept, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Query().Get("id") != "001" {
			t.Errorf("query id = %q", r.URL.Query().Get("id"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(batchJSON))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()), WithRateLimit(0))
	b, err := c.Fetch(context.Background(), BuildURL(srv.URL+"/graph", "id", "001"))
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(b.Nodes) != 1 || b.Nodes[0].ID != "n1" {
		t.Errorf("nodes = %+v", b.Nodes)
	}
	if gotAccept != "application/json" || gotUA != "bizgraph" {
		t.Errorf("headers Accept=%q User-Agent=%q", gotAccept, gotUA)
	}
}

func TestFetch_HTTPErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		check     func(error) bool
		checkName string
	}{
		{"not found", http.StatusNotFound, "", IsNotFound, "IsNotFound"},
		{"rate limited", http.StatusTooManyRequests, "", IsRateLimited, "IsRateLimited"},
		{"server error", http.StatusInternalServerError, "", func(err error) bool {
			var apiErr *APIError
			return errors.As(err, &apiErr) && apiErr.StatusCode == 500
		}, "APIError 500"},
		{"bad json", http.StatusOK, "{not json", func(err error) bool {
			return errors.Is(err, ErrInvalidResponse)
		}, "ErrInvalidResponse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(WithHTTPClient(srv.Client()), WithRateLimit(0))
			_, err := c.Fetch(context.Background(), srv.URL)
			if err == nil {
				t.Fatal("Fetch() expected error")
			}
			if !tt.check(err) {
				t.Errorf("error %v does not satisfy %s", err, tt.checkName)
			}
		})
	}
}

func TestFetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(WithRateLimit(0), WithTimeout(time.Second))
	_, err := c.Fetch(context.Background(), url)
	if !errors.Is(err, ErrNetworkError) {
		t.Errorf("error = %v, want ErrNetworkError", err)
	}
}

func TestFetch_CancelledWhileRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(batchJSON))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()), WithRateLimit(0.001))
	if _, err := c.Fetch(context.Background(), srv.URL); err != nil {
		t.Fatalf("first Fetch() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Fetch(ctx, srv.URL); err == nil {
		t.Error("second Fetch() should fail waiting on the limiter")
	}
}

func TestFetch_Files(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "batch.json")
	if err := os.WriteFile(path, []byte(batchJSON), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewClient()
	for _, raw := range []string{path, "file://" + path} {
		b, err := c.Fetch(context.Background(), raw)
		if err != nil {
			t.Fatalf("Fetch(%q) error = %v", raw, err)
		}
		if len(b.Nodes) != 1 {
			t.Errorf("Fetch(%q) nodes = %d", raw, len(b.Nodes))
		}
	}

	_, err := c.Fetch(context.Background(), filepath.Join(dir, "missing.json"))
	if !IsNotFound(err) {
		t.Errorf("missing file error = %v, want not found", err)
	}
}

func TestFetch_BaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/graph" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(batchJSON))
	}))
	defer srv.Close()

	c := NewClient(WithHTTPClient(srv.Client()), WithBaseURL(srv.URL+"/api/"), WithRateLimit(0))
	if _, err := c.Fetch(context.Background(), "graph"); err != nil {
		t.Errorf("Fetch() error = %v", err)
	}
}

func TestFetch_UnsupportedScheme(t *testing.T) {
	if _, err := NewClient().Fetch(context.Background(), "ftp://example.com/x"); err == nil {
		t.Error("expected error for ftp scheme")
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		url, key, value, want string
	}{
		{"https://crm/graph", "id", "001", "https://crm/graph?id=001"},
		{"https://crm/graph?a=1", "id", "001", "https://crm/graph?a=1&id=001"},
		{"https://crm/graph?", "id", "001", "https://crm/graph?id=001"},
		{"https://crm/graph", "q", "a b&c", "https://crm/graph?q=a%20b%26c"},
		{"/graph", "k y", "v", "/graph?k%20y=v"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.url, tt.key, tt.value); got != tt.want {
			t.Errorf("BuildURL(%q, %q, %q) = %q, want %q", tt.url, tt.key, tt.value, got, tt.want)
		}
	}
}
