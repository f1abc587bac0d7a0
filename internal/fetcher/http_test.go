package fetcher

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/IshaanNene/unioncorpus/internal/config"
	"github.com/IshaanNene/unioncorpus/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Harvest.RequestTimeout = 5 * time.Second
	f, err := NewHTTPFetcher(cfg, testLogger)
	if err != nil {
		t.Fatalf("create fetcher: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><h1>Hello</h1></html>"))
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := Get(context.Background(), f, srv.URL+"/story", types.TagArticle)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if !resp.IsSuccess() {
		t.Errorf("expected success, got %d", resp.StatusCode)
	}
	doc, err := resp.Document()
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	if doc.Find("h1").Text() != "Hello" {
		t.Errorf("unexpected h1 %q", doc.Find("h1").Text())
	}
}

func TestFetchRecordsFinalURL(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><h1>Moved</h1></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := Get(context.Background(), f, srv.URL+"/old", types.TagArticle)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if resp.FinalURL != srv.URL+"/new" {
		t.Errorf("expected final url %q, got %q", srv.URL+"/new", resp.FinalURL)
	}
	if resp.Request.URLString() != srv.URL+"/old" {
		t.Errorf("request url changed: %q", resp.Request.URLString())
	}
}

func TestFetchNon2xxIsFetchError(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"not found", http.StatusNotFound, false},
		{"forbidden", http.StatusForbidden, false},
		{"server error", http.StatusBadGateway, true},
		{"rate limited", http.StatusTooManyRequests, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.status == http.StatusTooManyRequests {
					w.Header().Set("Retry-After", "3")
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			f := newTestFetcher(t)
			_, err := Get(context.Background(), f, srv.URL, types.TagArticle)
			var fe *types.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fe.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, fe.StatusCode)
			}
			if fe.Retryable != tt.retryable {
				t.Errorf("expected retryable=%v, got %v", tt.retryable, fe.Retryable)
			}
			if tt.status == http.StatusTooManyRequests && fe.RetryAfter != 3*time.Second {
				t.Errorf("expected 3s retry-after, got %s", fe.RetryAfter)
			}
		})
	}
}

func TestFetchBrotli(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		bw.Write([]byte("<urlset></urlset>"))
		bw.Close()
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := Get(context.Background(), f, srv.URL, types.TagSitemap)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if string(resp.Body) != "<urlset></urlset>" {
		t.Errorf("unexpected decoded body %q", resp.Body)
	}
}

func TestGetInvalidURL(t *testing.T) {
	f := newTestFetcher(t)
	_, err := Get(context.Background(), f, "mailto:someone@example.com", types.TagArticle)
	var fe *types.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !errors.Is(err, types.ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL in chain, got %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		header string
		want   time.Duration
	}{
		{"", 5 * time.Second},
		{"10", 10 * time.Second},
		{"600", 120 * time.Second},
		{"garbage", 5 * time.Second},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(tt.header); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", tt.header, got, tt.want)
		}
	}
}

func TestFetchGzippedSitemapFile(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte("<urlset></urlset>"))
	zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != acceptXML {
			t.Errorf("sitemap fetch sent Accept %q", got)
		}
		w.Header().Set("Content-Type", "application/x-gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	resp, err := Get(context.Background(), f, srv.URL+"/sitemap.xml.gz", types.TagSitemap)
	if err != nil {
		t.Fatalf("fetch error: %v", err)
	}
	if string(resp.Body) != "<urlset></urlset>" {
		t.Errorf("unexpected body %q", resp.Body)
	}
}

func TestFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := newTestFetcher(t)
	_, err := Get(context.Background(), f, srv.URL, types.TagArticle)
	if !errors.Is(err, types.ErrEmptyResponse) {
		t.Errorf("expected ErrEmptyResponse, got %v", err)
	}
}
