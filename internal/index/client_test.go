package index

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/corpora-dev/corpora/internal/resilience"
)

func testPolicy() resilience.RetryPolicy {
	return resilience.RetryPolicy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestFetchIndex(t *testing.T) {
	t.Parallel()

	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
		io.WriteString(w, sampleIndex)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"/index.json", nil, testPolicy())
	ix, err := f.FetchIndex(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ix.Package("brown") == nil {
		t.Error("index missing brown")
	}
	if ua, _ := gotUA.Load().(string); !strings.HasPrefix(ua, "corpora/") {
		t.Errorf("User-Agent = %q, want corpora/ prefix", ua)
	}
}

func TestFetchIndex_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusServiceUnavailable)
			return
		}
		io.WriteString(w, sampleIndex)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, nil, testPolicy())
	if _, err := f.FetchIndex(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestFetchIndex_NotFoundNoRetry(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, nil, testPolicy())
	_, err := f.FetchIndex(context.Background())

	var statusErr *resilience.StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 StatusError", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 404)", calls.Load())
	}
}

func TestOpenArchive_RelativeURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/models/punkt_models.zip":
			io.WriteString(w, "archive bytes")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"/data/index.json", nil, testPolicy())
	pkg := &Package{ID: "punkt", Category: "tokenizers", Checksum: "x",
		Filename: "punkt_models.zip", URL: "models/punkt_models.zip"}

	body, size, err := f.OpenArchive(context.Background(), pkg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "archive bytes" {
		t.Errorf("body = %q", data)
	}
	if size != int64(len("archive bytes")) {
		t.Errorf("size = %d, want %d", size, len("archive bytes"))
	}
}

func TestOpenArchive_DefaultsToArchiveName(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/brown.zip" {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, "zip")
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL+"/index.json", nil, testPolicy())
	pkg := &Package{ID: "brown", Category: "corpora", Checksum: "x"}

	body, _, err := f.OpenArchive(context.Background(), pkg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body.Close()
}

func TestNewHTTPClient_BadProxy(t *testing.T) {
	t.Parallel()

	if _, err := NewHTTPClient("://not-a-url", time.Second); err == nil {
		t.Error("expected error for malformed proxy url")
	}
}
