package download

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dfwatch/internal/contracts"
	"dfwatch/internal/models"
)

type staticResolver struct {
	file models.VideoFile
	err  error
}

func (r *staticResolver) ResolveVideoFile(_ context.Context, _ *models.Credential, _ string) (models.VideoFile, error) {
	return r.file, r.err
}

func TestFileName(t *testing.T) {
	a := FileName("A Video: The Sequel?", "/news/a-video")
	if strings.ContainsAny(a, `\/:*?"<>|`) {
		t.Fatalf("expected blacklist characters stripped, got %q", a)
	}
	if !strings.HasSuffix(a, ".mp4") {
		t.Fatalf("expected .mp4 suffix, got %q", a)
	}

	// Deterministic across calls.
	if b := FileName("A Video: The Sequel?", "/news/a-video"); a != b {
		t.Fatalf("expected deterministic name, got %q then %q", a, b)
	}

	// Same title, different IDs must not collide.
	if c := FileName("A Video: The Sequel?", "/news/a-video-2"); a == c {
		t.Fatalf("expected distinct names for distinct IDs, both %q", a)
	}

	// Empty title falls back to the ID hash.
	if d := FileName("", "/news/a-video"); d == ".mp4" || d == "" {
		t.Fatalf("expected hash fallback for empty title, got %q", d)
	}
}

func TestFetch_WritesFileAndCleansUpTemp(t *testing.T) {
	payload := strings.Repeat("video-bytes", 1000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	dest := t.TempDir()
	f := NewFetcher(&staticResolver{file: models.VideoFile{URL: srv.URL + "/file.mp4", Title: "Nice Video"}})

	entry := models.CatalogEntry{ID: "/news/nice-video", Title: "nice video", PageURL: srv.URL + "/news/nice-video"}
	if err := f.Fetch(context.Background(), nil, entry, dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	files, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected exactly one file, got %d", len(files))
	}
	name := files[0].Name()
	if !strings.HasPrefix(name, "Nice Video") || !strings.HasSuffix(name, ".mp4") {
		t.Fatalf("unexpected filename %q", name)
	}

	data, err := os.ReadFile(filepath.Join(dest, name))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != payload {
		t.Fatalf("file contents do not match payload (%d vs %d bytes)", len(data), len(payload))
	}
}

func TestFetch_ContentLengthMismatchIsContentError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "9999")
		// Write fewer bytes than promised, then cut the connection.
		_, _ = w.Write([]byte("short"))
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		conn, _, err := hj.Hijack()
		if err != nil {
			return
		}
		_ = conn.Close()
	}))
	defer srv.Close()

	dest := t.TempDir()
	f := NewFetcher(&staticResolver{file: models.VideoFile{URL: srv.URL + "/file.mp4", Title: "Cut Short"}})

	entry := models.CatalogEntry{ID: "/news/cut-short"}
	err := f.Fetch(context.Background(), nil, entry, dest)
	if err == nil {
		t.Fatalf("expected an error for truncated body")
	}
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *download.Error, got %T: %v", err, err)
	}

	// No partial or final file may remain.
	files, readErr := os.ReadDir(dest)
	if readErr != nil {
		t.Fatalf("unexpected error: %v", readErr)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files left behind, got %v", files)
	}
}

func TestFetch_HTTPErrorIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(&staticResolver{file: models.VideoFile{URL: srv.URL + "/file.mp4", Title: "Gone"}})
	err := f.Fetch(context.Background(), nil, models.CatalogEntry{ID: "/news/gone"}, t.TempDir())

	var de *Error
	if !errors.As(err, &de) || de.Kind != KindNetwork {
		t.Fatalf("expected network error, got: %v", err)
	}
}

func TestFetch_ResolverErrorPropagates(t *testing.T) {
	want := fmt.Errorf("no download link")
	f := NewFetcher(&staticResolver{err: want})
	err := f.Fetch(context.Background(), nil, models.CatalogEntry{ID: "/news/x"}, t.TempDir())
	if err == nil || !errors.Is(err, want) {
		t.Fatalf("expected resolver error to propagate, got: %v", err)
	}
}

func TestFetch_NoDownloadLinkIsContentError(t *testing.T) {
	resolverErr := fmt.Errorf("%w on %q", contracts.ErrNoDownloadLink, "/news/x")
	f := NewFetcher(&staticResolver{err: resolverErr})
	err := f.Fetch(context.Background(), nil, models.CatalogEntry{ID: "/news/x"}, t.TempDir())

	var de *Error
	if !errors.As(err, &de) || de.Kind != KindContent {
		t.Fatalf("expected content error for a missing download link, got: %v", err)
	}
	if !errors.Is(err, contracts.ErrNoDownloadLink) {
		t.Fatalf("expected sentinel to survive wrapping, got: %v", err)
	}
}

func TestFetch_StalledStreamIsNetworkError(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		// A few bytes, then silence with the connection held open.
		_, _ = w.Write([]byte("partial"))
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		<-block
	}))
	defer srv.Close()
	defer close(block)

	dest := t.TempDir()
	f := NewFetcher(&staticResolver{file: models.VideoFile{URL: srv.URL + "/file.mp4", Title: "Stalled"}})
	f.idleTimeout = 50 * time.Millisecond

	done := make(chan error, 1)
	go func() {
		done <- f.Fetch(context.Background(), nil, models.CatalogEntry{ID: "/news/stalled"}, dest)
	}()

	var err error
	select {
	case err = <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Fetch did not return: stalled stream was not cut off")
	}

	var de *Error
	if !errors.As(err, &de) || de.Kind != KindNetwork {
		t.Fatalf("expected network error for a stalled stream, got: %v", err)
	}

	files, readErr := os.ReadDir(dest)
	if readErr != nil {
		t.Fatalf("unexpected error: %v", readErr)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files left behind, got %v", files)
	}
}

func TestFetch_CanceledContextAborts(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Length", "1000000")
		_, _ = w.Write([]byte("start"))
		if fl, ok := w.(http.Flusher); ok {
			fl.Flush()
		}
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	f := NewFetcher(&staticResolver{file: models.VideoFile{URL: srv.URL + "/file.mp4", Title: "Hung"}})

	done := make(chan error, 1)
	go func() {
		done <- f.Fetch(ctx, nil, models.CatalogEntry{ID: "/news/hung"}, t.TempDir())
	}()
	cancel()

	if err := <-done; err == nil {
		t.Fatalf("expected cancellation error")
	}
}
