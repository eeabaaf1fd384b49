// Package download streams video files into the destination directory.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"dfwatch/internal/contracts"
	"dfwatch/internal/domain/consts"
	"dfwatch/internal/logging"
	"dfwatch/internal/models"
)

// Fetcher downloads one video at a time.
type Fetcher struct {
	client      *http.Client
	resolver    contracts.LinkResolver
	idleTimeout time.Duration
}

// NewFetcher returns a Fetcher that resolves file URLs through resolver.
// The client carries no overall timeout: large files take as long as
// they take. A stream that stops delivering bytes for idleTimeout is
// cut off instead, so a hung connection cannot stall the poll cycle.
func NewFetcher(resolver contracts.LinkResolver) *Fetcher {
	return &Fetcher{
		client:      &http.Client{},
		resolver:    resolver,
		idleTimeout: consts.DownloadIdleTimeout,
	}
}

// Fetch resolves the entry's file URL and streams it into destDir,
// writing to a temp file and renaming into place on success. Any
// failure leaves no partial file behind and returns a classified
// *Error; the entry is never considered downloaded.
func (f *Fetcher) Fetch(ctx context.Context, cred *models.Credential, entry models.CatalogEntry, destDir string) error {
	vf, err := f.resolver.ResolveVideoFile(ctx, cred, entry.PageURL)
	if err != nil {
		if errors.Is(err, contracts.ErrNoDownloadLink) {
			return contentErr(entry.ID, err)
		}
		return netErr(entry.ID, err)
	}

	title := vf.Title
	if title == "" {
		title = entry.Title
	}
	finalPath := filepath.Join(destDir, FileName(title, entry.ID))
	tempPath := finalPath + consts.PartialSuffix

	reqCtx, cancelReq := context.WithCancel(ctx)
	defer cancelReq()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, vf.URL, nil)
	if err != nil {
		return netErr(entry.ID, err)
	}
	if cred != nil {
		for _, c := range cred.Cookies {
			req.AddCookie(c)
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return netErr(entry.ID, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.E("failed to close download body for %q: %v", entry.ID, err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return netErr(entry.ID, fmt.Errorf("file URL returned status %d", resp.StatusCode))
	}

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return diskErr(entry.ID, err)
	}

	out, err := os.Create(tempPath)
	if err != nil {
		return diskErr(entry.ID, err)
	}

	// Watchdog: a stream that delivers nothing for idleTimeout is cut
	// off by canceling the request context, which fails the next read.
	var received atomic.Int64
	var stalled atomic.Bool
	watchdogDone := make(chan struct{})
	go func() {
		defer close(watchdogDone)
		ticker := time.NewTicker(f.idleTimeout)
		defer ticker.Stop()
		last := int64(-1)
		for {
			select {
			case <-reqCtx.Done():
				return
			case <-ticker.C:
				if cur := received.Load(); cur != last {
					last = cur
					continue
				}
				stalled.Store(true)
				cancelReq()
				return
			}
		}
	}()

	written, copyErr := copyWithProgress(out, resp.Body, resp.ContentLength, title, &received)
	cancelReq()
	<-watchdogDone

	if copyErr != nil && stalled.Load() {
		copyErr = fmt.Errorf("stream stalled: no data received for %s", f.idleTimeout)
	}

	if closeErr := out.Close(); copyErr == nil && closeErr != nil {
		copyErr = diskErr(entry.ID, closeErr)
	}

	if copyErr == nil && resp.ContentLength > 0 && written != resp.ContentLength {
		copyErr = contentErr(entry.ID,
			fmt.Errorf("size mismatch: got %d bytes, expected %d", written, resp.ContentLength))
	}

	if copyErr != nil {
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			logging.E("failed to remove partial file %q: %v", tempPath, err)
		}
		var de *Error
		if errors.As(copyErr, &de) {
			return copyErr
		}
		return netErr(entry.ID, copyErr)
	}

	if err := os.Rename(tempPath, finalPath); err != nil {
		return diskErr(entry.ID, err)
	}

	logging.S("Downloaded %q (%d bytes) to %s", title, written, finalPath)
	return nil
}

// copyWithProgress streams body to out, logging progress at intervals
// rather than per chunk. Each read is reported through received so the
// stall watchdog can see the stream is alive.
func copyWithProgress(out io.Writer, body io.Reader, total int64, title string, received *atomic.Int64) (int64, error) {
	var (
		written  int64
		buf      = make([]byte, consts.DownloadBufferSize)
		lastLog  = time.Now()
		lastSize int64
	)

	for {
		n, readErr := body.Read(buf)
		if n > 0 {
			received.Add(int64(n))
			wn, writeErr := out.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, writeErr
			}
			if wn < n {
				return written, io.ErrShortWrite
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, readErr
		}

		if now := time.Now(); now.Sub(lastLog) >= consts.ProgressLogInterval {
			rate := float64(written-lastSize) / now.Sub(lastLog).Seconds()
			if total > 0 {
				logging.I("%s: %d%% (%.1f MiB/s)", title, written*100/total, rate/(1<<20))
			} else {
				logging.I("%s: %.1f MiB (%.1f MiB/s)", title, float64(written)/(1<<20), rate/(1<<20))
			}
			lastLog = now
			lastSize = written
		}
	}
}
