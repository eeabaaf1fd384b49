// Package tracker maintains the durable record of already-downloaded
// video identifiers: one ID per line in a plain text file. The file is
// the sole source of truth for "new vs already seen" and survives
// process restarts.
package tracker

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"dfwatch/internal/logging"
	"dfwatch/internal/models"
)

// Tracker is the known-downloads record. It is written from a single
// goroutine (the poll loop); the mutex only guards against accidental
// concurrent use.
type Tracker struct {
	mu    sync.Mutex
	path  string
	known map[string]struct{}
}

// Load reads the record at path. A missing file is an empty set, not an
// error; the file is created on the first mark.
func Load(path string) (*Tracker, error) {
	t := &Tracker{
		path:  path,
		known: make(map[string]struct{}),
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, nil
		}
		return nil, fmt.Errorf("failed to open tracker file %q: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.E("failed to close file %q: %v", path, err)
		}
	}()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue // skip blank lines and comments
		}
		t.known[line] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tracker file %q: %w", path, err)
	}

	logging.D(1, "Loaded %d known download(s) from %q", len(t.known), path)
	return t, nil
}

// Known reports whether id has been recorded.
func (t *Tracker) Known(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.known[id]
	return ok
}

// Len returns the number of recorded identifiers.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.known)
}

// DiffNew returns the catalog entries whose ID is not yet recorded,
// preserving catalog order. It does not mutate the set.
func (t *Tracker) DiffNew(catalog []models.CatalogEntry) []models.CatalogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()

	fresh := make([]models.CatalogEntry, 0, len(catalog))
	for _, entry := range catalog {
		if _, ok := t.known[entry.ID]; !ok {
			fresh = append(fresh, entry)
		}
	}
	return fresh
}

// MarkDownloaded durably records an identifier. Marking an ID twice is
// a no-op. The append is synced to disk before returning so a crash
// after a successful download cannot forget the file exists.
func (t *Tracker) MarkDownloaded(id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.known[id]; ok {
		return nil
	}

	if dir := filepath.Dir(t.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %q: %w", t.path, err)
		}
	}

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open tracker file %q: %w", t.path, err)
	}

	if _, err := f.WriteString(id + "\n"); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to tracker file %q: %w", t.path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync tracker file %q: %w", t.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close tracker file %q: %w", t.path, err)
	}

	t.known[id] = struct{}{}
	return nil
}
