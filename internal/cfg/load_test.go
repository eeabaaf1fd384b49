package cfg_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dfwatch/internal/cfg"
	"dfwatch/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dfwatch.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return path
}

func TestLoad_MinimalConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
browser = "firefox"
video_dir = "`+dir+`"
`)

	s, err := cfg.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Browser != models.BrowserFirefox {
		t.Fatalf("unexpected browser %q", s.Browser)
	}
	if s.RefreshMins != 60 {
		t.Fatalf("expected default refresh_mins 60, got %d", s.RefreshMins)
	}
	if s.Notify != nil {
		t.Fatalf("expected notifications disabled without notify block")
	}
	if s.TrackerFile != filepath.Join(dir, "grabbed-videos.txt") {
		t.Fatalf("unexpected tracker file %q", s.TrackerFile)
	}
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
browser = "chrome"
refresh_mins = 15
video_dir = "`+dir+`"
use_feed = true

[notify]
account_sid = "AC123"
auth_token = "tok"
from = "+15550001111"
to = "+15552223333"
`)

	s, err := cfg.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.RefreshMins != 15 {
		t.Fatalf("unexpected refresh_mins %d", s.RefreshMins)
	}
	if !s.UseFeed {
		t.Fatalf("expected use_feed true")
	}
	if s.Notify == nil || s.Notify.AccountSID != "AC123" || s.Notify.To != "+15552223333" {
		t.Fatalf("unexpected notify config: %+v", s.Notify)
	}
}

func TestLoad_Collection(t *testing.T) {
	path := writeConfig(t, `
browser = "chrome"
video_dir = "` + t.TempDir() + `"
collection = "/df-retro/"
`)

	s, err := cfg.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Collection != "df-retro" {
		t.Fatalf("expected collection slashes trimmed, got %q", s.Collection)
	}
}

func TestLoad_InvalidBrowser(t *testing.T) {
	path := writeConfig(t, `
browser = "netscape"
video_dir = "`+t.TempDir()+`"
`)

	_, err := cfg.Load(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported browser") {
		t.Fatalf("expected unsupported browser error, got: %v", err)
	}
}

func TestLoad_NonPositiveRefresh(t *testing.T) {
	path := writeConfig(t, `
browser = "chrome"
refresh_mins = 0
video_dir = "`+t.TempDir()+`"
`)

	if _, err := cfg.Load(path); err == nil {
		t.Fatalf("expected error for refresh_mins = 0")
	}

	path = writeConfig(t, `
browser = "chrome"
refresh_mins = -5
video_dir = "`+t.TempDir()+`"
`)

	if _, err := cfg.Load(path); err == nil {
		t.Fatalf("expected error for negative refresh_mins")
	}
}

func TestLoad_MissingVideoDir(t *testing.T) {
	path := writeConfig(t, `browser = "safari"`)
	if _, err := cfg.Load(path); err == nil {
		t.Fatalf("expected error for missing video_dir")
	}
}

func TestLoad_IncompleteNotifyBlock(t *testing.T) {
	path := writeConfig(t, `
browser = "chrome"
video_dir = "`+t.TempDir()+`"

[notify]
account_sid = "AC123"
`)

	_, err := cfg.Load(path)
	if err == nil || !strings.Contains(err.Error(), "notify block") {
		t.Fatalf("expected incomplete notify block error, got: %v", err)
	}
}

func TestLoad_CreatesVideoDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "videos")
	path := writeConfig(t, `
browser = "chrome"
video_dir = "`+missing+`"
`)

	if _, err := cfg.Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(missing); err != nil {
		t.Fatalf("expected video dir to be created: %v", err)
	}
}
