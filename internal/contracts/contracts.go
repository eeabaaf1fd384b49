// Package contracts defines the interfaces the poll loop is built
// against. Concrete implementations live in their own packages and are
// injected at startup, which keeps the loop testable with fakes.
package contracts

import (
	"context"
	"errors"

	"dfwatch/internal/models"
)

// SessionProvider extracts site login cookies from a local browser's
// cookie store. Pure extraction, no network calls.
type SessionProvider interface {
	Acquire(ctx context.Context, browser models.Browser) (*models.Credential, error)
}

// CatalogFetcher lists the videos currently available to the account.
// A catalog that comes back empty is a normal steady state; an
// unauthenticated response is reported as an error instead.
type CatalogFetcher interface {
	ListVideos(ctx context.Context, cred *models.Credential) ([]models.CatalogEntry, error)
}

// DownloadTracker is the durable record of already-fetched videos.
type DownloadTracker interface {
	// DiffNew returns the catalog entries not yet recorded, preserving
	// catalog order.
	DiffNew(catalog []models.CatalogEntry) []models.CatalogEntry

	// MarkDownloaded durably records an identifier. Idempotent.
	MarkDownloaded(id string) error
}

// Downloader streams one video into the destination directory.
type Downloader interface {
	Fetch(ctx context.Context, cred *models.Credential, entry models.CatalogEntry, destDir string) error
}

// ErrNoDownloadLink reports a video page that loaded fine but carries
// no download button: the page content is wrong, not the connection.
var ErrNoDownloadLink = errors.New("no download link found")

// LinkResolver turns a video page into a direct file URL.
type LinkResolver interface {
	ResolveVideoFile(ctx context.Context, cred *models.Credential, pageURL string) (models.VideoFile, error)
}

// NotifyKind distinguishes the notification events the loop emits.
type NotifyKind int

const (
	NotifyNewVideo NotifyKind = iota + 1
	NotifyReauthRequired
)

// Notifier delivers human-readable alerts. Implementations must never
// fail a poll cycle: delivery errors are logged and swallowed.
type Notifier interface {
	Notify(ctx context.Context, kind NotifyKind, msg string)
}
