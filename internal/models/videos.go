// Package models holds shared data types.
package models

import (
	"net/http"
	"time"
)

// CatalogEntry is one video currently advertised on the site.
//
// Entries are produced fresh on every catalog fetch; only the ID
// outlives a poll cycle (via the download tracker).
type CatalogEntry struct {
	ID        string // canonical page path, stable across visits
	Title     string
	PageURL   string
	Published time.Time
}

// VideoFile is a resolved download target for a catalog entry.
type VideoFile struct {
	URL   string
	Title string
}

// Credential is an opaque bundle of site cookies lifted from a local
// browser. It is never persisted; validity is only discoverable by
// using it.
type Credential struct {
	Cookies    []*http.Cookie
	AcquiredAt time.Time
}
