package consts

import "time"

// Network timeouts
const (
	ScraperTimeout = 30 * time.Second
	NotifyTimeout  = 10 * time.Second
)

// Poll loop behavior
const (
	DefaultRefreshMins = 60
	SignalGraceWindow  = 3 * time.Second
)

// Download behavior
const (
	DownloadBufferSize  = 64 * 1024
	ProgressLogInterval = 5 * time.Second

	// DownloadIdleTimeout bounds how long a download stream may go
	// without delivering any bytes before it is treated as hung.
	DownloadIdleTimeout = 30 * time.Second
)
