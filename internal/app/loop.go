// Package app runs the polling loop: the control logic tying session
// extraction, catalog fetching, download tracking, downloading and
// notification together on a timer.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dfwatch/internal/contracts"
	"dfwatch/internal/domain/consts"
	"dfwatch/internal/logging"
	"dfwatch/internal/models"
	"dfwatch/internal/scraper"
	"dfwatch/internal/session"
)

const reauthMsg = "dfwatch: please log in to Digital Foundry in your browser again"

// PollLoop runs one poll cycle at a time, to completion, with no
// overlap between cycles. Downloads within a cycle are strictly
// sequential.
type PollLoop struct {
	settings *models.Settings
	session  contracts.SessionProvider
	catalog  contracts.CatalogFetcher
	tracker  contracts.DownloadTracker
	fetcher  contracts.Downloader
	notifier contracts.Notifier

	interval time.Duration
	grace    time.Duration
	signals  chan time.Time

	// cred is retained across cycles and discarded when the site stops
	// accepting it. Touched only from the loop goroutine.
	cred *models.Credential

	// lastSignal is touched only from the signal watcher goroutine.
	lastSignal time.Time
}

// NewPollLoop wires a loop from its collaborators.
func NewPollLoop(
	settings *models.Settings,
	sp contracts.SessionProvider,
	cf contracts.CatalogFetcher,
	dt contracts.DownloadTracker,
	dl contracts.Downloader,
	n contracts.Notifier,
) *PollLoop {
	return &PollLoop{
		settings: settings,
		session:  sp,
		catalog:  cf,
		tracker:  dt,
		fetcher:  dl,
		notifier: n,
		interval: time.Duration(settings.RefreshMins) * time.Minute,
		grace:    consts.SignalGraceWindow,
		signals:  make(chan time.Time, 4),
	}
}

// Interrupt records one interruption signal. A lone signal accelerates
// the next check; a second within the grace window shuts the loop down.
// Safe to call from a signal-handling goroutine.
func (p *PollLoop) Interrupt() {
	select {
	case p.signals <- time.Now():
	default:
	}
}

// Run polls until the context is canceled or a double interrupt is
// received. The first cycle runs immediately.
func (p *PollLoop) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	kick := make(chan struct{}, 1)
	go p.watchSignals(ctx, cancel, kick)

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		p.runCycle(ctx)
		if ctx.Err() != nil {
			logging.I("Shutting down...")
			return nil
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(p.interval)
		logging.I("Next check in %s.", p.interval)

		select {
		case <-ctx.Done():
			logging.I("Shutting down...")
			return nil
		case <-timer.C:
		case <-kick:
			logging.I("Interrupt received, checking now.")
		}
	}
}

// watchSignals consumes interruption signals for the lifetime of the
// loop. One signal kicks the waiter; two within the grace window cancel
// everything, including an in-flight download.
func (p *PollLoop) watchSignals(ctx context.Context, cancel context.CancelFunc, kick chan<- struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case t := <-p.signals:
			if !p.lastSignal.IsZero() && t.Sub(p.lastSignal) <= p.grace {
				logging.I("Second interrupt within %s, terminating.", p.grace)
				cancel()
				return
			}
			p.lastSignal = t
			select {
			case kick <- struct{}{}:
			default:
			}
		}
	}
}

// runCycle performs one Idle -> Checking -> (Downloading)* -> Idle
// traversal. All errors are absorbed here: nothing a cycle hits may
// terminate the process.
func (p *PollLoop) runCycle(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	logging.I("Checking for new videos...")

	if p.cred == nil {
		cred, err := p.session.Acquire(ctx, p.settings.Browser)
		if err != nil {
			if errors.Is(err, session.ErrSessionUnavailable) {
				logging.W("%v", err)
				p.notifier.Notify(ctx, contracts.NotifyReauthRequired, reauthMsg)
			} else {
				logging.E("failed to acquire session: %v", err)
			}
			return
		}
		p.cred = cred
	}

	videos, err := p.catalog.ListVideos(ctx, p.cred)
	if err != nil {
		switch {
		case errors.Is(err, scraper.ErrSessionInvalid):
			logging.W("Session no longer valid: %v", err)
			p.cred = nil
			p.notifier.Notify(ctx, contracts.NotifyReauthRequired, reauthMsg)
		case ctx.Err() != nil:
			// Shutdown mid-fetch, nothing to report.
		default:
			logging.E("failed to list videos, will retry next cycle: %v", err)
		}
		return
	}

	fresh := p.tracker.DiffNew(videos)
	if len(fresh) == 0 {
		logging.I("No new videos.")
		return
	}
	logging.I("Found %d new video(s)!", len(fresh))
	for i, entry := range fresh {
		if i == consts.MaxDisplayedVideos {
			logging.I("  ... and %d more", len(fresh)-i)
			break
		}
		logging.I("  %s", entry.Title)
	}

	for i, entry := range fresh {
		// Observed between steps so a double interrupt is honored
		// promptly even mid-cycle.
		if ctx.Err() != nil {
			return
		}

		logging.I("%d/%d %s", i+1, len(fresh), entry.Title)
		if err := p.fetcher.Fetch(ctx, p.cred, entry, p.settings.VideoDir); err != nil {
			if errors.Is(err, scraper.ErrSessionInvalid) {
				logging.W("Session went stale mid-cycle: %v", err)
				p.cred = nil
				p.notifier.Notify(ctx, contracts.NotifyReauthRequired, reauthMsg)
				return
			}
			if ctx.Err() == nil {
				logging.E("Failed to download %q, will retry next cycle: %v", entry.ID, err)
			}
			continue
		}

		// Mark strictly after a successful download; a failed mark
		// means the entry is re-downloaded next cycle, never lost.
		if err := p.tracker.MarkDownloaded(entry.ID); err != nil {
			logging.E("Downloaded %q but failed to record it: %v", entry.ID, err)
			continue
		}

		p.notifier.Notify(ctx, contracts.NotifyNewVideo,
			fmt.Sprintf("New video downloaded: %s", entry.Title))
	}

	logging.I("All new videos processed.")
}
