// Package main is the entrypoint of dfwatch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"dfwatch/internal/app"
	"dfwatch/internal/cfg"
	"dfwatch/internal/domain/consts"
	"dfwatch/internal/download"
	"dfwatch/internal/logging"
	"dfwatch/internal/notify"
	"dfwatch/internal/scraper"
	"dfwatch/internal/session"
	"dfwatch/internal/tracker"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	startTime := time.Now()

	if err := cfg.Execute(); err != nil {
		return err
	}
	if !cfg.ShouldRun() {
		return nil // --help and friends
	}

	settings, err := cfg.Load(cfg.ConfigFile())
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	if err := logging.Setup(settings.VideoDir, consts.LogFile, cfg.DebugLevel()); err != nil {
		fmt.Fprintf(os.Stderr, "Notice: log file was not created: %v\n", err)
	}
	defer logging.Close()

	logging.I("dfwatch started at %s, watching with %s cookies every %d minute(s)",
		startTime.Format("2006-01-02 15:04:05 MST"), settings.Browser, settings.RefreshMins)

	known, err := tracker.Load(settings.TrackerFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	scrape := scraper.New(settings.UseFeed, settings.Collection)
	loop := app.NewPollLoop(
		settings,
		session.NewProvider(),
		scrape,
		known,
		download.NewFetcher(scrape),
		notify.New(settings.Notify),
	)

	// One interrupt forces an immediate recheck; two within the grace
	// window shut the loop down cleanly.
	sigc := make(chan os.Signal, 2)
	signal.Notify(sigc, os.Interrupt)
	go func() {
		for range sigc {
			loop.Interrupt()
		}
	}()

	return loop.Run(context.Background())
}
