// Package logging configures program logging and exposes leveled print
// helpers used throughout the codebase.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu         sync.Mutex
	debugLevel int
	logFile    *os.File

	log = zerolog.New(consoleWriter(os.Stderr)).With().Timestamp().Logger()
)

func consoleWriter(out io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "2006-01-02 15:04:05",
	}
}

// Setup sets the debug level and, when targetDir is non-empty, tees log
// output into a file inside it. Safe to call once at startup.
func Setup(targetDir, fileName string, level int) error {
	mu.Lock()
	defer mu.Unlock()

	debugLevel = level
	if level > 0 {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if targetDir == "" {
		return nil
	}

	path := filepath.Join(targetDir, fileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %q: %w", path, err)
	}
	logFile = f

	log = zerolog.New(zerolog.MultiLevelWriter(consoleWriter(os.Stderr), f)).
		With().Timestamp().Logger()
	log.Info().Msgf("=========== %s ===========", time.Now().Format(time.RFC1123Z))
	return nil
}

// Close flushes and closes the log file, if one was opened.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// I logs informational messages.
func I(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

// S logs success messages.
func S(format string, args ...any) {
	log.Info().Msgf(format, args...)
}

// W logs warnings.
func W(format string, args ...any) {
	log.Warn().Msgf(format, args...)
}

// E logs errors.
func E(format string, args ...any) {
	log.Error().Msgf(format, args...)
}

// D logs debug messages at or below the configured debug level.
func D(l int, format string, args ...any) {
	if l > debugLevel {
		return
	}
	log.Debug().Msgf(format, args...)
}
