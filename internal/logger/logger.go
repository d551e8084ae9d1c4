// Package logger sets up the run log of a UI test run.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wanmail/uibase/config"
)

// FileName returns the name of the run log file of browser for the day of
// now, e.g. 2024-05-01_chrome.log.
func FileName(browser string, now time.Time) string {
	return fmt.Sprintf("%s_%s.log", now.Format("2006-01-02"), browser)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup builds the run logger described by cfg and installs it as the global
// zerolog logger. The returned Closer closes the run log file, if any.
func Setup(cfg config.Logging, browser string) (zerolog.Logger, io.Closer, error) {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)
	text := strings.EqualFold(cfg.Format, "text")
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("creating log dir: %w", err)
		}
		path := filepath.Join(cfg.Dir, FileName(browser, time.Now()))
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("opening run log: %w", err)
		}
		closer = f
		if text {
			writers = append(writers, zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: time.RFC3339})
		} else {
			writers = append(writers, f)
		}
	}
	if cfg.Console || len(writers) == 0 {
		if text {
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		} else {
			writers = append(writers, os.Stderr)
		}
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Str("browser", browser).Logger()
	log.Logger = l
	return l, closer, nil
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
