// Package webtest opens uibase sessions for Go tests and collects
// diagnostics when a test fails.
//
// A Runner owns one browser session for a whole test binary:
//
//	var runner *webtest.Runner
//
//	func TestMain(m *testing.M) {
//		cfg, err := config.FromEnv()
//		if err != nil {
//			log.Fatal().Err(err).Msg("loading config")
//		}
//		os.Exit(webtest.Main(m, cfg, log.Logger, func(r *webtest.Runner) error {
//			runner = r
//			return nil
//		}))
//	}
//
//	func TestSearch(t *testing.T) {
//		b := runner.Attach(t)
//		...
//	}
//
// Session opens a fresh session per test instead.
package webtest

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/sauce"

	"github.com/wanmail/uibase"
	"github.com/wanmail/uibase/config"
)

var newRemote = selenium.NewRemote

// Runner owns a browser session and the driver service behind it, if any.
type Runner struct {
	cfg  *config.Config
	log  zerolog.Logger
	addr string
	svc  *Service
	base *uibase.Base

	once     sync.Once
	closeErr error
}

// NewRunner opens the session described by cfg. The session goes to Sauce
// Labs when cfg.Sauce is enabled, to cfg.Host when it is set, and to a driver
// service started from cfg.DriverDir otherwise.
func NewRunner(cfg *config.Config, logger zerolog.Logger) (*Runner, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	selenium.SetDebug(cfg.Debug)

	caps, err := Capabilities(cfg)
	if err != nil {
		return nil, err
	}

	r := &Runner{cfg: cfg, log: logger, addr: cfg.Host}
	switch {
	case cfg.Sauce.Enabled():
		r.addr = sauce.Addr(cfg.Sauce.User, cfg.Sauce.AccessKey)
	case r.addr == "":
		var out io.Writer
		if cfg.Debug {
			out = logger.With().Str("driver", cfg.Browser).Logger()
		}
		if r.svc, err = StartService(cfg, out); err != nil {
			return nil, err
		}
		r.addr = r.svc.Addr
	}

	wd, err := newRemote(caps, r.addr)
	if err != nil {
		r.svc.Stop()
		return nil, fmt.Errorf("opening %s session at %s: %w", cfg.Browser, r.addr, err)
	}
	if err := wd.SetPageLoadTimeout(cfg.PageLoadTimeout); err != nil {
		wd.Quit()
		r.svc.Stop()
		return nil, fmt.Errorf("setting page load timeout: %w", err)
	}
	r.base, err = uibase.New(wd,
		uibase.Timeout(cfg.Timeout),
		uibase.PollInterval(cfg.PollInterval),
		uibase.Logger(logger),
		uibase.Executor(r.addr),
	)
	if err != nil {
		wd.Quit()
		r.svc.Stop()
		return nil, err
	}
	logger.Info().Str("addr", r.addr).Msg("session started")
	return r, nil
}

// Base returns the facade driving the session.
func (r *Runner) Base() *uibase.Base {
	return r.base
}

// Config returns the configuration the session was opened with.
func (r *Runner) Config() *config.Config {
	return r.cfg
}

// Addr returns the executor address of the session.
func (r *Runner) Addr() string {
	return r.addr
}

// Close quits the session and stops the driver service. Only the first call
// does anything.
func (r *Runner) Close() error {
	r.once.Do(func() {
		var errs []error
		if err := r.base.Quit(); err != nil {
			errs = append(errs, err)
		}
		if err := r.svc.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stopping driver: %w", err))
		}
		r.closeErr = errors.Join(errs...)
		r.log.Info().Err(r.closeErr).Msg("session closed")
	})
	return r.closeErr
}

// Attach ties t to the session: the test start and end are logged, and a
// failed test leaves a screenshot in the screenshot directory and its
// browser console log in the test output.
func (r *Runner) Attach(t testing.TB) *uibase.Base {
	t.Helper()
	r.log.Info().Str("test", t.Name()).Msg("test started")
	t.Cleanup(func() { r.finish(t) })
	return r.base
}

func (r *Runner) finish(t testing.TB) {
	if !t.Failed() {
		r.log.Info().Str("test", t.Name()).Msg("test passed")
		return
	}
	r.log.Error().Str("test", t.Name()).Msg("test failed")

	path := filepath.Join(r.cfg.ScreenshotDir, ScreenshotName(t.Name()))
	if err := r.base.SaveScreenshot(path); err != nil {
		t.Logf("saving screenshot: %v", err)
	} else {
		t.Logf("screenshot saved to %s", path)
	}

	msgs, err := r.base.BrowserLogs()
	if err != nil {
		t.Logf("reading browser log: %v", err)
		return
	}
	for _, m := range msgs {
		t.Logf("browser: %s [%s] %s", m.Timestamp.Format("15:04:05.000"), m.Level, m.Message)
	}
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ScreenshotName returns the file name of the failure screenshot of the test
// called name.
func ScreenshotName(name string) string {
	return unsafeChars.ReplaceAllString(name, "_") + ".png"
}

// Session opens a session for t alone. It is closed when t and its subtests
// finish.
func Session(t testing.TB, cfg *config.Config, logger zerolog.Logger) *uibase.Base {
	t.Helper()
	r, err := NewRunner(cfg, logger)
	if err != nil {
		t.Fatalf("NewRunner() returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := r.Close(); err != nil {
			t.Errorf("closing session: %v", err)
		}
	})
	return r.Attach(t)
}

// Main opens a session, hands it to setup, runs the tests and closes the
// session. Its result is meant for os.Exit.
func Main(m *testing.M, cfg *config.Config, logger zerolog.Logger, setup func(*Runner) error) int {
	r, err := NewRunner(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("starting session")
		return 1
	}
	defer r.Close()

	if setup != nil {
		if err := setup(r); err != nil {
			logger.Error().Err(err).Msg("test setup")
			return 1
		}
	}
	return m.Run()
}
