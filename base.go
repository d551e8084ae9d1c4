package uibase

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tebeka/selenium"
)

const (
	// DefaultTimeout is how long the locate operations and wait predicates
	// poll before giving up.
	DefaultTimeout = 6 * time.Second
	// DefaultPollInterval is the spacing between two polls.
	DefaultPollInterval = 500 * time.Millisecond
	// DefaultAlertTimeout is the wait used by AlertPresent when no timeout is
	// given.
	DefaultAlertTimeout = 3 * time.Second
)

// Option configures a Base instance.
type Option func(*Base) error

// Timeout sets how long locate operations and wait predicates poll.
func Timeout(d time.Duration) Option {
	return func(b *Base) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		b.timeout = d
		return nil
	}
}

// PollInterval sets the spacing between two polls.
func PollInterval(d time.Duration) Option {
	return func(b *Base) error {
		if d <= 0 {
			return fmt.Errorf("poll interval must be positive, got %v", d)
		}
		b.pollInterval = d
		return nil
	}
}

// Logger sets the logger that receives one entry per operation.
func Logger(l zerolog.Logger) Option {
	return func(b *Base) error {
		b.log = l
		return nil
	}
}

// Executor sets the address of the WebDriver server the session was opened
// on, e.g. "http://127.0.0.1:4444/wd/hub". Mouse gestures and
// SwitchParentFrame are sent to it as W3C commands. Without it they use the
// JSON wire protocol calls of the session, which W3C drivers reject.
func Executor(addr string) Option {
	return func(b *Base) error {
		b.executor = addr
		return nil
	}
}

// Base wraps a WebDriver session with convenience operations. Every
// operation that acts on an element accepts a Target, resolves it with a
// bounded polling wait and logs its outcome.
//
// A Base is not safe for concurrent use by multiple goroutines driving the
// same session; the session itself is not locked.
type Base struct {
	wd           selenium.WebDriver
	log          zerolog.Logger
	timeout      time.Duration
	pollInterval time.Duration
	executor     string
}

// New returns a Base driving wd. wd may be nil, in which case every call has
// to go through On.
func New(wd selenium.WebDriver, opts ...Option) (*Base, error) {
	b := &Base{
		wd:           wd,
		log:          log.Logger,
		timeout:      DefaultTimeout,
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// On returns a copy of b that drives wd instead of the default session. A nil
// wd returns b itself.
func (b *Base) On(wd selenium.WebDriver) *Base {
	if wd == nil {
		return b
	}
	c := *b
	c.wd = wd
	return &c
}

// Driver returns the session b drives.
func (b *Base) Driver() selenium.WebDriver {
	return b.wd
}

// Timeout returns the polling timeout.
func (b *Base) Timeout() time.Duration {
	return b.timeout
}

// PollInterval returns the spacing between two polls.
func (b *Base) PollInterval() time.Duration {
	return b.pollInterval
}

// session returns the session or an invalid argument error when there is
// none.
func (b *Base) session(op string) (selenium.WebDriver, error) {
	if b.wd == nil {
		err := &Error{Kind: KindInvalidArgument, Op: op, Err: fmt.Errorf("no session")}
		b.log.Error().Err(err).Msg("no session to drive")
		return nil, err
	}
	return b.wd, nil
}

// done logs the outcome of a session call and wraps its error.
func (b *Base) done(op string, t fmt.Stringer, err error) error {
	if err != nil {
		err = wrap(op, t, err)
		b.log.Error().Err(err).Str("op", op).Msg("operation failed")
		return err
	}
	ev := b.log.Info().Str("op", op)
	if t != nil {
		ev = ev.Stringer("target", t)
	}
	ev.Msg(op)
	return nil
}
