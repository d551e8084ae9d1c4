package uibase

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/tebeka/selenium"
)

// Kind classifies a failure.
type Kind int

// The failure kinds. Only KindNotFound and KindTimeout are recoverable; the
// locate operations turn them into a "not found" result instead of an error.
const (
	KindOther Kind = iota
	KindNotFound
	KindTimeout
	KindSessionLost
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindTimeout:
		return "timeout"
	case KindSessionLost:
		return "session lost"
	case KindInvalidArgument:
		return "invalid argument"
	}
	return "other"
}

// Error is returned by the operations of Base.
type Error struct {
	Kind Kind
	// Op is the operation that failed, e.g. "click".
	Op string
	// Target describes the element or value the operation acted on, if any.
	Target string
	// Err is the underlying failure, possibly a *selenium.Error.
	Err error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(" ")
	}
	if e.Target != "" {
		b.WriteString(e.Target)
		b.WriteString(" ")
	}
	b.WriteString(e.Kind.String())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels, so that errors.Is(err, ErrSessionLost)
// holds for any session failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Target != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for use with errors.Is.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrTimeout         = &Error{Kind: KindTimeout}
	ErrSessionLost     = &Error{Kind: KindSessionLost}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
)

// KindOf reports the kind of err. Errors that did not come from this package
// are classified by the WebDriver error code they carry.
func KindOf(err error) Kind {
	if err == nil {
		return KindOther
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var se *selenium.Error
	if errors.As(err, &se) {
		return kindOfCode(se.Err)
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return KindSessionLost
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return KindSessionLost
	}
	return kindOfCode(err.Error())
}

// errorCodes maps W3C error codes, and the legacy JSON wire protocol
// messages that start with them, to kinds.
var errorCodes = []struct {
	code string
	kind Kind
}{
	{"no such element", KindNotFound},
	{"stale element reference", KindNotFound},
	{"no such frame", KindNotFound},
	{"no such alert", KindNotFound},
	{"no alert open", KindNotFound},
	{"no such cookie", KindNotFound},
	{"cookie not found", KindNotFound},
	{"nil return value", KindNotFound},
	{"invalid session id", KindSessionLost},
	{"session not created", KindSessionLost},
	{"no such window", KindSessionLost},
	{"invalid selector", KindInvalidArgument},
	{"invalid argument", KindInvalidArgument},
	{"xpath lookup error", KindInvalidArgument},
	{"timeout", KindTimeout},
	{"script timeout", KindTimeout},
}

func kindOfCode(msg string) Kind {
	msg = strings.ToLower(strings.TrimSpace(msg))
	for _, c := range errorCodes {
		if strings.HasPrefix(msg, c.code) {
			return c.kind
		}
	}
	if strings.Contains(msg, "not reachable") || strings.Contains(msg, "disconnected") {
		return KindSessionLost
	}
	return KindOther
}

func wrap(op string, t fmt.Stringer, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	target := ""
	if t != nil {
		target = t.String()
	}
	return &Error{Kind: KindOf(err), Op: op, Target: target, Err: err}
}
