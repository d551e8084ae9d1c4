package uibase

import (
	"strings"
	"time"

	"github.com/tebeka/selenium"
)

// poll evaluates cond every interval until it is satisfied, it returns an
// error, or timeout elapses. It returns as soon as cond is satisfied and
// evaluates cond one last time once timeout has elapsed.
func poll(wd selenium.WebDriver, cond selenium.Condition, timeout, interval time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := cond(wd)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		if remaining < interval {
			time.Sleep(remaining)
		} else {
			time.Sleep(interval)
		}
	}
}

// absent reports whether err only means that the thing polled for is not
// there yet.
func absent(err error) bool {
	return KindOf(err) == KindNotFound
}

// Wait polls cond with the configured timeout and interval. It reports false
// with a nil error when cond is still unsatisfied after the timeout; errors
// returned by cond end the wait.
func (b *Base) Wait(cond selenium.Condition) (bool, error) {
	wd, err := b.session("wait")
	if err != nil {
		return false, err
	}
	ok, err := poll(wd, cond, b.timeout, b.pollInterval)
	if err != nil {
		err = wrap("wait", nil, err)
		b.log.Error().Err(err).Msg("wait failed")
		return false, err
	}
	if !ok {
		b.log.Info().Dur("timeout", b.timeout).Msg("condition not met")
	}
	return ok, nil
}

// predicate polls cond and logs whether it was met.
func (b *Base) predicate(op string, t Target, cond selenium.Condition, timeout time.Duration, fields map[string]interface{}) (bool, error) {
	wd, err := b.session(op)
	if err != nil {
		return false, err
	}
	if l, ok := t.(Locator); ok {
		if err := b.validate(op, l); err != nil {
			return false, err
		}
	}
	ok, err := poll(wd, cond, timeout, b.pollInterval)
	if err != nil {
		err = wrap(op, t, err)
		b.log.Error().Err(err).Str("op", op).Fields(fields).Msg("wait failed")
		return false, err
	}
	b.log.Info().Str("op", op).Fields(fields).Bool("met", ok).Msg(op)
	return ok, nil
}

// TitleIs waits for the page title to equal title.
func (b *Base) TitleIs(title string) (bool, error) {
	return b.predicate("title is", nil, func(wd selenium.WebDriver) (bool, error) {
		got, err := wd.Title()
		if err != nil {
			return false, err
		}
		return got == title, nil
	}, b.timeout, map[string]interface{}{"title": title})
}

// TitleContains waits for the page title to contain s.
func (b *Base) TitleContains(s string) (bool, error) {
	return b.predicate("title contains", nil, func(wd selenium.WebDriver) (bool, error) {
		got, err := wd.Title()
		if err != nil {
			return false, err
		}
		return strings.Contains(got, s), nil
	}, b.timeout, map[string]interface{}{"title": s})
}

// TextContains waits for the element identified by l to be present and for
// its text to contain text.
func (b *Base) TextContains(l Locator, text string) (bool, error) {
	return b.predicate("text contains", l, func(wd selenium.WebDriver) (bool, error) {
		we, err := wd.FindElement(l.By, l.Value)
		if err != nil {
			if absent(err) {
				return false, nil
			}
			return false, err
		}
		got, err := we.Text()
		if err != nil {
			if absent(err) {
				return false, nil
			}
			return false, err
		}
		return strings.Contains(got, text), nil
	}, b.timeout, map[string]interface{}{"by": l.By, "value": l.Value, "text": text})
}

// ValueContains waits for the element identified by l to be present and for
// its value attribute to contain value.
func (b *Base) ValueContains(l Locator, value string) (bool, error) {
	return b.predicate("value contains", l, func(wd selenium.WebDriver) (bool, error) {
		we, err := wd.FindElement(l.By, l.Value)
		if err != nil {
			if absent(err) {
				return false, nil
			}
			return false, err
		}
		got, err := we.GetAttribute("value")
		if err != nil {
			if absent(err) {
				return false, nil
			}
			return false, err
		}
		return strings.Contains(got, value), nil
	}, b.timeout, map[string]interface{}{"by": l.By, "value": l.Value, "expected": value})
}

// AlertPresent waits up to timeout for an alert to open and returns its
// text. A non-positive timeout means DefaultAlertTimeout.
func (b *Base) AlertPresent(timeout time.Duration) (string, bool, error) {
	if timeout <= 0 {
		timeout = DefaultAlertTimeout
	}
	var text string
	ok, err := b.predicate("alert present", nil, func(wd selenium.WebDriver) (bool, error) {
		t, err := wd.AlertText()
		if err != nil {
			if absent(err) {
				return false, nil
			}
			return false, err
		}
		text = t
		return true, nil
	}, timeout, nil)
	return text, ok, err
}
