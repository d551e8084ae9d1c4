package uibase

import (
	"fmt"

	"github.com/tebeka/selenium"
)

// validate checks l and logs the failure.
func (b *Base) validate(op string, l Locator) error {
	if err := l.Validate(); err != nil {
		b.log.Error().Err(err).Str("op", op).Str("by", l.By).Str("value", l.Value).Msg("invalid locator")
		return err
	}
	return nil
}

// Find waits for an element matching l and returns the first match. It polls
// every PollInterval until Timeout has elapsed. When no element shows up in
// time, found is false and err is nil. A malformed locator fails right away
// with an invalid argument error, and failures other than absence of the
// element are returned as errors.
func (b *Base) Find(l Locator) (we selenium.WebElement, found bool, err error) {
	wd, err := b.session("find")
	if err != nil {
		return nil, false, err
	}
	if err := b.validate("find", l); err != nil {
		return nil, false, err
	}
	attempts := 0
	ok, err := poll(wd, func(wd selenium.WebDriver) (bool, error) {
		attempts++
		e, err := wd.FindElement(l.By, l.Value)
		if err != nil {
			if absent(err) {
				b.log.Debug().Str("by", l.By).Str("value", l.Value).Int("attempt", attempts).Msg("element not present yet")
				return false, nil
			}
			return false, err
		}
		we = e
		return true, nil
	}, b.timeout, b.pollInterval)
	if err != nil {
		err = wrap("find", l, err)
		b.log.Error().Err(err).Str("by", l.By).Str("value", l.Value).Msg("find failed")
		return nil, false, err
	}
	if !ok {
		b.log.Error().Str("by", l.By).Str("value", l.Value).Dur("timeout", b.timeout).Msg("element not found")
		return nil, false, nil
	}
	b.log.Info().Str("by", l.By).Str("value", l.Value).Int("attempts", attempts).Msg("element found")
	return we, true, nil
}

// FindAll waits until at least one element matches l and returns all the
// matches. On timeout it returns an empty slice and a nil error.
func (b *Base) FindAll(l Locator) ([]selenium.WebElement, error) {
	wd, err := b.session("find all")
	if err != nil {
		return nil, err
	}
	if err := b.validate("find all", l); err != nil {
		return nil, err
	}
	var wes []selenium.WebElement
	ok, err := poll(wd, func(wd selenium.WebDriver) (bool, error) {
		es, err := wd.FindElements(l.By, l.Value)
		if err != nil {
			if absent(err) {
				return false, nil
			}
			return false, err
		}
		wes = es
		return len(es) > 0, nil
	}, b.timeout, b.pollInterval)
	if err != nil {
		err = wrap("find all", l, err)
		b.log.Error().Err(err).Str("by", l.By).Str("value", l.Value).Msg("find all failed")
		return nil, err
	}
	if !ok {
		b.log.Error().Str("by", l.By).Str("value", l.Value).Dur("timeout", b.timeout).Msg("no elements found")
		return []selenium.WebElement{}, nil
	}
	b.log.Info().Str("by", l.By).Str("value", l.Value).Int("count", len(wes)).Msg("elements found")
	return wes, nil
}

// Resolve returns the element t names. An element wrapped with Element is
// returned as is without querying the session; a Locator goes through Find.
func (b *Base) Resolve(t Target) (selenium.WebElement, bool, error) {
	switch t := t.(type) {
	case Locator:
		return b.Find(t)
	case elementTarget:
		if t.we == nil {
			return nil, false, b.invalidTarget("resolve", fmt.Errorf("nil element"))
		}
		return t.we, true, nil
	case nil:
		return nil, false, b.invalidTarget("resolve", fmt.Errorf("no target given"))
	}
	return nil, false, b.invalidTarget("resolve", fmt.Errorf("unsupported target %T", t))
}

func (b *Base) invalidTarget(op string, err error) error {
	err = &Error{Kind: KindInvalidArgument, Op: op, Err: err}
	b.log.Error().Err(err).Msg("invalid target")
	return err
}

// element resolves t for an operation that cannot proceed without it: a
// target that is not found is a not found error.
func (b *Base) element(op string, t Target) (selenium.WebElement, error) {
	we, found, err := b.Resolve(t)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, &Error{Kind: KindNotFound, Op: op, Target: t.String(), Err: fmt.Errorf("element not found")}
	}
	return we, nil
}
