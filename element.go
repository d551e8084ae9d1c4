package uibase

import (
	"github.com/tebeka/selenium"
)

// SendKeys types text into the element t names.
func (b *Base) SendKeys(t Target, text string) error {
	we, err := b.element("send keys", t)
	if err != nil {
		return err
	}
	if err := we.SendKeys(text); err != nil {
		return b.done("send keys", t, err)
	}
	b.log.Info().Stringer("target", t).Str("text", text).Msg("send keys")
	return nil
}

// Click clicks the element t names.
func (b *Base) Click(t Target) error {
	we, err := b.element("click", t)
	if err != nil {
		return err
	}
	return b.done("click", t, we.Click())
}

// Clear clears the content of the input element t names.
func (b *Base) Clear(t Target) error {
	we, err := b.element("clear", t)
	if err != nil {
		return err
	}
	return b.done("clear", t, we.Clear())
}

// Submit submits the form the element t names belongs to.
func (b *Base) Submit(t Target) error {
	we, err := b.element("submit", t)
	if err != nil {
		return err
	}
	return b.done("submit", t, we.Submit())
}

// Exists reports whether an element matching t shows up before the timeout.
func (b *Base) Exists(t Target) (bool, error) {
	_, found, err := b.Resolve(t)
	return found, err
}

// state resolves t and evaluates f on it. A target that cannot be found
// reports false.
func (b *Base) state(op string, t Target, f func(selenium.WebElement) (bool, error)) (bool, error) {
	we, found, err := b.Resolve(t)
	if err != nil || !found {
		return false, err
	}
	ok, err := f(we)
	if err != nil {
		if absent(err) {
			b.log.Info().Stringer("target", t).Str("op", op).Msg("element went stale")
			return false, nil
		}
		return false, b.done(op, t, err)
	}
	b.log.Info().Stringer("target", t).Str("op", op).Bool("result", ok).Msg(op)
	return ok, nil
}

// IsSelected reports whether the checkbox, radio button or option t names is
// selected.
func (b *Base) IsSelected(t Target) (bool, error) {
	return b.state("is selected", t, selenium.WebElement.IsSelected)
}

// IsEnabled reports whether the element t names is enabled.
func (b *Base) IsEnabled(t Target) (bool, error) {
	return b.state("is enabled", t, selenium.WebElement.IsEnabled)
}

// IsDisplayed reports whether the element t names is visible.
func (b *Base) IsDisplayed(t Target) (bool, error) {
	return b.state("is displayed", t, selenium.WebElement.IsDisplayed)
}

// value resolves t and reads a string from it. found is false when the
// element or the value is not there.
func (b *Base) value(op string, t Target, f func(selenium.WebElement) (string, error)) (string, bool, error) {
	we, found, err := b.Resolve(t)
	if err != nil || !found {
		return "", false, err
	}
	s, err := f(we)
	if err != nil {
		if absent(err) {
			b.log.Info().Stringer("target", t).Str("op", op).Msg("value unavailable")
			return "", false, nil
		}
		return "", false, b.done(op, t, err)
	}
	b.log.Info().Stringer("target", t).Str("op", op).Str("result", s).Msg(op)
	return s, true, nil
}

// Text returns the visible text of the element t names.
func (b *Base) Text(t Target) (string, bool, error) {
	return b.value("text", t, selenium.WebElement.Text)
}

// Attribute returns the attribute name of the element t names. found is
// false when the element has no such attribute.
func (b *Base) Attribute(t Target, name string) (string, bool, error) {
	return b.value("attribute "+name, t, func(we selenium.WebElement) (string, error) {
		return we.GetAttribute(name)
	})
}

// MoveTo moves the mouse over the element t names.
func (b *Base) MoveTo(t Target) error {
	we, err := b.element("move to", t)
	if err != nil {
		return err
	}
	return b.pointer("move to", t, []pointerStep{moveTo(we)}, func(selenium.WebDriver) error {
		return we.MoveTo(0, 0)
	})
}

// DoubleClick double clicks the element t names.
func (b *Base) DoubleClick(t Target) error {
	we, err := b.element("double click", t)
	if err != nil {
		return err
	}
	steps := []pointerStep{
		moveTo(we),
		press(leftButton), release(leftButton),
		press(leftButton), release(leftButton),
	}
	return b.pointer("double click", t, steps, func(wd selenium.WebDriver) error {
		if err := we.MoveTo(0, 0); err != nil {
			return err
		}
		return wd.DoubleClick()
	})
}

// ContextClick right clicks the element t names.
func (b *Base) ContextClick(t Target) error {
	we, err := b.element("context click", t)
	if err != nil {
		return err
	}
	steps := []pointerStep{moveTo(we), press(rightButton), release(rightButton)}
	return b.pointer("context click", t, steps, func(wd selenium.WebDriver) error {
		if err := we.MoveTo(0, 0); err != nil {
			return err
		}
		return wd.Click(selenium.RightButton)
	})
}

// DragAndDrop presses the left button on from, moves to to and releases it.
func (b *Base) DragAndDrop(from, to Target) error {
	src, err := b.element("drag and drop", from)
	if err != nil {
		return err
	}
	dst, err := b.element("drag and drop", to)
	if err != nil {
		return err
	}
	steps := []pointerStep{moveTo(src), press(leftButton), moveTo(dst), release(leftButton)}
	desc := str(from.String() + " -> " + to.String())
	return b.pointer("drag and drop", desc, steps, func(wd selenium.WebDriver) error {
		for _, step := range []func() error{
			func() error { return src.MoveTo(0, 0) },
			wd.ButtonDown,
			func() error { return dst.MoveTo(0, 0) },
			wd.ButtonUp,
		} {
			if err := step(); err != nil {
				return err
			}
		}
		return nil
	})
}
