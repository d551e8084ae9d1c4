package uibase

import (
	"fmt"
	"time"

	"github.com/tebeka/selenium"
)

type str string

func (s str) String() string { return string(s) }

// Get loads url in the current window.
func (b *Base) Get(url string) error {
	wd, err := b.session("get")
	if err != nil {
		return err
	}
	if err := wd.Get(url); err != nil {
		return b.done("get", str(url), err)
	}
	b.log.Info().Str("url", url).Msg("get")
	return nil
}

// Refresh reloads the current page.
func (b *Base) Refresh() error {
	wd, err := b.session("refresh")
	if err != nil {
		return err
	}
	return b.done("refresh", nil, wd.Refresh())
}

// Forward goes one step forward in the history.
func (b *Base) Forward() error {
	wd, err := b.session("forward")
	if err != nil {
		return err
	}
	return b.done("forward", nil, wd.Forward())
}

// Back goes one step back in the history.
func (b *Base) Back() error {
	wd, err := b.session("back")
	if err != nil {
		return err
	}
	return b.done("back", nil, wd.Back())
}

// Title returns the title of the current page.
func (b *Base) Title() (string, error) {
	wd, err := b.session("title")
	if err != nil {
		return "", err
	}
	title, err := wd.Title()
	if err != nil {
		return "", b.done("title", nil, err)
	}
	b.log.Info().Str("title", title).Msg("title")
	return title, nil
}

// CurrentURL returns the URL of the current page.
func (b *Base) CurrentURL() (string, error) {
	wd, err := b.session("current url")
	if err != nil {
		return "", err
	}
	url, err := wd.CurrentURL()
	if err != nil {
		return "", b.done("current url", nil, err)
	}
	b.log.Info().Str("url", url).Msg("current url")
	return url, nil
}

// Maximize maximizes the current window.
func (b *Base) Maximize() error {
	wd, err := b.session("maximize")
	if err != nil {
		return err
	}
	return b.done("maximize", nil, wd.MaximizeWindow(""))
}

// SetWindowSize resizes the current window.
func (b *Base) SetWindowSize(width, height int) error {
	wd, err := b.session("set window size")
	if err != nil {
		return err
	}
	if err := wd.ResizeWindow("", width, height); err != nil {
		return b.done("set window size", nil, err)
	}
	b.log.Info().Int("width", width).Int("height", height).Msg("set window size")
	return nil
}

// SetPageLoadTimeout sets how long the session waits for a page to load.
func (b *Base) SetPageLoadTimeout(d time.Duration) error {
	wd, err := b.session("set page load timeout")
	if err != nil {
		return err
	}
	if err := wd.SetPageLoadTimeout(d); err != nil {
		return b.done("set page load timeout", nil, err)
	}
	b.log.Info().Dur("timeout", d).Msg("set page load timeout")
	return nil
}

// Quit ends the session.
func (b *Base) Quit() error {
	wd, err := b.session("quit")
	if err != nil {
		return err
	}
	return b.done("quit", nil, wd.Quit())
}

// CurrentWindow returns the handle of the current window.
func (b *Base) CurrentWindow() (string, error) {
	wd, err := b.session("current window")
	if err != nil {
		return "", err
	}
	h, err := wd.CurrentWindowHandle()
	if err != nil {
		return "", b.done("current window", nil, err)
	}
	return h, nil
}

// Windows returns the handles of all the windows of the session.
func (b *Base) Windows() ([]string, error) {
	wd, err := b.session("windows")
	if err != nil {
		return nil, err
	}
	hs, err := wd.WindowHandles()
	if err != nil {
		return nil, b.done("windows", nil, err)
	}
	b.log.Info().Strs("windows", hs).Msg("windows")
	return hs, nil
}

// SwitchWindow focuses the window with the given handle.
func (b *Base) SwitchWindow(handle string) error {
	wd, err := b.session("switch window")
	if err != nil {
		return err
	}
	return b.done("switch window", str(handle), wd.SwitchWindow(handle))
}

// SwitchFrame focuses a frame of the current page. frame is one of:
//
//	string               the id or name of the frame element
//	int                  the index of the frame in the page
//	Locator, Target      the frame element, located with a polling wait
//	selenium.WebElement  the frame element itself
//	nil                  the top level document
func (b *Base) SwitchFrame(frame interface{}) error {
	wd, err := b.session("switch frame")
	if err != nil {
		return err
	}
	var ref interface{}
	var desc fmt.Stringer
	switch f := frame.(type) {
	case nil:
	case int:
		ref, desc = f, str(fmt.Sprint(f))
	case string:
		we, err := b.frameByName(wd, f)
		if err != nil {
			return err
		}
		ref, desc = we, str(f)
	case Target:
		we, err := b.element("switch frame", f)
		if err != nil {
			return err
		}
		ref, desc = we, f
	case selenium.WebElement:
		ref, desc = f, Element(f)
	default:
		err := &Error{Kind: KindInvalidArgument, Op: "switch frame", Err: fmt.Errorf("unsupported frame reference %T", frame)}
		b.log.Error().Err(err).Msg("invalid frame reference")
		return err
	}
	return b.done("switch frame", desc, wd.SwitchFrame(ref))
}

// frameByName waits for a frame element whose id or name is name.
func (b *Base) frameByName(wd selenium.WebDriver, name string) (selenium.WebElement, error) {
	if name == "" {
		return nil, b.invalidTarget("switch frame", fmt.Errorf("empty frame name"))
	}
	var we selenium.WebElement
	ok, err := poll(wd, func(wd selenium.WebDriver) (bool, error) {
		for _, by := range []string{selenium.ByID, selenium.ByName} {
			e, err := wd.FindElement(by, name)
			if err == nil {
				we = e
				return true, nil
			}
			if !absent(err) {
				return false, err
			}
		}
		return false, nil
	}, b.timeout, b.pollInterval)
	if err != nil {
		return nil, b.done("switch frame", str(name), err)
	}
	if !ok {
		return nil, b.done("switch frame", str(name), &Error{
			Kind:   KindNotFound,
			Op:     "switch frame",
			Target: name,
			Err:    fmt.Errorf("no frame with id or name %q", name),
		})
	}
	return we, nil
}

// SwitchDefaultContent focuses the top level document.
func (b *Base) SwitchDefaultContent() error {
	return b.SwitchFrame(nil)
}

// parentFrameSwitcher is implemented by sessions that can select the parent
// of the current frame.
type parentFrameSwitcher interface {
	SwitchParentFrame() error
}

// SwitchParentFrame focuses the parent of the current frame. It needs a
// session that implements it or an Executor to send the W3C command to.
func (b *Base) SwitchParentFrame() error {
	wd, err := b.session("switch parent frame")
	if err != nil {
		return err
	}
	if p, ok := wd.(parentFrameSwitcher); ok {
		return b.done("switch parent frame", nil, p.SwitchParentFrame())
	}
	if b.executor == "" {
		return b.done("switch parent frame", nil, fmt.Errorf("session %T cannot switch to the parent frame without an executor address", wd))
	}
	return b.done("switch parent frame", nil, b.post(wd, "/frame/parent", struct{}{}))
}

// AlertText returns the text of the open alert.
func (b *Base) AlertText() (string, error) {
	wd, err := b.session("alert text")
	if err != nil {
		return "", err
	}
	text, err := wd.AlertText()
	if err != nil {
		return "", b.done("alert text", nil, err)
	}
	b.log.Info().Str("text", text).Msg("alert text")
	return text, nil
}

// AcceptAlert accepts the open alert.
func (b *Base) AcceptAlert() error {
	wd, err := b.session("accept alert")
	if err != nil {
		return err
	}
	return b.done("accept alert", nil, wd.AcceptAlert())
}

// DismissAlert dismisses the open alert.
func (b *Base) DismissAlert() error {
	wd, err := b.session("dismiss alert")
	if err != nil {
		return err
	}
	return b.done("dismiss alert", nil, wd.DismissAlert())
}

// Cookies returns all the cookies visible to the current page.
func (b *Base) Cookies() ([]selenium.Cookie, error) {
	wd, err := b.session("cookies")
	if err != nil {
		return nil, err
	}
	cs, err := wd.GetCookies()
	if err != nil {
		return nil, b.done("cookies", nil, err)
	}
	b.log.Info().Int("count", len(cs)).Msg("cookies")
	return cs, nil
}

// Cookie returns the cookie called name. found is false when there is no
// such cookie.
func (b *Base) Cookie(name string) (c selenium.Cookie, found bool, err error) {
	wd, err := b.session("cookie")
	if err != nil {
		return c, false, err
	}
	c, err = wd.GetCookie(name)
	if err != nil {
		if absent(err) {
			b.log.Info().Str("name", name).Msg("no such cookie")
			return selenium.Cookie{}, false, nil
		}
		return c, false, b.done("cookie", str(name), err)
	}
	b.log.Info().Str("name", name).Msg("cookie")
	return c, true, nil
}

// AddCookie sets a cookie on the current page.
func (b *Base) AddCookie(c *selenium.Cookie) error {
	wd, err := b.session("add cookie")
	if err != nil {
		return err
	}
	if c == nil {
		return b.invalidTarget("add cookie", fmt.Errorf("nil cookie"))
	}
	return b.done("add cookie", str(c.Name), wd.AddCookie(c))
}

// DeleteCookie deletes the cookie called name.
func (b *Base) DeleteCookie(name string) error {
	wd, err := b.session("delete cookie")
	if err != nil {
		return err
	}
	return b.done("delete cookie", str(name), wd.DeleteCookie(name))
}

// DeleteAllCookies deletes all the cookies visible to the current page.
func (b *Base) DeleteAllCookies() error {
	wd, err := b.session("delete all cookies")
	if err != nil {
		return err
	}
	return b.done("delete all cookies", nil, wd.DeleteAllCookies())
}
