package uibase

import (
	"fmt"
	"os"
	"path/filepath"

	wdlog "github.com/tebeka/selenium/log"
)

// ExecuteScript runs script in the current page and returns its result.
// Elements may be passed in args; they are available to the script as
// arguments[i].
func (b *Base) ExecuteScript(script string, args ...interface{}) (interface{}, error) {
	wd, err := b.session("execute script")
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = []interface{}{}
	}
	res, err := wd.ExecuteScript(script, args)
	if err != nil {
		return nil, b.done("execute script", str(script), err)
	}
	b.log.Info().Str("script", script).Msg("execute script")
	return res, nil
}

// ScrollIntoView scrolls the page until the element t names is visible.
func (b *Base) ScrollIntoView(t Target) error {
	we, err := b.element("scroll into view", t)
	if err != nil {
		return err
	}
	_, err = b.ExecuteScript("arguments[0].scrollIntoView();", we)
	return err
}

// ScrollTop scrolls to the top of the page.
func (b *Base) ScrollTop() error {
	_, err := b.ExecuteScript("window.scrollTo(0, 0);")
	return err
}

// ScrollEnd scrolls to the bottom of the page, at horizontal offset x.
func (b *Base) ScrollEnd(x int) error {
	_, err := b.ExecuteScript(fmt.Sprintf("window.scrollTo(%d, document.body.scrollHeight);", x))
	return err
}

// PlayVideo starts the <video> element t names.
func (b *Base) PlayVideo(t Target) error {
	we, err := b.element("play video", t)
	if err != nil {
		return err
	}
	_, err = b.ExecuteScript("return arguments[0].play();", we)
	return err
}

// Screenshot returns a PNG screenshot of the current window.
func (b *Base) Screenshot() ([]byte, error) {
	wd, err := b.session("screenshot")
	if err != nil {
		return nil, err
	}
	png, err := wd.Screenshot()
	if err != nil {
		return nil, b.done("screenshot", nil, err)
	}
	return png, nil
}

// SaveScreenshot writes a PNG screenshot of the current window to path,
// creating its directory if needed.
func (b *Base) SaveScreenshot(path string) error {
	png, err := b.Screenshot()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return b.done("save screenshot", str(path), err)
	}
	if err := os.WriteFile(path, png, 0644); err != nil {
		return b.done("save screenshot", str(path), err)
	}
	b.log.Info().Str("path", path).Int("bytes", len(png)).Msg("save screenshot")
	return nil
}

// BrowserLogs returns the browser console messages logged since the last
// call. Not every driver supports it; the session must have been created
// with browser logging enabled.
func (b *Base) BrowserLogs() ([]wdlog.Message, error) {
	wd, err := b.session("browser logs")
	if err != nil {
		return nil, err
	}
	msgs, err := wd.Log(wdlog.Browser)
	if err != nil {
		return nil, b.done("browser logs", nil, err)
	}
	return msgs, nil
}
