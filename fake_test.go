package uibase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/tebeka/selenium"
	wdlog "github.com/tebeka/selenium/log"
)

func noSuchElement(by, value string) error {
	return &selenium.Error{
		Err:      "no such element",
		Message:  fmt.Sprintf("Unable to locate element: {%q: %q}", by, value),
		HTTPCode: 404,
	}
}

// fakeDriver is an in-memory session. Only the methods used by this package
// are implemented; calling any other one panics on the nil embedded driver.
type fakeDriver struct {
	selenium.WebDriver

	mu       sync.Mutex
	elements map[Locator][]selenium.WebElement
	errs     map[Locator]error
	queries  int

	title      string
	url        string
	history    []string
	alert      *string
	cookies    []selenium.Cookie
	noCookie   error
	frame      interface{}
	window     string
	windows    []string
	scripts    []string
	args       [][]interface{}
	mouse      []string
	screenshot []byte
	logs       []wdlog.Message
	quit       bool
	err        error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		elements: map[Locator][]selenium.WebElement{},
		errs:     map[Locator]error{},
		window:   "main",
		windows:  []string{"main"},
	}
}

func (d *fakeDriver) add(l Locator, es ...selenium.WebElement) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.elements[l] = append(d.elements[l], es...)
}

// addAfter makes es appear under l once delay has elapsed.
func (d *fakeDriver) addAfter(delay time.Duration, l Locator, es ...selenium.WebElement) {
	time.AfterFunc(delay, func() { d.add(l, es...) })
}

func (d *fakeDriver) failWith(l Locator, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errs[l] = err
}

func (d *fakeDriver) queryCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queries
}

func (d *fakeDriver) FindElement(by, value string) (selenium.WebElement, error) {
	es, err := d.FindElements(by, value)
	if err != nil {
		return nil, err
	}
	if len(es) == 0 {
		return nil, noSuchElement(by, value)
	}
	return es[0], nil
}

func (d *fakeDriver) FindElements(by, value string) ([]selenium.WebElement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queries++
	l := Locator{by, value}
	if err := d.errs[l]; err != nil {
		return nil, err
	}
	return append([]selenium.WebElement{}, d.elements[l]...), nil
}

func (d *fakeDriver) Title() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, d.err
}

func (d *fakeDriver) setTitle(title string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title = title
}

func (d *fakeDriver) CurrentURL() (string, error) { return d.url, d.err }

func (d *fakeDriver) Get(url string) error {
	if d.err != nil {
		return d.err
	}
	d.history = append(d.history, url)
	d.url = url
	return nil
}

func (d *fakeDriver) Refresh() error { return d.err }

func (d *fakeDriver) Back() error {
	if len(d.history) > 1 {
		d.url = d.history[len(d.history)-2]
	}
	return d.err
}

func (d *fakeDriver) Forward() error { return d.err }

func (d *fakeDriver) MaximizeWindow(name string) error { return d.err }

func (d *fakeDriver) ResizeWindow(name string, w, h int) error { return d.err }

func (d *fakeDriver) SetPageLoadTimeout(time.Duration) error { return d.err }

func (d *fakeDriver) Quit() error {
	d.quit = true
	return d.err
}

func (d *fakeDriver) CurrentWindowHandle() (string, error) { return d.window, d.err }

func (d *fakeDriver) WindowHandles() ([]string, error) { return d.windows, d.err }

func (d *fakeDriver) SwitchWindow(name string) error {
	for _, w := range d.windows {
		if w == name {
			d.window = name
			return nil
		}
	}
	return &selenium.Error{Err: "no such window", HTTPCode: 404}
}

func (d *fakeDriver) SwitchFrame(frame interface{}) error {
	d.frame = frame
	return d.err
}

func (d *fakeDriver) setAlert(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alert = &text
}

func (d *fakeDriver) AlertText() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.alert == nil {
		return "", &selenium.Error{Err: "no such alert", HTTPCode: 404}
	}
	return *d.alert, nil
}

func (d *fakeDriver) AcceptAlert() error {
	if d.alert == nil {
		return &selenium.Error{Err: "no such alert", HTTPCode: 404}
	}
	d.alert = nil
	return nil
}

func (d *fakeDriver) DismissAlert() error { return d.AcceptAlert() }

func (d *fakeDriver) GetCookies() ([]selenium.Cookie, error) { return d.cookies, d.err }

func (d *fakeDriver) GetCookie(name string) (selenium.Cookie, error) {
	for _, c := range d.cookies {
		if c.Name == name {
			return c, nil
		}
	}
	if d.noCookie != nil {
		return selenium.Cookie{}, d.noCookie
	}
	return selenium.Cookie{}, &selenium.Error{Err: "no such cookie", HTTPCode: 404}
}

func (d *fakeDriver) AddCookie(c *selenium.Cookie) error {
	d.cookies = append(d.cookies, *c)
	return d.err
}

func (d *fakeDriver) DeleteCookie(name string) error {
	var kept []selenium.Cookie
	for _, c := range d.cookies {
		if c.Name != name {
			kept = append(kept, c)
		}
	}
	d.cookies = kept
	return d.err
}

func (d *fakeDriver) DeleteAllCookies() error {
	d.cookies = nil
	return d.err
}

func (d *fakeDriver) ExecuteScript(script string, args []interface{}) (interface{}, error) {
	d.scripts = append(d.scripts, script)
	d.args = append(d.args, args)
	return nil, d.err
}

func (d *fakeDriver) DoubleClick() error {
	d.mouse = append(d.mouse, "double click")
	return d.err
}

func (d *fakeDriver) Click(button int) error {
	d.mouse = append(d.mouse, fmt.Sprintf("click %d", button))
	return d.err
}

func (d *fakeDriver) ButtonDown() error {
	d.mouse = append(d.mouse, "down")
	return d.err
}

func (d *fakeDriver) ButtonUp() error {
	d.mouse = append(d.mouse, "up")
	return d.err
}

func (d *fakeDriver) SessionID() string { return "s1" }

func (d *fakeDriver) Screenshot() ([]byte, error) { return d.screenshot, d.err }

func (d *fakeDriver) Log(typ wdlog.Type) ([]wdlog.Message, error) {
	if typ != wdlog.Browser {
		return nil, fmt.Errorf("unexpected log type %q", typ)
	}
	return d.logs, d.err
}

// fakeElement is an in-memory element.
type fakeElement struct {
	selenium.WebElement

	name      string
	tag       string
	text      string
	attrs     map[string]string
	selected  bool
	enabled   bool
	displayed bool
	options   []*fakeElement
	parent    *fakeElement
	driver    *fakeDriver

	keys   []string
	clicks int
	moves  int
	err    error
}

func newFakeElement(name string) *fakeElement {
	return &fakeElement{name: name, tag: "div", enabled: true, displayed: true, attrs: map[string]string{}}
}

func (e *fakeElement) Click() error {
	if e.err != nil {
		return e.err
	}
	e.clicks++
	if e.tag != "option" {
		return nil
	}
	// A single select keeps exactly one option selected.
	if e.parent != nil && e.parent.attrs["multiple"] == "" {
		for _, o := range e.parent.options {
			o.selected = false
		}
		e.selected = true
		return nil
	}
	e.selected = !e.selected
	return nil
}

func (e *fakeElement) SendKeys(keys string) error {
	if e.err != nil {
		return e.err
	}
	e.keys = append(e.keys, keys)
	e.attrs["value"] += keys
	return nil
}

func (e *fakeElement) Clear() error {
	e.attrs["value"] = ""
	return e.err
}

func (e *fakeElement) Submit() error { return e.err }

func (e *fakeElement) MoveTo(x, y int) error {
	e.moves++
	if e.driver != nil {
		e.driver.mouse = append(e.driver.mouse, "move "+e.name)
	}
	return e.err
}

// MarshalJSON encodes the element as a W3C element reference, the way the
// session sends elements over the wire.
func (e *fakeElement) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{elementKey: e.name})
}

func (e *fakeElement) TagName() (string, error) { return e.tag, e.err }

func (e *fakeElement) Text() (string, error) { return e.text, e.err }

func (e *fakeElement) IsSelected() (bool, error) { return e.selected, e.err }

func (e *fakeElement) IsEnabled() (bool, error) { return e.enabled, e.err }

func (e *fakeElement) IsDisplayed() (bool, error) { return e.displayed, e.err }

func (e *fakeElement) GetAttribute(name string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	v, ok := e.attrs[name]
	if !ok {
		return "", fmt.Errorf("nil return value")
	}
	return v, nil
}

// FindElements understands the queries issued on <select> elements.
func (e *fakeElement) FindElements(by, value string) ([]selenium.WebElement, error) {
	var out []selenium.WebElement
	for _, o := range e.options {
		switch {
		case by == selenium.ByTagName && value == "option":
		case by == selenium.ByXPATH && strings.HasPrefix(value, ".//option[@value = "):
			if value != ".//option[@value = "+xpathLiteral(o.attrs["value"])+"]" {
				continue
			}
		case by == selenium.ByXPATH && strings.HasPrefix(value, ".//option[normalize-space(.) = "):
			if value != ".//option[normalize-space(.) = "+xpathLiteral(strings.Join(strings.Fields(o.text), " "))+"]" {
				continue
			}
		default:
			return nil, fmt.Errorf("invalid selector: unsupported query %s=%s", by, value)
		}
		out = append(out, o)
	}
	return out, nil
}

func newSelect(multiple bool, options ...string) *fakeElement {
	s := newFakeElement("select")
	s.tag = "select"
	if multiple {
		s.attrs["multiple"] = "true"
	}
	for _, o := range options {
		opt := newFakeElement(o)
		opt.tag = "option"
		opt.text = o
		opt.attrs["value"] = strings.ToLower(o)
		opt.parent = s
		s.options = append(s.options, opt)
	}
	return s
}

// logEntry is one decoded JSON log line.
type logEntry map[string]interface{}

type logSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *logSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *logSink) entries(t *testing.T) []logEntry {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var es []logEntry
	for _, line := range strings.Split(strings.TrimSpace(s.buf.String()), "\n") {
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			t.Fatalf("json.Unmarshal(%q) returned error: %v", line, err)
		}
		es = append(es, e)
	}
	return es
}

func (s *logSink) level(t *testing.T, level string) []logEntry {
	var out []logEntry
	for _, e := range s.entries(t) {
		if e["level"] == level {
			out = append(out, e)
		}
	}
	return out
}

const (
	testTimeout  = 300 * time.Millisecond
	testInterval = 20 * time.Millisecond
)

// newTestBase returns a Base over a fresh fake session with short timeouts
// and a log sink.
func newTestBase(t *testing.T) (*Base, *fakeDriver, *logSink) {
	t.Helper()
	wd := newFakeDriver()
	sink := &logSink{}
	b, err := New(wd, Timeout(testTimeout), PollInterval(testInterval), Logger(zerolog.New(sink).Level(zerolog.DebugLevel)))
	if err != nil {
		t.Fatalf("New() returned error: %v", err)
	}
	return b, wd, sink
}
