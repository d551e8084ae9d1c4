package uibase

import (
	"fmt"
	"strings"

	"github.com/tebeka/selenium"
)

// strategies are the element location strategies understood by WebDriver.
var strategies = map[string]bool{
	selenium.ByID:              true,
	selenium.ByXPATH:           true,
	selenium.ByLinkText:        true,
	selenium.ByPartialLinkText: true,
	selenium.ByName:            true,
	selenium.ByTagName:         true,
	selenium.ByClassName:       true,
	selenium.ByCSSSelector:     true,
}

// Locator identifies an element by a location strategy (one of the
// selenium.By* constants) and a value, e.g. Locator{selenium.ByID, "kw"}.
type Locator struct {
	By    string
	Value string
}

// ParseLocator builds a Locator from a (strategy, value) pair. Any other
// number of parts is an invalid argument.
func ParseLocator(parts []string) (Locator, error) {
	if len(parts) != 2 {
		return Locator{}, &Error{
			Kind: KindInvalidArgument,
			Op:   "parse locator",
			Err:  fmt.Errorf("locator must be a (strategy, value) pair, got %d parts %q", len(parts), parts),
		}
	}
	l := Locator{By: strings.TrimSpace(parts[0]), Value: parts[1]}
	if err := l.Validate(); err != nil {
		return Locator{}, err
	}
	return l, nil
}

// ParseLocatorString parses the "strategy=value" form used on the command
// line, e.g. "css selector=input#kw".
func ParseLocatorString(s string) (Locator, error) {
	return ParseLocator(strings.SplitN(s, "=", 2))
}

// Validate reports an invalid argument error when the strategy is unknown or
// the value is empty.
func (l Locator) Validate() error {
	if !strategies[l.By] {
		return &Error{
			Kind:   KindInvalidArgument,
			Op:     "validate locator",
			Target: l.String(),
			Err:    fmt.Errorf("unknown location strategy %q", l.By),
		}
	}
	if l.Value == "" {
		return &Error{
			Kind:   KindInvalidArgument,
			Op:     "validate locator",
			Target: l.String(),
			Err:    fmt.Errorf("empty locator value"),
		}
	}
	return nil
}

func (l Locator) String() string {
	return fmt.Sprintf("(%s, %q)", l.By, l.Value)
}

func (Locator) isTarget() {}

// Target names the element an operation acts on: either a Locator, which is
// resolved with a polling wait, or an element that was already located,
// wrapped with Element.
type Target interface {
	isTarget()
	String() string
}

type elementTarget struct {
	we selenium.WebElement
}

func (elementTarget) isTarget() {}

func (t elementTarget) String() string {
	return "<element>"
}

// Element wraps an element that was already located so that it can be passed
// where a Target is expected. It is used as is; no query is issued for it.
func Element(we selenium.WebElement) Target {
	return elementTarget{we}
}
