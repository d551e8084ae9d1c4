package uibase

import (
	"fmt"
	"strings"

	"github.com/tebeka/selenium"
)

// SelectElement drives a <select> element.
type SelectElement struct {
	b       *Base
	el      selenium.WebElement
	target  string
	isMulti bool
}

// Select resolves t and returns it as a SelectElement. The element must be a
// <select>.
func (b *Base) Select(t Target) (*SelectElement, error) {
	we, err := b.element("select", t)
	if err != nil {
		return nil, err
	}
	tag, err := we.TagName()
	if err != nil {
		return nil, b.done("select", t, err)
	}
	if !strings.EqualFold(tag, "select") {
		return nil, b.done("select", t, &Error{
			Kind:   KindInvalidArgument,
			Op:     "select",
			Target: t.String(),
			Err:    fmt.Errorf("element should have been \"select\" but was %q", tag),
		})
	}
	s := &SelectElement{b: b, el: we, target: t.String()}
	// A null attribute comes back as an error.
	mult, err := we.GetAttribute("multiple")
	s.isMulti = err == nil && mult != "" && !strings.EqualFold(mult, "false")
	return s, nil
}

// Element returns the underlying element.
func (s *SelectElement) Element() selenium.WebElement {
	return s.el
}

// IsMultiple reports whether the element accepts several selected options.
func (s *SelectElement) IsMultiple() bool {
	return s.isMulti
}

func (s *SelectElement) String() string {
	return s.target
}

// Options returns all the options of the element.
func (s *SelectElement) Options() ([]selenium.WebElement, error) {
	opts, err := s.el.FindElements(selenium.ByTagName, "option")
	if err != nil {
		return nil, s.b.done("select options", s, err)
	}
	return opts, nil
}

// SelectedOptions returns the options that are currently selected.
func (s *SelectElement) SelectedOptions() ([]selenium.WebElement, error) {
	opts, err := s.Options()
	if err != nil {
		return nil, err
	}
	var selected []selenium.WebElement
	for _, o := range opts {
		ok, err := o.IsSelected()
		if err != nil {
			return nil, s.b.done("selected options", s, err)
		}
		if ok {
			selected = append(selected, o)
		}
	}
	return selected, nil
}

// FirstSelectedOption returns the first selected option, found is false when
// no option is selected.
func (s *SelectElement) FirstSelectedOption() (opt selenium.WebElement, found bool, err error) {
	opts, err := s.SelectedOptions()
	if err != nil || len(opts) == 0 {
		return nil, false, err
	}
	return opts[0], true, nil
}

// SelectByText selects the options whose visible text is text. A single
// select stops at the first match.
func (s *SelectElement) SelectByText(text string) error {
	opts, err := s.optionsByText(text)
	if err != nil {
		return s.b.done("select by text", s, err)
	}
	return s.b.done("select by text", s, s.setAll(opts, true))
}

// SelectByValue selects the options whose value attribute is value.
func (s *SelectElement) SelectByValue(value string) error {
	opts, err := s.optionsBy("value", value)
	if err != nil {
		return s.b.done("select by value", s, err)
	}
	return s.b.done("select by value", s, s.setAll(opts, true))
}

// SelectByIndex selects the option at position idx.
func (s *SelectElement) SelectByIndex(idx int) error {
	return s.b.done("select by index", s, s.setByIndex(idx, true))
}

// DeselectAll clears every selected option of a multiple select.
func (s *SelectElement) DeselectAll() error {
	if err := s.multiOnly("deselect all"); err != nil {
		return err
	}
	opts, err := s.Options()
	if err != nil {
		return err
	}
	return s.b.done("deselect all", s, s.setAll(opts, false))
}

// DeselectByText deselects the options whose visible text is text.
func (s *SelectElement) DeselectByText(text string) error {
	if err := s.multiOnly("deselect by text"); err != nil {
		return err
	}
	opts, err := s.optionsByText(text)
	if err != nil {
		return s.b.done("deselect by text", s, err)
	}
	return s.b.done("deselect by text", s, s.setAll(opts, false))
}

// DeselectByValue deselects the options whose value attribute is value.
func (s *SelectElement) DeselectByValue(value string) error {
	if err := s.multiOnly("deselect by value"); err != nil {
		return err
	}
	opts, err := s.optionsBy("value", value)
	if err != nil {
		return s.b.done("deselect by value", s, err)
	}
	return s.b.done("deselect by value", s, s.setAll(opts, false))
}

// DeselectByIndex deselects the option at position idx.
func (s *SelectElement) DeselectByIndex(idx int) error {
	if err := s.multiOnly("deselect by index"); err != nil {
		return err
	}
	return s.b.done("deselect by index", s, s.setByIndex(idx, false))
}

func (s *SelectElement) multiOnly(op string) error {
	if s.isMulti {
		return nil
	}
	return s.b.done(op, s, &Error{
		Kind:   KindInvalidArgument,
		Op:     op,
		Target: s.target,
		Err:    fmt.Errorf("you may only deselect options of a multi-select"),
	})
}

func (s *SelectElement) optionsBy(attr, value string) ([]selenium.WebElement, error) {
	opts, err := s.el.FindElements(selenium.ByXPATH, fmt.Sprintf(".//option[@%s = %s]", attr, xpathLiteral(value)))
	if err != nil {
		return nil, err
	}
	if len(opts) == 0 {
		return nil, &Error{Kind: KindNotFound, Op: "find option", Target: s.target, Err: fmt.Errorf("no option with %s %q", attr, value)}
	}
	return opts, nil
}

// optionsByText matches the normalized visible text first, then falls back to
// comparing the trimmed text of every candidate option.
func (s *SelectElement) optionsByText(text string) ([]selenium.WebElement, error) {
	opts, err := s.el.FindElements(selenium.ByXPATH, ".//option[normalize-space(.) = "+xpathLiteral(text)+"]")
	if err != nil {
		return nil, err
	}
	if len(opts) > 0 {
		return opts, nil
	}
	candidates, err := s.el.FindElements(selenium.ByTagName, "option")
	if err != nil {
		return nil, err
	}
	want := strings.Join(strings.Fields(text), " ")
	for _, o := range candidates {
		got, err := o.Text()
		if err != nil {
			return nil, err
		}
		if strings.Join(strings.Fields(got), " ") == want {
			opts = append(opts, o)
		}
	}
	if len(opts) == 0 {
		return nil, &Error{Kind: KindNotFound, Op: "find option", Target: s.target, Err: fmt.Errorf("no option with text %q", text)}
	}
	return opts, nil
}

func (s *SelectElement) setByIndex(idx int, selected bool) error {
	opts, err := s.el.FindElements(selenium.ByTagName, "option")
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(opts) {
		return &Error{Kind: KindNotFound, Op: "find option", Target: s.target, Err: fmt.Errorf("no option at index %d of %d", idx, len(opts))}
	}
	return setSelected(opts[idx], selected)
}

// setAll changes the selection state of opts. A single select only takes the
// first option when selecting.
func (s *SelectElement) setAll(opts []selenium.WebElement, selected bool) error {
	for _, o := range opts {
		if err := setSelected(o, selected); err != nil {
			return err
		}
		if selected && !s.isMulti {
			return nil
		}
	}
	return nil
}

func setSelected(option selenium.WebElement, selected bool) error {
	sel, err := option.IsSelected()
	if err != nil {
		return err
	}
	if sel != selected {
		return option.Click()
	}
	return nil
}

// xpathLiteral quotes s as an XPath string literal. XPath has no escape
// sequences, so a value holding both quote kinds is built with concat().
func xpathLiteral(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	var b strings.Builder
	b.WriteString("concat(")
	for i, p := range parts {
		if i > 0 {
			b.WriteString(`, '"', `)
		}
		b.WriteString(`"` + p + `"`)
	}
	b.WriteString(")")
	return b.String()
}
