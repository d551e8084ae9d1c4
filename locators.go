package uibase

import (
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Locators holds the named locators of a set of pages, as read from a
// locator file:
//
//	search_page:
//	  search_box: [id, kw]
//	  submit: [css selector, "input#su"]
type Locators map[string]map[string]Locator

// LoadLocators reads a locator file from r. Every entry must be a valid
// (strategy, value) pair.
func LoadLocators(r io.Reader) (Locators, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return Locators{}, nil
		}
		return nil, &Error{Kind: KindInvalidArgument, Op: "load locators", Err: err}
	}
	if len(doc.Content) == 0 {
		return Locators{}, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, locatorFileError(root, "", "", fmt.Errorf("top level must map page names to locators"))
	}
	ls := Locators{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		page, entries := root.Content[i].Value, root.Content[i+1]
		if entries.Kind != yaml.MappingNode {
			return nil, locatorFileError(entries, page, "", fmt.Errorf("page must map names to locators"))
		}
		if _, dup := ls[page]; dup {
			return nil, locatorFileError(root.Content[i], page, "", fmt.Errorf("page %q already defined", page))
		}
		ls[page] = map[string]Locator{}
		for j := 0; j+1 < len(entries.Content); j += 2 {
			name, node := entries.Content[j].Value, entries.Content[j+1]
			var parts []string
			if err := node.Decode(&parts); err != nil {
				return nil, locatorFileError(node, page, name, fmt.Errorf("locator must be a [strategy, value] sequence"))
			}
			l, err := ParseLocator(parts)
			if err != nil {
				return nil, locatorFileError(node, page, name, err)
			}
			if _, dup := ls[page][name]; dup {
				return nil, locatorFileError(entries.Content[j], page, name, fmt.Errorf("locator %q already defined", name))
			}
			ls[page][name] = l
		}
	}
	return ls, nil
}

func locatorFileError(n *yaml.Node, page, name string, err error) error {
	target := page
	if name != "" {
		target += "." + name
	}
	return &Error{
		Kind:   KindInvalidArgument,
		Op:     fmt.Sprintf("load locators (line %d)", n.Line),
		Target: target,
		Err:    err,
	}
}

// LoadLocatorFile reads the locator file at path.
func LoadLocatorFile(path string) (Locators, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ls, err := LoadLocators(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ls, nil
}

// Get returns the locator called name on page.
func (ls Locators) Get(page, name string) (Locator, bool) {
	l, ok := ls[page][name]
	return l, ok
}

// Pages returns the page names in sorted order.
func (ls Locators) Pages() []string {
	pages := make([]string, 0, len(ls))
	for p := range ls {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	return pages
}

// Names returns the locator names of page in sorted order.
func (ls Locators) Names(page string) []string {
	names := make([]string, 0, len(ls[page]))
	for n := range ls[page] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
