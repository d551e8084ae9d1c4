package uibase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tebeka/selenium"
)

// elementKey is the W3C web element identifier.
const elementKey = "element-6066-11e4-a52e-4f735466cecf"

const (
	leftButton  = 0
	rightButton = 2

	// moveDuration is the pointer travel time of a move, in milliseconds.
	moveDuration = 250
)

// pointerStep is one action of the mouse input source.
type pointerStep struct {
	typ    string // pointerMove, pointerDown or pointerUp
	we     selenium.WebElement
	button int
}

func moveTo(we selenium.WebElement) pointerStep { return pointerStep{typ: "pointerMove", we: we} }
func press(button int) pointerStep              { return pointerStep{typ: "pointerDown", button: button} }
func release(button int) pointerStep            { return pointerStep{typ: "pointerUp", button: button} }

// encode returns the step as a W3C action item.
func (s pointerStep) encode() (map[string]interface{}, error) {
	if s.typ != "pointerMove" {
		return map[string]interface{}{"type": s.typ, "button": s.button}, nil
	}
	id, err := elementID(s.we)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"type":     s.typ,
		"duration": moveDuration,
		"x":        0,
		"y":        0,
		"origin":   map[string]string{elementKey: id},
	}, nil
}

// elementID returns the id the session knows we by, read from its JSON form.
func elementID(we selenium.WebElement) (string, error) {
	data, err := json.Marshal(we)
	if err != nil {
		return "", err
	}
	var ref map[string]string
	if err := json.Unmarshal(data, &ref); err != nil {
		return "", fmt.Errorf("element %T has no WebDriver reference: %v", we, err)
	}
	if id := ref[elementKey]; id != "" {
		return id, nil
	}
	if id := ref["ELEMENT"]; id != "" {
		return id, nil
	}
	return "", fmt.Errorf("element %T has no WebDriver reference", we)
}

// performActions sends steps as one mouse action sequence.
func (b *Base) performActions(wd selenium.WebDriver, steps []pointerStep) error {
	items := make([]map[string]interface{}, 0, len(steps))
	for _, s := range steps {
		item, err := s.encode()
		if err != nil {
			return err
		}
		items = append(items, item)
	}
	return b.post(wd, "/actions", map[string]interface{}{
		"actions": []interface{}{
			map[string]interface{}{
				"type":       "pointer",
				"id":         "mouse",
				"parameters": map[string]string{"pointerType": "mouse"},
				"actions":    items,
			},
		},
	})
}

// post sends a W3C command for the session to the executor. A failure
// reported by the server is returned as a *selenium.Error.
func (b *Base) post(wd selenium.WebDriver, path string, body interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := strings.TrimSuffix(b.executor, "/") + "/session/" + wd.SessionID() + path
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := selenium.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	var reply struct {
		Value json.RawMessage `json:"value"`
	}
	if json.Unmarshal(buf, &reply) == nil && len(reply.Value) > 0 {
		e := new(selenium.Error)
		if json.Unmarshal(reply.Value, e) == nil && e.Err != "" {
			e.HTTPCode = resp.StatusCode
			return e
		}
	}
	return fmt.Errorf("POST %s: %s", path, resp.Status)
}

// pointer runs a mouse gesture. With an executor the steps go out as W3C
// actions; otherwise legacy replays them with the JSON wire protocol calls
// of the session.
func (b *Base) pointer(op string, t fmt.Stringer, steps []pointerStep, legacy func(selenium.WebDriver) error) error {
	wd, err := b.session(op)
	if err != nil {
		return err
	}
	if b.executor == "" {
		return b.done(op, t, legacy(wd))
	}
	return b.done(op, t, b.performActions(wd, steps))
}
