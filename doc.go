/*
Package uibase is a thin layer over a WebDriver session for writing browser UI
tests.

Elements are named by a Locator, a (strategy, value) pair such as
Locator{selenium.ByID, "kw"}, or by an element that was already located,
wrapped with Element. Operations resolve their target with a bounded polling
wait: the session is asked for the element every PollInterval until it shows
up or Timeout elapses.

Absence of an element is not an error. Find reports it with a false found
result, predicates such as IsDisplayed or TitleIs report false, and FindAll
returns an empty slice. Everything else, such as a lost session or a malformed
locator, is returned as an *Error whose Kind tells the failures apart:

	we, found, err := b.Find(uibase.Locator{By: selenium.ByID, Value: "kw"})
	switch {
	case errors.Is(err, uibase.ErrSessionLost):
		// restart the browser
	case err != nil:
		// caller bug, e.g. an unknown strategy
	case !found:
		// the page did not render the element in time
	}

The session is created elsewhere, usually by the webtest package, and handed
to New. A Base may drive another session for some calls through On.

Every operation writes one log entry through the zerolog logger given with the
Logger option.
*/
package uibase
