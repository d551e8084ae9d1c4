// Package pagetest serves the fixture pages the browser integration tests
// run against.
package pagetest

import (
	"fmt"
	"html"
	"net/http"
)

// Titles of the fixture pages.
const (
	HomeTitle    = "UI Base Test Suite"
	SearchTitle  = "UI Base Test Suite - Search Page"
	ChangedTitle = "Title changed."
	AlertText    = "Hello world"
	// SearchContents is shown by the search page.
	SearchContents = "The Go Programming Language"
	// ProxyContents is shown by the page a proxy serves instead of the
	// fixture pages.
	ProxyContents = "You are viewing a proxied page"
)

var homePage = `
<html>
<head>
	<title>` + HomeTitle + `</title>
</head>
<body>
	The home page. <br />
	<form action="/search">
		<input id="search-box" name="q" autofocus />
		<input name="submit" type="submit" id="submit" value="Search" /> <br />
		<input id="chuk" type="checkbox" /> A checkbox.
		<input id="disabled" type="text" disabled /> A disabled input.
		<select id="city" name="s">
			<option value="bj">Beijing</option>
			<option id="secondValue" value="sh">Shanghai</option>
			<option value="sz">  Shenzhen  </option>
		</select>
	</form>
	<div id="hidden" style="display: none">Hidden text.</div>
	Link to the <a id="other" href="/other">other page</a>.

	<a href="/log">log</a>
	<a href="/search">search</a>
</body>
</html>
`

var otherPage = `
<html>
<head>
	<title>UI Base Test Suite - Other Page</title>
</head>
<body>
	The other page.
</body>
</html>
`

var searchPage = `
<html>
<head>
	<title>` + SearchTitle + `</title>
</head>
<body>
	<span id="query">You searched for "%s".</span> I'll pretend I've found:
	<p id="result">
	"` + SearchContents + `"
	</p>
	<span id="selected">Select value is: %s</span>
</body>
</html>
`

var logPage = `
<html>
<head>
	<title>UI Base Test Suite - Log Page</title>
	<script>
		console.log("console log");
		throw "exception log";
	</script>
</head>
<body>
	Log test page.
</body>
</html>
`

var framePage = `
<html>
<head>
	<title>UI Base Test Suite - Frame Page</title>
</head>
<body>
	This page contains a frame.

	<iframe id="iframeID" name="iframeName" src="/"></iframe>
	<div id="outsideOfFrame"></div>
</body>
</html>
`

var titleChangePage = `
<html>
<head>
	<title>UI Base Test Suite - Title Change Page</title>
</head>
<body>
	This page will change a title after 1 second.

	<script>
		setTimeout(function() { document.title = '` + ChangedTitle + `' }, 1000);
	</script>
</body>
</html>
`

var alertPage = `
<html>
<head>
	<title>UI Base Test Suite - Alert Appear Page</title>
</head>
<body>
	An alert will popup.

	<script>
		alert('` + AlertText + `');
	</script>
</body>
</html>
`

// The element with id "late" appears one second after the page loads.
var delayedPage = `
<html>
<head>
	<title>UI Base Test Suite - Delayed Page</title>
</head>
<body>
	<div id="container"></div>

	<script>
		setTimeout(function() {
			var d = document.createElement('div');
			d.id = 'late';
			d.textContent = 'I was late.';
			document.getElementById('container').appendChild(d);
		}, 1000);
	</script>
</body>
</html>
`

var selectPage = `
<html>
<head>
	<title>UI Base Test Suite - Select Page</title>
</head>
<body>
	<select id="single">
		<option value="bj">Beijing</option>
		<option value="sh" selected>Shanghai</option>
		<option value="sz">Shenzhen</option>
	</select>
	<select id="multi" multiple>
		<option value="a">Say "hi"</option>
		<option value="b">It's</option>
		<option value="c">  Spaced   out </option>
	</select>
	<div id="not-a-select"></div>
</body>
</html>
`

// mousePage appends the name of every mouse gesture it sees to #events.
var mousePage = `
<html>
<head>
	<title>UI Base Test Suite - Mouse Page</title>
	<style>
		.box { width: 200px; height: 40px; margin: 10px; border: 1px solid black; }
	</style>
</head>
<body>
	<div id="hover" class="box" onmouseover="record('hover')">hover</div>
	<div id="dbl" class="box" ondblclick="record('dblclick')">double click</div>
	<div id="ctx" class="box" oncontextmenu="record('contextmenu'); return false;">context click</div>
	<div id="drag" class="box" onmousedown="record('grab')">drag</div>
	<div id="drop" class="box" onmouseup="record('drop')">drop</div>
	<p id="events"></p>

	<script>
		function record(name) {
			document.getElementById('events').textContent += name + ' ';
		}
	</script>
</body>
</html>
`

var pages = map[string]string{
	"/":        homePage,
	"/other":   otherPage,
	"/search":  searchPage,
	"/log":     logPage,
	"/frame":   framePage,
	"/title":   titleChangePage,
	"/alert":   alertPage,
	"/delayed": delayedPage,
	"/select":  selectPage,
	"/mouse":   mousePage,
}

// Handler serves the fixture pages. Every response also sets the cookies
// cookie-0, cookie-1 and cookie-2.
var Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	page, ok := pages[path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if path == "/search" {
		r.ParseForm()
		page = fmt.Sprintf(page, html.EscapeString(r.Form.Get("q")), html.EscapeString(r.Form.Get("s")))
	}
	for i := 0; i < 3; i++ {
		http.SetCookie(w, &http.Cookie{
			Name:  fmt.Sprintf("cookie-%d", i),
			Value: fmt.Sprintf("value-%d", i),
		})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
})

// ProxyHandler serves ProxyContents for every request.
var ProxyHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, ProxyContents)
})
