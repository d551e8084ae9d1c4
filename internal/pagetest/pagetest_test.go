package pagetest

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("http.Get(%q) returned error: %v", url, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %q: %v", url, err)
	}
	return resp, string(body)
}

func TestHandler(t *testing.T) {
	s := httptest.NewServer(Handler)
	defer s.Close()

	tests := []struct {
		path string
		want string
	}{
		{"/", HomeTitle},
		{"/", `id="search-box"`},
		{"/search?q=golang&s=sz", `You searched for "golang".`},
		{"/search?q=golang&s=sz", "Select value is: sz"},
		{"/search?q=%3Cb%3E", "&lt;b&gt;"},
		{"/frame", `id="iframeID"`},
		{"/alert", AlertText},
		{"/title", ChangedTitle},
		{"/delayed", "'late'"},
		{"/select", `<select id="multi" multiple>`},
		{"/mouse", `ondblclick="record('dblclick')"`},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, s.URL+tt.path)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("GET %s status = %d, want 200", tt.path, resp.StatusCode)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("GET %s body does not contain %q:\n%s", tt.path, tt.want, body)
			}
		})
	}
}

func TestHandlerCookies(t *testing.T) {
	s := httptest.NewServer(Handler)
	defer s.Close()

	resp, _ := get(t, s.URL+"/other")
	got := map[string]string{}
	for _, c := range resp.Cookies() {
		got[c.Name] = c.Value
	}
	for _, name := range []string{"cookie-0", "cookie-1", "cookie-2"} {
		if got[name] == "" {
			t.Errorf("response is missing cookie %q, got %v", name, got)
		}
	}
}

func TestHandlerNotFound(t *testing.T) {
	s := httptest.NewServer(Handler)
	defer s.Close()

	if resp, _ := get(t, s.URL+"/nope"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /nope status = %d, want 404", resp.StatusCode)
	}
}

func TestProxyHandler(t *testing.T) {
	s := httptest.NewServer(ProxyHandler)
	defer s.Close()

	if _, body := get(t, s.URL+"/anything"); body != ProxyContents {
		t.Errorf("proxy body = %q, want %q", body, ProxyContents)
	}
}
