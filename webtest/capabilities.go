package webtest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
	"github.com/tebeka/selenium/log"
	"github.com/tebeka/selenium/sauce"

	"github.com/wanmail/uibase/config"
)

// Capabilities returns the session capabilities described by cfg. The
// browser console log is always requested so that failed tests can dump it.
func Capabilities(cfg *config.Config) (selenium.Capabilities, error) {
	caps := selenium.Capabilities{"browserName": cfg.Browser}
	switch cfg.Browser {
	case "chrome":
		c := chrome.Capabilities{
			Path: cfg.BrowserBinary,
			Args: []string{
				// Needed for Chrome binaries that are not the default
				// installation. The sandbox requires a setuid binary.
				"--no-sandbox",
			},
			W3C: true,
		}
		if cfg.Headless {
			c.Args = append(c.Args, "--headless")
		}
		caps.AddChrome(c)
	case "firefox":
		f := firefox.Capabilities{}
		if cfg.BrowserBinary != "" {
			p, err := filepath.Abs(cfg.BrowserBinary)
			if err != nil {
				return nil, fmt.Errorf("browser binary: %w", err)
			}
			f.Binary = p
		}
		if cfg.Debug {
			f.Log = &firefox.Log{Level: firefox.Trace}
		}
		if cfg.Headless {
			f.Args = append(f.Args, "-headless")
		}
		caps.AddFirefox(f)
	default:
		return nil, fmt.Errorf("unsupported browser %q", cfg.Browser)
	}
	caps.AddLogging(log.Capabilities{log.Browser: log.All})

	if cfg.Proxy.Enabled() {
		p := selenium.Proxy{
			Type:    selenium.Manual,
			NoProxy: cfg.Proxy.Bypass(),
		}
		if cfg.Proxy.SOCKS != "" {
			p.SOCKS = cfg.Proxy.SOCKS
			p.SOCKSVersion = 5
		} else {
			p.HTTP = cfg.Proxy.HTTP
			p.SSL = cfg.Proxy.HTTP
		}
		caps.AddProxy(p)
		proxyBypass(cfg, caps)
	}

	if cfg.Sauce.Enabled() {
		sc := &sauce.Capabilities{
			Browser:  cfg.Browser,
			Platform: cfg.Sauce.Platform,
			Version:  cfg.Sauce.Version,
		}
		m, err := sc.ToMap()
		if err != nil {
			return nil, fmt.Errorf("sauce capabilities: %w", err)
		}
		for k, v := range m {
			caps[k] = v
		}
	}
	return caps, nil
}

// proxyBypass sets the hosts the browser reaches directly to exactly the
// configured bypass list. Both browsers skip the proxy for localhost unless
// told otherwise, and fixture servers run there.
func proxyBypass(cfg *config.Config, caps selenium.Capabilities) {
	hosts := cfg.Proxy.Bypass()
	switch cfg.Browser {
	case "firefox":
		ff := caps[firefox.CapabilitiesKey].(firefox.Capabilities)
		if ff.Prefs == nil {
			ff.Prefs = make(map[string]interface{})
		}
		ff.Prefs["network.proxy.no_proxies_on"] = strings.Join(hosts, ", ")
		ff.Prefs["network.proxy.allow_hijacking_localhost"] = true
		caps.AddFirefox(ff)
	case "chrome":
		ch := caps[chrome.CapabilitiesKey].(chrome.Capabilities)
		// https://crbug.com/899126
		bypass := append([]string{"<-loopback>"}, hosts...)
		ch.Args = append(ch.Args, "--proxy-bypass-list="+strings.Join(bypass, ";"))
		caps.AddChrome(ch)
	}
}
