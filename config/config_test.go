package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	want := &Config{
		Browser:         "firefox",
		DriverDir:       "driver",
		Timeout:         6 * time.Second,
		PollInterval:    500 * time.Millisecond,
		PageLoadTimeout: 15 * time.Second,
		ScreenshotDir:   "screenshots",
		Logging: Logging{
			Level:   "info",
			Format:  "text",
			Dir:     "log",
			Console: true,
		},
	}
	if diff := cmp.Diff(want, Default()); diff != "" {
		t.Errorf("Default() returned diff (-want/+got):\n%s", diff)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uibase.yaml")
	doc := `
browser: Chrome
headless: true
timeout: 10s
poll_interval: 250ms
logging:
  level: debug
  format: json
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("UIBASE_SCREENSHOT_DIR", "/tmp/shots")
	t.Setenv("UIBASE_LOGGING_LEVEL", "warn")

	cfg, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q) returned error: %v", path, err)
	}
	tests := []struct {
		name      string
		got, want interface{}
	}{
		{"browser", cfg.Browser, "chrome"},
		{"headless", cfg.Headless, true},
		{"timeout", cfg.Timeout, 10 * time.Second},
		{"poll_interval", cfg.PollInterval, 250 * time.Millisecond},
		{"page_load_timeout", cfg.PageLoadTimeout, 15 * time.Second},
		{"screenshot_dir from the environment", cfg.ScreenshotDir, "/tmp/shots"},
		{"logging.level from the environment", cfg.Logging.Level, "warn"},
		{"logging.format", cfg.Logging.Format, "json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uibase.yaml")
	if err := os.WriteFile(path, []byte("host: http://grid:4444/wd/hub\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("UIBASE_BROWSER", "chrome")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv() returned error: %v", err)
	}
	if cfg.Host != "http://grid:4444/wd/hub" || cfg.Browser != "chrome" {
		t.Errorf("FromEnv() = host %q browser %q", cfg.Host, cfg.Browser)
	}
}

func TestProxyFromEnv(t *testing.T) {
	t.Setenv("UIBASE_PROXY_SOCKS", "127.0.0.1:1080")
	t.Setenv("UIBASE_PROXY_NO_PROXY", "example.com, ,intranet")

	cfg, err := ReadFile("")
	if err != nil {
		t.Fatalf("ReadFile() returned error: %v", err)
	}
	if !cfg.Proxy.Enabled() {
		t.Error("Proxy.Enabled() = false, want true")
	}
	if diff := cmp.Diff([]string{"example.com", "intranet"}, cfg.Proxy.Bypass()); diff != "" {
		t.Errorf("Proxy.Bypass() returned diff (-want/+got):\n%s", diff)
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("ReadFile() of a missing file returned nil error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"chrome", func(c *Config) { c.Browser = "chrome" }, ""},
		{"unknown browser", func(c *Config) { c.Browser = "ie" }, "unsupported browser"},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, "timeout must be positive"},
		{"negative poll interval", func(c *Config) { c.PollInterval = -time.Second }, "poll_interval must be positive"},
		{"poll longer than timeout", func(c *Config) { c.PollInterval = time.Minute }, "longer than timeout"},
		{"sauce without key", func(c *Config) { c.Sauce.User = "bob" }, "access_key"},
		{"sauce with key", func(c *Config) { c.Sauce = Sauce{User: "bob", AccessKey: "k"} }, ""},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging format"},
		{"socks proxy", func(c *Config) { c.Proxy.SOCKS = "127.0.0.1:1080" }, ""},
		{"two proxies", func(c *Config) { c.Proxy = Proxy{HTTP: "p:3128", SOCKS: "p:1080"} }, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() returned error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want an error containing %q", err, tt.wantErr)
			}
		})
	}
}
