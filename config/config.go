// Package config holds the settings of a UI test run: which browser to drive,
// where its WebDriver lives, the polling timeouts and where logs and failure
// screenshots go.
//
// Settings are read by viper with this precedence: environment variables
// (UIBASE_ prefix, dots replaced by underscores, e.g. UIBASE_LOGGING_LEVEL),
// then the config file, then the defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of the environment variables read by New.
const EnvPrefix = "UIBASE"

// FileEnv names the environment variable FromEnv reads the config file path
// from.
const FileEnv = "UIBASE_CONFIG"

// Browsers are the supported browser names.
var Browsers = []string{"chrome", "firefox"}

// Config is the configuration of a test run.
type Config struct {
	// Browser is "chrome" or "firefox".
	Browser string `mapstructure:"browser"`
	// Host is the address of a running WebDriver server, e.g.
	// http://127.0.0.1:4444/wd/hub. When empty a driver service is started
	// from DriverDir.
	Host string `mapstructure:"host"`
	// Headless runs the browser without a window.
	Headless bool `mapstructure:"headless"`
	// BrowserBinary overrides the browser executable.
	BrowserBinary string `mapstructure:"browser_binary"`
	// DriverDir holds the chromedriver and geckodriver binaries.
	DriverDir string `mapstructure:"driver_dir"`
	// FrameBuffer starts an Xvfb server for the local driver service.
	FrameBuffer bool `mapstructure:"frame_buffer"`

	Timeout         time.Duration `mapstructure:"timeout"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	PageLoadTimeout time.Duration `mapstructure:"page_load_timeout"`

	// ScreenshotDir receives the screenshots of failed tests.
	ScreenshotDir string `mapstructure:"screenshot_dir"`
	// Debug logs the WebDriver wire traffic.
	Debug bool `mapstructure:"debug"`

	Logging Logging `mapstructure:"logging"`
	Sauce   Sauce   `mapstructure:"sauce"`
	Proxy   Proxy   `mapstructure:"proxy"`
}

// Proxy routes the browser traffic through a proxy. Requests to localhost
// are proxied too, so that local fixture servers can be reached through it.
type Proxy struct {
	// HTTP is the host:port of an HTTP proxy used for http and https.
	HTTP string `mapstructure:"http"`
	// SOCKS is the host:port of a SOCKS5 proxy.
	SOCKS string `mapstructure:"socks"`
	// NoProxy is a comma separated list of hosts that bypass the proxy.
	NoProxy string `mapstructure:"no_proxy"`
}

// Enabled reports whether a proxy is configured.
func (p Proxy) Enabled() bool {
	return p.HTTP != "" || p.SOCKS != ""
}

// Bypass returns the hosts listed in NoProxy.
func (p Proxy) Bypass() []string {
	var hosts []string
	for _, h := range strings.Split(p.NoProxy, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// Logging configures the run log.
type Logging struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
	// Format is json or text.
	Format string `mapstructure:"format"`
	// Dir receives the run log file. No file is written when empty.
	Dir string `mapstructure:"dir"`
	// Console also writes the log to stderr.
	Console bool `mapstructure:"console"`
}

// Sauce configures a Sauce Labs session. It is used instead of Host when
// User is set.
type Sauce struct {
	User      string `mapstructure:"user"`
	AccessKey string `mapstructure:"access_key"`
	Platform  string `mapstructure:"platform"`
	Version   string `mapstructure:"version"`
}

// Enabled reports whether the run goes through Sauce Labs.
func (s Sauce) Enabled() bool {
	return s.User != ""
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("browser", "firefox")
	v.SetDefault("host", "")
	v.SetDefault("headless", false)
	v.SetDefault("browser_binary", "")
	v.SetDefault("driver_dir", "driver")
	v.SetDefault("frame_buffer", false)
	v.SetDefault("timeout", 6*time.Second)
	v.SetDefault("poll_interval", 500*time.Millisecond)
	v.SetDefault("page_load_timeout", 15*time.Second)
	v.SetDefault("screenshot_dir", "screenshots")
	v.SetDefault("debug", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.dir", "log")
	v.SetDefault("logging.console", true)

	v.SetDefault("sauce.user", "")
	v.SetDefault("sauce.access_key", "")
	v.SetDefault("sauce.platform", "")
	v.SetDefault("sauce.version", "")

	v.SetDefault("proxy.http", "")
	v.SetDefault("proxy.socks", "")
	v.SetDefault("proxy.no_proxy", "")
}

// New returns a viper instance with the defaults set and the environment
// bound.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Browser = strings.ToLower(strings.TrimSpace(cfg.Browser))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ReadFile loads the config file at path on top of the defaults and the
// environment.
func ReadFile(path string) (*Config, error) {
	v := New()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return Load(v)
}

// FromEnv loads the configuration from the environment, and from the file
// named by UIBASE_CONFIG when it is set.
func FromEnv() (*Config, error) {
	return ReadFile(os.Getenv(FileEnv))
}

// Default returns the default configuration.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return cfg
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	known := false
	for _, b := range Browsers {
		if c.Browser == b {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unsupported browser %q, want one of %s", c.Browser, strings.Join(Browsers, ", "))
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"timeout", c.Timeout},
		{"poll_interval", c.PollInterval},
		{"page_load_timeout", c.PageLoadTimeout},
	} {
		if d.val <= 0 {
			return fmt.Errorf("%s must be positive, got %v", d.name, d.val)
		}
	}
	if c.PollInterval > c.Timeout {
		return fmt.Errorf("poll_interval %v is longer than timeout %v", c.PollInterval, c.Timeout)
	}
	if c.Sauce.Enabled() && c.Sauce.AccessKey == "" {
		return fmt.Errorf("sauce.user is set but sauce.access_key is empty")
	}
	if c.Proxy.HTTP != "" && c.Proxy.SOCKS != "" {
		return fmt.Errorf("proxy.http and proxy.socks are mutually exclusive")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported logging format %q, want json or text", c.Logging.Format)
	}
	return nil
}
