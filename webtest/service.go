package webtest

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"

	"github.com/tebeka/selenium"

	"github.com/wanmail/uibase/config"
)

// Driver binary names looked up in the driver directory.
const (
	ChromeDriver = "chromedriver"
	GeckoDriver  = "geckodriver"
)

type stopper interface {
	Stop() error
}

var (
	newChromeDriverService = func(path string, port int, opts ...selenium.ServiceOption) (stopper, error) {
		return selenium.NewChromeDriverService(path, port, opts...)
	}
	newGeckoDriverService = func(path string, port int, opts ...selenium.ServiceOption) (stopper, error) {
		return selenium.NewGeckoDriverService(path, port, opts...)
	}
)

// Service is a WebDriver server running as a subprocess.
type Service struct {
	// Addr is the executor address sessions are opened against.
	Addr string
	// Path is the driver binary.
	Path string

	s stopper
}

// DriverPath returns where the driver binary of cfg.Browser is expected.
func DriverPath(cfg *config.Config) (string, error) {
	switch cfg.Browser {
	case "chrome":
		return filepath.Join(cfg.DriverDir, ChromeDriver), nil
	case "firefox":
		return filepath.Join(cfg.DriverDir, GeckoDriver), nil
	}
	return "", fmt.Errorf("no driver for browser %q", cfg.Browser)
}

// HaveDriver reports whether the driver binary of cfg.Browser exists.
func HaveDriver(cfg *config.Config) bool {
	path, err := DriverPath(cfg)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// StartService starts the driver of cfg.Browser from cfg.DriverDir on an
// unused port. The driver output goes to out when it is not nil.
func StartService(cfg *config.Config, out io.Writer) (*Service, error) {
	path, err := DriverPath(cfg)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("driver binary: %w (run `uibase fetch` to download it)", err)
	}
	port, err := pickUnusedPort()
	if err != nil {
		return nil, fmt.Errorf("picking a port: %w", err)
	}

	var opts []selenium.ServiceOption
	if out != nil {
		opts = append(opts, selenium.Output(out))
	}
	if cfg.FrameBuffer {
		opts = append(opts, selenium.StartFrameBuffer())
	}

	svc := &Service{Path: path}
	switch cfg.Browser {
	case "chrome":
		svc.s, err = newChromeDriverService(path, port, opts...)
		svc.Addr = fmt.Sprintf("http://127.0.0.1:%d/wd/hub", port)
	case "firefox":
		svc.s, err = newGeckoDriverService(path, port, opts...)
		svc.Addr = fmt.Sprintf("http://127.0.0.1:%d", port)
	}
	if err != nil {
		return nil, fmt.Errorf("starting %s: %w", filepath.Base(path), err)
	}
	return svc, nil
}

// Stop shuts the driver down.
func (s *Service) Stop() error {
	if s == nil || s.s == nil {
		return nil
	}
	return s.s.Stop()
}

func pickUnusedPort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		return 0, err
	}
	return port, nil
}
