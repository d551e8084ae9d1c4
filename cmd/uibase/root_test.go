package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/wanmail/uibase"
	"github.com/wanmail/uibase/config"
)

// run executes the command line args with the run log kept in a temporary
// directory.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.FileEnv, "")
	t.Setenv("UIBASE_LOGGING_DIR", t.TempDir())
	t.Setenv("UIBASE_LOGGING_CONSOLE", "false")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const locatorFile = `
search_page:
  search_box: [id, kw]
  submit: [css selector, "input#su"]
result_page:
  first: [xpath, "//div[@id='1']"]
`

func TestLocatorsCommand(t *testing.T) {
	path := writeFile(t, "locators.yaml", locatorFile)

	tests := []struct {
		desc    string
		args    []string
		want    []string
		notWant []string
	}{
		{
			desc: "all pages",
			args: []string{"locators", path},
			want: []string{
				`search_page.search_box  (id, "kw")`,
				`search_page.submit      (css selector, "input#su")`,
				`result_page.first`,
			},
		},
		{
			desc:    "one page",
			args:    []string{"locators", path, "--page", "result_page"},
			want:    []string{`(xpath, "//div[@id='1']")`},
			notWant: []string{"search_page"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("uibase %s returned error: %v", strings.Join(tt.args, " "), err)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output does not contain %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestCommandErrors(t *testing.T) {
	good := writeFile(t, "locators.yaml", locatorFile)
	bad := writeFile(t, "bad.yaml", "page:\n  box: [id]\n")
	badConfig := writeFile(t, "uibase.yaml", "timeout: 0s\n")

	tests := []struct {
		desc    string
		args    []string
		wantErr string
	}{
		{"unknown page", []string{"locators", good, "--page", "nope"}, `no page "nope"`},
		{"malformed entry", []string{"locators", bad}, "page.box"},
		{"missing file", []string{"locators", filepath.Join(t.TempDir(), "none.yaml")}, "no such file"},
		{"unknown browser", []string{"--browser", "ie", "locators", good}, "unsupported browser"},
		{"bad config file", []string{"--config", badConfig, "locators", good}, "timeout must be positive"},
		{"missing config file", []string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "locators", good}, "reading config"},
		{"smoke without url", []string{"smoke"}, "accepts 1 arg"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("uibase %s = %v, want an error containing %q", strings.Join(tt.args, " "), err, tt.wantErr)
			}
		})
	}
}

func TestSmokeBadLocator(t *testing.T) {
	_, err := run(t, "smoke", "http://localhost/", "--wait", "kw")
	if !errors.Is(err, uibase.ErrInvalidArgument) {
		t.Errorf("uibase smoke --wait kw = %v, want ErrInvalidArgument", err)
	}
}

func TestBindFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.PersistentFlags().String("browser", "", "")

	v := config.New()
	if err := bindFlags(v, cmd, "browser", "host"); err == nil || !strings.Contains(err.Error(), "--host") {
		t.Errorf("bindFlags(browser, host) = %v, want an error naming --host", err)
	}
	if err := cmd.PersistentFlags().Set("browser", "chrome"); err != nil {
		t.Fatal(err)
	}
	if got := v.GetString("browser"); got != "chrome" {
		t.Errorf("browser = %q after setting --browser, want %q", got, "chrome")
	}
}
