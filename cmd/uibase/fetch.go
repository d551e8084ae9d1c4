package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wanmail/uibase/config"
	"github.com/wanmail/uibase/internal/download"
)

func newFetchCmd(a *app) *cobra.Command {
	var (
		browsers []string
		pins     download.Pins
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download chromedriver and geckodriver into the driver directory",
		Long: `fetch downloads the WebDriver binaries into driver_dir, where local
sessions look for them. chromedriver comes from the Chrome for Testing
bucket, geckodriver from its GitHub releases.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := download.Drivers(cmd.Context(), browsers, pins)
			if err != nil {
				return err
			}
			if err := download.All(cmd.Context(), files, a.cfg.DriverDir); err != nil {
				return err
			}
			for _, f := range files {
				fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(a.cfg.DriverDir, f.Binary))
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&browsers, "browsers", config.Browsers, "browsers to fetch drivers for")
	cmd.Flags().StringVar(&pins.Chrome, "chrome-version", "", "Chrome version: a major version such as 120 or a full version (default newest)")
	cmd.Flags().StringVar(&pins.Gecko, "gecko-version", "", "geckodriver version or semver range (default latest release)")
	return cmd
}
