package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wanmail/uibase"
	"github.com/wanmail/uibase/webtest"
)

func newSmokeCmd(a *app) *cobra.Command {
	var (
		wait       string
		screenshot string
	)
	cmd := &cobra.Command{
		Use:   "smoke URL",
		Short: "Open URL in a browser session and print its title",
		Example: `  uibase smoke https://www.baidu.com --wait "id=kw"
  uibase smoke http://localhost:8080 --browser chrome --headless --screenshot home.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var l uibase.Locator
			if wait != "" {
				if l, err = uibase.ParseLocatorString(wait); err != nil {
					return err
				}
			}

			r, err := webtest.NewRunner(a.cfg, a.log)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := r.Close(); err == nil {
					err = cerr
				}
			}()
			b := r.Base()

			if err := b.Get(args[0]); err != nil {
				return err
			}
			if wait != "" {
				_, found, err := b.Find(l)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%s did not appear within %v", l, b.Timeout())
				}
			}
			title, err := b.Title()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), title)
			if screenshot != "" {
				return b.SaveScreenshot(screenshot)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&wait, "wait", "", `locator to wait for, as "strategy=value"`)
	cmd.Flags().StringVar(&screenshot, "screenshot", "", "save a PNG screenshot to this path")
	return cmd
}
