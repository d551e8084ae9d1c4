package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wanmail/uibase"
)

func newLocatorsCmd(*app) *cobra.Command {
	var page string
	cmd := &cobra.Command{
		Use:   "locators FILE",
		Short: "Validate a locator file and list its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			locs, err := uibase.LoadLocatorFile(args[0])
			if err != nil {
				return err
			}
			pages := locs.Pages()
			if page != "" {
				if _, ok := locs[page]; !ok {
					return fmt.Errorf("no page %q in %s", page, args[0])
				}
				pages = []string{page}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, p := range pages {
				for _, name := range locs.Names(p) {
					l, _ := locs.Get(p, name)
					fmt.Fprintf(w, "%s.%s\t%s\n", p, name, l)
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&page, "page", "", "only list this page")
	return cmd
}
