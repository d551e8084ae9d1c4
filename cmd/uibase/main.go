// Command uibase fetches WebDriver binaries, checks that a browser session
// works end to end and validates locator files.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
)

func main() {
	// glog writes the download progress to stderr.
	flag.Set("logtostderr", "true")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
