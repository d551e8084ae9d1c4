package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wanmail/uibase/config"
	"github.com/wanmail/uibase/internal/logger"
)

// app is the state shared by the commands of one invocation.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	log     zerolog.Logger
	closer  io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}
	root := &cobra.Command{
		Use:   "uibase",
		Short: "Browser UI test tooling",
		Long: `uibase prepares and checks the browser sessions used by UI tests.

Settings come from the environment (UIBASE_ prefix, e.g. UIBASE_BROWSER),
then the config file, then the defaults.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.init,
		PersistentPostRunE: a.close,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./uibase.yaml, or $"+config.FileEnv+")")
	pf.String("browser", "", "browser to drive: chrome or firefox")
	pf.String("host", "", "address of a running WebDriver server")
	pf.Bool("headless", false, "run the browser without a window")
	pf.Bool("debug", false, "log the WebDriver wire traffic")
	if err := bindFlags(a.v, root, "browser", "host", "headless", "debug"); err != nil {
		panic(err)
	}
	pf.AddGoFlagSet(flag.CommandLine)

	root.AddCommand(newFetchCmd(a), newSmokeCmd(a), newLocatorsCmd(a))
	return root
}

// bindFlags makes the persistent flags of cmd named keys override the
// configuration keys of the same name.
func bindFlags(v *viper.Viper, cmd *cobra.Command, keys ...string) error {
	for _, key := range keys {
		if err := v.BindPFlag(key, cmd.PersistentFlags().Lookup(key)); err != nil {
			return fmt.Errorf("binding --%s: %w", key, err)
		}
	}
	return nil
}

// init loads the configuration and sets up the run log.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	path := a.cfgFile
	if path == "" {
		path = os.Getenv(config.FileEnv)
	}
	if path != "" {
		a.v.SetConfigFile(path)
	} else {
		a.v.SetConfigName("uibase")
		a.v.SetConfigType("yaml")
		a.v.AddConfigPath(".")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log, a.closer, err = logger.Setup(cfg.Logging, cfg.Browser)
	return err
}

func (a *app) close(*cobra.Command, []string) error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
