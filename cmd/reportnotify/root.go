package main

import (
	"github.com/spf13/cobra"

	"github.com/kart-io/reportnotify/pkg/config"
)

type rootOptions struct {
	configFile string
	logLevel   string
	language   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "reportnotify",
		Short:         "Deliver report and alert notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "configuration file (yaml, json or toml)")
	flags.StringVar(&opts.logLevel, "log-level", "", "override the configured log level")
	flags.StringVar(&opts.language, "language", "", "override the configured language")

	cmd.AddCommand(newSendCmd(opts), newWorkerCmd(opts))
	return cmd
}

// loadConfig reads the config file (if any) and environment, then applies
// flag overrides.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	var overrides []config.Option
	if o.logLevel != "" {
		overrides = append(overrides, config.WithLogLevel(o.logLevel))
	}
	if o.language != "" {
		overrides = append(overrides, config.WithLanguage(o.language))
	}
	return config.Load(o.configFile, overrides...)
}
