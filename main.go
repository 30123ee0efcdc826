package main

import (
	"os"

	"github.com/spf13/cobra"

	"txkv/internal/config"
	"txkv/server"
)

var configFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "txkv",
		Short:         "Key-value datastore with single pending transactions",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.json)")

	root.AddCommand(newServeCommand(), newShellCommand(), newCLICommand())
	return root
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the datastore over TCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			return server.Init(cfg)
		},
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
