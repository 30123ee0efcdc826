package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"txkv/internal/client"
	"txkv/internal/config"
	"txkv/internal/db"
	"txkv/internal/logger"
)

func newShellCommand() *cobra.Command {
	var history string

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Open the configured datastore in-process and start a REPL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			slog.SetDefault(logger.New(cfg.LogLevel))

			database, err := db.NewDB(cfg, slog.Default())
			if err != nil {
				return err
			}
			local := client.NewLocal(database)
			defer func() {
				if err := local.Close(); err != nil {
					slog.Error("Failed to close datastore", "error", err)
				}
			}()

			return client.NewREPL(local, "txkv", os.Stdout).Run(history)
		},
	}
	cmd.Flags().StringVar(&history, "history", "", "file to keep command history in")
	return cmd
}
