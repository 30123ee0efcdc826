package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"txkv/internal/client"
)

func newCLICommand() *cobra.Command {
	var (
		host    string
		port    string
		timeout time.Duration
		history string
	)

	cmd := &cobra.Command{
		Use:   "cli",
		Short: "Connect to a running txkv server",
		RunE: func(cmd *cobra.Command, args []string) error {
			address := net.JoinHostPort(host, port)
			remote := client.NewRemote(address, timeout)
			if err := remote.Connect(); err != nil {
				return fmt.Errorf("%w (is the server running?)", err)
			}
			defer remote.Close()
			fmt.Fprintf(os.Stdout, "Connected to txkv at %s\n", address)

			return client.NewREPL(remote, "txkv", os.Stdout).Run(history)
		},
	}
	cmd.Flags().StringVar(&host, "host", "localhost", "server host")
	cmd.Flags().StringVar(&port, "port", "7653", "server port")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "dial and reply timeout")
	cmd.Flags().StringVar(&history, "history", "", "file to keep command history in")
	return cmd
}
