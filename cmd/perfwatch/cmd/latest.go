package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/voluzi/perfwatch/pkg/environ"
	"github.com/voluzi/perfwatch/pkg/perfserver"
)

var (
	serverHost string
	serverPort int
	timeout    time.Duration
)

var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Prints the latest sample held by a running server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		sample, err := perfserver.NewClient(serverHost, serverPort).GetLatest(ctx)
		if err != nil {
			return err
		}
		if sample == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "{}")
			return nil
		}
		b, err := json.Marshal(sample)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	latestCmd.Flags().StringVar(&serverHost, "server-host",
		environ.GetString("SERVER_HOST", "127.0.0.1"),
		"host of the perfwatch server",
	)
	latestCmd.Flags().IntVar(&serverPort, "server-port",
		environ.GetInt("SERVER_PORT", perfserver.DefaultPort),
		"port of the perfwatch server",
	)
	latestCmd.Flags().DurationVar(&timeout, "timeout",
		environ.GetDuration("TIMEOUT", 10*time.Second),
		"request timeout",
	)
}
