package cmd

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/voluzi/perfwatch/pkg/environ"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "perfwatch",
	Short: "Serves recent perf counter samples over HTTP",
	Long: `perfwatch keeps a bounded in-memory history of the samples written by perf_collector
and exposes them to dashboards and scrapers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLvl, err := log.ParseLevel(logLevel)
		if err != nil {
			return fmt.Errorf("invalid log level: %w", err)
		}
		log.SetLevel(logLvl)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel,
		"log-level",
		environ.GetString("LOG_LEVEL", "info"),
		"Log level. One of trace, debug, info, warn, error, fatal, panic.",
	)

	rootCmd.AddCommand(serveCmd, followCmd, latestCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
