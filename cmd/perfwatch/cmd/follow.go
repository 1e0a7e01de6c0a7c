package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/voluzi/perfwatch/pkg/environ"
	"github.com/voluzi/perfwatch/pkg/follower"
	"github.com/voluzi/perfwatch/pkg/history"
)

var (
	followSource string
	fromEnd      bool
)

var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Prints samples as JSON lines while the collector writes them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := follower.New(followSource, fromEnd)
		if err != nil {
			return err
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			if err := f.Stop(); err != nil {
				log.Errorf("failed to stop follower: %v", err)
			}
		}()

		go f.Start()

		enc := json.NewEncoder(cmd.OutOrStdout())
		for record := range f.Records {
			if record.Err != nil {
				log.WithField("row", record.Row).Warnf("skipping record: %v", record.Err)
				continue
			}
			if err := enc.Encode(record.Sample); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	followCmd.Flags().StringVar(&followSource, "source",
		environ.GetString("SOURCE", history.DefaultSourcePath),
		"the csv file written by perf_collector",
	)
	followCmd.Flags().BoolVar(&fromEnd, "from-end",
		environ.GetBool("FROM_END", false),
		"only print samples written after start",
	)
}
