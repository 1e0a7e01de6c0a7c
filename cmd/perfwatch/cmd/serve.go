package cmd

import (
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/voluzi/perfwatch/pkg/environ"
	"github.com/voluzi/perfwatch/pkg/history"
	"github.com/voluzi/perfwatch/pkg/perfserver"
)

var (
	host          string
	port          int
	sourcePath    string
	capacity      int
	readMode      string
	staticDir     string
	watchSource   bool
	collectorName string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the sample history API and dashboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := history.ParseReadMode(readMode)
		if err != nil {
			return err
		}

		server, err := perfserver.New(
			perfserver.WithHost(host),
			perfserver.WithPort(port),
			perfserver.WithSourcePath(sourcePath),
			perfserver.WithCapacity(capacity),
			perfserver.WithReadMode(mode),
			perfserver.WithStaticDir(staticDir),
			perfserver.WithWatchSource(watchSource),
			perfserver.WithCollectorName(collectorName),
		)
		if err != nil {
			return err
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			log.Infof("received signal: %v", sig)
			if err := server.Stop(); err != nil {
				log.Errorf("failed to stop server: %v", err)
			}
		}()

		return server.Start()
	},
}

func init() {
	serveCmd.Flags().StringVar(&host, "host",
		environ.GetString("HOST", perfserver.DefaultHost),
		"the host at which this server will be listening to",
	)
	serveCmd.Flags().IntVar(&port, "port",
		environ.GetInt("PORT", perfserver.DefaultPort),
		"the port at which this server will be listening to",
	)
	serveCmd.Flags().StringVar(&sourcePath, "source",
		environ.GetString("SOURCE", history.DefaultSourcePath),
		"the csv file written by perf_collector",
	)
	serveCmd.Flags().IntVar(&capacity, "capacity",
		environ.GetInt("CAPACITY", history.DefaultCapacity),
		"maximum number of samples kept in memory",
	)
	serveCmd.Flags().StringVar(&readMode, "read-mode",
		environ.GetString("READ_MODE", string(history.ReadAll)),
		"rows appended on each refresh: 'all' re-appends every row, 'new' only rows not seen before",
	)
	serveCmd.Flags().StringVar(&staticDir, "static-dir",
		environ.GetString("STATIC_DIR", ""),
		"directory holding the dashboard index.html (embedded dashboard when empty)",
	)
	serveCmd.Flags().BoolVar(&watchSource, "watch",
		environ.GetBool("WATCH_SOURCE", false),
		"refresh whenever the source is written (requires --read-mode=new)",
	)
	serveCmd.Flags().StringVar(&collectorName, "collector-name",
		environ.GetString("COLLECTOR_NAME", perfserver.DefaultCollectorName),
		"process name of the collector reported by /health",
	)
}
