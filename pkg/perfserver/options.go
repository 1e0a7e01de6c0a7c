package perfserver

import "github.com/voluzi/perfwatch/pkg/history"

const (
	DefaultHost          = "0.0.0.0"
	DefaultPort          = 5000
	DefaultCollectorName = "perf_collector"
)

func defaultOptions() *Options {
	return &Options{
		Host:          DefaultHost,
		Port:          DefaultPort,
		SourcePath:    history.DefaultSourcePath,
		Capacity:      history.DefaultCapacity,
		ReadMode:      history.ReadAll,
		StaticDir:     "",
		WatchSource:   false,
		CollectorName: DefaultCollectorName,
	}
}

type Options struct {
	Host          string
	Port          int
	SourcePath    string
	Capacity      int
	ReadMode      history.ReadMode
	StaticDir     string
	WatchSource   bool
	CollectorName string
}

type Option func(*Options)

func WithHost(s string) Option {
	return func(opts *Options) {
		opts.Host = s
	}
}

func WithPort(v int) Option {
	return func(opts *Options) {
		opts.Port = v
	}
}

func WithSourcePath(path string) Option {
	return func(opts *Options) {
		opts.SourcePath = path
	}
}

func WithCapacity(n int) Option {
	return func(opts *Options) {
		opts.Capacity = n
	}
}

func WithReadMode(m history.ReadMode) Option {
	return func(opts *Options) {
		opts.ReadMode = m
	}
}

// WithStaticDir serves the dashboard from dir instead of the embedded assets.
func WithStaticDir(dir string) Option {
	return func(opts *Options) {
		opts.StaticDir = dir
	}
}

// WithWatchSource refreshes the history whenever the collector writes to the source.
func WithWatchSource(watch bool) Option {
	return func(opts *Options) {
		opts.WatchSource = watch
	}
}

// WithCollectorName sets the process name reported by /health. Empty disables the lookup.
func WithCollectorName(name string) Option {
	return func(opts *Options) {
		opts.CollectorName = name
	}
}
