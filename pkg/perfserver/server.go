package perfserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/voluzi/perfwatch/pkg/history"
)

const ErrWatchRequiresReadNew = errors.Sentinel("watching the source requires read mode \"new\"")

type Server struct {
	server  *http.Server
	router  *mux.Router
	cfg     *Options
	history *history.History

	ctx    context.Context
	cancel context.CancelFunc
}

func New(opts ...Option) (*Server, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	mode, err := history.ParseReadMode(string(options.ReadMode))
	if err != nil {
		return nil, err
	}
	options.ReadMode = mode

	if options.WatchSource && options.ReadMode != history.ReadNew {
		return nil, ErrWatchRequiresReadNew
	}

	h := history.New(
		history.NewFileSource(options.SourcePath),
		history.WithCapacity(options.Capacity),
		history.WithReadMode(options.ReadMode),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:     options,
		router:  mux.NewRouter(),
		history: h,
		ctx:     ctx,
		cancel:  cancel,
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", options.Host, options.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the router serving the API and dashboard.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) History() *history.History {
	return s.history
}

// Start serves until Stop is called.
func (s *Server) Start() error {
	if s.cfg.WatchSource {
		go func() {
			if err := s.watchSource(s.ctx); err != nil {
				log.Errorf("error watching source file: %v", err)
			}
		}()
	}

	log.WithFields(map[string]interface{}{
		"source":    s.cfg.SourcePath,
		"capacity":  s.history.Capacity(),
		"read-mode": s.cfg.ReadMode,
	}).Infof("server started listening on %s ...", s.server.Addr)

	err := s.server.ListenAndServe()
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Stop() error {
	log.Info("stopping server")
	s.cancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}
