package perfserver

import (
	"embed"
	"io/fs"
	"net/http"
	"path/filepath"
)

//go:embed static/*
var staticFS embed.FS

const indexFile = "index.html"

func embeddedAssets() fs.FS {
	sub, _ := fs.Sub(staticFS, "static")
	return sub
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	if s.cfg.StaticDir != "" {
		http.ServeFile(w, r, filepath.Join(s.cfg.StaticDir, indexFile))
		return
	}
	b, err := fs.ReadFile(embeddedAssets(), indexFile)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}

func (s *Server) staticFiles() http.Handler {
	if s.cfg.StaticDir != "" {
		return http.FileServer(http.Dir(s.cfg.StaticDir))
	}
	return http.FileServer(http.FS(embeddedAssets()))
}
