package server

import (
	"embed"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed all:ui
var uiFS embed.FS

// uiRoot is the embedded page with the ui/ prefix stripped.
var uiRoot fs.FS

var uiHandler http.Handler

func init() {
	sub, err := fs.Sub(uiFS, "ui")
	if err != nil {
		panic(err)
	}
	uiRoot = sub
	uiHandler = http.FileServerFS(uiRoot)
}

// handleStatic serves the embedded page. Unknown paths without an extension
// render index.html; unknown assets are 404.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean(r.URL.Path), "/")
	if name != "" {
		if _, err := fs.Stat(uiRoot, name); err != nil {
			if path.Ext(name) != "" {
				writeError(w, http.StatusNotFound, "file not found")
				return
			}
			http.ServeFileFS(w, r, uiRoot, "index.html")
			return
		}
	}
	uiHandler.ServeHTTP(w, r)
}
