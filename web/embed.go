// Package web embeds the static assets (stylesheet, voice widget script, logo)
// and serves them under /static/.
package web

import (
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"
)

//go:embed all:static
var staticFS embed.FS

// StaticHandler returns an http.Handler that serves the embedded assets.
// Mount it with the /static/ prefix stripped. Directory listings are refused.
func StaticHandler() http.Handler {
	subFS, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic("web: failed to create sub filesystem: " + err.Error())
	}

	fileServer := http.FileServer(http.FS(subFS))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" || name == "." {
			http.NotFound(w, r)
			return
		}

		f, err := subFS.Open(name)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		stat, statErr := f.Stat()
		if closeErr := f.Close(); closeErr != nil {
			slog.Debug("web: failed to close embedded file", "path", name, "error", closeErr)
		}
		if statErr != nil || stat.IsDir() {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Cache-Control", "public, max-age=3600")
		fileServer.ServeHTTP(w, r)
	})
}
