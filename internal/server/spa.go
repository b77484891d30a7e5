package server

import (
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// reservedPrefixes never fall back to the client: a typo in an API or
// websocket URL must stay a 404 rather than return index.html.
var reservedPrefixes = []string{"/api/", "/ws", "/healthz"}

// spaFileServer serves the built web client from assets. Paths that are not
// files resolve to index.html so client routes such as /boards/{id} and
// /accept-invite/{token} load the app. Hashed bundles under assets/ are
// cached for a year; index.html is always revalidated.
func spaFileServer(assets fs.FS) http.Handler {
	fileServer := http.FileServerFS(assets)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		for _, prefix := range reservedPrefixes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				http.NotFound(w, r)
				return
			}
		}

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name == "" || !isFile(assets, name) {
			w.Header().Set("Cache-Control", "no-cache")
			http.ServeFileFS(w, r, assets, "index.html")
			return
		}

		if strings.HasPrefix(name, "assets/") {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		}
		fileServer.ServeHTTP(w, r)
	})
}

func isFile(assets fs.FS, name string) bool {
	info, err := fs.Stat(assets, name)
	return err == nil && !info.IsDir()
}
