// Package static serves template assets (stylesheets, scripts, images)
// alongside the CRUD routes.
package static

import (
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Handler serves files under root at the given URL prefix. Directory
// listings are refused; assets are served with cache validators so browsers
// can revalidate cheaply.
func Handler(root, prefix string, maxAge int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		rel := path.Clean(strings.TrimPrefix(r.URL.Path, prefix))
		if strings.Contains(rel, "..") {
			http.Error(w, "invalid path", http.StatusBadRequest)
			return
		}

		filePath := filepath.Join(root, filepath.FromSlash(rel))
		if !contained(root, filePath) {
			http.Error(w, "invalid path", http.StatusForbidden)
			return
		}

		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if info.IsDir() {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}

		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))

		etag := fmt.Sprintf(`W/"%x-%x"`, info.Size(), info.ModTime().Unix())
		w.Header().Set("ETag", etag)
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}

		// ServeFile handles Content-Type, ranges and If-Modified-Since
		http.ServeFile(w, r, filePath)
	})
}

// contained reports whether filePath resolves inside root
func contained(root, filePath string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absFile, err := filepath.Abs(filePath)
	if err != nil {
		return false
	}
	return absFile == absRoot || strings.HasPrefix(absFile, absRoot+string(filepath.Separator))
}
