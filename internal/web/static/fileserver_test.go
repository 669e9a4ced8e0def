package static

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assetDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "css", "app.css"), []byte("body {}"), 0o644))
	return dir
}

func get(handler http.Handler, target string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestHandler_ServesFile(t *testing.T) {
	handler := Handler(assetDir(t), "/static", 3600)

	w := get(handler, "/static/css/app.css", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "body {}", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/css")
	assert.Equal(t, "public, max-age=3600", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("ETag"))
}

func TestHandler_NotModified(t *testing.T) {
	handler := Handler(assetDir(t), "/static", 3600)

	first := get(handler, "/static/css/app.css", nil)
	etag := first.Header().Get("ETag")
	require.NotEmpty(t, etag)

	second := get(handler, "/static/css/app.css", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, second.Code)
	assert.Empty(t, second.Body.String())
}

func TestHandler_Missing(t *testing.T) {
	handler := Handler(assetDir(t), "/static", 3600)
	assert.Equal(t, http.StatusNotFound, get(handler, "/static/nope.css", nil).Code)
}

func TestHandler_RefusesDirectory(t *testing.T) {
	handler := Handler(assetDir(t), "/static", 3600)
	assert.Equal(t, http.StatusForbidden, get(handler, "/static/css", nil).Code)
}

func TestHandler_RefusesTraversal(t *testing.T) {
	dir := assetDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(dir), "secret.txt"), []byte("x"), 0o644))

	handler := Handler(dir, "/static", 3600)

	w := get(handler, "/static/../secret.txt", nil)
	assert.NotEqual(t, http.StatusOK, w.Code)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	handler := Handler(assetDir(t), "/static", 3600)

	req := httptest.NewRequest("POST", "/static/css/app.css", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
