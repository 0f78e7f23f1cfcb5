package web

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, dir string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/v1/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.NoRoute(NewHandler(dir).Serve)
	return r
}

func bundle(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<div id=root></div>"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "assets"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0644))
	return dir
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestServe(t *testing.T) {
	r := setupRouter(t, bundle(t))

	tests := []struct {
		name   string
		target string
		code   int
		body   string
	}{
		{"asset", "/assets/app.js", http.StatusOK, "console.log(1)"},
		{"root", "/", http.StatusOK, "<div id=root></div>"},
		{"client route", "/pedidos/novo", http.StatusOK, "<div id=root></div>"},
		{"missing asset", "/assets/missing.css", http.StatusNotFound, ""},
		{"unknown api", "/api/v1/nope", http.StatusNotFound, `"error"`},
		{"traversal stays in bundle", "/../../etc/passwd", http.StatusOK, "<div id=root></div>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.target)
			assert.Equal(t, tt.code, w.Code)
			if tt.body != "" {
				assert.Contains(t, w.Body.String(), tt.body)
			}
		})
	}
}

func TestServeRoutesTakePrecedence(t *testing.T) {
	w := get(setupRouter(t, bundle(t)), "/api/v1/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestServeWithoutBundle(t *testing.T) {
	w := get(setupRouter(t, filepath.Join(t.TempDir(), "dist")), "/clientes")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "App bundle not found")
}
