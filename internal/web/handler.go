// Package web serves the built single-page app and falls back to index.html
// so client-side routes survive a reload.
package web

import (
	"log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/"

type Handler struct {
	dir string
}

func NewHandler(dir string) *Handler {
	if _, err := os.Stat(filepath.Join(dir, "index.html")); err != nil {
		log.Printf("web: no app bundle in %s, only the API is served: %v", dir, err)
	}
	return &Handler{dir: dir}
}

// Serve is registered as the router's NoRoute handler
func (h *Handler) Serve(c *gin.Context) {
	p := c.Request.URL.Path
	if strings.HasPrefix(p, apiPrefix) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	clean := path.Clean("/" + p)
	if file := filepath.Join(h.dir, filepath.FromSlash(clean)); clean != "/" && isFile(file) {
		c.File(file)
		return
	}
	// Missing assets are real 404s; anything else is a client route
	if path.Ext(clean) != "" {
		c.Status(http.StatusNotFound)
		return
	}

	index := filepath.Join(h.dir, "index.html")
	if !isFile(index) {
		c.JSON(http.StatusNotFound, gin.H{"error": "App bundle not found"})
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.File(index)
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
