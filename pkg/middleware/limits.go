package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// UploadLimit rejects uploads larger than maxBytes before the body is parsed
func UploadLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only check on POST/PUT with a body
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"error":   "File too large",
				"message": fmt.Sprintf("Arquivo muito grande. Tamanho máximo: %d KB.", maxBytes/1024),
				"code":    "LIMIT_UPLOAD_SIZE",
				"current": c.Request.ContentLength,
				"limit":   maxBytes,
			})
			return
		}

		// Guard against a missing or lying Content-Length
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
