package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// JSONBody rejects malformed JSON before any handler runs and caps request
// bodies at maxBytes. The validated body is put back for ShouldBindJSON.
func JSONBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		if !isJSON(c.ContentType()) {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "could not read request body"})
			return
		}
		if len(bytes.TrimSpace(body)) > 0 && !json.Valid(body) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "malformed JSON body"})
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func isJSON(contentType string) bool {
	ct := strings.ToLower(contentType)
	return ct == "application/json" || strings.HasSuffix(ct, "+json")
}
