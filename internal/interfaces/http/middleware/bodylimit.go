package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/swapmarket/backend/internal/interfaces/http/dto"
)

// BodyLimit rejects request bodies above maxBytes with REQUEST_TOO_LARGE.
// Declared lengths are refused before the handler runs; chunked bodies are
// capped while read and surface through HandleValidationError.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			abortTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func abortTooLarge(c *gin.Context) {
	status, resp := dto.MapError(dto.ErrRequestTooLarge, GetRequestID(c))
	c.AbortWithStatusJSON(status, resp)
}

func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge)
}
