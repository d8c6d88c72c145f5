package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/cart-api/apierror"
	"github.com/rs/zerolog/log"
)

// ErrorHandler renders the last error a handler attached with c.Error.
// apierror.Error values go out verbatim; anything else becomes a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		if apiErr, ok := apierror.As(err); ok {
			c.JSON(apiErr.Status, gin.H{"message": apiErr.Message})
			return
		}

		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("unhandled request error")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error"})
	}
}
