package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RequestIDKey is the gin context key holding the request ID
const RequestIDKey = "RequestID"

// RequestLogger logs one structured line per request once the handler chain
// has finished. 5xx responses and requests carrying context errors log at
// error level, 4xx at warn, everything else at info.
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		lastErr := c.Errors.Last()

		var e *zerolog.Event
		switch {
		case status >= 500 || lastErr != nil:
			e = logger.Error()
			if lastErr != nil {
				e = e.Err(lastErr.Err)
			}
		case status >= 400:
			e = logger.Warn()
		default:
			e = logger.Info()
		}

		if requestID := c.GetString(RequestIDKey); requestID != "" {
			e = e.Str("request_id", requestID)
		}

		e.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request completed")
	}
}
