// Package middleware provides gin middleware shared by all routes.
package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// NewRateLimitMiddleware creates a per-client-IP rate limiting middleware.
// Requests over the limit are rejected with 429 Too Many Requests.
func NewRateLimitMiddleware(rate limiter.Rate) gin.HandlerFunc {
	// Create in-memory store
	store := memory.NewStore()

	// Create rate limiter instance
	instance := limiter.New(store, rate)

	// Create and return Gin middleware
	return mgin.NewMiddleware(instance)
}

// NewRateLimitMiddlewareFromFormat creates a rate limiting middleware from a
// formatted rate such as "100-M" (100 requests per minute)
func NewRateLimitMiddlewareFromFormat(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rate %q: %w", formatted, err)
	}
	return NewRateLimitMiddleware(rate), nil
}
