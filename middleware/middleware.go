// File: /middleware/middleware.go
package middleware

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"motoroutes-api/errs"
	"motoroutes-api/utils"
)

// ErrorHandler renders the last error attached with c.Error.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var apiErr *errs.APIError
		if !errors.As(err, &apiErr) {
			log.Error().Err(err).
				Str("request_id", c.GetString(RequestIDKey)).
				Str("path", c.Request.URL.Path).
				Msg("request failed")
			utils.SendError(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		switch {
		case errs.IsValidation(err):
			utils.SendValidationError(c, errs.FieldsOf(err))
		case errors.Is(err, errs.ErrUnauthorized):
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			utils.SendDetail(c, apiErr.Status, apiErr.Message)
		case errs.IsNotFound(err), errors.Is(err, errs.ErrInvalidPage):
			utils.SendDetail(c, apiErr.Status, apiErr.Message)
		case errs.IsForbidden(err):
			log.Warn().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("path", c.Request.URL.Path).
				Msg(apiErr.Message)
			utils.SendError(c, apiErr.Status, apiErr.Message)
		default:
			utils.SendError(c, apiErr.Status, apiErr.Message)
		}
	}
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	limiters map[string]*rate.Limiter
	mutex    sync.Mutex
	rate     rate.Limit
	burst    int
}

func NewRateLimiter(requestsPerMinute int, burst int) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:    burst,
	}
}

// GetLimiter returns the rate limiter for a given key (IP address)
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}

	return limiter
}

// CleanupLimiters drops buckets that have refilled completely.
func (rl *RateLimiter) CleanupLimiters() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	for key, limiter := range rl.limiters {
		if limiter.Tokens() >= float64(rl.burst) {
			delete(rl.limiters, key)
		}
	}
}

// Middleware rejects clients that exceed their bucket with 429.
func (rl *RateLimiter) Middleware(requestsPerMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		limiter := rl.GetLimiter(c.ClientIP())
		reset := strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10)

		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", reset)
			c.Header("Retry-After", "60")
			utils.SendDetail(c, http.StatusTooManyRequests,
				fmt.Sprintf("Request was throttled. Limit: %d requests per minute.", requestsPerMinute))
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Header("X-RateLimit-Reset", reset)
		c.Next()
	}
}

// RateLimit builds a limiter and runs its cleanup every ten minutes until stop is closed.
func RateLimit(requestsPerMinute int, burst int, stop <-chan struct{}) gin.HandlerFunc {
	rateLimiter := NewRateLimiter(requestsPerMinute, burst)

	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				rateLimiter.CleanupLimiters()
			case <-stop:
				return
			}
		}
	}()

	return rateLimiter.Middleware(requestsPerMinute)
}

// ContentTypes rejects request bodies whose media type is not one of allowed with 415.
func ContentTypes(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
			c.Next()
			return
		}

		header := c.GetHeader("Content-Type")
		if header == "" && c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		mediaType, _, err := mime.ParseMediaType(header)
		if err == nil {
			for _, a := range allowed {
				if strings.EqualFold(mediaType, a) {
					c.Next()
					return
				}
			}
		}

		utils.SendDetail(c, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported media type \"%s\" in request.", header))
		c.Abort()
	}
}

// RequestLogger writes one structured access log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}

		event.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("client_ip", c.ClientIP()).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("user_agent", c.Request.UserAgent()).
			Msg("request")
	}
}

// Recovery turns panics into a logged 500.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Interface("panic", recovered).
			Msg("panic recovered")
		utils.SendError(c, http.StatusInternalServerError, "Internal server error")
		c.Abort()
	})
}

// SecurityHeaders middleware adds security headers
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		// Swagger UI ships inline scripts and styles.
		if !strings.HasPrefix(c.Request.URL.Path, "/swagger/") {
			c.Header("Content-Security-Policy", "default-src 'self'")
		}
		c.Next()
	}
}
