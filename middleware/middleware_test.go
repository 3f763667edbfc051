package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motoroutes-api/errs"
	"motoroutes-api/models"
	"motoroutes-api/utils"
)

type stubAuthenticator map[string]models.Identity

func (s stubAuthenticator) Authenticate(_ context.Context, token string) (models.Identity, error) {
	identity, ok := s[token]
	if !ok {
		return models.Identity{}, errs.Unauthorized("Given token not valid for any token type")
	}
	return identity, nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), ErrorHandler())
	r.Use(handlers...)
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandlerRendering(t *testing.T) {
	r := newEngine()
	r.GET("/validation", func(c *gin.Context) { _ = c.Error(errs.FieldError("title", "This field is required.")) })
	r.GET("/missing", func(c *gin.Context) { _ = c.Error(errs.NotFound("Route")) })
	r.GET("/forbidden", func(c *gin.Context) { _ = c.Error(errs.Forbidden("You can only edit your own routes")) })
	r.GET("/anonymous", func(c *gin.Context) { _ = c.Error(errs.Unauthorized("Token has wrong type")) })
	r.GET("/boom", func(c *gin.Context) { _ = c.Error(errors.New("connection reset")) })
	r.GET("/page", func(c *gin.Context) { _ = c.Error(fmt.Errorf("list routes: %w", errs.InvalidPage())) })

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/validation", http.StatusBadRequest, `{"error":"Validation failed","code":400,"fields":{"title":["This field is required."]}}`},
		{"/missing", http.StatusNotFound, `{"detail":"No Route matches the given query."}`},
		{"/forbidden", http.StatusForbidden, `{"error":"You can only edit your own routes","code":403}`},
		{"/anonymous", http.StatusUnauthorized, `{"detail":"Token has wrong type"}`},
		{"/boom", http.StatusInternalServerError, `{"error":"Internal server error","code":500}`},
		{"/page", http.StatusNotFound, `{"detail":"Invalid page."}`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := serve(r, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestAuthenticate(t *testing.T) {
	r := newEngine(Authenticate(stubAuthenticator{"good": {UserID: 7, Username: "rider"}}))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentIdentity(c).UserID})
	})
	r.GET("/private", RequireAuth(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	w := serve(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":0}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer good")
	w = serve(r, req)
	assert.JSONEq(t, `{"user_id":7}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer forged")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Bearer realm="api"`, w.Header().Get("WWW-Authenticate"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/private", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Authentication credentials were not provided."}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/private", nil)
	req.Header.Set("Authorization", "Bearer good")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestContentTypes(t *testing.T) {
	r := newEngine(ContentTypes("application/json"))
	r.POST("/things", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.DELETE("/things", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	assert.Equal(t, http.StatusCreated, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/things", strings.NewReader(`a=b`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := serve(r, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
	assert.JSONEq(t, `{"detail":"Unsupported media type \"application/x-www-form-urlencoded\" in request."}`, w.Body.String())

	req = httptest.NewRequest(http.MethodDelete, "/things", nil)
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(60, 2)
	r := newEngine(limiter.Middleware(60))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil)).Code)
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "Request was throttled.")

	assert.Same(t, limiter.GetLimiter("192.0.2.1"), limiter.GetLimiter("192.0.2.1"))
}

func TestRequestID(t *testing.T) {
	r := newEngine()
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	const incoming = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	assert.Equal(t, incoming, serve(r, req).Header().Get(RequestIDHeader))
}

func TestRequestSchemeTrustsForwardedProtoOnlyWhenConfigured(t *testing.T) {
	tests := []struct {
		name      string
		trusted   bool
		forwarded string
		origin    string
	}{
		{"untrusted header is ignored", false, "https", "http://api.example.com"},
		{"trusted header is honoured", true, "https", "https://api.example.com"},
		{"trusted header with other scheme is ignored", true, "javascript", "http://api.example.com"},
		{"no header", true, "", "http://api.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newEngine(RequestScheme(tt.trusted))
			r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, utils.RequestOrigin(c)) })

			req := httptest.NewRequest(http.MethodGet, "http://api.example.com/", nil)
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-Proto", tt.forwarded)
			}
			assert.Equal(t, tt.origin, serve(r, req).Body.String())
		})
	}
}
