package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"projexa/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type stubResolver map[string]domain.Caller

func (s stubResolver) ResolveCaller(_ context.Context, token string) domain.Caller {
	return s[token]
}

func setupRouter(resolver CallerResolver) (*gin.Engine, *domain.Caller, *string) {
	gin.SetMode(gin.TestMode)
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var seen domain.Caller
	var token string
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logger), CallerMiddleware(resolver, logger))
	r.GET("/whoami", func(c *gin.Context) {
		seen = CallerFrom(c)
		token = TokenFrom(c)
		c.Status(http.StatusNoContent)
	})
	return r, &seen, &token
}

func TestCallerMiddleware(t *testing.T) {
	resolver := stubResolver{"adm": {UserID: 1, Role: domain.RoleAdmin}}

	tests := []struct {
		name      string
		header    string
		wantAdmin bool
		wantToken string
	}{
		{"no header", "", false, ""},
		{"admin token", "Bearer adm", true, "adm"},
		{"lowercase scheme", "bearer adm", true, "adm"},
		{"unknown token", "Bearer nope", false, "nope"},
		{"basic auth", "Basic dXNlcjpwYXNz", false, ""},
		{"malformed", "Bearer", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, seen, token := setupRouter(resolver)
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.wantAdmin, seen.IsAdmin())
			assert.Equal(t, tt.wantToken, *token)
		})
	}
}

func TestRequestID(t *testing.T) {
	r, _, _ := setupRouter(stubResolver{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Len(t, w.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
