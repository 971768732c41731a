package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"ctchen222/tictactoe/internal/api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type stubTokens map[string]string

func (s stubTokens) ValidateToken(token string) (string, error) {
	id, ok := s[token]
	if !ok {
		return "", service.ErrInvalidToken
	}
	return id, nil
}

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/sessions/:id", SessionAuth(stubTokens{"good": "s1"}), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(SessionIDKey))
	})
	return r
}

func TestSessionAuth(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{name: "Bearer header", path: "/api/sessions/s1", header: "Bearer good", want: http.StatusOK},
		{name: "Query token", path: "/api/sessions/s1?token=good", want: http.StatusOK},
		{name: "Missing token", path: "/api/sessions/s1", want: http.StatusUnauthorized},
		{name: "Unknown token", path: "/api/sessions/s1", header: "Bearer bad", want: http.StatusUnauthorized},
		{name: "Token for another session", path: "/api/sessions/s2", header: "Bearer good", want: http.StatusForbidden},
	}

	r := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, "s1", w.Body.String())
			}
		})
	}
}

func TestLoggingAndRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	r := gin.New()
	r.Use(Logging(logger), Recovery(logger))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, buf.String(), "path=/ok")
	assert.Contains(t, buf.String(), "status=204")

	buf.Reset()
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, buf.String(), "panic recovered")
	assert.Contains(t, buf.String(), "level=ERROR")
}
