package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"ctchen222/tictactoe/internal/api/response"

	"github.com/gin-gonic/gin"
)

// Logging logs one line per request once the handler chain has finished.
func Logging(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("duration", time.Since(start)),
		}
		if id, ok := c.Get(SessionIDKey); ok {
			attrs = append(attrs, slog.Any("session.id", id))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "http request", attrs...)
	}
}

// Recovery turns a handler panic into a 500 response and logs it.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered",
			"panic", recovered,
			"path", c.Request.URL.Path,
		)
		response.ErrorResponse(c, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	})
}
