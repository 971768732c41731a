package middleware

import (
	"strings"

	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"

	"github.com/gin-gonic/gin"
)

// SessionIDKey holds the session id a request was authenticated for.
const SessionIDKey = "session.id"

// TokenValidator resolves a session token to the session it was issued for.
type TokenValidator interface {
	ValidateToken(token string) (string, error)
}

// SessionAuth rejects requests whose token does not belong to the :id path parameter.
func SessionAuth(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.ErrorFromDomain(c, service.ErrInvalidToken)
			return
		}

		sessionID, err := tokens.ValidateToken(token)
		if err != nil {
			response.ErrorFromDomain(c, err)
			return
		}
		if id := c.Param("id"); id != "" && id != sessionID {
			response.ErrorFromDomain(c, service.ErrForbidden)
			return
		}

		c.Set(SessionIDKey, sessionID)
		c.Next()
	}
}

// extractToken reads the bearer header first. Browsers cannot set headers on a websocket
// handshake, so the token query parameter is accepted too.
func extractToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return c.Query("token")
}
