package response

import (
	"errors"
	"net/http"

	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/hub"
	"ctchen222/tictactoe/internal/room"

	"github.com/gin-gonic/gin"
)

type Error struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Extras  string `json:"extras"`
}

func (e Error) Error() string {
	return e.Extras
}

func NewError(success bool, code int, message string) Error {
	return Error{
		Success: success,
		Code:    code,
		Extras:  message,
	}
}

// StatusFromError maps a domain error to the HTTP status it is reported with.
func StatusFromError(err error) int {
	var e Error
	switch {
	case errors.As(err, &e):
		return e.Code
	case errors.Is(err, hub.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidMove):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidDifficulty),
		errors.Is(err, game.ErrInvalidMark),
		errors.Is(err, game.ErrInvalidBoard):
		return http.StatusBadRequest
	case errors.Is(err, bot.ErrNoLegalMove):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, room.ErrRoomClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrorFromDomain writes err with the status StatusFromError picks. Internal errors are
// not echoed to the client.
func ErrorFromDomain(c *gin.Context, err error) {
	code := StatusFromError(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		message = http.StatusText(code)
	}
	_ = c.Error(err)
	ErrorResponse(c, code, message)
}
