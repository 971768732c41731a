package controller

import (
	"net/http"

	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"

	"github.com/gin-gonic/gin"
)

// SessionController handles session-related HTTP requests.
type SessionController struct {
	sessionService service.SessionService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

// Create starts a session and returns it with its token.
func (sc *SessionController) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	// An empty body starts a hot-seat session on the default difficulty.
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	resp, err := sc.sessionService.Create(c.Request.Context(), &req)
	if err != nil {
		response.ErrorFromDomain(c, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, resp)
}

func (sc *SessionController) Get(c *gin.Context) {
	snap, err := sc.sessionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorFromDomain(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, snap)
}

// Move places a mark for the caller.
func (sc *SessionController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := sc.sessionService.Move(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.ErrorFromDomain(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, snap)
}

func (sc *SessionController) Reset(c *gin.Context) {
	snap, err := sc.sessionService.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorFromDomain(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, snap)
}

// UpdateSettings changes the mode or difficulty and restarts the game.
func (sc *SessionController) UpdateSettings(c *gin.Context) {
	var req models.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := sc.sessionService.UpdateSettings(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		response.ErrorFromDomain(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, snap)
}

// History lists the finished games of the session.
func (sc *SessionController) History(c *gin.Context) {
	games, err := sc.sessionService.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorFromDomain(c, err)
		return
	}
	response.SuccessResponseList(c, http.StatusOK, games)
}

func (sc *SessionController) Delete(c *gin.Context) {
	if err := sc.sessionService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.ErrorFromDomain(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EngineMove picks a move for an arbitrary board.
func (sc *SessionController) EngineMove(c *gin.Context) {
	var req models.EngineMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	index, err := sc.sessionService.EngineMove(c.Request.Context(), &req)
	if err != nil {
		response.ErrorFromDomain(c, err)
		return
	}
	response.SuccessResponse(c, http.StatusOK, models.EngineMoveResponse{Index: index})
}
