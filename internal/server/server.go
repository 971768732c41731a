package server

import (
	"log/slog"
	"net/http"

	"ctchen222/tictactoe/internal/api/controller"
	"ctchen222/tictactoe/internal/api/middleware"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/player"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	engine   *gin.Engine
	sessions service.SessionService
	upgrader websocket.Upgrader
}

func NewServer(sessions service.SessionService, logger *slog.Logger) *Server {
	s := &Server{
		engine:   gin.New(),
		sessions: sessions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	s.engine.Use(middleware.Logging(logger), middleware.Recovery(logger))
	s.registerHandlers(controller.NewSessionController(sessions))
	return s
}

// Engine returns the HTTP handler.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerHandlers(sc *controller.SessionController) {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.registerUI()

	api := s.engine.Group("/api")
	api.POST("/sessions", sc.Create)
	api.POST("/engine/move", sc.EngineMove)

	session := api.Group("/sessions/:id", middleware.SessionAuth(s.sessions))
	session.GET("", sc.Get)
	session.DELETE("", sc.Delete)
	session.POST("/moves", sc.Move)
	session.POST("/reset", sc.Reset)
	session.PUT("/settings", sc.UpdateSettings)
	session.GET("/games", sc.History)
	session.GET("/ws", s.handleWebSocket)
}

// handleWebSocket upgrades the connection and subscribes it to the session's room. The
// token was checked by the auth middleware before the upgrade.
func (s *Server) handleWebSocket(c *gin.Context) {
	sessionID := c.Param("id")
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.Path),
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "session.id", sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	p := player.NewPlayer(uuid.NewString(), conn)
	span.SetAttributes(attribute.String("player.id", p.ID))

	if err := s.sessions.Join(ctx, sessionID, p); err != nil {
		slog.WarnContext(ctx, "Failed to join session", "session.id", sessionID, "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to join session")
		_ = p.Send(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error()))
		conn.Close()
		return
	}
	slog.InfoContext(ctx, "Player connected", "session.id", sessionID, "player.id", p.ID)
}
