package room

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/pkg/proto"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Broadcast sends a message to every subscriber. It runs on the room goroutine.
func (r *Room) Broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	ctx, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("message.type", message.Type),
		attribute.Int("room.subscribers", len(r.players)),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	for id, p := range r.players {
		if err := p.Send(websocket.TextMessage, data); err != nil {
			slog.WarnContext(ctx, "error writing message to player, dropping subscriber", "player.id", p.ID, "room.id", r.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing message to player")
			delete(r.players, id)
			p.Conn.Close()
		}
	}
	r.subscribers.Store(int32(len(r.players)))
}

// send writes one message to p. Failures are logged; the read pump notices the broken
// connection and unsubscribes.
func (r *Room) send(ctx context.Context, p *player.Player, message *proto.ServerToClientMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		return
	}
	if err := p.Send(websocket.TextMessage, data); err != nil {
		slog.WarnContext(ctx, "error writing message to player", "player.id", p.ID, "room.id", r.ID, "error", err)
	}
}

// ping keeps idle websocket connections alive.
func (r *Room) ping(ctx context.Context) {
	for id, p := range r.players {
		if err := p.Send(websocket.PingMessage, nil); err != nil {
			slog.WarnContext(ctx, "Failed to send ping to player, assuming disconnect", "player.id", p.ID, "room.id", r.ID, "error", err)
			delete(r.players, id)
			p.Conn.Close()
		}
	}
	r.subscribers.Store(int32(len(r.players)))
}

// ReadPump feeds frames from p's connection into the room until the connection fails.
func (r *Room) ReadPump(p *player.Player) {
	ctx, span := tracer.Start(context.Background(), "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	defer func() {
		p.Conn.Close()
		if err := r.unsubscribe(context.Background(), p); err != nil && !errors.Is(err, ErrRoomClosed) {
			slog.WarnContext(ctx, "Failed to unsubscribe player", "player.id", p.ID, "room.id", r.ID, "error", err)
		}
		slog.InfoContext(ctx, "Player disconnected", "player.id", p.ID, "room.id", r.ID)
	}()

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Player connection error", "player.id", p.ID, "room.id", r.ID, "error", err)
				span.RecordError(err)
				span.SetStatus(codes.Error, "Player connection error")
			}
			return
		}
		r.HandleMessage(ctx, p, msg)
	}
}
