package room

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// afterMove records metrics and history for an applied move, then publishes the new state.
func (r *Room) afterMove(ctx context.Context, state game.State, by string) {
	if r.moveCounter != nil {
		r.moveCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("player.kind", by)))
	}
	if state.Terminal() {
		if r.finishedCounter != nil {
			r.finishedCounter.Add(ctx, 1, metric.WithAttributes(
				attribute.String("game.status", string(state.Status)),
				attribute.String("game.winner", string(state.Winner)),
				attribute.Bool("session.vs_computer", r.session.VsComputer),
			))
		}
		slog.InfoContext(ctx, "Game finished", "room.id", r.ID, "game.status", state.Status, "game.winner", state.Winner)
		r.recordGame(ctx, state)
	}
	r.commit(ctx)
}

// commit mirrors the session and pushes it to every subscriber.
func (r *Room) commit(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	snap := r.session.Snapshot()

	if r.opts.Sessions != nil {
		if err := r.opts.Sessions.Save(ctx, r.ID, snap); err != nil {
			slog.ErrorContext(ctx, "failed to mirror session", "room.id", r.ID, "error", err)
			trace.SpanFromContext(ctx).RecordError(err)
		}
	}
	r.Broadcast(ctx, proto.StateMessage(snap))
}

func (r *Room) recordGame(ctx context.Context, state game.State) {
	if r.opts.History == nil {
		return
	}
	record := &models.GameRecord{
		SessionID:  r.ID,
		Status:     string(state.Status),
		Winner:     string(state.Winner),
		VsComputer: r.session.VsComputer,
		Difficulty: string(r.session.Difficulty),
		Moves:      append(models.MoveList{}, r.session.Game.Moves...),
		FinishedAt: time.Now().UTC(),
	}
	if err := r.opts.History.RecordGame(context.WithoutCancel(ctx), record); err != nil {
		slog.ErrorContext(ctx, "failed to record finished game", "room.id", r.ID, "error", err)
		trace.SpanFromContext(ctx).RecordError(err)
	}
}

// playComputer asks the calculator for O's reply and applies it.
func (r *Room) playComputer(ctx context.Context, computerTimer *time.Timer) {
	ctx, span := tracer.Start(ctx, "room.playComputer", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("session.difficulty", string(r.session.Difficulty)),
	))
	defer span.End()

	if !r.session.ComputerToMove() {
		return
	}
	r.touch()

	index, err := r.opts.Calculator.CalculateNextMove(ctx, r.session.Game.Board, game.ComputerMark, r.session.Difficulty)
	if err != nil {
		slog.ErrorContext(ctx, "computer could not move", "room.id", r.ID, "board", r.session.Game.Board.String(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer could not move")
		return
	}

	state, err := r.session.ApplyMove(index, game.ComputerMark)
	if err != nil {
		slog.ErrorContext(ctx, "computer chose an illegal move", "room.id", r.ID, "move.index", index, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer chose an illegal move")
		return
	}
	span.SetAttributes(attribute.Int("move.index", index))

	r.afterMove(ctx, state, "computer")
	r.scheduleComputer(computerTimer)
}

// shutdown closes every subscriber connection. It runs once, as the run loop exits.
func (r *Room) shutdown(ctx context.Context) {
	for id, p := range r.players {
		if err := p.Conn.Close(); err != nil {
			slog.DebugContext(ctx, "error closing player connection", "player.id", p.ID, "error", err)
		}
		delete(r.players, id)
	}
	r.subscribers.Store(0)
}
