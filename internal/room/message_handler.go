package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/internal/validator"
	"ctchen222/tictactoe/pkg/proto"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type commandKind int

const (
	cmdMove commandKind = iota
	cmdReset
	cmdSettings
	cmdSnapshot
	cmdSubscribe
	cmdUnsubscribe
)

func (k commandKind) String() string {
	switch k {
	case cmdMove:
		return "move"
	case cmdReset:
		return "reset"
	case cmdSettings:
		return "settings"
	case cmdSnapshot:
		return "snapshot"
	case cmdSubscribe:
		return "subscribe"
	case cmdUnsubscribe:
		return "unsubscribe"
	}
	return "unknown"
}

type command struct {
	ctx      context.Context
	kind     commandKind
	index    int
	mark     game.PlayerMark
	settings Settings
	player   *player.Player
	reply    chan result
}

type result struct {
	snap game.Snapshot
	err  error
}

// Move places mark on index. An empty mark plays for the human whose turn it is.
func (r *Room) Move(ctx context.Context, index int, mark game.PlayerMark) (game.Snapshot, error) {
	return r.submit(ctx, &command{kind: cmdMove, index: index, mark: mark})
}

// Reset starts a new game and keeps the tally.
func (r *Room) Reset(ctx context.Context) (game.Snapshot, error) {
	return r.submit(ctx, &command{kind: cmdReset})
}

// UpdateSettings applies s and restarts the game when anything was set.
func (r *Room) UpdateSettings(ctx context.Context, s Settings) (game.Snapshot, error) {
	return r.submit(ctx, &command{kind: cmdSettings, settings: s})
}

// Snapshot returns the current session state.
func (r *Room) Snapshot(ctx context.Context) (game.Snapshot, error) {
	return r.submit(ctx, &command{kind: cmdSnapshot})
}

func (r *Room) submit(ctx context.Context, cmd *command) (game.Snapshot, error) {
	cmd.ctx = ctx
	cmd.reply = make(chan result, 1)

	select {
	case r.commands <- cmd:
	case <-r.done:
		return game.Snapshot{}, ErrRoomClosed
	case <-ctx.Done():
		return game.Snapshot{}, ctx.Err()
	}

	select {
	case res := <-cmd.reply:
		return res.snap, res.err
	case <-r.done:
		return game.Snapshot{}, ErrRoomClosed
	case <-ctx.Done():
		return game.Snapshot{}, ctx.Err()
	}
}

// handleCommand runs on the room goroutine.
func (r *Room) handleCommand(cmd *command, computerTimer *time.Timer) result {
	ctx, span := tracer.Start(cmd.ctx, "room.handleCommand", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("command.kind", cmd.kind.String()),
	))
	defer span.End()

	var err error
	switch cmd.kind {
	case cmdMove:
		err = r.handleMove(ctx, cmd, computerTimer)
	case cmdReset:
		r.cancelComputer(computerTimer)
		r.session.Reset()
		slog.InfoContext(ctx, "Session reset", "room.id", r.ID, "scores.x", r.session.Scores.X, "scores.o", r.session.Scores.O)
		r.commit(ctx)
	case cmdSettings:
		err = r.handleSettings(ctx, cmd.settings, computerTimer)
	case cmdSubscribe:
		r.players[cmd.player.ID] = cmd.player
		r.subscribers.Store(int32(len(r.players)))
		r.send(ctx, cmd.player, proto.StateMessage(r.session.Snapshot()))
	case cmdUnsubscribe:
		delete(r.players, cmd.player.ID)
		r.subscribers.Store(int32(len(r.players)))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Command rejected")
	}
	return result{snap: r.session.Snapshot(), err: err}
}

// handleMove processes a human move.
func (r *Room) handleMove(ctx context.Context, cmd *command, computerTimer *time.Timer) error {
	mark := cmd.mark
	if mark == game.None {
		mark = r.session.HumanMark()
	}
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("move.index", cmd.index),
		attribute.String("move.mark", string(mark)),
	)

	if r.session.VsComputer && mark == game.ComputerMark {
		slog.WarnContext(ctx, "human tried to play the computer's mark", "room.id", r.ID, "move.index", cmd.index)
		return fmt.Errorf("%w: %s is played by the computer", game.ErrNotYourTurn, mark)
	}

	state, err := r.session.ApplyMove(cmd.index, mark)
	if err != nil {
		slog.WarnContext(ctx, "invalid move", "room.id", r.ID, "move.index", cmd.index, "move.mark", mark, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		return err
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	r.afterMove(ctx, state, "human")
	r.scheduleComputer(computerTimer)
	return nil
}

func (r *Room) handleSettings(ctx context.Context, s Settings, computerTimer *time.Timer) error {
	if s.Difficulty != "" {
		if _, err := game.ParseDifficulty(string(s.Difficulty)); err != nil {
			return err
		}
	}
	if s.VsComputer == nil && s.Difficulty == "" {
		return nil
	}

	r.cancelComputer(computerTimer)
	if s.VsComputer != nil {
		r.session.SetVsComputer(*s.VsComputer)
	}
	if s.Difficulty != "" {
		d, _ := game.ParseDifficulty(string(s.Difficulty))
		if err := r.session.SetDifficulty(d); err != nil {
			return err
		}
	}

	slog.InfoContext(ctx, "Settings changed, game restarted", "room.id", r.ID,
		"session.vs_computer", r.session.VsComputer, "session.difficulty", r.session.Difficulty)
	r.commit(ctx)
	return nil
}

// HandleMessage decodes a websocket frame from p and runs it against the room. Rejected
// frames are answered with an error frame to p only.
func (r *Room) HandleMessage(ctx context.Context, p *player.Player, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		slog.WarnContext(ctx, "error unmarshalling message", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error unmarshalling message")
		r.send(ctx, p, proto.ErrorMessage("malformed message"))
		return
	}

	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", p.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		r.send(ctx, p, proto.ErrorMessage(err.Error()))
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	var (
		snap game.Snapshot
		err  error
	)
	switch message.Type {
	case proto.TypeMove:
		mark := game.None
		if message.Mark != "" {
			mark, _ = game.ParseMark(string(message.Mark))
		}
		_, err = r.Move(ctx, *message.Index, mark)
	case proto.TypeReset:
		_, err = r.Reset(ctx)
	case proto.TypeSettings:
		difficulty := game.Difficulty("")
		if message.Difficulty != "" {
			difficulty, _ = game.ParseDifficulty(string(message.Difficulty))
		}
		_, err = r.UpdateSettings(ctx, Settings{VsComputer: message.VsComputer, Difficulty: difficulty})
	case proto.TypeSync:
		snap, err = r.Snapshot(ctx)
		if err == nil {
			r.send(ctx, p, proto.StateMessage(snap))
		}
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Message rejected")
		r.send(ctx, p, proto.ErrorMessage(err.Error()))
	}
}
