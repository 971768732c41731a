package bot

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/tictactoe/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("bot")
	meter  = otel.Meter("bot")
)

// BotMoveCalculator implements the room.MoveCalculator interface on top of a Selector,
// adding a span and search metrics to every decision.
type BotMoveCalculator struct {
	selector    *Selector
	searchNodes metric.Int64Histogram
	decisions   metric.Int64Counter
}

// NewBotMoveCalculator creates a calculator. A nil selector uses the default random source.
func NewBotMoveCalculator(selector *Selector) *BotMoveCalculator {
	if selector == nil {
		selector = NewSelector(nil)
	}

	searchNodes, err := meter.Int64Histogram("tictactoe.search.nodes",
		metric.WithDescription("Positions visited by one minimax search"),
	)
	if err != nil {
		slog.Warn("failed to create search nodes histogram", "error", err)
	}
	decisions, err := meter.Int64Counter("tictactoe.bot.decisions",
		metric.WithDescription("Moves chosen by the computer"),
	)
	if err != nil {
		slog.Warn("failed to create bot decisions counter", "error", err)
	}

	return &BotMoveCalculator{
		selector:    selector,
		searchNodes: searchNodes,
		decisions:   decisions,
	}
}

// CalculateNextMove returns the cell mark should play on board under difficulty.
func (c *BotMoveCalculator) CalculateNextMove(ctx context.Context, board game.Board, mark game.PlayerMark, difficulty game.Difficulty) (int, error) {
	ctx, span := tracer.Start(ctx, "bot.CalculateNextMove", trace.WithAttributes(
		attribute.String("bot.mark", string(mark)),
		attribute.String("bot.difficulty", string(difficulty)),
		attribute.String("game.board", board.String()),
	))
	defer span.End()

	start := time.Now()
	decision, err := c.selector.Decide(board, mark, difficulty)
	if err != nil {
		slog.ErrorContext(ctx, "computer could not select a move", "board", board.String(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Could not select a move")
		return -1, err
	}
	index := decision.Index

	attrs := metric.WithAttributes(
		attribute.String("bot.difficulty", string(difficulty)),
		attribute.Bool("bot.random", decision.Random),
	)
	if c.decisions != nil {
		c.decisions.Add(ctx, 1, attrs)
	}
	if c.searchNodes != nil && !decision.Random {
		c.searchNodes.Record(ctx, int64(decision.Nodes), attrs)
	}

	span.SetAttributes(
		attribute.Int("move.index", index),
		attribute.Bool("bot.random", decision.Random),
		attribute.Int("bot.search_nodes", decision.Nodes),
		attribute.Int64("bot.duration_us", time.Since(start).Microseconds()),
	)
	slog.DebugContext(ctx, "computer selected a move", "mark", mark, "difficulty", difficulty, "move.index", index)
	return index, nil
}
