package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/player"
	"ctchen222/tictactoe/internal/repository"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	heartbeatInterval = 10 * time.Second

	// DefaultComputerDelay is the pause before the computer answers a human move.
	DefaultComputerDelay = 400 * time.Millisecond
)

var (
	tracer = otel.Tracer("room")
	meter  = otel.Meter("room")
)

var ErrRoomClosed = errors.New("room closed")

// MoveCalculator defines an interface for an agent that can calculate a game move.
type MoveCalculator interface {
	CalculateNextMove(ctx context.Context, board game.Board, mark game.PlayerMark, difficulty game.Difficulty) (int, error)
}

// GameRecorder stores finished games.
type GameRecorder interface {
	RecordGame(ctx context.Context, record *models.GameRecord) error
}

// Options wires a room to its collaborators. Sessions and History may be nil.
type Options struct {
	Calculator    MoveCalculator
	Sessions      repository.SessionRepository
	History       GameRecorder
	ComputerDelay time.Duration
}

// Settings changes the mode or the difficulty. Nil or empty fields are left unchanged.
type Settings struct {
	VsComputer *bool
	Difficulty game.Difficulty
}

// Room owns one session. All reads and writes of the session happen on the room's run
// goroutine; callers talk to it through commands.
type Room struct {
	ID string

	session  *game.Session
	opts     Options
	players  map[string]*player.Player
	commands chan *command

	computerPending bool

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	lastActivity atomic.Int64
	subscribers  atomic.Int32

	moveCounter     metric.Int64Counter
	finishedCounter metric.Int64Counter
}

// NewRoom creates a room for session. A nil session starts a fresh one.
func NewRoom(id string, session *game.Session, opts Options) *Room {
	if session == nil {
		session = game.NewSession()
	}
	if opts.ComputerDelay < 0 {
		opts.ComputerDelay = 0
	}

	moveCounter, err := meter.Int64Counter("tictactoe.moves",
		metric.WithDescription("Moves applied to sessions"),
	)
	if err != nil {
		slog.Warn("failed to create moves counter", "error", err)
	}
	finishedCounter, err := meter.Int64Counter("tictactoe.games.finished",
		metric.WithDescription("Games that ended in a win or a draw"),
	)
	if err != nil {
		slog.Warn("failed to create finished games counter", "error", err)
	}

	r := &Room{
		ID:              id,
		session:         session,
		opts:            opts,
		players:         make(map[string]*player.Player),
		commands:        make(chan *command),
		quit:            make(chan struct{}),
		done:            make(chan struct{}),
		moveCounter:     moveCounter,
		finishedCounter: finishedCounter,
	}
	r.touch()
	return r
}

// Start launches the room's run loop.
func (r *Room) Start() {
	go r.run()
}

// run is the main loop for the room.
func (r *Room) run() {
	ctx := context.Background()
	computerTimer := time.NewTimer(time.Hour)
	computerTimer.Stop()
	pingTicker := time.NewTicker(heartbeatInterval)

	defer func() {
		computerTimer.Stop()
		pingTicker.Stop()
		r.shutdown(ctx)
		close(r.done)
	}()

	// A session rehydrated mid-game may owe the computer's reply.
	r.scheduleComputer(computerTimer)

	for {
		select {
		case <-r.quit:
			slog.InfoContext(ctx, "Room run goroutine stopping.", "room.id", r.ID)
			return

		case cmd := <-r.commands:
			r.touch()
			res := r.handleCommand(cmd, computerTimer)
			if cmd.reply != nil {
				cmd.reply <- res
			}

		case <-computerTimer.C:
			if !r.computerPending {
				continue
			}
			r.computerPending = false
			r.playComputer(ctx, computerTimer)

		case <-pingTicker.C:
			r.ping(ctx)
		}
	}
}

// scheduleComputer arms the pacing timer when the computer owes a move.
func (r *Room) scheduleComputer(t *time.Timer) {
	if r.opts.Calculator == nil || !r.session.ComputerToMove() {
		return
	}
	t.Reset(r.opts.ComputerDelay)
	r.computerPending = true
}

// cancelComputer drops a scheduled computer move.
func (r *Room) cancelComputer(t *time.Timer) {
	t.Stop()
	r.computerPending = false
}

func (r *Room) touch() {
	r.lastActivity.Store(time.Now().UnixNano())
}
