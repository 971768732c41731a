package room

import (
	"context"
	"time"

	"ctchen222/tictactoe/internal/player"
)

// Join subscribes p to state frames and starts reading its frames.
func (r *Room) Join(ctx context.Context, p *player.Player) error {
	if _, err := r.submit(ctx, &command{kind: cmdSubscribe, player: p}); err != nil {
		return err
	}
	go r.ReadPump(p)
	return nil
}

func (r *Room) unsubscribe(ctx context.Context, p *player.Player) error {
	_, err := r.submit(ctx, &command{kind: cmdUnsubscribe, player: p})
	return err
}

// Close stops the room. It is safe to call more than once.
func (r *Room) Close() {
	r.closeOnce.Do(func() { close(r.quit) })
}

// Closing is closed as soon as Close is called. The room may still be finishing a command.
func (r *Room) Closing() <-chan struct{} {
	return r.quit
}

// Done is closed once the run loop has exited.
func (r *Room) Done() <-chan struct{} {
	return r.done
}

// LastActivity is the time of the last command or computer move.
func (r *Room) LastActivity() time.Time {
	return time.Unix(0, r.lastActivity.Load())
}

// Subscribers is the number of attached websocket clients.
func (r *Room) Subscribers() int {
	return int(r.subscribers.Load())
}
