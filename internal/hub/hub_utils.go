package hub

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/room"
)

// startRoom registers and starts a room. Two requests resuming the same session race
// here; the first room wins and the other session copy is discarded.
func (h *Hub) startRoom(id string, session *game.Session) *room.Room {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.rooms[id]; ok {
		select {
		case <-existing.Done():
		default:
			return existing
		}
	}

	r := room.NewRoom(id, session, room.Options{
		Calculator:    h.cfg.Calculator,
		Sessions:      h.cfg.Sessions,
		History:       h.cfg.History,
		ComputerDelay: h.cfg.ComputerDelay,
	})
	h.rooms[id] = r
	r.Start()

	go func() {
		<-r.Done()
		h.forget(r)
	}()
	return r
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

// lockID holds the per-session lock until the returned func is called.
func (h *Hub) lockID(id string) func() {
	h.mu.Lock()
	l, ok := h.ids[id]
	if !ok {
		l = &idLock{}
		h.ids[id] = l
	}
	l.refs++
	h.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		h.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(h.ids, id)
		}
		h.mu.Unlock()
	}
}

// running returns the registered room for id unless it is shutting down.
func (h *Hub) running(id string) (*room.Room, bool) {
	h.mu.Lock()
	r, ok := h.rooms[id]
	h.mu.Unlock()
	if !ok {
		return nil, false
	}
	select {
	case <-r.Closing():
		return nil, false
	default:
		return r, true
	}
}

// forget drops r from the room map if it is still the registered room for its ID.
func (h *Hub) forget(r *room.Room) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[r.ID] == r {
		delete(h.rooms, r.ID)
	}
}

// reapIdle closes rooms without subscribers that have been idle past the timeout. Their
// sessions stay in the mirror. A room stays registered until its run loop exits.
func (h *Hub) reapIdle(ctx context.Context, now time.Time) int {
	if h.cfg.IdleTimeout <= 0 {
		return 0
	}

	h.mu.Lock()
	var idle []*room.Room
	for _, r := range h.rooms {
		select {
		case <-r.Closing():
			continue
		default:
		}
		if r.Subscribers() == 0 && now.Sub(r.LastActivity()) > h.cfg.IdleTimeout {
			idle = append(idle, r)
		}
	}
	h.mu.Unlock()

	for _, r := range idle {
		slog.InfoContext(ctx, "Evicting idle room", "room.id", r.ID, "room.last_activity", r.LastActivity())
		r.Close()
	}
	return len(idle)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	rooms := make([]*room.Room, 0, len(h.rooms))
	for id, r := range h.rooms {
		rooms = append(rooms, r)
		delete(h.rooms, id)
	}
	h.mu.Unlock()

	for _, r := range rooms {
		r.Close()
		<-r.Done()
	}
}

// Len is the number of live rooms.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms)
}
