package repository

import (
	"context"
	"sync"
	"time"

	"ctchen222/tictactoe/internal/game"
)

type memoryEntry struct {
	snap      game.Snapshot
	expiresAt time.Time
}

type memorySessionRepository struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemorySessionRepository keeps sessions in process memory with the same TTL rules as
// the Redis implementation.
func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return newMemorySessionRepository(ttl, time.Now)
}

func newMemorySessionRepository(ttl time.Duration, now func() time.Time) *memorySessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      now,
	}
}

func (r *memorySessionRepository) Save(ctx context.Context, id string, snap game.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry := memoryEntry{snap: cloneSnapshot(snap)}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.sessions[id] = entry
	return nil
}

func (r *memorySessionRepository) Load(ctx context.Context, id string) (game.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.sessions[id]
	if !ok {
		return game.Snapshot{}, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && !r.now().Before(entry.expiresAt) {
		delete(r.sessions, id)
		return game.Snapshot{}, ErrSessionNotFound
	}
	return cloneSnapshot(entry.snap), nil
}

func (r *memorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func cloneSnapshot(snap game.Snapshot) game.Snapshot {
	snap.Moves = append([]int{}, snap.Moves...)
	if snap.WinningLine != nil {
		snap.WinningLine = append([]int(nil), snap.WinningLine...)
	}
	return snap
}
