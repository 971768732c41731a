package player

import "sync"

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Player is one client attached to a session over a websocket.
type Player struct {
	ID   string
	Conn Connection

	writeMu sync.Mutex
}

func NewPlayer(id string, conn Connection) *Player {
	return &Player{
		ID:   id,
		Conn: conn,
	}
}

// Send writes one frame. Concurrent writers on a websocket are not allowed, so every
// write to the connection goes through here.
func (p *Player) Send(messageType int, data []byte) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.Conn.WriteMessage(messageType, data)
}
