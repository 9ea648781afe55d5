package session

import "time"

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Observer is a client watching a session. It receives every new view and
// may submit intents of its own.
type Observer struct {
	ID   string
	Conn Connection
}

// NewObserver creates an observer for the given connection.
func NewObserver(id string, conn Connection) *Observer {
	return &Observer{ID: id, Conn: conn}
}
