package types

import (
	"context"
	"ctchen222/tic-tac-toe-history/internal/session"
)

// RegistrationRequest asks the hub to attach a connection to a session.
type RegistrationRequest struct {
	Conn       session.Connection
	SessionID  string
	ObserverID string
	// Ctx bounds the registration; attaching gives up when it is done.
	Ctx context.Context
	// Result receives nil once the observer is attached, or the reason it was
	// not. It must be buffered.
	Result chan error
}
