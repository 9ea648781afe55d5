package proto

import (
	"ctchen222/tic-tac-toe-history/internal/game"
)

// Server message types.
const (
	TypeState    = "state"
	TypeRejected = "rejected"
	TypeError    = "error"
)

// ClientToServerMessage represents an intent sent by a client.
type ClientToServerMessage struct {
	Type  string `json:"type" validate:"required,oneof=place jump toggle_sort"`
	Index *int   `json:"index,omitempty" validate:"required_if=Type place"`
	Step  *int   `json:"step,omitempty" validate:"required_if=Type jump"`
}

// Intent converts the message to a game intent. The message must have been validated.
func (m *ClientToServerMessage) Intent() game.Intent {
	switch game.IntentKind(m.Type) {
	case game.IntentPlaceMark:
		return game.PlaceMarkIntent(*m.Index)
	case game.IntentJumpTo:
		return game.JumpToIntent(*m.Step)
	}
	return game.Intent{Kind: game.IntentKind(m.Type)}
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type      string     `json:"type" validate:"required"`
	SessionID string     `json:"session_id,omitempty"`
	Reason    string     `json:"reason,omitempty"`
	View      *game.View `json:"view,omitempty"`
}

// StateMessage wraps a view for broadcast.
func StateMessage(sessionID string, view game.View) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeState, SessionID: sessionID, View: &view}
}

// RejectedMessage tells the submitter why an intent was refused.
func RejectedMessage(sessionID, reason string) *ServerToClientMessage {
	return &ServerToClientMessage{Type: TypeRejected, SessionID: sessionID, Reason: reason}
}
