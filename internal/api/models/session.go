package models

import "ctchen222/tic-tac-toe-history/internal/game"

// IntentRequest is the body of POST /api/sessions/:id/intents.
type IntentRequest struct {
	Type  string `json:"type" binding:"required,oneof=place jump toggle_sort"`
	Index *int   `json:"index" binding:"required_if=Type place"`
	Step  *int   `json:"step" binding:"required_if=Type jump"`
}

// Intent converts the request into a game intent.
func (r IntentRequest) Intent() game.Intent {
	switch game.IntentKind(r.Type) {
	case game.IntentPlaceMark:
		return game.PlaceMarkIntent(*r.Index)
	case game.IntentJumpTo:
		return game.JumpToIntent(*r.Step)
	}
	return game.Intent{Kind: game.IntentKind(r.Type)}
}

// CreateSessionResponse is returned when a new game is started.
type CreateSessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	View      game.View `json:"view"`
}

// SessionResponse carries the current view of a session.
type SessionResponse struct {
	SessionID string    `json:"session_id"`
	View      game.View `json:"view"`
}

// RejectedResponse is returned when an intent is refused. View is the
// unchanged state.
type RejectedResponse struct {
	Message string    `json:"message"`
	View    game.View `json:"view"`
}
