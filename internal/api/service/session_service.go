package service

import (
	"context"
	"ctchen222/tic-tac-toe-history/internal/api/models"
	"ctchen222/tic-tac-toe-history/internal/auth"
	"ctchen222/tic-tac-toe-history/internal/game"
	"ctchen222/tic-tac-toe-history/internal/session"
	"fmt"
)

// Sessions is the part of the hub the service needs.
type Sessions interface {
	Create(ctx context.Context) (*session.Session, error)
	View(ctx context.Context, id string) (game.View, error)
	Submit(ctx context.Context, id string, intent game.Intent) (game.View, error)
	End(ctx context.Context, id string) error
}

// SessionService defines the game operations exposed over HTTP.
type SessionService interface {
	Create(ctx context.Context) (*models.CreateSessionResponse, error)
	Get(ctx context.Context, id string) (*models.SessionResponse, error)
	Submit(ctx context.Context, id string, intent game.Intent) (game.View, error)
	End(ctx context.Context, id string) error
	Authorize(token, id string) error
}

type sessionService struct {
	sessions Sessions
	tokens   *auth.TokenIssuer
}

// NewSessionService creates a new SessionService.
func NewSessionService(sessions Sessions, tokens *auth.TokenIssuer) SessionService {
	return &sessionService{sessions: sessions, tokens: tokens}
}

// Create starts a game and issues the token that grants access to it.
func (s *sessionService) Create(ctx context.Context) (*models.CreateSessionResponse, error) {
	sess, err := s.sessions.Create(ctx)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.Issue(sess.ID)
	if err != nil {
		return nil, err
	}
	view, err := sess.View(ctx)
	if err != nil {
		return nil, err
	}
	return &models.CreateSessionResponse{SessionID: sess.ID, Token: token, View: view}, nil
}

// Get returns the current view of a session.
func (s *sessionService) Get(ctx context.Context, id string) (*models.SessionResponse, error) {
	view, err := s.sessions.View(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.SessionResponse{SessionID: id, View: view}, nil
}

// Submit applies an intent to a session.
func (s *sessionService) Submit(ctx context.Context, id string, intent game.Intent) (game.View, error) {
	return s.sessions.Submit(ctx, id, intent)
}

// End stops a session and discards its game.
func (s *sessionService) End(ctx context.Context, id string) error {
	return s.sessions.End(ctx, id)
}

// Authorize checks that token was issued for session id.
func (s *sessionService) Authorize(token, id string) error {
	subject, err := s.tokens.Verify(token)
	if err != nil {
		return err
	}
	if subject != id {
		return fmt.Errorf("%w: issued for another session", auth.ErrInvalidToken)
	}
	return nil
}
