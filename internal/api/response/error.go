package response

import (
	"ctchen222/tic-tac-toe-history/internal/auth"
	"ctchen222/tic-tac-toe-history/internal/game"
	"ctchen222/tic-tac-toe-history/internal/repository"
	"ctchen222/tic-tac-toe-history/internal/session"
	"errors"
	"net/http"
)

// StatusFor maps an error returned by the game layer to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrOutOfBounds),
		errors.Is(err, game.ErrOccupied),
		errors.Is(err, game.ErrGameOver),
		errors.Is(err, game.ErrStepOutOfRange),
		errors.Is(err, game.ErrUnknownIntent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
