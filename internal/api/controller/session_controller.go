package controller

import (
	"ctchen222/tic-tac-toe-history/internal/api/models"
	"ctchen222/tic-tac-toe-history/internal/api/response"
	"ctchen222/tic-tac-toe-history/internal/api/service"
	"ctchen222/tic-tac-toe-history/internal/session"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionController handles session-related HTTP requests.
type SessionController struct {
	sessionService service.SessionService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

// Create starts a new game.
func (sc *SessionController) Create(c *gin.Context) {
	created, err := sc.sessionService.Create(c.Request.Context())
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to create session", "error", err)
		response.ErrorResponse(c, response.StatusFor(err), err.Error())
		return
	}

	response.CreatedResponse(c, created)
}

// Get returns the current view of a session.
func (sc *SessionController) Get(c *gin.Context) {
	found, err := sc.sessionService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.ErrorResponse(c, response.StatusFor(err), err.Error())
		return
	}

	response.SuccessResponse(c, found)
}

// SubmitIntent applies an intent to a session. A rejected intent answers 422
// with the unchanged view.
func (sc *SessionController) SubmitIntent(c *gin.Context) {
	var req models.IntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	id := c.Param("id")
	view, err := sc.sessionService.Submit(c.Request.Context(), id, req.Intent())
	if err != nil {
		code := response.StatusFor(err)
		if code == http.StatusUnprocessableEntity {
			response.FailureResponse(c, code, models.RejectedResponse{
				Message: session.RejectionReason(err),
				View:    view,
			})
			return
		}
		response.ErrorResponse(c, code, err.Error())
		return
	}

	response.SuccessResponse(c, models.SessionResponse{SessionID: id, View: view})
}

// End stops a session and discards its game.
func (sc *SessionController) End(c *gin.Context) {
	id := c.Param("id")
	if err := sc.sessionService.End(c.Request.Context(), id); err != nil {
		response.ErrorResponse(c, response.StatusFor(err), err.Error())
		return
	}

	response.SuccessResponse(c, gin.H{"session_id": id, "ended": true})
}

// RequireSessionToken aborts requests whose bearer token was not issued for
// the session named in the path.
func (sc *SessionController) RequireSessionToken(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		response.ErrorResponse(c, http.StatusUnauthorized, "missing bearer token")
		c.Abort()
		return
	}
	if err := sc.sessionService.Authorize(token, c.Param("id")); err != nil {
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		c.Abort()
		return
	}
	c.Next()
}
