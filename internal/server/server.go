package server

import (
	"context"
	"ctchen222/tic-tac-toe-history/internal/api/controller"
	"ctchen222/tic-tac-toe-history/internal/api/response"
	"ctchen222/tic-tac-toe-history/internal/api/service"
	"ctchen222/tic-tac-toe-history/internal/hub"
	"ctchen222/tic-tac-toe-history/internal/hub/types"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// registrationTimeout bounds how long a new websocket waits to be attached to its session.
const registrationTimeout = 10 * time.Second

// Server serves the session API and the observer websocket.
type Server struct {
	hub               *hub.Hub
	sessionService    service.SessionService
	sessionController *controller.SessionController
	upgrader          websocket.Upgrader
}

// NewServer creates a server backed by the hub and the session service.
func NewServer(h *hub.Hub, sessionService service.SessionService) *Server {
	return &Server{
		hub:               h,
		sessionService:    sessionService,
		sessionController: controller.NewSessionController(sessionService),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Engine builds the gin router with every route registered.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok"})
	})
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	{
		api.POST("/sessions", s.sessionController.Create)

		owned := api.Group("/sessions/:id", s.sessionController.RequireSessionToken)
		owned.GET("", s.sessionController.Get)
		owned.DELETE("", s.sessionController.End)
		owned.POST("/intents", s.sessionController.SubmitIntent)
	}
	return r
}

// handleWebSocket checks the session token, upgrades the connection and
// passes a registration request to the hub.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.ErrorResponse(c, http.StatusBadRequest, "session_id is required")
		return
	}
	span.SetAttributes(attribute.String("session.id", sessionID))

	if err := s.sessionService.Authorize(c.Query("token"), sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Unauthorized websocket request")
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	observerID := uuid.New().String()
	span.SetAttributes(attribute.String("observer.id", observerID))

	regCtx, cancel := context.WithTimeout(ctx, registrationTimeout)
	defer cancel()

	result := make(chan error, 1)
	req := &types.RegistrationRequest{
		Conn:       conn,
		SessionID:  sessionID,
		ObserverID: observerID,
		Ctx:        regCtx,
		Result:     result,
	}
	select {
	case s.hub.Register() <- req:
	case <-regCtx.Done():
		conn.Close()
		return
	}
	if err := <-result; err != nil {
		slog.WarnContext(ctx, "Observer registration failed", "session.id", sessionID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Observer registration failed")
	}
}
