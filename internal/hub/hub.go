package hub

import (
	"context"
	"ctchen222/tic-tac-toe-history/internal/game"
	"ctchen222/tic-tac-toe-history/internal/hub/types"
	"ctchen222/tic-tac-toe-history/internal/repository"
	"ctchen222/tic-tac-toe-history/internal/session"
	"ctchen222/tic-tac-toe-history/internal/telemetry"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

// Hub owns the sessions running in this process. A session is started on
// creation, or resumed from the repository the first time it is used after
// its loop has stopped.
type Hub struct {
	repo    repository.SessionRepository
	metrics *telemetry.Metrics
	idleTTL time.Duration

	mu       sync.Mutex
	sessions map[string]*session.Session

	// ctx bounds every session started by the hub; cancel is called when Run returns.
	ctx    context.Context
	cancel context.CancelFunc

	register chan *types.RegistrationRequest
	stopped  chan *session.Session
}

// NewHub creates a new hub.
func NewHub(repo repository.SessionRepository, metrics *telemetry.Metrics, idleTTL time.Duration) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		repo:     repo,
		metrics:  metrics,
		idleTTL:  idleTTL,
		sessions: make(map[string]*session.Session),
		ctx:      ctx,
		cancel:   cancel,
		register: make(chan *types.RegistrationRequest),
		stopped:  make(chan *session.Session),
	}
}

// Run processes registrations and session exits until ctx is cancelled.
// Sessions started by the hub stop with it.
func (h *Hub) Run(ctx context.Context) {
	defer h.cancel()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Hub stopping")
			return

		case req := <-h.register:
			// Attaching waits on the session loop, so it must not hold up the hub.
			go func() {
				err := h.handleRegistration(req)
				if req.Result != nil {
					req.Result <- err
				}
			}()

		case s := <-h.stopped:
			h.mu.Lock()
			if current, ok := h.sessions[s.ID]; ok && current == s {
				delete(h.sessions, s.ID)
			}
			count := len(h.sessions)
			h.mu.Unlock()
			h.metrics.SessionStopped(ctx)
			slog.InfoContext(ctx, "Session stopped", "session.id", s.ID, "sessions.count", count)
		}
	}
}

// Register returns the register channel.
func (h *Hub) Register() chan<- *types.RegistrationRequest {
	return h.register
}

// Create starts a new game and returns its session.
func (h *Hub) Create(ctx context.Context) (*session.Session, error) {
	id := uuid.New().String()
	ctx, span := tracer.Start(ctx, "hub.Create", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	state := game.New()
	if err := h.repo.Save(ctx, id, state.Snapshot()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save new session")
		return nil, fmt.Errorf("create session: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.startLocked(id, state)
	slog.InfoContext(ctx, "Session created", "session.id", id, "sessions.count", len(h.sessions))
	return s, nil
}

// Get returns the running session for id, resuming it from the repository
// if it is not running.
func (h *Hub) Get(ctx context.Context, id string) (*session.Session, error) {
	h.mu.Lock()
	if s, ok := h.sessions[id]; ok {
		select {
		case <-s.Done():
		default:
			h.mu.Unlock()
			return s, nil
		}
	}
	h.mu.Unlock()

	ctx, span := tracer.Start(ctx, "hub.Resume", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	state, err := h.repo.FindByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load session")
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// Another caller may have resumed it while the lock was released.
	if s, ok := h.sessions[id]; ok {
		select {
		case <-s.Done():
		default:
			return s, nil
		}
	}
	slog.InfoContext(ctx, "Session resumed", "session.id", id, "step", state.Step())
	return h.startLocked(id, state), nil
}

// Submit applies an intent to a session. A session that stops between lookup
// and submission is resumed once.
func (h *Hub) Submit(ctx context.Context, id string, intent game.Intent) (game.View, error) {
	for attempt := 0; ; attempt++ {
		s, err := h.Get(ctx, id)
		if err != nil {
			return game.View{}, err
		}
		view, err := s.Submit(ctx, intent)
		if errors.Is(err, session.ErrSessionClosed) && attempt == 0 {
			continue
		}
		return view, err
	}
}

// View returns the current view of a session.
func (h *Hub) View(ctx context.Context, id string) (game.View, error) {
	for attempt := 0; ; attempt++ {
		s, err := h.Get(ctx, id)
		if err != nil {
			return game.View{}, err
		}
		view, err := s.View(ctx)
		if errors.Is(err, session.ErrSessionClosed) && attempt == 0 {
			continue
		}
		return view, err
	}
}

// End stops a session and deletes its stored game. Its observers are disconnected.
func (h *Hub) End(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "hub.End", trace.WithAttributes(
		attribute.String("session.id", id),
	))
	defer span.End()

	h.mu.Lock()
	s, live := h.sessions[id]
	h.mu.Unlock()
	if live {
		select {
		case <-s.Done():
			live = false
		default:
		}
	}

	if live {
		s.Stop()
		select {
		case <-s.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	} else if _, err := h.repo.FindByID(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to load session")
		return err
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete session")
		return fmt.Errorf("end session %s: %w", id, err)
	}
	slog.InfoContext(ctx, "Session ended", "session.id", id)
	return nil
}

func (h *Hub) handleRegistration(req *types.RegistrationRequest) error {
	ctx := req.Ctx
	if ctx == nil {
		ctx = h.ctx
	}
	ctx, span := tracer.Start(ctx, "hub.handleRegistration", trace.WithAttributes(
		attribute.String("session.id", req.SessionID),
		attribute.String("observer.id", req.ObserverID),
	))
	defer span.End()

	o := session.NewObserver(req.ObserverID, req.Conn)
	for attempt := 0; ; attempt++ {
		s, err := h.Get(ctx, req.SessionID)
		if err != nil {
			slog.WarnContext(ctx, "Registration for unknown session", "session.id", req.SessionID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Session not available")
			req.Conn.Close()
			return err
		}
		err = s.Attach(ctx, o)
		if errors.Is(err, session.ErrSessionClosed) && attempt == 0 {
			continue
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to attach observer")
			req.Conn.Close()
		}
		return err
	}
}

// startLocked runs a session and reports its exit to the hub. h.mu must be held.
func (h *Hub) startLocked(id string, state *game.State) *session.Session {
	s := session.NewSession(id, state, h.repo, h.metrics, h.idleTTL)
	h.sessions[id] = s
	h.metrics.SessionStarted(h.ctx)

	ctx := h.ctx
	go func() {
		s.Run(ctx)
		select {
		case h.stopped <- s:
		case <-ctx.Done():
			h.metrics.SessionStopped(context.Background())
		}
	}()
	return s
}
