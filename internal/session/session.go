package session

import (
	"context"
	"ctchen222/tic-tac-toe-history/internal/game"
	"ctchen222/tic-tac-toe-history/internal/repository"
	"ctchen222/tic-tac-toe-history/internal/telemetry"
	"ctchen222/tic-tac-toe-history/pkg/proto"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	heartbeatInterval = 10 * time.Second
	writeWait         = 5 * time.Second
	intentBuffer      = 16
)

var tracer = otel.Tracer("session")

// ErrSessionClosed is returned when submitting to a session whose loop has stopped.
var ErrSessionClosed = errors.New("session closed")

type result struct {
	view game.View
	err  error
}

type request struct {
	ctx    context.Context
	intent game.Intent
	from   *Observer
	reply  chan result
}

type notice struct {
	to  *Observer
	msg *proto.ServerToClientMessage
}

// Session runs one game. The game state is owned by the Run goroutine: every
// intent, from any observer or API call, is applied there to completion in
// the order it was received.
type Session struct {
	ID      string
	repo    repository.SessionRepository
	metrics *telemetry.Metrics
	idleTTL time.Duration
	// writeWait bounds every write to an observer, so a client that stops
	// reading cannot stall the loop.
	writeWait time.Duration

	state     *game.State
	observers map[string]*Observer

	intents chan *request
	views   chan chan game.View
	attach  chan *Observer
	detach  chan *Observer
	notices chan notice
	quit    chan struct{}
	done    chan struct{}

	stopOnce sync.Once
}

// NewSession creates a session around an existing game. Call Run to start it.
func NewSession(id string, state *game.State, repo repository.SessionRepository, metrics *telemetry.Metrics, idleTTL time.Duration) *Session {
	return &Session{
		ID:        id,
		repo:      repo,
		metrics:   metrics,
		idleTTL:   idleTTL,
		writeWait: writeWait,
		state:     state,
		observers: make(map[string]*Observer),
		intents:   make(chan *request, intentBuffer),
		views:     make(chan chan game.View),
		attach:    make(chan *Observer),
		detach:    make(chan *Observer),
		notices:   make(chan notice, intentBuffer),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Stop asks the loop to end. Observers are disconnected; the stored snapshot
// is left to the caller.
func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}

// Done is closed when the session loop has stopped.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Submit applies an intent and returns the resulting view. A rejected intent
// returns the unchanged view together with the rejection error.
func (s *Session) Submit(ctx context.Context, intent game.Intent) (game.View, error) {
	return s.submit(ctx, intent, nil)
}

func (s *Session) submit(ctx context.Context, intent game.Intent, from *Observer) (game.View, error) {
	req := &request{ctx: ctx, intent: intent, from: from, reply: make(chan result, 1)}
	select {
	case s.intents <- req:
	case <-s.done:
		return game.View{}, ErrSessionClosed
	case <-ctx.Done():
		return game.View{}, ctx.Err()
	}

	select {
	case r := <-req.reply:
		return r.view, r.err
	case <-s.done:
		return game.View{}, ErrSessionClosed
	case <-ctx.Done():
		return game.View{}, ctx.Err()
	}
}

// View returns the current view without changing anything.
func (s *Session) View(ctx context.Context) (game.View, error) {
	reply := make(chan game.View, 1)
	select {
	case s.views <- reply:
	case <-s.done:
		return game.View{}, ErrSessionClosed
	case <-ctx.Done():
		return game.View{}, ctx.Err()
	}

	select {
	case v := <-reply:
		return v, nil
	case <-s.done:
		return game.View{}, ErrSessionClosed
	case <-ctx.Done():
		return game.View{}, ctx.Err()
	}
}

// Attach adds an observer, sends it the current view and starts reading its intents.
func (s *Session) Attach(ctx context.Context, o *Observer) error {
	select {
	case s.attach <- o:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	go s.ReadPump(o)
	return nil
}

// Run is the main loop for the session. It returns when ctx is cancelled, or
// when the session has had no observers and no activity for the idle TTL.
func (s *Session) Run(ctx context.Context) {
	pingTicker := time.NewTicker(heartbeatInterval)
	idleTimer := time.NewTimer(s.idleTTL)

	defer func() {
		pingTicker.Stop()
		idleTimer.Stop()
		for _, o := range s.observers {
			o.Conn.Close()
		}
		close(s.done)
	}()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Session run goroutine stopping.", "session.id", s.ID)
			return

		case <-s.quit:
			slog.InfoContext(ctx, "Session ended", "session.id", s.ID)
			return

		case req := <-s.intents:
			view, err := s.apply(req.ctx, req.intent)
			if err != nil && req.from != nil {
				s.send(ctx, req.from, proto.RejectedMessage(s.ID, RejectionReason(err)))
			}
			req.reply <- result{view: view, err: err}

		case reply := <-s.views:
			reply <- s.state.View()

		case o := <-s.attach:
			s.observers[o.ID] = o
			slog.InfoContext(ctx, "Observer attached", "session.id", s.ID, "observer.id", o.ID, "observers.count", len(s.observers))
			s.send(ctx, o, proto.StateMessage(s.ID, s.state.View()))

		case o := <-s.detach:
			if current, ok := s.observers[o.ID]; ok && current == o {
				delete(s.observers, o.ID)
				o.Conn.Close()
				slog.InfoContext(ctx, "Observer detached", "session.id", s.ID, "observer.id", o.ID, "observers.count", len(s.observers))
			}

		case n := <-s.notices:
			s.send(ctx, n.to, n.msg)

		case <-pingTicker.C:
			for _, o := range s.observers {
				if err := s.write(o, websocket.PingMessage, nil); err != nil {
					slog.WarnContext(ctx, "Failed to send ping to observer, assuming disconnect", "observer.id", o.ID, "error", err)
					s.drop(o)
				}
			}
			continue

		case <-idleTimer.C:
			if len(s.observers) == 0 {
				slog.InfoContext(ctx, "Session idle, stopping.", "session.id", s.ID, "idle_ttl", s.idleTTL)
				return
			}
		}
		idleTimer.Reset(s.idleTTL)
	}
}

// apply runs one intent against the game, then stores and broadcasts the result.
func (s *Session) apply(ctx context.Context, intent game.Intent) (game.View, error) {
	ctx, span := tracer.Start(ctx, "session.apply", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("intent.type", string(intent.Kind)),
	))
	defer span.End()

	if err := s.state.Apply(intent); err != nil {
		reason := RejectionReason(err)
		slog.WarnContext(ctx, "intent rejected", "session.id", s.ID, "intent", intent.String(), "reason", reason)
		span.SetAttributes(attribute.Bool("intent.applied", false), attribute.String("intent.reason", reason))
		s.metrics.IntentRejected(ctx, string(intent.Kind), reason)
		return s.state.View(), err
	}
	span.SetAttributes(attribute.Bool("intent.applied", true), attribute.Int("game.step", s.state.Step()))
	s.metrics.IntentApplied(ctx, string(intent.Kind))

	if err := s.repo.Save(ctx, s.ID, s.state.Snapshot()); err != nil {
		slog.ErrorContext(ctx, "failed to save session", "session.id", s.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save session")
	}

	view := s.state.View()
	s.Broadcast(ctx, proto.StateMessage(s.ID, view))
	return view, nil
}

// RejectionReason maps a rejection error to the text sent to clients.
func RejectionReason(err error) string {
	for _, known := range []error{
		game.ErrOutOfBounds,
		game.ErrOccupied,
		game.ErrGameOver,
		game.ErrStepOutOfRange,
		game.ErrUnknownIntent,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return "invalid intent"
}
