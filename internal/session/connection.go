package session

import (
	"context"
	"ctchen222/tic-tac-toe-history/pkg/proto"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Broadcast sends a message to all observers of the session.
// It must only be called from the Run goroutine.
func (s *Session) Broadcast(ctx context.Context, message *proto.ServerToClientMessage) {
	ctx, span := tracer.Start(ctx, "session.Broadcast", trace.WithAttributes(
		attribute.String("session.id", s.ID),
		attribute.String("message.type", message.Type),
		attribute.Int("observers.count", len(s.observers)),
	))
	defer span.End()

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}

	for _, o := range s.observers {
		if err := s.write(o, websocket.TextMessage, data); err != nil {
			slog.ErrorContext(ctx, "error writing message to observer", "observer.id", o.ID, "error", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Error writing message to observer")
			s.drop(o)
		}
	}
}

// send writes a message to a single observer from the Run goroutine.
func (s *Session) send(ctx context.Context, o *Observer, message *proto.ServerToClientMessage) {
	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		return
	}
	if err := s.write(o, websocket.TextMessage, data); err != nil {
		slog.WarnContext(ctx, "error writing message to observer", "observer.id", o.ID, "error", err)
		s.drop(o)
	}
}

// write sends one frame to an observer, giving up after the session's write wait.
func (s *Session) write(o *Observer, messageType int, data []byte) error {
	if err := o.Conn.SetWriteDeadline(time.Now().Add(s.writeWait)); err != nil {
		return err
	}
	return o.Conn.WriteMessage(messageType, data)
}

// notify queues a message for one observer; the Run goroutine writes it.
func (s *Session) notify(o *Observer, message *proto.ServerToClientMessage) {
	select {
	case s.notices <- notice{to: o, msg: message}:
	case <-s.done:
	}
}

func (s *Session) drop(o *Observer) {
	if current, ok := s.observers[o.ID]; ok && current == o {
		delete(s.observers, o.ID)
	}
	o.Conn.Close()
}

// ReadPump pumps messages from the observer's connection into the session.
func (s *Session) ReadPump(o *Observer) {
	ctx, span := tracer.Start(context.Background(), "session.ReadPump", trace.WithAttributes(
		attribute.String("observer.id", o.ID),
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	defer func() {
		select {
		case s.detach <- o:
		case <-s.done:
		}
	}()

	for {
		_, msg, err := o.Conn.ReadMessage()
		if err != nil {
			slog.InfoContext(ctx, "Observer connection closed", "observer.id", o.ID, "session.id", s.ID, "error", err)
			return
		}
		s.HandleMessage(ctx, o, msg)
	}
}
