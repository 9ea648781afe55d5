package session

import (
	"context"
	"ctchen222/tic-tac-toe-history/internal/validator"
	"ctchen222/tic-tac-toe-history/pkg/proto"
	"encoding/json"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// HandleMessage decodes an intent sent by an observer and submits it. Malformed
// messages are answered with an error message and never reach the game.
func (s *Session) HandleMessage(ctx context.Context, o *Observer, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "session.HandleMessage", trace.WithAttributes(
		attribute.String("observer.id", o.ID),
		attribute.String("session.id", s.ID),
	))
	defer span.End()

	message, err := DecodeMessage(rawMessage)
	if err != nil {
		slog.WarnContext(ctx, "invalid message from observer", "observer.id", o.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message format")
		s.notify(o, &proto.ServerToClientMessage{Type: proto.TypeError, SessionID: s.ID, Reason: err.Error()})
		return
	}

	span.SetAttributes(attribute.String("message.type", message.Type))

	// Rejections are reported to the observer by the Run goroutine.
	if _, err := s.submit(ctx, message.Intent(), o); err != nil && errors.Is(err, ErrSessionClosed) {
		slog.WarnContext(ctx, "message for closed session", "observer.id", o.ID, "session.id", s.ID)
	}
}

// DecodeMessage parses and validates a client message.
func DecodeMessage(rawMessage []byte) (*proto.ClientToServerMessage, error) {
	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		return nil, errors.New("malformed message")
	}
	if err := validator.GetValidator().Struct(message); err != nil {
		return nil, err
	}
	return &message, nil
}
