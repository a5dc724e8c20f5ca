// Package observability provides logging and tracing support.
package observability

import (
	"context"
	"log/slog"
)

// WSLogger emits structured lifecycle events for a websocket hub. Request
// correlation for HTTP traffic lives in the middleware logger; websocket
// connections outlive any single request, so they carry their own
// user-scoped events instead.
type WSLogger struct {
	hubName string
	logger  *slog.Logger
}

// NewWSLogger creates a WSLogger for the given hub.
func NewWSLogger(hubName string) *WSLogger {
	return &WSLogger{hubName: hubName, logger: slog.Default()}
}

// WithLogger returns a copy routed to the given logger. Used by tests.
func (l *WSLogger) WithLogger(logger *slog.Logger) *WSLogger {
	return &WSLogger{hubName: l.hubName, logger: logger}
}

// LogConnect records a websocket connection being accepted.
func (l *WSLogger) LogConnect(ctx context.Context, userID string) {
	l.logger.InfoContext(ctx, "websocket connected",
		slog.String("hub", l.hubName),
		slog.String("user_id", userID),
	)
}

// LogDisconnect records a websocket connection ending.
func (l *WSLogger) LogDisconnect(ctx context.Context, userID, reason string) {
	l.logger.InfoContext(ctx, "websocket disconnected",
		slog.String("hub", l.hubName),
		slog.String("user_id", userID),
		slog.String("reason", reason),
	)
}

// LogError records a websocket failure tied to a specific event type.
func (l *WSLogger) LogError(ctx context.Context, userID, eventType string, err error) {
	l.logger.ErrorContext(ctx, "websocket error",
		slog.String("hub", l.hubName),
		slog.String("user_id", userID),
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}
