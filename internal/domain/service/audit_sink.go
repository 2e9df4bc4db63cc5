package service

import "context"

// AuditSink is the side-channel for auth events. Emission must be
// fire-and-forget relative to the request path: implementations queue the
// event and deliver it in the background, and a slow or failing sink never
// delays or fails the primary operation.
type AuditSink interface {
	// LogInfo emits an informational auth event (registration, login,
	// logout) to the info channel.
	LogInfo(ctx context.Context, event string, fields map[string]any)

	// LogError emits an operational failure to the high-severity channel.
	LogError(ctx context.Context, event string, fields map[string]any)

	// Close flushes queued events and releases resources.
	Close() error
}
