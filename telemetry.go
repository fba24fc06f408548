package mistral

import "time"

// TelemetryHook receives notifications about request lifecycle events.
// Implementations can use this for logging, metrics, tracing, etc.
//
// Event types are designed to never include sensitive data: API keys,
// prompt content, and response content are all excluded. Only operational
// metadata is exposed (operation, model, timing, token counts).
type TelemetryHook interface {
	// OnRequestStart is called when a request begins.
	OnRequestStart(e RequestStartEvent)

	// OnRequestEnd is called when a request completes.
	OnRequestEnd(e RequestEndEvent)
}

// RequestStartEvent contains metadata about a starting request.
type RequestStartEvent struct {
	Operation string    // Operation identifier (e.g. "chat", "chat.stream")
	Model     ModelID   // Model being called
	Start     time.Time // When the request started
}

// RequestEndEvent contains metadata about a completed request.
type RequestEndEvent struct {
	Operation string    // Operation identifier
	Model     ModelID   // Model that was called
	Start     time.Time // When the request started
	End       time.Time // When the request completed
	Usage     Usage     // Token consumption
	Err       error     // Error if request failed, nil on success
}

// Duration returns the elapsed time for the request.
func (e RequestEndEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// NoopTelemetryHook is a no-op implementation of TelemetryHook.
// Use this as a default when no telemetry is configured.
type NoopTelemetryHook struct{}

// OnRequestStart does nothing.
func (NoopTelemetryHook) OnRequestStart(RequestStartEvent) {}

// OnRequestEnd does nothing.
func (NoopTelemetryHook) OnRequestEnd(RequestEndEvent) {}

// Compile-time check that NoopTelemetryHook implements TelemetryHook.
var _ TelemetryHook = NoopTelemetryHook{}
