package mistral

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError represents an error returned by the API with full context.
type APIError struct {
	Status    int
	RequestID string
	Code      string
	Message   string
	Err       error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("mistral: %s (status=%d, code=%s, request_id=%s)",
			e.Message, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("mistral: %s (status=%d, code=%s)",
		e.Message, e.Status, e.Code)
}

// Unwrap returns the underlying sentinel for error chaining.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Sentinel errors for classification.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrRateLimited  = errors.New("rate limited")
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrServer       = errors.New("server error")
	ErrNetwork      = errors.New("network error")
	ErrDecode       = errors.New("decode error")
)

// Validation errors with actionable guidance.
var (
	ErrAPIKeyRequired = errors.New("api key required: pass a key to mistral.New() or set MISTRAL_API_KEY")
	ErrModelRequired  = errors.New("model required: pass a model ID, e.g. mistral.ModelMistralSmallLatest")
	ErrNoMessages     = errors.New("no messages: add at least one message using .System(), .User(), or .Assistant()")
	ErrNoInput        = errors.New("no input: provide at least one input text")
	ErrNoDocument     = errors.New("no document: provide a document or image source")
	ErrNoAudio        = errors.New("no audio: provide file content or a file URL")
)

// ErrStreamClosed is returned when an event is folded into an accumulator
// that has already observed a terminal event. This indicates caller misuse,
// not a transient failure.
var ErrStreamClosed = errors.New("stream closed: accumulator already finalized")

// messageEnvelope is the primary error shape:
// {"object":"error","message":"...","type":"...","code":"...","param":"..."}
type messageEnvelope struct {
	Object  string          `json:"object"`
	Message json.RawMessage `json:"message"`
	Type    string          `json:"type"`
	Code    string          `json:"code"`
	Param   string          `json:"param"`
}

// validationEnvelope is the validation error shape:
// {"detail":[{"loc":["body","model"],"msg":"...","type":"..."}]}
type validationEnvelope struct {
	Detail []struct {
		Loc  []json.RawMessage `json:"loc"`
		Msg  string            `json:"msg"`
		Type string            `json:"type"`
	} `json:"detail"`
}

// normalizeError converts an HTTP error response into an *APIError wrapping
// the appropriate sentinel.
//
// The body is matched against known shapes in a fixed order: the message
// envelope first, then the validation detail list, then the raw body text.
// The first shape that yields a message wins, even if the payload would
// also satisfy a later shape.
func normalizeError(status int, body []byte, requestID string) error {
	message, code := parseErrorBody(body)
	if message == "" {
		message = http.StatusText(status)
	}

	return &APIError{
		Status:    status,
		RequestID: requestID,
		Code:      code,
		Message:   message,
		Err:       sentinelForStatus(status),
	}
}

// parseErrorBody extracts a human-readable message and machine code from an
// error response body, trying each known shape in order.
func parseErrorBody(body []byte) (message, code string) {
	// Shape A: message envelope.
	var env messageEnvelope
	if err := json.Unmarshal(body, &env); err == nil && len(env.Message) > 0 {
		// The message field is usually a string but can be a nested
		// structure for some gateways; fall back to its raw text.
		var s string
		if err := json.Unmarshal(env.Message, &s); err == nil {
			message = s
		} else {
			message = string(env.Message)
		}

		code = env.Code
		if code == "" {
			code = env.Type
		}
		if message != "" {
			return message, code
		}
	}

	// Shape B: validation detail list.
	var val validationEnvelope
	if err := json.Unmarshal(body, &val); err == nil && len(val.Detail) > 0 {
		parts := make([]string, 0, len(val.Detail))
		for _, d := range val.Detail {
			if d.Msg != "" {
				parts = append(parts, d.Msg)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; "), val.Detail[0].Type
		}
	}

	// Shape C: raw body text.
	text := strings.TrimSpace(string(body))
	return text, ""
}

// sentinelForStatus maps an HTTP status code to a sentinel error.
func sentinelForStatus(status int) error {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrBadRequest
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return ErrServer
	}
}

// newNetworkError wraps a transport failure.
func newNetworkError(err error) error {
	return &APIError{
		Message: err.Error(),
		Err:     ErrNetwork,
	}
}

// newDecodeError wraps a JSON decode failure.
func newDecodeError(err error) error {
	return &APIError{
		Message: err.Error(),
		Err:     ErrDecode,
	}
}
