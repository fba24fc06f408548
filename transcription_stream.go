package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/petal-labs/mistral/internal/sse"
)

// Transcription stream event type discriminators.
const (
	eventTranscriptionTextDelta    = "transcription.text.delta"
	eventTranscriptionLanguage     = "transcription.language"
	eventTranscriptionSegmentDelta = "transcription.segment.delta"
	eventTranscriptionDone         = "transcription.done"
)

// TranscriptionEvent is one variant of the streamed transcription union.
// Exactly one terminal variant (TranscriptionDone) may appear, always last.
type TranscriptionEvent interface {
	// EventType returns the wire discriminator for this event.
	EventType() string

	// Terminal reports whether this event ends the stream.
	Terminal() bool
}

// TranscriptionTextDelta is an incremental piece of transcript text.
type TranscriptionTextDelta struct {
	Text string `json:"text"`
}

// EventType returns the wire discriminator.
func (TranscriptionTextDelta) EventType() string { return eventTranscriptionTextDelta }

// Terminal reports whether this event ends the stream.
func (TranscriptionTextDelta) Terminal() bool { return false }

// TranscriptionLanguage reports the detected audio language.
type TranscriptionLanguage struct {
	AudioLanguage string `json:"audio_language"`
}

// EventType returns the wire discriminator.
func (TranscriptionLanguage) EventType() string { return eventTranscriptionLanguage }

// Terminal reports whether this event ends the stream.
func (TranscriptionLanguage) Terminal() bool { return false }

// TranscriptionSegmentDelta is a completed timed segment.
type TranscriptionSegmentDelta struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	SpeakerID string  `json:"speaker_id,omitempty"`
}

// EventType returns the wire discriminator.
func (TranscriptionSegmentDelta) EventType() string { return eventTranscriptionSegmentDelta }

// Terminal reports whether this event ends the stream.
func (TranscriptionSegmentDelta) Terminal() bool { return false }

// TranscriptionDone is the terminal event carrying the server-declared
// final transcript and usage.
type TranscriptionDone struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language,omitempty"`
	Segments []TranscriptionSegment `json:"segments,omitempty"`
	Usage    *Usage                 `json:"usage,omitempty"`
}

// EventType returns the wire discriminator.
func (TranscriptionDone) EventType() string { return eventTranscriptionDone }

// Terminal reports whether this event ends the stream.
func (TranscriptionDone) Terminal() bool { return true }

// parseTranscriptionEvent decodes one frame payload by its type
// discriminator. Unknown discriminators return (nil, nil) and are skipped,
// keeping the decoder forward compatible.
func parseTranscriptionEvent(data []byte) (TranscriptionEvent, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case eventTranscriptionTextDelta:
		var ev TranscriptionTextDelta
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case eventTranscriptionLanguage:
		var ev TranscriptionLanguage
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case eventTranscriptionSegmentDelta:
		var ev TranscriptionSegmentDelta
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	case eventTranscriptionDone:
		var ev TranscriptionDone
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, err
		}
		return ev, nil

	default:
		return nil, nil
	}
}

// DecodeOption configures stream decoding.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	strict bool
}

// WithStrictDecoding makes a malformed frame abort the stream with a
// decode error. By default malformed frames are skipped and decoding
// continues with the next frame.
func WithStrictDecoding() DecodeOption {
	return func(c *decodeConfig) {
		c.strict = true
	}
}

// TranscriptionStream represents a streaming transcription.
//
// Channel rules:
//   - Events and Err are closed when the stream ends
//   - Err emits at most one error
//   - Once a terminal event is emitted, no further events follow
//   - On context cancellation the stream terminates promptly
type TranscriptionStream struct {
	// Events emits typed events in arrival order. Closed when the stream
	// ends.
	Events <-chan TranscriptionEvent

	// Err emits at most one error. Closed when the stream ends. A stream
	// that ends cleanly without a terminal event closes both channels
	// without an error; callers detect missing termination through the
	// accumulated result.
	Err <-chan error
}

// DecodeTranscriptionStream decodes a raw event-stream byte source into a
// lazy sequence of transcription events.
//
// The decoder owns r for the lifetime of the stream and closes it when r
// implements io.Closer. Consumption is a cooperative pull: backpressure is
// applied through the unread Events channel.
func DecodeTranscriptionStream(ctx context.Context, r io.Reader, opts ...DecodeOption) *TranscriptionStream {
	cfg := decodeConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	eventCh := make(chan TranscriptionEvent)
	errCh := make(chan error, 1)

	go decodeTranscription(ctx, r, cfg, eventCh, errCh)

	return &TranscriptionStream{
		Events: eventCh,
		Err:    errCh,
	}
}

// decodeTranscription runs the frame-splitter/parser loop.
func decodeTranscription(
	ctx context.Context,
	r io.Reader,
	cfg decodeConfig,
	eventCh chan<- TranscriptionEvent,
	errCh chan<- error,
) {
	defer close(eventCh)
	defer close(errCh)
	if closer, ok := r.(io.Closer); ok {
		defer closer.Close()
	}

	scanner := sse.NewScanner(r)

	for {
		frame, err := scanner.Next(ctx)
		if err != nil {
			if err == io.EOF {
				// Transport closed before a terminal frame: end the
				// sequence without error, the caller decides whether
				// missing termination is a failure.
				return
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				errCh <- err
			} else {
				errCh <- newNetworkError(err)
			}
			return
		}

		if frame.Data == doneSentinel {
			return
		}

		event, err := parseTranscriptionEvent([]byte(frame.Data))
		if err != nil {
			if cfg.strict {
				errCh <- newDecodeError(err)
				return
			}
			// Recoverable per-frame failure: skip and continue.
			continue
		}
		if event == nil {
			// Unknown discriminator.
			continue
		}

		select {
		case eventCh <- event:
		case <-ctx.Done():
			errCh <- ctx.Err()
			return
		}

		if event.Terminal() {
			// No further events are processed past the terminal event.
			return
		}
	}
}

// TranscriptionAccumulator folds successive stream events into a single
// terminal result. The zero value is ready to use.
//
// The accumulator is Open until it observes a terminal event, after which
// it is Closed and further folds are rejected with ErrStreamClosed.
type TranscriptionAccumulator struct {
	events   []TranscriptionEvent
	text     strings.Builder
	language string
	segments []TranscriptionSegment
	final    *TranscriptionDone
	closed   bool
}

// Fold merges one event into the accumulated state.
// Folding into a closed accumulator is caller misuse and returns
// ErrStreamClosed.
func (a *TranscriptionAccumulator) Fold(event TranscriptionEvent) error {
	if a.closed {
		return ErrStreamClosed
	}

	a.events = append(a.events, event)

	switch ev := event.(type) {
	case TranscriptionTextDelta:
		a.text.WriteString(ev.Text)

	case TranscriptionLanguage:
		a.language = ev.AudioLanguage

	case TranscriptionSegmentDelta:
		a.segments = append(a.segments, TranscriptionSegment{
			Text:      ev.Text,
			Start:     ev.Start,
			End:       ev.End,
			SpeakerID: ev.SpeakerID,
		})

	case TranscriptionDone:
		a.final = &ev
		a.closed = true
	}

	return nil
}

// Closed reports whether a terminal event has been observed.
func (a *TranscriptionAccumulator) Closed() bool {
	return a.closed
}

// Events returns the ordered sequence of folded events.
func (a *TranscriptionAccumulator) Events() []TranscriptionEvent {
	return a.events
}

// Result freezes the accumulated state into a Transcription.
//
// The server-declared final text from the terminal event wins over the
// incrementally concatenated buffer when the two differ. Finished reports
// whether a terminal event was observed.
func (a *TranscriptionAccumulator) Result() *Transcription {
	result := &Transcription{
		Text:     a.text.String(),
		Language: a.language,
		Segments: a.segments,
		Events:   a.events,
		Finished: a.closed,
	}

	if a.final != nil {
		if a.final.Text != "" {
			result.Text = a.final.Text
		}
		if a.final.Language != "" {
			result.Language = a.final.Language
		}
		if len(a.final.Segments) > 0 {
			result.Segments = a.final.Segments
		}
		if a.final.Usage != nil {
			result.Usage = a.final.Usage
		}
	}

	return result
}

// CollectTranscription drains a stream into an accumulator and returns the
// merged result. onEvent, when non-nil, is invoked for each event before it
// is folded. Blocks until the stream completes or ctx cancels.
//
// A stream that ends without a terminal event returns a result with
// Finished == false and no error.
func CollectTranscription(ctx context.Context, s *TranscriptionStream, onEvent func(TranscriptionEvent)) (*Transcription, error) {
	if s == nil {
		return nil, ErrBadRequest
	}

	var acc TranscriptionAccumulator
	var streamErr error

	events := s.Events
	for events != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if onEvent != nil {
				onEvent(event)
			}
			if err := acc.Fold(event); err != nil {
				return nil, err
			}

		case err, ok := <-s.Err:
			if ok && err != nil {
				streamErr = err
			}
			// Continue draining Events even after an error.
		}
	}

	// Drain any remaining error.
	select {
	case err, ok := <-s.Err:
		if ok && err != nil {
			streamErr = err
		}
	default:
	}

	if streamErr != nil {
		return nil, streamErr
	}

	return acc.Result(), nil
}
