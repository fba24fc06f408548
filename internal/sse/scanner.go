// Package sse splits a server-sent-events byte stream into discrete frames.
//
// The scanner only handles framing: it buffers partial reads until a
// blank-line frame boundary appears and returns the raw frame payload.
// JSON decoding and event dispatch belong to the caller.
package sse

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Frame is one delimited unit of a streamed response, prior to JSON
// decoding. Data holds the concatenated payload of the frame's data lines.
type Frame struct {
	// Event is the optional event name from an "event:" line.
	Event string

	// Data is the frame payload. Multiple data lines are joined with "\n".
	Data string
}

// Scanner reads frames from an event stream. It is not safe for concurrent
// use; each stream owns its own Scanner.
type Scanner struct {
	r *bufio.Reader
}

// NewScanner creates a Scanner over the raw byte source.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: bufio.NewReader(r)}
}

// Next returns the next complete frame.
//
// Cancellation is checked before each blocking read, never mid-frame: once
// the first line of a frame has been consumed, the frame is read to its
// boundary before ctx is consulted again. At end of input Next returns
// io.EOF; a final frame with buffered data but no trailing blank line is
// still delivered before EOF is reported.
func (s *Scanner) Next(ctx context.Context) (Frame, error) {
	var (
		frame   Frame
		dataSet bool
		data    strings.Builder
	)

	for {
		if !dataSet && frame.Event == "" {
			// Between frames: honor cancellation before blocking.
			select {
			case <-ctx.Done():
				return Frame{}, ctx.Err()
			default:
			}
		}

		line, err := s.r.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				if line != "" {
					// Treat the unterminated tail as a final line.
					if s.consumeLine(line, &frame, &data, &dataSet) {
						continue
					}
				}
				if dataSet || frame.Event != "" {
					frame.Data = data.String()
					return frame, nil
				}
				return Frame{}, io.EOF
			}
			if ctx.Err() != nil {
				// The transport closes the body on cancellation; report
				// the cancellation rather than the read error.
				return Frame{}, ctx.Err()
			}
			return Frame{}, err
		}

		line = strings.TrimRight(line, "\r\n")

		if line == "" {
			// Frame boundary. Empty frames (e.g. consecutive blank lines
			// or comment-only frames) are not emitted.
			if !dataSet && frame.Event == "" {
				continue
			}
			frame.Data = data.String()
			return frame, nil
		}

		s.consumeLine(line, &frame, &data, &dataSet)
	}
}

// consumeLine folds one line into the frame under construction.
// Returns true if the line contributed to the frame.
func (s *Scanner) consumeLine(line string, frame *Frame, data *strings.Builder, dataSet *bool) bool {
	line = strings.TrimRight(line, "\r\n")

	// Comment / keep-alive lines.
	if strings.HasPrefix(line, ":") {
		return false
	}

	if value, ok := strings.CutPrefix(line, "event:"); ok {
		frame.Event = strings.TrimSpace(value)
		return true
	}

	if value, ok := strings.CutPrefix(line, "data:"); ok {
		if *dataSet {
			data.WriteByte('\n')
		}
		data.WriteString(strings.TrimSpace(value))
		*dataSet = true
		return true
	}

	// Unknown field names are ignored per the event-stream convention.
	return false
}
