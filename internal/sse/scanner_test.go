package sse

import (
	"context"
	"io"
	"strings"
	"testing"
)

// collect drains the scanner until EOF or error.
func collect(t *testing.T, s *Scanner) []Frame {
	t.Helper()

	var frames []Frame
	for {
		frame, err := s.Next(context.Background())
		if err == io.EOF {
			return frames
		}
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		frames = append(frames, frame)
	}
}

func TestScannerSplitsFrames(t *testing.T) {
	input := "data: {\"a\":1}\n\ndata: {\"b\":2}\n\ndata: [DONE]\n\n"
	frames := collect(t, NewScanner(strings.NewReader(input)))

	if len(frames) != 3 {
		t.Fatalf("frames count = %d, want 3", len(frames))
	}
	if frames[0].Data != `{"a":1}` {
		t.Errorf("frames[0].Data = %q", frames[0].Data)
	}
	if frames[2].Data != "[DONE]" {
		t.Errorf("frames[2].Data = %q", frames[2].Data)
	}
}

func TestScannerEventName(t *testing.T) {
	input := "event: message\ndata: {\"a\":1}\n\n"
	frames := collect(t, NewScanner(strings.NewReader(input)))

	if len(frames) != 1 {
		t.Fatalf("frames count = %d, want 1", len(frames))
	}
	if frames[0].Event != "message" {
		t.Errorf("Event = %q, want message", frames[0].Event)
	}
	if frames[0].Data != `{"a":1}` {
		t.Errorf("Data = %q", frames[0].Data)
	}
}

func TestScannerMultiLineData(t *testing.T) {
	input := "data: line one\ndata: line two\n\n"
	frames := collect(t, NewScanner(strings.NewReader(input)))

	if len(frames) != 1 {
		t.Fatalf("frames count = %d, want 1", len(frames))
	}
	if frames[0].Data != "line one\nline two" {
		t.Errorf("Data = %q", frames[0].Data)
	}
}

func TestScannerSkipsCommentsAndKeepAlives(t *testing.T) {
	input := ": keep-alive\n\n: another comment\ndata: {\"a\":1}\n\n: trailing\n\n"
	frames := collect(t, NewScanner(strings.NewReader(input)))

	if len(frames) != 1 {
		t.Fatalf("frames count = %d, want 1", len(frames))
	}
	if frames[0].Data != `{"a":1}` {
		t.Errorf("Data = %q", frames[0].Data)
	}
}

func TestScannerCRLF(t *testing.T) {
	input := "data: {\"a\":1}\r\n\r\ndata: {\"b\":2}\r\n\r\n"
	frames := collect(t, NewScanner(strings.NewReader(input)))

	if len(frames) != 2 {
		t.Fatalf("frames count = %d, want 2", len(frames))
	}
	if frames[0].Data != `{"a":1}` {
		t.Errorf("frames[0].Data = %q", frames[0].Data)
	}
}

func TestScannerConsecutiveBlankLines(t *testing.T) {
	input := "\n\n\ndata: {\"a\":1}\n\n\n\n"
	frames := collect(t, NewScanner(strings.NewReader(input)))

	if len(frames) != 1 {
		t.Fatalf("frames count = %d, want 1", len(frames))
	}
}

func TestScannerUnterminatedTailFrame(t *testing.T) {
	// Transport closed before the trailing blank line: the buffered frame
	// is still delivered, then EOF.
	input := "data: {\"a\":1}\n\ndata: {\"b\":2}"
	frames := collect(t, NewScanner(strings.NewReader(input)))

	if len(frames) != 2 {
		t.Fatalf("frames count = %d, want 2", len(frames))
	}
	if frames[1].Data != `{"b":2}` {
		t.Errorf("frames[1].Data = %q", frames[1].Data)
	}
}

func TestScannerEmptyInput(t *testing.T) {
	s := NewScanner(strings.NewReader(""))
	if _, err := s.Next(context.Background()); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestScannerCancelledBeforeRead(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner(strings.NewReader("data: {\"a\":1}\n\n"))
	if _, err := s.Next(ctx); err != context.Canceled {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestScannerCancelBetweenFrames(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	s := NewScanner(strings.NewReader("data: {\"a\":1}\n\ndata: {\"b\":2}\n\n"))

	frame, err := s.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if frame.Data != `{"a":1}` {
		t.Errorf("Data = %q", frame.Data)
	}

	// Cancel between frames: the next request must not deliver a frame.
	cancel()
	if _, err := s.Next(ctx); err != context.Canceled {
		t.Errorf("Next() error = %v, want context.Canceled", err)
	}
}

func TestScannerIgnoresUnknownFields(t *testing.T) {
	input := "id: 42\nretry: 1000\ndata: {\"a\":1}\n\n"
	frames := collect(t, NewScanner(strings.NewReader(input)))

	if len(frames) != 1 {
		t.Fatalf("frames count = %d, want 1", len(frames))
	}
	if frames[0].Data != `{"a":1}` {
		t.Errorf("Data = %q", frames[0].Data)
	}
}
