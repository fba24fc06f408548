package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
)

// audioTranscriptionsPath is the API endpoint for audio transcription.
const audioTranscriptionsPath = "/audio/transcriptions"

// TranscriptionRequest represents an audio transcription request.
// Provide audio either as File content with a Filename, or as a FileURL.
type TranscriptionRequest struct {
	// Model is the transcription model, e.g. ModelVoxtralMiniLatest.
	Model ModelID

	// File is the audio content to transcribe.
	File io.Reader

	// Filename is the recommended filename for File.
	Filename string

	// FileURL is an HTTPS URL to the audio, as an alternative to File.
	FileURL string

	// Language is an optional ISO 639-1 hint. When empty the language is
	// detected and reported back.
	Language string

	// Temperature is an optional sampling temperature.
	Temperature *float64

	// SegmentTimestamps requests per-segment start/end timestamps.
	SegmentTimestamps bool

	// Diarize requests speaker labels on segments.
	Diarize bool
}

// TranscriptionSegment is a timed portion of the transcript.
type TranscriptionSegment struct {
	Text      string  `json:"text"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	SpeakerID string  `json:"speaker_id,omitempty"`
}

// Transcription is the merged result of a transcription request.
//
// For streamed requests, Finished reports whether a terminal event was
// observed: a stream that ended without one yields Finished == false so
// callers can detect missing termination.
type Transcription struct {
	Model    ModelID                `json:"model,omitempty"`
	Text     string                 `json:"text"`
	Language string                 `json:"language,omitempty"`
	Segments []TranscriptionSegment `json:"segments,omitempty"`
	Usage    *Usage                 `json:"usage,omitempty"`

	// Events is the ordered sequence of received events for streamed
	// requests. Empty for non-streaming requests.
	Events []TranscriptionEvent `json:"-"`

	Finished bool `json:"-"`
}

// buildForm writes the multipart form for the request.
// stream toggles incremental delivery on the server side.
func (r *TranscriptionRequest) buildForm(stream bool) (body *bytes.Buffer, contentType string, err error) {
	if r.Model == "" {
		return nil, "", ErrModelRequired
	}
	if r.File == nil && r.FileURL == "" {
		return nil, "", ErrNoAudio
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("model", string(r.Model)); err != nil {
		return nil, "", fmt.Errorf("failed to write model field: %w", err)
	}
	if r.Language != "" {
		if err := w.WriteField("language", r.Language); err != nil {
			return nil, "", fmt.Errorf("failed to write language field: %w", err)
		}
	}
	if r.Temperature != nil {
		if err := w.WriteField("temperature", strconv.FormatFloat(*r.Temperature, 'f', -1, 64)); err != nil {
			return nil, "", fmt.Errorf("failed to write temperature field: %w", err)
		}
	}
	if r.SegmentTimestamps {
		if err := w.WriteField("timestamp_granularities", "segment"); err != nil {
			return nil, "", fmt.Errorf("failed to write timestamp_granularities field: %w", err)
		}
	}
	if r.Diarize {
		if err := w.WriteField("diarize", "true"); err != nil {
			return nil, "", fmt.Errorf("failed to write diarize field: %w", err)
		}
	}
	if stream {
		if err := w.WriteField("stream", "true"); err != nil {
			return nil, "", fmt.Errorf("failed to write stream field: %w", err)
		}
	}

	if r.File != nil {
		filename := r.Filename
		if filename == "" {
			filename = "audio"
		}
		part, err := w.CreateFormFile("file", filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file: %w", err)
		}
		if _, err := io.Copy(part, r.File); err != nil {
			return nil, "", fmt.Errorf("failed to copy audio content: %w", err)
		}
	} else {
		if err := w.WriteField("file_url", r.FileURL); err != nil {
			return nil, "", fmt.Errorf("failed to write file_url field: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

// Transcribe performs a non-streaming audio transcription.
func (c *Client) Transcribe(ctx context.Context, req *TranscriptionRequest) (*Transcription, error) {
	body, contentType, err := req.buildForm(false)
	if err != nil {
		return nil, err
	}

	httpReq, err := c.newRequest(ctx, "POST", audioTranscriptionsPath, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.config.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		return nil, normalizeError(resp.StatusCode, respBody, resp.Header.Get(requestIDHeader))
	}

	var result Transcription
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, newDecodeError(err)
	}
	result.Finished = true
	return &result, nil
}

// StreamTranscription performs a streaming audio transcription and returns
// the decoded event stream.
func (c *Client) StreamTranscription(ctx context.Context, req *TranscriptionRequest, opts ...DecodeOption) (*TranscriptionStream, error) {
	body, contentType, err := req.buildForm(true)
	if err != nil {
		return nil, err
	}

	respBody, err := c.doStream(ctx, "POST", audioTranscriptionsPath, nil, contentType, body)
	if err != nil {
		return nil, err
	}

	return DecodeTranscriptionStream(ctx, respBody, opts...), nil
}
