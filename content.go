package mistral

import (
	"encoding/json"
	"fmt"
)

// MessageContent is a tagged variant: either plain text or an ordered list
// of structured chunks. On the wire the two forms are a JSON string and a
// JSON array; modeling the duality explicitly avoids runtime type
// inspection of an untyped field.
//
// When Chunks is non-empty it takes precedence over Text.
type MessageContent struct {
	Text   string
	Chunks []ContentChunk
}

// TextContent returns plain-text message content.
func TextContent(s string) MessageContent {
	return MessageContent{Text: s}
}

// ChunkContent returns structured message content.
func ChunkContent(chunks ...ContentChunk) MessageContent {
	return MessageContent{Chunks: chunks}
}

// IsZero reports whether the content holds neither text nor chunks.
func (c MessageContent) IsZero() bool {
	return c.Text == "" && len(c.Chunks) == 0
}

// String returns the plain text, or the concatenated text chunks for
// structured content.
func (c MessageContent) String() string {
	if len(c.Chunks) == 0 {
		return c.Text
	}
	var out string
	for _, chunk := range c.Chunks {
		if t, ok := chunk.(TextChunk); ok {
			out += t.Text
		}
	}
	return out
}

// MarshalJSON encodes plain text as a JSON string and structured content as
// a JSON array of typed chunks.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if len(c.Chunks) == 0 {
		return json.Marshal(c.Text)
	}

	raw := make([]map[string]any, len(c.Chunks))
	for i, chunk := range c.Chunks {
		m, err := chunk.chunkJSON()
		if err != nil {
			return nil, err
		}
		raw[i] = m
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes either wire form. Chunks with an unrecognized type
// are dropped rather than failing the whole message.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = MessageContent{Text: s}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("content is neither string nor array: %w", err)
	}

	chunks := make([]ContentChunk, 0, len(raw))
	for _, r := range raw {
		chunk, err := unmarshalChunk(r)
		if err != nil {
			return err
		}
		if chunk != nil {
			chunks = append(chunks, chunk)
		}
	}
	*c = MessageContent{Chunks: chunks}
	return nil
}

// ContentChunk is one structured part of a multimodal message.
type ContentChunk interface {
	// ChunkType returns the wire discriminator for this chunk.
	ChunkType() string

	chunkJSON() (map[string]any, error)
}

// TextChunk is a text part of structured content.
type TextChunk struct {
	Text string
}

// ChunkType returns the wire discriminator for TextChunk.
func (t TextChunk) ChunkType() string { return "text" }

func (t TextChunk) chunkJSON() (map[string]any, error) {
	return map[string]any{"type": "text", "text": t.Text}, nil
}

// ImageURLChunk is an image part, referenced by HTTPS URL or data URL.
type ImageURLChunk struct {
	ImageURL string
}

// ChunkType returns the wire discriminator for ImageURLChunk.
func (i ImageURLChunk) ChunkType() string { return "image_url" }

func (i ImageURLChunk) chunkJSON() (map[string]any, error) {
	return map[string]any{"type": "image_url", "image_url": i.ImageURL}, nil
}

// DocumentURLChunk is a document part for document understanding.
type DocumentURLChunk struct {
	DocumentURL  string
	DocumentName string
}

// ChunkType returns the wire discriminator for DocumentURLChunk.
func (d DocumentURLChunk) ChunkType() string { return "document_url" }

func (d DocumentURLChunk) chunkJSON() (map[string]any, error) {
	m := map[string]any{"type": "document_url", "document_url": d.DocumentURL}
	if d.DocumentName != "" {
		m["document_name"] = d.DocumentName
	}
	return m, nil
}

// unmarshalChunk decodes a single chunk by its type discriminator.
// Unknown discriminators return (nil, nil) and are skipped by the caller.
func unmarshalChunk(data []byte) (ContentChunk, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	switch probe.Type {
	case "text":
		var t struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, err
		}
		return TextChunk{Text: t.Text}, nil

	case "image_url":
		var i struct {
			ImageURL string `json:"image_url"`
		}
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, err
		}
		return ImageURLChunk{ImageURL: i.ImageURL}, nil

	case "document_url":
		var d struct {
			DocumentURL  string `json:"document_url"`
			DocumentName string `json:"document_name"`
		}
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, err
		}
		return DocumentURLChunk{DocumentURL: d.DocumentURL, DocumentName: d.DocumentName}, nil

	default:
		return nil, nil
	}
}
