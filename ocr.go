package mistral

import (
	"context"
	"encoding/json"
)

// ocrPath is the API endpoint for document OCR.
const ocrPath = "/ocr"

// OCRDocument is the source to process: exactly one of DocumentURL or
// ImageURL should be set. The wire shape is discriminated by a type field.
type OCRDocument struct {
	// DocumentURL is an HTTPS URL or data URL of a PDF document.
	DocumentURL string

	// DocumentName is the optional display name for DocumentURL.
	DocumentName string

	// ImageURL is an HTTPS URL or data URL of an image.
	ImageURL string
}

// MarshalJSON encodes the source as its discriminated wire form.
func (d OCRDocument) MarshalJSON() ([]byte, error) {
	if d.ImageURL != "" {
		return json.Marshal(map[string]any{
			"type":      "image_url",
			"image_url": d.ImageURL,
		})
	}
	m := map[string]any{
		"type":         "document_url",
		"document_url": d.DocumentURL,
	}
	if d.DocumentName != "" {
		m["document_name"] = d.DocumentName
	}
	return json.Marshal(m)
}

// OCRRequest represents a document OCR request.
type OCRRequest struct {
	Model              ModelID     `json:"model"`
	Document           OCRDocument `json:"document"`
	Pages              []int       `json:"pages,omitempty"`
	IncludeImageBase64 bool        `json:"include_image_base64,omitempty"`
}

// OCRPageDimensions describes the pixel size and resolution of a page.
type OCRPageDimensions struct {
	DPI    int `json:"dpi"`
	Height int `json:"height"`
	Width  int `json:"width"`
}

// OCRImage is an image extracted from a page.
type OCRImage struct {
	ID           string `json:"id"`
	TopLeftX     int    `json:"top_left_x"`
	TopLeftY     int    `json:"top_left_y"`
	BottomRightX int    `json:"bottom_right_x"`
	BottomRightY int    `json:"bottom_right_y"`
	ImageBase64  string `json:"image_base64,omitempty"`
}

// OCRPage is the recognized content of one page.
type OCRPage struct {
	Index      int               `json:"index"`
	Markdown   string            `json:"markdown"`
	Images     []OCRImage        `json:"images,omitempty"`
	Dimensions OCRPageDimensions `json:"dimensions"`
}

// OCRUsageInfo tracks document consumption.
type OCRUsageInfo struct {
	PagesProcessed int `json:"pages_processed"`
	DocSizeBytes   int `json:"doc_size_bytes"`
}

// OCRResponse contains the recognized pages in order.
type OCRResponse struct {
	Model     ModelID      `json:"model"`
	Pages     []OCRPage    `json:"pages"`
	UsageInfo OCRUsageInfo `json:"usage_info"`
}

// ProcessDocument runs OCR over a document or image source.
func (c *Client) ProcessDocument(ctx context.Context, req *OCRRequest) (*OCRResponse, error) {
	if req.Model == "" {
		return nil, ErrModelRequired
	}
	if req.Document.DocumentURL == "" && req.Document.ImageURL == "" {
		return nil, ErrNoDocument
	}

	var resp OCRResponse
	if err := c.doJSON(ctx, "POST", ocrPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
