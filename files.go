package mistral

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strconv"
)

// filesPath is the API endpoint for file management.
const filesPath = "/files"

// FilePurpose declares what an uploaded file is for.
type FilePurpose string

const (
	FilePurposeFineTune FilePurpose = "fine-tune"
	FilePurposeBatch    FilePurpose = "batch"
	FilePurposeOCR      FilePurpose = "ocr"
	FilePurposeAudio    FilePurpose = "audio"
)

// File describes an uploaded file.
type File struct {
	ID         string      `json:"id"`
	Object     string      `json:"object"`
	Bytes      int64       `json:"bytes"`
	CreatedAt  int64       `json:"created_at"`
	Filename   string      `json:"filename"`
	Purpose    FilePurpose `json:"purpose"`
	SampleType string      `json:"sample_type,omitempty"`
	Source     string      `json:"source,omitempty"`
}

// FileList is a paginated list of files.
type FileList struct {
	Object string `json:"object"`
	Data   []File `json:"data"`
	Total  int    `json:"total"`
}

// FileUploadRequest represents a file upload.
type FileUploadRequest struct {
	// File is the content to upload.
	File io.Reader

	// Filename is the name recorded for the file.
	Filename string

	// Purpose declares what the file is for.
	Purpose FilePurpose
}

// ListFilesParams filters and paginates ListFiles.
type ListFilesParams struct {
	Page     int
	PageSize int
	Purpose  FilePurpose
}

// UploadFile uploads a file.
func (c *Client) UploadFile(ctx context.Context, req *FileUploadRequest) (*File, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("purpose", string(req.Purpose)); err != nil {
		return nil, fmt.Errorf("failed to write purpose field: %w", err)
	}

	part, err := w.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, req.File); err != nil {
		return nil, fmt.Errorf("failed to copy file content: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	httpReq, err := c.newRequest(ctx, "POST", filesPath, &buf)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

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

	var file File
	if err := json.Unmarshal(respBody, &file); err != nil {
		return nil, newDecodeError(err)
	}
	return &file, nil
}

// ListFiles returns uploaded files, newest first.
func (c *Client) ListFiles(ctx context.Context, params *ListFilesParams) (*FileList, error) {
	path := filesPath
	if params != nil {
		q := url.Values{}
		if params.Page > 0 {
			q.Set("page", strconv.Itoa(params.Page))
		}
		if params.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(params.PageSize))
		}
		if params.Purpose != "" {
			q.Set("purpose", string(params.Purpose))
		}
		if encoded := q.Encode(); encoded != "" {
			path += "?" + encoded
		}
	}

	var list FileList
	if err := c.doJSON(ctx, "GET", path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetFile retrieves a file's metadata by ID.
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	var file File
	if err := c.doJSON(ctx, "GET", filesPath+"/"+fileID, nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// DeleteFile removes a file by ID.
func (c *Client) DeleteFile(ctx context.Context, fileID string) error {
	return c.doJSON(ctx, "DELETE", filesPath+"/"+fileID, nil, nil)
}

// DownloadFile returns the raw content of a file. The caller owns closing
// the returned reader.
func (c *Client) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	req, err := c.newRequest(ctx, "GET", filesPath+"/"+fileID+"/content", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, newNetworkError(err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, normalizeError(resp.StatusCode, respBody, resp.Header.Get(requestIDHeader))
	}

	return resp.Body, nil
}
