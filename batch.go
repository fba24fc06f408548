package mistral

import (
	"context"
	"net/url"
	"strconv"
)

// batchJobsPath is the API endpoint for batch inference jobs.
const batchJobsPath = "/batch/jobs"

// BatchJobStatus is the lifecycle state of a batch job.
type BatchJobStatus string

const (
	BatchJobStatusQueued                BatchJobStatus = "QUEUED"
	BatchJobStatusRunning               BatchJobStatus = "RUNNING"
	BatchJobStatusSuccess               BatchJobStatus = "SUCCESS"
	BatchJobStatusFailed                BatchJobStatus = "FAILED"
	BatchJobStatusTimeoutExceeded       BatchJobStatus = "TIMEOUT_EXCEEDED"
	BatchJobStatusCancellationRequested BatchJobStatus = "CANCELLATION_REQUESTED"
	BatchJobStatusCancelled             BatchJobStatus = "CANCELLED"
)

// Terminal reports whether the status is a final one.
func (s BatchJobStatus) Terminal() bool {
	switch s {
	case BatchJobStatusSuccess, BatchJobStatusFailed, BatchJobStatusTimeoutExceeded, BatchJobStatusCancelled:
		return true
	default:
		return false
	}
}

// BatchJobRequest represents a batch job creation request.
type BatchJobRequest struct {
	InputFiles   []string          `json:"input_files"`
	Endpoint     string            `json:"endpoint"` // e.g. "/v1/chat/completions"
	Model        ModelID           `json:"model"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	TimeoutHours int               `json:"timeout_hours,omitempty"`
}

// BatchJobError describes a per-request failure inside a job.
type BatchJobError struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// BatchJob describes a batch inference job.
type BatchJob struct {
	ID                string            `json:"id"`
	Object            string            `json:"object"`
	InputFiles        []string          `json:"input_files"`
	Endpoint          string            `json:"endpoint"`
	Model             ModelID           `json:"model"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	Errors            []BatchJobError   `json:"errors,omitempty"`
	Status            BatchJobStatus    `json:"status"`
	CreatedAt         int64             `json:"created_at"`
	StartedAt         int64             `json:"started_at,omitempty"`
	CompletedAt       int64             `json:"completed_at,omitempty"`
	TotalRequests     int               `json:"total_requests"`
	CompletedRequests int               `json:"completed_requests"`
	SucceededRequests int               `json:"succeeded_requests"`
	FailedRequests    int               `json:"failed_requests"`
	OutputFile        string            `json:"output_file,omitempty"`
	ErrorFile         string            `json:"error_file,omitempty"`
}

// BatchJobList is a paginated list of batch jobs.
type BatchJobList struct {
	Object string     `json:"object"`
	Data   []BatchJob `json:"data"`
	Total  int        `json:"total"`
}

// ListBatchJobsParams filters and paginates ListBatchJobs.
type ListBatchJobsParams struct {
	Page     int
	PageSize int
	Status   BatchJobStatus
}

// CreateBatchJob starts a new batch inference job over uploaded input files.
func (c *Client) CreateBatchJob(ctx context.Context, req *BatchJobRequest) (*BatchJob, error) {
	if req.Model == "" {
		return nil, ErrModelRequired
	}

	var job BatchJob
	if err := c.doJSON(ctx, "POST", batchJobsPath, req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListBatchJobs returns batch jobs, newest first.
func (c *Client) ListBatchJobs(ctx context.Context, params *ListBatchJobsParams) (*BatchJobList, error) {
	path := batchJobsPath
	if params != nil {
		q := url.Values{}
		if params.Page > 0 {
			q.Set("page", strconv.Itoa(params.Page))
		}
		if params.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(params.PageSize))
		}
		if params.Status != "" {
			q.Set("status", string(params.Status))
		}
		if encoded := q.Encode(); encoded != "" {
			path += "?" + encoded
		}
	}

	var list BatchJobList
	if err := c.doJSON(ctx, "GET", path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetBatchJob retrieves a batch job by ID.
func (c *Client) GetBatchJob(ctx context.Context, jobID string) (*BatchJob, error) {
	var job BatchJob
	if err := c.doJSON(ctx, "GET", batchJobsPath+"/"+jobID, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CancelBatchJob requests cancellation of a running batch job.
func (c *Client) CancelBatchJob(ctx context.Context, jobID string) (*BatchJob, error) {
	var job BatchJob
	if err := c.doJSON(ctx, "POST", batchJobsPath+"/"+jobID+"/cancel", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
