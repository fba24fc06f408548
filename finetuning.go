package mistral

import (
	"context"
	"net/url"
	"strconv"
)

// fineTuningJobsPath is the API endpoint for fine-tuning jobs.
const fineTuningJobsPath = "/fine_tuning/jobs"

// FineTuningJobStatus is the lifecycle state of a fine-tuning job.
type FineTuningJobStatus string

const (
	FineTuningJobStatusQueued                FineTuningJobStatus = "QUEUED"
	FineTuningJobStatusStarted               FineTuningJobStatus = "STARTED"
	FineTuningJobStatusValidated             FineTuningJobStatus = "VALIDATED"
	FineTuningJobStatusRunning               FineTuningJobStatus = "RUNNING"
	FineTuningJobStatusSuccess               FineTuningJobStatus = "SUCCESS"
	FineTuningJobStatusFailed                FineTuningJobStatus = "FAILED_VALIDATION"
	FineTuningJobStatusCancellationRequested FineTuningJobStatus = "CANCELLATION_REQUESTED"
	FineTuningJobStatusCancelled             FineTuningJobStatus = "CANCELLED"
)

// Hyperparameters tune the training run.
type Hyperparameters struct {
	TrainingSteps *int     `json:"training_steps,omitempty"`
	LearningRate  *float64 `json:"learning_rate,omitempty"`
	Epochs        *float64 `json:"epochs,omitempty"`
}

// FineTuningJobRequest represents a fine-tuning job creation request.
type FineTuningJobRequest struct {
	Model           ModelID          `json:"model"`
	TrainingFiles   []string         `json:"training_files"`
	ValidationFiles []string         `json:"validation_files,omitempty"`
	Hyperparameters *Hyperparameters `json:"hyperparameters,omitempty"`
	Suffix          string           `json:"suffix,omitempty"`

	// AutoStart starts training immediately after validation. When false
	// the job waits in VALIDATED until StartFineTuningJob is called.
	AutoStart bool `json:"auto_start,omitempty"`
}

// FineTuningJob describes a fine-tuning job.
type FineTuningJob struct {
	ID              string              `json:"id"`
	Object          string              `json:"object"`
	Model           ModelID             `json:"model"`
	FineTunedModel  ModelID             `json:"fine_tuned_model,omitempty"`
	TrainingFiles   []string            `json:"training_files"`
	ValidationFiles []string            `json:"validation_files,omitempty"`
	Hyperparameters *Hyperparameters    `json:"hyperparameters,omitempty"`
	Suffix          string              `json:"suffix,omitempty"`
	Status          FineTuningJobStatus `json:"status"`
	CreatedAt       int64               `json:"created_at"`
	ModifiedAt      int64               `json:"modified_at,omitempty"`
	TrainedTokens   int64               `json:"trained_tokens,omitempty"`
}

// FineTuningJobList is a paginated list of fine-tuning jobs.
type FineTuningJobList struct {
	Object string          `json:"object"`
	Data   []FineTuningJob `json:"data"`
	Total  int             `json:"total"`
}

// ListFineTuningJobsParams filters and paginates ListFineTuningJobs.
type ListFineTuningJobsParams struct {
	Page     int
	PageSize int
	Status   FineTuningJobStatus
}

// CreateFineTuningJob creates a new fine-tuning job over uploaded training
// files.
func (c *Client) CreateFineTuningJob(ctx context.Context, req *FineTuningJobRequest) (*FineTuningJob, error) {
	if req.Model == "" {
		return nil, ErrModelRequired
	}

	var job FineTuningJob
	if err := c.doJSON(ctx, "POST", fineTuningJobsPath, req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListFineTuningJobs returns fine-tuning jobs, newest first.
func (c *Client) ListFineTuningJobs(ctx context.Context, params *ListFineTuningJobsParams) (*FineTuningJobList, error) {
	path := fineTuningJobsPath
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

	var list FineTuningJobList
	if err := c.doJSON(ctx, "GET", path, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetFineTuningJob retrieves a fine-tuning job by ID.
func (c *Client) GetFineTuningJob(ctx context.Context, jobID string) (*FineTuningJob, error) {
	var job FineTuningJob
	if err := c.doJSON(ctx, "GET", fineTuningJobsPath+"/"+jobID, nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// StartFineTuningJob starts a validated job that was created without
// auto-start.
func (c *Client) StartFineTuningJob(ctx context.Context, jobID string) (*FineTuningJob, error) {
	var job FineTuningJob
	if err := c.doJSON(ctx, "POST", fineTuningJobsPath+"/"+jobID+"/start", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CancelFineTuningJob requests cancellation of a fine-tuning job.
func (c *Client) CancelFineTuningJob(ctx context.Context, jobID string) (*FineTuningJob, error) {
	var job FineTuningJob
	if err := c.doJSON(ctx, "POST", fineTuningJobsPath+"/"+jobID+"/cancel", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}
