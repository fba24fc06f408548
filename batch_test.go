package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestBatchJobStatusTerminal(t *testing.T) {
	terminal := []BatchJobStatus{
		BatchJobStatusSuccess,
		BatchJobStatusFailed,
		BatchJobStatusTimeoutExceeded,
		BatchJobStatusCancelled,
	}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s.Terminal() = false, want true", s)
		}
	}

	active := []BatchJobStatus{
		BatchJobStatusQueued,
		BatchJobStatusRunning,
		BatchJobStatusCancellationRequested,
	}
	for _, s := range active {
		if s.Terminal() {
			t.Errorf("%s.Terminal() = true, want false", s)
		}
	}
}

func TestCreateBatchJob(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/batch/jobs" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}

		var req BatchJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Endpoint != "/v1/chat/completions" {
			t.Errorf("endpoint = %q", req.Endpoint)
		}
		if len(req.InputFiles) != 1 {
			t.Errorf("input files = %v", req.InputFiles)
		}

		json.NewEncoder(w).Encode(BatchJob{
			ID:            "batch-1",
			Model:         req.Model,
			Status:        BatchJobStatusQueued,
			TotalRequests: 100,
		})
	})

	job, err := client.CreateBatchJob(context.Background(), &BatchJobRequest{
		InputFiles: []string{"file-1"},
		Endpoint:   "/v1/chat/completions",
		Model:      ModelMistralSmallLatest,
		Metadata:   map[string]string{"job": "nightly"},
	})
	if err != nil {
		t.Fatalf("CreateBatchJob() error = %v", err)
	}
	if job.ID != "batch-1" || job.Status != BatchJobStatusQueued {
		t.Errorf("job = %+v", job)
	}
}

func TestListBatchJobs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != string(BatchJobStatusRunning) {
			t.Errorf("status = %q", got)
		}
		json.NewEncoder(w).Encode(BatchJobList{
			Data:  []BatchJob{{ID: "batch-1", Status: BatchJobStatusRunning}},
			Total: 1,
		})
	})

	list, err := client.ListBatchJobs(context.Background(), &ListBatchJobsParams{
		Status: BatchJobStatusRunning,
	})
	if err != nil {
		t.Fatalf("ListBatchJobs() error = %v", err)
	}
	if len(list.Data) != 1 {
		t.Errorf("data = %d, want 1", len(list.Data))
	}
}

func TestCancelBatchJob(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/batch/jobs/batch-7/cancel" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(BatchJob{
			ID:     "batch-7",
			Status: BatchJobStatusCancellationRequested,
		})
	})

	job, err := client.CancelBatchJob(context.Background(), "batch-7")
	if err != nil {
		t.Fatalf("CancelBatchJob() error = %v", err)
	}
	if job.Status != BatchJobStatusCancellationRequested {
		t.Errorf("status = %s", job.Status)
	}
}

func TestCreateBatchJobValidation(t *testing.T) {
	client := New("test-key")

	_, err := client.CreateBatchJob(context.Background(), &BatchJobRequest{
		InputFiles: []string{"file-1"},
		Endpoint:   "/v1/chat/completions",
	})
	if !errors.Is(err, ErrModelRequired) {
		t.Errorf("error = %v, want ErrModelRequired", err)
	}
}
