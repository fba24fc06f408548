package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestCreateFineTuningJob(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/fine_tuning/jobs" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}

		var req FineTuningJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.TrainingFiles) != 1 {
			t.Errorf("training files = %v", req.TrainingFiles)
		}
		if req.Hyperparameters == nil || req.Hyperparameters.TrainingSteps == nil || *req.Hyperparameters.TrainingSteps != 50 {
			t.Errorf("hyperparameters = %+v", req.Hyperparameters)
		}
		if req.AutoStart {
			t.Error("auto_start = true, want false")
		}

		json.NewEncoder(w).Encode(FineTuningJob{
			ID:     "ft-1",
			Model:  req.Model,
			Status: FineTuningJobStatusQueued,
		})
	})

	steps := 50
	job, err := client.CreateFineTuningJob(context.Background(), &FineTuningJobRequest{
		Model:           ModelMistralSmallLatest,
		TrainingFiles:   []string{"file-1"},
		Hyperparameters: &Hyperparameters{TrainingSteps: &steps},
		Suffix:          "support-bot",
	})
	if err != nil {
		t.Fatalf("CreateFineTuningJob() error = %v", err)
	}
	if job.ID != "ft-1" {
		t.Errorf("ID = %q", job.ID)
	}
}

func TestStartFineTuningJob(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/fine_tuning/jobs/ft-2/start" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(FineTuningJob{
			ID:     "ft-2",
			Status: FineTuningJobStatusStarted,
		})
	})

	job, err := client.StartFineTuningJob(context.Background(), "ft-2")
	if err != nil {
		t.Fatalf("StartFineTuningJob() error = %v", err)
	}
	if job.Status != FineTuningJobStatusStarted {
		t.Errorf("status = %s", job.Status)
	}
}

func TestListFineTuningJobs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("status"); got != string(FineTuningJobStatusRunning) {
			t.Errorf("status = %q", got)
		}
		json.NewEncoder(w).Encode(FineTuningJobList{
			Data: []FineTuningJob{
				{ID: "ft-1", Status: FineTuningJobStatusRunning, TrainedTokens: 1024},
			},
			Total: 1,
		})
	})

	list, err := client.ListFineTuningJobs(context.Background(), &ListFineTuningJobsParams{
		Status: FineTuningJobStatusRunning,
	})
	if err != nil {
		t.Fatalf("ListFineTuningJobs() error = %v", err)
	}
	if len(list.Data) != 1 || list.Data[0].TrainedTokens != 1024 {
		t.Errorf("list = %+v", list)
	}
}

func TestCreateFineTuningJobValidation(t *testing.T) {
	client := New("test-key")

	_, err := client.CreateFineTuningJob(context.Background(), &FineTuningJobRequest{
		TrainingFiles: []string{"file-1"},
	})
	if !errors.Is(err, ErrModelRequired) {
		t.Errorf("error = %v, want ErrModelRequired", err)
	}
}
