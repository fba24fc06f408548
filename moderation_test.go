package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestModerate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/moderations" {
			t.Errorf("path = %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(ModerationResponse{
			Model: ModelMistralModerationLatest,
			Results: []ModerationResult{
				{
					Categories:     map[JudgedCategory]bool{CategoryPII: true, CategoryLaw: false},
					CategoryScores: map[JudgedCategory]float64{CategoryPII: 0.97, CategoryLaw: 0.01},
				},
			},
		})
	})

	resp, err := client.Moderate(context.Background(), &ModerationRequest{
		Model: ModelMistralModerationLatest,
		Input: []string{"My SSN is 000-00-0000"},
	})
	if err != nil {
		t.Fatalf("Moderate() error = %v", err)
	}

	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if !resp.Results[0].Flagged() {
		t.Error("Flagged() = false, want true")
	}
	if !resp.Results[0].Categories[CategoryPII] {
		t.Error("pii category not set")
	}
}

func TestModerateChat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/moderations" {
			t.Errorf("path = %s", r.URL.Path)
		}

		var req ChatModerationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Input) != 1 || len(req.Input[0]) != 2 {
			t.Errorf("input shape = %v", req.Input)
		}

		json.NewEncoder(w).Encode(ModerationResponse{
			Results: []ModerationResult{{Categories: map[JudgedCategory]bool{}}},
		})
	})

	resp, err := client.ModerateChat(context.Background(), &ChatModerationRequest{
		Model: ModelMistralModerationLatest,
		Input: [][]Message{
			{
				{Role: RoleUser, Content: TextContent("Hi")},
				{Role: RoleAssistant, Content: TextContent("Hello!")},
			},
		},
	})
	if err != nil {
		t.Fatalf("ModerateChat() error = %v", err)
	}
	if resp.Results[0].Flagged() {
		t.Error("Flagged() = true, want false")
	}
}

func TestModerateValidation(t *testing.T) {
	client := New("test-key")

	_, err := client.Moderate(context.Background(), &ModerationRequest{Input: []string{"x"}})
	if !errors.Is(err, ErrModelRequired) {
		t.Errorf("error = %v, want ErrModelRequired", err)
	}

	_, err = client.ModerateChat(context.Background(), &ChatModerationRequest{Model: ModelMistralModerationLatest})
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("error = %v, want ErrNoInput", err)
	}
}
