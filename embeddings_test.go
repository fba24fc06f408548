package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

func TestCreateEmbeddings(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path = %s", r.URL.Path)
		}

		var req EmbeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != ModelMistralEmbed {
			t.Errorf("model = %s", req.Model)
		}
		if len(req.Input) != 2 {
			t.Errorf("input = %d, want 2", len(req.Input))
		}

		json.NewEncoder(w).Encode(EmbeddingResponse{
			Model: req.Model,
			Data: []Embedding{
				{Index: 0, Embedding: []float32{0.1, 0.2}},
				{Index: 1, Embedding: []float32{0.3, 0.4}},
			},
			Usage: Usage{PromptTokens: 8, TotalTokens: 8},
		})
	})

	resp, err := client.CreateEmbeddings(context.Background(), &EmbeddingRequest{
		Model: ModelMistralEmbed,
		Input: []string{"first", "second"},
	})
	if err != nil {
		t.Fatalf("CreateEmbeddings() error = %v", err)
	}

	if len(resp.Data) != 2 {
		t.Fatalf("data = %d, want 2", len(resp.Data))
	}
	if resp.Data[1].Embedding[1] != 0.4 {
		t.Errorf("embedding = %v", resp.Data[1].Embedding)
	}
}

func TestCreateEmbeddingsValidation(t *testing.T) {
	client := New("test-key")

	_, err := client.CreateEmbeddings(context.Background(), &EmbeddingRequest{Input: []string{"x"}})
	if !errors.Is(err, ErrModelRequired) {
		t.Errorf("error = %v, want ErrModelRequired", err)
	}

	_, err = client.CreateEmbeddings(context.Background(), &EmbeddingRequest{Model: ModelMistralEmbed})
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("error = %v, want ErrNoInput", err)
	}
}
