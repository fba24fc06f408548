package mistral

import "context"

// embeddingsPath is the API endpoint for embeddings.
const embeddingsPath = "/embeddings"

// EncodingFormat specifies the embedding output format.
type EncodingFormat string

const (
	// EncodingFormatFloat returns embeddings as float arrays.
	EncodingFormatFloat EncodingFormat = "float"
	// EncodingFormatBase64 returns embeddings as base64-encoded strings.
	EncodingFormatBase64 EncodingFormat = "base64"
)

// EmbeddingRequest represents a request to generate embeddings.
type EmbeddingRequest struct {
	Model           ModelID        `json:"model"`
	Input           []string       `json:"input"`
	EncodingFormat  EncodingFormat `json:"encoding_format,omitempty"`
	OutputDimension *int           `json:"output_dimension,omitempty"`
	OutputDType     string         `json:"output_dtype,omitempty"` // "float", "int8", "uint8", "binary", "ubinary"
}

// Embedding is a single embedding result.
type Embedding struct {
	Index     int       `json:"index"`
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
}

// EmbeddingResponse contains the generated embeddings.
type EmbeddingResponse struct {
	ID     string      `json:"id"`
	Object string      `json:"object"`
	Model  ModelID     `json:"model"`
	Data   []Embedding `json:"data"`
	Usage  Usage       `json:"usage"`
}

// CreateEmbeddings generates embeddings for the given input texts.
func (c *Client) CreateEmbeddings(ctx context.Context, req *EmbeddingRequest) (*EmbeddingResponse, error) {
	if req.Model == "" {
		return nil, ErrModelRequired
	}
	if len(req.Input) == 0 {
		return nil, ErrNoInput
	}

	var resp EmbeddingResponse
	if err := c.doJSON(ctx, "POST", embeddingsPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
