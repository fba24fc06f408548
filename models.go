package mistral

import "context"

// modelsPath is the API endpoint for model listing.
const modelsPath = "/models"

// Model constants for the platform's model families.
const (
	// General-purpose chat models
	ModelMistralLargeLatest  ModelID = "mistral-large-latest"
	ModelMistralMediumLatest ModelID = "mistral-medium-latest"
	ModelMistralSmallLatest  ModelID = "mistral-small-latest"
	ModelMinistral8BLatest   ModelID = "ministral-8b-latest"
	ModelMinistral3BLatest   ModelID = "ministral-3b-latest"
	ModelOpenMistralNemo     ModelID = "open-mistral-nemo"

	// Reasoning models
	ModelMagistralMediumLatest ModelID = "magistral-medium-latest"
	ModelMagistralSmallLatest  ModelID = "magistral-small-latest"

	// Code models
	ModelCodestralLatest ModelID = "codestral-latest"
	ModelDevstralSmall   ModelID = "devstral-small-latest"

	// Vision models
	ModelPixtralLargeLatest ModelID = "pixtral-large-latest"
	ModelPixtral12B         ModelID = "pixtral-12b"

	// Embedding models
	ModelMistralEmbed   ModelID = "mistral-embed"
	ModelCodestralEmbed ModelID = "codestral-embed"

	// OCR models
	ModelMistralOCRLatest ModelID = "mistral-ocr-latest"

	// Audio transcription models
	ModelVoxtralSmallLatest    ModelID = "voxtral-small-latest"
	ModelVoxtralMiniLatest     ModelID = "voxtral-mini-latest"
	ModelVoxtralMiniTranscribe ModelID = "voxtral-mini-transcribe"

	// Moderation models
	ModelMistralModerationLatest ModelID = "mistral-moderation-latest"
)

// Feature represents a capability that a model may support.
type Feature string

const (
	FeatureChat          Feature = "chat"
	FeatureChatStreaming Feature = "chat_streaming"
	FeatureToolCalling   Feature = "tool_calling"
	FeatureVision        Feature = "vision"
	FeatureEmbeddings    Feature = "embeddings"
	FeatureOCR           Feature = "ocr"
	FeatureTranscription Feature = "transcription"
	FeatureModeration    Feature = "moderation"
	FeatureFineTuning    Feature = "fine_tuning"
)

// ModelInfo describes a known model.
type ModelInfo struct {
	ID           ModelID   `json:"id"`
	DisplayName  string    `json:"display_name"`
	Capabilities []Feature `json:"capabilities"`
}

// HasCapability reports whether the model supports the given feature.
func (m ModelInfo) HasCapability(f Feature) bool {
	for _, c := range m.Capabilities {
		if c == f {
			return true
		}
	}
	return false
}

// models is the static table of known models. Pure data.
var models = []ModelInfo{
	{
		ID:          ModelMistralLargeLatest,
		DisplayName: "Mistral Large",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling, FeatureVision, FeatureFineTuning,
		},
	},
	{
		ID:          ModelMistralMediumLatest,
		DisplayName: "Mistral Medium",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling, FeatureVision, FeatureFineTuning,
		},
	},
	{
		ID:          ModelMistralSmallLatest,
		DisplayName: "Mistral Small",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling, FeatureVision, FeatureFineTuning,
		},
	},
	{
		ID:          ModelMinistral8BLatest,
		DisplayName: "Ministral 8B",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling, FeatureFineTuning,
		},
	},
	{
		ID:          ModelMinistral3BLatest,
		DisplayName: "Ministral 3B",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling, FeatureFineTuning,
		},
	},
	{
		ID:          ModelOpenMistralNemo,
		DisplayName: "Mistral Nemo",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling, FeatureFineTuning,
		},
	},
	{
		ID:          ModelMagistralMediumLatest,
		DisplayName: "Magistral Medium",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling,
		},
	},
	{
		ID:          ModelMagistralSmallLatest,
		DisplayName: "Magistral Small",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling,
		},
	},
	{
		ID:          ModelCodestralLatest,
		DisplayName: "Codestral",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling, FeatureFineTuning,
		},
	},
	{
		ID:          ModelDevstralSmall,
		DisplayName: "Devstral Small",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling,
		},
	},
	{
		ID:          ModelPixtralLargeLatest,
		DisplayName: "Pixtral Large",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureToolCalling, FeatureVision,
		},
	},
	{
		ID:          ModelPixtral12B,
		DisplayName: "Pixtral 12B",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureVision,
		},
	},
	{
		ID:          ModelMistralEmbed,
		DisplayName: "Mistral Embed",
		Capabilities: []Feature{
			FeatureEmbeddings,
		},
	},
	{
		ID:          ModelCodestralEmbed,
		DisplayName: "Codestral Embed",
		Capabilities: []Feature{
			FeatureEmbeddings,
		},
	},
	{
		ID:          ModelMistralOCRLatest,
		DisplayName: "Mistral OCR",
		Capabilities: []Feature{
			FeatureOCR,
		},
	},
	{
		ID:          ModelVoxtralSmallLatest,
		DisplayName: "Voxtral Small",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureTranscription,
		},
	},
	{
		ID:          ModelVoxtralMiniLatest,
		DisplayName: "Voxtral Mini",
		Capabilities: []Feature{
			FeatureChat, FeatureChatStreaming, FeatureTranscription,
		},
	},
	{
		ID:          ModelVoxtralMiniTranscribe,
		DisplayName: "Voxtral Mini Transcribe",
		Capabilities: []Feature{
			FeatureTranscription,
		},
	},
	{
		ID:          ModelMistralModerationLatest,
		DisplayName: "Mistral Moderation",
		Capabilities: []Feature{
			FeatureModeration,
		},
	},
}

// modelRegistry is a map for quick model lookup by ID.
var modelRegistry = buildModelRegistry()

// buildModelRegistry creates a map from model ID to ModelInfo.
func buildModelRegistry() map[ModelID]*ModelInfo {
	registry := make(map[ModelID]*ModelInfo, len(models))
	for i := range models {
		registry[models[i].ID] = &models[i]
	}
	return registry
}

// Models returns the static list of known models.
func Models() []ModelInfo {
	// Return a copy to prevent mutation
	result := make([]ModelInfo, len(models))
	copy(result, models)
	return result
}

// GetModelInfo returns the ModelInfo for a given model ID, or nil if not
// known. Unknown IDs are still accepted by the API methods.
func GetModelInfo(id ModelID) *ModelInfo {
	return modelRegistry[id]
}

// APIModel is a model entry as reported by the service.
type APIModel struct {
	ID          ModelID `json:"id"`
	Object      string  `json:"object"`
	Created     int64   `json:"created"`
	OwnedBy     string  `json:"owned_by"`
	Name        string  `json:"name,omitempty"`
	Description string  `json:"description,omitempty"`
}

// APIModelList is the response of the model listing endpoint.
type APIModelList struct {
	Object string     `json:"object"`
	Data   []APIModel `json:"data"`
}

// ListModels returns the models available to the authenticated account.
func (c *Client) ListModels(ctx context.Context) (*APIModelList, error) {
	var list APIModelList
	if err := c.doJSON(ctx, "GET", modelsPath, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetModel retrieves one model by ID from the service.
func (c *Client) GetModel(ctx context.Context, id ModelID) (*APIModel, error) {
	var model APIModel
	if err := c.doJSON(ctx, "GET", modelsPath+"/"+string(id), nil, &model); err != nil {
		return nil, err
	}
	return &model, nil
}
