package mistral

import "context"

// Moderation API endpoints.
const (
	moderationsPath     = "/moderations"
	chatModerationsPath = "/chat/moderations"
)

// Moderation policy categories.
const (
	CategorySexual                JudgedCategory = "sexual"
	CategoryHateAndDiscrimination JudgedCategory = "hate_and_discrimination"
	CategoryViolenceAndThreats    JudgedCategory = "violence_and_threats"
	CategoryDangerousAndCriminal  JudgedCategory = "dangerous_and_criminal_content"
	CategorySelfHarm              JudgedCategory = "selfharm"
	CategoryHealth                JudgedCategory = "health"
	CategoryFinancial             JudgedCategory = "financial"
	CategoryLaw                   JudgedCategory = "law"
	CategoryPII                   JudgedCategory = "pii"
)

// JudgedCategory is a moderation policy category name.
type JudgedCategory string

// ModerationRequest represents a raw-text moderation request.
type ModerationRequest struct {
	Model ModelID  `json:"model"`
	Input []string `json:"input"`
}

// ChatModerationRequest represents a conversational moderation request.
// Each element of Input is one conversation to classify.
type ChatModerationRequest struct {
	Model ModelID     `json:"model"`
	Input [][]Message `json:"input"`
}

// ModerationResult is the classification of a single input.
type ModerationResult struct {
	Categories     map[JudgedCategory]bool    `json:"categories"`
	CategoryScores map[JudgedCategory]float64 `json:"category_scores"`
}

// Flagged reports whether any category was triggered.
func (r ModerationResult) Flagged() bool {
	for _, v := range r.Categories {
		if v {
			return true
		}
	}
	return false
}

// ModerationResponse contains classifications for each input, in order.
type ModerationResponse struct {
	ID      string             `json:"id"`
	Model   ModelID            `json:"model"`
	Results []ModerationResult `json:"results"`
}

// Moderate classifies raw text inputs against the moderation policy.
func (c *Client) Moderate(ctx context.Context, req *ModerationRequest) (*ModerationResponse, error) {
	if req.Model == "" {
		return nil, ErrModelRequired
	}
	if len(req.Input) == 0 {
		return nil, ErrNoInput
	}

	var resp ModerationResponse
	if err := c.doJSON(ctx, "POST", moderationsPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ModerateChat classifies conversations against the moderation policy.
// The last message of each conversation is judged in context.
func (c *Client) ModerateChat(ctx context.Context, req *ChatModerationRequest) (*ModerationResponse, error) {
	if req.Model == "" {
		return nil, ErrModelRequired
	}
	if len(req.Input) == 0 {
		return nil, ErrNoInput
	}

	var resp ModerationResponse
	if err := c.doJSON(ctx, "POST", chatModerationsPath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
