package mistral

import (
	"context"
	"time"
)

// chatCompletionsPath is the API endpoint for chat completions.
const chatCompletionsPath = "/chat/completions"

// ChatRequest represents a chat completion request.
type ChatRequest struct {
	Model            ModelID         `json:"model"`
	Messages         []Message       `json:"messages"`
	Temperature      *float64        `json:"temperature,omitempty"`
	TopP             *float64        `json:"top_p,omitempty"`
	MaxTokens        *int            `json:"max_tokens,omitempty"`
	Stream           bool            `json:"stream,omitempty"`
	Stop             []string        `json:"stop,omitempty"`
	RandomSeed       *int            `json:"random_seed,omitempty"`
	ResponseFormat   *ResponseFormat `json:"response_format,omitempty"`
	Tools            []Tool          `json:"tools,omitempty"`
	ToolChoice       string          `json:"tool_choice,omitempty"`
	PresencePenalty  *float64        `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64        `json:"frequency_penalty,omitempty"`
	SafePrompt       bool            `json:"safe_prompt,omitempty"`
}

// ChatChoice is a single completion alternative.
type ChatChoice struct {
	Index        int          `json:"index"`
	Message      Message      `json:"message"`
	FinishReason FinishReason `json:"finish_reason"`
}

// ChatResponse represents a chat completion response.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   ModelID      `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

// Output returns the text content of the first choice.
func (r *ChatResponse) Output() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content.String()
}

// ToolCalls returns the tool calls of the first choice.
func (r *ChatResponse) ToolCalls() []ToolCall {
	if len(r.Choices) == 0 {
		return nil
	}
	return r.Choices[0].Message.ToolCalls
}

// CreateChatCompletion sends a non-streaming chat request.
func (c *Client) CreateChatCompletion(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	body := *req
	body.Stream = false

	var resp ChatResponse
	if err := c.doJSON(ctx, "POST", chatCompletionsPath, &body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Chat returns a ChatBuilder for constructing and executing a chat request.
func (c *Client) Chat(model ModelID) *ChatBuilder {
	return &ChatBuilder{
		client: c,
		req: ChatRequest{
			Model: model,
		},
	}
}

// ChatBuilder provides a fluent API for building chat requests.
// ChatBuilder is NOT thread-safe and should not be shared across goroutines.
type ChatBuilder struct {
	client *Client
	req    ChatRequest
}

// System appends a system message.
func (b *ChatBuilder) System(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleSystem, Content: TextContent(s)})
	return b
}

// User appends a user message.
func (b *ChatBuilder) User(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleUser, Content: TextContent(s)})
	return b
}

// Assistant appends an assistant message.
func (b *ChatBuilder) Assistant(s string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleAssistant, Content: TextContent(s)})
	return b
}

// ToolResult appends a tool result message for the given tool call ID.
func (b *ChatBuilder) ToolResult(toolCallID, result string) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{
		Role:       RoleTool,
		Content:    TextContent(result),
		ToolCallID: toolCallID,
	})
	return b
}

// Messages appends pre-built messages, e.g. for conversation replay.
func (b *ChatBuilder) Messages(msgs ...Message) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, msgs...)
	return b
}

// UserChunks appends a user message with structured content chunks.
func (b *ChatBuilder) UserChunks(chunks ...ContentChunk) *ChatBuilder {
	b.req.Messages = append(b.req.Messages, Message{Role: RoleUser, Content: ChunkContent(chunks...)})
	return b
}

// UserWithImageURL adds a user message with text and an image URL.
// This is a convenience method for common vision use cases.
func (b *ChatBuilder) UserWithImageURL(text, imageURL string) *ChatBuilder {
	return b.UserChunks(TextChunk{Text: text}, ImageURLChunk{ImageURL: imageURL})
}

// UserWithDocumentURL adds a user message with text and a document URL.
// This is a convenience method for document understanding use cases.
func (b *ChatBuilder) UserWithDocumentURL(text, documentURL string) *ChatBuilder {
	return b.UserChunks(TextChunk{Text: text}, DocumentURLChunk{DocumentURL: documentURL})
}

// Temperature sets the temperature parameter.
func (b *ChatBuilder) Temperature(v float64) *ChatBuilder {
	b.req.Temperature = &v
	return b
}

// TopP sets the nucleus sampling parameter.
func (b *ChatBuilder) TopP(v float64) *ChatBuilder {
	b.req.TopP = &v
	return b
}

// MaxTokens sets the maximum tokens parameter.
func (b *ChatBuilder) MaxTokens(n int) *ChatBuilder {
	b.req.MaxTokens = &n
	return b
}

// Stop sets the stop sequences.
func (b *ChatBuilder) Stop(sequences ...string) *ChatBuilder {
	b.req.Stop = sequences
	return b
}

// RandomSeed sets the seed for deterministic sampling.
func (b *ChatBuilder) RandomSeed(seed int) *ChatBuilder {
	b.req.RandomSeed = &seed
	return b
}

// JSONMode constrains the output to a JSON object.
func (b *ChatBuilder) JSONMode() *ChatBuilder {
	b.req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	return b
}

// Tools sets the tools available for the request.
func (b *ChatBuilder) Tools(ts ...Tool) *ChatBuilder {
	b.req.Tools = ts
	return b
}

// ToolChoice sets the tool choice mode ("auto", "any", "none").
func (b *ChatBuilder) ToolChoice(mode string) *ChatBuilder {
	b.req.ToolChoice = mode
	return b
}

// SafePrompt enables the platform guardrail prompt.
func (b *ChatBuilder) SafePrompt() *ChatBuilder {
	b.req.SafePrompt = true
	return b
}

// Clone returns an independent copy of the builder. Use it to fan out
// variants of a base request across goroutines.
func (b *ChatBuilder) Clone() *ChatBuilder {
	clone := &ChatBuilder{
		client: b.client,
		req:    b.req,
	}
	clone.req.Messages = append([]Message(nil), b.req.Messages...)
	clone.req.Stop = append([]string(nil), b.req.Stop...)
	clone.req.Tools = append([]Tool(nil), b.req.Tools...)
	return clone
}

// validate checks that the request is valid.
func (b *ChatBuilder) validate() error {
	if b.req.Model == "" {
		return ErrModelRequired
	}
	if len(b.req.Messages) == 0 {
		return ErrNoMessages
	}
	for _, msg := range b.req.Messages {
		if msg.Content.IsZero() && len(msg.ToolCalls) == 0 {
			return ErrNoMessages
		}
	}
	return nil
}

// GetResponse executes the chat request and returns the response.
// It applies validation, telemetry, and retry logic.
func (b *ChatBuilder) GetResponse(ctx context.Context) (*ChatResponse, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	b.client.telemetry.OnRequestStart(RequestStartEvent{
		Operation: "chat",
		Model:     b.req.Model,
		Start:     start,
	})

	var resp *ChatResponse
	var err error

retryLoop:
	for attempt := 0; ; attempt++ {
		resp, err = b.client.CreateChatCompletion(ctx, &b.req)
		if err == nil {
			break
		}

		delay, shouldRetry := b.client.retry.NextDelay(attempt, err)
		if !shouldRetry {
			break
		}

		select {
		case <-ctx.Done():
			err = ctx.Err()
			break retryLoop
		case <-time.After(delay):
			continue
		}
	}

	usage := Usage{}
	if resp != nil {
		usage = resp.Usage
	}
	b.client.telemetry.OnRequestEnd(RequestEndEvent{
		Operation: "chat",
		Model:     b.req.Model,
		Start:     start,
		End:       time.Now(),
		Usage:     usage,
		Err:       err,
	})

	return resp, err
}

// Stream executes the chat request and returns a streaming response.
// It applies validation and telemetry. No retries are performed for
// streaming requests.
func (b *ChatBuilder) Stream(ctx context.Context) (*ChatStream, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	b.client.telemetry.OnRequestStart(RequestStartEvent{
		Operation: "chat.stream",
		Model:     b.req.Model,
		Start:     start,
	})

	stream, err := b.client.StreamChatCompletion(ctx, &b.req)
	if err != nil {
		b.client.telemetry.OnRequestEnd(RequestEndEvent{
			Operation: "chat.stream",
			Model:     b.req.Model,
			Start:     start,
			End:       time.Now(),
			Err:       err,
		})
		return nil, err
	}

	return wrapStreamWithTelemetry(stream, b.client.telemetry, b.req.Model, start), nil
}

// wrapStreamWithTelemetry wraps a ChatStream to emit telemetry on completion.
func wrapStreamWithTelemetry(stream *ChatStream, hook TelemetryHook, model ModelID, start time.Time) *ChatStream {
	finalCh := make(chan *ChatResponse, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(finalCh)
		defer close(errCh)

		var finalResp *ChatResponse
		var finalErr error

		// Final and Err close together; a closed receive on one means the
		// outcome, if any, is waiting on the other.
		select {
		case resp, ok := <-stream.Final:
			if ok {
				finalResp = resp
				finalCh <- resp
			} else if err, ok := <-stream.Err; ok {
				finalErr = err
				errCh <- err
			}
		case err, ok := <-stream.Err:
			if ok {
				finalErr = err
				errCh <- err
			} else if resp, ok := <-stream.Final; ok {
				finalResp = resp
				finalCh <- resp
			}
		}

		usage := Usage{}
		if finalResp != nil {
			usage = finalResp.Usage
		}
		hook.OnRequestEnd(RequestEndEvent{
			Operation: "chat.stream",
			Model:     model,
			Start:     start,
			End:       time.Now(),
			Usage:     usage,
			Err:       finalErr,
		})
	}()

	return &ChatStream{
		Ch:    stream.Ch,
		Err:   errCh,
		Final: finalCh,
	}
}
