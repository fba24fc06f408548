package mistral

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/petal-labs/mistral/internal/sse"
)

// doneSentinel is the end-of-stream marker payload. It is recognized and
// dropped before JSON parsing is attempted.
const doneSentinel = "[DONE]"

// ChatChunk is a single streamed text delta.
type ChatChunk struct {
	Delta string `json:"delta"`
}

// ChatStream represents a streaming chat completion.
//
// Channel rules:
//   - Ch, Err, and Final are closed when the stream ends
//   - Err emits at most one error
//   - Final emits exactly once on success (or zero times on failure)
//   - On context cancellation the stream terminates promptly
type ChatStream struct {
	// Ch emits text deltas in order. Closed when stream ends.
	Ch <-chan ChatChunk

	// Err emits at most one error. Closed when stream ends.
	Err <-chan error

	// Final emits the complete response with usage and tool calls.
	Final <-chan *ChatResponse
}

// chatStreamChunk is the wire shape of one streamed completion frame.
type chatStreamChunk struct {
	ID      string  `json:"id"`
	Object  string  `json:"object"`
	Model   ModelID `json:"model"`
	Choices []struct {
		Index int `json:"index"`
		Delta struct {
			Role      Role             `json:"role,omitempty"`
			Content   string           `json:"content,omitempty"`
			ToolCalls []streamToolCall `json:"tool_calls,omitempty"`
		} `json:"delta"`
		FinishReason FinishReason `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage,omitempty"`
}

// streamToolCall is a streamed tool call fragment.
type streamToolCall struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

// toolCallAssembler accumulates streaming tool call fragments keyed by index.
type toolCallAssembler struct {
	calls map[int]*assemblingToolCall
}

type assemblingToolCall struct {
	ID        string
	Name      string
	Arguments strings.Builder
}

func newToolCallAssembler() *toolCallAssembler {
	return &toolCallAssembler{
		calls: make(map[int]*assemblingToolCall),
	}
}

// addFragment merges one streamed fragment into the call being assembled.
func (a *toolCallAssembler) addFragment(tc streamToolCall) {
	call, exists := a.calls[tc.Index]
	if !exists {
		call = &assemblingToolCall{}
		a.calls[tc.Index] = call
	}

	if tc.ID != "" {
		call.ID = tc.ID
	}
	if tc.Function.Name != "" {
		call.Name = tc.Function.Name
	}
	if tc.Function.Arguments != "" {
		call.Arguments.WriteString(tc.Function.Arguments)
	}
}

// finalize validates argument JSON and returns the assembled tool calls in
// index order.
func (a *toolCallAssembler) finalize() ([]ToolCall, error) {
	if len(a.calls) == 0 {
		return nil, nil
	}

	maxIndex := 0
	for idx := range a.calls {
		if idx > maxIndex {
			maxIndex = idx
		}
	}

	result := make([]ToolCall, 0, len(a.calls))
	for i := 0; i <= maxIndex; i++ {
		call, exists := a.calls[i]
		if !exists {
			continue
		}

		args := call.Arguments.String()
		if !json.Valid([]byte(args)) {
			return nil, newDecodeError(errInvalidToolArgs)
		}

		result = append(result, ToolCall{
			ID:   call.ID,
			Type: "function",
			Function: ToolCallFunction{
				Name:      call.Name,
				Arguments: args,
			},
		})
	}

	return result, nil
}

var errInvalidToolArgs = &invalidToolArgsError{}

type invalidToolArgsError struct{}

func (*invalidToolArgsError) Error() string { return "tool call arguments are not valid JSON" }

// StreamChatCompletion sends a streaming chat request and decodes the
// server-sent-events response into a ChatStream.
func (c *Client) StreamChatCompletion(ctx context.Context, req *ChatRequest) (*ChatStream, error) {
	body := *req
	body.Stream = true

	respBody, err := c.doStream(ctx, "POST", chatCompletionsPath, &body, "", nil)
	if err != nil {
		return nil, err
	}

	chunkCh := make(chan ChatChunk, 100)
	errCh := make(chan error, 1)
	finalCh := make(chan *ChatResponse, 1)

	go processChatStream(ctx, respBody, chunkCh, errCh, finalCh)

	return &ChatStream{
		Ch:    chunkCh,
		Err:   errCh,
		Final: finalCh,
	}, nil
}

// processChatStream reads the SSE stream and emits chunks.
func processChatStream(
	ctx context.Context,
	body io.ReadCloser,
	chunkCh chan<- ChatChunk,
	errCh chan<- error,
	finalCh chan<- *ChatResponse,
) {
	defer body.Close()
	defer close(chunkCh)
	defer close(errCh)
	defer close(finalCh)

	scanner := sse.NewScanner(body)
	assembler := newToolCallAssembler()

	var (
		responseID    string
		responseModel ModelID
		finishReason  FinishReason
		usage         *Usage
		text          strings.Builder
	)

	for {
		frame, err := scanner.Next(ctx)
		if err != nil {
			if err == io.EOF {
				break
			}
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				errCh <- err
			} else {
				errCh <- newNetworkError(err)
			}
			return
		}

		if frame.Data == doneSentinel {
			break
		}

		var chunk chatStreamChunk
		if err := json.Unmarshal([]byte(frame.Data), &chunk); err != nil {
			errCh <- newDecodeError(err)
			return
		}

		if chunk.ID != "" {
			responseID = chunk.ID
		}
		if chunk.Model != "" {
			responseModel = chunk.Model
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}

		for _, choice := range chunk.Choices {
			if choice.FinishReason != "" {
				finishReason = choice.FinishReason
			}

			if choice.Delta.Content != "" {
				text.WriteString(choice.Delta.Content)
				select {
				case chunkCh <- ChatChunk{Delta: choice.Delta.Content}:
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				}
			}

			for _, tc := range choice.Delta.ToolCalls {
				assembler.addFragment(tc)
			}
		}
	}

	toolCalls, err := assembler.finalize()
	if err != nil {
		errCh <- err
		return
	}

	finalResp := &ChatResponse{
		ID:     responseID,
		Object: "chat.completion",
		Model:  responseModel,
		Choices: []ChatChoice{
			{
				Message: Message{
					Role:      RoleAssistant,
					Content:   TextContent(text.String()),
					ToolCalls: toolCalls,
				},
				FinishReason: finishReason,
			},
		},
	}
	if usage != nil {
		finalResp.Usage = *usage
	}

	finalCh <- finalResp
}

// DrainChatStream accumulates all deltas and returns the final ChatResponse.
// Blocks until the stream completes or ctx cancels.
func DrainChatStream(ctx context.Context, s *ChatStream) (*ChatResponse, error) {
	if s == nil {
		return nil, ErrBadRequest
	}

	var accumulated strings.Builder
	var streamErr error
	var finalResp *ChatResponse

	chunks := s.Ch
	for chunks != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case chunk, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			accumulated.WriteString(chunk.Delta)

		case err, ok := <-s.Err:
			if ok && err != nil {
				streamErr = err
			}
			// Continue draining Ch even after an error.
		}
	}

	// Drain any remaining error.
	select {
	case err, ok := <-s.Err:
		if ok && err != nil {
			streamErr = err
		}
	default:
	}

	if streamErr != nil {
		return nil, streamErr
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case resp, ok := <-s.Final:
		if ok {
			finalResp = resp
		}
	}

	if finalResp == nil {
		finalResp = &ChatResponse{
			Choices: []ChatChoice{
				{Message: Message{Role: RoleAssistant, Content: TextContent(accumulated.String())}},
			},
		}
	}

	return finalResp, nil
}
