package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/petal-labs/mistral"
	"github.com/petal-labs/mistral/cli/keystore"
)

// Exit codes
const (
	ExitSuccess    = 0
	ExitValidation = 1
	ExitAPI        = 2
	ExitNetwork    = 3
)

func (a *App) newChatCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send a chat completion request",
		Long: `Send a chat completion request.

Examples:
  mistral chat --model mistral-small-latest --prompt "Hello"
  mistral chat --prompt "Hello" --stream
  mistral chat --prompt "Hello" --json`,
		RunE: a.runChat,
	}

	cmd.Flags().StringVar(&a.chatPrompt, "prompt", "", "User message (required)")
	cmd.Flags().StringVar(&a.chatSystem, "system", "", "System message")
	cmd.Flags().Float64Var(&a.chatTemperature, "temperature", 0, "Temperature (0 = use default)")
	cmd.Flags().IntVar(&a.chatMaxTokens, "max-tokens", 0, "Max tokens (0 = use default)")
	cmd.Flags().BoolVar(&a.chatStream, "stream", false, "Enable streaming output")
	cmd.Flags().BoolVar(&a.chatSafePrompt, "safe-prompt", false, "Prepend the platform guardrail prompt")

	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

func (a *App) runChat(cmd *cobra.Command, args []string) error {
	if a.model == "" {
		return exitWithCode(ExitValidation, fmt.Errorf("model required: use --model flag or set default_model in config"))
	}

	apiKey, err := a.resolveAPIKey()
	if err != nil {
		var notFound *keystore.ErrKeyNotFound
		if errors.As(err, &notFound) {
			return exitWithCode(ExitValidation, fmt.Errorf("no API key: set %s or run 'mistral keys set' first", mistral.DefaultAPIKeyEnvVar))
		}
		return exitWithCode(ExitValidation, fmt.Errorf("failed to get API key: %w", err))
	}

	client := a.newClient(apiKey, a.cfg)
	builder := client.Chat(mistral.ModelID(a.model))

	if a.chatSystem != "" {
		builder = builder.System(a.chatSystem)
	}
	builder = builder.User(a.chatPrompt)

	if a.chatTemperature > 0 {
		builder = builder.Temperature(a.chatTemperature)
	}
	if a.chatMaxTokens > 0 {
		builder = builder.MaxTokens(a.chatMaxTokens)
	}
	if a.chatSafePrompt {
		builder = builder.SafePrompt()
	}

	// A session ID correlates the request in logs and JSON output.
	sessionID := uuid.NewString()
	if a.verbose {
		fmt.Fprintf(a.stderr, "session: %s\n", sessionID)
	}

	ctx := context.Background()

	if a.chatStream {
		return a.runStreamingChat(ctx, builder, sessionID)
	}
	return a.runNonStreamingChat(ctx, builder, sessionID)
}

func (a *App) runNonStreamingChat(ctx context.Context, builder *mistral.ChatBuilder, sessionID string) error {
	resp, err := builder.GetResponse(ctx)
	if err != nil {
		return a.handleAPIError(err)
	}

	if a.jsonOutput {
		return a.outputChatJSON(resp, sessionID)
	}

	fmt.Fprintf(a.stdout, "> %s\n", a.chatPrompt)
	fmt.Fprintln(a.stdout, resp.Output())
	return nil
}

func (a *App) runStreamingChat(ctx context.Context, builder *mistral.ChatBuilder, sessionID string) error {
	stream, err := builder.Stream(ctx)
	if err != nil {
		return a.handleAPIError(err)
	}

	if a.jsonOutput {
		// Accumulate for JSON output
		resp, err := mistral.DrainChatStream(ctx, stream)
		if err != nil {
			return a.handleAPIError(err)
		}
		return a.outputChatJSON(resp, sessionID)
	}

	fmt.Fprintf(a.stdout, "> %s\n", a.chatPrompt)

	// Print chunks as they arrive.
	for chunk := range stream.Ch {
		fmt.Fprint(a.stdout, chunk.Delta)
	}
	fmt.Fprintln(a.stdout)

	var finalResp *mistral.ChatResponse
	select {
	case resp, ok := <-stream.Final:
		if ok {
			finalResp = resp
		} else if err, ok := <-stream.Err; ok {
			return a.handleAPIError(err)
		}
	case err, ok := <-stream.Err:
		if ok {
			return a.handleAPIError(err)
		}
		if resp, ok := <-stream.Final; ok {
			finalResp = resp
		}
	}

	if a.verbose && finalResp != nil {
		fmt.Fprintf(a.stderr, "Usage: %d prompt + %d completion = %d total tokens\n",
			finalResp.Usage.PromptTokens,
			finalResp.Usage.CompletionTokens,
			finalResp.Usage.TotalTokens)
	}

	return nil
}

func (a *App) handleAPIError(err error) error {
	var apiErr *mistral.APIError
	if errors.As(err, &apiErr) {
		if a.jsonOutput {
			a.outputErrorJSON(apiErr.Code, apiErr.Message, apiErr.RequestID)
		} else {
			fmt.Fprintf(a.stderr, "Error: %s\n", apiErr.Message)
			if apiErr.RequestID != "" {
				fmt.Fprintf(a.stderr, "  Request ID: %s\n", apiErr.RequestID)
			}
		}

		if errors.Is(err, mistral.ErrNetwork) {
			return exitWithCode(ExitNetwork, err)
		}
		return exitWithCode(ExitAPI, err)
	}

	// Validation errors
	if errors.Is(err, mistral.ErrModelRequired) || errors.Is(err, mistral.ErrNoMessages) ||
		errors.Is(err, mistral.ErrNoAudio) {
		if a.jsonOutput {
			a.outputErrorJSON("validation_error", err.Error(), "")
		} else {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
		return exitWithCode(ExitValidation, err)
	}

	if a.jsonOutput {
		a.outputErrorJSON("error", err.Error(), "")
	} else {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	return exitWithCode(ExitAPI, err)
}

func (a *App) outputChatJSON(resp *mistral.ChatResponse, sessionID string) error {
	output := map[string]any{
		"session_id": sessionID,
		"id":         resp.ID,
		"model":      resp.Model,
		"output":     resp.Output(),
		"usage": map[string]int{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}

	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func (a *App) outputErrorJSON(code, message, requestID string) {
	inner := map[string]any{
		"type":    code,
		"message": message,
	}
	if requestID != "" {
		inner["request_id"] = requestID
	}

	enc := json.NewEncoder(a.stderr)
	enc.SetIndent("", "  ")
	enc.Encode(map[string]any{"error": inner})
}

// exitError wraps an error with an exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) ExitCode() int {
	return e.code
}

func exitWithCode(code int, err error) error {
	return &exitError{code: code, err: err}
}
