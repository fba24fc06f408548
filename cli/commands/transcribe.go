package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/petal-labs/mistral"
	"github.com/petal-labs/mistral/cli/keystore"
)

// defaultTranscribeModel is used when neither --model nor the config set one.
const defaultTranscribeModel = string(mistral.ModelVoxtralMiniLatest)

func (a *App) newTranscribeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe [audio-file]",
		Short: "Transcribe an audio file",
		Long: `Transcribe an audio file or a remote audio URL.

Examples:
  mistral transcribe meeting.mp3
  mistral transcribe meeting.mp3 --stream
  mistral transcribe --url https://example.com/audio.mp3 --diarize`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runTranscribe,
	}

	cmd.Flags().StringVar(&a.transcribeURL, "url", "", "Audio URL instead of a local file")
	cmd.Flags().StringVar(&a.transcribeLanguage, "language", "", "ISO 639-1 language hint (auto-detected when empty)")
	cmd.Flags().BoolVar(&a.transcribeTimestamps, "timestamps", false, "Request per-segment timestamps")
	cmd.Flags().BoolVar(&a.transcribeDiarize, "diarize", false, "Request speaker labels")
	cmd.Flags().BoolVar(&a.transcribeStream, "stream", false, "Print the transcript incrementally")

	return cmd
}

func (a *App) runTranscribe(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && a.transcribeURL == "" {
		return exitWithCode(ExitValidation, fmt.Errorf("audio required: pass a file path or --url"))
	}
	if len(args) == 1 && a.transcribeURL != "" {
		return exitWithCode(ExitValidation, fmt.Errorf("pass either a file path or --url, not both"))
	}

	apiKey, err := a.resolveAPIKey()
	if err != nil {
		var notFound *keystore.ErrKeyNotFound
		if errors.As(err, &notFound) {
			return exitWithCode(ExitValidation, fmt.Errorf("no API key: set %s or run 'mistral keys set' first", mistral.DefaultAPIKeyEnvVar))
		}
		return exitWithCode(ExitValidation, fmt.Errorf("failed to get API key: %w", err))
	}

	model := a.transcribeModel()
	req := &mistral.TranscriptionRequest{
		Model:             mistral.ModelID(model),
		Language:          a.transcribeLanguage,
		SegmentTimestamps: a.transcribeTimestamps,
		Diarize:           a.transcribeDiarize,
	}

	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return exitWithCode(ExitValidation, fmt.Errorf("cannot open audio file: %w", err))
		}
		defer f.Close()
		req.File = f
		req.Filename = filepath.Base(args[0])
	} else {
		req.FileURL = a.transcribeURL
	}

	client := a.newClient(apiKey, a.cfg)
	ctx := context.Background()

	if a.transcribeStream {
		return a.runStreamingTranscribe(ctx, client, req)
	}

	result, err := client.Transcribe(ctx, req)
	if err != nil {
		return a.handleAPIError(err)
	}
	return a.outputTranscription(result)
}

func (a *App) runStreamingTranscribe(ctx context.Context, client *mistral.Client, req *mistral.TranscriptionRequest) error {
	stream, err := client.StreamTranscription(ctx, req)
	if err != nil {
		return a.handleAPIError(err)
	}

	// Print text deltas as they arrive; everything else is merged silently.
	onEvent := func(ev mistral.TranscriptionEvent) {
		if a.jsonOutput {
			return
		}
		if delta, ok := ev.(mistral.TranscriptionTextDelta); ok {
			fmt.Fprint(a.stdout, delta.Text)
		}
	}

	result, err := mistral.CollectTranscription(ctx, stream, onEvent)
	if err != nil {
		return a.handleAPIError(err)
	}
	if !a.jsonOutput {
		fmt.Fprintln(a.stdout)
	}

	if !result.Finished {
		fmt.Fprintln(a.stderr, "warning: stream ended before the final transcript; output may be incomplete")
	}

	if a.jsonOutput {
		return a.outputTranscription(result)
	}
	if a.verbose && result.Usage != nil {
		fmt.Fprintf(a.stderr, "Usage: %d total tokens\n", result.Usage.TotalTokens)
	}
	return nil
}

func (a *App) outputTranscription(result *mistral.Transcription) error {
	if a.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintln(a.stdout, result.Text)
	if result.Language != "" && a.verbose {
		fmt.Fprintf(a.stderr, "Language: %s\n", result.Language)
	}
	for _, seg := range result.Segments {
		if !a.verbose {
			break
		}
		speaker := seg.SpeakerID
		if speaker == "" {
			speaker = "-"
		}
		fmt.Fprintf(a.stderr, "[%7.2f - %7.2f] %s  %s\n", seg.Start, seg.End, speaker, seg.Text)
	}
	return nil
}

// transcribeModel resolves the model for the transcribe command. The global
// --model flag wins, then transcribe_model from config, then the default.
func (a *App) transcribeModel() string {
	if a.model != "" && (a.cfg == nil || a.model != a.cfg.DefaultModel) {
		return a.model
	}
	if a.cfg != nil && a.cfg.TranscribeModel != "" {
		return a.cfg.TranscribeModel
	}
	return defaultTranscribeModel
}
