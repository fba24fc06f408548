// Package mistral provides a Go client for the Mistral AI platform API.
//
// The client covers chat completion, embeddings, OCR, audio transcription,
// moderation, files, batch jobs, fine-tuning jobs, and model listing.
//
// # Client
//
// The primary entry point is [Client]:
//
//	client := mistral.New(os.Getenv("MISTRAL_API_KEY"))
//
// or, reading the key from the environment:
//
//	client, err := mistral.NewFromEnv()
//
// # ChatBuilder
//
// The [ChatBuilder] provides a fluent API for constructing chat requests:
//
//	resp, err := client.Chat(mistral.ModelMistralSmallLatest).
//	    System("You are a helpful assistant.").
//	    User("Hello!").
//	    Temperature(0.7).
//	    GetResponse(ctx)
//
// ChatBuilder is NOT thread-safe. Each goroutine should create its own
// builder instance.
//
// # Streaming
//
// Streaming is a first-class primitive. Use [ChatBuilder.Stream] for
// incremental chat responses:
//
//	stream, err := client.Chat(model).User("Tell me a story.").Stream(ctx)
//	if err != nil {
//	    return err
//	}
//	for chunk := range stream.Ch {
//	    fmt.Print(chunk.Delta)
//	}
//
// Audio transcription can also be streamed. [Client.StreamTranscription]
// returns a [TranscriptionStream] of typed events, and
// [CollectTranscription] folds the events into a final [Transcription]:
//
//	stream, err := client.StreamTranscription(ctx, &mistral.TranscriptionRequest{
//	    Model:    mistral.ModelVoxtralMiniLatest,
//	    File:     audio,
//	    Filename: "meeting.mp3",
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := mistral.CollectTranscription(ctx, stream, nil)
//
// # Error Handling
//
// Failures are reported as [*APIError] values wrapping sentinel errors for
// classification with errors.Is:
//
//	if errors.Is(err, mistral.ErrRateLimited) {
//	    // back off and retry
//	}
//
// # Thread Safety
//
// [Client] is safe for concurrent use across goroutines. Builders and
// streams are owned by a single goroutine at a time.
package mistral
