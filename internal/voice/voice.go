// Package voice defines the speech ports the assistant consumes. Actual
// speech vendors are external; this package carries the interfaces plus mock
// providers for development and tests.
package voice

import (
	"context"
	"time"
)

// TranscriptionRequest carries captured audio to a speech-to-text provider.
type TranscriptionRequest struct {
	Audio       []byte
	ContentType string
	Language    string
}

// Transcription is the recognized text.
type Transcription struct {
	Text     string
	Language string
	Duration time.Duration
}

// Transcriber converts audio to text.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, req TranscriptionRequest) (Transcription, error)
}

// SynthesisRequest carries reply text to a text-to-speech provider.
type SynthesisRequest struct {
	Text  string
	Voice string
}

// SynthesisResult is rendered audio.
type SynthesisResult struct {
	Audio       []byte
	ContentType string
	Duration    time.Duration
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error)
}
