package voice

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"time"
)

// MockTranscriber echoes a fixed transcript, for development and tests.
type MockTranscriber struct {
	Transcript string
}

// Name returns the provider identifier.
func (m MockTranscriber) Name() string { return "mock" }

// Transcribe returns the configured transcript regardless of audio content.
func (m MockTranscriber) Transcribe(_ context.Context, req TranscriptionRequest) (Transcription, error) {
	text := m.Transcript
	if text == "" {
		text = "hello"
	}
	return Transcription{
		Text:     text,
		Language: req.Language,
		Duration: time.Duration(len(req.Audio)/32) * time.Millisecond,
	}, nil
}

// MockSynthesizer synthesizes silent audio for dry-run scenarios.
type MockSynthesizer struct {
	SampleRate int
}

// Name returns the provider identifier.
func (m MockSynthesizer) Name() string { return "mock" }

// Synthesize generates a silent WAV sized to the input text length.
func (m MockSynthesizer) Synthesize(_ context.Context, req SynthesisRequest) (SynthesisResult, error) {
	rate := m.SampleRate
	if rate <= 0 {
		rate = 16000
	}
	duration := estimateDuration(req.Text)
	return SynthesisResult{
		Audio:       generateSilentWAV(duration, rate),
		ContentType: "audio/wav",
		Duration:    duration,
	}, nil
}

func estimateDuration(text string) time.Duration {
	if len(text) == 0 {
		return 2 * time.Second
	}
	seconds := math.Max(float64(len([]rune(text)))/12.0, 2)
	return time.Duration(seconds * float64(time.Second))
}

func generateSilentWAV(duration time.Duration, sampleRate int) []byte {
	totalSamples := int(math.Ceil(duration.Seconds() * float64(sampleRate)))
	if totalSamples < sampleRate {
		totalSamples = sampleRate
	}
	dataSize := totalSamples * 2
	buf := bytes.NewBuffer(make([]byte, 0, 44+dataSize))
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}
