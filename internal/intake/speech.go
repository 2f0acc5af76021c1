package intake

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// SpeechReader transcribes spoken problems using the audio
// transcription API.
type SpeechReader struct {
	client *openai.Client
	model  string
}

// NewSpeechReader creates an audio reader. An empty model defaults to
// whisper-1.
func NewSpeechReader(client *openai.Client, model string) *SpeechReader {
	if model == "" {
		model = openai.Whisper1
	}
	return &SpeechReader{client: client, model: model}
}

func (s *SpeechReader) ReadAudio(ctx context.Context, path string) (*Result, error) {
	resp, err := s.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    s.model,
		FilePath: path,
		Prompt:   "A student dictating a math problem.",
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe audio: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, fmt.Errorf("no speech found in audio")
	}

	return &Result{Text: text, Confidence: 1.0}, nil
}
