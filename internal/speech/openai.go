package speech

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Synthesizer using the OpenAI audio speech API
type OpenAISynthesizer struct {
	client  openai.Client
	model   openai.SpeechModel
	voice   openai.AudioSpeechNewParamsVoice
	options Options
}

func NewOpenAISynthesizer(ctx context.Context, apiKey string, opts Options) (*OpenAISynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := openai.SpeechModelTTS1
	if opts.Model != "" {
		model = openai.SpeechModel(opts.Model)
	}

	voice := openai.AudioSpeechNewParamsVoiceAlloy
	if opts.Voice != "" {
		voice = openai.AudioSpeechNewParamsVoice(opts.Voice)
	}

	return &OpenAISynthesizer{
		client:  client,
		model:   model,
		voice:   voice,
		options: opts,
	}, nil
}

func (s *OpenAISynthesizer) Extension() string {
	return ".mp3"
}

// Synthesize writes the narration as an MP3 file.
func (s *OpenAISynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	if text == "" {
		return fmt.Errorf("narration text is empty")
	}

	params := openai.AudioSpeechNewParams{
		Model:          s.model,
		Voice:          s.voice,
		Input:          text,
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
		Speed:          openai.Float(s.options.speed()),
	}

	resp, err := s.client.Audio.Speech.New(ctx, params)
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}
	defer resp.Body.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write voiceover: %w", err)
	}
	return nil
}
