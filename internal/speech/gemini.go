package speech

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"

	"google.golang.org/genai"
)

// implements Synthesizer using Gemini native TTS
type GeminiSynthesizer struct {
	client  *genai.Client
	model   string
	voice   string
	options Options
}

func NewGeminiSynthesizer(ctx context.Context, apiKey string, opts Options) (*GeminiSynthesizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash-preview-tts"
	}

	voice := opts.Voice
	if voice == "" {
		voice = "Kore"
	}

	return &GeminiSynthesizer{
		client:  client,
		model:   model,
		voice:   voice,
		options: opts,
	}, nil
}

func (s *GeminiSynthesizer) Extension() string {
	return ".wav"
}

// Synthesize writes the narration as a WAV file. Gemini returns raw 24kHz
// 16-bit PCM, so the file gets a WAV header around it.
func (s *GeminiSynthesizer) Synthesize(ctx context.Context, text, outputPath string) error {
	if text == "" {
		return fmt.Errorf("narration text is empty")
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(text),
		}, genai.RoleUser),
	}

	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: s.voice,
				},
			},
		},
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, cfg)
	if err != nil {
		return fmt.Errorf("speech synthesis failed: %w", err)
	}

	pcm, err := extractAudio(result)
	if err != nil {
		return err
	}

	return writeWAV(outputPath, pcm, 24000)
}

func extractAudio(result *genai.GenerateContentResponse) ([]byte, error) {
	if len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty synthesis response")
	}
	for _, part := range result.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, nil
		}
	}
	return nil, fmt.Errorf("no audio data in synthesis response")
}

// writeWAV wraps mono 16-bit PCM samples in a minimal RIFF header.
func writeWAV(path string, pcm []byte, sampleRate int) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	var header [44]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], 1) // mono
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(sampleRate*2))
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	if _, err := out.Write(header[:]); err != nil {
		return err
	}
	if _, err := out.Write(pcm); err != nil {
		return err
	}
	return nil
}
