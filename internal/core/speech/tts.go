package speech

import (
	"context"
	"log/slog"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
)

// Synthesizer turns response text into compressed audio for playback.
type Synthesizer struct {
	client *texttospeech.Client
}

func NewSynthesizer(ctx context.Context) (*Synthesizer, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Synthesizer{client: client}, nil
}

func (s *Synthesizer) Close() error {
	return s.client.Close()
}

// Synthesize returns MP3 bytes for the text in the given voice language,
// or nil on blank input or any failure.
func (s *Synthesizer) Synthesize(ctx context.Context, text, languageCode string) []byte {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	slog.Info("synthesizing speech", "chars", len(text), "language", languageCode)

	resp, err := s.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: languageCode,
			SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
		},
		AudioConfig: &texttospeechpb.AudioConfig{
			AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			SpeakingRate:  1.0,
			Pitch:         0.0,
		},
	})
	if err != nil {
		slog.Error("speech synthesis failed", "error", err)
		return nil
	}

	slog.Info("speech synthesis successful", "bytes", len(resp.AudioContent))
	return resp.AudioContent
}
