// Package speech holds the thin clients for the hosted speech services:
// Google Cloud Speech-to-Text for recognition and Text-to-Speech for
// synthesis. Both degrade to empty results on failure; a farmer's turn
// never dies because a speech call did.
package speech

import (
	"context"
	"log/slog"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
)

// Transcriber sends canonical mono 16-bit PCM audio to the recognizer.
type Transcriber struct {
	client *speech.Client
}

func NewTranscriber(ctx context.Context) (*Transcriber, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Transcriber{client: client}, nil
}

func (t *Transcriber) Close() error {
	return t.client.Close()
}

// Transcribe returns the top alternative's text, trimmed, or "" if the
// service errors or finds nothing. The sample rate must be the actual
// rate of the waveform; the recognizer trusts it blindly and a mismatch
// silently wrecks accuracy.
func (t *Transcriber) Transcribe(ctx context.Context, wavBytes []byte, sampleRate int, languageCode string) string {
	slog.Info("transcribing audio", "bytes", len(wavBytes), "sample_rate", sampleRate, "language", languageCode)

	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   speechpb.RecognitionConfig_LINEAR16,
			SampleRateHertz:            int32(sampleRate),
			LanguageCode:               languageCode,
			AudioChannelCount:          1,
			EnableAutomaticPunctuation: true,
			UseEnhanced:                true,
			ProfanityFilter:            true,
			MaxAlternatives:            1,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: wavBytes},
		},
	})
	if err != nil {
		slog.Error("transcription failed", "error", err)
		return ""
	}
	if len(resp.Results) == 0 || len(resp.Results[0].Alternatives) == 0 {
		slog.Info("no transcription results returned")
		return ""
	}

	alt := resp.Results[0].Alternatives[0]
	transcript := strings.TrimSpace(alt.Transcript)
	slog.Info("transcription successful", "transcript", transcript, "confidence", alt.Confidence)
	return transcript
}
