package services

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"

	"golang.org/x/sync/semaphore"

	"github.com/Adithyan773/kisan-mitra/internal/core"
	"github.com/Adithyan773/kisan-mitra/internal/core/audio"
	"github.com/Adithyan773/kisan-mitra/internal/core/language"
	"github.com/Adithyan773/kisan-mitra/internal/models"
)

const (
	// minAudioBytes mirrors the normalizer's floor; below it the upload
	// is skipped without touching the audio path at all.
	minAudioBytes = 100

	// historyLimit caps how many stored turns seed the agent context.
	historyLimit = 4

	anonymousUserID = "anonymous"
)

// SessionID derives the session key for a user. One session per user:
// concurrent devices deliberately share state.
func SessionID(userID string) string {
	if userID == "" {
		userID = anonymousUserID
	}
	return "kisan_session_" + userID
}

// InteractionService sequences one end-user turn:
// transcribe → prompt-assemble → agent → translate → synthesize.
// Steps are strictly ordered; each one's output is the next one's input.
type InteractionService struct {
	store       core.Store
	responder   core.Responder
	transcriber core.Transcriber
	synthesizer core.Synthesizer
	translator  core.Translator

	// audioSlots bounds concurrent decode+recognize work so a burst of
	// voice queries cannot stall request admission.
	audioSlots *semaphore.Weighted
}

func NewInteractionService(
	store core.Store,
	responder core.Responder,
	transcriber core.Transcriber,
	synthesizer core.Synthesizer,
	translator core.Translator,
	audioWorkers int,
) *InteractionService {
	if audioWorkers <= 0 {
		audioWorkers = 4
	}
	return &InteractionService{
		store:       store,
		responder:   responder,
		transcriber: transcriber,
		synthesizer: synthesizer,
		translator:  translator,
		audioSlots:  semaphore.NewWeighted(int64(audioWorkers)),
	}
}

// Process handles one interaction. It returns core.ErrNoInput when the
// request carries neither a usable prompt nor an image; any other error
// means the turn failed after an answer was produced (translation) and
// maps to a generic server error upstream.
func (s *InteractionService) Process(ctx context.Context, req *models.InteractionRequest) (*models.InteractionResponse, error) {
	codes, known := language.Resolve(req.LanguageName)
	if !known {
		slog.Warn("unknown language label, falling back to English", "language_name", req.LanguageName)
	}

	// 1. Audio, if present and big enough to possibly hold speech.
	transcript := ""
	if len(req.Audio) > minAudioBytes {
		transcript = s.transcribe(ctx, req.Audio, codes.STT)
	}

	// 2. The transcript wins over typed text when both are present.
	effectivePrompt := transcript
	if effectivePrompt == "" {
		effectivePrompt = strings.TrimSpace(req.TextQuery)
	}

	// 3. Nothing to work with: stop before any downstream call.
	hasImage := len(req.Image) > 0
	if effectivePrompt == "" && !hasImage {
		return nil, core.ErrNoInput
	}

	userID := req.UserID
	if userID == "" {
		userID = anonymousUserID
	}
	sessionID := SessionID(userID)
	qc := core.QueryContext{
		UserID:   userID,
		UserName: req.UserName,
		Location: req.UserLocation,
		Language: req.LanguageName,
	}

	// 4. Pick the agent.
	var aiResponse string
	switch {
	case hasImage:
		aiResponse = s.responder.AnalyzeVisuals(ctx, effectivePrompt, req.Image, req.ImageMIME, qc)
	case effectivePrompt != "":
		aiResponse = s.responder.Respond(ctx, effectivePrompt, s.history(ctx, sessionID), qc)
	default:
		// Unreachable given step 3, but kept so the branch order stays
		// obvious if the guard above ever changes.
		aiResponse = "I see you've uploaded an image. Could you please ask a question about it so I can help you better?"
	}

	// 5. Translate unless the target already is English. Failure here is
	// not recoverable: propagate and let the handler answer generically.
	finalResponse := aiResponse
	if codes.Translate != "en" && aiResponse != "" {
		translated, err := s.translator.Translate(ctx, aiResponse, codes.Translate)
		if err != nil {
			return nil, err
		}
		finalResponse = translated
	}

	// 6. Optional speech output.
	var audioB64 *string
	if req.SpeakAloud && finalResponse != "" {
		if out := s.synthesizer.Synthesize(ctx, finalResponse, codes.TTS); len(out) > 0 {
			enc := base64.StdEncoding.EncodeToString(out)
			audioB64 = &enc
		}
	}

	s.persistTurn(ctx, sessionID, userID, effectivePrompt, finalResponse)

	return &models.InteractionResponse{
		QueryTranscript: transcript,
		AIResponse:      finalResponse,
		AudioOutputB64:  audioB64,
	}, nil
}

// transcribe normalizes and recognizes one audio blob under a bounded
// worker slot. Every failure degrades to an empty transcript.
func (s *InteractionService) transcribe(ctx context.Context, raw []byte, sttCode string) string {
	if err := s.audioSlots.Acquire(ctx, 1); err != nil {
		slog.Warn("audio slot acquire failed", "error", err)
		return ""
	}
	defer s.audioSlots.Release(1)

	clip, ok := audio.Normalize(raw)
	if !ok {
		return ""
	}
	return s.transcriber.Transcribe(ctx, clip.WAV, clip.SampleRate, sttCode)
}

// history loads the recent context window. A read failure costs context,
// not the turn.
func (s *InteractionService) history(ctx context.Context, sessionID string) []models.ChatMessage {
	msgs, err := s.store.GetChatHistory(ctx, sessionID, historyLimit)
	if err != nil {
		slog.Warn("chat history read failed", "session_id", sessionID, "error", err)
		return nil
	}
	return msgs
}

// persistTurn upserts the session and appends both sides of the
// exchange. Writes are best-effort: the reply is already composed and a
// storage hiccup must not take it down.
func (s *InteractionService) persistTurn(ctx context.Context, sessionID, userID, prompt, response string) {
	if err := s.store.UpsertSession(ctx, &models.Session{SessionID: sessionID, UserID: userID}); err != nil {
		slog.Warn("session upsert failed", "session_id", sessionID, "error", err)
		return
	}
	if prompt != "" {
		if err := s.store.AddChatMessage(ctx, sessionID, models.RoleUser, prompt); err != nil {
			slog.Warn("chat append failed", "session_id", sessionID, "error", err)
		}
	}
	if response != "" {
		if err := s.store.AddChatMessage(ctx, sessionID, models.RoleAssistant, response); err != nil {
			slog.Warn("chat append failed", "session_id", sessionID, "error", err)
		}
	}
}
