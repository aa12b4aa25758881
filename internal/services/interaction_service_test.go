package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/Adithyan773/kisan-mitra/internal/core"
	"github.com/Adithyan773/kisan-mitra/internal/models"
)

// --- fakes over the core interfaces ---

type fakeStore struct {
	history      []models.ChatMessage
	historyLimit int
	upserted     []*models.Session
	appended     []models.ChatMessage
}

func (f *fakeStore) CreateUser(ctx context.Context, u *models.User) error { return nil }
func (f *fakeStore) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	return nil, nil
}
func (f *fakeStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return nil, nil
}
func (f *fakeStore) UpsertSession(ctx context.Context, s *models.Session) error {
	f.upserted = append(f.upserted, s)
	return nil
}
func (f *fakeStore) AddChatMessage(ctx context.Context, sessionID, role, content string) error {
	f.appended = append(f.appended, models.ChatMessage{SessionID: sessionID, Role: role, Content: content})
	return nil
}
func (f *fakeStore) GetChatHistory(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	f.historyLimit = limit
	return f.history, nil
}
func (f *fakeStore) Close() error { return nil }

type fakeResponder struct {
	answer       string
	prompts      []string
	visualCalls  int
	lastQC       core.QueryContext
	seenHistory  []models.ChatMessage
}

func (f *fakeResponder) Respond(ctx context.Context, prompt string, history []models.ChatMessage, qc core.QueryContext) string {
	f.prompts = append(f.prompts, prompt)
	f.seenHistory = history
	f.lastQC = qc
	return f.answer
}
func (f *fakeResponder) AnalyzeVisuals(ctx context.Context, prompt string, image []byte, mime string, qc core.QueryContext) string {
	f.visualCalls++
	f.lastQC = qc
	return f.answer
}

type fakeTranscriber struct {
	transcript string
	calls      int
	lastCode   string
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, wav []byte, rate int, code string) string {
	f.calls++
	f.lastCode = code
	return f.transcript
}

type fakeSynthesizer struct {
	out      []byte
	calls    int
	lastCode string
	lastText string
}

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text, code string) []byte {
	f.calls++
	f.lastCode = code
	f.lastText = text
	return f.out
}

type fakeTranslator struct {
	err      error
	calls    int
	lastCode string
	lastText string
}

func (f *fakeTranslator) Translate(ctx context.Context, text, target string) (string, error) {
	f.calls++
	f.lastCode = target
	f.lastText = text
	if f.err != nil {
		return "", f.err
	}
	return "[" + target + "] " + text, nil
}

type deps struct {
	store *fakeStore
	resp  *fakeResponder
	stt   *fakeTranscriber
	tts   *fakeSynthesizer
	tr    *fakeTranslator
	svc   *InteractionService
}

func newDeps() *deps {
	d := &deps{
		store: &fakeStore{},
		resp:  &fakeResponder{answer: "The price of tomato in Kolar is around Rs 1200 per quintal."},
		stt:   &fakeTranscriber{},
		tts:   &fakeSynthesizer{out: []byte("mp3-bytes")},
		tr:    &fakeTranslator{},
	}
	d.svc = NewInteractionService(d.store, d.resp, d.stt, d.tts, d.tr, 2)
	return d
}

// speechWAV builds a one-second mono 16 kHz WAV, enough to clear the
// normalizer's size and duration floors.
func speechWAV() []byte {
	const rate, frames = 16000, 16000
	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+frames*2))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(rate*2))
	_ = binary.Write(buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(frames*2))
	for i := 0; i < frames; i++ {
		_ = binary.Write(buf, binary.LittleEndian, int16(i%500))
	}
	return buf.Bytes()
}

func TestProcessNoInputMakesNoDownstreamCalls(t *testing.T) {
	d := newDeps()
	_, err := d.svc.Process(context.Background(), &models.InteractionRequest{
		UserLocation: "Kolar",
		LanguageName: "English",
	})
	if !errors.Is(err, core.ErrNoInput) {
		t.Fatalf("err = %v, want ErrNoInput", err)
	}
	if d.stt.calls+len(d.resp.prompts)+d.resp.visualCalls+d.tr.calls+d.tts.calls != 0 {
		t.Error("no downstream client may be called without input")
	}
	if len(d.store.upserted) != 0 || len(d.store.appended) != 0 {
		t.Error("nothing should be persisted without input")
	}
}

func TestProcessEnglishTextQuery(t *testing.T) {
	d := newDeps()
	resp, err := d.svc.Process(context.Background(), &models.InteractionRequest{
		UserID:       "7",
		UserLocation: "Kolar",
		LanguageName: "English",
		TextQuery:    "What is the price of tomato in Kolar?",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.AIResponse == "" {
		t.Error("expected non-empty ai_response")
	}
	if resp.QueryTranscript != "" {
		t.Errorf("transcript should be empty for text input, got %q", resp.QueryTranscript)
	}
	if resp.AudioOutputB64 != nil {
		t.Error("audio must be nil when speak_aloud is false")
	}
	if d.tr.calls != 0 {
		t.Error("English must not be translated")
	}
	if d.tts.calls != 0 {
		t.Error("synthesis must not run when speak_aloud is false")
	}
}

func TestProcessTranscriptWinsOverText(t *testing.T) {
	d := newDeps()
	d.stt.transcript = "spoken question"
	_, err := d.svc.Process(context.Background(), &models.InteractionRequest{
		UserLocation: "Kolar",
		LanguageName: "English",
		SpeakAloud:   false,
		Audio:        speechWAV(),
		TextQuery:    "typed question",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if d.stt.calls != 1 {
		t.Fatalf("transcriber calls = %d, want 1", d.stt.calls)
	}
	if d.stt.lastCode != "en-IN" {
		t.Errorf("stt code = %q, want en-IN", d.stt.lastCode)
	}
	if len(d.resp.prompts) != 1 || d.resp.prompts[0] != "spoken question" {
		t.Errorf("agent got %v, want the transcript", d.resp.prompts)
	}
}

func TestProcessEmptyTranscriptFallsBackToText(t *testing.T) {
	d := newDeps()
	d.stt.transcript = ""
	_, err := d.svc.Process(context.Background(), &models.InteractionRequest{
		UserLocation: "Kolar",
		LanguageName: "English",
		Audio:        speechWAV(),
		TextQuery:    "  typed question  ",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(d.resp.prompts) != 1 || d.resp.prompts[0] != "typed question" {
		t.Errorf("agent got %v, want trimmed typed text", d.resp.prompts)
	}
}

func TestProcessTinyAudioSkipsTranscription(t *testing.T) {
	d := newDeps()
	_, err := d.svc.Process(context.Background(), &models.InteractionRequest{
		UserLocation: "Kolar",
		LanguageName: "English",
		Audio:        []byte("tiny"),
		TextQuery:    "typed question",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if d.stt.calls != 0 {
		t.Error("audio under the size floor must not reach the transcriber")
	}
}

func TestProcessHindiSpeakAloud(t *testing.T) {
	d := newDeps()
	resp, err := d.svc.Process(context.Background(), &models.InteractionRequest{
		UserID:       "7",
		UserLocation: "Kolar",
		LanguageName: "Hindi (हिन्दी)",
		SpeakAloud:   true,
		TextQuery:    "What is the price of tomato in Kolar?",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if d.tr.calls != 1 || d.tr.lastCode != "hi" {
		t.Errorf("translator calls=%d code=%q, want 1/hi", d.tr.calls, d.tr.lastCode)
	}
	if d.tts.calls != 1 || d.tts.lastCode != "hi-IN" {
		t.Errorf("synth calls=%d code=%q, want 1/hi-IN", d.tts.calls, d.tts.lastCode)
	}
	// Synthesis must consume the translated text, not the raw answer.
	if d.tts.lastText != resp.AIResponse {
		t.Errorf("synth text %q != final response %q", d.tts.lastText, resp.AIResponse)
	}
	if resp.AudioOutputB64 == nil {
		t.Fatal("expected base64 audio")
	}
	decoded, decErr := base64.StdEncoding.DecodeString(*resp.AudioOutputB64)
	if decErr != nil || string(decoded) != "mp3-bytes" {
		t.Errorf("bad audio payload: %v %q", decErr, decoded)
	}
}

func TestProcessTranslationFailureAborts(t *testing.T) {
	d := newDeps()
	d.tr.err = errors.New("quota exceeded")
	_, err := d.svc.Process(context.Background(), &models.InteractionRequest{
		UserLocation: "Kolar",
		LanguageName: "Hindi (हिन्दी)",
		TextQuery:    "question",
	})
	if err == nil || errors.Is(err, core.ErrNoInput) {
		t.Fatalf("err = %v, want translation failure to propagate", err)
	}
	if d.tts.calls != 0 {
		t.Error("synthesis must not run after a failed translation")
	}
}

func TestProcessImageRoutesToVisualAgent(t *testing.T) {
	d := newDeps()
	_, err := d.svc.Process(context.Background(), &models.InteractionRequest{
		UserLocation: "Kolar",
		LanguageName: "English",
		TextQuery:    "what is wrong with this leaf",
		Image:        []byte("jpeg-bytes"),
		ImageMIME:    "image/jpeg",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if d.resp.visualCalls != 1 {
		t.Errorf("visual calls = %d, want 1", d.resp.visualCalls)
	}
	if len(d.resp.prompts) != 0 {
		t.Error("conversational agent must be skipped when an image is present")
	}
}

func TestProcessPersistsTurn(t *testing.T) {
	d := newDeps()
	_, err := d.svc.Process(context.Background(), &models.InteractionRequest{
		UserID:       "7",
		UserLocation: "Kolar",
		LanguageName: "English",
		TextQuery:    "question",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(d.store.upserted) != 1 || d.store.upserted[0].SessionID != "kisan_session_7" {
		t.Fatalf("session upsert = %+v, want kisan_session_7", d.store.upserted)
	}
	if len(d.store.appended) != 2 {
		t.Fatalf("appended %d messages, want user+assistant", len(d.store.appended))
	}
	if d.store.appended[0].Role != models.RoleUser || d.store.appended[1].Role != models.RoleAssistant {
		t.Errorf("roles = %q,%q", d.store.appended[0].Role, d.store.appended[1].Role)
	}
	if d.store.historyLimit != historyLimit {
		t.Errorf("history limit = %d, want %d", d.store.historyLimit, historyLimit)
	}
}

func TestProcessPassesHistoryAndContext(t *testing.T) {
	d := newDeps()
	d.store.history = []models.ChatMessage{{Role: models.RoleUser, Content: "earlier"}}
	_, err := d.svc.Process(context.Background(), &models.InteractionRequest{
		UserID:       "7",
		UserName:     "Ravi",
		UserLocation: "Kolar",
		LanguageName: "Tamil (தமிழ்)",
		TextQuery:    "question",
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(d.resp.seenHistory) != 1 {
		t.Errorf("history not forwarded to agent")
	}
	qc := d.resp.lastQC
	if qc.UserID != "7" || qc.UserName != "Ravi" || qc.Location != "Kolar" || qc.Language != "Tamil (தமிழ்)" {
		t.Errorf("query context = %+v", qc)
	}
}

func TestSessionID(t *testing.T) {
	if got := SessionID("42"); got != "kisan_session_42" {
		t.Errorf("SessionID(42) = %q", got)
	}
	if got := SessionID(""); got != "kisan_session_anonymous" {
		t.Errorf("SessionID(\"\") = %q", got)
	}
}
