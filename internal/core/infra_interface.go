package core

import (
	"context"
	"errors"

	"github.com/Adithyan773/kisan-mitra/internal/models"
)

// Domain errors surfaced to handlers.
var (
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrNoInput            = errors.New("no usable input provided")
)

// Store defines all persistence operations the services need. It
// abstracts Postgres so higher layers never depend on a specific DB.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByName(ctx context.Context, name string) (*models.User, error)

	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	UpsertSession(ctx context.Context, session *models.Session) error

	AddChatMessage(ctx context.Context, sessionID, role, content string) error
	// GetChatHistory returns up to limit most-recent messages for the
	// session, in chronological (oldest-first) order.
	GetChatHistory(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)

	Close() error
}

// QueryContext carries the per-call identity the agents need. Passing it
// explicitly keeps the shared agent bindings read-only across requests.
type QueryContext struct {
	UserID   string
	UserName string
	Location string
	Language string
}

// Responder produces natural-language answers, optionally calling tools.
// Implementations swallow their own failures and return an apology
// string instead of an error.
type Responder interface {
	Respond(ctx context.Context, prompt string, history []models.ChatMessage, qc QueryContext) string
	AnalyzeVisuals(ctx context.Context, prompt string, image []byte, mimeType string, qc QueryContext) string
}

// Transcriber converts a canonical mono 16-bit PCM waveform to text.
// Failures degrade to "".
type Transcriber interface {
	Transcribe(ctx context.Context, wavBytes []byte, sampleRate int, languageCode string) string
}

// Synthesizer converts text to encoded audio. Failures degrade to nil.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, languageCode string) []byte
}

// Translator renders text into a target language. Failures propagate.
type Translator interface {
	Translate(ctx context.Context, text, targetCode string) (string, error)
}
