package models

import (
	"time"
)

// User represents a registered farmer account.
type User struct {
	ID       int    `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	State    string `db:"state" json:"state"`
	District string `db:"district" json:"district"`
	City     string `db:"city" json:"city"`
	// Password is stored as produced by the configured scheme. Under the
	// legacy "plaintext" scheme this column holds the raw password, kept
	// for compatibility with the original prototype. Never expose it.
	Password string `db:"password" json:"-"`
}

// Location renders the user's location as used in agent prompts and
// search queries.
func (u *User) Location() string {
	return u.City + ", " + u.District + ", " + u.State
}

// Session holds accumulated agent state for one user. The session ID is
// a pure function of the user ID, so every device of a user shares one
// session.
type Session struct {
	SessionID   string    `db:"session_id" json:"session_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	State       []byte    `db:"state" json:"state"` // opaque JSONB
	Summary     string    `db:"summary" json:"summary,omitempty"`
	LastUpdated time.Time `db:"last_updated" json:"last_updated"`
}

// Chat message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation. Rows are append-only and
// removed only by cascade when the owning session is deleted.
type ChatMessage struct {
	ID        int       `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Role      string    `db:"role" json:"role"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// InteractionRequest is the transient per-call input of one user turn.
// Audio and image bytes are never persisted.
type InteractionRequest struct {
	UserID       string
	UserName     string
	UserLocation string
	LanguageName string
	SpeakAloud   bool
	Audio        []byte
	TextQuery    string
	Image        []byte
	ImageMIME    string
}

// InteractionResponse is the transient per-call output of one user turn.
type InteractionResponse struct {
	QueryTranscript string  `json:"query_transcript"`
	AIResponse      string  `json:"ai_response"`
	AudioOutputB64  *string `json:"audio_output_b64"`
}
