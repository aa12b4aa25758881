package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Adithyan773/kisan-mitra/internal/config"
	"github.com/Adithyan773/kisan-mitra/internal/core"
	"github.com/Adithyan773/kisan-mitra/internal/models"
)

const pgUniqueViolation = "23505"

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Pool sized for a request-per-call API; each store operation uses
	// one connection and no transaction spans logical operations.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (name, state, district, city, password)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := c.db.QueryRowContext(ctx, q,
		user.Name, user.State, user.District, user.City, user.Password).Scan(&user.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return core.ErrDuplicateUser
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (c *DatabaseClient) GetUserByName(ctx context.Context, name string) (*models.User, error) {
	const q = `
		SELECT id, name, state, district, city, password
		FROM users WHERE name = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, name).Scan(
		&u.ID, &u.Name, &u.State, &u.District, &u.City, &u.Password,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func (c *DatabaseClient) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	const q = `
		SELECT session_id, user_id, state, COALESCE(summary, ''), last_updated
		FROM agent_sessions WHERE session_id = $1
	`
	var s models.Session
	err := c.db.QueryRowContext(ctx, q, sessionID).Scan(
		&s.SessionID, &s.UserID, &s.State, &s.Summary, &s.LastUpdated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	return &s, nil
}

// UpsertSession creates the session lazily on first interaction and
// refreshes state and last_updated on every later one.
func (c *DatabaseClient) UpsertSession(ctx context.Context, session *models.Session) error {
	if session == nil {
		return errors.New("nil session")
	}
	state := session.State
	if len(state) == 0 {
		state = []byte("{}")
	}
	const q = `
		INSERT INTO agent_sessions (session_id, user_id, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE SET
			state = EXCLUDED.state,
			last_updated = CURRENT_TIMESTAMP
	`
	if _, err := c.db.ExecContext(ctx, q, session.SessionID, session.UserID, state); err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (c *DatabaseClient) AddChatMessage(ctx context.Context, sessionID, role, content string) error {
	const q = `
		INSERT INTO chat_history (session_id, role, content)
		VALUES ($1, $2, $3)
	`
	if _, err := c.db.ExecContext(ctx, q, sessionID, role, content); err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

// GetChatHistory returns the limit most-recent messages in chronological
// order. The query walks newest-first and the rows are reversed after
// scanning.
func (c *DatabaseClient) GetChatHistory(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	const q = `
		SELECT id, session_id, role, content, created_at
		FROM chat_history
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := c.db.QueryContext(ctx, q, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("select chat history: %w", err)
	}
	defer rows.Close()

	var out []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
