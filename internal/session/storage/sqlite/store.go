package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/backer.space/internal/api"
	sqlitemigrate "github.com/louisbranch/backer.space/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/backer.space/internal/session"
	"github.com/louisbranch/backer.space/internal/session/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// defaultSlot is the row a single-account client reads and writes.
const defaultSlot = "default"

// Store implements session.Store over SQLite.
type Store struct {
	sqlDB *sql.DB
	slot  string
	now   func() time.Time
}

// Open opens a session store at path and applies bundled migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := "file:" + cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.Apply(ctx, sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB, slot: defaultSlot, now: time.Now}, nil
}

// Close releases the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Load returns the stored envelope, if any.
func (s *Store) Load(ctx context.Context) (api.AccessTokenEnvelope, bool, error) {
	var (
		token    string
		userJSON string
	)
	err := s.sqlDB.QueryRowContext(ctx,
		"SELECT access_token, user_json FROM sessions WHERE slot = ?", s.slot,
	).Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return api.AccessTokenEnvelope{}, false, nil
	}
	if err != nil {
		return api.AccessTokenEnvelope{}, false, fmt.Errorf("load session: %w", err)
	}
	var user api.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		return api.AccessTokenEnvelope{}, false, fmt.Errorf("decode session user: %w", err)
	}
	return api.AccessTokenEnvelope{AccessToken: token, User: user}, true, nil
}

// Save replaces the stored envelope.
func (s *Store) Save(ctx context.Context, envelope api.AccessTokenEnvelope) error {
	if strings.TrimSpace(envelope.AccessToken) == "" {
		return fmt.Errorf("access token is required")
	}
	userJSON, err := json.Marshal(envelope.User)
	if err != nil {
		return fmt.Errorf("encode session user: %w", err)
	}
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO sessions (slot, access_token, user_id, user_json, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(slot) DO UPDATE SET
    access_token = excluded.access_token,
    user_id = excluded.user_id,
    user_json = excluded.user_json,
    updated_at = excluded.updated_at`,
		s.slot, envelope.AccessToken, envelope.User.ID, string(userJSON), s.now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear removes the stored envelope.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.sqlDB.ExecContext(ctx, "DELETE FROM sessions WHERE slot = ?", s.slot); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

var _ session.Store = (*Store)(nil)
