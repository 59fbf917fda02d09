package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"manim-server/internal/logger"
)

var (
	ErrNotFound  = errors.New("render not found")
	ErrDuplicate = errors.New("render already recorded")
)

// Render is one recorded generation request.
type Render struct {
	ID            string    `json:"id"`
	Prompt        string    `json:"prompt"`
	SceneName     string    `json:"scene_name"`
	VideoURL      string    `json:"video_url,omitempty"`
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	UpstreamError string    `json:"upstream_error,omitempty"`
	UserID        string    `json:"user_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store keeps render history in PostgreSQL.
type Store struct {
	db  *sql.DB
	log logger.Logger
}

// Open connects to dsn and creates the schema if needed.
func Open(ctx context.Context, dsn string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Discard()
	}
	log = log.With("component", "store")

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Connected to database")

	s := New(db, log)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing connection pool.
func New(db *sql.DB, log logger.Logger) *Store {
	if log == nil {
		log = logger.Discard()
	}
	return &Store{db: db, log: log}
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS renders (
			id VARCHAR(32) PRIMARY KEY,
			prompt TEXT NOT NULL,
			scene_name VARCHAR(64) NOT NULL,
			video_url TEXT NOT NULL DEFAULT '',
			success BOOLEAN NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			upstream_error TEXT NOT NULL DEFAULT '',
			user_id VARCHAR(64) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create renders table: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_renders_success ON renders(success)`); err != nil {
		s.log.Warn("Failed to create index on renders table", "error", err)
	}
	s.log.Debug("Renders table created or already exists")
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRender inserts r. A zero CreatedAt is set by the database.
func (s *Store) SaveRender(ctx context.Context, r Render) error {
	var createdAt any
	if !r.CreatedAt.IsZero() {
		createdAt = r.CreatedAt.UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO renders (id, prompt, scene_name, video_url, success, message, upstream_error, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE($9::timestamp, CURRENT_TIMESTAMP))`,
		r.ID, r.Prompt, r.SceneName, r.VideoURL, r.Success, r.Message, r.UpstreamError, r.UserID, createdAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrDuplicate, r.ID)
		}
		return fmt.Errorf("failed to insert render: %w", err)
	}
	s.log.Debug("Render saved", "id", r.ID, "success", r.Success)
	return nil
}

const selectRender = `SELECT id, prompt, scene_name, video_url, success, message, upstream_error, user_id, created_at FROM renders`

func (s *Store) GetRender(ctx context.Context, id string) (Render, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, selectRender+` WHERE id = $1`, id))
}

// GetRandomRender returns a random successful render.
func (s *Store) GetRandomRender(ctx context.Context) (Render, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, selectRender+` WHERE success ORDER BY RANDOM() LIMIT 1`))
}

func (s *Store) RenderExists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM renders WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}
	return exists, nil
}

func (s *Store) scanOne(row *sql.Row) (Render, error) {
	var r Render
	err := row.Scan(&r.ID, &r.Prompt, &r.SceneName, &r.VideoURL, &r.Success, &r.Message, &r.UpstreamError, &r.UserID, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Render{}, ErrNotFound
	}
	if err != nil {
		return Render{}, fmt.Errorf("database error: %w", err)
	}
	return r, nil
}
