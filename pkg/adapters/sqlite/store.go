// Package sqlite implements the canonical canvas service on an embedded
// SQLite database (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/blueprint/pkg/domain"
	_ "modernc.org/sqlite"
)

const timeLayout = time.RFC3339Nano

// CanvasService implements ports.CanvasService.
// One canvas is stored per (store, page type); sections are kept as JSON rows
// ordered by position.
type CanvasService struct {
	conn *sql.DB
	now  func() time.Time
}

// Option configures the CanvasService.
type Option func(*CanvasService)

// WithClock overrides the clock used for publish timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *CanvasService) {
		s.now = now
	}
}

// Open opens (or creates) the database at path and applies migrations.
// Use ":memory:" for a throwaway database.
func Open(path string, opts ...Option) (*CanvasService, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Single writer; also keeps a :memory: database alive across calls.
	conn.SetMaxOpenConns(1)

	s := &CanvasService{conn: conn, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *CanvasService) Close() error {
	return s.conn.Close()
}

func (s *CanvasService) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS canvases (
			store_id TEXT NOT NULL,
			page_type_id TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'draft',
			theme_id TEXT,
			template_id TEXT,
			config_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (store_id, page_type_id)
		)`,
		`CREATE TABLE IF NOT EXISTS sections (
			store_id TEXT NOT NULL,
			page_type_id TEXT NOT NULL,
			id TEXT NOT NULL,
			position INTEGER NOT NULL,
			type TEXT NOT NULL,
			body_json TEXT NOT NULL,
			PRIMARY KEY (store_id, page_type_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sections_page ON sections(store_id, page_type_id, position)`,
		`ALTER TABLE canvases ADD COLUMN published_at TEXT`,
	}

	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			// ALTER TABLE fails if column already exists
			if strings.Contains(m, "ALTER TABLE") && strings.Contains(err.Error(), "duplicate column") {
				continue
			}
			return fmt.Errorf("migration failed: %s: %w", m[:40], err)
		}
	}
	return nil
}

// Fetch implements ports.CanvasService.
func (s *CanvasService) Fetch(ctx context.Context, storeID, pageTypeID string) (*domain.Canvas, error) {
	var (
		c                    domain.Canvas
		themeID, templateID  sql.NullString
		configJSON           string
		createdAt, updatedAt string
	)
	err := s.conn.QueryRowContext(ctx,
		`SELECT id, title, status, theme_id, template_id, config_json, created_at, updated_at
		 FROM canvases WHERE store_id = ? AND page_type_id = ?`,
		storeID, pageTypeID,
	).Scan(&c.ID, &c.Title, &c.Status, &themeID, &templateID, &configJSON, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrCanvasNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query canvas: %w", err)
	}

	c.StoreID = storeID
	c.PageTypeID = pageTypeID
	if themeID.Valid {
		c.ThemeID = &themeID.String
	}
	if templateID.Valid {
		c.TemplateID = &templateID.String
	}
	if err := json.Unmarshal([]byte(configJSON), &c.CanvasConfig); err != nil {
		return nil, fmt.Errorf("decode canvas config: %w", err)
	}
	if len(c.CanvasConfig) == 0 {
		c.CanvasConfig = nil
	}
	if c.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT body_json FROM sections
		 WHERE store_id = ? AND page_type_id = ? ORDER BY position ASC`,
		storeID, pageTypeID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	c.Sections = []domain.Section{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		var sec domain.Section
		if err := json.Unmarshal([]byte(body), &sec); err != nil {
			return nil, fmt.Errorf("decode section: %w", err)
		}
		c.Sections = append(c.Sections, sec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	c.Reindex()
	return &c, nil
}

// Save implements ports.CanvasService.
func (s *CanvasService) Save(ctx context.Context, canvas *domain.Canvas) error {
	return s.write(ctx, canvas, canvas.Status, nil)
}

// Publish implements ports.CanvasService.
// The stored canvas is marked published regardless of the status it carries.
func (s *CanvasService) Publish(ctx context.Context, canvas *domain.Canvas) error {
	now := s.now().UTC()
	return s.write(ctx, canvas, domain.StatusPublished, &now)
}

// write replaces the canvas row and all of its sections in one transaction.
func (s *CanvasService) write(ctx context.Context, canvas *domain.Canvas, status domain.CanvasStatus, publishedAt *time.Time) error {
	if err := canvas.Validate(); err != nil {
		return err
	}
	config, err := json.Marshal(canvas.CanvasConfig)
	if err != nil {
		return fmt.Errorf("encode canvas config: %w", err)
	}
	if canvas.CanvasConfig == nil {
		config = []byte("{}")
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var published sql.NullString
	if publishedAt != nil {
		published = sql.NullString{String: publishedAt.Format(timeLayout), Valid: true}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO canvases (store_id, page_type_id, id, title, status, theme_id, template_id, config_json, created_at, updated_at, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(store_id, page_type_id) DO UPDATE SET
			id = excluded.id,
			title = excluded.title,
			status = excluded.status,
			theme_id = excluded.theme_id,
			template_id = excluded.template_id,
			config_json = excluded.config_json,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			published_at = COALESCE(excluded.published_at, canvases.published_at)`,
		canvas.StoreID, canvas.PageTypeID, canvas.ID, canvas.Title, string(status),
		nullable(canvas.ThemeID), nullable(canvas.TemplateID), string(config),
		canvas.CreatedAt.UTC().Format(timeLayout), canvas.UpdatedAt.UTC().Format(timeLayout), published,
	)
	if err != nil {
		return fmt.Errorf("upsert canvas: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sections WHERE store_id = ? AND page_type_id = ?`,
		canvas.StoreID, canvas.PageTypeID,
	); err != nil {
		return fmt.Errorf("delete sections: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sections (store_id, page_type_id, id, position, type, body_json) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, sec := range canvas.Sections {
		sec.Order = i
		body, err := json.Marshal(sec)
		if err != nil {
			return fmt.Errorf("encode section %s: %w", sec.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, canvas.StoreID, canvas.PageTypeID, sec.ID, i, sec.Type, string(body)); err != nil {
			return fmt.Errorf("insert section %s: %w", sec.ID, err)
		}
	}

	return tx.Commit()
}

// PublishedAt returns when the page was last published, if ever.
func (s *CanvasService) PublishedAt(ctx context.Context, storeID, pageTypeID string) (time.Time, bool, error) {
	var published sql.NullString
	err := s.conn.QueryRowContext(ctx,
		`SELECT published_at FROM canvases WHERE store_id = ? AND page_type_id = ?`,
		storeID, pageTypeID,
	).Scan(&published)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, domain.ErrCanvasNotFound
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query published_at: %w", err)
	}
	if !published.Valid {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(timeLayout, published.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse published_at: %w", err)
	}
	return t, true, nil
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
