package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLConfig configures a SQL-backed store.
type SQLConfig struct {
	// DB is the database connection.
	DB *sql.DB

	// TablePrefix is prepended to the templates and instances table names.
	TablePrefix string
}

// SQL is a Store persisted in a database/sql database. Queries use sqlite
// syntax.
type SQL struct {
	db        *sql.DB
	templates string
	instances string
	now       func() time.Time
}

var _ Store = (*SQL)(nil)

// OpenSQLite opens a sqlite database at dsn (":memory:" for a scratch
// database) and prepares the store tables.
func OpenSQLite(dsn string) (*SQL, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite: %w", err)
	}
	if dsn == ":memory:" {
		// each connection of an in-memory database is a separate database
		db.SetMaxOpenConns(1)
	}
	store, err := NewSQL(SQLConfig{DB: db})
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQL creates the store tables when missing.
func NewSQL(config SQLConfig) (*SQL, error) {
	if config.DB == nil {
		return nil, errors.New("store: sql database is required")
	}
	s := &SQL{
		db:        config.DB,
		templates: config.TablePrefix + "templates",
		instances: config.TablePrefix + "instances",
		now:       time.Now,
	}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("store: create tables: %w", err)
	}
	return s, nil
}

// DB exposes the underlying connection.
func (s *SQL) DB() *sql.DB {
	return s.db
}

// Close closes the underlying connection.
func (s *SQL) Close() error {
	return s.db.Close()
}

func (s *SQL) createTables() error {
	queries := []string{
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				kind TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL,
				data BLOB,
				content BLOB,
				updated_at TIMESTAMP NOT NULL
			)
		`, s.templates),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS idx_%s_kind_status ON %s (kind, status)
		`, s.templates, s.templates),
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id TEXT PRIMARY KEY,
				template_id TEXT NOT NULL DEFAULT '',
				overrides TEXT,
				legacy TEXT,
				updated_at TIMESTAMP NOT NULL
			)
		`, s.instances),
	}
	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQL) Template(ctx context.Context, id string) (Template, error) {
	query := fmt.Sprintf(`
		SELECT id, kind, title, status, data, content, updated_at
		FROM %s
		WHERE id = ?
	`, s.templates)

	var tpl Template
	err := s.db.QueryRowContext(ctx, query, normalizeID(id)).Scan(
		&tpl.ID,
		&tpl.Kind,
		&tpl.Title,
		&tpl.Status,
		&tpl.Data,
		&tpl.Content,
		&tpl.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Template{}, fmt.Errorf("store: template %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Template{}, fmt.Errorf("store: query template %q: %w", id, err)
	}
	return tpl, nil
}

func (s *SQL) Templates(ctx context.Context, opts ListOptions) ([]Summary, error) {
	query := fmt.Sprintf(`
		SELECT id, title
		FROM %s
		WHERE (? = '' OR kind = ?) AND (? = '' OR status = ?)
		ORDER BY title, id
	`, s.templates)

	rows, err := s.db.QueryContext(ctx, query, opts.Kind, opts.Kind, opts.Status, opts.Status)
	if err != nil {
		return nil, fmt.Errorf("store: list templates: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var summary Summary
		if err := rows.Scan(&summary.ID, &summary.Title); err != nil {
			return nil, fmt.Errorf("store: scan template: %w", err)
		}
		out = append(out, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list templates: %w", err)
	}
	return out, nil
}

func (s *SQL) SaveTemplate(ctx context.Context, t Template) error {
	t = normalizeTemplate(t)
	if t.ID == "" {
		return errors.New("store: template id is required")
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = s.now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, kind, title, status, data, content, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title,
			status = excluded.status,
			data = excluded.data,
			content = excluded.content,
			updated_at = excluded.updated_at
	`, s.templates)

	_, err := s.db.ExecContext(ctx, query, t.ID, t.Kind, t.Title, t.Status, t.Data, t.Content, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: save template %q: %w", t.ID, err)
	}
	return nil
}

func (s *SQL) Instance(ctx context.Context, id string) (Instance, error) {
	query := fmt.Sprintf(`
		SELECT id, template_id, overrides, legacy, updated_at
		FROM %s
		WHERE id = ?
	`, s.instances)

	var inst Instance
	var overridesJSON, legacyJSON sql.NullString
	err := s.db.QueryRowContext(ctx, query, normalizeID(id)).Scan(
		&inst.ID,
		&inst.TemplateID,
		&overridesJSON,
		&legacyJSON,
		&inst.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Instance{}, fmt.Errorf("store: instance %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Instance{}, fmt.Errorf("store: query instance %q: %w", id, err)
	}

	if overridesJSON.Valid && overridesJSON.String != "" {
		if err := json.Unmarshal([]byte(overridesJSON.String), &inst.Overrides); err != nil {
			return Instance{}, fmt.Errorf("store: unmarshal overrides of %q: %w", id, err)
		}
	}
	if legacyJSON.Valid && legacyJSON.String != "" {
		if err := json.Unmarshal([]byte(legacyJSON.String), &inst.Legacy); err != nil {
			return Instance{}, fmt.Errorf("store: unmarshal legacy overrides of %q: %w", id, err)
		}
	}
	return inst, nil
}

func (s *SQL) SaveInstance(ctx context.Context, i Instance) error {
	i.ID = normalizeID(i.ID)
	if i.ID == "" {
		return errors.New("store: instance id is required")
	}
	if i.UpdatedAt.IsZero() {
		i.UpdatedAt = s.now()
	}

	overridesJSON, err := nullableJSON(i.Overrides, len(i.Overrides))
	if err != nil {
		return fmt.Errorf("store: marshal overrides of %q: %w", i.ID, err)
	}
	legacyJSON, err := nullableJSON(i.Legacy, len(i.Legacy))
	if err != nil {
		return fmt.Errorf("store: marshal legacy overrides of %q: %w", i.ID, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, template_id, overrides, legacy, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			template_id = excluded.template_id,
			overrides = excluded.overrides,
			legacy = excluded.legacy,
			updated_at = excluded.updated_at
	`, s.instances)

	_, err = s.db.ExecContext(ctx, query, i.ID, i.TemplateID, overridesJSON, legacyJSON, i.UpdatedAt)
	if err != nil {
		return fmt.Errorf("store: save instance %q: %w", i.ID, err)
	}
	return nil
}

func nullableJSON(value any, n int) (sql.NullString, error) {
	if n == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
