// Package filterdb keeps the local filter database: a SQLite file whose
// schema and seed data come from the bundled scripts.
package filterdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// SchemaVersion is the schema version the bundled scripts produce.
const SchemaVersion = 2

// ErrNewerSchema is returned when the database was written by a newer build.
var ErrNewerSchema = errors.New("database schema is newer than supported")

// Scripts supplies the SQL used to build and migrate the database.
// *resources.Provider satisfies it.
type Scripts interface {
	CreateTablesScript() (string, error)
	DropTablesScript() (string, error)
	InsertFiltersScript() (string, error)
	InsertFiltersLocalizationScript() (string, error)
	EnableDefaultFiltersScript() (string, error)
	SelectFiltersScript() (string, error)
	UpdateScript(oldVersion, newVersion int) (string, bool, error)
}

// Filter is one row of the filter listing.
type Filter struct {
	ID          int
	Name        string
	Description string
	Enabled     bool
}

// Store provides SQLite-backed filter persistence.
type Store struct {
	sqlDB   *sql.DB
	scripts Scripts
	version int
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSchemaVersion overrides the target schema version.
func WithSchemaVersion(v int) Option {
	return func(s *Store) { s.version = v }
}

// Open opens the filter database at path, creating or upgrading it.
func Open(ctx context.Context, path string, scripts Scripts, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if scripts == nil {
		return nil, fmt.Errorf("scripts are required")
	}

	store := &Store{
		scripts: scripts,
		version: SchemaVersion,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.version < 1 {
		return nil, fmt.Errorf("schema version must be positive, got %d", store.version)
	}

	dsn := "file:" + filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// user_version and the migration transaction must share a connection.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	store.sqlDB = sqlDB

	if err := store.migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("prepare schema: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Version returns the schema version recorded in the database.
func (s *Store) Version(ctx context.Context) (int, error) {
	var v int
	if err := s.sqlDB.QueryRowContext(ctx, "PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

// Filters lists filters localized for the current default locale.
func (s *Store) Filters(ctx context.Context) ([]Filter, error) {
	query, err := s.scripts.SelectFiltersScript()
	if err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select filters: %w", err)
	}
	defer rows.Close()

	var filters []Filter
	for rows.Next() {
		var f Filter
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.Enabled); err != nil {
			return nil, fmt.Errorf("scan filter: %w", err)
		}
		filters = append(filters, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate filters: %w", err)
	}
	return filters, nil
}

// EnabledFilterIDs lists the ids of enabled filters in ascending order.
func (s *Store) EnabledFilterIDs(ctx context.Context) ([]int, error) {
	rows, err := s.sqlDB.QueryContext(ctx, "SELECT filter_id FROM filters WHERE enabled = 1 ORDER BY filter_id")
	if err != nil {
		return nil, fmt.Errorf("select enabled filters: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan filter id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
