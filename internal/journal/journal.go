package journal

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/forty96/internal/engine"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - sessions and tile_events
const currentSchemaVersion = 1

// Journal is an in-memory tile-event log.
//
// Thread-safety: all methods are safe for concurrent use; writes are
// serialized by the single database connection.
type Journal struct {
	db       *sql.DB
	clock    *engine.Clock
	sessions SessionGenerator
	logger   *slog.Logger
}

// Option configures a Journal.
type Option func(*Journal)

// WithSessionGenerator sets the token source for Begin.
// Default: UUIDv7Generator.
func WithSessionGenerator(g SessionGenerator) Option {
	return func(j *Journal) {
		if g != nil {
			j.sessions = g
		}
	}
}

// WithClock sets the clock that stamps events and sessions.
// Default: a fresh clock starting at 1.
func WithClock(c *engine.Clock) Option {
	return func(j *Journal) {
		if c != nil {
			j.clock = c
		}
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(j *Journal) {
		if logger != nil {
			j.logger = logger
		}
	}
}

// Open creates an empty journal backed by a private in-memory database.
func Open(opts ...Option) (*Journal, error) {
	j := &Journal{
		clock:    engine.NewClock(),
		sessions: UUIDv7Generator{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}

	dsn := fmt.Sprintf("file:journal-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// The in-memory database dies with its last connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	j.db = db
	return j, nil
}

// Close drops the journal and all its sessions.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version >= currentSchemaVersion {
		return nil
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
