// Package sqlite implements the SQLite storage backend for the vault entry
// store: per-kind entry repositories, the relational linking layer, and the
// derived view builders, all over a single database handle with an explicit
// Attach/Detach lifecycle.
package sqlite

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// Compile-time interface check: Backend must implement Vault.
var _ types.Vault = (*Backend)(nil)

// Backend implements the Vault interface using SQLite as the storage engine.
// All operations run through one *sql.DB owned by the backend; there is no
// package-level handle.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	logger   *slog.Logger

	// columns caches PRAGMA table_info results per table. Write paths for
	// actions and paths consult it so an on-device schema that lags the
	// application's expected shape degrades to writing fewer columns instead
	// of failing.
	columns map[string]map[string]bool
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the structured logger used for storage-failure diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBackend creates a detached SQLite backend. Call Attach with a Config to
// initialize it.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		logger:  slog.Default(),
		columns: make(map[string]map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach initializes the backend with the given configuration. Creates
// DataDir if it does not exist, opens vault.db, and runs schema migration.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	db, err := sql.Open("sqlite", filepath.Join(dataDir, "vault.db"))
	if err != nil {
		return err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return err
	}

	b.db = db
	b.config = config
	b.columns = make(map[string]map[string]bool)
	b.attached = true

	// Older stores predate the paths.tags column; add it opportunistically
	// and tolerate refusal (a migration racing a re-run, a read-only store).
	b.ensurePathTagsColumn()

	return nil
}

// Detach closes the database handle. Idempotent; after Detach all operations
// return ErrDetached.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.columns = make(map[string]map[string]bool)
	return nil
}

// newID generates a UUID v7 string, falling back to v4 if the monotonic
// source fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// timeLayout is RFC3339 with a fixed-width nanosecond fraction so stored
// timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatTimePtr(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

// touch returns the refreshed UpdatedAt value. The clock may not tick between
// two writes in the same call chain; UpdatedAt must still strictly increase.
func touch(prev time.Time) time.Time {
	now := time.Now()
	if !now.After(prev) {
		now = prev.Add(time.Nanosecond)
	}
	return now
}

// execer is satisfied by both *sql.DB and *sql.Tx, letting row helpers run
// inside or outside a transaction.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// boolToInt stores booleans as 0/1 columns.
func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

// logError records a storage failure with operation context before the error
// is returned to the caller.
func (b *Backend) logError(op, id string, err error) {
	b.logger.Error("storage operation failed",
		slog.String("op", op),
		slog.String("id", id),
		slog.String("error", err.Error()))
}
