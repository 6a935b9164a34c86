// Lifecycle tests for the SQLite backend: attach, detach, and the errors
// operations return around them.
package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// setupBackend creates an attached Backend over a temp directory, detached
// automatically at cleanup.
func setupBackend(t *testing.T) *Backend {
	t.Helper()
	b := NewBackend()
	config := types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}
	require.NoError(t, b.Attach(config))
	t.Cleanup(func() { b.Detach() })
	return b
}

func TestLifecycle(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{
			name: "attach creates the database file",
			check: func(t *testing.T) {
				dir := t.TempDir()
				b := NewBackend()
				require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
				defer b.Detach()
				assert.FileExists(t, filepath.Join(dir, "vault.db"))
			},
		},
		{
			name: "attach twice returns ErrAlreadyAttached",
			check: func(t *testing.T) {
				b := setupBackend(t)
				err := b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
				assert.ErrorIs(t, err, types.ErrAlreadyAttached)
			},
		},
		{
			name: "attach rejects an unknown backend",
			check: func(t *testing.T) {
				b := NewBackend()
				err := b.Attach(types.Config{Backend: "postgres", DataDir: t.TempDir()})
				assert.ErrorIs(t, err, types.ErrBackendUnknown)
			},
		},
		{
			name: "operations after detach return ErrDetached",
			check: func(t *testing.T) {
				b := setupBackend(t)
				require.NoError(t, b.Detach())

				_, err := b.GetAllNotes()
				assert.ErrorIs(t, err, types.ErrDetached)

				err = b.CreateNote(&types.Note{Title: "late"})
				assert.ErrorIs(t, err, types.ErrDetached)
			},
		},
		{
			name: "detach is idempotent",
			check: func(t *testing.T) {
				b := setupBackend(t)
				require.NoError(t, b.Detach())
				assert.NoError(t, b.Detach())
			},
		},
		{
			name: "reattach after detach sees existing data",
			check: func(t *testing.T) {
				dir := t.TempDir()
				cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

				b := NewBackend()
				require.NoError(t, b.Attach(cfg))
				note := &types.Note{Title: "persists"}
				require.NoError(t, b.CreateNote(note))
				require.NoError(t, b.Detach())

				require.NoError(t, b.Attach(cfg))
				defer b.Detach()
				got, err := b.GetNoteByID(note.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, "persists", got.Title)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t)
		})
	}
}

func TestSchemaVersionRecorded(t *testing.T) {
	b := setupBackend(t)

	var version int
	require.NoError(t, b.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, schemaVersion, version)
}

func TestNewIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := newID()
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestTimeLayoutSortsLexicographically(t *testing.T) {
	// Fixed-width fractions keep text ordering aligned with time ordering.
	earlier := parseTime("2024-01-01T00:00:00.000000000Z")
	later := earlier.Add(1)
	assert.Less(t, formatTime(earlier), formatTime(later))
}

func TestTouchStrictlyIncreases(t *testing.T) {
	prev := touch(time.Time{})
	next := touch(prev)
	assert.True(t, next.After(prev))

	// Even a previous stamp in the future yields a later one.
	future := prev.Add(time.Hour)
	assert.True(t, touch(future).After(future))
}
