// Unit tests for the note repository: round trips, partial updates, and
// not-found conventions.
package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/vault/pkg/types"
)

func TestNoteCRUD(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend)
	}{
		{
			name: "create assigns id and timestamps",
			check: func(t *testing.T, b *Backend) {
				note := &types.Note{Title: "First note"}
				require.NoError(t, b.CreateNote(note))

				assert.NotEmpty(t, note.ID)
				assert.False(t, note.CreatedAt.IsZero())
				assert.Equal(t, note.CreatedAt, note.UpdatedAt)
			},
		},
		{
			name: "create rejects an empty title",
			check: func(t *testing.T, b *Backend) {
				err := b.CreateNote(&types.Note{Body: "no title"})
				assert.Error(t, err)
			},
		},
		{
			name: "round trip preserves every field",
			check: func(t *testing.T, b *Backend) {
				note := &types.Note{
					Title: "Round trip",
					Body:  "body text",
					Tags:  []string{"a", "b"},
				}
				require.NoError(t, b.CreateNote(note))

				got, err := b.GetNoteByID(note.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, note.Title, got.Title)
				assert.Equal(t, note.Body, got.Body)
				assert.Equal(t, note.Tags, got.Tags)
				assert.True(t, got.CreatedAt.Equal(note.CreatedAt))
			},
		},
		{
			name: "get unknown id returns nil without error",
			check: func(t *testing.T, b *Backend) {
				got, err := b.GetNoteByID(newID())
				require.NoError(t, err)
				assert.Nil(t, got)
			},
		},
		{
			name: "get empty id returns ErrInvalidID",
			check: func(t *testing.T, b *Backend) {
				_, err := b.GetNoteByID("")
				assert.ErrorIs(t, err, types.ErrInvalidID)
			},
		},
		{
			name: "list orders newest created first",
			check: func(t *testing.T, b *Backend) {
				first := &types.Note{Title: "first"}
				second := &types.Note{Title: "second"}
				require.NoError(t, b.CreateNote(first))
				require.NoError(t, b.CreateNote(second))

				notes, err := b.GetAllNotes()
				require.NoError(t, err)
				require.Len(t, notes, 2)
				assert.Equal(t, "second", notes[0].Title)
				assert.Equal(t, "first", notes[1].Title)
			},
		},
		{
			name: "partial update leaves other fields untouched",
			check: func(t *testing.T, b *Backend) {
				note := &types.Note{Title: "keep me", Body: "original", Tags: []string{"x"}}
				require.NoError(t, b.CreateNote(note))

				body := "changed"
				found, err := b.UpdateNote(note.ID, types.NotePatch{Body: &body})
				require.NoError(t, err)
				assert.True(t, found)

				got, err := b.GetNoteByID(note.ID)
				require.NoError(t, err)
				assert.Equal(t, "keep me", got.Title)
				assert.Equal(t, "changed", got.Body)
				assert.Equal(t, []string{"x"}, got.Tags)
				assert.True(t, got.UpdatedAt.After(got.CreatedAt))
			},
		},
		{
			name: "update of a missing note reports not found",
			check: func(t *testing.T, b *Backend) {
				title := "ghost"
				found, err := b.UpdateNote(newID(), types.NotePatch{Title: &title})
				require.NoError(t, err)
				assert.False(t, found)
			},
		},
		{
			name: "delete is idempotent",
			check: func(t *testing.T, b *Backend) {
				note := &types.Note{Title: "doomed"}
				require.NoError(t, b.CreateNote(note))

				found, err := b.DeleteNote(note.ID)
				require.NoError(t, err)
				assert.True(t, found)

				found, err = b.DeleteNote(note.ID)
				require.NoError(t, err)
				assert.False(t, found)

				got, err := b.GetNoteByID(note.ID)
				require.NoError(t, err)
				assert.Nil(t, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, setupBackend(t))
		})
	}
}
