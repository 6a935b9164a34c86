package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// Note repository. Notes assume the current schema shape; only actions and
// paths carry the introspection fallback.

// CreateNote assigns an id and timestamps and persists the note.
func (b *Backend) CreateNote(n *types.Note) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	if err := n.Validate(); err != nil {
		return err
	}

	now := time.Now()
	n.ID = newID()
	n.CreatedAt = now
	n.UpdatedAt = now

	_, err := b.db.Exec(
		"INSERT INTO notes (note_id, title, body, tags, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		n.ID, n.Title, nullIfEmpty(n.Body), encodeStringList(n.Tags),
		formatTime(n.CreatedAt), formatTime(n.UpdatedAt))
	if err != nil {
		b.logError("create note", n.ID, err)
		return fmt.Errorf("creating note: %w", err)
	}
	return nil
}

// GetNoteByID returns the note, or (nil, nil) when absent.
func (b *Backend) GetNoteByID(id string) (*types.Note, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := b.db.QueryRow(
		"SELECT note_id, title, body, tags, created_at, updated_at FROM notes WHERE note_id = ?", id)
	n, err := b.scanNote(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		b.logError("get note", id, err)
		return nil, fmt.Errorf("getting note %s: %w", id, err)
	}
	return n, nil
}

// GetAllNotes returns all notes, newest created first.
func (b *Backend) GetAllNotes() ([]*types.Note, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.Query(
		"SELECT note_id, title, body, tags, created_at, updated_at FROM notes ORDER BY created_at DESC")
	if err != nil {
		b.logError("list notes", "", err)
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	notes := []*types.Note{}
	for rows.Next() {
		n, err := b.scanNote(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpdateNote merges the patch over the stored note. Returns (false, nil) when
// the note does not exist.
func (b *Backend) UpdateNote(id string, patch types.NotePatch) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	n, err := b.getNoteLocked(id)
	if err != nil {
		return false, err
	}
	if n == nil {
		return false, nil
	}

	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Body != nil {
		n.Body = *patch.Body
	}
	if patch.Tags != nil {
		n.Tags = *patch.Tags
	}
	n.UpdatedAt = touch(n.UpdatedAt)

	_, err = b.db.Exec(
		"UPDATE notes SET title = ?, body = ?, tags = ?, updated_at = ? WHERE note_id = ?",
		n.Title, nullIfEmpty(n.Body), encodeStringList(n.Tags), formatTime(n.UpdatedAt), id)
	if err != nil {
		b.logError("update note", id, err)
		return false, fmt.Errorf("updating note %s: %w", id, err)
	}
	return true, nil
}

// DeleteNote removes the note. Returns (false, nil) when already gone.
func (b *Backend) DeleteNote(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	res, err := b.db.Exec("DELETE FROM notes WHERE note_id = ?", id)
	if err != nil {
		b.logError("delete note", id, err)
		return false, fmt.Errorf("deleting note %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (b *Backend) getNoteLocked(id string) (*types.Note, error) {
	row := b.db.QueryRow(
		"SELECT note_id, title, body, tags, created_at, updated_at FROM notes WHERE note_id = ?", id)
	n, err := b.scanNote(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting note %s: %w", id, err)
	}
	return n, nil
}

func (b *Backend) scanNote(scan func(...any) error) (*types.Note, error) {
	var n types.Note
	var body, tags sql.NullString
	var createdAt, updatedAt string
	if err := scan(&n.ID, &n.Title, &body, &tags, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	n.Body = stringOrEmpty(body)
	n.Tags = b.decodeStringList(tags, "notes.tags")
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)
	return &n, nil
}
