package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// Saga repository. Chapters are owned children keyed by chapter_number;
// deleting the saga deletes them with it.

const sagaSelectColumns = "saga_id, name, icon, created_at, updated_at"

const chapterColumns = "chapter_id, saga_id, chapter_number, start_date, end_date"

// CreateSaga assigns ids and timestamps and persists the saga with its
// chapters in one transaction.
func (b *Backend) CreateSaga(s *types.Saga) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	if err := s.Validate(); err != nil {
		return err
	}

	now := time.Now()
	s.ID = newID()
	s.CreatedAt = now
	s.UpdatedAt = now

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO sagas ("+sagaSelectColumns+") VALUES (?, ?, ?, ?, ?)",
		s.ID, s.Name, nullIfEmpty(s.Icon), formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		b.logError("create saga", s.ID, err)
		return fmt.Errorf("creating saga: %w", err)
	}

	for i := range s.Chapters {
		c := &s.Chapters[i]
		c.ID = newID()
		c.SagaID = s.ID
		if c.ChapterNumber == 0 {
			c.ChapterNumber = i + 1
		}
		if err := insertChapter(tx, c); err != nil {
			b.logError("create chapter", c.ID, err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing saga: %w", err)
	}
	return nil
}

func insertChapter(tx *sql.Tx, c *types.Chapter) error {
	_, err := tx.Exec(
		"INSERT INTO chapters ("+chapterColumns+") VALUES (?, ?, ?, ?, ?)",
		c.ID, c.SagaID, c.ChapterNumber, formatTime(c.StartDate), formatTimePtr(c.EndDate))
	if err != nil {
		return fmt.Errorf("inserting chapter: %w", err)
	}
	return nil
}

func updateChapter(tx *sql.Tx, c *types.Chapter) error {
	_, err := tx.Exec(
		"UPDATE chapters SET chapter_number = ?, start_date = ?, end_date = ? WHERE chapter_id = ?",
		c.ChapterNumber, formatTime(c.StartDate), formatTimePtr(c.EndDate), c.ID)
	if err != nil {
		return fmt.Errorf("updating chapter: %w", err)
	}
	return nil
}

// GetSagaByID returns the saga with its chapters in chapter order, or
// (nil, nil) when absent.
func (b *Backend) GetSagaByID(id string) (*types.Saga, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return b.getSagaLocked(id)
}

func (b *Backend) getSagaLocked(id string) (*types.Saga, error) {
	row := b.db.QueryRow("SELECT "+sagaSelectColumns+" FROM sagas WHERE saga_id = ?", id)
	s, err := scanSaga(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		b.logError("get saga", id, err)
		return nil, fmt.Errorf("getting saga %s: %w", id, err)
	}

	chapters, err := b.chaptersLocked(id)
	if err != nil {
		return nil, err
	}
	s.Chapters = chapters
	return s, nil
}

func (b *Backend) chaptersLocked(sagaID string) ([]types.Chapter, error) {
	rows, err := b.db.Query(
		"SELECT "+chapterColumns+" FROM chapters WHERE saga_id = ? ORDER BY chapter_number ASC", sagaID)
	if err != nil {
		return nil, fmt.Errorf("listing chapters: %w", err)
	}
	defer rows.Close()

	var chapters []types.Chapter
	for rows.Next() {
		var c types.Chapter
		var startDate string
		var endDate sql.NullString
		if err := rows.Scan(&c.ID, &c.SagaID, &c.ChapterNumber, &startDate, &endDate); err != nil {
			return nil, fmt.Errorf("scanning chapter: %w", err)
		}
		c.StartDate = parseTime(startDate)
		c.EndDate = parseTimePtr(endDate)
		chapters = append(chapters, c)
	}
	return chapters, rows.Err()
}

// GetAllSagas returns all sagas with their chapters, newest created first.
func (b *Backend) GetAllSagas() ([]*types.Saga, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.Query("SELECT " + sagaSelectColumns + " FROM sagas ORDER BY created_at DESC")
	if err != nil {
		b.logError("list sagas", "", err)
		return nil, fmt.Errorf("listing sagas: %w", err)
	}
	defer rows.Close()

	sagas := []*types.Saga{}
	for rows.Next() {
		s, err := scanSaga(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning saga: %w", err)
		}
		sagas = append(sagas, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, s := range sagas {
		chapters, err := b.chaptersLocked(s.ID)
		if err != nil {
			return nil, err
		}
		s.Chapters = chapters
	}
	return sagas, nil
}

// UpdateSaga merges the patch over the stored saga. A non-nil Chapters slice
// is the full desired chapter list, reconciled against the stored one by id.
// Returns (false, nil) when the saga does not exist.
func (b *Backend) UpdateSaga(id string, patch types.SagaPatch) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	s, err := b.getSagaLocked(id)
	if err != nil {
		return false, err
	}
	if s == nil {
		return false, nil
	}

	if patch.Name != nil {
		s.Name = *patch.Name
	}
	if patch.Icon != nil {
		s.Icon = *patch.Icon
	}
	s.UpdatedAt = touch(s.UpdatedAt)

	tx, err := b.db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"UPDATE sagas SET name = ?, icon = ?, updated_at = ? WHERE saga_id = ?",
		s.Name, nullIfEmpty(s.Icon), formatTime(s.UpdatedAt), id)
	if err != nil {
		b.logError("update saga", id, err)
		return false, fmt.Errorf("updating saga %s: %w", id, err)
	}

	if patch.Chapters != nil {
		if err := reconcileChapters(tx, s.ID, s.Chapters, *patch.Chapters); err != nil {
			b.logError("reconcile chapters", id, err)
			return false, fmt.Errorf("reconciling chapters of saga %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		b.logError("update saga", id, err)
		return false, fmt.Errorf("committing saga update %s: %w", id, err)
	}
	return true, nil
}

// reconcileChapters diffs the desired chapter list against the stored one by
// id: unknown ids are created, stored chapters absent from the desired list
// are deleted, the rest are updated in place. Chapter numbers default to the
// slice position when unset.
func reconcileChapters(tx *sql.Tx, sagaID string, current, desired []types.Chapter) error {
	currentByID := make(map[string]bool, len(current))
	for _, c := range current {
		currentByID[c.ID] = true
	}
	keep := make(map[string]bool, len(desired))

	for i := range desired {
		c := &desired[i]
		c.SagaID = sagaID
		if c.ChapterNumber == 0 {
			c.ChapterNumber = i + 1
		}
		if c.ID == "" || !currentByID[c.ID] {
			c.ID = newID()
			if err := insertChapter(tx, c); err != nil {
				return err
			}
			continue
		}
		keep[c.ID] = true
		if err := updateChapter(tx, c); err != nil {
			return err
		}
	}

	for _, c := range current {
		if keep[c.ID] {
			continue
		}
		if _, err := tx.Exec("DELETE FROM chapters WHERE chapter_id = ?", c.ID); err != nil {
			return fmt.Errorf("deleting chapter: %w", err)
		}
	}
	return nil
}

// DeleteSaga removes the saga and its chapters. Returns (false, nil) when
// already gone.
func (b *Backend) DeleteSaga(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	tx, err := b.db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM chapters WHERE saga_id = ?", id); err != nil {
		b.logError("delete saga chapters", id, err)
		return false, fmt.Errorf("deleting chapters of saga %s: %w", id, err)
	}
	res, err := tx.Exec("DELETE FROM sagas WHERE saga_id = ?", id)
	if err != nil {
		b.logError("delete saga", id, err)
		return false, fmt.Errorf("deleting saga %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		b.logError("delete saga", id, err)
		return false, fmt.Errorf("committing saga delete %s: %w", id, err)
	}
	return affected > 0, nil
}

func scanSaga(scan func(...any) error) (*types.Saga, error) {
	var s types.Saga
	var icon sql.NullString
	var createdAt, updatedAt string
	if err := scan(&s.ID, &s.Name, &icon, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.Icon = stringOrEmpty(icon)
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}
