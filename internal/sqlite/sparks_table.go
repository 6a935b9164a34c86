package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// Spark repository. The hidden flag is a listing filter only: default
// listings skip hidden sparks, reads by id and mutations do not.

const sparkColumns = "spark_id, title, body, tags, linked_entry_ids, category_id, starred, hidden, created_at, updated_at"

// CreateSpark assigns an id and timestamps and persists the spark.
func (b *Backend) CreateSpark(s *types.Spark) error {
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

	_, err := b.db.Exec(
		"INSERT INTO sparks ("+sparkColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		s.ID, s.Title, nullIfEmpty(s.Body), encodeStringList(s.Tags),
		encodeStringList(s.LinkedEntryIDs), nullIfEmpty(s.CategoryID),
		boolToInt(s.Starred), boolToInt(s.Hidden),
		formatTime(s.CreatedAt), formatTime(s.UpdatedAt))
	if err != nil {
		b.logError("create spark", s.ID, err)
		return fmt.Errorf("creating spark: %w", err)
	}
	return nil
}

// GetSparkByID returns the spark, or (nil, nil) when absent.
func (b *Backend) GetSparkByID(id string) (*types.Spark, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}

	row := b.db.QueryRow("SELECT "+sparkColumns+" FROM sparks WHERE spark_id = ?", id)
	s, err := b.scanSpark(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		b.logError("get spark", id, err)
		return nil, fmt.Errorf("getting spark %s: %w", id, err)
	}
	return s, nil
}

// GetAllSparks returns non-hidden sparks, newest created first.
func (b *Backend) GetAllSparks() ([]*types.Spark, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.querySparks("SELECT " + sparkColumns + " FROM sparks WHERE hidden = 0 ORDER BY created_at DESC")
}

func (b *Backend) querySparks(query string, args ...any) ([]*types.Spark, error) {
	rows, err := b.db.Query(query, args...)
	if err != nil {
		b.logError("list sparks", "", err)
		return nil, fmt.Errorf("listing sparks: %w", err)
	}
	defer rows.Close()

	sparks := []*types.Spark{}
	for rows.Next() {
		s, err := b.scanSpark(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning spark: %w", err)
		}
		sparks = append(sparks, s)
	}
	return sparks, rows.Err()
}

// UpdateSpark merges the patch over the stored spark. Returns (false, nil)
// when the spark does not exist.
func (b *Backend) UpdateSpark(id string, patch types.SparkPatch) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	s, err := b.getSparkLocked(id)
	if err != nil {
		return false, err
	}
	if s == nil {
		return false, nil
	}

	if patch.Title != nil {
		s.Title = *patch.Title
	}
	if patch.Body != nil {
		s.Body = *patch.Body
	}
	if patch.Tags != nil {
		s.Tags = *patch.Tags
	}
	if patch.LinkedEntryIDs != nil {
		s.LinkedEntryIDs = *patch.LinkedEntryIDs
	}
	if patch.CategoryID != nil {
		s.CategoryID = *patch.CategoryID
	}
	if patch.Starred != nil {
		s.Starred = *patch.Starred
	}
	if patch.Hidden != nil {
		s.Hidden = *patch.Hidden
	}
	s.UpdatedAt = touch(s.UpdatedAt)

	_, err = b.db.Exec(
		`UPDATE sparks SET title = ?, body = ?, tags = ?, linked_entry_ids = ?,
		 category_id = ?, starred = ?, hidden = ?, updated_at = ? WHERE spark_id = ?`,
		s.Title, nullIfEmpty(s.Body), encodeStringList(s.Tags),
		encodeStringList(s.LinkedEntryIDs), nullIfEmpty(s.CategoryID),
		boolToInt(s.Starred), boolToInt(s.Hidden), formatTime(s.UpdatedAt), id)
	if err != nil {
		b.logError("update spark", id, err)
		return false, fmt.Errorf("updating spark %s: %w", id, err)
	}
	return true, nil
}

// DeleteSpark removes the spark. Returns (false, nil) when already gone.
func (b *Backend) DeleteSpark(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	res, err := b.db.Exec("DELETE FROM sparks WHERE spark_id = ?", id)
	if err != nil {
		b.logError("delete spark", id, err)
		return false, fmt.Errorf("deleting spark %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (b *Backend) getSparkLocked(id string) (*types.Spark, error) {
	row := b.db.QueryRow("SELECT "+sparkColumns+" FROM sparks WHERE spark_id = ?", id)
	s, err := b.scanSpark(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting spark %s: %w", id, err)
	}
	return s, nil
}

func (b *Backend) scanSpark(scan func(...any) error) (*types.Spark, error) {
	var s types.Spark
	var body, tags, linked, categoryID sql.NullString
	var starred, hidden int
	var createdAt, updatedAt string
	if err := scan(&s.ID, &s.Title, &body, &tags, &linked, &categoryID,
		&starred, &hidden, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	s.Body = stringOrEmpty(body)
	s.Tags = b.decodeStringList(tags, "sparks.tags")
	s.LinkedEntryIDs = b.decodeStringList(linked, "sparks.linked_entry_ids")
	s.CategoryID = stringOrEmpty(categoryID)
	s.Starred = starred != 0
	s.Hidden = hidden != 0
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)
	return &s, nil
}
