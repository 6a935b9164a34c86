package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// Loop repository. Loop items are owned 1:N children: created with the loop,
// reconciled on update, removed with the loop. Item order follows the
// caller's slice order.

const loopColumns = "loop_id, title, description, frequency, start_time_by_day, active, start_date, end_date, tags, category_id, created_at, updated_at"

const loopItemColumns = "item_id, loop_id, name, description, duration_minutes, quantity, icon, item_order"

// CreateLoop assigns ids and timestamps and persists the loop with its items
// in one transaction.
func (b *Backend) CreateLoop(l *types.Loop) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	if err := l.Validate(); err != nil {
		return err
	}

	now := time.Now()
	l.ID = newID()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.StartDate.IsZero() {
		l.StartDate = now
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO loops ("+loopColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		l.ID, l.Title, nullIfEmpty(l.Description), encodeFrequency(l.Frequency),
		encodeDayTimes(l.StartTimeByDay), boolToInt(l.Active),
		formatTime(l.StartDate), formatTimePtr(l.EndDate),
		encodeStringList(l.Tags), nullIfEmpty(l.CategoryID),
		formatTime(l.CreatedAt), formatTime(l.UpdatedAt))
	if err != nil {
		b.logError("create loop", l.ID, err)
		return fmt.Errorf("creating loop: %w", err)
	}

	for i := range l.Items {
		item := &l.Items[i]
		item.ID = newID()
		item.Order = i
		if err := insertLoopItem(tx, l.ID, item); err != nil {
			b.logError("create loop item", item.ID, err)
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing loop: %w", err)
	}
	return nil
}

func insertLoopItem(tx *sql.Tx, loopID string, item *types.LoopItem) error {
	var duration, quantity sql.NullInt64
	if item.DurationMinutes != nil {
		duration = sql.NullInt64{Int64: int64(*item.DurationMinutes), Valid: true}
	}
	if item.Quantity != nil {
		quantity = sql.NullInt64{Int64: int64(*item.Quantity), Valid: true}
	}
	_, err := tx.Exec(
		"INSERT INTO loop_items ("+loopItemColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		item.ID, loopID, item.Name, nullIfEmpty(item.Description),
		duration, quantity, nullIfEmpty(item.Icon), item.Order)
	if err != nil {
		return fmt.Errorf("inserting loop item: %w", err)
	}
	return nil
}

func updateLoopItem(tx *sql.Tx, loopID string, item *types.LoopItem) error {
	var duration, quantity sql.NullInt64
	if item.DurationMinutes != nil {
		duration = sql.NullInt64{Int64: int64(*item.DurationMinutes), Valid: true}
	}
	if item.Quantity != nil {
		quantity = sql.NullInt64{Int64: int64(*item.Quantity), Valid: true}
	}
	_, err := tx.Exec(
		`UPDATE loop_items SET name = ?, description = ?, duration_minutes = ?,
		 quantity = ?, icon = ?, item_order = ? WHERE item_id = ? AND loop_id = ?`,
		item.Name, nullIfEmpty(item.Description), duration, quantity,
		nullIfEmpty(item.Icon), item.Order, item.ID, loopID)
	if err != nil {
		return fmt.Errorf("updating loop item: %w", err)
	}
	return nil
}

// GetLoopByID returns the loop with its items in order, or (nil, nil) when
// absent.
func (b *Backend) GetLoopByID(id string) (*types.Loop, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return b.getLoopLocked(id)
}

func (b *Backend) getLoopLocked(id string) (*types.Loop, error) {
	row := b.db.QueryRow("SELECT "+loopColumns+" FROM loops WHERE loop_id = ?", id)
	l, err := b.scanLoop(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		b.logError("get loop", id, err)
		return nil, fmt.Errorf("getting loop %s: %w", id, err)
	}
	if l.Items, err = b.loopItemsLocked(id); err != nil {
		return nil, err
	}
	return l, nil
}

func (b *Backend) loopItemsLocked(loopID string) ([]types.LoopItem, error) {
	rows, err := b.db.Query(
		"SELECT "+loopItemColumns+" FROM loop_items WHERE loop_id = ? ORDER BY item_order ASC", loopID)
	if err != nil {
		return nil, fmt.Errorf("listing loop items: %w", err)
	}
	defer rows.Close()

	var items []types.LoopItem
	for rows.Next() {
		var item types.LoopItem
		var loopRef string
		var description, icon sql.NullString
		var duration, quantity sql.NullInt64
		if err := rows.Scan(&item.ID, &loopRef, &item.Name, &description,
			&duration, &quantity, &icon, &item.Order); err != nil {
			return nil, fmt.Errorf("scanning loop item: %w", err)
		}
		item.Description = stringOrEmpty(description)
		item.Icon = stringOrEmpty(icon)
		if duration.Valid {
			d := int(duration.Int64)
			item.DurationMinutes = &d
		}
		if quantity.Valid {
			q := int(quantity.Int64)
			item.Quantity = &q
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetAllLoops returns all loops with their items, newest created first.
func (b *Backend) GetAllLoops() ([]*types.Loop, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.Query("SELECT " + loopColumns + " FROM loops ORDER BY created_at DESC")
	if err != nil {
		b.logError("list loops", "", err)
		return nil, fmt.Errorf("listing loops: %w", err)
	}
	defer rows.Close()

	loops := []*types.Loop{}
	for rows.Next() {
		l, err := b.scanLoop(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning loop: %w", err)
		}
		loops = append(loops, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, l := range loops {
		if l.Items, err = b.loopItemsLocked(l.ID); err != nil {
			return nil, err
		}
	}
	return loops, nil
}

// UpdateLoop merges the patch over the stored loop and, when the patch
// carries a desired item list, reconciles stored items against it by id:
// create missing, delete extra, update present. The whole operation is one
// transaction and reconciling the same desired list twice is a no-op.
func (b *Backend) UpdateLoop(id string, patch types.LoopPatch) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	l, err := b.getLoopLocked(id)
	if err != nil {
		return false, err
	}
	if l == nil {
		return false, nil
	}

	if patch.Title != nil {
		l.Title = *patch.Title
	}
	if patch.Description != nil {
		l.Description = *patch.Description
	}
	if patch.Frequency != nil {
		l.Frequency = *patch.Frequency
	}
	if patch.StartTimeByDay != nil {
		l.StartTimeByDay = *patch.StartTimeByDay
	}
	if patch.Active != nil {
		l.Active = *patch.Active
	}
	if patch.StartDate != nil {
		l.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		l.EndDate = patch.EndDate
	}
	if patch.Tags != nil {
		l.Tags = *patch.Tags
	}
	if patch.CategoryID != nil {
		l.CategoryID = *patch.CategoryID
	}
	l.UpdatedAt = touch(l.UpdatedAt)

	tx, err := b.db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`UPDATE loops SET title = ?, description = ?, frequency = ?,
		 start_time_by_day = ?, active = ?, start_date = ?, end_date = ?,
		 tags = ?, category_id = ?, updated_at = ? WHERE loop_id = ?`,
		l.Title, nullIfEmpty(l.Description), encodeFrequency(l.Frequency),
		encodeDayTimes(l.StartTimeByDay), boolToInt(l.Active),
		formatTime(l.StartDate), formatTimePtr(l.EndDate),
		encodeStringList(l.Tags), nullIfEmpty(l.CategoryID),
		formatTime(l.UpdatedAt), id)
	if err != nil {
		b.logError("update loop", id, err)
		return false, fmt.Errorf("updating loop %s: %w", id, err)
	}

	if patch.Items != nil {
		if err := reconcileLoopItems(tx, id, l.Items, *patch.Items); err != nil {
			b.logError("reconcile loop items", id, err)
			return false, fmt.Errorf("reconciling items of loop %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		b.logError("update loop", id, err)
		return false, fmt.Errorf("committing loop update %s: %w", id, err)
	}
	return true, nil
}

// reconcileLoopItems diffs the desired item list against the stored one by
// id. Desired items without a known id are created, stored items absent from
// the desired list are deleted, the rest are updated in place.
func reconcileLoopItems(tx *sql.Tx, loopID string, current []types.LoopItem, desired []types.LoopItem) error {
	currentByID := make(map[string]bool, len(current))
	for _, item := range current {
		currentByID[item.ID] = true
	}
	desiredByID := make(map[string]bool, len(desired))

	for i := range desired {
		item := &desired[i]
		item.Order = i
		if item.ID != "" && currentByID[item.ID] {
			desiredByID[item.ID] = true
			if err := updateLoopItem(tx, loopID, item); err != nil {
				return err
			}
			continue
		}
		item.ID = newID()
		if err := insertLoopItem(tx, loopID, item); err != nil {
			return err
		}
	}

	for _, item := range current {
		if desiredByID[item.ID] {
			continue
		}
		if _, err := tx.Exec("DELETE FROM loop_items WHERE item_id = ?", item.ID); err != nil {
			return fmt.Errorf("deleting loop item: %w", err)
		}
	}
	return nil
}

// DeleteLoop removes the loop and all of its items (cascading delete; no
// orphaned items). Returns (false, nil) when already gone.
func (b *Backend) DeleteLoop(id string) (bool, error) {
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

	if _, err := tx.Exec("DELETE FROM loop_items WHERE loop_id = ?", id); err != nil {
		b.logError("delete loop items", id, err)
		return false, fmt.Errorf("deleting items of loop %s: %w", id, err)
	}
	res, err := tx.Exec("DELETE FROM loops WHERE loop_id = ?", id)
	if err != nil {
		b.logError("delete loop", id, err)
		return false, fmt.Errorf("deleting loop %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		b.logError("delete loop", id, err)
		return false, fmt.Errorf("committing loop delete %s: %w", id, err)
	}
	return affected > 0, nil
}

func (b *Backend) scanLoop(scan func(...any) error) (*types.Loop, error) {
	var l types.Loop
	var description, frequency, dayTimes, endDate, tags, categoryID sql.NullString
	var active int
	var startDate, createdAt, updatedAt string
	if err := scan(&l.ID, &l.Title, &description, &frequency, &dayTimes,
		&active, &startDate, &endDate, &tags, &categoryID,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	l.Description = stringOrEmpty(description)
	l.Frequency = b.decodeFrequency(frequency)
	l.StartTimeByDay = b.decodeDayTimes(dayTimes)
	l.Active = active != 0
	l.StartDate = parseTime(startDate)
	l.EndDate = parseTimePtr(endDate)
	l.Tags = b.decodeStringList(tags, "loops.tags")
	l.CategoryID = stringOrEmpty(categoryID)
	l.CreatedAt = parseTime(createdAt)
	l.UpdatedAt = parseTime(updatedAt)
	return &l, nil
}
