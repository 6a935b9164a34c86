package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// Path repository. Milestones are owned 1:N children ordered by
// milestone_order; their actions hang off the polymorphic parent link and are
// re-parented to the path, never deleted, when a milestone goes away. Path
// writes go through the schema registry (older stores may lack the tags
// column).

const pathSelectColumns = "path_id, title, description, start_date, target_date, tags, category_id, created_at, updated_at"

const milestoneColumns = "milestone_id, path_id, title, description, milestone_order, collapsed"

// CreatePath assigns ids and timestamps and persists the path, its
// milestones, and any milestone actions in one transaction.
func (b *Backend) CreatePath(p *types.Path) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	if err := p.Validate(); err != nil {
		return err
	}

	now := time.Now()
	p.ID = newID()
	p.CreatedAt = now
	p.UpdatedAt = now

	cols, err := b.columnsOf("paths")
	if err != nil {
		return err
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query, args := buildInsert("paths", cols,
		[]string{"path_id", "title", "description", "start_date", "target_date",
			"tags", "category_id", "created_at", "updated_at"},
		[]any{p.ID, p.Title, nullIfEmpty(p.Description),
			formatTimePtr(p.StartDate), formatTimePtr(p.TargetDate),
			encodeStringList(p.Tags), nullIfEmpty(p.CategoryID),
			formatTime(p.CreatedAt), formatTime(p.UpdatedAt)})
	if _, err := tx.Exec(query, args...); err != nil {
		b.logError("create path", p.ID, err)
		return fmt.Errorf("creating path: %w", err)
	}

	for i := range p.Milestones {
		m := &p.Milestones[i]
		m.ID = newID()
		m.PathID = p.ID
		m.Order = i
		if err := insertMilestone(tx, m); err != nil {
			b.logError("create milestone", m.ID, err)
			return err
		}
		for j := range m.Actions {
			a := &m.Actions[j]
			if err := b.createMilestoneAction(tx, m.ID, a, now, j+1); err != nil {
				b.logError("create milestone action", a.ID, err)
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing path: %w", err)
	}
	return nil
}

// createMilestoneAction prepares and inserts an action owned by a milestone.
func (b *Backend) createMilestoneAction(tx *sql.Tx, milestoneID string, a *types.Action, now time.Time, order int) error {
	a.ID = newID()
	a.CreatedAt = now
	a.UpdatedAt = now
	a.Completed = a.Done
	a.Parent = types.ParentRef{Kind: types.ParentMilestone, ID: milestoneID}
	if a.ActionOrder == 0 {
		a.ActionOrder = order
	}
	return b.insertActionRow(tx, a)
}

func insertMilestone(tx *sql.Tx, m *types.Milestone) error {
	_, err := tx.Exec(
		"INSERT INTO milestones ("+milestoneColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		m.ID, m.PathID, m.Title, nullIfEmpty(m.Description), m.Order, boolToInt(m.Collapsed))
	if err != nil {
		return fmt.Errorf("inserting milestone: %w", err)
	}
	return nil
}

func updateMilestone(tx *sql.Tx, m *types.Milestone) error {
	_, err := tx.Exec(
		"UPDATE milestones SET title = ?, description = ?, milestone_order = ?, collapsed = ? WHERE milestone_id = ?",
		m.Title, nullIfEmpty(m.Description), m.Order, boolToInt(m.Collapsed), m.ID)
	if err != nil {
		return fmt.Errorf("updating milestone: %w", err)
	}
	return nil
}

// GetPathByID returns the path with its milestones (and their actions) in
// order, or (nil, nil) when absent.
func (b *Backend) GetPathByID(id string) (*types.Path, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return b.getPathLocked(id)
}

func (b *Backend) getPathLocked(id string) (*types.Path, error) {
	row := b.db.QueryRow("SELECT "+pathSelectColumns+" FROM paths WHERE path_id = ?", id)
	p, err := b.scanPath(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		b.logError("get path", id, err)
		return nil, fmt.Errorf("getting path %s: %w", id, err)
	}

	milestones, err := b.milestonesLocked(id)
	if err != nil {
		return nil, err
	}
	for i := range milestones {
		actions, err := b.queryActions("SELECT "+actionColumns+
			" FROM actions WHERE parent_id = ? AND parent_type = ? ORDER BY action_order ASC, created_at ASC",
			milestones[i].ID, string(types.ParentMilestone))
		if err != nil {
			return nil, err
		}
		for _, a := range actions {
			milestones[i].Actions = append(milestones[i].Actions, *a)
		}
		p.Milestones = append(p.Milestones, milestones[i])
	}
	return p, nil
}

// GetAllPaths returns all paths, newest created first, without hydrating
// milestones. Use GetPathByID for the full tree.
func (b *Backend) GetAllPaths() ([]*types.Path, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}

	rows, err := b.db.Query("SELECT " + pathSelectColumns + " FROM paths ORDER BY created_at DESC")
	if err != nil {
		b.logError("list paths", "", err)
		return nil, fmt.Errorf("listing paths: %w", err)
	}
	defer rows.Close()

	paths := []*types.Path{}
	for rows.Next() {
		p, err := b.scanPath(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// GetMilestonesByPath returns the path's milestones in order, without
// hydrating actions.
func (b *Backend) GetMilestonesByPath(pathID string) ([]*types.Milestone, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if pathID == "" {
		return nil, types.ErrInvalidID
	}

	milestones, err := b.milestonesLocked(pathID)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Milestone, len(milestones))
	for i := range milestones {
		out[i] = &milestones[i]
	}
	return out, nil
}

func (b *Backend) milestonesLocked(pathID string) ([]types.Milestone, error) {
	rows, err := b.db.Query(
		"SELECT "+milestoneColumns+" FROM milestones WHERE path_id = ? ORDER BY milestone_order ASC", pathID)
	if err != nil {
		return nil, fmt.Errorf("listing milestones: %w", err)
	}
	defer rows.Close()

	var milestones []types.Milestone
	for rows.Next() {
		var m types.Milestone
		var description sql.NullString
		var collapsed int
		if err := rows.Scan(&m.ID, &m.PathID, &m.Title, &description, &m.Order, &collapsed); err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		m.Description = stringOrEmpty(description)
		m.Collapsed = collapsed != 0
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

// GetPathActions returns the actions parented directly to the path, or, when
// milestoneID is given, the actions of that milestone (which must belong to
// the path).
func (b *Backend) GetPathActions(pathID, milestoneID string) ([]*types.Action, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if pathID == "" {
		return nil, types.ErrInvalidID
	}

	if milestoneID == "" {
		return b.queryActions("SELECT "+actionColumns+
			" FROM actions WHERE parent_id = ? AND parent_type = ? ORDER BY action_order ASC, created_at ASC",
			pathID, string(types.ParentPath))
	}

	var owner string
	err := b.db.QueryRow("SELECT path_id FROM milestones WHERE milestone_id = ?", milestoneID).Scan(&owner)
	if err == sql.ErrNoRows || (err == nil && owner != pathID) {
		return []*types.Action{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving milestone %s: %w", milestoneID, err)
	}
	return b.queryActions("SELECT "+actionColumns+
		" FROM actions WHERE parent_id = ? AND parent_type = ? ORDER BY action_order ASC, created_at ASC",
		milestoneID, string(types.ParentMilestone))
}

// UpdatePath merges the patch over the stored path and, when the patch
// carries a desired milestone list, reconciles stored milestones against it
// by id; each desired milestone's non-nil action list is reconciled one level
// deeper the same way. One transaction; reconciling the same desired state
// twice produces no further changes.
func (b *Backend) UpdatePath(id string, patch types.PathPatch) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	p, err := b.getPathLocked(id)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}

	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.StartDate != nil {
		p.StartDate = patch.StartDate
	}
	if patch.TargetDate != nil {
		p.TargetDate = patch.TargetDate
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.CategoryID != nil {
		p.CategoryID = *patch.CategoryID
	}
	p.UpdatedAt = touch(p.UpdatedAt)

	cols, err := b.columnsOf("paths")
	if err != nil {
		return false, err
	}

	tx, err := b.db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query, args := buildUpdate("paths", cols,
		[]string{"title", "description", "start_date", "target_date", "tags",
			"category_id", "updated_at"},
		[]any{p.Title, nullIfEmpty(p.Description),
			formatTimePtr(p.StartDate), formatTimePtr(p.TargetDate),
			encodeStringList(p.Tags), nullIfEmpty(p.CategoryID),
			formatTime(p.UpdatedAt)},
		"path_id", id)
	if _, err := tx.Exec(query, args...); err != nil {
		b.logError("update path", id, err)
		return false, fmt.Errorf("updating path %s: %w", id, err)
	}

	if patch.Milestones != nil {
		if err := b.reconcileMilestones(tx, p, *patch.Milestones); err != nil {
			b.logError("reconcile milestones", id, err)
			return false, fmt.Errorf("reconciling milestones of path %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		b.logError("update path", id, err)
		return false, fmt.Errorf("committing path update %s: %w", id, err)
	}
	return true, nil
}

// reconcileMilestones diffs the desired milestone list against the stored
// one by id. Desired milestones without a known id are created, stored
// milestones absent from the desired list are removed (their actions
// re-parented to the path first), the rest are updated in place.
func (b *Backend) reconcileMilestones(tx *sql.Tx, p *types.Path, desired []types.Milestone) error {
	currentByID := make(map[string]*types.Milestone, len(p.Milestones))
	for i := range p.Milestones {
		currentByID[p.Milestones[i].ID] = &p.Milestones[i]
	}
	keep := make(map[string]bool, len(desired))
	now := time.Now()

	for i := range desired {
		m := &desired[i]
		m.PathID = p.ID
		m.Order = i
		current, exists := currentByID[m.ID]
		if m.ID == "" || !exists {
			m.ID = newID()
			if err := insertMilestone(tx, m); err != nil {
				return err
			}
			for j := range m.Actions {
				if err := b.createMilestoneAction(tx, m.ID, &m.Actions[j], now, j+1); err != nil {
					return err
				}
			}
			continue
		}
		keep[m.ID] = true
		if err := updateMilestone(tx, m); err != nil {
			return err
		}
		if m.Actions != nil {
			if err := b.reconcileMilestoneActions(tx, m, current.Actions, now); err != nil {
				return err
			}
		}
	}

	for i := range p.Milestones {
		m := &p.Milestones[i]
		if keep[m.ID] {
			continue
		}
		if err := reparentMilestoneActions(tx, m.ID, p.ID, now); err != nil {
			return err
		}
		if _, err := tx.Exec("DELETE FROM milestones WHERE milestone_id = ?", m.ID); err != nil {
			return fmt.Errorf("deleting milestone: %w", err)
		}
	}
	return nil
}

// reconcileMilestoneActions applies the same diff pattern to one milestone's
// action list.
func (b *Backend) reconcileMilestoneActions(tx *sql.Tx, m *types.Milestone, current []types.Action, now time.Time) error {
	currentByID := make(map[string]*types.Action, len(current))
	for i := range current {
		currentByID[current[i].ID] = &current[i]
	}
	keep := make(map[string]bool, len(m.Actions))

	for j := range m.Actions {
		a := &m.Actions[j]
		stored, exists := currentByID[a.ID]
		if a.ID == "" || !exists {
			if err := b.createMilestoneAction(tx, m.ID, a, now, j+1); err != nil {
				return err
			}
			continue
		}
		keep[a.ID] = true
		a.Parent = types.ParentRef{Kind: types.ParentMilestone, ID: m.ID}
		a.Completed = a.Done
		a.CreatedAt = stored.CreatedAt
		a.UpdatedAt = touch(stored.UpdatedAt)
		if a.ActionOrder == 0 {
			a.ActionOrder = stored.ActionOrder
		}
		if err := b.updateActionRow(tx, a); err != nil {
			return err
		}
	}

	for _, a := range current {
		if keep[a.ID] {
			continue
		}
		if _, err := tx.Exec("DELETE FROM actions WHERE action_id = ?", a.ID); err != nil {
			return fmt.Errorf("deleting milestone action: %w", err)
		}
	}
	return nil
}

// reparentMilestoneActions bulk-moves a milestone's actions to the owning
// path.
func reparentMilestoneActions(tx execer, milestoneID, pathID string, now time.Time) error {
	_, err := tx.Exec(
		"UPDATE actions SET parent_id = ?, parent_type = ?, updated_at = ? WHERE parent_id = ? AND parent_type = ?",
		pathID, string(types.ParentPath), formatTime(now),
		milestoneID, string(types.ParentMilestone))
	if err != nil {
		return fmt.Errorf("re-parenting milestone actions: %w", err)
	}
	return nil
}

// DeletePath removes the path and its milestones and returns every action
// parented to the path or its milestones to standalone status. Returns
// (false, nil) when already gone.
func (b *Backend) DeletePath(id string) (bool, error) {
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

	now := formatTime(time.Now())
	_, err = tx.Exec(
		`UPDATE actions SET parent_id = NULL, parent_type = NULL, action_order = NULL, updated_at = ?
		 WHERE (parent_id = ? AND parent_type = ?)
		    OR (parent_type = ? AND parent_id IN (SELECT milestone_id FROM milestones WHERE path_id = ?))`,
		now, id, string(types.ParentPath), string(types.ParentMilestone), id)
	if err != nil {
		b.logError("unlink path actions", id, err)
		return false, fmt.Errorf("unlinking actions of path %s: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM milestones WHERE path_id = ?", id); err != nil {
		b.logError("delete path milestones", id, err)
		return false, fmt.Errorf("deleting milestones of path %s: %w", id, err)
	}
	res, err := tx.Exec("DELETE FROM paths WHERE path_id = ?", id)
	if err != nil {
		b.logError("delete path", id, err)
		return false, fmt.Errorf("deleting path %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		b.logError("delete path", id, err)
		return false, fmt.Errorf("committing path delete %s: %w", id, err)
	}
	return affected > 0, nil
}

func (b *Backend) scanPath(scan func(...any) error) (*types.Path, error) {
	var p types.Path
	var description, startDate, targetDate, tags, categoryID sql.NullString
	var createdAt, updatedAt string
	if err := scan(&p.ID, &p.Title, &description, &startDate, &targetDate,
		&tags, &categoryID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Description = stringOrEmpty(description)
	p.StartDate = parseTimePtr(startDate)
	p.TargetDate = parseTimePtr(targetDate)
	p.Tags = b.decodeStringList(tags, "paths.tags")
	p.CategoryID = stringOrEmpty(categoryID)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}
