package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// Relational linking operations. Re-parenting an action never copies or
// deletes it: the same row moves between container scopes by rewriting its
// parent pair and sibling order.

// MoveAction re-parents the action into the given container scope. When
// order is nil the action lands at the end of the target scope. A zero
// parent detaches the action entirely, same as UnlinkActionFromPath.
// Returns (false, nil) when the action does not exist.
func (b *Backend) MoveAction(actionID string, parent types.ParentRef, order *int) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if actionID == "" {
		return false, types.ErrInvalidID
	}
	if err := parent.Validate(); err != nil {
		return false, err
	}

	a, err := b.getActionLocked(actionID)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, nil
	}

	if parent.IsZero() {
		return b.unlinkActionLocked(a)
	}

	a.Parent = parent
	if order != nil {
		a.ActionOrder = *order
	} else {
		next, err := b.nextActionOrder(parent)
		if err != nil {
			return false, err
		}
		a.ActionOrder = next
	}
	a.UpdatedAt = touch(a.UpdatedAt)

	return b.writeActionLocked(a)
}

// LinkActionToPath parents the action directly to the path. Shorthand for
// MoveAction with a path parent.
func (b *Backend) LinkActionToPath(actionID, pathID string, order *int) (bool, error) {
	return b.MoveAction(actionID, types.ParentRef{Kind: types.ParentPath, ID: pathID}, order)
}

// UnlinkActionFromPath returns the action to standalone status, clearing the
// parent pair and the sibling order together. Returns (false, nil) when the
// action does not exist.
func (b *Backend) UnlinkActionFromPath(actionID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if actionID == "" {
		return false, types.ErrInvalidID
	}

	a, err := b.getActionLocked(actionID)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, nil
	}
	return b.unlinkActionLocked(a)
}

func (b *Backend) unlinkActionLocked(a *types.Action) (bool, error) {
	a.Parent = types.ParentRef{}
	a.ActionOrder = 0
	a.UpdatedAt = touch(a.UpdatedAt)
	return b.writeActionLocked(a)
}

// DeleteMilestone removes the milestone after re-parenting its actions to
// the owning path. Returns (false, nil) when already gone.
func (b *Backend) DeleteMilestone(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	var pathID string
	err := b.db.QueryRow("SELECT path_id FROM milestones WHERE milestone_id = ?", id).Scan(&pathID)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		b.logError("delete milestone", id, err)
		return false, fmt.Errorf("resolving milestone %s: %w", id, err)
	}

	tx, err := b.db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := reparentMilestoneActions(tx, id, pathID, time.Now()); err != nil {
		b.logError("delete milestone", id, err)
		return false, fmt.Errorf("re-parenting actions of milestone %s: %w", id, err)
	}
	if _, err := tx.Exec("DELETE FROM milestones WHERE milestone_id = ?", id); err != nil {
		b.logError("delete milestone", id, err)
		return false, fmt.Errorf("deleting milestone %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		b.logError("delete milestone", id, err)
		return false, fmt.Errorf("committing milestone delete %s: %w", id, err)
	}
	return true, nil
}

// ReorderMilestones rewrites the path's milestone order to match orderedIDs.
// Every milestone in the list must belong to the path; ids the path does not
// own are ignored. Returns (false, nil) when the path does not exist.
func (b *Backend) ReorderMilestones(pathID string, orderedIDs []string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if pathID == "" {
		return false, types.ErrInvalidID
	}

	var exists int
	err := b.db.QueryRow("SELECT COUNT(*) FROM paths WHERE path_id = ?", pathID).Scan(&exists)
	if err != nil {
		b.logError("reorder milestones", pathID, err)
		return false, fmt.Errorf("resolving path %s: %w", pathID, err)
	}
	if exists == 0 {
		return false, nil
	}

	tx, err := b.db.Begin()
	if err != nil {
		return false, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i, id := range orderedIDs {
		_, err := tx.Exec(
			"UPDATE milestones SET milestone_order = ? WHERE milestone_id = ? AND path_id = ?",
			i, id, pathID)
		if err != nil {
			b.logError("reorder milestones", pathID, err)
			return false, fmt.Errorf("reordering milestones of path %s: %w", pathID, err)
		}
	}
	if _, err := tx.Exec("UPDATE paths SET updated_at = ? WHERE path_id = ?",
		formatTime(time.Now()), pathID); err != nil {
		b.logError("reorder milestones", pathID, err)
		return false, fmt.Errorf("touching path %s: %w", pathID, err)
	}

	if err := tx.Commit(); err != nil {
		b.logError("reorder milestones", pathID, err)
		return false, fmt.Errorf("committing milestone reorder %s: %w", pathID, err)
	}
	return true, nil
}
