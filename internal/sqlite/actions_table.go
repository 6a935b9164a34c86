package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mesh-intelligence/vault/pkg/types"
)

// Action repository. Actions carry the polymorphic parent link
// (parent_id/parent_type) and explicit sibling ordering; write paths build
// statements through the schema registry so optional columns missing from an
// outdated store are dropped instead of failing the write.

const actionColumns = "action_id, title, body, done, completed, priority, due_date, sub_actions, parent_id, parent_type, action_order, category_id, tags, starred, hidden, created_at, updated_at"

// CreateAction assigns an id, timestamps, and a sibling order within the
// action's container scope when none is given, then persists the action.
// Orders are 1-based; a zero ActionOrder means unassigned and becomes
// max(scope)+1, while an explicit positive order is kept as supplied.
func (b *Backend) CreateAction(a *types.Action) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return types.ErrDetached
	}
	if err := a.Validate(); err != nil {
		return err
	}

	now := time.Now()
	a.ID = newID()
	a.CreatedAt = now
	a.UpdatedAt = now
	// The two completion flags mirror one state.
	a.Completed = a.Done

	if a.ActionOrder == 0 {
		order, err := b.nextActionOrder(a.Parent)
		if err != nil {
			return err
		}
		a.ActionOrder = order
	}

	if err := b.insertActionRow(b.db, a); err != nil {
		b.logError("create action", a.ID, err)
		return err
	}
	return nil
}

// insertActionRow writes a new action row through the schema registry so a
// lagging store drops optional columns instead of failing.
func (b *Backend) insertActionRow(e execer, a *types.Action) error {
	cols, err := b.columnsOf("actions")
	if err != nil {
		return err
	}
	query, args := buildInsert("actions", cols,
		[]string{"action_id", "title", "body", "done", "completed", "priority",
			"due_date", "sub_actions", "parent_id", "parent_type", "action_order",
			"category_id", "tags", "starred", "hidden", "created_at", "updated_at"},
		[]any{a.ID, a.Title, nullIfEmpty(a.Body), boolToInt(a.Done), boolToInt(a.Completed),
			a.Priority, formatTimePtr(a.DueDate), encodeSubActions(a.SubActions),
			nullIfEmpty(a.Parent.ID), nullIfEmpty(string(a.Parent.Kind)), actionOrderValue(a),
			nullIfEmpty(a.CategoryID), encodeStringList(a.Tags),
			boolToInt(a.Starred), boolToInt(a.Hidden),
			formatTime(a.CreatedAt), formatTime(a.UpdatedAt)})
	if _, err := e.Exec(query, args...); err != nil {
		return fmt.Errorf("creating action: %w", err)
	}
	return nil
}

// updateActionRow rewrites every present column of an existing action row.
func (b *Backend) updateActionRow(e execer, a *types.Action) error {
	cols, err := b.columnsOf("actions")
	if err != nil {
		return err
	}
	query, args := buildUpdate("actions", cols,
		[]string{"title", "body", "done", "completed", "priority", "due_date",
			"sub_actions", "parent_id", "parent_type", "action_order",
			"category_id", "tags", "starred", "hidden", "updated_at"},
		[]any{a.Title, nullIfEmpty(a.Body), boolToInt(a.Done), boolToInt(a.Completed),
			a.Priority, formatTimePtr(a.DueDate), encodeSubActions(a.SubActions),
			nullIfEmpty(a.Parent.ID), nullIfEmpty(string(a.Parent.Kind)), actionOrderValue(a),
			nullIfEmpty(a.CategoryID), encodeStringList(a.Tags),
			boolToInt(a.Starred), boolToInt(a.Hidden), formatTime(a.UpdatedAt)},
		"action_id", a.ID)
	if _, err := e.Exec(query, args...); err != nil {
		return fmt.Errorf("updating action: %w", err)
	}
	return nil
}

// actionOrderValue stores NULL when a standalone action carries no explicit
// order, so unlinking truly clears all three container fields.
func actionOrderValue(a *types.Action) sql.NullInt64 {
	if a.Parent.IsZero() && a.ActionOrder == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(a.ActionOrder), Valid: true}
}

// nextActionOrder returns max(action_order)+1 within the container scope.
func (b *Backend) nextActionOrder(parent types.ParentRef) (int, error) {
	var query string
	var args []any
	if parent.IsZero() {
		query = "SELECT COALESCE(MAX(action_order), 0) FROM actions WHERE parent_id IS NULL"
	} else {
		query = "SELECT COALESCE(MAX(action_order), 0) FROM actions WHERE parent_id = ? AND parent_type = ?"
		args = []any{parent.ID, string(parent.Kind)}
	}
	var max int
	if err := b.db.QueryRow(query, args...).Scan(&max); err != nil {
		return 0, fmt.Errorf("computing action order: %w", err)
	}
	return max + 1, nil
}

// GetActionByID returns the action, or (nil, nil) when absent.
func (b *Backend) GetActionByID(id string) (*types.Action, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if id == "" {
		return nil, types.ErrInvalidID
	}
	return b.getActionLocked(id)
}

// GetAllActions returns non-hidden actions, newest created first.
func (b *Backend) GetAllActions() ([]*types.Action, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.queryActions("SELECT " + actionColumns + " FROM actions WHERE hidden = 0 ORDER BY created_at DESC")
}

// GetActionsByParent returns the actions in a container scope in sibling
// order. A zero parent lists standalone actions.
func (b *Backend) GetActionsByParent(parent types.ParentRef) ([]*types.Action, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	if parent.IsZero() {
		return b.queryActions("SELECT " + actionColumns +
			" FROM actions WHERE parent_id IS NULL ORDER BY action_order ASC, created_at ASC")
	}
	return b.queryActions("SELECT "+actionColumns+
		" FROM actions WHERE parent_id = ? AND parent_type = ? ORDER BY action_order ASC, created_at ASC",
		parent.ID, string(parent.Kind))
}

func (b *Backend) queryActions(query string, args ...any) ([]*types.Action, error) {
	rows, err := b.db.Query(query, args...)
	if err != nil {
		b.logError("list actions", "", err)
		return nil, fmt.Errorf("listing actions: %w", err)
	}
	defer rows.Close()

	actions := []*types.Action{}
	for rows.Next() {
		a, err := b.scanAction(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning action: %w", err)
		}
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// UpdateAction merges the patch over the stored action. A patch supplying
// both sub-item shapes resolves in favor of SubActions; Done writes both
// completion columns. Returns (false, nil) when the action does not exist.
func (b *Backend) UpdateAction(id string, patch types.ActionPatch) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	a, err := b.getActionLocked(id)
	if err != nil {
		return false, err
	}
	if a == nil {
		return false, nil
	}

	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Body != nil {
		a.Body = *patch.Body
	}
	if patch.Done != nil {
		a.Done = *patch.Done
		a.Completed = *patch.Done
	}
	if patch.Priority != nil {
		a.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		a.DueDate = patch.DueDate
	}
	switch {
	case patch.SubActions != nil:
		a.SubActions = *patch.SubActions
	case patch.SubTasks != nil:
		a.SubActions = types.SubActionsFromSubTasks(*patch.SubTasks)
	}
	if patch.ActionOrder != nil {
		a.ActionOrder = *patch.ActionOrder
	}
	if patch.CategoryID != nil {
		a.CategoryID = *patch.CategoryID
	}
	if patch.Tags != nil {
		a.Tags = *patch.Tags
	}
	if patch.Starred != nil {
		a.Starred = *patch.Starred
	}
	if patch.Hidden != nil {
		a.Hidden = *patch.Hidden
	}
	a.UpdatedAt = touch(a.UpdatedAt)

	return b.writeActionLocked(a)
}

// writeActionLocked rewrites the action row outside any transaction.
func (b *Backend) writeActionLocked(a *types.Action) (bool, error) {
	if err := b.updateActionRow(b.db, a); err != nil {
		b.logError("update action", a.ID, err)
		return false, fmt.Errorf("updating action %s: %w", a.ID, err)
	}
	return true, nil
}

// DeleteAction removes the action. Returns (false, nil) when already gone.
func (b *Backend) DeleteAction(id string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.attached {
		return false, types.ErrDetached
	}
	if id == "" {
		return false, types.ErrInvalidID
	}

	res, err := b.db.Exec("DELETE FROM actions WHERE action_id = ?", id)
	if err != nil {
		b.logError("delete action", id, err)
		return false, fmt.Errorf("deleting action %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	return affected > 0, nil
}

func (b *Backend) getActionLocked(id string) (*types.Action, error) {
	row := b.db.QueryRow("SELECT "+actionColumns+" FROM actions WHERE action_id = ?", id)
	a, err := b.scanAction(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		b.logError("get action", id, err)
		return nil, fmt.Errorf("getting action %s: %w", id, err)
	}
	return a, nil
}

func (b *Backend) scanAction(scan func(...any) error) (*types.Action, error) {
	var a types.Action
	var body, dueDate, subActions, parentID, parentType, categoryID, tags sql.NullString
	var done, completed, starred, hidden int
	var actionOrder sql.NullInt64
	var createdAt, updatedAt string
	if err := scan(&a.ID, &a.Title, &body, &done, &completed, &a.Priority,
		&dueDate, &subActions, &parentID, &parentType, &actionOrder,
		&categoryID, &tags, &starred, &hidden, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	a.Body = stringOrEmpty(body)
	a.Done = done != 0
	a.Completed = completed != 0
	a.DueDate = parseTimePtr(dueDate)
	a.SubActions = b.decodeSubActions(subActions)
	if parentID.Valid && parentType.Valid {
		a.Parent = types.ParentRef{Kind: types.ParentKind(parentType.String), ID: parentID.String}
	}
	if actionOrder.Valid {
		a.ActionOrder = int(actionOrder.Int64)
	}
	a.CategoryID = stringOrEmpty(categoryID)
	a.Tags = b.decodeStringList(tags, "actions.tags")
	a.Starred = starred != 0
	a.Hidden = hidden != 0
	a.CreatedAt = parseTime(createdAt)
	a.UpdatedAt = parseTime(updatedAt)
	return &a, nil
}
