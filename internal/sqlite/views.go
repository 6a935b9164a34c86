package sqlite

import (
	"github.com/mesh-intelligence/vault/pkg/types"
)

// Derived views. These are read-only queries over the entry tables; nothing
// here mutates state.

// GetActionsWithDueDate returns open actions that carry a due date, soonest
// first. Done actions are excluded regardless of their due date.
func (b *Backend) GetActionsWithDueDate() ([]*types.Action, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.queryActions("SELECT " + actionColumns +
		" FROM actions WHERE done = 0 AND due_date IS NOT NULL AND due_date != '' ORDER BY due_date ASC")
}

// GetUnlinkedSparks returns non-hidden sparks with no linked entries, newest
// created first. A NULL, empty, or empty-list linked_entry_ids column all
// count as unlinked.
func (b *Backend) GetUnlinkedSparks() ([]*types.Spark, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.querySparks("SELECT " + sparkColumns + " FROM sparks WHERE hidden = 0" +
		" AND (linked_entry_ids IS NULL OR linked_entry_ids = '' OR linked_entry_ids = '[]' OR linked_entry_ids = 'null')" +
		" ORDER BY created_at DESC")
}
