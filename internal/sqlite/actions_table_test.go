// Unit tests for the action repository: sibling ordering, completion flag
// mirroring, sub-item precedence, and the due-date view.
package sqlite

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/vault/pkg/types"
)

func TestActionCRUD(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend)
	}{
		{
			name: "create mirrors done into completed",
			check: func(t *testing.T, b *Backend) {
				action := &types.Action{Title: "already done", Done: true}
				require.NoError(t, b.CreateAction(action))

				got, err := b.GetActionByID(action.ID)
				require.NoError(t, err)
				assert.True(t, got.Done)
				assert.True(t, got.Completed)
			},
		},
		{
			name: "siblings in one scope get orders 1, 2, 3",
			check: func(t *testing.T, b *Backend) {
				parent := types.ParentRef{Kind: types.ParentPath, ID: newID()}
				for _, title := range []string{"one", "two", "three"} {
					require.NoError(t, b.CreateAction(&types.Action{Title: title, Parent: parent}))
				}

				actions, err := b.GetActionsByParent(parent)
				require.NoError(t, err)
				require.Len(t, actions, 3)
				for i, a := range actions {
					assert.Equal(t, i+1, a.ActionOrder)
				}
				assert.Equal(t, "one", actions[0].Title)
				assert.Equal(t, "three", actions[2].Title)
			},
		},
		{
			name: "create keeps an explicit sibling order",
			check: func(t *testing.T, b *Backend) {
				parent := types.ParentRef{Kind: types.ParentPath, ID: newID()}
				action := &types.Action{Title: "pinned", Parent: parent, ActionOrder: 7}
				require.NoError(t, b.CreateAction(action))

				got, err := b.GetActionByID(action.ID)
				require.NoError(t, err)
				assert.Equal(t, 7, got.ActionOrder)
			},
		},
		{
			name: "scopes number independently",
			check: func(t *testing.T, b *Backend) {
				first := types.ParentRef{Kind: types.ParentMilestone, ID: newID()}
				second := types.ParentRef{Kind: types.ParentMilestone, ID: newID()}
				a1 := &types.Action{Title: "a", Parent: first}
				a2 := &types.Action{Title: "b", Parent: second}
				require.NoError(t, b.CreateAction(a1))
				require.NoError(t, b.CreateAction(a2))

				assert.Equal(t, 1, a1.ActionOrder)
				assert.Equal(t, 1, a2.ActionOrder)
			},
		},
		{
			name: "create rejects a half-set parent reference",
			check: func(t *testing.T, b *Backend) {
				err := b.CreateAction(&types.Action{
					Title:  "bad parent",
					Parent: types.ParentRef{Kind: types.ParentPath},
				})
				assert.Error(t, err)
			},
		},
		{
			name: "patch done updates both completion flags",
			check: func(t *testing.T, b *Backend) {
				action := &types.Action{Title: "todo"}
				require.NoError(t, b.CreateAction(action))

				done := true
				found, err := b.UpdateAction(action.ID, types.ActionPatch{Done: &done})
				require.NoError(t, err)
				assert.True(t, found)

				got, err := b.GetActionByID(action.ID)
				require.NoError(t, err)
				assert.True(t, got.Done)
				assert.True(t, got.Completed)
			},
		},
		{
			name: "sub-actions win when a patch carries both shapes",
			check: func(t *testing.T, b *Backend) {
				action := &types.Action{Title: "with subs"}
				require.NoError(t, b.CreateAction(action))

				subActions := []types.SubAction{{ID: "s1", Text: "canonical", Done: true}}
				subTasks := []types.SubTask{{ID: "s2", Text: "legacy", Completed: false}}
				_, err := b.UpdateAction(action.ID, types.ActionPatch{
					SubActions: &subActions,
					SubTasks:   &subTasks,
				})
				require.NoError(t, err)

				got, err := b.GetActionByID(action.ID)
				require.NoError(t, err)
				require.Len(t, got.SubActions, 1)
				assert.Equal(t, "canonical", got.SubActions[0].Text)
			},
		},
		{
			name: "sub-tasks alone are converted to the canonical shape",
			check: func(t *testing.T, b *Backend) {
				action := &types.Action{Title: "legacy subs"}
				require.NoError(t, b.CreateAction(action))

				subTasks := []types.SubTask{{ID: "s1", Text: "step", Completed: true}}
				_, err := b.UpdateAction(action.ID, types.ActionPatch{SubTasks: &subTasks})
				require.NoError(t, err)

				got, err := b.GetActionByID(action.ID)
				require.NoError(t, err)
				require.Len(t, got.SubActions, 1)
				assert.True(t, got.SubActions[0].Done)
				assert.Equal(t, "step", got.SubTasks()[0].Text)
			},
		},
		{
			name: "default listing skips hidden actions",
			check: func(t *testing.T, b *Backend) {
				require.NoError(t, b.CreateAction(&types.Action{Title: "shown"}))
				require.NoError(t, b.CreateAction(&types.Action{Title: "hidden", Hidden: true}))

				actions, err := b.GetAllActions()
				require.NoError(t, err)
				require.Len(t, actions, 1)
				assert.Equal(t, "shown", actions[0].Title)
			},
		},
		{
			name: "delete is idempotent",
			check: func(t *testing.T, b *Backend) {
				action := &types.Action{Title: "doomed"}
				require.NoError(t, b.CreateAction(action))

				found, err := b.DeleteAction(action.ID)
				require.NoError(t, err)
				assert.True(t, found)

				found, err = b.DeleteAction(action.ID)
				require.NoError(t, err)
				assert.False(t, found)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, setupBackend(t))
		})
	}
}

func TestGetActionsWithDueDate(t *testing.T) {
	b := setupBackend(t)

	march := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	january := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, b.CreateAction(&types.Action{Title: "later", DueDate: &march}))
	require.NoError(t, b.CreateAction(&types.Action{Title: "sooner", DueDate: &january}))
	require.NoError(t, b.CreateAction(&types.Action{Title: "no due date"}))
	require.NoError(t, b.CreateAction(&types.Action{Title: "done", Done: true, DueDate: &january}))

	actions, err := b.GetActionsWithDueDate()
	require.NoError(t, err)
	require.Len(t, actions, 2)
	assert.Equal(t, "sooner", actions[0].Title)
	assert.Equal(t, "later", actions[1].Title)
}
