// Unit tests for the path repository: milestone hydration, list
// reconciliation, and the unlink-on-delete guarantees.
package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/vault/pkg/types"
)

func TestPathCRUD(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend)
	}{
		{
			name: "create persists the full milestone tree",
			check: func(t *testing.T, b *Backend) {
				path := &types.Path{
					Title: "learn the cello",
					Milestones: []types.Milestone{
						{Title: "rent an instrument", Actions: []types.Action{
							{Title: "call the shop"},
							{Title: "compare prices"},
						}},
						{Title: "first lesson"},
					},
				}
				require.NoError(t, b.CreatePath(path))

				got, err := b.GetPathByID(path.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				require.Len(t, got.Milestones, 2)
				assert.Equal(t, "rent an instrument", got.Milestones[0].Title)
				require.Len(t, got.Milestones[0].Actions, 2)
				assert.Equal(t, "call the shop", got.Milestones[0].Actions[0].Title)
				assert.Equal(t, 1, got.Milestones[0].Actions[0].ActionOrder)
				assert.Equal(t, types.ParentMilestone, got.Milestones[0].Actions[0].Parent.Kind)
				assert.Empty(t, got.Milestones[1].Actions)
			},
		},
		{
			name: "get unknown id returns nil without error",
			check: func(t *testing.T, b *Backend) {
				got, err := b.GetPathByID(newID())
				require.NoError(t, err)
				assert.Nil(t, got)
			},
		},
		{
			name: "scalar patch leaves milestones alone",
			check: func(t *testing.T, b *Backend) {
				path := &types.Path{
					Title:      "original",
					Milestones: []types.Milestone{{Title: "keep"}},
				}
				require.NoError(t, b.CreatePath(path))

				title := "renamed"
				found, err := b.UpdatePath(path.ID, types.PathPatch{Title: &title})
				require.NoError(t, err)
				assert.True(t, found)

				got, err := b.GetPathByID(path.ID)
				require.NoError(t, err)
				assert.Equal(t, "renamed", got.Title)
				require.Len(t, got.Milestones, 1)
				assert.Equal(t, "keep", got.Milestones[0].Title)
			},
		},
		{
			name: "milestone reconciliation creates, updates, and removes",
			check: func(t *testing.T, b *Backend) {
				path := &types.Path{
					Title: "reconciled",
					Milestones: []types.Milestone{
						{Title: "stays"},
						{Title: "goes"},
					},
				}
				require.NoError(t, b.CreatePath(path))
				keptID := path.Milestones[0].ID

				desired := []types.Milestone{
					{ID: keptID, Title: "stays renamed"},
					{Title: "brand new"},
				}
				found, err := b.UpdatePath(path.ID, types.PathPatch{Milestones: &desired})
				require.NoError(t, err)
				assert.True(t, found)

				got, err := b.GetPathByID(path.ID)
				require.NoError(t, err)
				require.Len(t, got.Milestones, 2)
				assert.Equal(t, keptID, got.Milestones[0].ID)
				assert.Equal(t, "stays renamed", got.Milestones[0].Title)
				assert.Equal(t, "brand new", got.Milestones[1].Title)
				assert.NotEmpty(t, got.Milestones[1].ID)
			},
		},
		{
			name: "reconciling the same desired state twice is idempotent",
			check: func(t *testing.T, b *Backend) {
				path := &types.Path{
					Title:      "steady",
					Milestones: []types.Milestone{{Title: "one"}, {Title: "two"}},
				}
				require.NoError(t, b.CreatePath(path))

				first, err := b.GetPathByID(path.ID)
				require.NoError(t, err)
				desired := first.Milestones

				_, err = b.UpdatePath(path.ID, types.PathPatch{Milestones: &desired})
				require.NoError(t, err)
				after, err := b.GetPathByID(path.ID)
				require.NoError(t, err)

				_, err = b.UpdatePath(path.ID, types.PathPatch{Milestones: &after.Milestones})
				require.NoError(t, err)
				again, err := b.GetPathByID(path.ID)
				require.NoError(t, err)

				require.Len(t, again.Milestones, 2)
				for i := range after.Milestones {
					assert.Equal(t, after.Milestones[i].ID, again.Milestones[i].ID)
					assert.Equal(t, after.Milestones[i].Title, again.Milestones[i].Title)
					assert.Equal(t, after.Milestones[i].Order, again.Milestones[i].Order)
				}
			},
		},
		{
			name: "removing a milestone through reconciliation re-parents its actions",
			check: func(t *testing.T, b *Backend) {
				path := &types.Path{
					Title:      "pruned",
					Milestones: []types.Milestone{{Title: "doomed"}},
				}
				require.NoError(t, b.CreatePath(path))
				milestoneID := path.Milestones[0].ID

				action := &types.Action{
					Title:  "orphan-to-be",
					Parent: types.ParentRef{Kind: types.ParentMilestone, ID: milestoneID},
				}
				require.NoError(t, b.CreateAction(action))

				desired := []types.Milestone{}
				_, err := b.UpdatePath(path.ID, types.PathPatch{Milestones: &desired})
				require.NoError(t, err)

				got, err := b.GetActionByID(action.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, types.ParentPath, got.Parent.Kind)
				assert.Equal(t, path.ID, got.Parent.ID)
			},
		},
		{
			name: "nested action reconciliation one level deep",
			check: func(t *testing.T, b *Backend) {
				path := &types.Path{
					Title: "nested",
					Milestones: []types.Milestone{
						{Title: "stage", Actions: []types.Action{
							{Title: "kept"},
							{Title: "dropped"},
						}},
					},
				}
				require.NoError(t, b.CreatePath(path))

				stored, err := b.GetPathByID(path.ID)
				require.NoError(t, err)
				milestone := stored.Milestones[0]
				keptID := milestone.Actions[0].ID

				milestone.Actions = []types.Action{
					{ID: keptID, Title: "kept renamed"},
					{Title: "added"},
				}
				desired := []types.Milestone{milestone}
				_, err = b.UpdatePath(path.ID, types.PathPatch{Milestones: &desired})
				require.NoError(t, err)

				got, err := b.GetPathByID(path.ID)
				require.NoError(t, err)
				require.Len(t, got.Milestones, 1)
				actions := got.Milestones[0].Actions
				require.Len(t, actions, 2)

				byID := make(map[string]types.Action, len(actions))
				for _, a := range actions {
					byID[a.ID] = a
				}
				require.Contains(t, byID, keptID)
				assert.Equal(t, "kept renamed", byID[keptID].Title)
			},
		},
		{
			name: "delete returns all contained actions to standalone",
			check: func(t *testing.T, b *Backend) {
				path := &types.Path{
					Title:      "dissolved",
					Milestones: []types.Milestone{{Title: "stage"}},
				}
				require.NoError(t, b.CreatePath(path))
				milestoneID := path.Milestones[0].ID

				direct := &types.Action{
					Title:  "direct child",
					Parent: types.ParentRef{Kind: types.ParentPath, ID: path.ID},
				}
				nested := &types.Action{
					Title:  "milestone child",
					Parent: types.ParentRef{Kind: types.ParentMilestone, ID: milestoneID},
				}
				require.NoError(t, b.CreateAction(direct))
				require.NoError(t, b.CreateAction(nested))

				found, err := b.DeletePath(path.ID)
				require.NoError(t, err)
				assert.True(t, found)

				for _, id := range []string{direct.ID, nested.ID} {
					got, err := b.GetActionByID(id)
					require.NoError(t, err)
					require.NotNil(t, got)
					assert.True(t, got.Parent.IsZero())
					assert.Zero(t, got.ActionOrder)
				}

				gone, err := b.GetPathByID(path.ID)
				require.NoError(t, err)
				assert.Nil(t, gone)

				found, err = b.DeletePath(path.ID)
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

func TestGetPathActions(t *testing.T) {
	b := setupBackend(t)

	path := &types.Path{
		Title:      "scoped",
		Milestones: []types.Milestone{{Title: "stage"}},
	}
	require.NoError(t, b.CreatePath(path))
	milestoneID := path.Milestones[0].ID

	direct := &types.Action{Title: "direct", Parent: types.ParentRef{Kind: types.ParentPath, ID: path.ID}}
	nested := &types.Action{Title: "nested", Parent: types.ParentRef{Kind: types.ParentMilestone, ID: milestoneID}}
	require.NoError(t, b.CreateAction(direct))
	require.NoError(t, b.CreateAction(nested))

	// Empty milestone id scopes to the path itself.
	actions, err := b.GetPathActions(path.ID, "")
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "direct", actions[0].Title)

	actions, err = b.GetPathActions(path.ID, milestoneID)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "nested", actions[0].Title)

	// A milestone belonging to another path yields nothing.
	other := &types.Path{Title: "other", Milestones: []types.Milestone{{Title: "elsewhere"}}}
	require.NoError(t, b.CreatePath(other))
	actions, err = b.GetPathActions(other.ID, milestoneID)
	require.NoError(t, err)
	assert.Empty(t, actions)
}
