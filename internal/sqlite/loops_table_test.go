// Unit tests for the loop repository: item ownership, reconciliation, and the
// opaque frequency payload.
package sqlite

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/vault/pkg/types"
)

func TestLoopCRUD(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend)
	}{
		{
			name: "create persists items in slice order",
			check: func(t *testing.T, b *Backend) {
				duration := 20
				loop := &types.Loop{
					Title:  "morning routine",
					Active: true,
					Items: []types.LoopItem{
						{Name: "stretch", DurationMinutes: &duration},
						{Name: "coffee"},
					},
				}
				require.NoError(t, b.CreateLoop(loop))

				got, err := b.GetLoopByID(loop.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				require.Len(t, got.Items, 2)
				assert.Equal(t, "stretch", got.Items[0].Name)
				assert.Equal(t, 0, got.Items[0].Order)
				require.NotNil(t, got.Items[0].DurationMinutes)
				assert.Equal(t, 20, *got.Items[0].DurationMinutes)
				assert.Equal(t, "coffee", got.Items[1].Name)
				assert.Nil(t, got.Items[1].Quantity)
			},
		},
		{
			name: "frequency round-trips untouched",
			check: func(t *testing.T, b *Backend) {
				freq := json.RawMessage(`{"kind":"weekly","interval":2}`)
				loop := &types.Loop{Title: "biweekly review", Frequency: freq}
				require.NoError(t, b.CreateLoop(loop))

				got, err := b.GetLoopByID(loop.ID)
				require.NoError(t, err)
				assert.JSONEq(t, string(freq), string(got.Frequency))
			},
		},
		{
			name: "start time map round-trips",
			check: func(t *testing.T, b *Backend) {
				loop := &types.Loop{
					Title:          "run",
					StartTimeByDay: map[string]string{"monday": "06:30", "friday": "07:00"},
				}
				require.NoError(t, b.CreateLoop(loop))

				got, err := b.GetLoopByID(loop.ID)
				require.NoError(t, err)
				assert.Equal(t, loop.StartTimeByDay, got.StartTimeByDay)
			},
		},
		{
			name: "item reconciliation creates, updates, and deletes",
			check: func(t *testing.T, b *Backend) {
				loop := &types.Loop{
					Title: "reconciled",
					Items: []types.LoopItem{{Name: "stays"}, {Name: "goes"}},
				}
				require.NoError(t, b.CreateLoop(loop))
				keptID := loop.Items[0].ID

				desired := []types.LoopItem{
					{ID: keptID, Name: "stays renamed"},
					{Name: "brand new"},
				}
				found, err := b.UpdateLoop(loop.ID, types.LoopPatch{Items: &desired})
				require.NoError(t, err)
				assert.True(t, found)

				got, err := b.GetLoopByID(loop.ID)
				require.NoError(t, err)
				require.Len(t, got.Items, 2)
				assert.Equal(t, keptID, got.Items[0].ID)
				assert.Equal(t, "stays renamed", got.Items[0].Name)
				assert.Equal(t, "brand new", got.Items[1].Name)
			},
		},
		{
			name: "reconciling the same desired list twice is a no-op",
			check: func(t *testing.T, b *Backend) {
				loop := &types.Loop{
					Title: "steady",
					Items: []types.LoopItem{{Name: "one"}, {Name: "two"}},
				}
				require.NoError(t, b.CreateLoop(loop))

				first, err := b.GetLoopByID(loop.ID)
				require.NoError(t, err)

				_, err = b.UpdateLoop(loop.ID, types.LoopPatch{Items: &first.Items})
				require.NoError(t, err)
				second, err := b.GetLoopByID(loop.ID)
				require.NoError(t, err)

				_, err = b.UpdateLoop(loop.ID, types.LoopPatch{Items: &second.Items})
				require.NoError(t, err)
				third, err := b.GetLoopByID(loop.ID)
				require.NoError(t, err)

				assert.Equal(t, second.Items, third.Items)
			},
		},
		{
			name: "delete cascades to items",
			check: func(t *testing.T, b *Backend) {
				loop := &types.Loop{
					Title: "doomed",
					Items: []types.LoopItem{{Name: "casualty"}},
				}
				require.NoError(t, b.CreateLoop(loop))

				found, err := b.DeleteLoop(loop.ID)
				require.NoError(t, err)
				assert.True(t, found)

				var count int
				require.NoError(t, b.db.QueryRow(
					"SELECT COUNT(*) FROM loop_items WHERE loop_id = ?", loop.ID).Scan(&count))
				assert.Zero(t, count)

				found, err = b.DeleteLoop(loop.ID)
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
