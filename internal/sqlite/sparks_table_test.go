// Unit tests for the spark repository and the unlinked-sparks view.
package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/vault/pkg/types"
)

func TestSparkCRUD(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T, b *Backend)
	}{
		{
			name: "round trip preserves links and flags",
			check: func(t *testing.T, b *Backend) {
				spark := &types.Spark{
					Title:          "An idea",
					Body:           "details",
					Tags:           []string{"shower-thought"},
					LinkedEntryIDs: []string{"note-1", "action-2"},
					Starred:        true,
				}
				require.NoError(t, b.CreateSpark(spark))

				got, err := b.GetSparkByID(spark.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, spark.Title, got.Title)
				assert.Equal(t, spark.LinkedEntryIDs, got.LinkedEntryIDs)
				assert.True(t, got.Starred)
				assert.False(t, got.Hidden)
			},
		},
		{
			name: "default listing skips hidden sparks",
			check: func(t *testing.T, b *Backend) {
				visible := &types.Spark{Title: "visible"}
				hidden := &types.Spark{Title: "hidden", Hidden: true}
				require.NoError(t, b.CreateSpark(visible))
				require.NoError(t, b.CreateSpark(hidden))

				sparks, err := b.GetAllSparks()
				require.NoError(t, err)
				require.Len(t, sparks, 1)
				assert.Equal(t, "visible", sparks[0].Title)

				// Hidden sparks stay reachable by id.
				got, err := b.GetSparkByID(hidden.ID)
				require.NoError(t, err)
				require.NotNil(t, got)
			},
		},
		{
			name: "update can link and unlink entries",
			check: func(t *testing.T, b *Backend) {
				spark := &types.Spark{Title: "linkable"}
				require.NoError(t, b.CreateSpark(spark))

				links := []string{"path-9"}
				found, err := b.UpdateSpark(spark.ID, types.SparkPatch{LinkedEntryIDs: &links})
				require.NoError(t, err)
				assert.True(t, found)

				got, err := b.GetSparkByID(spark.ID)
				require.NoError(t, err)
				assert.Equal(t, links, got.LinkedEntryIDs)

				empty := []string{}
				_, err = b.UpdateSpark(spark.ID, types.SparkPatch{LinkedEntryIDs: &empty})
				require.NoError(t, err)
				got, err = b.GetSparkByID(spark.ID)
				require.NoError(t, err)
				assert.Empty(t, got.LinkedEntryIDs)
			},
		},
		{
			name: "delete is idempotent",
			check: func(t *testing.T, b *Backend) {
				spark := &types.Spark{Title: "gone"}
				require.NoError(t, b.CreateSpark(spark))

				found, err := b.DeleteSpark(spark.ID)
				require.NoError(t, err)
				assert.True(t, found)

				found, err = b.DeleteSpark(spark.ID)
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

func TestGetUnlinkedSparks(t *testing.T) {
	b := setupBackend(t)

	linked := &types.Spark{Title: "linked", LinkedEntryIDs: []string{"note-1"}}
	unlinked := &types.Spark{Title: "unlinked"}
	emptyList := &types.Spark{Title: "empty list", LinkedEntryIDs: []string{}}
	hidden := &types.Spark{Title: "hidden", Hidden: true}
	require.NoError(t, b.CreateSpark(linked))
	require.NoError(t, b.CreateSpark(unlinked))
	require.NoError(t, b.CreateSpark(emptyList))
	require.NoError(t, b.CreateSpark(hidden))

	sparks, err := b.GetUnlinkedSparks()
	require.NoError(t, err)

	titles := make([]string, len(sparks))
	for i, s := range sparks {
		titles[i] = s.Title
	}
	assert.ElementsMatch(t, []string{"unlinked", "empty list"}, titles)

	// Newest first.
	require.Len(t, sparks, 2)
	assert.Equal(t, "empty list", sparks[0].Title)
}
