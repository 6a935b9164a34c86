package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParentRefValidate(t *testing.T) {
	tests := []struct {
		name    string
		ref     ParentRef
		wantErr error
	}{
		{name: "zero value is standalone", ref: ParentRef{}},
		{name: "path parent", ref: ParentRef{Kind: ParentPath, ID: "p1"}},
		{name: "milestone parent", ref: ParentRef{Kind: ParentMilestone, ID: "m1"}},
		{name: "loop item parent", ref: ParentRef{Kind: ParentLoopItem, ID: "i1"}},
		{
			name:    "unknown kind",
			ref:     ParentRef{Kind: "galaxy", ID: "g1"},
			wantErr: ErrInvalidParentKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ref.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	// Kind and ID must come together.
	assert.Error(t, ParentRef{Kind: ParentPath}.Validate())
	assert.Error(t, ParentRef{ID: "p1"}.Validate())
}

func TestParentRefIsZero(t *testing.T) {
	assert.True(t, ParentRef{}.IsZero())
	assert.False(t, ParentRef{Kind: ParentPath, ID: "p1"}.IsZero())
}
