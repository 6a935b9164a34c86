package types

import "errors"

// ParentKind enumerates the container kinds an Action can belong to.
type ParentKind string

// Container kinds. The string values are the discriminator stored in the
// actions table's parent_type column.
const (
	ParentPath      ParentKind = "path"
	ParentMilestone ParentKind = "milestone"
	ParentLoopItem  ParentKind = "loop-item"
)

// ErrInvalidParentKind is returned when a parent reference names an unknown
// container kind.
var ErrInvalidParentKind = errors.New("invalid parent kind")

var knownParentKinds = map[ParentKind]bool{
	ParentPath:      true,
	ParentMilestone: true,
	ParentLoopItem:  true,
}

// ParentRef identifies the container an Action belongs to. The zero value
// means the action is standalone. Kind and ID are either both set or both
// empty; the flat parent_id/parent_type column pair exists only at the
// storage boundary.
type ParentRef struct {
	Kind ParentKind `json:"kind"`
	ID   string     `json:"id"`
}

// IsZero reports whether the reference is empty (standalone action).
func (p ParentRef) IsZero() bool {
	return p.Kind == "" && p.ID == ""
}

// Validate checks that Kind and ID are both set with a known kind, or both
// empty.
func (p ParentRef) Validate() error {
	if p.IsZero() {
		return nil
	}
	if p.Kind == "" || p.ID == "" {
		return errors.New("parent kind and id must both be set")
	}
	if !knownParentKinds[p.Kind] {
		return ErrInvalidParentKind
	}
	return nil
}
