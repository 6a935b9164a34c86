package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Milestone is an ordered stage owned by a Path. Its actions hang off the
// polymorphic parent link (ParentMilestone); deleting a milestone re-parents
// them to the owning path instead of deleting them.
type Milestone struct {
	ID          string   `json:"id"`
	PathID      string   `json:"path_id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Order       int      `json:"order"`
	Collapsed   bool     `json:"collapsed"`
	Actions     []Action `json:"actions,omitempty"`
}

// Path is a goal journey made of ordered milestones.
type Path struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	StartDate   *time.Time  `json:"start_date,omitempty"`
	TargetDate  *time.Time  `json:"target_date,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	CategoryID  string      `json:"category_id,omitempty"`
	Milestones  []Milestone `json:"milestones,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Validate checks the path's fields.
func (p Path) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
	)
}

// PathPatch carries a partial update for a Path. Nil fields are left
// unchanged. A non-nil Milestones slice is the full desired milestone list and
// is reconciled against stored milestones by id; each desired milestone's
// Actions list, when non-nil, is reconciled one level deeper the same way.
type PathPatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	TargetDate  *time.Time
	Tags        *[]string
	CategoryID  *string
	Milestones  *[]Milestone
}
