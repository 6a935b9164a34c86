package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Chapter is an ordered time span owned by a Saga.
type Chapter struct {
	ID            string     `json:"id"`
	SagaID        string     `json:"saga_id"`
	ChapterNumber int        `json:"chapter_number"`
	StartDate     time.Time  `json:"start_date"`
	EndDate       *time.Time `json:"end_date,omitempty"`
}

// Saga groups entries into a named era with ordered chapters. Chapters are
// owned 1:N children: deleting the saga deletes them.
type Saga struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon,omitempty"`
	Chapters  []Chapter `json:"chapters,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the saga's fields.
func (s Saga) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
	)
}

// SagaPatch carries a partial update for a Saga. A non-nil Chapters slice is
// the full desired chapter list, reconciled by id.
type SagaPatch struct {
	Name     *string
	Icon     *string
	Chapters *[]Chapter
}
