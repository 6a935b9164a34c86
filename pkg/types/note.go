package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Note is a plain captured entry with an optional body and tags.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the note's fields.
func (n Note) Validate() error {
	return validation.ValidateStruct(&n,
		validation.Field(&n.Title, validation.Required),
	)
}

// NotePatch carries a partial update for a Note. Nil fields are left
// unchanged.
type NotePatch struct {
	Title *string
	Body  *string
	Tags  *[]string
}
