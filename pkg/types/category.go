package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Category labels entries with a title and display color.
type Category struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the category's fields.
func (c Category) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Title, validation.Required),
	)
}

// CategoryPatch carries a partial update for a Category.
type CategoryPatch struct {
	Title *string
	Color *string
}
