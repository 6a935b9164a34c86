package types

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Spark is a captured insight. It can link to other entries by id and be
// starred or hidden. Hidden is a listing filter, not a lifecycle state:
// hidden sparks stay fully present and mutable.
type Spark struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Body           string    `json:"body"`
	Tags           []string  `json:"tags,omitempty"`
	LinkedEntryIDs []string  `json:"linked_entry_ids,omitempty"`
	CategoryID     string    `json:"category_id,omitempty"`
	Starred        bool      `json:"starred"`
	Hidden         bool      `json:"hidden"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate checks the spark's fields.
func (s Spark) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Title, validation.Required),
	)
}

// SparkPatch carries a partial update for a Spark. Nil fields are left
// unchanged.
type SparkPatch struct {
	Title          *string
	Body           *string
	Tags           *[]string
	LinkedEntryIDs *[]string
	CategoryID     *string
	Starred        *bool
	Hidden         *bool
}
