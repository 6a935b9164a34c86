package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// LoopItem is an ordered routine step owned by a Loop. Items are owned 1:N
// children: deleting the loop deletes them.
type LoopItem struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DurationMinutes *int   `json:"duration_minutes,omitempty"`
	Quantity        *int   `json:"quantity,omitempty"`
	Icon            string `json:"icon,omitempty"`
	Order           int    `json:"order"`
}

// Loop is a recurring routine. Frequency is an opaque structured schedule
// payload that round-trips through storage untouched; StartTimeByDay maps a
// lowercase weekday name ("monday") to a start time ("07:00") and doubles as
// the enabled-day set for scheduling.
type Loop struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Description    string            `json:"description,omitempty"`
	Frequency      json.RawMessage   `json:"frequency,omitempty"`
	StartTimeByDay map[string]string `json:"start_time_by_day,omitempty"`
	Active         bool              `json:"active"`
	StartDate      time.Time         `json:"start_date"`
	EndDate        *time.Time        `json:"end_date,omitempty"`
	Tags           []string          `json:"tags,omitempty"`
	CategoryID     string            `json:"category_id,omitempty"`
	Items          []LoopItem        `json:"items,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Validate checks the loop's fields.
func (l Loop) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Title, validation.Required),
	)
}

// LoopPatch carries a partial update for a Loop. Nil fields are left
// unchanged. A non-nil Items slice is the full desired item list and is
// reconciled against stored items by id.
type LoopPatch struct {
	Title          *string
	Description    *string
	Frequency      *json.RawMessage
	StartTimeByDay *map[string]string
	Active         *bool
	StartDate      *time.Time
	EndDate        *time.Time
	Tags           *[]string
	CategoryID     *string
	Items          *[]LoopItem
}

// Occurrence is a scheduled loop slot: a weekday and an "HH:MM" start time.
type Occurrence struct {
	Day  time.Weekday
	Time string
}

// String renders the occurrence as "Friday at 07:00".
func (o Occurrence) String() string {
	return fmt.Sprintf("%s at %s", o.Day, o.Time)
}

// NextOccurrence finds the loop's next scheduled slot at or after now: today
// if today's start time has not passed, otherwise the nearest subsequent
// enabled day circularly through the week. Returns false when no day is
// enabled.
func (l *Loop) NextOccurrence(now time.Time) (Occurrence, bool) {
	if len(l.StartTimeByDay) == 0 {
		return Occurrence{}, false
	}
	for offset := 0; offset < 7; offset++ {
		day := (int(now.Weekday()) + offset) % 7
		name := strings.ToLower(time.Weekday(day).String())
		slot, ok := l.StartTimeByDay[name]
		if !ok || slot == "" {
			continue
		}
		if offset == 0 && !beforeClock(now, slot) {
			continue
		}
		return Occurrence{Day: time.Weekday(day), Time: slot}, true
	}
	// All enabled slots today are in the past: wrap to the first enabled day
	// next week, which is the same scan ignoring the time-of-day check.
	for offset := 1; offset <= 7; offset++ {
		day := (int(now.Weekday()) + offset) % 7
		name := strings.ToLower(time.Weekday(day).String())
		if slot, ok := l.StartTimeByDay[name]; ok && slot != "" {
			return Occurrence{Day: time.Weekday(day), Time: slot}, true
		}
	}
	return Occurrence{}, false
}

// beforeClock reports whether now's wall-clock time is strictly before the
// "HH:MM" slot.
func beforeClock(now time.Time, slot string) bool {
	t, err := time.Parse("15:04", slot)
	if err != nil {
		return false
	}
	if now.Hour() != t.Hour() {
		return now.Hour() < t.Hour()
	}
	return now.Minute() < t.Minute()
}
