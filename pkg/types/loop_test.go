package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextOccurrence(t *testing.T) {
	// 2026-01-07 is a Wednesday.
	wednesdayMorning := time.Date(2026, 1, 7, 6, 0, 0, 0, time.UTC)
	wednesdayEvening := time.Date(2026, 1, 7, 20, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		schedule map[string]string
		now      time.Time
		want     string
		wantOK   bool
	}{
		{
			name:     "no enabled days",
			schedule: nil,
			now:      wednesdayMorning,
			wantOK:   false,
		},
		{
			name:     "today before the slot counts as today",
			schedule: map[string]string{"wednesday": "09:00"},
			now:      wednesdayMorning,
			want:     "Wednesday at 09:00",
			wantOK:   true,
		},
		{
			name:     "today after the slot wraps a full week",
			schedule: map[string]string{"wednesday": "09:00"},
			now:      wednesdayEvening,
			want:     "Wednesday at 09:00",
			wantOK:   true,
		},
		{
			name:     "nearest later day in the same week",
			schedule: map[string]string{"friday": "07:00", "sunday": "10:00"},
			now:      wednesdayMorning,
			want:     "Friday at 07:00",
			wantOK:   true,
		},
		{
			name:     "wraps past the weekend to next week",
			schedule: map[string]string{"monday": "08:00"},
			now:      wednesdayEvening,
			want:     "Monday at 08:00",
			wantOK:   true,
		},
		{
			name:     "exactly at the slot moves to the next occurrence",
			schedule: map[string]string{"wednesday": "06:00", "thursday": "06:00"},
			now:      wednesdayMorning,
			want:     "Thursday at 06:00",
			wantOK:   true,
		},
		{
			name:     "blank slot time is skipped",
			schedule: map[string]string{"wednesday": "", "friday": "07:00"},
			now:      wednesdayMorning,
			want:     "Friday at 07:00",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Loop{Title: "test", StartTimeByDay: tt.schedule}
			got, ok := l.NextOccurrence(tt.now)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}
