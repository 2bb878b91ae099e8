// Package schedule decides whether a broadcast belongs in the playlist right now.
package schedule

import (
	"time"

	"github.com/voyagen/pimplecast/internal/models"
)

const (
	// Lead is how long before kickoff a broadcast starts being listed.
	Lead = 30 * time.Minute
	// Duration is the assumed maximum length of an event.
	Duration = 3 * time.Hour
)

// Start combines today's date in loc with the broadcast's HH:MM kickoff.
// Listings never carry a date, so the kickoff is always taken to be today.
func Start(b models.Broadcast, now time.Time, loc *time.Location) (time.Time, bool) {
	clock, err := time.Parse("15:04", b.Time)
	if err != nil {
		return time.Time{}, false
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), true
}

// Suitable reports whether b should be listed at now: live broadcasts always
// are, others from Lead before kickoff until Duration after it.
func Suitable(b models.Broadcast, now time.Time, loc *time.Location) bool {
	if b.Live {
		return true
	}
	start, ok := Start(b, now, loc)
	if !ok {
		return false
	}
	end := start.Add(Duration)
	return !end.Before(now) && !start.After(now.Add(Lead))
}
