package prompt

import (
	"math"
	"time"
)

// Window is a user's active hours, inclusive on both ends, in local time.
// When Start > End the window wraps past midnight (22..2 covers 22,23,0,1,2).
type Window struct {
	Start int
	End   int
}

// DefaultWindow is 7 PM to 9 PM.
var DefaultWindow = Window{Start: 19, End: 21}

// Valid reports whether both bounds are hours of the day.
func (w Window) Valid() bool {
	return w.Start >= 0 && w.Start <= 23 && w.End >= 0 && w.End <= 23
}

// Contains reports whether hour falls inside the window.
func (w Window) Contains(hour int) bool {
	if w.Start <= w.End {
		return hour >= w.Start && hour <= w.End
	}
	return hour >= w.Start || hour <= w.End
}

// DueContext provides the per-user state for IsDue.
type DueContext struct {
	LastPromptAt *time.Time
	Window       Window
	Location     *time.Location
}

// IsDue reports whether a user is owed a new prompt at now.
// Rules:
// - Not due within Interval of the last prompt
// - Otherwise due only when the local hour falls inside the active window
func IsDue(ctx DueContext, now time.Time) bool {
	if ctx.LastPromptAt != nil && now.Sub(*ctx.LastPromptAt) < Interval {
		return false
	}
	return ctx.Window.Contains(now.In(location(ctx.Location)).Hour())
}

// StartOfDay returns local midnight of the day containing now.
func StartOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(location(loc))
	y, m, d := local.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, local.Location())
}

// DaysBetween returns the number of local calendar days from a to b.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	da := StartOfDay(a, loc)
	db := StartOfDay(b, loc)
	// Round to absorb DST shifts of an hour.
	return int(math.Round(db.Sub(da).Hours() / 24))
}

func location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
