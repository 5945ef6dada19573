// Package sla derives review-deadline state from a stored deadline. Nothing
// here is persisted; callers re-evaluate on every read so the state keeps
// moving as time passes without any writes.
package sla

import "time"

type Status string

const (
	StatusOnTrack  Status = "on_track"
	StatusUrgent   Status = "urgent"
	StatusBreached Status = "breached"
)

// UrgentWindow is how close to the deadline a submission has to be before
// it is flagged urgent.
const UrgentWindow = 12 * time.Hour

type Result struct {
	Status         Status  `json:"status"`
	HoursRemaining float64 `json:"hours_remaining"`
}

// Evaluate is a pure function of its two inputs. Deadline exactly equal to
// now counts as urgent with zero hours remaining, not breached.
func Evaluate(deadline, now time.Time) Result {
	remaining := deadline.Sub(now)
	if remaining < 0 {
		return Result{Status: StatusBreached, HoursRemaining: 0}
	}
	hours := remaining.Hours()
	if remaining < UrgentWindow {
		return Result{Status: StatusUrgent, HoursRemaining: hours}
	}
	return Result{Status: StatusOnTrack, HoursRemaining: hours}
}

// EvaluatePtr handles submissions that never got a deadline; they are
// treated as on track with no remaining-hours signal.
func EvaluatePtr(deadline *time.Time, now time.Time) Result {
	if deadline == nil {
		return Result{Status: StatusOnTrack, HoursRemaining: 0}
	}
	return Evaluate(*deadline, now)
}
