// Package checkin is the daily check-in state machine. Days are counted in
// the program's fixed offset, never in the caller's zone.
package checkin

import (
	"time"

	"github.com/pkg/errors"

	"server-tonix-app/internal/model"
	"server-tonix-app/internal/pkg/generr"
	"server-tonix-app/internal/pkg/util"
)

type Transition struct {
	Today     string `json:"today"`
	Streak    int64  `json:"current_streak"`
	TotalDays int64  `json:"total_days"`
	Continued bool   `json:"continued"` // false when the streak restarted at 1
}

// Apply moves acc to checked-in-today. A second attempt on the same day
// fails with generr.AlreadyCheckedIn and leaves acc unchanged.
func Apply(acc *model.Account, now time.Time, loc *time.Location) (Transition, error) {
	today := util.DayOf(now, loc)
	// a stored date after today means the clock went back; still one per day
	if acc.LastCheckinDate != "" && acc.LastCheckinDate >= today {
		return Transition{}, generr.AlreadyCheckedIn.With("already checked in today (%s)", today)
	}

	yesterday, err := util.AddDays(today, -1)
	if err != nil {
		return Transition{}, errors.Wrap(err, "compute yesterday")
	}

	t := Transition{Today: today}
	if acc.LastCheckinDate == yesterday {
		acc.CurrentStreak++
		t.Continued = true
	} else {
		acc.CurrentStreak = 1
	}
	acc.LastCheckinDate = today
	acc.TotalDays++

	t.Streak = acc.CurrentStreak
	t.TotalDays = acc.TotalDays
	return t, nil
}

type Status struct {
	Today          string    `json:"today"`
	CheckedInToday bool      `json:"checked_in_today"`
	CurrentStreak  int64     `json:"current_streak"` // 0 once the streak is broken
	TotalDays      int64     `json:"total_days"`
	LastCheckin    string    `json:"last_checkin_date,omitempty"`
	NextCheckinAt  time.Time `json:"next_checkin_at"`
}

// StatusOf reports what a check-in attempt at now would do.
func StatusOf(acc *model.Account, now time.Time, loc *time.Location) Status {
	today := util.DayOf(now, loc)
	s := Status{
		Today:       today,
		TotalDays:   acc.TotalDays,
		LastCheckin: acc.LastCheckinDate,
	}
	s.CheckedInToday = acc.LastCheckinDate != "" && acc.LastCheckinDate >= today

	yesterday, err := util.AddDays(today, -1)
	if s.CheckedInToday || (err == nil && acc.LastCheckinDate == yesterday) {
		s.CurrentStreak = acc.CurrentStreak
	}

	if s.CheckedInToday {
		s.NextCheckinAt = util.StartOfDay(now, loc).AddDate(0, 0, 1)
	} else {
		s.NextCheckinAt = now
	}
	return s
}
