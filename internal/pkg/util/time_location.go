package util

import (
	"strconv"
	"time"
)

const DateLayout = "2006-01-02"

// FixedOffset is the program calendar: a zone pinned to a whole-hour UTC
// offset, named after it (UTC+4). It never observes DST.
func FixedOffset(hours int) *time.Location {
	name := "UTC"
	switch {
	case hours > 0:
		name = "UTC+" + strconv.Itoa(hours)
	case hours < 0:
		name = "UTC-" + strconv.Itoa(-hours)
	}
	return time.FixedZone(name, hours*3600)
}

// DayOf returns the calendar date of t in loc.
func DayOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// StartOfDay is midnight of t's calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// AddDays shifts a YYYY-MM-DD date by n calendar days.
func AddDays(day string, n int) (string, error) {
	t, err := time.Parse(DateLayout, day)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, n).Format(DateLayout), nil
}
