package domain

import "time"

// RosterEntry maps one calendar week to the user on call for it.
// StartsOn is always a Monday and unique across the roster.
type RosterEntry struct {
	ID       string
	StartsOn time.Time
	UserID   string
}

// WeekStart returns the Monday on or before the given date, at midnight UTC.
func WeekStart(d time.Time) time.Time {
	d = d.UTC()
	offset := (int(d.Weekday()) + 6) % 7 // Monday == 0
	monday := d.AddDate(0, 0, -offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)
}
