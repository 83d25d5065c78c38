package domain

import "time"

// TimeEntry records work logged against an item, either as a finished
// amount of hours or as a running timer. At most one entry per user may
// have IsRunning set; the store enforces that with a partial unique index.
type TimeEntry struct {
	ID          string
	ItemID      string
	UserID      string
	Hours       float64
	Description string
	StartedAt   *time.Time
	StoppedAt   *time.Time
	IsRunning   bool
	LoggedAt    time.Time
	CreatedAt   time.Time
}
