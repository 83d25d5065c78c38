package dto

import "time"

// StartTimerRequest payload.
type StartTimerRequest struct {
	ItemID      string `json:"item_id"`
	Description string `json:"description"`
}

// StopTimerRequest payload.
type StopTimerRequest struct {
	Description *string `json:"description"`
}

// LogTimeRequest payload for recording hours without a timer.
type LogTimeRequest struct {
	ItemID      string     `json:"item_id"`
	Hours       float64    `json:"hours"`
	Description string     `json:"description"`
	LoggedAt    *time.Time `json:"logged_at"`
}

// TimeEntryResponse mirrors a time entry.
type TimeEntryResponse struct {
	ID          string     `json:"id"`
	ItemID      string     `json:"item_id"`
	UserID      string     `json:"user_id"`
	Hours       float64    `json:"hours"`
	Description string     `json:"description"`
	StartedAt   *time.Time `json:"started_at"`
	StoppedAt   *time.Time `json:"stopped_at"`
	IsRunning   bool       `json:"is_running"`
	LoggedAt    time.Time  `json:"logged_at"`
	CreatedAt   time.Time  `json:"created_at"`
}
