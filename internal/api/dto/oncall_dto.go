package dto

import "time"

// SeedRosterRequest payload. Anchor defaults to the current week.
type SeedRosterRequest struct {
	UserIDs []string   `json:"user_ids"`
	Anchor  *time.Time `json:"anchor"`
}

// RosterEntryResponse mirrors one roster week.
type RosterEntryResponse struct {
	ID       string    `json:"id"`
	StartsOn time.Time `json:"starts_on"`
	UserID   string    `json:"user_id"`
}

// OncallResponse names the current on-call user, if any.
type OncallResponse struct {
	WeekStart time.Time     `json:"week_start"`
	User      *UserResponse `json:"user"`
}
