package domain

import "time"

// ItemComment is an append-only note on a work item.
type ItemComment struct {
	ID        string
	ItemID    string
	UserID    string
	Body      string
	CreatedAt time.Time
}
