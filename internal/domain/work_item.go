package domain

import "time"

// ItemType distinguishes support requests from feature work.
type ItemType string

const (
	ItemTypeSupport ItemType = "support"
	ItemTypeFeature ItemType = "feature"
)

// ItemStatus enumerates lifecycle states for work items.
type ItemStatus string

const (
	ItemStatusBacklog    ItemStatus = "backlog"
	ItemStatusInProgress ItemStatus = "in_progress"
	ItemStatusReview     ItemStatus = "review"
	ItemStatusDone       ItemStatus = "done"
)

// IsTerminal reports whether the status is the done state.
func (s ItemStatus) IsTerminal() bool {
	return s == ItemStatusDone
}

// Valid reports whether the status is a member of the closed set.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusBacklog, ItemStatusInProgress, ItemStatusReview, ItemStatusDone:
		return true
	}
	return false
}

// ItemPriority enumerates urgency levels.
type ItemPriority string

const (
	ItemPriorityCritical ItemPriority = "critical"
	ItemPriorityHigh     ItemPriority = "high"
	ItemPriorityNormal   ItemPriority = "normal"
	ItemPriorityLow      ItemPriority = "low"
)

// Valid reports whether the priority is a member of the closed set.
func (p ItemPriority) Valid() bool {
	switch p {
	case ItemPriorityCritical, ItemPriorityHigh, ItemPriorityNormal, ItemPriorityLow:
		return true
	}
	return false
}

// WorkItem is the aggregate for trackable support and feature work.
// CompletedAt is non-nil exactly when Status is done; the state machine
// owns that pairing and nothing else writes it.
type WorkItem struct {
	ID          string
	Type        ItemType
	Title       string
	Description string
	Status      ItemStatus
	Priority    ItemPriority
	ReporterID  string
	AssigneeID  *string
	BranchID    *string
	DueAt       *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
