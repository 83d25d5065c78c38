package events

import (
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

// Event is a transient domain event flowing from the ticket state machine
// or the time-driven monitor into the notification engine. It is consumed
// exactly once and never persisted.
type Event struct {
	ID         string
	Kind       domain.NotificationKind
	ItemID     *string
	ActorID    *string
	Recipients []string
	Payload    Payload
	Timestamp  time.Time
}

// Payload carries the template inputs for an event. Fields are populated
// per kind; the notification engine's template table picks what it needs.
type Payload struct {
	ItemTitle string
	ItemType  domain.ItemType
	Priority  domain.ItemPriority

	OldStatus domain.ItemStatus
	NewStatus domain.ItemStatus

	AssigneeName string
	ActorName    string

	CommentPreview string

	DueAt          *time.Time
	HoursRemaining float64
	Overdue        bool
}
