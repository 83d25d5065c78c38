package domain

import "time"

// NotificationKind enumerates the closed set of notification types. The
// same identifiers key the per-kind preference flags and message templates.
type NotificationKind string

const (
	KindTicketAssigned      NotificationKind = "ticket_assigned"
	KindTicketUpdated       NotificationKind = "ticket_updated"
	KindTicketCommented     NotificationKind = "ticket_commented"
	KindTicketReopened      NotificationKind = "ticket_reopened"
	KindTicketStatusChanged NotificationKind = "ticket_status_changed"
	KindTicketReassigned    NotificationKind = "ticket_reassigned"
	KindMention             NotificationKind = "mention"
	KindDueDateReminder     NotificationKind = "due_date_reminder"
	KindSLAAlert            NotificationKind = "sla_alert"
)

// NotificationKinds lists every member of the closed set.
var NotificationKinds = []NotificationKind{
	KindTicketAssigned,
	KindTicketUpdated,
	KindTicketCommented,
	KindTicketReopened,
	KindTicketStatusChanged,
	KindTicketReassigned,
	KindMention,
	KindDueDateReminder,
	KindSLAAlert,
}

// Notification is an in-app message created by the notification engine.
// Only the read flag and timestamp mutate after creation.
type Notification struct {
	ID      string
	UserID  string
	Kind    NotificationKind
	Title   string
	Message string
	ItemID  *string
	ActorID *string
	IsRead  bool
	ReadAt  *time.Time
	CreatedAt time.Time
}

// DigestFrequency controls how often a user receives the standup digest.
type DigestFrequency string

const (
	DigestNone   DigestFrequency = "none"
	DigestDaily  DigestFrequency = "daily"
	DigestWeekly DigestFrequency = "weekly"
)

// NotificationPreference holds one user's delivery settings: an email and
// an in-app flag per notification kind, an optional quiet-hour window, and
// the digest cadence. A record is created lazily with every flag true on
// first access and never deleted while the user exists.
type NotificationPreference struct {
	UserID string

	EmailTicketAssigned      bool
	EmailTicketUpdated       bool
	EmailTicketCommented     bool
	EmailTicketReopened      bool
	EmailTicketStatusChanged bool
	EmailTicketReassigned    bool
	EmailMention             bool
	EmailDueDateReminder     bool
	EmailSLAAlert            bool

	AppTicketAssigned      bool
	AppTicketUpdated       bool
	AppTicketCommented     bool
	AppTicketReopened      bool
	AppTicketStatusChanged bool
	AppTicketReassigned    bool
	AppMention             bool
	AppDueDateReminder     bool
	AppSLAAlert            bool

	DigestFrequency DigestFrequency

	// Quiet hours suppress email inside [Start, End) on the UTC hour of
	// day. A window with Start >= End is treated as always inactive.
	QuietHoursStart *int
	QuietHoursEnd   *int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultPreference returns the lazily-created record: every channel flag
// on, daily digest, no quiet hours.
func DefaultPreference(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID: userID,

		EmailTicketAssigned:      true,
		EmailTicketUpdated:       true,
		EmailTicketCommented:     true,
		EmailTicketReopened:      true,
		EmailTicketStatusChanged: true,
		EmailTicketReassigned:    true,
		EmailMention:             true,
		EmailDueDateReminder:     true,
		EmailSLAAlert:            true,

		AppTicketAssigned:      true,
		AppTicketUpdated:       true,
		AppTicketCommented:     true,
		AppTicketReopened:      true,
		AppTicketStatusChanged: true,
		AppTicketReassigned:    true,
		AppMention:             true,
		AppDueDateReminder:     true,
		AppSLAAlert:            true,

		DigestFrequency: DigestDaily,
	}
}

// QuietHoursActive reports whether the given hour of day falls inside the
// quiet window. Windows missing either bound, and degenerate windows where
// Start >= End, are never active.
func (p *NotificationPreference) QuietHoursActive(hour int) bool {
	if p.QuietHoursStart == nil || p.QuietHoursEnd == nil {
		return false
	}
	start, end := *p.QuietHoursStart, *p.QuietHoursEnd
	if start >= end {
		return false
	}
	return hour >= start && hour < end
}
