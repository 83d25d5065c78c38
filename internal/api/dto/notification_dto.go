package dto

import (
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

// NotificationResponse mirrors an in-app notification.
type NotificationResponse struct {
	ID        string                  `json:"id"`
	Kind      domain.NotificationKind `json:"kind"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	ItemID    *string                 `json:"item_id"`
	ActorID   *string                 `json:"actor_id"`
	IsRead    bool                    `json:"is_read"`
	ReadAt    *time.Time              `json:"read_at"`
	CreatedAt time.Time               `json:"created_at"`
}

// PreferencePayload is the full preference record on the wire; PUT replaces
// it wholesale.
type PreferencePayload struct {
	EmailTicketAssigned      bool `json:"email_ticket_assigned"`
	EmailTicketUpdated       bool `json:"email_ticket_updated"`
	EmailTicketCommented     bool `json:"email_ticket_commented"`
	EmailTicketReopened      bool `json:"email_ticket_reopened"`
	EmailTicketStatusChanged bool `json:"email_ticket_status_changed"`
	EmailTicketReassigned    bool `json:"email_ticket_reassigned"`
	EmailMention             bool `json:"email_mention"`
	EmailDueDateReminder     bool `json:"email_due_date_reminder"`
	EmailSLAAlert            bool `json:"email_sla_alert"`

	AppTicketAssigned      bool `json:"app_ticket_assigned"`
	AppTicketUpdated       bool `json:"app_ticket_updated"`
	AppTicketCommented     bool `json:"app_ticket_commented"`
	AppTicketReopened      bool `json:"app_ticket_reopened"`
	AppTicketStatusChanged bool `json:"app_ticket_status_changed"`
	AppTicketReassigned    bool `json:"app_ticket_reassigned"`
	AppMention             bool `json:"app_mention"`
	AppDueDateReminder     bool `json:"app_due_date_reminder"`
	AppSLAAlert            bool `json:"app_sla_alert"`

	DigestFrequency domain.DigestFrequency `json:"digest_frequency"`
	QuietHoursStart *int                   `json:"quiet_hours_start"`
	QuietHoursEnd   *int                   `json:"quiet_hours_end"`
}

// ToDomain maps the payload onto a preference record.
func (p PreferencePayload) ToDomain() *domain.NotificationPreference {
	return &domain.NotificationPreference{
		EmailTicketAssigned:      p.EmailTicketAssigned,
		EmailTicketUpdated:       p.EmailTicketUpdated,
		EmailTicketCommented:     p.EmailTicketCommented,
		EmailTicketReopened:      p.EmailTicketReopened,
		EmailTicketStatusChanged: p.EmailTicketStatusChanged,
		EmailTicketReassigned:    p.EmailTicketReassigned,
		EmailMention:             p.EmailMention,
		EmailDueDateReminder:     p.EmailDueDateReminder,
		EmailSLAAlert:            p.EmailSLAAlert,

		AppTicketAssigned:      p.AppTicketAssigned,
		AppTicketUpdated:       p.AppTicketUpdated,
		AppTicketCommented:     p.AppTicketCommented,
		AppTicketReopened:      p.AppTicketReopened,
		AppTicketStatusChanged: p.AppTicketStatusChanged,
		AppTicketReassigned:    p.AppTicketReassigned,
		AppMention:             p.AppMention,
		AppDueDateReminder:     p.AppDueDateReminder,
		AppSLAAlert:            p.AppSLAAlert,

		DigestFrequency: p.DigestFrequency,
		QuietHoursStart: p.QuietHoursStart,
		QuietHoursEnd:   p.QuietHoursEnd,
	}
}

// PreferenceFromDomain maps a preference record onto the wire payload.
func PreferenceFromDomain(pref *domain.NotificationPreference) PreferencePayload {
	return PreferencePayload{
		EmailTicketAssigned:      pref.EmailTicketAssigned,
		EmailTicketUpdated:       pref.EmailTicketUpdated,
		EmailTicketCommented:     pref.EmailTicketCommented,
		EmailTicketReopened:      pref.EmailTicketReopened,
		EmailTicketStatusChanged: pref.EmailTicketStatusChanged,
		EmailTicketReassigned:    pref.EmailTicketReassigned,
		EmailMention:             pref.EmailMention,
		EmailDueDateReminder:     pref.EmailDueDateReminder,
		EmailSLAAlert:            pref.EmailSLAAlert,

		AppTicketAssigned:      pref.AppTicketAssigned,
		AppTicketUpdated:       pref.AppTicketUpdated,
		AppTicketCommented:     pref.AppTicketCommented,
		AppTicketReopened:      pref.AppTicketReopened,
		AppTicketStatusChanged: pref.AppTicketStatusChanged,
		AppTicketReassigned:    pref.AppTicketReassigned,
		AppMention:             pref.AppMention,
		AppDueDateReminder:     pref.AppDueDateReminder,
		AppSLAAlert:            pref.AppSLAAlert,

		DigestFrequency: pref.DigestFrequency,
		QuietHoursStart: pref.QuietHoursStart,
		QuietHoursEnd:   pref.QuietHoursEnd,
	}
}
