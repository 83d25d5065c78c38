package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workdesk/internal/channel"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

// NotifierService is the fan-out engine: it consumes lifecycle events and
// turns them into in-app notification rows and emails according to each
// recipient's preferences. Delivery is best effort per recipient; one
// failing recipient never blocks the rest.
type NotifierService struct {
	notifications repository.NotificationRepository
	prefs         repository.PreferenceRepository
	users         repository.UserRepository
	email         channel.EmailSender
	chat          channel.ChatPoster
	logger        *zap.Logger
}

// NotifierDependencies bundles collaborators for the notifier.
type NotifierDependencies struct {
	NotificationRepo repository.NotificationRepository
	PreferenceRepo   repository.PreferenceRepository
	UserRepo         repository.UserRepository
	Email            channel.EmailSender
	Chat             channel.ChatPoster
	Logger           *zap.Logger
}

// NewNotifierService constructs the notifier.
func NewNotifierService(deps NotifierDependencies) *NotifierService {
	return &NotifierService{
		notifications: deps.NotificationRepo,
		prefs:         deps.PreferenceRepo,
		users:         deps.UserRepo,
		email:         deps.Email,
		chat:          deps.Chat,
		logger:        deps.Logger,
	}
}

// Register subscribes the notifier to every lifecycle event kind.
func (s *NotifierService) Register(dispatcher events.Dispatcher) {
	for _, kind := range domain.NotificationKinds {
		dispatcher.Subscribe(kind, s.Dispatch)
	}
}

// channelFlags resolves a kind to its two preference gates. The table is
// the single source of truth for the kind-to-flag pairing; adding a kind
// without extending it is a bug caught by the lookup failing closed.
type channelFlags struct {
	app   func(*domain.NotificationPreference) bool
	email func(*domain.NotificationPreference) bool
}

var kindFlags = map[domain.NotificationKind]channelFlags{
	domain.KindTicketAssigned: {
		app:   func(p *domain.NotificationPreference) bool { return p.AppTicketAssigned },
		email: func(p *domain.NotificationPreference) bool { return p.EmailTicketAssigned },
	},
	domain.KindTicketUpdated: {
		app:   func(p *domain.NotificationPreference) bool { return p.AppTicketUpdated },
		email: func(p *domain.NotificationPreference) bool { return p.EmailTicketUpdated },
	},
	domain.KindTicketCommented: {
		app:   func(p *domain.NotificationPreference) bool { return p.AppTicketCommented },
		email: func(p *domain.NotificationPreference) bool { return p.EmailTicketCommented },
	},
	domain.KindTicketReopened: {
		app:   func(p *domain.NotificationPreference) bool { return p.AppTicketReopened },
		email: func(p *domain.NotificationPreference) bool { return p.EmailTicketReopened },
	},
	domain.KindTicketStatusChanged: {
		app:   func(p *domain.NotificationPreference) bool { return p.AppTicketStatusChanged },
		email: func(p *domain.NotificationPreference) bool { return p.EmailTicketStatusChanged },
	},
	domain.KindTicketReassigned: {
		app:   func(p *domain.NotificationPreference) bool { return p.AppTicketReassigned },
		email: func(p *domain.NotificationPreference) bool { return p.EmailTicketReassigned },
	},
	domain.KindMention: {
		app:   func(p *domain.NotificationPreference) bool { return p.AppMention },
		email: func(p *domain.NotificationPreference) bool { return p.EmailMention },
	},
	domain.KindDueDateReminder: {
		app:   func(p *domain.NotificationPreference) bool { return p.AppDueDateReminder },
		email: func(p *domain.NotificationPreference) bool { return p.EmailDueDateReminder },
	},
	domain.KindSLAAlert: {
		app:   func(p *domain.NotificationPreference) bool { return p.AppSLAAlert },
		email: func(p *domain.NotificationPreference) bool { return p.EmailSLAAlert },
	},
}

// Dispatch fans one event out to its recipients. The actor never receives
// their own event even when listed as a recipient.
func (s *NotifierService) Dispatch(ctx context.Context, event events.Event) error {
	flags, ok := kindFlags[event.Kind]
	if !ok {
		s.logger.Warn("unknown notification kind, dropping event",
			zap.String("kind", string(event.Kind)))
		return nil
	}
	title, message := renderTemplate(event.Kind, event.Payload)

	for _, userID := range event.Recipients {
		if event.ActorID != nil && userID == *event.ActorID {
			continue
		}
		if err := s.deliver(ctx, event, userID, flags, title, message); err != nil {
			s.logger.Error("notification delivery failed",
				zap.String("kind", string(event.Kind)),
				zap.String("user_id", userID),
				zap.Error(err))
		}
	}
	return nil
}

func (s *NotifierService) deliver(ctx context.Context, event events.Event, userID string, flags channelFlags, title, message string) error {
	pref, err := s.preferencesFor(ctx, userID)
	if err != nil {
		return err
	}

	if flags.app(pref) {
		notification := &domain.Notification{
			UserID:  userID,
			Kind:    event.Kind,
			Title:   title,
			Message: message,
			ItemID:  event.ItemID,
			ActorID: event.ActorID,
		}
		if err := s.notifications.Create(ctx, notification); err != nil {
			return err
		}
	}

	if flags.email(pref) && !pref.QuietHoursActive(event.Timestamp.UTC().Hour()) {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		// Send failures are already logged by the channel; the in-app row
		// above stands either way.
		s.email.Send(ctx, user.Email, title, message)
	}
	return nil
}

// Preferences returns the user's settings, creating the all-true default
// row on first access.
func (s *NotifierService) Preferences(ctx context.Context, userID string) (*domain.NotificationPreference, error) {
	pref, err := s.preferencesFor(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return pref, nil
}

func (s *NotifierService) preferencesFor(ctx context.Context, userID string) (*domain.NotificationPreference, error) {
	pref, err := s.prefs.GetByUser(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !apperrors.IsNotFound(err) {
		return nil, err
	}
	if err := s.prefs.CreateDefault(ctx, userID); err != nil {
		return nil, err
	}
	return s.prefs.GetByUser(ctx, userID)
}

// UpdatePreferences replaces the user's settings wholesale after validating
// the quiet-hour bounds and digest cadence.
func (s *NotifierService) UpdatePreferences(ctx context.Context, userID string, pref *domain.NotificationPreference) (*domain.NotificationPreference, error) {
	pref.UserID = userID
	for _, bound := range []*int{pref.QuietHoursStart, pref.QuietHoursEnd} {
		if bound != nil && (*bound < 0 || *bound > 23) {
			return nil, apperrors.NewValidationError("quiet hour out of range", map[string]any{"hour": *bound})
		}
	}
	switch pref.DigestFrequency {
	case domain.DigestNone, domain.DigestDaily, domain.DigestWeekly:
	default:
		return nil, apperrors.NewValidationError("unknown digest frequency",
			map[string]any{"digest_frequency": pref.DigestFrequency})
	}

	if _, err := s.preferencesFor(ctx, userID); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.prefs.Update(ctx, pref); err != nil {
		return nil, apperrors.MapError(err)
	}
	return pref, nil
}

// List returns the user's notifications, newest first.
func (s *NotifierService) List(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	notifications, err := s.notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notifications, nil
}

// MarkRead flags one notification as read. Marking an already-read
// notification is a no-op, not an error.
func (s *NotifierService) MarkRead(ctx context.Context, userID, notificationID string, now time.Time) error {
	if _, err := s.notifications.MarkRead(ctx, notificationID, userID, now); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// MarkAllRead flags every unread notification and reports how many changed.
func (s *NotifierService) MarkAllRead(ctx context.Context, userID string, now time.Time) (int64, error) {
	count, err := s.notifications.MarkAllRead(ctx, userID, now)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// UnreadCount returns the user's unread notification count.
func (s *NotifierService) UnreadCount(ctx context.Context, userID string) (int, error) {
	count, err := s.notifications.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	return count, nil
}

// Announce emails the given users directly, bypassing per-kind preferences.
// Operational announcements (digests, rotation) use this path.
func (s *NotifierService) Announce(ctx context.Context, userIDs []string, subject, body string) {
	for _, userID := range userIDs {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			s.logger.Warn("announce recipient lookup failed",
				zap.String("user_id", userID), zap.Error(err))
			continue
		}
		s.email.Send(ctx, user.Email, subject, body)
	}
}

// AnnounceChat posts to the team chat webhook.
func (s *NotifierService) AnnounceChat(ctx context.Context, text string) {
	s.chat.Post(ctx, text)
}

func renderTemplate(kind domain.NotificationKind, p events.Payload) (title, message string) {
	switch kind {
	case domain.KindTicketAssigned:
		return fmt.Sprintf("New assignment: %s", p.ItemTitle),
			fmt.Sprintf("%s assigned %q to %s.", p.ActorName, p.ItemTitle, p.AssigneeName)
	case domain.KindTicketReassigned:
		return fmt.Sprintf("Reassigned: %s", p.ItemTitle),
			fmt.Sprintf("%s reassigned %q to %s.", p.ActorName, p.ItemTitle, p.AssigneeName)
	case domain.KindTicketUpdated:
		return fmt.Sprintf("Updated: %s", p.ItemTitle),
			fmt.Sprintf("%s updated %q.", p.ActorName, p.ItemTitle)
	case domain.KindTicketCommented:
		return fmt.Sprintf("New comment on %s", p.ItemTitle),
			fmt.Sprintf("%s commented: %s", p.ActorName, p.CommentPreview)
	case domain.KindTicketReopened:
		return fmt.Sprintf("Reopened: %s", p.ItemTitle),
			fmt.Sprintf("%s reopened %q.", p.ActorName, p.ItemTitle)
	case domain.KindTicketStatusChanged:
		return fmt.Sprintf("Status change: %s", p.ItemTitle),
			fmt.Sprintf("%s moved %q from %s to %s.", p.ActorName, p.ItemTitle, p.OldStatus, p.NewStatus)
	case domain.KindMention:
		return fmt.Sprintf("You were mentioned on %s", p.ItemTitle),
			fmt.Sprintf("%s mentioned you: %s", p.ActorName, p.CommentPreview)
	case domain.KindDueDateReminder:
		return fmt.Sprintf("Due soon: %s", p.ItemTitle),
			fmt.Sprintf("%q is due in %.1f hours.", p.ItemTitle, p.HoursRemaining)
	case domain.KindSLAAlert:
		if p.Overdue {
			return fmt.Sprintf("SLA alert: %s", p.ItemTitle),
				fmt.Sprintf("%q is overdue by %.1f hours.", p.ItemTitle, -p.HoursRemaining)
		}
		return fmt.Sprintf("SLA alert: %s", p.ItemTitle),
			fmt.Sprintf("%q breaches its deadline in %.1f hours.", p.ItemTitle, p.HoursRemaining)
	}
	return string(kind), p.ItemTitle
}
