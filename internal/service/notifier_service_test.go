package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
)

func newNotifier(notifications *mockNotificationRepo, prefs *mockPreferenceRepo, users *mockUserRepo, email *recordingEmail, chat *recordingChat) *NotifierService {
	return NewNotifierService(NotifierDependencies{
		NotificationRepo: notifications,
		PreferenceRepo:   prefs,
		UserRepo:         users,
		Email:            email,
		Chat:             chat,
		Logger:           zap.NewNop(),
	})
}

func slaEvent(recipient string, at time.Time) events.Event {
	itemID := "item-1"
	return events.Event{
		ID:         "evt-1",
		Kind:       domain.KindSLAAlert,
		ItemID:     &itemID,
		Recipients: []string{recipient},
		Payload:    events.Payload{ItemTitle: "Restore backups", HoursRemaining: 2.5},
		Timestamp:  at,
	}
}

func TestDispatchAppOnlyPreferenceSkipsEmail(t *testing.T) {
	notifications := new(mockNotificationRepo)
	prefs := new(mockPreferenceRepo)
	users := new(mockUserRepo)
	email := &recordingEmail{}
	svc := newNotifier(notifications, prefs, users, email, &recordingChat{})

	pref := domain.DefaultPreference("u1")
	pref.EmailSLAAlert = false
	prefs.On("GetByUser", mock.Anything, "u1").Return(pref, nil).Once()
	notifications.On("Create", mock.Anything, mock.MatchedBy(func(n *domain.Notification) bool {
		return n.UserID == "u1" && n.Kind == domain.KindSLAAlert
	})).Return(nil).Once()

	err := svc.Dispatch(context.Background(), slaEvent("u1", testClock))

	require.NoError(t, err)
	assert.Empty(t, email.sent)
	notifications.AssertExpectations(t)
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDispatchQuietHoursSuppressEmailOnly(t *testing.T) {
	notifications := new(mockNotificationRepo)
	prefs := new(mockPreferenceRepo)
	email := &recordingEmail{}
	svc := newNotifier(notifications, prefs, new(mockUserRepo), email, &recordingChat{})

	pref := domain.DefaultPreference("u1")
	start, end := 9, 17
	pref.QuietHoursStart, pref.QuietHoursEnd = &start, &end
	prefs.On("GetByUser", mock.Anything, "u1").Return(pref, nil).Once()
	notifications.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	// 15:30 UTC falls inside [9, 17).
	err := svc.Dispatch(context.Background(), slaEvent("u1", testClock))

	require.NoError(t, err)
	assert.Empty(t, email.sent)
	notifications.AssertExpectations(t)
}

func TestDispatchDegenerateQuietWindowNeverSuppresses(t *testing.T) {
	notifications := new(mockNotificationRepo)
	prefs := new(mockPreferenceRepo)
	users := new(mockUserRepo)
	email := &recordingEmail{}
	svc := newNotifier(notifications, prefs, users, email, &recordingChat{})

	pref := domain.DefaultPreference("u1")
	start, end := 22, 6
	pref.QuietHoursStart, pref.QuietHoursEnd = &start, &end
	prefs.On("GetByUser", mock.Anything, "u1").Return(pref, nil).Once()
	notifications.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Email: "u1@example.com"}, nil).Once()

	// 23:00 would fall inside a wrapping window, but start >= end means the
	// window is inert and mail goes out.
	at := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)
	err := svc.Dispatch(context.Background(), slaEvent("u1", at))

	require.NoError(t, err)
	require.Len(t, email.sent, 1)
	assert.Equal(t, "u1@example.com", email.sent[0].To)
}

func TestDispatchSkipsActor(t *testing.T) {
	notifications := new(mockNotificationRepo)
	prefs := new(mockPreferenceRepo)
	svc := newNotifier(notifications, prefs, new(mockUserRepo), &recordingEmail{}, &recordingChat{})

	actor := "u1"
	event := slaEvent("u1", testClock)
	event.ActorID = &actor

	err := svc.Dispatch(context.Background(), event)

	require.NoError(t, err)
	prefs.AssertNotCalled(t, "GetByUser", mock.Anything, mock.Anything)
	notifications.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDispatchCreatesDefaultPreferencesLazily(t *testing.T) {
	notifications := new(mockNotificationRepo)
	prefs := new(mockPreferenceRepo)
	users := new(mockUserRepo)
	email := &recordingEmail{}
	svc := newNotifier(notifications, prefs, users, email, &recordingChat{})

	prefs.On("GetByUser", mock.Anything, "u1").Return(nil, errNoRows()).Once()
	prefs.On("CreateDefault", mock.Anything, "u1").Return(nil).Once()
	prefs.On("GetByUser", mock.Anything, "u1").Return(domain.DefaultPreference("u1"), nil).Once()
	notifications.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
	users.On("GetByID", mock.Anything, "u1").Return(&domain.User{ID: "u1", Email: "u1@example.com"}, nil).Once()

	err := svc.Dispatch(context.Background(), slaEvent("u1", testClock))

	require.NoError(t, err)
	require.Len(t, email.sent, 1)
	prefs.AssertExpectations(t)
}

func TestUpdatePreferencesValidatesBounds(t *testing.T) {
	svc := newNotifier(new(mockNotificationRepo), new(mockPreferenceRepo), new(mockUserRepo), &recordingEmail{}, &recordingChat{})

	bad := 24
	pref := domain.DefaultPreference("u1")
	pref.QuietHoursStart = &bad
	_, err := svc.UpdatePreferences(context.Background(), "u1", pref)
	require.Error(t, err)

	pref = domain.DefaultPreference("u1")
	pref.DigestFrequency = "hourly"
	_, err = svc.UpdatePreferences(context.Background(), "u1", pref)
	require.Error(t, err)
}
