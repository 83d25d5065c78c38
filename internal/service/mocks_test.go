package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/repository"
)

type mockItemRepo struct{ mock.Mock }

func (m *mockItemRepo) Create(ctx context.Context, item *domain.WorkItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockItemRepo) Update(ctx context.Context, item *domain.WorkItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockItemRepo) GetByID(ctx context.Context, id string) (*domain.WorkItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*domain.WorkItem)
	return item, args.Error(1)
}

func (m *mockItemRepo) ListWithFilter(ctx context.Context, filter repository.WorkItemFilter) ([]domain.WorkItem, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]domain.WorkItem)
	return items, args.Error(1)
}

func (m *mockItemRepo) AssignIfChanged(ctx context.Context, itemID string, assigneeID *string) (*domain.WorkItem, bool, error) {
	args := m.Called(ctx, itemID, assigneeID)
	item, _ := args.Get(0).(*domain.WorkItem)
	return item, args.Bool(1), args.Error(2)
}

func (m *mockItemRepo) ListDueWithin(ctx context.Context, cutoff time.Time) ([]domain.WorkItem, error) {
	args := m.Called(ctx, cutoff)
	items, _ := args.Get(0).([]domain.WorkItem)
	return items, args.Error(1)
}

func (m *mockItemRepo) ListTouchedSince(ctx context.Context, userID string, since time.Time) ([]domain.WorkItem, error) {
	args := m.Called(ctx, userID, since)
	items, _ := args.Get(0).([]domain.WorkItem)
	return items, args.Error(1)
}

func (m *mockItemRepo) ListUpdatedSince(ctx context.Context, userID string, since time.Time) ([]domain.WorkItem, error) {
	args := m.Called(ctx, userID, since)
	items, _ := args.Get(0).([]domain.WorkItem)
	return items, args.Error(1)
}

func (m *mockItemRepo) ListStaleAssigned(ctx context.Context, userID string, before time.Time) ([]domain.WorkItem, error) {
	args := m.Called(ctx, userID, before)
	items, _ := args.Get(0).([]domain.WorkItem)
	return items, args.Error(1)
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]domain.User, error) {
	args := m.Called(ctx, filter)
	users, _ := args.Get(0).([]domain.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) CountExisting(ctx context.Context, ids []string) (int, error) {
	args := m.Called(ctx, ids)
	return args.Int(0), args.Error(1)
}

type mockCommentRepo struct{ mock.Mock }

func (m *mockCommentRepo) Create(ctx context.Context, comment *domain.ItemComment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *mockCommentRepo) ListByItem(ctx context.Context, itemID string) ([]domain.ItemComment, error) {
	args := m.Called(ctx, itemID)
	comments, _ := args.Get(0).([]domain.ItemComment)
	return comments, args.Error(1)
}

type mockRosterRepo struct{ mock.Mock }

func (m *mockRosterRepo) GetByWeekStart(ctx context.Context, weekStart time.Time) (*domain.RosterEntry, error) {
	args := m.Called(ctx, weekStart)
	entry, _ := args.Get(0).(*domain.RosterEntry)
	return entry, args.Error(1)
}

func (m *mockRosterRepo) List(ctx context.Context) ([]domain.RosterEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]domain.RosterEntry)
	return entries, args.Error(1)
}

func (m *mockRosterRepo) ReplaceAll(ctx context.Context, entries []domain.RosterEntry) error {
	return m.Called(ctx, entries).Error(0)
}

type mockBranchRepo struct{ mock.Mock }

func (m *mockBranchRepo) Create(ctx context.Context, branch *domain.Branch) (bool, error) {
	args := m.Called(ctx, branch)
	return args.Bool(0), args.Error(1)
}

func (m *mockBranchRepo) GetByID(ctx context.Context, id string) (*domain.Branch, error) {
	args := m.Called(ctx, id)
	branch, _ := args.Get(0).(*domain.Branch)
	return branch, args.Error(1)
}

func (m *mockBranchRepo) List(ctx context.Context) ([]domain.Branch, error) {
	args := m.Called(ctx)
	branches, _ := args.Get(0).([]domain.Branch)
	return branches, args.Error(1)
}

type mockNotificationRepo struct{ mock.Mock }

func (m *mockNotificationRepo) Create(ctx context.Context, notification *domain.Notification) error {
	return m.Called(ctx, notification).Error(0)
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit, offset)
	notifications, _ := args.Get(0).([]domain.Notification)
	return notifications, args.Error(1)
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string, readAt time.Time) (bool, error) {
	args := m.Called(ctx, id, userID, readAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockNotificationRepo) MarkAllRead(ctx context.Context, userID string, readAt time.Time) (int64, error) {
	args := m.Called(ctx, userID, readAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

type mockPreferenceRepo struct{ mock.Mock }

func (m *mockPreferenceRepo) GetByUser(ctx context.Context, userID string) (*domain.NotificationPreference, error) {
	args := m.Called(ctx, userID)
	pref, _ := args.Get(0).(*domain.NotificationPreference)
	return pref, args.Error(1)
}

func (m *mockPreferenceRepo) CreateDefault(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *mockPreferenceRepo) Update(ctx context.Context, pref *domain.NotificationPreference) error {
	return m.Called(ctx, pref).Error(0)
}

type mockTimeEntryRepo struct{ mock.Mock }

func (m *mockTimeEntryRepo) Create(ctx context.Context, entry *domain.TimeEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockTimeEntryRepo) StartTimer(ctx context.Context, entry *domain.TimeEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *mockTimeEntryRepo) StopTimer(ctx context.Context, entryID, userID string, stoppedAt time.Time, hours float64, description *string) (*domain.TimeEntry, error) {
	args := m.Called(ctx, entryID, userID, stoppedAt, hours, description)
	entry, _ := args.Get(0).(*domain.TimeEntry)
	return entry, args.Error(1)
}

func (m *mockTimeEntryRepo) GetRunningByUser(ctx context.Context, userID string) (*domain.TimeEntry, error) {
	args := m.Called(ctx, userID)
	entry, _ := args.Get(0).(*domain.TimeEntry)
	return entry, args.Error(1)
}

func (m *mockTimeEntryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.TimeEntry, error) {
	args := m.Called(ctx, userID, limit, offset)
	entries, _ := args.Get(0).([]domain.TimeEntry)
	return entries, args.Error(1)
}

func errNoRows() error { return pgx.ErrNoRows }

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(domain.NotificationKind, events.Handler) {}

// recordingEmail captures sent emails.
type recordingEmail struct {
	sent []sentEmail
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
}

func (e *recordingEmail) Send(_ context.Context, to, subject, body string) bool {
	e.sent = append(e.sent, sentEmail{To: to, Subject: subject, Body: body})
	return true
}

// recordingChat captures posted chat messages.
type recordingChat struct {
	posts []string
}

func (c *recordingChat) Post(_ context.Context, text string) bool {
	c.posts = append(c.posts, text)
	return true
}
