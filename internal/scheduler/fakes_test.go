package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/repository"
)

// fakeItems serves canned rows for the sweep queries and ignores writes.
type fakeItems struct {
	dueSoon []domain.WorkItem

	touched map[string][]domain.WorkItem
	updated map[string][]domain.WorkItem
	stale   map[string][]domain.WorkItem
}

func (f *fakeItems) Create(context.Context, *domain.WorkItem) error { return nil }
func (f *fakeItems) Update(context.Context, *domain.WorkItem) error { return nil }
func (f *fakeItems) GetByID(context.Context, string) (*domain.WorkItem, error) {
	return nil, nil
}
func (f *fakeItems) ListWithFilter(context.Context, repository.WorkItemFilter) ([]domain.WorkItem, error) {
	return nil, nil
}
func (f *fakeItems) AssignIfChanged(context.Context, string, *string) (*domain.WorkItem, bool, error) {
	return nil, false, nil
}

func (f *fakeItems) ListDueWithin(context.Context, time.Time) ([]domain.WorkItem, error) {
	return f.dueSoon, nil
}

func (f *fakeItems) ListTouchedSince(_ context.Context, userID string, _ time.Time) ([]domain.WorkItem, error) {
	return f.touched[userID], nil
}

func (f *fakeItems) ListUpdatedSince(_ context.Context, userID string, _ time.Time) ([]domain.WorkItem, error) {
	return f.updated[userID], nil
}

func (f *fakeItems) ListStaleAssigned(_ context.Context, userID string, _ time.Time) ([]domain.WorkItem, error) {
	return f.stale[userID], nil
}

// fakeUsers answers List with a fixed population filtered by role.
type fakeUsers struct {
	users []domain.User
}

func (f *fakeUsers) Create(context.Context, *domain.User) error { return nil }
func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			return &f.users[i], nil
		}
	}
	return nil, errNotFound{}
}
func (f *fakeUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, errNotFound{}
}

func (f *fakeUsers) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUsers) CountExisting(_ context.Context, ids []string) (int, error) {
	return len(ids), nil
}

type errNotFound struct{}

func (errNotFound) Error() string { return "no rows in result set" }

// captureDispatcher records published events.
type captureDispatcher struct {
	mu        sync.Mutex
	published []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.published = append(d.published, event)
	return nil
}

func (d *captureDispatcher) Subscribe(domain.NotificationKind, events.Handler) {}

func (d *captureDispatcher) events() []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]events.Event{}, d.published...)
}

// deniedLock never grants, standing in for another instance holding the key.
type deniedLock struct{}

func (deniedLock) Acquire(context.Context, string) (bool, error) { return false, nil }
func (deniedLock) Release(context.Context, string) error         { return nil }
