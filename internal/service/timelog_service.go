package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/policy"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

// TimelogService manages timers and logged hours. At most one timer runs
// per user; the start path is a single conditional insert so concurrent
// starts cannot both win.
type TimelogService struct {
	entries repository.TimeEntryRepository
	items   repository.WorkItemRepository
	now     func() time.Time
}

// NewTimelogService constructs the service.
func NewTimelogService(entries repository.TimeEntryRepository, items repository.WorkItemRepository, now func() time.Time) *TimelogService {
	if now == nil {
		now = time.Now
	}
	return &TimelogService{entries: entries, items: items, now: now}
}

// StartTimer begins a running timer on the item for the actor. Fails with a
// conflict when the actor already has a timer running anywhere.
func (s *TimelogService) StartTimer(ctx context.Context, actor *domain.User, itemID, description string) (*domain.TimeEntry, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.allowTimeLog(actor, item); err != nil {
		return nil, err
	}

	startedAt := s.now().UTC()
	entry := &domain.TimeEntry{
		ItemID:      item.ID,
		UserID:      actor.ID,
		Description: strings.TrimSpace(description),
		StartedAt:   &startedAt,
	}
	started, err := s.entries.StartTimer(ctx, entry)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !started {
		return nil, apperrors.NewConflict("a timer is already running",
			map[string]any{"user_id": actor.ID})
	}
	return entry, nil
}

// StopTimer finalizes the actor's running timer, computing elapsed hours
// from the wall clock.
func (s *TimelogService) StopTimer(ctx context.Context, actor *domain.User, entryID string, description *string) (*domain.TimeEntry, error) {
	running, err := s.entries.GetRunningByUser(ctx, actor.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("running timer", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if running.ID != entryID {
		return nil, apperrors.NewNotFound("running timer", map[string]any{"entry_id": entryID})
	}

	stoppedAt := s.now().UTC()
	hours := stoppedAt.Sub(*running.StartedAt).Hours()
	if hours < 0 {
		hours = 0
	}
	entry, err := s.entries.StopTimer(ctx, entryID, actor.ID, stoppedAt, hours, description)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Lost a race with another stop of the same timer.
			return nil, apperrors.NewNotFound("running timer", map[string]any{"entry_id": entryID})
		}
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// ActiveTimer returns the actor's running timer, or nil when none runs.
func (s *TimelogService) ActiveTimer(ctx context.Context, actor *domain.User) (*domain.TimeEntry, error) {
	entry, err := s.entries.GetRunningByUser(ctx, actor.ID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// LogTime records already-worked hours against an item without a timer.
func (s *TimelogService) LogTime(ctx context.Context, actor *domain.User, itemID string, hours float64, description string, loggedAt time.Time) (*domain.TimeEntry, error) {
	if hours <= 0 {
		return nil, apperrors.NewValidationError("hours must be positive", map[string]any{"hours": hours})
	}
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.allowTimeLog(actor, item); err != nil {
		return nil, err
	}
	if loggedAt.IsZero() {
		loggedAt = s.now().UTC()
	}

	entry := &domain.TimeEntry{
		ItemID:      item.ID,
		UserID:      actor.ID,
		Hours:       hours,
		Description: strings.TrimSpace(description),
		LoggedAt:    loggedAt,
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entry, nil
}

// ListMine returns the actor's entries, newest first.
func (s *TimelogService) ListMine(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.TimeEntry, error) {
	entries, err := s.entries.ListByUser(ctx, actor.ID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TimelogService) allowTimeLog(actor *domain.User, item *domain.WorkItem) error {
	scope := policy.Scope{
		ActorBranch: actor.BranchID,
		ItemBranch:  item.BranchID,
	}
	if item.AssigneeID != nil && *item.AssigneeID == actor.ID {
		scope.ActorIsAssignee = true
	}
	return policy.Allow(actor.Role, policy.ActionTimeLog, scope)
}
