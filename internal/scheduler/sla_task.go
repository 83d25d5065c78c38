package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/events"
	"github.com/spec-kit/workdesk/internal/repository"
)

// SLATask sweeps for work items approaching or past their deadline and
// raises sla_alert events. Runs hourly on the hour. Critical items escalate
// to every active manager in addition to the assignee.
type SLATask struct {
	items      repository.WorkItemRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	window     time.Duration
	logger     *zap.Logger
}

// NewSLATask constructs the sweep with the look-ahead window.
func NewSLATask(items repository.WorkItemRepository, users repository.UserRepository, dispatcher events.Dispatcher, windowHours int, logger *zap.Logger) *SLATask {
	if windowHours <= 0 {
		windowHours = 4
	}
	return &SLATask{
		items:      items,
		users:      users,
		dispatcher: dispatcher,
		window:     time.Duration(windowHours) * time.Hour,
		logger:     logger,
	}
}

func (t *SLATask) Name() string { return "sla_sweep" }

func (t *SLATask) Due(now time.Time) bool { return now.Minute() == 0 }

func (t *SLATask) Run(ctx context.Context, now time.Time) error {
	items, err := t.items.ListDueWithin(ctx, now.Add(t.window))
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}

	var managerIDs []string
	for i := range items {
		if items[i].Priority != domain.ItemPriorityCritical {
			continue
		}
		managerIDs, err = t.activeManagerIDs(ctx)
		if err != nil {
			return err
		}
		break
	}

	for i := range items {
		item := &items[i]
		recipients := slaRecipients(item, managerIDs)
		if len(recipients) == 0 {
			continue
		}
		remaining := item.DueAt.Sub(now).Hours()
		_ = t.dispatcher.Publish(ctx, events.Event{
			ID:         uuid.NewString(),
			Kind:       domain.KindSLAAlert,
			ItemID:     &item.ID,
			Recipients: recipients,
			Payload: events.Payload{
				ItemTitle:      item.Title,
				ItemType:       item.Type,
				Priority:       item.Priority,
				DueAt:          item.DueAt,
				HoursRemaining: remaining,
				Overdue:        remaining < 0,
			},
			Timestamp: now,
		})
	}
	t.logger.Info("sla sweep finished", zap.Int("items", len(items)))
	return nil
}

func (t *SLATask) activeManagerIDs(ctx context.Context) ([]string, error) {
	role := domain.RoleManager
	active := true
	managers, err := t.users.List(ctx, repository.UserFilter{Role: &role, Active: &active})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(managers))
	for _, m := range managers {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func slaRecipients(item *domain.WorkItem, managerIDs []string) []string {
	var recipients []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}
	if item.AssigneeID != nil {
		add(*item.AssigneeID)
	}
	if item.Priority == domain.ItemPriorityCritical {
		for _, id := range managerIDs {
			add(id)
		}
	}
	return recipients
}
