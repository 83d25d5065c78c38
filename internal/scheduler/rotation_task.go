package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/repository"
	"github.com/spec-kit/workdesk/internal/service"
)

// RotationTask announces the week's on-call coverage every Monday at the
// digest hour: an email to all active managers and a post to the team
// chat. It mutates nothing; coverage itself is a pure function of the
// seeded roster and the calendar.
type RotationTask struct {
	roster   *service.RosterService
	users    repository.UserRepository
	notifier *service.NotifierService
	hourUTC  int
	logger   *zap.Logger
}

// NewRotationTask constructs the announcement.
func NewRotationTask(roster *service.RosterService, users repository.UserRepository, notifier *service.NotifierService, hourUTC int, logger *zap.Logger) *RotationTask {
	return &RotationTask{
		roster:   roster,
		users:    users,
		notifier: notifier,
		hourUTC:  hourUTC,
		logger:   logger,
	}
}

func (t *RotationTask) Name() string { return "rotation_announce" }

func (t *RotationTask) Due(now time.Time) bool {
	return now.Weekday() == time.Monday && now.Hour() == t.hourUTC && now.Minute() == 0
}

func (t *RotationTask) Run(ctx context.Context, now time.Time) error {
	oncall, err := t.roster.CurrentOncall(ctx, now)
	if err != nil {
		return err
	}
	weekOf := domain.WeekStart(now).Format("2006-01-02")

	var subject, body string
	if oncall == nil {
		subject = fmt.Sprintf("No on-call coverage for the week of %s", weekOf)
		body = "The on-call roster has no entry for this week. Seed the rotation to restore coverage."
	} else {
		subject = fmt.Sprintf("On-call for the week of %s: %s", weekOf, oncall.Name)
		body = fmt.Sprintf("%s (%s) is on call for the week starting %s.", oncall.Name, oncall.Email, weekOf)
	}

	role := domain.RoleManager
	activeOnly := true
	managers, err := t.users.List(ctx, repository.UserFilter{Role: &role, Active: &activeOnly})
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(managers))
	for _, m := range managers {
		ids = append(ids, m.ID)
	}

	t.notifier.Announce(ctx, ids, subject, body)
	t.notifier.AnnounceChat(ctx, subject)
	t.logger.Info("rotation announced",
		zap.String("week_of", weekOf),
		zap.Bool("covered", oncall != nil),
		zap.Int("managers", len(ids)))
	return nil
}
