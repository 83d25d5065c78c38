package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/repository"
	"github.com/spec-kit/workdesk/internal/service"
)

// DigestTask emails each active user a standup summary of their assigned
// items once a day at a fixed UTC hour. Users with nothing to report are
// skipped; digest cadence comes from each user's preferences.
type DigestTask struct {
	users    repository.UserRepository
	items    repository.WorkItemRepository
	prefs    repository.PreferenceRepository
	notifier *service.NotifierService
	hourUTC  int
	logger   *zap.Logger
}

// NewDigestTask constructs the digest.
func NewDigestTask(users repository.UserRepository, items repository.WorkItemRepository, prefs repository.PreferenceRepository, notifier *service.NotifierService, hourUTC int, logger *zap.Logger) *DigestTask {
	return &DigestTask{
		users:    users,
		items:    items,
		prefs:    prefs,
		notifier: notifier,
		hourUTC:  hourUTC,
		logger:   logger,
	}
}

func (t *DigestTask) Name() string { return "standup_digest" }

func (t *DigestTask) Due(now time.Time) bool {
	return now.Hour() == t.hourUTC && now.Minute() == 0
}

func (t *DigestTask) Run(ctx context.Context, now time.Time) error {
	active := true
	users, err := t.users.List(ctx, repository.UserFilter{Active: &active})
	if err != nil {
		return err
	}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sent := 0
	for i := range users {
		user := &users[i]
		if !t.wantsDigest(ctx, user.ID, now) {
			continue
		}
		body, empty, err := t.compose(ctx, user.ID, now, midnight)
		if err != nil {
			t.logger.Error("digest build failed",
				zap.String("user_id", user.ID), zap.Error(err))
			continue
		}
		if empty {
			continue
		}
		t.notifier.Announce(ctx, []string{user.ID},
			fmt.Sprintf("Standup digest for %s", now.Format("2006-01-02")), body)
		sent++
	}
	t.logger.Info("standup digest finished",
		zap.Int("users", len(users)), zap.Int("sent", sent))
	return nil
}

// wantsDigest consults the user's cadence. Missing preferences fall back to
// the default cadence; weekly users hear from us on Mondays only.
func (t *DigestTask) wantsDigest(ctx context.Context, userID string, now time.Time) bool {
	frequency := domain.DefaultPreference(userID).DigestFrequency
	if pref, err := t.prefs.GetByUser(ctx, userID); err == nil {
		frequency = pref.DigestFrequency
	}
	switch frequency {
	case domain.DigestNone:
		return false
	case domain.DigestWeekly:
		return now.Weekday() == time.Monday
	default:
		return true
	}
}

func (t *DigestTask) compose(ctx context.Context, userID string, now, midnight time.Time) (string, bool, error) {
	touched, err := t.items.ListTouchedSince(ctx, userID, now.Add(-24*time.Hour))
	if err != nil {
		return "", false, err
	}
	today, err := t.items.ListUpdatedSince(ctx, userID, midnight)
	if err != nil {
		return "", false, err
	}
	stale, err := t.items.ListStaleAssigned(ctx, userID, now.Add(-48*time.Hour))
	if err != nil {
		return "", false, err
	}
	if len(touched) == 0 && len(today) == 0 && len(stale) == 0 {
		return "", true, nil
	}

	var b strings.Builder
	writeSection(&b, "Moved in the last 24 hours", touched)
	writeSection(&b, "Activity since midnight UTC", today)
	writeSection(&b, "Stalled for over 48 hours", stale)
	return b.String(), false, nil
}

func writeSection(b *strings.Builder, heading string, items []domain.WorkItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "%s:\n", heading)
	for i := range items {
		fmt.Fprintf(b, "  - [%s] %s (%s)\n", items[i].Status, items[i].Title, items[i].Priority)
	}
	b.WriteString("\n")
}
