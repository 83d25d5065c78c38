package service

import (
	"context"
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/policy"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

// rosterWeeks is how many consecutive weeks a seed writes.
const rosterWeeks = 12

// RosterService manages the on-call rotation schedule.
type RosterService struct {
	roster repository.RosterRepository
	users  repository.UserRepository
}

// NewRosterService constructs the service.
func NewRosterService(roster repository.RosterRepository, users repository.UserRepository) *RosterService {
	return &RosterService{roster: roster, users: users}
}

// Seed destructively rewrites the roster: twelve consecutive weeks starting
// from the anchor's Monday, cycling through the given users round-robin.
// The user list is validated in full before anything is deleted.
func (s *RosterService) Seed(ctx context.Context, actor *domain.User, userIDs []string, anchor time.Time) ([]domain.RosterEntry, error) {
	if err := policy.Allow(actor.Role, policy.ActionRosterSeed, policy.Scope{}); err != nil {
		return nil, err
	}
	if len(userIDs) == 0 {
		return nil, apperrors.NewValidationError("roster requires at least one user", nil)
	}
	unique := dedupe(userIDs)
	count, err := s.users.CountExisting(ctx, unique)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if count != len(unique) {
		return nil, apperrors.NewValidationError("roster references unknown users",
			map[string]any{"expected": len(unique), "found": count})
	}

	start := domain.WeekStart(anchor)
	entries := make([]domain.RosterEntry, 0, rosterWeeks)
	for week := 0; week < rosterWeeks; week++ {
		entries = append(entries, domain.RosterEntry{
			StartsOn: start.AddDate(0, 0, 7*week),
			UserID:   userIDs[week%len(userIDs)],
		})
	}
	if err := s.roster.ReplaceAll(ctx, entries); err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// List returns the full roster ordered by week.
func (s *RosterService) List(ctx context.Context) ([]domain.RosterEntry, error) {
	entries, err := s.roster.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// CurrentOncall resolves who covers the week containing now. An unseeded or
// expired roster yields nil, nil: no one on call is a normal state.
func (s *RosterService) CurrentOncall(ctx context.Context, now time.Time) (*domain.User, error) {
	entry, err := s.roster.GetByWeekStart(ctx, domain.WeekStart(now))
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	user, err := s.users.GetByID(ctx, entry.UserID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
