package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workdesk/internal/domain"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

func TestSeedRoundRobin(t *testing.T) {
	roster := new(mockRosterRepo)
	users := new(mockUserRepo)
	svc := NewRosterService(roster, users)

	users.On("CountExisting", mock.Anything, []string{"a", "b", "c"}).Return(3, nil).Once()
	var written []domain.RosterEntry
	roster.On("ReplaceAll", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		written = args.Get(1).([]domain.RosterEntry)
	}).Return(nil).Once()

	// A Wednesday; the seed anchors on its Monday.
	anchor := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	entries, err := svc.Seed(context.Background(), manager(), []string{"a", "b", "c"}, anchor)

	require.NoError(t, err)
	require.Len(t, entries, 12)
	require.Len(t, written, 12)

	monday := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, written[0].StartsOn)
	assert.Equal(t, "a", written[0].UserID)
	assert.Equal(t, monday.AddDate(0, 0, 14), written[2].StartsOn)
	assert.Equal(t, "c", written[2].UserID)
	// Week 3 wraps back to the first user.
	assert.Equal(t, "a", written[3].UserID)
	assert.Equal(t, monday.AddDate(0, 0, 77), written[11].StartsOn)
}

func TestSeedRejectsEmptyList(t *testing.T) {
	svc := NewRosterService(new(mockRosterRepo), new(mockUserRepo))

	_, err := svc.Seed(context.Background(), manager(), nil, time.Now())

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestSeedRejectsUnknownUsersBeforeMutating(t *testing.T) {
	roster := new(mockRosterRepo)
	users := new(mockUserRepo)
	svc := NewRosterService(roster, users)

	users.On("CountExisting", mock.Anything, []string{"a", "ghost"}).Return(1, nil).Once()

	_, err := svc.Seed(context.Background(), manager(), []string{"a", "ghost"}, time.Now())

	require.Error(t, err)
	roster.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
}

func TestSeedRequiresManager(t *testing.T) {
	svc := NewRosterService(new(mockRosterRepo), new(mockUserRepo))

	_, err := svc.Seed(context.Background(), executor("b1"), []string{"a"}, time.Now())

	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	assert.Equal(t, "roster.seed", domainErr.Details["action"])
}

func TestCurrentOncallAbsentWeekIsNotAnError(t *testing.T) {
	roster := new(mockRosterRepo)
	svc := NewRosterService(roster, new(mockUserRepo))

	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	roster.On("GetByWeekStart", mock.Anything, domain.WeekStart(now)).Return(nil, errNoRows()).Once()

	user, err := svc.CurrentOncall(context.Background(), now)

	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestCurrentOncallResolvesUser(t *testing.T) {
	roster := new(mockRosterRepo)
	users := new(mockUserRepo)
	svc := NewRosterService(roster, users)

	now := time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)
	roster.On("GetByWeekStart", mock.Anything, domain.WeekStart(now)).Return(&domain.RosterEntry{
		StartsOn: domain.WeekStart(now),
		UserID:   "exe-1",
	}, nil).Once()
	users.On("GetByID", mock.Anything, "exe-1").Return(executor("b1"), nil).Once()

	user, err := svc.CurrentOncall(context.Background(), now)

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "exe-1", user.ID)
}
