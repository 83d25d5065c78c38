package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workdesk/internal/domain"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

func TestCreateBranchTrimsAndPersists(t *testing.T) {
	branches := new(mockBranchRepo)
	svc := NewBranchService(branches)

	branches.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Branch) bool {
		return b.Name == "downtown"
	})).Return(true, nil).Once()

	branch, err := svc.Create(context.Background(), manager(), "  downtown  ")

	require.NoError(t, err)
	assert.Equal(t, "downtown", branch.Name)
	branches.AssertExpectations(t)
}

func TestCreateBranchDuplicateNameConflicts(t *testing.T) {
	branches := new(mockBranchRepo)
	svc := NewBranchService(branches)

	branches.On("Create", mock.Anything, mock.Anything).Return(false, nil).Once()

	_, err := svc.Create(context.Background(), manager(), "downtown")

	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestCreateBranchRequiresManager(t *testing.T) {
	branches := new(mockBranchRepo)
	svc := NewBranchService(branches)

	_, err := svc.Create(context.Background(), executor("b1"), "downtown")

	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
	branches.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBranchRejectsBlankName(t *testing.T) {
	svc := NewBranchService(new(mockBranchRepo))

	_, err := svc.Create(context.Background(), manager(), "   ")

	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}
