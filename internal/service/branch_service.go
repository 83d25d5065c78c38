package service

import (
	"context"
	"strings"

	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/policy"
	"github.com/spec-kit/workdesk/internal/repository"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

// BranchService administers the organizational units that scope users and
// work items.
type BranchService struct {
	branches repository.BranchRepository
}

// NewBranchService constructs the service.
func NewBranchService(branches repository.BranchRepository) *BranchService {
	return &BranchService{branches: branches}
}

// Create adds a branch. Branch names are unique; a duplicate is a conflict,
// not an error swallowed into the existing row.
func (s *BranchService) Create(ctx context.Context, actor *domain.User, name string) (*domain.Branch, error) {
	if err := policy.Allow(actor.Role, policy.ActionBranchAdmin, policy.Scope{}); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("branch name is required", nil)
	}

	branch := &domain.Branch{Name: name}
	created, err := s.branches.Create(ctx, branch)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !created {
		return nil, apperrors.NewConflict("a branch with that name already exists",
			map[string]any{"name": name})
	}
	return branch, nil
}

// List returns all branches. Every authenticated user may look up the
// branch catalog.
func (s *BranchService) List(ctx context.Context) ([]domain.Branch, error) {
	branches, err := s.branches.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return branches, nil
}
