// Package policy is the pure access decision function consulted by the
// ticket state machine and the query filters. It holds no state and never
// touches the store; callers pass in the ownership facts it needs.
package policy

import (
	"github.com/spec-kit/workdesk/internal/domain"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

// Action identifies an operation being authorized.
type Action string

const (
	ActionItemCreate  Action = "item.create"
	ActionItemRead    Action = "item.read"
	ActionItemUpdate  Action = "item.update"
	ActionItemAssign  Action = "item.assign"
	ActionItemComment Action = "item.comment"
	ActionTimeLog     Action = "time.log"
	ActionBranchAdmin Action = "branch.admin"
	ActionRosterSeed  Action = "roster.seed"
)

// Scope carries the ownership facts a decision depends on.
type Scope struct {
	ActorBranch     *string
	ItemBranch      *string
	ActorIsAssignee bool
}

// Allow returns nil when the role may perform the action in the given
// scope, or an authorization error naming the action and the role it would
// require. Denials are always explicit errors, never silent filters.
func Allow(role domain.UserRole, action Action, scope Scope) error {
	if role == domain.RoleManager {
		return nil
	}

	switch action {
	case ActionItemAssign, ActionBranchAdmin, ActionRosterSeed:
		return apperrors.NewAuthorizationError(string(action), string(domain.RoleManager))

	case ActionTimeLog:
		if role != domain.RoleExecutor {
			return apperrors.NewAuthorizationError(string(action), string(domain.RoleExecutor))
		}
		if !scope.ActorIsAssignee {
			return apperrors.NewDomainError("FORBIDDEN",
				"time can only be logged on own assignments", 403,
				map[string]any{"action": string(action), "required_role": string(domain.RoleExecutor)})
		}
		return nil

	case ActionItemCreate, ActionItemRead, ActionItemUpdate, ActionItemComment:
		if action == ActionItemUpdate && role == domain.RoleRequester {
			return apperrors.NewAuthorizationError(string(action), string(domain.RoleExecutor))
		}
		if !sameBranch(scope.ActorBranch, scope.ItemBranch) {
			return apperrors.NewDomainError("FORBIDDEN",
				"cross-branch access denied", 403,
				map[string]any{"action": string(action), "required_role": string(domain.RoleManager)})
		}
		return nil
	}

	return apperrors.NewAuthorizationError(string(action), string(domain.RoleManager))
}

// sameBranch reports whether the item is visible from the actor's branch.
// Items without a branch are unscoped and visible to everyone.
func sameBranch(actor, item *string) bool {
	if item == nil {
		return true
	}
	return actor != nil && *actor == *item
}
