package policy

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/workdesk/internal/domain"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

func strPtr(s string) *string { return &s }

func TestManagerAllowsEverything(t *testing.T) {
	actions := []Action{
		ActionItemCreate, ActionItemRead, ActionItemUpdate, ActionItemAssign,
		ActionItemComment, ActionTimeLog, ActionBranchAdmin, ActionRosterSeed,
	}
	for _, action := range actions {
		assert.NoError(t, Allow(domain.RoleManager, action, Scope{}), string(action))
	}
}

func TestExecutorBranchScope(t *testing.T) {
	scope := Scope{ActorBranch: strPtr("b1"), ItemBranch: strPtr("b1")}
	assert.NoError(t, Allow(domain.RoleExecutor, ActionItemRead, scope))
	assert.NoError(t, Allow(domain.RoleExecutor, ActionItemUpdate, scope))

	cross := Scope{ActorBranch: strPtr("b1"), ItemBranch: strPtr("b2")}
	assert.Error(t, Allow(domain.RoleExecutor, ActionItemRead, cross))
	assert.Error(t, Allow(domain.RoleExecutor, ActionItemUpdate, cross))
}

func TestExecutorTimeLogRequiresAssignment(t *testing.T) {
	assert.NoError(t, Allow(domain.RoleExecutor, ActionTimeLog, Scope{ActorIsAssignee: true}))
	assert.Error(t, Allow(domain.RoleExecutor, ActionTimeLog, Scope{ActorIsAssignee: false}))
}

func TestRequesterRestrictions(t *testing.T) {
	own := Scope{ActorBranch: strPtr("b1"), ItemBranch: strPtr("b1")}
	assert.NoError(t, Allow(domain.RoleRequester, ActionItemCreate, own))
	assert.NoError(t, Allow(domain.RoleRequester, ActionItemRead, own))

	assert.Error(t, Allow(domain.RoleRequester, ActionItemUpdate, own))
	assert.Error(t, Allow(domain.RoleRequester, ActionItemAssign, own))
	assert.Error(t, Allow(domain.RoleRequester, ActionBranchAdmin, own))
	assert.Error(t, Allow(domain.RoleRequester, ActionTimeLog, Scope{ActorIsAssignee: true}))
}

func TestDenialNamesActionAndRole(t *testing.T) {
	err := Allow(domain.RoleRequester, ActionItemAssign, Scope{})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "FORBIDDEN", domainErr.Code)
	assert.Equal(t, string(ActionItemAssign), domainErr.Details["action"])
	assert.Equal(t, string(domain.RoleManager), domainErr.Details["required_role"])
}

func TestUnscopedItemsVisibleToAll(t *testing.T) {
	scope := Scope{ActorBranch: strPtr("b1"), ItemBranch: nil}
	assert.NoError(t, Allow(domain.RoleRequester, ActionItemRead, scope))
	assert.NoError(t, Allow(domain.RoleExecutor, ActionItemRead, scope))
}
