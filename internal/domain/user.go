package domain

import "time"

// UserRole enumerates the capability tiers of an account.
type UserRole string

const (
	// RoleManager can act on any work item and administer branches and rosters.
	RoleManager UserRole = "manager"
	// RoleExecutor works items within their branch and may log time on assignments.
	RoleExecutor UserRole = "executor"
	// RoleRequester files and reads work items for their own branch only.
	RoleRequester UserRole = "requester"
)

// User is the account model for everyone who touches the system.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	BranchID     *string
	Active       bool
	CreatedAt    time.Time
}

// CanExecute reports whether the user holds the executor capability,
// i.e. may be assigned work items. Managers qualify as well.
func (u *User) CanExecute() bool {
	return u.Role == RoleExecutor || u.Role == RoleManager
}
