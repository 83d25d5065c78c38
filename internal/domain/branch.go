package domain

import "time"

// Branch scopes users and work items to an organizational unit.
type Branch struct {
	ID        string
	Name      string
	CreatedAt time.Time
}
