package dto

import "time"

// CreateBranchRequest is the payload for adding a branch.
type CreateBranchRequest struct {
	Name string `json:"name"`
}

// BranchResponse serializes a branch.
type BranchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
