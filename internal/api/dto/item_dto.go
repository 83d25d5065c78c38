package dto

import (
	"time"

	"github.com/spec-kit/workdesk/internal/domain"
)

// CreateItemRequest payload.
type CreateItemRequest struct {
	Type        domain.ItemType     `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    domain.ItemPriority `json:"priority"`
	BranchID    *string             `json:"branch_id"`
	AssigneeID  *string             `json:"assignee_id"`
	DueAt       *time.Time          `json:"due_at"`
}

// ApplyItemRequest is a partial update; absent fields are untouched.
type ApplyItemRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *domain.ItemStatus   `json:"status"`
	Priority    *domain.ItemPriority `json:"priority"`
	DueAt       *time.Time           `json:"due_at"`
	ClearDueAt  bool                 `json:"clear_due_at"`
}

// AssignItemRequest payload. A nil assignee unassigns.
type AssignItemRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body     string   `json:"body"`
	Mentions []string `json:"mentions"`
}

// ItemResponse mirrors a work item on the wire.
type ItemResponse struct {
	ID          string              `json:"id"`
	Type        domain.ItemType     `json:"type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.ItemStatus   `json:"status"`
	Priority    domain.ItemPriority `json:"priority"`
	ReporterID  string              `json:"reporter_id"`
	AssigneeID  *string             `json:"assignee_id"`
	BranchID    *string             `json:"branch_id"`
	DueAt       *time.Time          `json:"due_at"`
	CompletedAt *time.Time          `json:"completed_at"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// CommentResponse mirrors an item comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	ItemID    string    `json:"item_id"`
	UserID    string    `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
