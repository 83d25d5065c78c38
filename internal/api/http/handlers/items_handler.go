package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/dto"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/service"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

// ItemsHandler manages work item endpoints.
type ItemsHandler struct {
	service *service.WorkItemService
}

// NewItemsHandler constructs the handler.
func NewItemsHandler(itemService *service.WorkItemService) *ItemsHandler {
	return &ItemsHandler{service: itemService}
}

// Create POST /items.
func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := h.service.Create(c.Context(), principal.User, service.ItemCreateInput{
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		BranchID:    req.BranchID,
		AssigneeID:  req.AssigneeID,
		DueAt:       req.DueAt,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": itemResponse(item)})
}

// List GET /items.
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	items, err := h.service.List(c.Context(), principal.User, parseItemQuery(c))
	if err != nil {
		return err
	}
	responses := make([]dto.ItemResponse, 0, len(items))
	for i := range items {
		responses = append(responses, itemResponse(&items[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Get GET /items/:id.
func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	item, err := h.service.Get(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": itemResponse(item)})
}

// Apply PATCH /items/:id.
func (h *ItemsHandler) Apply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ApplyItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := h.service.Apply(c.Context(), principal.User, c.Params("id"), service.ItemApplyInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueAt:       req.DueAt,
		ClearDueAt:  req.ClearDueAt,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": itemResponse(item)})
}

// Assign PATCH /items/:id/assign.
func (h *ItemsHandler) Assign(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AssignItemRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	item, err := h.service.Assign(c.Context(), principal.User, c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": itemResponse(item)})
}

// AddComment POST /items/:id/comments.
func (h *ItemsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.Comment(c.Context(), principal.User, c.Params("id"), req.Body, req.Mentions)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /items/:id/comments.
func (h *ItemsHandler) ListComments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	comments, err := h.service.ListComments(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

func parseItemQuery(c *fiber.Ctx) service.ItemListFilter {
	filter := service.ItemListFilter{}
	if v := strings.TrimSpace(c.Query("branch_id")); v != "" {
		filter.BranchID = &v
	}
	if v := strings.TrimSpace(c.Query("assignee_id")); v != "" {
		filter.AssigneeID = &v
	}
	if v := strings.TrimSpace(c.Query("reporter_id")); v != "" {
		filter.ReporterID = &v
	}
	if v := strings.TrimSpace(c.Query("type")); v != "" {
		t := domain.ItemType(v)
		filter.Type = &t
	}
	if v := strings.TrimSpace(c.Query("status")); v != "" {
		s := domain.ItemStatus(v)
		filter.Status = &s
	}
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parsePositiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func itemResponse(item *domain.WorkItem) dto.ItemResponse {
	return dto.ItemResponse{
		ID:          item.ID,
		Type:        item.Type,
		Title:       item.Title,
		Description: item.Description,
		Status:      item.Status,
		Priority:    item.Priority,
		ReporterID:  item.ReporterID,
		AssigneeID:  item.AssigneeID,
		BranchID:    item.BranchID,
		DueAt:       item.DueAt,
		CompletedAt: item.CompletedAt,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func commentResponse(comment *domain.ItemComment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		ItemID:    comment.ItemID,
		UserID:    comment.UserID,
		Body:      comment.Body,
		CreatedAt: comment.CreatedAt,
	}
}
