package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/dto"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/service"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

// BranchesHandler manages branch endpoints.
type BranchesHandler struct {
	service *service.BranchService
}

// NewBranchesHandler constructs the handler.
func NewBranchesHandler(branches *service.BranchService) *BranchesHandler {
	return &BranchesHandler{service: branches}
}

// List GET /branches.
func (h *BranchesHandler) List(c *fiber.Ctx) error {
	branches, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	responses := make([]dto.BranchResponse, 0, len(branches))
	for _, branch := range branches {
		responses = append(responses, branchResponse(&branch))
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Create POST /branches.
func (h *BranchesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateBranchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	branch, err := h.service.Create(c.Context(), principal.User, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": branchResponse(branch)})
}

func branchResponse(branch *domain.Branch) dto.BranchResponse {
	return dto.BranchResponse{
		ID:        branch.ID,
		Name:      branch.Name,
		CreatedAt: branch.CreatedAt,
	}
}
