package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/workdesk/internal/api/dto"
	"github.com/spec-kit/workdesk/internal/auth"
	"github.com/spec-kit/workdesk/internal/domain"
	"github.com/spec-kit/workdesk/internal/service"
	apperrors "github.com/spec-kit/workdesk/pkg/util"
)

// OncallHandler manages roster endpoints.
type OncallHandler struct {
	service *service.RosterService
}

// NewOncallHandler constructs the handler.
func NewOncallHandler(roster *service.RosterService) *OncallHandler {
	return &OncallHandler{service: roster}
}

// Current GET /oncall/current.
func (h *OncallHandler) Current(c *fiber.Ctx) error {
	now := time.Now().UTC()
	user, err := h.service.CurrentOncall(c.Context(), now)
	if err != nil {
		return err
	}
	response := dto.OncallResponse{WeekStart: domain.WeekStart(now)}
	if user != nil {
		u := userResponse(user)
		response.User = &u
	}
	return c.JSON(fiber.Map{"data": response})
}

// Roster GET /oncall/roster.
func (h *OncallHandler) Roster(c *fiber.Ctx) error {
	entries, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	responses := make([]dto.RosterEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.RosterEntryResponse{
			ID:       entry.ID,
			StartsOn: entry.StartsOn,
			UserID:   entry.UserID,
		})
	}
	return c.JSON(fiber.Map{"data": responses})
}

// Seed POST /oncall/seed.
func (h *OncallHandler) Seed(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.SeedRosterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	anchor := time.Now().UTC()
	if req.Anchor != nil {
		anchor = *req.Anchor
	}
	entries, err := h.service.Seed(c.Context(), principal.User, req.UserIDs, anchor)
	if err != nil {
		return err
	}
	responses := make([]dto.RosterEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.RosterEntryResponse{
			ID:       entry.ID,
			StartsOn: entry.StartsOn,
			UserID:   entry.UserID,
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": responses})
}
