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

// TimeHandler manages timer and time log endpoints.
type TimeHandler struct {
	service *service.TimelogService
}

// NewTimeHandler constructs the handler.
func NewTimeHandler(timelog *service.TimelogService) *TimeHandler {
	return &TimeHandler{service: timelog}
}

// StartTimer POST /time/timer/start.
func (h *TimeHandler) StartTimer(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.StartTimerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ItemID == "" {
		return apperrors.NewValidationError("item_id required", nil)
	}
	entry, err := h.service.StartTimer(c.Context(), principal.User, req.ItemID, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": timeEntryResponse(entry)})
}

// StopTimer POST /time/timer/:id/stop.
func (h *TimeHandler) StopTimer(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.StopTimerRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.service.StopTimer(c.Context(), principal.User, c.Params("id"), req.Description)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": timeEntryResponse(entry)})
}

// ActiveTimer GET /time/timer/active.
func (h *TimeHandler) ActiveTimer(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	entry, err := h.service.ActiveTimer(c.Context(), principal.User)
	if err != nil {
		return err
	}
	if entry == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": timeEntryResponse(entry)})
}

// LogTime POST /time/log.
func (h *TimeHandler) LogTime(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.LogTimeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.ItemID == "" {
		return apperrors.NewValidationError("item_id required", nil)
	}
	loggedAt := time.Time{}
	if req.LoggedAt != nil {
		loggedAt = *req.LoggedAt
	}
	entry, err := h.service.LogTime(c.Context(), principal.User, req.ItemID, req.Hours, req.Description, loggedAt)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": timeEntryResponse(entry)})
}

// ListMine GET /time/mine.
func (h *TimeHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	page := parsePositiveInt(c.Query("page"), 1)
	pageSize := parsePositiveInt(c.Query("page_size"), 20)
	entries, err := h.service.ListMine(c.Context(), principal.User, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	responses := make([]dto.TimeEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, timeEntryResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": responses})
}

func timeEntryResponse(entry *domain.TimeEntry) dto.TimeEntryResponse {
	return dto.TimeEntryResponse{
		ID:          entry.ID,
		ItemID:      entry.ItemID,
		UserID:      entry.UserID,
		Hours:       entry.Hours,
		Description: entry.Description,
		StartedAt:   entry.StartedAt,
		StoppedAt:   entry.StoppedAt,
		IsRunning:   entry.IsRunning,
		LoggedAt:    entry.LoggedAt,
		CreatedAt:   entry.CreatedAt,
	}
}
