package handler

import (
	"testboard/internal/domain"
	"testboard/internal/dto"
	"testboard/internal/middleware"
	"testboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AttemptHandler serves the participant attempt flow.
type AttemptHandler struct {
	attemptService service.AttemptService
}

func NewAttemptHandler(attemptService service.AttemptService) *AttemptHandler {
	return &AttemptHandler{attemptService: attemptService}
}

// Start handles POST /tests/:id/start.
func (h *AttemptHandler) Start(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	resp, err := h.attemptService.StartTest(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Submit handles POST /tests/:id/submit.
func (h *AttemptHandler) Submit(c *fiber.Ctx) error {
	var req dto.SubmitTestRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("body", "malformed JSON")}
	}

	userID, _ := c.Locals(middleware.UserIDKey).(string)
	resp, err := h.attemptService.SubmitTest(c.Context(), userID, c.Params("id"), &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
