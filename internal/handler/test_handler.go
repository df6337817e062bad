package handler

import (
	"testboard/internal/domain"
	"testboard/internal/dto"
	"testboard/internal/i18n"
	"testboard/internal/middleware"
	"testboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// TestHandler serves the authored-test catalog.
type TestHandler struct {
	testService service.TestService
}

func NewTestHandler(testService service.TestService) *TestHandler {
	return &TestHandler{testService: testService}
}

// List handles GET /tests.
func (h *TestHandler) List(c *fiber.Ctx) error {
	resp, err := h.testService.ListTests(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Get handles GET /tests/:id.
func (h *TestHandler) Get(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	resp, err := h.testService.GetTest(c.Context(), userID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// Create handles POST /tests.
func (h *TestHandler) Create(c *fiber.Ctx) error {
	var req dto.TestRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("body", "malformed JSON")}
	}

	userID, _ := c.Locals(middleware.UserIDKey).(string)
	testID, err := h.testService.CreateTest(c.Context(), userID, &req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MutationResponse{
		Message: i18n.T(middleware.RequestLang(c), "test_created"),
		TestID:  testID,
	})
}

// Update handles PUT /tests/:id.
func (h *TestHandler) Update(c *fiber.Ctx) error {
	var req dto.TestRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("body", "malformed JSON")}
	}

	userID, _ := c.Locals(middleware.UserIDKey).(string)
	testID := c.Params("id")
	if err := h.testService.UpdateTest(c.Context(), userID, testID, &req); err != nil {
		return err
	}

	return c.JSON(dto.MutationResponse{
		Message: i18n.T(middleware.RequestLang(c), "test_updated"),
		TestID:  testID,
	})
}

// Delete handles DELETE /tests/:id.
func (h *TestHandler) Delete(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	if err := h.testService.DeleteTest(c.Context(), userID, c.Params("id")); err != nil {
		return err
	}

	return c.JSON(dto.MutationResponse{
		Message: i18n.T(middleware.RequestLang(c), "test_deleted"),
	})
}
