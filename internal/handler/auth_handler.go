package handler

import (
	"testboard/internal/domain"
	"testboard/internal/dto"
	"testboard/internal/i18n"
	"testboard/internal/middleware"
	"testboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler serves registration, login and the profile endpoint. Errors
// are returned as-is and translated by the centralized error handler.
type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("body", "malformed JSON")}
	}

	userID, err := h.authService.Register(c.Context(), &req)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(dto.RegisterResponse{
		Message: i18n.T(middleware.RequestLang(c), "user_registered"),
		UserID:  userID,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ValidationErrors{domain.NewInvalidFormatError("body", "malformed JSON")}
	}

	token, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return err
	}

	return c.JSON(dto.LoginResponse{AccessToken: token})
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.UserIDKey).(string)
	profile, err := h.authService.GetProfile(c.Context(), userID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}
