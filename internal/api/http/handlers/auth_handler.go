package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hvac-service-desk/internal/api/dto"
	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/service"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

// AuthHandler serves login.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{service: authService}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	user, token, expiresAt, err := h.service.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userResponse(user),
	}})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		FullName:  user.FullName,
		Role:      user.Role,
		Phone:     user.Phone,
		Email:     user.Email,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}
