package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hvac-service-desk/internal/api/dto"
	"github.com/spec-kit/hvac-service-desk/internal/auth"
	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/service"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

// UsersHandler manages staff accounts.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// CreateUser POST /users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	user, err := h.service.CreateUser(c.Context(), principal.Actor(), service.CreateUserInput{
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     domain.Role(req.Role),
		Phone:    req.Phone,
		Email:    req.Email,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": userResponse(user)})
}

// ListUsers GET /users?role=technician.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var role *domain.Role
	if roleStr := c.Query("role"); roleStr != "" {
		parsed := domain.Role(roleStr)
		role = &parsed
	}

	users, err := h.service.ListUsers(c.Context(), principal.Actor(), role)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetUser GET /users/:id.
func (h *UsersHandler) GetUser(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	user, err := h.service.GetUser(c.Context(), principal.Actor(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

// SetActive PATCH /users/:id/active.
func (h *UsersHandler) SetActive(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	user, err := h.service.SetActive(c.Context(), principal.Actor(), id, *req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(user)})
}

func parseID(c *fiber.Ctx, param string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewInvalidArgument("invalid id", map[string]any{param: c.Params(param)})
	}
	return id, nil
}
