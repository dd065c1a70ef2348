package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hvac-service-desk/internal/api/dto"
	"github.com/spec-kit/hvac-service-desk/internal/auth"
	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/service"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

// EscalationsHandler serves the help workflow: raising escalations, the
// quality-manager queue, resolution and remediation.
type EscalationsHandler struct {
	service *service.EscalationService
}

// NewEscalationsHandler constructs the handler.
func NewEscalationsHandler(escalationService *service.EscalationService) *EscalationsHandler {
	return &EscalationsHandler{service: escalationService}
}

// Open POST /requests/:id/help.
func (h *EscalationsHandler) Open(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateHelpPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	help, err := h.service.Open(c.Context(), principal.Actor(), id, req.Message)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": helpResponse(help)})
}

// ListOpen GET /escalations.
func (h *EscalationsHandler) ListOpen(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	queue, err := h.service.ListOpen(c.Context(), principal.Actor())
	if err != nil {
		return err
	}
	items := make([]dto.OpenHelpResponse, 0, len(queue))
	for i := range queue {
		items = append(items, openHelpResponse(&queue[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Resolve POST /escalations/:id/resolve.
func (h *EscalationsHandler) Resolve(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ResolveHelpPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}

	help, err := h.service.Resolve(c.Context(), principal.Actor(), id, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": helpResponse(help)})
}

// Reassign POST /requests/:id/reassign. Remediation: replaces the primary
// technician, open to quality managers as well as administrators.
func (h *EscalationsHandler) Reassign(c *fiber.Ctx) error {
	return h.remediate(c, false)
}

// AttachAssistant POST /requests/:id/attach-assistant.
func (h *EscalationsHandler) AttachAssistant(c *fiber.Ctx) error {
	return h.remediate(c, true)
}

func (h *EscalationsHandler) remediate(c *fiber.Ctx, assistant bool) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.AssignPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	var request *domain.Request
	if assistant {
		request, err = h.service.AttachAssistant(c.Context(), principal.Actor(), id, req.TechnicianID)
	} else {
		request, err = h.service.ReassignTechnician(c.Context(), principal.Actor(), id, req.TechnicianID)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

func helpResponse(help *domain.HelpRequest) dto.HelpRequestResponse {
	return dto.HelpRequestResponse{
		ID:             help.ID,
		RequestID:      help.RequestID,
		RequestedBy:    help.RequestedBy,
		Message:        help.Message,
		Status:         help.Status,
		CreatedAt:      help.CreatedAt,
		ResolvedBy:     help.ResolvedBy,
		ResolvedAt:     help.ResolvedAt,
		ResolutionNote: help.ResolutionNote,
	}
}

func openHelpResponse(entry *domain.OpenHelpRequest) dto.OpenHelpResponse {
	effective := entry.Deadline
	if entry.ExtendedDeadline != nil {
		effective = entry.ExtendedDeadline
	}
	return dto.OpenHelpResponse{
		HelpID:            entry.HelpID,
		RequestID:         entry.RequestID,
		Message:           entry.Message,
		CreatedAt:         entry.CreatedAt,
		RequestNumber:     entry.RequestNumber,
		RequestStatus:     entry.RequestStatus,
		Deadline:          entry.Deadline,
		ExtendedDeadline:  entry.ExtendedDeadline,
		EffectiveDeadline: effective,
		AssignedTo:        entry.AssignedTo,
		AssignedName:      entry.AssignedName,
		AssistantID:       entry.AssistantID,
		AssistantName:     entry.AssistantName,
		RequestedBy:       entry.RequestedBy,
		RequestedByName:   entry.RequestedByName,
	}
}
