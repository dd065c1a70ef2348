package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/hvac-service-desk/internal/api/dto"
	"github.com/spec-kit/hvac-service-desk/internal/auth"
	"github.com/spec-kit/hvac-service-desk/internal/domain"
	"github.com/spec-kit/hvac-service-desk/internal/repository"
	"github.com/spec-kit/hvac-service-desk/internal/service"
	apperrors "github.com/spec-kit/hvac-service-desk/pkg/util"
)

// RequestsHandler serves the repair-request endpoints: intake, lookup,
// edits, lifecycle transitions, assignment, deadline extension, comments
// and history.
type RequestsHandler struct {
	requests  *service.RequestService
	lifecycle *service.LifecycleService
	deadlines *service.DeadlineService
}

// NewRequestsHandler constructs the handler.
func NewRequestsHandler(requests *service.RequestService, lifecycle *service.LifecycleService, deadlines *service.DeadlineService) *RequestsHandler {
	return &RequestsHandler{requests: requests, lifecycle: lifecycle, deadlines: deadlines}
}

// Create POST /requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	request, err := h.requests.Create(c.Context(), principal.Actor(), service.CreateRequestInput{
		EquipmentType:      req.EquipmentType,
		DeviceModel:        req.DeviceModel,
		FaultType:          req.FaultType,
		ProblemDescription: req.ProblemDescription,
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		EstimatedCost:      req.EstimatedCost,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": requestResponse(request)})
}

// List GET /requests.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	filter, err := parseRequestQuery(c)
	if err != nil {
		return err
	}
	requests, err := h.requests.List(c.Context(), filter)
	if err != nil {
		return err
	}
	items := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, requestResponse(&requests[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	request, err := h.requests.Get(c.Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Update PATCH /requests/:id.
func (h *RequestsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.UpdateRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	request, err := h.requests.Update(c.Context(), principal.Actor(), id, service.UpdateRequestInput{
		EquipmentType:      req.EquipmentType,
		DeviceModel:        req.DeviceModel,
		FaultType:          req.FaultType,
		ProblemDescription: req.ProblemDescription,
		CustomerName:       req.CustomerName,
		CustomerPhone:      req.CustomerPhone,
		EstimatedCost:      req.EstimatedCost,
		ActualCost:         req.ActualCost,
		Deadline:           req.Deadline,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// SetStatus POST /requests/:id/status.
func (h *RequestsHandler) SetStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.SetStatusPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	request, err := h.lifecycle.SetStatus(c.Context(), principal.Actor(), id, domain.RequestStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Assign POST /requests/:id/assign.
func (h *RequestsHandler) Assign(c *fiber.Ctx) error {
	return h.assign(c, false)
}

// SetAssistant POST /requests/:id/assistant.
func (h *RequestsHandler) SetAssistant(c *fiber.Ctx) error {
	return h.assign(c, true)
}

func (h *RequestsHandler) assign(c *fiber.Ctx, assistant bool) error {
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
		request, err = h.lifecycle.SetAssistant(c.Context(), principal.Actor(), id, req.TechnicianID)
	} else {
		request, err = h.lifecycle.Assign(c.Context(), principal.Actor(), id, req.TechnicianID)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// Claim POST /requests/:id/claim.
func (h *RequestsHandler) Claim(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	request, err := h.lifecycle.Claim(c.Context(), principal.Actor(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// ExtendDeadline POST /requests/:id/deadline/extend.
func (h *RequestsHandler) ExtendDeadline(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ExtendDeadlinePayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if err := validateStruct(req); err != nil {
		return err
	}

	request, err := h.deadlines.ExtendDeadline(c.Context(), principal.Actor(), id, req.NewDeadline, req.Reason, req.ClientApproval)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": requestResponse(request)})
}

// AddComment POST /requests/:id/comments.
func (h *RequestsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var req dto.CreateCommentPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}

	comment, err := h.requests.AddComment(c.Context(), principal.Actor(), id, req.Body, req.PartsOrdered, req.PartsDescription)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /requests/:id/comments.
func (h *RequestsHandler) ListComments(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	comments, err := h.requests.ListComments(c.Context(), id)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListHistory GET /requests/:id/history.
func (h *RequestsHandler) ListHistory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	entries, err := h.requests.ListHistory(c.Context(), id)
	if err != nil {
		return err
	}
	items := make([]dto.StatusHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.StatusHistoryResponse{
			ID:            entry.ID,
			OldStatus:     entry.OldStatus,
			NewStatus:     entry.NewStatus,
			ChangedBy:     entry.ChangedBy,
			ChangedByName: entry.ChangedByName,
			ChangedAt:     entry.ChangedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListEquipmentTypes GET /equipment-types.
func (h *RequestsHandler) ListEquipmentTypes(c *fiber.Ctx) error {
	types, err := h.requests.ListEquipmentTypes(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.EquipmentTypeResponse, 0, len(types))
	for _, et := range types {
		items = append(items, dto.EquipmentTypeResponse{ID: et.ID, Name: et.Name, Description: et.Description})
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseRequestQuery(c *fiber.Ctx) (repository.RequestFilter, error) {
	filter := repository.RequestFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.RequestStatus(statusStr)
		filter.Status = &status
	}
	if assignedStr := c.Query("assigned_to"); assignedStr != "" {
		assigned, err := strconv.ParseInt(assignedStr, 10, 64)
		if err != nil {
			return filter, apperrors.NewInvalidArgument("invalid assigned_to", nil)
		}
		filter.AssignedTo = &assigned
	}
	if search := c.Query("search"); search != "" {
		filter.Search = &search
	}
	if from := parseDate(c.Query("date_from")); from != nil {
		filter.DateFrom = from
	}
	if to := parseDate(c.Query("date_to")); to != nil {
		filter.DateTo = to
	}
	return filter, nil
}

func parseDate(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", val)
	if err != nil {
		return nil
	}
	return &t
}

func requestResponse(request *domain.Request) dto.RequestResponse {
	return dto.RequestResponse{
		ID:                 request.ID,
		Number:             request.Number,
		CreatedAt:          request.CreatedAt,
		EquipmentType:      request.EquipmentType,
		DeviceModel:        request.DeviceModel,
		FaultType:          request.FaultType,
		ProblemDescription: request.ProblemDescription,
		CustomerName:       request.CustomerName,
		CustomerPhone:      request.CustomerPhone,
		Status:             request.Status,
		AssignedTo:         request.AssignedTo,
		AssignedName:       request.AssignedName,
		AssistantID:        request.AssistantID,
		AssistantName:      request.AssistantName,
		EstimatedCost:      request.EstimatedCost,
		ActualCost:         request.ActualCost,
		Deadline:           request.Deadline,
		ExtendedDeadline:   request.ExtendedDeadline,
		EffectiveDeadline:  request.EffectiveDeadline(),
		ExtensionReason:    request.ExtensionReason,
		ClientApproval:     request.ClientApproval,
		ClientApprovalAt:   request.ClientApprovalAt,
		ExtendedBy:         request.ExtendedBy,
		ExtendedByName:     request.ExtendedByName,
		CompletedAt:        request.CompletedAt,
		Risk:               request.RiskState(time.Now()),
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:               comment.ID,
		UserID:           comment.UserID,
		AuthorName:       comment.AuthorName,
		Body:             comment.Body,
		PartsOrdered:     comment.PartsOrdered,
		PartsDescription: comment.PartsDescription,
		CreatedAt:        comment.CreatedAt,
	}
}
