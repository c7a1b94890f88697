package handler

import (
	"net/http"

	"github.com/eventlane/admission-service/internal/domain"
	"github.com/eventlane/admission-service/internal/dto"
	"github.com/eventlane/admission-service/internal/service"
	"github.com/eventlane/admission-service/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RequestHandler handles participation request HTTP requests
type RequestHandler struct {
	admissionService service.AdmissionService
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(admissionService service.AdmissionService) *RequestHandler {
	return &RequestHandler{admissionService: admissionService}
}

// CreateRequest handles POST /users/:userId/requests?eventId=
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.request.create")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.Param("userId")
	eventID := c.Query("eventId")
	if eventID == "" {
		span.SetStatus(codes.Error, "event id required")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "eventId query parameter is required",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", eventID),
	)

	result, err := h.admissionService.Admit(ctx, eventID, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.String("request_id", result.ID))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusCreated, result)
}

// CancelRequest handles PATCH /users/:userId/requests/:requestId/cancel
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.request.cancel")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.Param("userId")
	requestID := c.Param("requestId")

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("request_id", requestID),
	)

	result, err := h.admissionService.Cancel(ctx, userID, requestID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// GetUserRequests handles GET /users/:userId/requests
func (h *RequestHandler) GetUserRequests(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.request.list_user")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.Param("userId")
	span.SetAttributes(attribute.String("user_id", userID))

	result, err := h.admissionService.GetUserRequests(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Data: result})
}

// GetEventRequests handles GET /users/:userId/events/:eventId/requests
func (h *RequestHandler) GetEventRequests(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.request.list_event")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.Param("userId")
	eventID := c.Param("eventId")

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", eventID),
	)

	result, err := h.admissionService.GetEventRequests(ctx, userID, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(attribute.Int("count", len(result)))
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: true, Data: result})
}

// UpdateRequestStatuses handles PATCH /users/:userId/events/:eventId/requests
func (h *RequestHandler) UpdateRequestStatuses(c *gin.Context) {
	ctx, span := telemetry.StartSpan(c.Request.Context(), "handler.request.update_statuses")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID := c.Param("userId")
	eventID := c.Param("eventId")

	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "invalid request body",
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		})
		return
	}

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("event_id", eventID),
		attribute.String("status", req.Status),
		attribute.Int("request_count", len(req.RequestIDs)),
	)

	result, err := h.admissionService.UpdateStatuses(ctx, userID, eventID, req.RequestIDs, domain.RequestStatus(req.Status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		h.handleError(c, err)
		return
	}

	span.SetAttributes(
		attribute.Int("confirmed", len(result.ConfirmedRequests)),
		attribute.Int("rejected", len(result.RejectedRequests)),
	)
	span.SetStatus(codes.Ok, "")
	c.JSON(http.StatusOK, result)
}

// handleError converts domain errors to HTTP responses
func (h *RequestHandler) handleError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "NOT_FOUND",
		})
	case domain.IsForbiddenError(err):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "FORBIDDEN",
		})
	case domain.IsConflictError(err):
		c.JSON(http.StatusConflict, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "CONFLICT",
		})
	case domain.IsValidationError(err):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: err.Error(),
			Code:  "INVALID_REQUEST",
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error: "internal server error",
			Code:  "INTERNAL_ERROR",
		})
	}
}
