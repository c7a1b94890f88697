package dto

import (
	"time"

	"github.com/eventlane/admission-service/internal/domain"
)

// RequestResponse is the API representation of a participation request
type RequestResponse struct {
	ID          string    `json:"id"`
	EventID     string    `json:"event_id"`
	RequesterID string    `json:"requester_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// StatusUpdateRequest is the owner's batch moderation payload
type StatusUpdateRequest struct {
	RequestIDs []string `json:"request_ids" binding:"required"`
	Status     string   `json:"status" binding:"required"`
}

// StatusUpdateResult is the confirmed/rejected partition produced by a batch
// moderation call
type StatusUpdateResult struct {
	ConfirmedRequests []*RequestResponse `json:"confirmed_requests"`
	RejectedRequests  []*RequestResponse `json:"rejected_requests"`
}

// ErrorResponse is the error envelope returned by handlers
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// SuccessResponse wraps list payloads
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// FromDomain converts a domain request to its API representation
func FromDomain(req *domain.ParticipationRequest) *RequestResponse {
	if req == nil {
		return nil
	}
	return &RequestResponse{
		ID:          req.ID,
		EventID:     req.EventID,
		RequesterID: req.RequesterID,
		Status:      req.Status.String(),
		CreatedAt:   req.CreatedAt,
	}
}

// FromDomainList converts a slice of domain requests
func FromDomainList(requests []*domain.ParticipationRequest) []*RequestResponse {
	responses := make([]*RequestResponse, len(requests))
	for i, req := range requests {
		responses[i] = FromDomain(req)
	}
	return responses
}
