package domain

import "time"

// RequestStatus is the lifecycle status of a participation request
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusConfirmed RequestStatus = "CONFIRMED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCanceled  RequestStatus = "CANCELED"
)

// String returns the status as a string
func (s RequestStatus) String() string {
	return string(s)
}

// Valid reports whether s is a known status
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether s has no outgoing transitions
func (s RequestStatus) Terminal() bool {
	switch s {
	case StatusConfirmed, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// CanTransitionTo reports whether the edge s -> target is in the allowed
// transition graph. The only non-terminal status is PENDING; a confirmed
// participation is not revocable and a canceled or rejected request is
// never mutated again.
func (s RequestStatus) CanTransitionTo(target RequestStatus) bool {
	if s != StatusPending {
		return false
	}
	switch target {
	case StatusConfirmed, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

// ParticipationRequest represents one user's request to join one event.
// A request is never physically deleted; REJECTED and CANCELED rows are
// retained for history.
type ParticipationRequest struct {
	ID          string        `json:"id"`
	EventID     string        `json:"event_id"`
	RequesterID string        `json:"requester_id"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
}

// IsPending reports whether the request awaits moderation
func (r *ParticipationRequest) IsPending() bool {
	return r.Status == StatusPending
}

// IsConfirmed reports whether the request holds a capacity slot
func (r *ParticipationRequest) IsConfirmed() bool {
	return r.Status == StatusConfirmed
}

// IsActive reports whether the request counts toward uniqueness: at most one
// non-CANCELED request may exist per (event, requester) pair.
func (r *ParticipationRequest) IsActive() bool {
	return r.Status != StatusCanceled
}

// BelongsTo reports whether the request was created by the given user
func (r *ParticipationRequest) BelongsTo(userID string) bool {
	return r.RequesterID == userID
}

// Validate validates the request fields
func (r *ParticipationRequest) Validate() error {
	if r.EventID == "" {
		return ErrInvalidEventID
	}
	if r.RequesterID == "" {
		return ErrInvalidUserID
	}
	if !r.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}
