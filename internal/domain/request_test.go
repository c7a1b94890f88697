package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestRequestStatusTransitions(t *testing.T) {
	allStatuses := []RequestStatus{StatusPending, StatusConfirmed, StatusRejected, StatusCanceled}

	for _, from := range allStatuses {
		for _, to := range allStatuses {
			want := from == StatusPending && to != StatusPending
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}

	if StatusPending.CanTransitionTo("ARCHIVED") {
		t.Error("transition to an unknown status must be refused")
	}
}

func TestRequestStatusTerminal(t *testing.T) {
	if StatusPending.Terminal() {
		t.Error("PENDING is not terminal")
	}
	for _, s := range []RequestStatus{StatusConfirmed, StatusRejected, StatusCanceled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestRequestStatusValid(t *testing.T) {
	for _, s := range []RequestStatus{StatusPending, StatusConfirmed, StatusRejected, StatusCanceled} {
		if !s.Valid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if RequestStatus("ARCHIVED").Valid() {
		t.Error("unknown status should be invalid")
	}
	if RequestStatus("").Valid() {
		t.Error("empty status should be invalid")
	}
}

func TestParticipationRequestIsActive(t *testing.T) {
	for _, s := range []RequestStatus{StatusPending, StatusConfirmed, StatusRejected} {
		req := &ParticipationRequest{Status: s}
		if !req.IsActive() {
			t.Errorf("%s request should be active", s)
		}
	}
	canceled := &ParticipationRequest{Status: StatusCanceled}
	if canceled.IsActive() {
		t.Error("CANCELED request should not be active")
	}
}

func TestParticipationRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     ParticipationRequest
		wantErr error
	}{
		{
			name: "valid",
			req:  ParticipationRequest{EventID: "event-1", RequesterID: "user-1", Status: StatusPending},
		},
		{
			name:    "missing event id",
			req:     ParticipationRequest{RequesterID: "user-1", Status: StatusPending},
			wantErr: ErrInvalidEventID,
		},
		{
			name:    "missing requester id",
			req:     ParticipationRequest{EventID: "event-1", Status: StatusPending},
			wantErr: ErrInvalidUserID,
		},
		{
			name:    "invalid status",
			req:     ParticipationRequest{EventID: "event-1", RequesterID: "user-1", Status: "ARCHIVED"},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestErrorClassifiers(t *testing.T) {
	tests := []struct {
		err        error
		notFound   bool
		forbidden  bool
		conflict   bool
		validation bool
	}{
		{err: ErrEventNotFound, notFound: true},
		{err: ErrRequestNotFound, notFound: true},
		{err: ErrNotOwner, forbidden: true},
		{err: ErrNotRequester, forbidden: true},
		{err: ErrEventNotPublished, conflict: true},
		{err: ErrOwnRequest, conflict: true},
		{err: ErrDuplicateRequest, conflict: true},
		{err: ErrLimitReached, conflict: true},
		{err: ErrLimitAlreadyFull, conflict: true},
		{err: ErrRequestTerminal, conflict: true},
		{err: ErrNotPending, conflict: true},
		{err: ErrInvalidTransition, conflict: true},
		{err: ErrInvalidEventID, validation: true},
		{err: ErrInvalidRequestID, validation: true},
		{err: ErrInvalidUserID, validation: true},
		{err: ErrInvalidStatus, validation: true},
		{err: errors.New("disk on fire")},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := IsNotFoundError(tt.err); got != tt.notFound {
				t.Errorf("IsNotFoundError = %v, want %v", got, tt.notFound)
			}
			if got := IsForbiddenError(tt.err); got != tt.forbidden {
				t.Errorf("IsForbiddenError = %v, want %v", got, tt.forbidden)
			}
			if got := IsConflictError(tt.err); got != tt.conflict {
				t.Errorf("IsConflictError = %v, want %v", got, tt.conflict)
			}
			if got := IsValidationError(tt.err); got != tt.validation {
				t.Errorf("IsValidationError = %v, want %v", got, tt.validation)
			}
		})
	}
}

func TestErrorClassifiersUnwrapWrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("update request: %w", ErrInvalidTransition)
	if !IsConflictError(wrapped) {
		t.Error("wrapped ErrInvalidTransition should classify as conflict")
	}
}
