package domain

import "errors"

// Domain errors
var (
	// Not-found errors
	ErrEventNotFound   = errors.New("event not found")
	ErrRequestNotFound = errors.New("participation request not found")
	ErrUserNotFound    = errors.New("user not found")

	// Forbidden errors
	ErrNotOwner     = errors.New("caller is not the event owner")
	ErrNotRequester = errors.New("caller is not the request owner")

	// Conflict errors
	ErrEventNotPublished = errors.New("event not published")
	ErrOwnRequest        = errors.New("owner cannot request own event")
	ErrDuplicateRequest  = errors.New("duplicate request")
	ErrLimitReached      = errors.New("participant limit reached")
	ErrLimitAlreadyFull  = errors.New("participant limit already reached")
	ErrRequestTerminal   = errors.New("request is already in a terminal status")
	ErrNotPending        = errors.New("only pending requests may change status")
	ErrInvalidTransition = errors.New("invalid status transition")

	// Validation errors
	ErrInvalidEventID   = errors.New("invalid event id")
	ErrInvalidRequestID = errors.New("invalid request id")
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrInvalidStatus    = errors.New("invalid target status")
)

// IsNotFoundError checks if the error is a not found error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrRequestNotFound) ||
		errors.Is(err, ErrUserNotFound)
}

// IsForbiddenError checks if the error is an ownership/relationship error
func IsForbiddenError(err error) bool {
	return errors.Is(err, ErrNotOwner) ||
		errors.Is(err, ErrNotRequester)
}

// IsConflictError checks if the error is a business invariant violation.
// ErrInvalidTransition is a ledger-level signal and always surfaces as a
// conflict to callers.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrEventNotPublished) ||
		errors.Is(err, ErrOwnRequest) ||
		errors.Is(err, ErrDuplicateRequest) ||
		errors.Is(err, ErrLimitReached) ||
		errors.Is(err, ErrLimitAlreadyFull) ||
		errors.Is(err, ErrRequestTerminal) ||
		errors.Is(err, ErrNotPending) ||
		errors.Is(err, ErrInvalidTransition)
}

// IsValidationError checks if the error is an input validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEventID) ||
		errors.Is(err, ErrInvalidRequestID) ||
		errors.Is(err, ErrInvalidUserID) ||
		errors.Is(err, ErrInvalidStatus)
}
