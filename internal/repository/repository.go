package repository

import (
	"context"

	"github.com/eventlane/admission-service/internal/domain"
)

// RequestLedger is the authoritative store of participation requests for
// events. It exposes only invariant-safe primitives; capacity enforcement is
// deliberately left to the admission service, which composes CountConfirmed
// with Insert/UpdateStatus under an event-scoped critical section so that
// check-then-increment stays atomic per event.
type RequestLedger interface {
	// CountConfirmed returns the number of CONFIRMED requests for the event
	CountConfirmed(ctx context.Context, eventID string) (int, error)

	// FindActive returns the non-CANCELED request for the (event, requester)
	// pair, or domain.ErrRequestNotFound if none exists
	FindActive(ctx context.Context, eventID, requesterID string) (*domain.ParticipationRequest, error)

	// Insert assigns an id and stores a new request. It fails with
	// domain.ErrDuplicateRequest if an active request for the same
	// (event, requester) pair already exists.
	Insert(ctx context.Context, req *domain.ParticipationRequest) (*domain.ParticipationRequest, error)

	// UpdateStatus transitions a request to a new status. It fails with
	// domain.ErrInvalidTransition if the edge is not in the allowed graph
	// and domain.ErrRequestNotFound if the request does not exist.
	UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) (*domain.ParticipationRequest, error)

	// FindByID returns a request by id, or domain.ErrRequestNotFound
	FindByID(ctx context.Context, id string) (*domain.ParticipationRequest, error)

	// FindByIDs returns the requests with the given ids, ordered by
	// created_at ascending then id ascending
	FindByIDs(ctx context.Context, ids []string) ([]*domain.ParticipationRequest, error)

	// FindAllByEvent returns every request for the event, ordered by
	// created_at ascending then id ascending
	FindAllByEvent(ctx context.Context, eventID string) ([]*domain.ParticipationRequest, error)

	// FindAllByRequester returns every request created by the user
	FindAllByRequester(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error)
}

// EventLookup provides the read-only capacity view of events. Event CRUD is
// owned by event-management code outside this service.
type EventLookup interface {
	// FindByID returns the event capacity view, or domain.ErrEventNotFound
	FindByID(ctx context.Context, eventID string) (*domain.Event, error)
}
