package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/eventlane/admission-service/internal/domain"
	"github.com/google/uuid"
)

// MemoryRequestLedger is an in-process RequestLedger. It enforces the same
// invariants as the PostgreSQL implementation and is used by tests and by
// storage-less development mode. Its mutex guards map consistency only; the
// admission service still owns the per-event critical section around
// count-then-mutate.
type MemoryRequestLedger struct {
	mu       sync.RWMutex
	requests map[string]*domain.ParticipationRequest
}

// NewMemoryRequestLedger creates an empty in-memory ledger
func NewMemoryRequestLedger() *MemoryRequestLedger {
	return &MemoryRequestLedger{
		requests: make(map[string]*domain.ParticipationRequest),
	}
}

// CountConfirmed returns the number of CONFIRMED requests for the event
func (l *MemoryRequestLedger) CountConfirmed(ctx context.Context, eventID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for _, req := range l.requests {
		if req.EventID == eventID && req.Status == domain.StatusConfirmed {
			count++
		}
	}
	return count, nil
}

// FindActive returns the non-CANCELED request for the (event, requester) pair
func (l *MemoryRequestLedger) FindActive(ctx context.Context, eventID, requesterID string) (*domain.ParticipationRequest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, req := range l.requests {
		if req.EventID == eventID && req.RequesterID == requesterID && req.IsActive() {
			return copyRequest(req), nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

// Insert stores a new request, assigning an id and enforcing active-pair
// uniqueness at the moment of insertion
func (l *MemoryRequestLedger) Insert(ctx context.Context, req *domain.ParticipationRequest) (*domain.ParticipationRequest, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, existing := range l.requests {
		if existing.EventID == req.EventID && existing.RequesterID == req.RequesterID && existing.IsActive() {
			return nil, domain.ErrDuplicateRequest
		}
	}

	stored := copyRequest(req)
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	l.requests[stored.ID] = stored
	return copyRequest(stored), nil
}

// UpdateStatus transitions a request to a new status, enforcing the graph
func (l *MemoryRequestLedger) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) (*domain.ParticipationRequest, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	req, ok := l.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	if !req.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, req.Status, status)
	}

	req.Status = status
	return copyRequest(req), nil
}

// FindByID returns a request by id
func (l *MemoryRequestLedger) FindByID(ctx context.Context, id string) (*domain.ParticipationRequest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	req, ok := l.requests[id]
	if !ok {
		return nil, domain.ErrRequestNotFound
	}
	return copyRequest(req), nil
}

// FindByIDs returns requests in batch order: created_at asc, id asc
func (l *MemoryRequestLedger) FindByIDs(ctx context.Context, ids []string) ([]*domain.ParticipationRequest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var requests []*domain.ParticipationRequest
	for _, id := range ids {
		if req, ok := l.requests[id]; ok {
			requests = append(requests, copyRequest(req))
		}
	}
	sortRequests(requests)
	return requests, nil
}

// FindAllByEvent returns every request for the event in batch order
func (l *MemoryRequestLedger) FindAllByEvent(ctx context.Context, eventID string) ([]*domain.ParticipationRequest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var requests []*domain.ParticipationRequest
	for _, req := range l.requests {
		if req.EventID == eventID {
			requests = append(requests, copyRequest(req))
		}
	}
	sortRequests(requests)
	return requests, nil
}

// FindAllByRequester returns every request created by the user
func (l *MemoryRequestLedger) FindAllByRequester(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var requests []*domain.ParticipationRequest
	for _, req := range l.requests {
		if req.RequesterID == requesterID {
			requests = append(requests, copyRequest(req))
		}
	}
	sortRequests(requests)
	return requests, nil
}

// sortRequests orders by created_at ascending with id as the deterministic
// tie-break, matching the SQL ORDER BY contract
func sortRequests(requests []*domain.ParticipationRequest) {
	sort.Slice(requests, func(i, j int) bool {
		if requests[i].CreatedAt.Equal(requests[j].CreatedAt) {
			return requests[i].ID < requests[j].ID
		}
		return requests[i].CreatedAt.Before(requests[j].CreatedAt)
	})
}

func copyRequest(req *domain.ParticipationRequest) *domain.ParticipationRequest {
	dup := *req
	return &dup
}

// Ensure MemoryRequestLedger implements RequestLedger
var _ RequestLedger = (*MemoryRequestLedger)(nil)
