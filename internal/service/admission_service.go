package service

import (
	"context"
	"time"

	"github.com/eventlane/admission-service/internal/domain"
	"github.com/eventlane/admission-service/internal/dto"
	"github.com/eventlane/admission-service/internal/metrics"
	"github.com/eventlane/admission-service/internal/repository"
	"github.com/eventlane/admission-service/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AdmissionService defines the interface for participation admission control
type AdmissionService interface {
	// Admit creates a participation request for a published event, deciding
	// its initial status against the event's capacity and moderation rules
	Admit(ctx context.Context, eventID, requesterID string) (*dto.RequestResponse, error)

	// Cancel cancels a pending request owned by the requester
	Cancel(ctx context.Context, requesterID, requestID string) (*dto.RequestResponse, error)

	// UpdateStatuses bulk-confirms or bulk-rejects pending requests on behalf
	// of the event owner, honoring the participant limit
	UpdateStatuses(ctx context.Context, ownerID, eventID string, requestIDs []string, desiredStatus domain.RequestStatus) (*dto.StatusUpdateResult, error)

	// GetUserRequests returns every request created by the user
	GetUserRequests(ctx context.Context, requesterID string) ([]*dto.RequestResponse, error)

	// GetEventRequests returns every request on an event owned by the caller
	GetEventRequests(ctx context.Context, ownerID, eventID string) ([]*dto.RequestResponse, error)
}

// admissionService implements AdmissionService
type admissionService struct {
	ledger    repository.RequestLedger
	events    repository.EventLookup
	publisher RequestPublisher
	locks     *eventLocks
	now       func() time.Time
}

// AdmissionServiceConfig contains configuration for the admission service
type AdmissionServiceConfig struct {
	// Now supplies createdAt timestamps; defaults to time.Now
	Now func() time.Time
}

// NewAdmissionService creates a new admission service
func NewAdmissionService(
	ledger repository.RequestLedger,
	events repository.EventLookup,
	publisher RequestPublisher,
	cfg *AdmissionServiceConfig,
) AdmissionService {
	now := time.Now
	if cfg != nil && cfg.Now != nil {
		now = cfg.Now
	}
	if publisher == nil {
		publisher = NewNoOpRequestPublisher()
	}
	return &admissionService{
		ledger:    ledger,
		events:    events,
		publisher: publisher,
		locks:     newEventLocks(),
		now:       now,
	}
}

// Admit creates a participation request. Preconditions are checked in a fixed
// order so the error taxonomy is stable: published, not the owner, no
// duplicate, capacity available. The duplicate and capacity checks plus the
// insert run under the event lock so concurrent admissions can never jointly
// exceed the limit.
func (s *admissionService) Admit(ctx context.Context, eventID, requesterID string) (*dto.RequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admission.admit")
	defer span.End()

	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if requesterID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("requester_id", requesterID),
	)

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !event.IsPublished() {
		span.SetStatus(codes.Error, "event not published")
		return nil, domain.ErrEventNotPublished
	}
	if event.OwnedBy(requesterID) {
		span.SetStatus(codes.Error, "own event")
		return nil, domain.ErrOwnRequest
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	if _, err := s.ledger.FindActive(ctx, eventID, requesterID); err == nil {
		span.SetStatus(codes.Error, "duplicate request")
		return nil, domain.ErrDuplicateRequest
	} else if !domain.IsNotFoundError(err) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !event.Unlimited() {
		confirmed, err := s.ledger.CountConfirmed(ctx, eventID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if confirmed >= event.ParticipantLimit {
			span.SetStatus(codes.Error, "limit reached")
			return nil, domain.ErrLimitReached
		}
	}

	status := domain.StatusPending
	if event.AutoConfirms() {
		status = domain.StatusConfirmed
	}

	request, err := s.ledger.Insert(ctx, &domain.ParticipationRequest{
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      status,
		CreatedAt:   s.now(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	_ = s.publisher.PublishAdmitted(ctx, request)
	metrics.RecordAdmission(ctx, eventID, request.Status.String())

	span.SetAttributes(
		attribute.String("request_id", request.ID),
		attribute.String("status", request.Status.String()),
	)
	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(request), nil
}

// Cancel transitions a request owned by the requester to CANCELED. A request
// already in a terminal status is refused; capacity is never cached, so any
// slot a canceled request held is freed by the next live count.
func (s *admissionService) Cancel(ctx context.Context, requesterID, requestID string) (*dto.RequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admission.cancel")
	defer span.End()

	if requesterID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if requestID == "" {
		span.SetStatus(codes.Error, "invalid request_id")
		return nil, domain.ErrInvalidRequestID
	}

	span.SetAttributes(
		attribute.String("requester_id", requesterID),
		attribute.String("request_id", requestID),
	)

	request, err := s.ledger.FindByID(ctx, requestID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !request.BelongsTo(requesterID) {
		span.SetStatus(codes.Error, "not requester")
		return nil, domain.ErrNotRequester
	}
	if request.Status.Terminal() {
		span.SetStatus(codes.Error, "terminal status")
		return nil, domain.ErrRequestTerminal
	}

	canceled, err := s.ledger.UpdateStatus(ctx, requestID, domain.StatusCanceled)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	_ = s.publisher.PublishCanceled(ctx, canceled)
	metrics.RecordCancellation(ctx, canceled.EventID)

	span.SetStatus(codes.Ok, "")
	return dto.FromDomain(canceled), nil
}

// UpdateStatuses processes the owner's accept/reject decisions for a batch of
// pending requests. The confirm path evaluates the whole batch against a
// single remaining-capacity snapshot taken at the start of the critical
// section: the earliest requests fill the remaining slots and the spillover
// is auto-rejected. A batch against an already-full event fails closed before
// any request changes state.
func (s *admissionService) UpdateStatuses(ctx context.Context, ownerID, eventID string, requestIDs []string, desiredStatus domain.RequestStatus) (*dto.StatusUpdateResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admission.update_statuses")
	defer span.End()

	if ownerID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}
	if desiredStatus != domain.StatusConfirmed && desiredStatus != domain.StatusRejected {
		span.SetStatus(codes.Error, "invalid target status")
		return nil, domain.ErrInvalidStatus
	}

	span.SetAttributes(
		attribute.String("owner_id", ownerID),
		attribute.String("event_id", eventID),
		attribute.String("desired_status", desiredStatus.String()),
		attribute.Int("request_count", len(requestIDs)),
	)

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !event.OwnedBy(ownerID) {
		span.SetStatus(codes.Error, "not owner")
		return nil, domain.ErrNotOwner
	}

	result := &dto.StatusUpdateResult{
		ConfirmedRequests: []*dto.RequestResponse{},
		RejectedRequests:  []*dto.RequestResponse{},
	}

	// Unlimited or unmoderated events auto-confirm at admission, so nothing
	// is ever left PENDING for the owner to moderate
	if event.AutoConfirms() {
		span.SetStatus(codes.Ok, "")
		return result, nil
	}

	unlock := s.locks.Lock(eventID)
	defer unlock()

	loaded, err := s.ledger.FindByIDs(ctx, requestIDs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Requests belonging to other events are silently skipped; a non-pending
	// request for this event fails the whole batch before any mutation
	pending := make([]*domain.ParticipationRequest, 0, len(loaded))
	for _, req := range loaded {
		if req.EventID != eventID {
			continue
		}
		if !req.IsPending() {
			span.SetStatus(codes.Error, "not pending")
			return nil, domain.ErrNotPending
		}
		pending = append(pending, req)
	}

	if desiredStatus == domain.StatusRejected {
		for _, req := range pending {
			rejected, err := s.ledger.UpdateStatus(ctx, req.ID, domain.StatusRejected)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			_ = s.publisher.PublishRejected(ctx, rejected)
			result.RejectedRequests = append(result.RejectedRequests, dto.FromDomain(rejected))
		}
		metrics.RecordModeration(ctx, eventID, 0, len(result.RejectedRequests))
		span.SetStatus(codes.Ok, "")
		return result, nil
	}

	// Single capacity snapshot for the whole batch
	confirmed, err := s.ledger.CountConfirmed(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	remaining := event.ParticipantLimit - confirmed
	if remaining <= 0 {
		span.SetStatus(codes.Error, "limit already reached")
		return nil, domain.ErrLimitAlreadyFull
	}

	for _, req := range pending {
		if remaining > 0 {
			updated, err := s.ledger.UpdateStatus(ctx, req.ID, domain.StatusConfirmed)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, err
			}
			_ = s.publisher.PublishConfirmed(ctx, updated)
			result.ConfirmedRequests = append(result.ConfirmedRequests, dto.FromDomain(updated))
			remaining--
			continue
		}

		// Spillover: capacity filled partway through the batch
		updated, err := s.ledger.UpdateStatus(ctx, req.ID, domain.StatusRejected)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		_ = s.publisher.PublishRejected(ctx, updated)
		result.RejectedRequests = append(result.RejectedRequests, dto.FromDomain(updated))
	}

	metrics.RecordModeration(ctx, eventID, len(result.ConfirmedRequests), len(result.RejectedRequests))

	span.SetAttributes(
		attribute.Int("confirmed", len(result.ConfirmedRequests)),
		attribute.Int("rejected", len(result.RejectedRequests)),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// GetUserRequests returns every request created by the user
func (s *admissionService) GetUserRequests(ctx context.Context, requesterID string) ([]*dto.RequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admission.get_user_requests")
	defer span.End()

	if requesterID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}

	span.SetAttributes(attribute.String("requester_id", requesterID))

	requests, err := s.ledger.FindAllByRequester(ctx, requesterID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(requests)))
	span.SetStatus(codes.Ok, "")
	return dto.FromDomainList(requests), nil
}

// GetEventRequests returns every request on an event owned by the caller
func (s *admissionService) GetEventRequests(ctx context.Context, ownerID, eventID string) ([]*dto.RequestResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admission.get_event_requests")
	defer span.End()

	if ownerID == "" {
		span.SetStatus(codes.Error, "invalid user_id")
		return nil, domain.ErrInvalidUserID
	}
	if eventID == "" {
		span.SetStatus(codes.Error, "invalid event_id")
		return nil, domain.ErrInvalidEventID
	}

	span.SetAttributes(
		attribute.String("owner_id", ownerID),
		attribute.String("event_id", eventID),
	)

	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !event.OwnedBy(ownerID) {
		span.SetStatus(codes.Error, "not owner")
		return nil, domain.ErrNotOwner
	}

	requests, err := s.ledger.FindAllByEvent(ctx, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(requests)))
	span.SetStatus(codes.Ok, "")
	return dto.FromDomainList(requests), nil
}
