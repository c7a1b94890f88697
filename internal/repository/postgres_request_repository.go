package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventlane/admission-service/internal/domain"
	"github.com/eventlane/admission-service/pkg/telemetry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// uniqueViolation is the PostgreSQL error code raised by the partial unique
// index on (event_id, requester_id) WHERE status <> 'CANCELED'
const uniqueViolation = "23505"

const requestColumns = "id, event_id, requester_id, status, created_at"

// PostgresRequestRepository implements RequestLedger using PostgreSQL with pgxpool
type PostgresRequestRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRequestRepository creates a new PostgresRequestRepository
func NewPostgresRequestRepository(pool *pgxpool.Pool) *PostgresRequestRepository {
	return &PostgresRequestRepository{pool: pool}
}

// CountConfirmed returns the number of CONFIRMED requests for the event
func (r *PostgresRequestRepository) CountConfirmed(ctx context.Context, eventID string) (int, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.request.count_confirmed")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT COUNT(*) FROM participation_requests
		WHERE event_id = $1 AND status = $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, eventID, domain.StatusConfirmed.String()).Scan(&count)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, fmt.Errorf("failed to count confirmed requests: %w", err)
	}

	span.SetAttributes(attribute.Int("count", count))
	span.SetStatus(codes.Ok, "")
	return count, nil
}

// FindActive returns the non-CANCELED request for the (event, requester) pair
func (r *PostgresRequestRepository) FindActive(ctx context.Context, eventID, requesterID string) (*domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.request.find_active")
	defer span.End()

	span.SetAttributes(
		attribute.String("event_id", eventID),
		attribute.String("requester_id", requesterID),
	)

	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE event_id = $1 AND requester_id = $2 AND status <> $3
		LIMIT 1
	`

	req, err := scanRequestRow(r.pool.QueryRow(ctx, query, eventID, requesterID, domain.StatusCanceled.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "not found")
			return nil, domain.ErrRequestNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to find active request: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return req, nil
}

// Insert stores a new request, assigning an id. The partial unique index
// enforces uniqueness of the active (event, requester) pair at the moment of
// insertion even if a racing insert slipped past FindActive.
func (r *PostgresRequestRepository) Insert(ctx context.Context, req *domain.ParticipationRequest) (*domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.request.insert")
	defer span.End()

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	span.SetAttributes(
		attribute.String("request_id", req.ID),
		attribute.String("event_id", req.EventID),
		attribute.String("requester_id", req.RequesterID),
		attribute.String("status", req.Status.String()),
	)

	query := `
		INSERT INTO participation_requests (id, event_id, requester_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query, req.ID, req.EventID, req.RequesterID, req.Status.String(), req.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			span.SetStatus(codes.Error, "duplicate request")
			return nil, domain.ErrDuplicateRequest
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to insert request: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return req, nil
}

// UpdateStatus transitions a request to a new status, enforcing the
// transition graph inside the UPDATE itself: the row only changes when its
// current status has an edge to the target.
func (r *PostgresRequestRepository) UpdateStatus(ctx context.Context, id string, status domain.RequestStatus) (*domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.request.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.String("request_id", id),
		attribute.String("status", status.String()),
	)

	if !status.Valid() {
		span.SetStatus(codes.Error, "invalid status")
		return nil, domain.ErrInvalidStatus
	}

	// PENDING is the only status with outgoing edges
	query := `
		UPDATE participation_requests
		SET status = $2
		WHERE id = $1 AND status = $3
		RETURNING ` + requestColumns + `
	`

	req, err := scanRequestRow(r.pool.QueryRow(ctx, query, id, status.String(), domain.StatusPending.String()))
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return req, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}

	// No row changed: distinguish a missing request from a forbidden edge
	var current string
	err = r.pool.QueryRow(ctx, "SELECT status FROM participation_requests WHERE id = $1", id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrRequestNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to check request status: %w", err)
	}

	span.SetStatus(codes.Error, "invalid transition")
	return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current, status)
}

// FindByID returns a request by id
func (r *PostgresRequestRepository) FindByID(ctx context.Context, id string) (*domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.request.find_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("request_id", id))

	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE id = $1
	`

	req, err := scanRequestRow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrRequestNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return req, nil
}

// FindByIDs returns the requests with the given ids ordered by created_at
// ascending then id ascending. The ordering is the tie-break contract the
// batch moderation algorithm depends on.
func (r *PostgresRequestRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.request.find_by_ids")
	defer span.End()

	span.SetAttributes(attribute.Int("id_count", len(ids)))

	if len(ids) == 0 {
		span.SetStatus(codes.Ok, "")
		return nil, nil
	}

	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get requests by ids: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows, span)
}

// FindAllByEvent returns every request for the event in batch order
func (r *PostgresRequestRepository) FindAllByEvent(ctx context.Context, eventID string) ([]*domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.request.find_all_by_event")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get requests by event: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows, span)
}

// FindAllByRequester returns every request created by the user
func (r *PostgresRequestRepository) FindAllByRequester(ctx context.Context, requesterID string) ([]*domain.ParticipationRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.request.find_all_by_requester")
	defer span.End()

	span.SetAttributes(attribute.String("requester_id", requesterID))

	query := `
		SELECT ` + requestColumns + `
		FROM participation_requests
		WHERE requester_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query, requesterID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get requests by requester: %w", err)
	}
	defer rows.Close()

	return collectRequests(rows, span)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanRequestRow scans a single row into a ParticipationRequest
func scanRequestRow(row rowScanner) (*domain.ParticipationRequest, error) {
	req := &domain.ParticipationRequest{}
	var status string

	err := row.Scan(&req.ID, &req.EventID, &req.RequesterID, &status, &req.CreatedAt)
	if err != nil {
		return nil, err
	}

	req.Status = domain.RequestStatus(status)
	return req, nil
}

// collectRequests drains rows into a slice
func collectRequests(rows pgx.Rows, span trace.Span) ([]*domain.ParticipationRequest, error) {
	var requests []*domain.ParticipationRequest
	for rows.Next() {
		req, err := scanRequestRow(rows)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("error iterating requests: %w", err)
	}

	span.SetAttributes(attribute.Int("count", len(requests)))
	span.SetStatus(codes.Ok, "")
	return requests, nil
}

// Ensure PostgresRequestRepository implements RequestLedger
var _ RequestLedger = (*PostgresRequestRepository)(nil)
