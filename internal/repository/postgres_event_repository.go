package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/eventlane/admission-service/internal/domain"
	"github.com/eventlane/admission-service/pkg/telemetry"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresEventRepository implements EventLookup over the events table owned
// by the event-management service. Admission only ever reads from it.
type PostgresEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresEventRepository creates a new PostgresEventRepository
func NewPostgresEventRepository(pool *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{pool: pool}
}

// FindByID returns the event capacity view
func (r *PostgresEventRepository) FindByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.event.find_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("event_id", eventID))

	query := `
		SELECT id, initiator_id, state, participant_limit, request_moderation, created_at
		FROM events
		WHERE id = $1
	`

	event := &domain.Event{}
	var state string

	err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&event.ID,
		&event.OwnerID,
		&state,
		&event.ParticipantLimit,
		&event.RequestModeration,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, domain.ErrEventNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	event.State = domain.EventState(state)
	span.SetStatus(codes.Ok, "")
	return event, nil
}

// Ensure PostgresEventRepository implements EventLookup
var _ EventLookup = (*PostgresEventRepository)(nil)
