package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventlane/admission-service/internal/domain"
)

func insertRequest(t *testing.T, ledger *MemoryRequestLedger, eventID, requesterID string, status domain.RequestStatus, createdAt time.Time) *domain.ParticipationRequest {
	t.Helper()
	req, err := ledger.Insert(context.Background(), &domain.ParticipationRequest{
		EventID:     eventID,
		RequesterID: requesterID,
		Status:      status,
		CreatedAt:   createdAt,
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	return req
}

func TestInsertAssignsID(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	req := insertRequest(t, ledger, "event-1", "user-1", domain.StatusPending, time.Now())
	if req.ID == "" {
		t.Error("expected an assigned id")
	}
}

func TestInsertRejectsInvalidRequest(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *domain.ParticipationRequest
		wantErr error
	}{
		{
			name:    "missing event id",
			req:     &domain.ParticipationRequest{RequesterID: "user-1", Status: domain.StatusPending},
			wantErr: domain.ErrInvalidEventID,
		},
		{
			name:    "missing requester id",
			req:     &domain.ParticipationRequest{EventID: "event-1", Status: domain.StatusPending},
			wantErr: domain.ErrInvalidUserID,
		},
		{
			name:    "unknown status",
			req:     &domain.ParticipationRequest{EventID: "event-1", RequesterID: "user-1", Status: "ARCHIVED"},
			wantErr: domain.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ledger.Insert(ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Insert() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestInsertEnforcesActivePairUniqueness(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	ctx := context.Background()
	now := time.Now()

	insertRequest(t, ledger, "event-1", "user-1", domain.StatusPending, now)

	if _, err := ledger.Insert(ctx, &domain.ParticipationRequest{
		EventID: "event-1", RequesterID: "user-1", Status: domain.StatusPending, CreatedAt: now,
	}); !errors.Is(err, domain.ErrDuplicateRequest) {
		t.Errorf("duplicate insert error = %v, want ErrDuplicateRequest", err)
	}

	// A different event or a different requester is a distinct pair
	insertRequest(t, ledger, "event-2", "user-1", domain.StatusPending, now)
	insertRequest(t, ledger, "event-1", "user-2", domain.StatusPending, now)
}

func TestInsertAllowsNewRequestAfterCancellation(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	ctx := context.Background()
	now := time.Now()

	first := insertRequest(t, ledger, "event-1", "user-1", domain.StatusPending, now)
	if _, err := ledger.UpdateStatus(ctx, first.ID, domain.StatusCanceled); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	// The canceled row stays but no longer blocks the pair
	insertRequest(t, ledger, "event-1", "user-1", domain.StatusPending, now.Add(time.Second))
}

func TestUpdateStatusTransitionGraph(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.RequestStatus
		to      domain.RequestStatus
		wantErr error
	}{
		{name: "pending to confirmed", from: domain.StatusPending, to: domain.StatusConfirmed},
		{name: "pending to rejected", from: domain.StatusPending, to: domain.StatusRejected},
		{name: "pending to canceled", from: domain.StatusPending, to: domain.StatusCanceled},
		{name: "confirmed is terminal", from: domain.StatusConfirmed, to: domain.StatusCanceled, wantErr: domain.ErrInvalidTransition},
		{name: "rejected is terminal", from: domain.StatusRejected, to: domain.StatusConfirmed, wantErr: domain.ErrInvalidTransition},
		{name: "canceled is terminal", from: domain.StatusCanceled, to: domain.StatusPending, wantErr: domain.ErrInvalidTransition},
		{name: "unknown target", from: domain.StatusPending, to: "ARCHIVED", wantErr: domain.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := NewMemoryRequestLedger()
			req := insertRequest(t, ledger, "event-1", "user-1", tt.from, time.Now())

			updated, err := ledger.UpdateStatus(context.Background(), req.ID, tt.to)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("UpdateStatus() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus() unexpected error: %v", err)
			}
			if updated.Status != tt.to {
				t.Errorf("status = %s, want %s", updated.Status, tt.to)
			}
		})
	}
}

func TestUpdateStatusUnknownRequest(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	if _, err := ledger.UpdateStatus(context.Background(), "missing", domain.StatusCanceled); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("error = %v, want ErrRequestNotFound", err)
	}
}

func TestCountConfirmedCountsOnlyConfirmed(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	now := time.Now()
	insertRequest(t, ledger, "event-1", "user-1", domain.StatusConfirmed, now)
	insertRequest(t, ledger, "event-1", "user-2", domain.StatusPending, now)
	insertRequest(t, ledger, "event-1", "user-3", domain.StatusRejected, now)
	insertRequest(t, ledger, "event-2", "user-4", domain.StatusConfirmed, now)

	count, err := ledger.CountConfirmed(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("CountConfirmed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestFindActiveSkipsCanceled(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	ctx := context.Background()
	req := insertRequest(t, ledger, "event-1", "user-1", domain.StatusPending, time.Now())

	found, err := ledger.FindActive(ctx, "event-1", "user-1")
	if err != nil {
		t.Fatalf("FindActive: %v", err)
	}
	if found.ID != req.ID {
		t.Errorf("found id = %s, want %s", found.ID, req.ID)
	}

	if _, err := ledger.UpdateStatus(ctx, req.ID, domain.StatusCanceled); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if _, err := ledger.FindActive(ctx, "event-1", "user-1"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("FindActive after cancel error = %v, want ErrRequestNotFound", err)
	}
}

func TestFindByIDsOrdersByCreatedAt(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	newest := insertRequest(t, ledger, "event-1", "user-3", domain.StatusPending, base.Add(2*time.Second))
	oldest := insertRequest(t, ledger, "event-1", "user-1", domain.StatusPending, base)
	middle := insertRequest(t, ledger, "event-1", "user-2", domain.StatusPending, base.Add(time.Second))

	got, err := ledger.FindByIDs(context.Background(), []string{newest.ID, oldest.ID, middle.ID, "missing"})
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3 (unknown ids are skipped)", len(got))
	}
	wantOrder := []string{oldest.ID, middle.ID, newest.ID}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, want)
		}
	}
}

func TestFindByIDsBreaksTiesByID(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a := insertRequest(t, ledger, "event-1", "user-1", domain.StatusPending, at)
	b := insertRequest(t, ledger, "event-1", "user-2", domain.StatusPending, at)

	got, err := ledger.FindByIDs(context.Background(), []string{b.ID, a.ID})
	if err != nil {
		t.Fatalf("FindByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID > got[1].ID {
		t.Errorf("equal timestamps must order by id: got [%s %s]", got[0].ID, got[1].ID)
	}
}

func TestFindAllByEvent(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	insertRequest(t, ledger, "event-1", "user-2", domain.StatusPending, base.Add(time.Second))
	insertRequest(t, ledger, "event-1", "user-1", domain.StatusConfirmed, base)
	insertRequest(t, ledger, "event-2", "user-3", domain.StatusPending, base)

	got, err := ledger.FindAllByEvent(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("FindAllByEvent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].RequesterID != "user-1" || got[1].RequesterID != "user-2" {
		t.Errorf("order = [%s %s], want [user-1 user-2]", got[0].RequesterID, got[1].RequesterID)
	}
}

func TestFindAllByRequester(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	insertRequest(t, ledger, "event-2", "user-1", domain.StatusCanceled, base)
	insertRequest(t, ledger, "event-1", "user-1", domain.StatusPending, base.Add(time.Second))
	insertRequest(t, ledger, "event-1", "user-2", domain.StatusPending, base)

	got, err := ledger.FindAllByRequester(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("FindAllByRequester: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].EventID != "event-2" || got[1].EventID != "event-1" {
		t.Errorf("order = [%s %s], want [event-2 event-1]", got[0].EventID, got[1].EventID)
	}
}

func TestLedgerReturnsCopies(t *testing.T) {
	ledger := NewMemoryRequestLedger()
	req := insertRequest(t, ledger, "event-1", "user-1", domain.StatusPending, time.Now())

	// Mutating the returned value must not leak into the store
	req.Status = domain.StatusConfirmed

	stored, err := ledger.FindByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Status != domain.StatusPending {
		t.Errorf("stored status = %s, want PENDING", stored.Status)
	}
}
