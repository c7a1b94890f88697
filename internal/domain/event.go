package domain

import "time"

// EventState is the publication lifecycle state of an event
type EventState string

const (
	EventStateDraft         EventState = "DRAFT"
	EventStatePendingReview EventState = "PENDING_REVIEW"
	EventStatePublished     EventState = "PUBLISHED"
	EventStateCanceled      EventState = "CANCELED"
)

// String returns the state as a string
func (s EventState) String() string {
	return string(s)
}

// Event is the capacity view of an event as seen by admission control.
// Event management itself (creation, publication, editing) lives outside
// this service; admission only reads this projection.
type Event struct {
	ID                string     `json:"id"`
	OwnerID           string     `json:"owner_id"`
	State             EventState `json:"state"`
	ParticipantLimit  int        `json:"participant_limit"` // 0 means unlimited
	RequestModeration bool       `json:"request_moderation"`
	CreatedAt         time.Time  `json:"created_at"`
}

// IsPublished reports whether the event accepts new participation requests
func (e *Event) IsPublished() bool {
	return e.State == EventStatePublished
}

// Unlimited reports whether the event has no participant limit
func (e *Event) Unlimited() bool {
	return e.ParticipantLimit == 0
}

// AutoConfirms reports whether a newly admitted request bypasses the PENDING
// queue. Either axis alone forces auto-confirmation: an unlimited event never
// queues, and an unmoderated event confirms even under a limit.
func (e *Event) AutoConfirms() bool {
	return e.Unlimited() || !e.RequestModeration
}

// OwnedBy reports whether the given user is the event initiator
func (e *Event) OwnedBy(userID string) bool {
	return e.OwnerID == userID
}
