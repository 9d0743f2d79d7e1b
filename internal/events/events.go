// Package events describes the change notifications emitted by the domain
// services after a successful mutation.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"hivecore/pkg/domain"
)

// Action names the kind of change an Event reports.
type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionStatusChanged Action = "status_changed"
	ActionPurged        Action = "purged"
)

// Event is a single committed change to one entity.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Entity     domain.EntityType `json:"entity"`
	Action     Action            `json:"action"`
	EntityID   int               `json:"entityId"`
	Code       string            `json:"code"`
	IsDeleted  bool              `json:"isDeleted"`
	OccurredAt time.Time         `json:"occurredAt"`
}

// New builds an event for r with a fresh id.
func New(entity domain.EntityType, action Action, r domain.Record, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Entity:     entity,
		Action:     action,
		EntityID:   r.Identity(),
		Code:       r.UniqueCode(),
		IsDeleted:  r.Deleted(),
		OccurredAt: at.UTC(),
	}
}

// Publisher delivers events to interested parties.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish drops evt and always succeeds.
func (Nop) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish appends evt.
func (r *Recorder) Publish(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset forgets recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}
