package workflow

import (
	"context"
	"fmt"

	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/storage"
)

// EventWorkflow drives the event lifecycle: direct creation, guarded field
// writes, status transitions, public token issuance, and the administrative
// unlock.
type EventWorkflow struct {
	events storage.EventStore
	opts   options
}

// NewEventWorkflow creates an event workflow over the given store.
func NewEventWorkflow(events storage.EventStore, opts ...Option) *EventWorkflow {
	return &EventWorkflow{events: events, opts: newOptions(opts)}
}

// Create creates a draft event directly, without an intake.
func (w *EventWorkflow) Create(ctx context.Context, input event.CreateEventInput) (event.Event, error) {
	ev, err := event.CreateEvent(input, w.opts.now, w.opts.newID)
	if err != nil {
		return event.Event{}, err
	}
	if err := w.events.CreateEvent(ctx, ev); err != nil {
		return event.Event{}, err
	}
	w.opts.logger.Info().Str("event_id", ev.ID).Str("planner_id", ev.PlannerID).Msg("event created")
	return ev, nil
}

// Get fetches one event by ID.
func (w *EventWorkflow) Get(ctx context.Context, id string) (event.Event, error) {
	return w.events.GetEvent(ctx, id)
}

// GetByPublicToken fetches the read-only client view of an event.
func (w *EventWorkflow) GetByPublicToken(ctx context.Context, token string) (event.Event, error) {
	return w.events.FindEventByPublicToken(ctx, token)
}

// List lists a planner's events.
func (w *EventWorkflow) List(ctx context.Context, plannerID string) ([]event.Event, error) {
	return w.events.ListEventsByPlanner(ctx, plannerID)
}

// Update applies a partial field patch to one event. The edit lock holds:
// APPROVED and ARCHIVED events refuse field writes.
func (w *EventWorkflow) Update(ctx context.Context, id string, patch event.UpdateEventInput) (event.Event, error) {
	ev, err := w.events.GetEvent(ctx, id)
	if err != nil {
		return event.Event{}, err
	}
	if err := event.ValidateOperation(ev.Status, event.OpFieldWrite); err != nil {
		return event.Event{}, err
	}
	if patch.IsEmpty() {
		return ev, nil
	}
	if patch.EventDate != nil {
		if err := event.ValidateEventDate(*patch.EventDate, w.opts.now().UTC()); err != nil {
			return event.Event{}, err
		}
	}

	updated := event.ApplyUpdate(ev, patch, w.opts.now)
	if err := w.events.UpdateEvent(ctx, updated, ev.Status); err != nil {
		return event.Event{}, err
	}
	return updated, nil
}

// TransitionStatus moves one event along the lifecycle graph.
func (w *EventWorkflow) TransitionStatus(ctx context.Context, id string, target event.Status) (event.Event, error) {
	ev, err := w.events.GetEvent(ctx, id)
	if err != nil {
		return event.Event{}, err
	}
	updated, err := event.TransitionStatus(ev, target, w.opts.now)
	if err != nil {
		return event.Event{}, err
	}
	if err := w.events.UpdateEvent(ctx, updated, ev.Status); err != nil {
		return event.Event{}, err
	}
	w.opts.logger.Info().
		Str("event_id", ev.ID).
		Str("from", event.StatusLabel(ev.Status)).
		Str("to", event.StatusLabel(target)).
		Msg("event status changed")
	return updated, nil
}

// Archive moves one event to ARCHIVED.
func (w *EventWorkflow) Archive(ctx context.Context, id string) (event.Event, error) {
	return w.TransitionStatus(ctx, id, event.StatusArchived)
}

// Delete removes one event. Only drafts may be deleted; anything further
// along the lifecycle is archived instead.
func (w *EventWorkflow) Delete(ctx context.Context, id string) error {
	ev, err := w.events.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	if err := event.ValidateOperation(ev.Status, event.OpDelete); err != nil {
		return err
	}
	if err := w.events.DeleteEvent(ctx, id, ev.Status); err != nil {
		return err
	}
	w.opts.logger.Info().Str("event_id", id).Msg("draft event deleted")
	return nil
}

// EnsurePublicToken returns the event with a public read token, issuing one
// if none exists yet.
func (w *EventWorkflow) EnsurePublicToken(ctx context.Context, id string) (event.Event, error) {
	ev, err := w.events.GetEvent(ctx, id)
	if err != nil {
		return event.Event{}, err
	}
	if err := event.ValidateOperation(ev.Status, event.OpTokenIssue); err != nil {
		return event.Event{}, err
	}
	if ev.PublicToken != "" {
		return ev, nil
	}
	return w.issueToken(ctx, ev)
}

// RegeneratePublicToken replaces the public read token, invalidating any
// previously shared link.
func (w *EventWorkflow) RegeneratePublicToken(ctx context.Context, id string) (event.Event, error) {
	ev, err := w.events.GetEvent(ctx, id)
	if err != nil {
		return event.Event{}, err
	}
	if err := event.ValidateOperation(ev.Status, event.OpTokenIssue); err != nil {
		return event.Event{}, err
	}
	return w.issueToken(ctx, ev)
}

func (w *EventWorkflow) issueToken(ctx context.Context, ev event.Event) (event.Event, error) {
	token, err := w.opts.newToken()
	if err != nil {
		return event.Event{}, fmt.Errorf("generate public token: %w", err)
	}
	updated := ev
	updated.PublicToken = token
	updated.UpdatedAt = w.opts.now().UTC()
	if err := w.events.UpdateEvent(ctx, updated, ev.Status); err != nil {
		return event.Event{}, err
	}
	return updated, nil
}

// Unlock reverses an approval administratively, returning the event to
// PLANNING so fields can be edited again.
func (w *EventWorkflow) Unlock(ctx context.Context, id string) (event.Event, error) {
	ev, err := w.events.GetEvent(ctx, id)
	if err != nil {
		return event.Event{}, err
	}
	unlocked, err := event.Unlock(ev, w.opts.now)
	if err != nil {
		return event.Event{}, err
	}
	if err := w.events.UpdateEvent(ctx, unlocked, ev.Status); err != nil {
		return event.Event{}, err
	}
	w.opts.logger.Warn().Str("event_id", ev.ID).Msg("approved event unlocked")
	return unlocked, nil
}
