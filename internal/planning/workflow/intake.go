package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/planwellhq/planwell/internal/planning/client"
	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/planning/intake"
	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
	"github.com/planwellhq/planwell/internal/storage"
)

// IntakeWorkflow drives the intake lifecycle, including the one-way
// conversion into an event.
type IntakeWorkflow struct {
	intakes  storage.IntakeStore
	events   storage.EventStore
	profiles storage.ClientProfileStore
	opts     options
}

// NewIntakeWorkflow creates an intake workflow over the given stores.
func NewIntakeWorkflow(intakes storage.IntakeStore, events storage.EventStore, profiles storage.ClientProfileStore, opts ...Option) *IntakeWorkflow {
	return &IntakeWorkflow{
		intakes:  intakes,
		events:   events,
		profiles: profiles,
		opts:     newOptions(opts),
	}
}

// Create opens a new draft intake.
func (w *IntakeWorkflow) Create(ctx context.Context, input intake.CreateIntakeInput) (intake.Intake, error) {
	in, err := intake.CreateIntake(input, w.opts.now, w.opts.newID, w.opts.newToken)
	if err != nil {
		return intake.Intake{}, err
	}
	if err := w.intakes.CreateIntake(ctx, in); err != nil {
		return intake.Intake{}, err
	}
	w.opts.logger.Info().Str("intake_id", in.ID).Str("created_by", intake.CreatorLabel(in.CreatedBy)).Msg("intake created")
	return in, nil
}

// Get fetches one intake by ID.
func (w *IntakeWorkflow) Get(ctx context.Context, id string) (intake.Intake, error) {
	return w.intakes.GetIntake(ctx, id)
}

// GetByToken fetches one intake by its access token.
func (w *IntakeWorkflow) GetByToken(ctx context.Context, token string) (intake.Intake, error) {
	return w.intakes.FindIntakeByToken(ctx, token)
}

// List lists a planner's intakes.
func (w *IntakeWorkflow) List(ctx context.Context, plannerID string) ([]intake.Intake, error) {
	return w.intakes.ListIntakesByPlanner(ctx, plannerID)
}

// Update applies a partial patch to one intake.
func (w *IntakeWorkflow) Update(ctx context.Context, id string, patch intake.UpdateIntakeInput) (intake.Intake, error) {
	in, err := w.intakes.GetIntake(ctx, id)
	if err != nil {
		return intake.Intake{}, err
	}
	return w.applyUpdate(ctx, in, patch)
}

// UpdateByToken applies a partial patch to the intake behind an access token.
func (w *IntakeWorkflow) UpdateByToken(ctx context.Context, token string, patch intake.UpdateIntakeInput) (intake.Intake, error) {
	in, err := w.intakes.FindIntakeByToken(ctx, token)
	if err != nil {
		return intake.Intake{}, err
	}
	return w.applyUpdate(ctx, in, patch)
}

func (w *IntakeWorkflow) applyUpdate(ctx context.Context, in intake.Intake, patch intake.UpdateIntakeInput) (intake.Intake, error) {
	updated, err := intake.ApplyUpdate(in, patch, w.opts.now)
	if err != nil {
		return intake.Intake{}, err
	}
	if err := w.intakes.UpdateIntake(ctx, updated, in.Status); err != nil {
		return intake.Intake{}, err
	}
	return updated, nil
}

// Submit validates and submits one intake.
func (w *IntakeWorkflow) Submit(ctx context.Context, id string) (intake.Intake, error) {
	in, err := w.intakes.GetIntake(ctx, id)
	if err != nil {
		return intake.Intake{}, err
	}
	return w.submit(ctx, in)
}

// SubmitByToken submits the intake behind an access token.
func (w *IntakeWorkflow) SubmitByToken(ctx context.Context, token string) (intake.Intake, error) {
	in, err := w.intakes.FindIntakeByToken(ctx, token)
	if err != nil {
		return intake.Intake{}, err
	}
	return w.submit(ctx, in)
}

func (w *IntakeWorkflow) submit(ctx context.Context, in intake.Intake) (intake.Intake, error) {
	submitted, err := intake.Submit(in, w.opts.now)
	if err != nil {
		return intake.Intake{}, err
	}
	if err := w.intakes.UpdateIntake(ctx, submitted, in.Status); err != nil {
		return intake.Intake{}, err
	}
	w.opts.logger.Info().Str("intake_id", in.ID).Msg("intake submitted")
	return submitted, nil
}

// ConvertToEvent converts one submitted intake into a draft event.
//
// The conversion is one-way and exactly-once: the intake row is stamped
// CONVERTED through a guarded write, so a racing second conversion loses
// and receives the idempotency conflict. If the stamp fails after the event
// row was created, the orphan event is deleted; if that rollback also fails
// the caller receives a partial-failure error carrying both IDs.
func (w *IntakeWorkflow) ConvertToEvent(ctx context.Context, intakeID string) (event.Event, error) {
	ctx, span := w.opts.tracer.Start(ctx, "IntakeWorkflow.ConvertToEvent")
	defer span.End()

	in, err := w.intakes.GetIntake(ctx, intakeID)
	if err != nil {
		return event.Event{}, err
	}

	// let the domain refuse wrong statuses before any write happens
	stamped, err := intake.MarkConverted(in, "", w.opts.now)
	if err != nil {
		return event.Event{}, err
	}

	// the profile is bookkeeping; conversion proceeds without it
	if _, err := w.EnsureClientProfile(ctx, in); err != nil {
		w.opts.logger.Warn().Err(err).Str("intake_id", in.ID).Msg("client profile not ensured during conversion")
	}

	ev, created, err := w.convertedEvent(ctx, in)
	if err != nil {
		return event.Event{}, err
	}

	stamped.ConvertedEventID = ev.ID
	if err := w.intakes.UpdateIntake(ctx, stamped, in.Status); err != nil {
		if !created {
			return event.Event{}, err
		}
		if rollbackErr := w.events.DeleteEvent(ctx, ev.ID, event.StatusDraft); rollbackErr != nil {
			w.opts.logger.Error().Err(rollbackErr).
				Str("intake_id", in.ID).
				Str("event_id", ev.ID).
				Msg("conversion stamp and rollback both failed")
			return event.Event{}, apperrors.WrapWithMetadata(
				apperrors.CodeConversionPartialFailure,
				"conversion left an orphan event behind",
				map[string]string{"IntakeID": in.ID, "EventID": ev.ID},
				err,
			)
		}
		return event.Event{}, err
	}

	w.opts.logger.Info().Str("intake_id", in.ID).Str("event_id", ev.ID).Msg("intake converted")
	return ev, nil
}

// convertedEvent creates the draft event for one intake, or adopts the
// event an earlier interrupted conversion already created.
func (w *IntakeWorkflow) convertedEvent(ctx context.Context, in intake.Intake) (event.Event, bool, error) {
	ev, err := event.CreateConvertedEvent(event.CreateEventInput{
		PlannerID:   in.PlannerID,
		ClientName:  in.ClientName,
		Phone:       in.Phone,
		Email:       in.Email,
		EventDate:   in.EventDate,
		VenueType:   in.VenueType,
		GuestCount:  in.GuestCount,
		BudgetCents: in.BudgetMaxCents,
	}, in.ID, w.opts.now, w.opts.newID)
	if err != nil {
		return event.Event{}, false, err
	}

	err = w.events.CreateEvent(ctx, ev)
	if err == nil {
		return ev, true, nil
	}
	if !errors.Is(err, storage.ErrAlreadyExists) {
		return event.Event{}, false, err
	}

	existing, findErr := w.events.FindEventBySubmissionID(ctx, in.ID)
	if findErr != nil {
		return event.Event{}, false, fmt.Errorf("adopt existing converted event: %w", findErr)
	}
	w.opts.logger.Warn().Str("intake_id", in.ID).Str("event_id", existing.ID).Msg("adopting event from interrupted conversion")
	return existing, false, nil
}

// EnsureClientProfile finds or creates the client profile behind one intake.
func (w *IntakeWorkflow) EnsureClientProfile(ctx context.Context, in intake.Intake) (client.Profile, error) {
	existing, err := w.profiles.FindProfileByPhone(ctx, in.PlannerID, in.Phone)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return client.Profile{}, err
	}

	profile, err := client.CreateProfile(client.CreateProfileInput{
		PlannerID: in.PlannerID,
		Name:      in.ClientName,
		Phone:     in.Phone,
		Email:     in.Email,
	}, w.opts.now, w.opts.newID)
	if err != nil {
		return client.Profile{}, err
	}
	if err := w.profiles.CreateProfile(ctx, profile); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			// lost a create race; the winner's record serves
			return w.profiles.FindProfileByPhone(ctx, in.PlannerID, in.Phone)
		}
		return client.Profile{}, err
	}
	return profile, nil
}

// ReconcileConversions finishes conversions that were interrupted between
// the event insert and the intake stamp. It returns the IDs of the intakes
// it repaired.
func (w *IntakeWorkflow) ReconcileConversions(ctx context.Context) ([]string, error) {
	ctx, span := w.opts.tracer.Start(ctx, "IntakeWorkflow.ReconcileConversions")
	defer span.End()

	submitted, err := w.intakes.ListIntakesByStatus(ctx, intake.StatusSubmitted)
	if err != nil {
		return nil, err
	}

	var repaired []string
	for _, in := range submitted {
		ev, err := w.events.FindEventBySubmissionID(ctx, in.ID)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return repaired, err
		}

		stamped, err := intake.MarkConverted(in, ev.ID, w.opts.now)
		if err != nil {
			return repaired, err
		}
		if err := w.intakes.UpdateIntake(ctx, stamped, in.Status); err != nil {
			if apperrors.IsCode(err, apperrors.CodeIntakeAlreadyConverted) {
				continue
			}
			return repaired, err
		}
		w.opts.logger.Warn().Str("intake_id", in.ID).Str("event_id", ev.ID).Msg("reconciled interrupted conversion")
		repaired = append(repaired, in.ID)
	}
	return repaired, nil
}
