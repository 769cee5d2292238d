package actions

import (
	"context"

	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/planning/intake"
	"github.com/planwellhq/planwell/internal/planning/proposal"
	"github.com/planwellhq/planwell/internal/planning/workflow"
)

// PlannerActions is the planner-facing surface. Every call names the acting
// planner and is refused unless that planner owns the record.
type PlannerActions struct {
	intakes   *workflow.IntakeWorkflow
	events    *workflow.EventWorkflow
	proposals *workflow.ProposalWorkflow
}

// NewPlannerActions creates the planner surface over the three workflows.
func NewPlannerActions(intakes *workflow.IntakeWorkflow, events *workflow.EventWorkflow, proposals *workflow.ProposalWorkflow) *PlannerActions {
	return &PlannerActions{intakes: intakes, events: events, proposals: proposals}
}

// CreateIntake opens a planner-owned intake, pre-filled or blank.
func (a *PlannerActions) CreateIntake(ctx context.Context, plannerID string, input intake.CreateIntakeInput) (intake.Intake, error) {
	input.PlannerID = plannerID
	if input.CreatedBy == intake.CreatorUnspecified {
		input.CreatedBy = intake.CreatorPlanner
	}
	return a.intakes.Create(ctx, input)
}

// GetIntake fetches one intake the planner owns.
func (a *PlannerActions) GetIntake(ctx context.Context, plannerID, intakeID string) (intake.Intake, error) {
	in, err := a.intakes.Get(ctx, intakeID)
	if err != nil {
		return intake.Intake{}, err
	}
	if in.PlannerID != plannerID {
		return intake.Intake{}, ownershipDenied("intake", intakeID)
	}
	return in, nil
}

// ListIntakes lists the planner's intakes.
func (a *PlannerActions) ListIntakes(ctx context.Context, plannerID string) ([]intake.Intake, error) {
	return a.intakes.List(ctx, plannerID)
}

// UpdateIntake patches one intake the planner owns.
func (a *PlannerActions) UpdateIntake(ctx context.Context, plannerID, intakeID string, patch intake.UpdateIntakeInput) (intake.Intake, error) {
	if _, err := a.GetIntake(ctx, plannerID, intakeID); err != nil {
		return intake.Intake{}, err
	}
	return a.intakes.Update(ctx, intakeID, patch)
}

// SubmitIntake submits one intake the planner owns.
func (a *PlannerActions) SubmitIntake(ctx context.Context, plannerID, intakeID string) (intake.Intake, error) {
	if _, err := a.GetIntake(ctx, plannerID, intakeID); err != nil {
		return intake.Intake{}, err
	}
	return a.intakes.Submit(ctx, intakeID)
}

// ConvertIntake converts one submitted intake the planner owns into an
// event.
func (a *PlannerActions) ConvertIntake(ctx context.Context, plannerID, intakeID string) (event.Event, error) {
	if _, err := a.GetIntake(ctx, plannerID, intakeID); err != nil {
		return event.Event{}, err
	}
	return a.intakes.ConvertToEvent(ctx, intakeID)
}

// CreateEvent creates a draft event owned by the planner.
func (a *PlannerActions) CreateEvent(ctx context.Context, plannerID string, input event.CreateEventInput) (event.Event, error) {
	input.PlannerID = plannerID
	return a.events.Create(ctx, input)
}

// GetEvent fetches one event the planner owns.
func (a *PlannerActions) GetEvent(ctx context.Context, plannerID, eventID string) (event.Event, error) {
	ev, err := a.events.Get(ctx, eventID)
	if err != nil {
		return event.Event{}, err
	}
	if ev.PlannerID != plannerID {
		return event.Event{}, ownershipDenied("event", eventID)
	}
	return ev, nil
}

// ListEvents lists the planner's events.
func (a *PlannerActions) ListEvents(ctx context.Context, plannerID string) ([]event.Event, error) {
	return a.events.List(ctx, plannerID)
}

// UpdateEvent patches one event the planner owns.
func (a *PlannerActions) UpdateEvent(ctx context.Context, plannerID, eventID string, patch event.UpdateEventInput) (event.Event, error) {
	if _, err := a.GetEvent(ctx, plannerID, eventID); err != nil {
		return event.Event{}, err
	}
	return a.events.Update(ctx, eventID, patch)
}

// TransitionEvent moves one event the planner owns along the lifecycle.
func (a *PlannerActions) TransitionEvent(ctx context.Context, plannerID, eventID string, target event.Status) (event.Event, error) {
	if _, err := a.GetEvent(ctx, plannerID, eventID); err != nil {
		return event.Event{}, err
	}
	return a.events.TransitionStatus(ctx, eventID, target)
}

// ArchiveEvent archives one event the planner owns.
func (a *PlannerActions) ArchiveEvent(ctx context.Context, plannerID, eventID string) (event.Event, error) {
	return a.TransitionEvent(ctx, plannerID, eventID, event.StatusArchived)
}

// DeleteEvent deletes one draft event the planner owns.
func (a *PlannerActions) DeleteEvent(ctx context.Context, plannerID, eventID string) error {
	if _, err := a.GetEvent(ctx, plannerID, eventID); err != nil {
		return err
	}
	return a.events.Delete(ctx, eventID)
}

// EnsurePublicToken issues the client read token for one event the planner
// owns.
func (a *PlannerActions) EnsurePublicToken(ctx context.Context, plannerID, eventID string) (event.Event, error) {
	if _, err := a.GetEvent(ctx, plannerID, eventID); err != nil {
		return event.Event{}, err
	}
	return a.events.EnsurePublicToken(ctx, eventID)
}

// RegeneratePublicToken rotates the client read token for one event the
// planner owns.
func (a *PlannerActions) RegeneratePublicToken(ctx context.Context, plannerID, eventID string) (event.Event, error) {
	if _, err := a.GetEvent(ctx, plannerID, eventID); err != nil {
		return event.Event{}, err
	}
	return a.events.RegeneratePublicToken(ctx, eventID)
}

// UnlockEvent reverses an approval on one event the planner owns.
func (a *PlannerActions) UnlockEvent(ctx context.Context, plannerID, eventID string) (event.Event, error) {
	if _, err := a.GetEvent(ctx, plannerID, eventID); err != nil {
		return event.Event{}, err
	}
	return a.events.Unlock(ctx, eventID)
}

// CreateProposal assembles a proposal under one event the planner owns.
func (a *PlannerActions) CreateProposal(ctx context.Context, plannerID string, input proposal.CreateProposalInput) (proposal.Proposal, error) {
	if _, err := a.GetEvent(ctx, plannerID, input.EventID); err != nil {
		return proposal.Proposal{}, err
	}
	return a.proposals.Create(ctx, input)
}

// GetProposal fetches one proposal under an event the planner owns.
func (a *PlannerActions) GetProposal(ctx context.Context, plannerID, proposalID string) (proposal.Proposal, error) {
	p, err := a.proposals.Get(ctx, proposalID)
	if err != nil {
		return proposal.Proposal{}, err
	}
	if _, err := a.GetEvent(ctx, plannerID, p.EventID); err != nil {
		return proposal.Proposal{}, err
	}
	return p, nil
}

// ListProposals lists the proposals under one event the planner owns.
func (a *PlannerActions) ListProposals(ctx context.Context, plannerID, eventID string) ([]proposal.Proposal, error) {
	if _, err := a.GetEvent(ctx, plannerID, eventID); err != nil {
		return nil, err
	}
	return a.proposals.ListByEvent(ctx, eventID)
}

// SendProposal puts one proposal under an event the planner owns in front
// of the client.
func (a *PlannerActions) SendProposal(ctx context.Context, plannerID, proposalID string) (proposal.Proposal, error) {
	if _, err := a.GetProposal(ctx, plannerID, proposalID); err != nil {
		return proposal.Proposal{}, err
	}
	return a.proposals.Send(ctx, proposalID)
}
