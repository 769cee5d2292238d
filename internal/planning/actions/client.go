package actions

import (
	"context"

	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/planning/intake"
	"github.com/planwellhq/planwell/internal/planning/proposal"
	"github.com/planwellhq/planwell/internal/planning/workflow"
)

// ClientActions is the unauthenticated client-facing surface. Every call is
// scoped to an access token; nothing is reachable by bare record ID.
type ClientActions struct {
	intakes   *workflow.IntakeWorkflow
	events    *workflow.EventWorkflow
	proposals *workflow.ProposalWorkflow
}

// NewClientActions creates the token-scoped client surface.
func NewClientActions(intakes *workflow.IntakeWorkflow, events *workflow.EventWorkflow, proposals *workflow.ProposalWorkflow) *ClientActions {
	return &ClientActions{intakes: intakes, events: events, proposals: proposals}
}

// GetIntake fetches the intake form behind a shared link.
func (a *ClientActions) GetIntake(ctx context.Context, token string) (intake.Intake, error) {
	return a.intakes.GetByToken(ctx, token)
}

// UpdateIntake saves a partial edit of the intake form.
func (a *ClientActions) UpdateIntake(ctx context.Context, token string, patch intake.UpdateIntakeInput) (intake.Intake, error) {
	return a.intakes.UpdateByToken(ctx, token, patch)
}

// SubmitIntake finalizes the intake form.
func (a *ClientActions) SubmitIntake(ctx context.Context, token string) (intake.Intake, error) {
	return a.intakes.SubmitByToken(ctx, token)
}

// ViewEvent fetches the read-only event summary behind a public link.
func (a *ClientActions) ViewEvent(ctx context.Context, publicToken string) (event.Event, error) {
	return a.events.GetByPublicToken(ctx, publicToken)
}

// ViewProposal fetches a proposal and records that the client opened it.
func (a *ClientActions) ViewProposal(ctx context.Context, token string) (proposal.Proposal, error) {
	return a.proposals.MarkViewed(ctx, token)
}

// ApproveProposal records the client's acceptance.
func (a *ClientActions) ApproveProposal(ctx context.Context, token, notes string) (proposal.Proposal, error) {
	return a.proposals.Approve(ctx, token, notes)
}

// RejectProposal records the client's refusal.
func (a *ClientActions) RejectProposal(ctx context.Context, token, notes string) (proposal.Proposal, error) {
	return a.proposals.Reject(ctx, token, notes)
}
