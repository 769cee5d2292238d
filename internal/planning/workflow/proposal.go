package workflow

import (
	"context"

	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/planning/proposal"
	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
	"github.com/planwellhq/planwell/internal/storage"
)

// ProposalWorkflow drives the proposal lifecycle and keeps the owning
// event's status in step with client decisions.
type ProposalWorkflow struct {
	proposals storage.ProposalStore
	events    storage.EventStore
	opts      options
}

// NewProposalWorkflow creates a proposal workflow over the given stores.
func NewProposalWorkflow(proposals storage.ProposalStore, events storage.EventStore, opts ...Option) *ProposalWorkflow {
	return &ProposalWorkflow{
		proposals: proposals,
		events:    events,
		opts:      newOptions(opts),
	}
}

// Create assembles a new draft proposal under an existing event.
func (w *ProposalWorkflow) Create(ctx context.Context, input proposal.CreateProposalInput) (proposal.Proposal, error) {
	ev, err := w.events.GetEvent(ctx, input.EventID)
	if err != nil {
		return proposal.Proposal{}, err
	}
	if err := event.ValidateOperation(ev.Status, event.OpFieldWrite); err != nil {
		return proposal.Proposal{}, err
	}

	p, err := proposal.CreateProposal(input, w.opts.now, w.opts.newID, w.opts.newToken)
	if err != nil {
		return proposal.Proposal{}, err
	}
	if err := w.proposals.CreateProposal(ctx, p); err != nil {
		return proposal.Proposal{}, err
	}
	w.opts.logger.Info().
		Str("proposal_id", p.ID).
		Str("event_id", p.EventID).
		Int64("total_cents", p.TotalCents).
		Msg("proposal created")
	return p, nil
}

// Get fetches one proposal by ID.
func (w *ProposalWorkflow) Get(ctx context.Context, id string) (proposal.Proposal, error) {
	return w.proposals.GetProposal(ctx, id)
}

// GetByToken fetches one proposal by its client access token.
func (w *ProposalWorkflow) GetByToken(ctx context.Context, token string) (proposal.Proposal, error) {
	return w.proposals.FindProposalByToken(ctx, token)
}

// ListByEvent lists an event's proposals.
func (w *ProposalWorkflow) ListByEvent(ctx context.Context, eventID string) ([]proposal.Proposal, error) {
	return w.proposals.ListProposalsByEvent(ctx, eventID)
}

// Send puts a proposal in front of the client and moves the owning event to
// PROPOSED. The event must be in PLANNING, or already PROPOSED from a sibling
// send. Re-sending an already sent proposal is an idempotent success.
func (w *ProposalWorkflow) Send(ctx context.Context, id string) (proposal.Proposal, error) {
	p, err := w.proposals.GetProposal(ctx, id)
	if err != nil {
		return proposal.Proposal{}, err
	}
	sent, err := proposal.Send(p, w.opts.now)
	if err != nil {
		return proposal.Proposal{}, err
	}
	if sent.Status == p.Status {
		return sent, nil
	}

	ev, err := w.events.GetEvent(ctx, p.EventID)
	if err != nil {
		return proposal.Proposal{}, err
	}
	var moved event.Event
	follow := ev.Status != event.StatusProposed
	if follow {
		moved, err = event.TransitionStatus(ev, event.StatusProposed, w.opts.now)
		if err != nil {
			return proposal.Proposal{}, err
		}
	}

	if err := w.proposals.UpdateProposal(ctx, sent, p.Status); err != nil {
		return proposal.Proposal{}, err
	}
	if follow {
		// a sibling send can win the race to PROPOSED underneath us
		if err := w.events.UpdateEvent(ctx, moved, ev.Status); err != nil {
			w.opts.logger.Warn().Err(err).
				Str("proposal_id", p.ID).
				Str("event_id", p.EventID).
				Msg("event did not follow proposal send")
		}
	}

	w.opts.logger.Info().Str("proposal_id", p.ID).Str("event_id", p.EventID).Msg("proposal sent")
	return sent, nil
}

// MarkViewed records the client opening a proposal link. Repeat views are
// idempotent.
func (w *ProposalWorkflow) MarkViewed(ctx context.Context, token string) (proposal.Proposal, error) {
	p, err := w.proposals.FindProposalByToken(ctx, token)
	if err != nil {
		return proposal.Proposal{}, err
	}
	viewed, err := proposal.MarkViewed(p, w.opts.now)
	if err != nil {
		return proposal.Proposal{}, err
	}
	if viewed.Status == p.Status {
		return viewed, nil
	}
	if err := w.proposals.UpdateProposal(ctx, viewed, p.Status); err != nil {
		return proposal.Proposal{}, err
	}
	return viewed, nil
}

// Approve records the client's acceptance and edit-locks the owning event.
//
// The proposal is decided first, then the event follows PROPOSED→APPROVED.
// If the event write fails the proposal decision is rolled back so the two
// records never disagree; a failed rollback surfaces as a partial failure
// carrying both IDs for reconciliation.
func (w *ProposalWorkflow) Approve(ctx context.Context, token, clientNotes string) (proposal.Proposal, error) {
	ctx, span := w.opts.tracer.Start(ctx, "ProposalWorkflow.Approve")
	defer span.End()

	p, err := w.proposals.FindProposalByToken(ctx, token)
	if err != nil {
		return proposal.Proposal{}, err
	}
	approved, err := proposal.Approve(p, clientNotes, w.opts.now)
	if err != nil {
		return proposal.Proposal{}, err
	}
	if err := w.proposals.UpdateProposal(ctx, approved, p.Status); err != nil {
		return proposal.Proposal{}, err
	}

	if err := w.advanceEvent(ctx, p.EventID, event.StatusApproved); err != nil {
		if rollbackErr := w.proposals.UpdateProposal(ctx, p, approved.Status); rollbackErr != nil {
			w.opts.logger.Error().Err(rollbackErr).
				Str("proposal_id", p.ID).
				Str("event_id", p.EventID).
				Msg("approval rollback failed")
			return proposal.Proposal{}, apperrors.WrapWithMetadata(
				apperrors.CodeApprovalPartialFailure,
				"proposal approved but event did not follow",
				map[string]string{"ProposalID": p.ID, "EventID": p.EventID},
				err,
			)
		}
		return proposal.Proposal{}, err
	}

	w.opts.logger.Info().Str("proposal_id", p.ID).Str("event_id", p.EventID).Msg("proposal approved")
	return approved, nil
}

// Reject records the client's refusal and returns the owning event to
// PLANNING. If the event already left PROPOSED, the rejection still stands
// and the event stays where it is.
func (w *ProposalWorkflow) Reject(ctx context.Context, token, clientNotes string) (proposal.Proposal, error) {
	ctx, span := w.opts.tracer.Start(ctx, "ProposalWorkflow.Reject")
	defer span.End()

	p, err := w.proposals.FindProposalByToken(ctx, token)
	if err != nil {
		return proposal.Proposal{}, err
	}
	rejected, err := proposal.Reject(p, clientNotes, w.opts.now)
	if err != nil {
		return proposal.Proposal{}, err
	}
	if err := w.proposals.UpdateProposal(ctx, rejected, p.Status); err != nil {
		return proposal.Proposal{}, err
	}

	if err := w.advanceEvent(ctx, p.EventID, event.StatusPlanning); err != nil {
		w.opts.logger.Warn().Err(err).
			Str("proposal_id", p.ID).
			Str("event_id", p.EventID).
			Msg("event did not follow proposal rejection")
	}

	w.opts.logger.Info().Str("proposal_id", p.ID).Str("event_id", p.EventID).Msg("proposal rejected")
	return rejected, nil
}

// advanceEvent moves the owning event with a guarded write keyed on the
// status it was read at.
func (w *ProposalWorkflow) advanceEvent(ctx context.Context, eventID string, target event.Status) error {
	ev, err := w.events.GetEvent(ctx, eventID)
	if err != nil {
		return err
	}
	updated, err := event.TransitionStatus(ev, target, w.opts.now)
	if err != nil {
		return err
	}
	return w.events.UpdateEvent(ctx, updated, ev.Status)
}
