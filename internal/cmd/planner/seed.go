package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/planning/intake"
	"github.com/planwellhq/planwell/internal/planning/proposal"
	"github.com/planwellhq/planwell/internal/planning/workflow"
	"github.com/planwellhq/planwell/internal/storage"
)

const seedPlannerID = "planner-demo"

// seed populates one demo pipeline end to end: a converted intake with an
// approved proposal, plus a second intake still in flight. It runs through
// the real workflows so the seeded rows honor every guard.
func seed(ctx context.Context, store storage.Store, logger zerolog.Logger, out io.Writer) error {
	intakes := workflow.NewIntakeWorkflow(store, store, store, workflow.WithLogger(logger))
	events := workflow.NewEventWorkflow(store, workflow.WithLogger(logger))
	proposals := workflow.NewProposalWorkflow(store, store, workflow.WithLogger(logger))

	in, err := intakes.Create(ctx, intake.CreateIntakeInput{
		CreatedBy:  intake.CreatorClient,
		PlannerID:  seedPlannerID,
		ClientName: "Asha Verma",
		Phone:      "5550100100",
		Email:      "asha@example.com",
		GuestCount: 140,
		VenueType:  "outdoor",
		Preferences: map[string]string{
			"catering": "vegetarian, live counters",
			"music":    "dj with live percussion",
		},
	})
	if err != nil {
		return fmt.Errorf("seed intake: %w", err)
	}
	if _, err := intakes.Submit(ctx, in.ID); err != nil {
		return fmt.Errorf("seed submit: %w", err)
	}

	ev, err := intakes.ConvertToEvent(ctx, in.ID)
	if err != nil {
		return fmt.Errorf("seed convert: %w", err)
	}
	if _, err := events.TransitionStatus(ctx, ev.ID, event.StatusPlanning); err != nil {
		return fmt.Errorf("seed planning: %w", err)
	}

	p, err := proposals.Create(ctx, proposal.CreateProposalInput{
		EventID: ev.ID,
		Title:   "Gold Package",
		Tier:    proposal.TierGold,
		Items: []proposal.LineItem{
			{VendorName: "Bloom & Co", Description: "floral decor", Quantity: 1, UnitPriceCents: 180_000},
			{VendorName: "Spice Route Catering", Description: "dinner per plate", Quantity: 140, UnitPriceCents: 1_450},
			{VendorName: "Night Owl Sound", Description: "dj and sound", Quantity: 1, UnitPriceCents: 95_000},
		},
		DiscountCents: 25_000,
		TaxRateBps:    1_800,
	})
	if err != nil {
		return fmt.Errorf("seed proposal: %w", err)
	}
	if _, err := proposals.Send(ctx, p.ID); err != nil {
		return fmt.Errorf("seed send: %w", err)
	}
	if _, err := proposals.MarkViewed(ctx, p.Token); err != nil {
		return fmt.Errorf("seed view: %w", err)
	}
	if _, err := proposals.Approve(ctx, p.Token, "Looks wonderful, go ahead."); err != nil {
		return fmt.Errorf("seed approve: %w", err)
	}

	// a second intake left mid-form, for the in-progress view
	pending, err := intakes.Create(ctx, intake.CreateIntakeInput{
		CreatedBy:  intake.CreatorPlanner,
		PlannerID:  seedPlannerID,
		ClientName: "Rohan Mehta",
		Phone:      "5550100200",
	})
	if err != nil {
		return fmt.Errorf("seed pending intake: %w", err)
	}
	guests := 60
	if _, err := intakes.Update(ctx, pending.ID, intake.UpdateIntakeInput{GuestCount: &guests}); err != nil {
		return fmt.Errorf("seed pending update: %w", err)
	}

	report := struct {
		PlannerID  string `json:"planner_id"`
		IntakeID   string `json:"intake_id"`
		EventID    string `json:"event_id"`
		ProposalID string `json:"proposal_id"`
		PendingID  string `json:"pending_intake_id"`
	}{seedPlannerID, in.ID, ev.ID, p.ID, pending.ID}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
