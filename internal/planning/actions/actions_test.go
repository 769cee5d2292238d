package actions

import (
	"context"
	"testing"

	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/planning/intake"
	"github.com/planwellhq/planwell/internal/planning/proposal"
	"github.com/planwellhq/planwell/internal/planning/workflow"
	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
	"github.com/planwellhq/planwell/internal/storage/memory"
)

func newSurfaces(t *testing.T) (*PlannerActions, *ClientActions) {
	t.Helper()
	store := memory.New()
	intakes := workflow.NewIntakeWorkflow(store, store, store)
	events := workflow.NewEventWorkflow(store)
	proposals := workflow.NewProposalWorkflow(store, store)
	return NewPlannerActions(intakes, events, proposals), NewClientActions(intakes, events, proposals)
}

func TestPlannerCannotTouchForeignRecords(t *testing.T) {
	planner, _ := newSurfaces(t)
	ctx := context.Background()

	in, err := planner.CreateIntake(ctx, "planner1", intake.CreateIntakeInput{})
	if err != nil {
		t.Fatalf("create intake: %v", err)
	}
	ev, err := planner.CreateEvent(ctx, "planner1", event.CreateEventInput{Name: "Gala"})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	if _, err := planner.GetIntake(ctx, "planner2", in.ID); !apperrors.IsCode(err, apperrors.CodeOwnershipDenied) {
		t.Fatalf("expected OWNERSHIP_DENIED on intake, got %v", err)
	}
	if _, err := planner.GetEvent(ctx, "planner2", ev.ID); !apperrors.IsCode(err, apperrors.CodeOwnershipDenied) {
		t.Fatalf("expected OWNERSHIP_DENIED on event, got %v", err)
	}
	name := "Stolen"
	if _, err := planner.UpdateEvent(ctx, "planner2", ev.ID, event.UpdateEventInput{Name: &name}); !apperrors.IsCode(err, apperrors.CodeOwnershipDenied) {
		t.Fatalf("expected OWNERSHIP_DENIED on update, got %v", err)
	}
	if err := planner.DeleteEvent(ctx, "planner2", ev.ID); !apperrors.IsCode(err, apperrors.CodeOwnershipDenied) {
		t.Fatalf("expected OWNERSHIP_DENIED on delete, got %v", err)
	}
}

func TestPlannerProposalOwnershipFollowsEvent(t *testing.T) {
	planner, _ := newSurfaces(t)
	ctx := context.Background()

	ev, err := planner.CreateEvent(ctx, "planner1", event.CreateEventInput{Name: "Gala"})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	input := proposal.CreateProposalInput{
		EventID: ev.ID,
		Title:   "Gold Package",
		Items:   []proposal.LineItem{{VendorName: "Bloom & Co", Quantity: 1, UnitPriceCents: 10_000}},
	}
	if _, err := planner.CreateProposal(ctx, "planner2", input); !apperrors.IsCode(err, apperrors.CodeOwnershipDenied) {
		t.Fatalf("expected OWNERSHIP_DENIED, got %v", err)
	}

	p, err := planner.CreateProposal(ctx, "planner1", input)
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	if _, err := planner.GetProposal(ctx, "planner2", p.ID); !apperrors.IsCode(err, apperrors.CodeOwnershipDenied) {
		t.Fatalf("expected OWNERSHIP_DENIED on get, got %v", err)
	}
	if _, err := planner.SendProposal(ctx, "planner2", p.ID); !apperrors.IsCode(err, apperrors.CodeOwnershipDenied) {
		t.Fatalf("expected OWNERSHIP_DENIED on send, got %v", err)
	}
}

func TestClientFlowEndToEnd(t *testing.T) {
	planner, clientSide := newSurfaces(t)
	ctx := context.Background()

	in, err := planner.CreateIntake(ctx, "planner1", intake.CreateIntakeInput{CreatedBy: intake.CreatorClient})
	if err != nil {
		t.Fatalf("create intake: %v", err)
	}

	name := "Asha"
	phone := "9999999999"
	if _, err := clientSide.UpdateIntake(ctx, in.Token, intake.UpdateIntakeInput{ClientName: &name, Phone: &phone}); err != nil {
		t.Fatalf("client update: %v", err)
	}
	if _, err := clientSide.SubmitIntake(ctx, in.Token); err != nil {
		t.Fatalf("client submit: %v", err)
	}

	ev, err := planner.ConvertIntake(ctx, "planner1", in.ID)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := planner.TransitionEvent(ctx, "planner1", ev.ID, event.StatusPlanning); err != nil {
		t.Fatalf("to planning: %v", err)
	}

	p, err := planner.CreateProposal(ctx, "planner1", proposal.CreateProposalInput{
		EventID: ev.ID,
		Title:   "Gold Package",
		Items:   []proposal.LineItem{{VendorName: "Bloom & Co", Quantity: 1, UnitPriceCents: 120_000}},
	})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	if _, err := planner.SendProposal(ctx, "planner1", p.ID); err != nil {
		t.Fatalf("send proposal: %v", err)
	}

	viewed, err := clientSide.ViewProposal(ctx, p.Token)
	if err != nil {
		t.Fatalf("client view: %v", err)
	}
	if viewed.Status != proposal.StatusViewed {
		t.Fatalf("expected VIEWED, got %s", proposal.StatusLabel(viewed.Status))
	}

	approved, err := clientSide.ApproveProposal(ctx, p.Token, "perfect")
	if err != nil {
		t.Fatalf("client approve: %v", err)
	}
	if approved.Status != proposal.StatusApproved {
		t.Fatalf("expected APPROVED, got %s", proposal.StatusLabel(approved.Status))
	}

	locked, err := planner.GetEvent(ctx, "planner1", ev.ID)
	if err != nil {
		t.Fatalf("reread event: %v", err)
	}
	if locked.Status != event.StatusApproved {
		t.Fatalf("expected locked event, got %s", event.StatusLabel(locked.Status))
	}

	// the public view works through the read token only
	shared, err := planner.EnsurePublicToken(ctx, "planner1", ev.ID)
	if err != nil {
		t.Fatalf("ensure public token: %v", err)
	}
	visible, err := clientSide.ViewEvent(ctx, shared.PublicToken)
	if err != nil {
		t.Fatalf("client view event: %v", err)
	}
	if visible.ID != ev.ID {
		t.Fatalf("expected %q, got %q", ev.ID, visible.ID)
	}
}
