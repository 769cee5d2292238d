package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/planwellhq/planwell/internal/planning/client"
	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/planning/intake"
	"github.com/planwellhq/planwell/internal/planning/proposal"
	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
	"github.com/planwellhq/planwell/internal/storage"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "planning.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return s
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected empty path to be rejected")
	}
}

func TestIntakeRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	in := intake.Intake{
		ID:             "i1",
		Token:          "tok1",
		Status:         intake.StatusInProgress,
		CreatedBy:      intake.CreatorClient,
		PlannerID:      "p1",
		ClientName:     "Asha",
		Phone:          "9999999999",
		EventDate:      createdAt.Add(90 * 24 * time.Hour),
		GuestCount:     120,
		BudgetMinCents: 1_000_000,
		BudgetMaxCents: 2_500_000,
		VenueType:      "outdoor",
		Preferences:    map[string]string{"catering": "vegetarian", "music": "dj"},
		CurrentTab:     3,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}

	if err := s.CreateIntake(ctx, in); err != nil {
		t.Fatalf("create intake: %v", err)
	}

	got, err := s.GetIntake(ctx, "i1")
	if err != nil {
		t.Fatalf("get intake: %v", err)
	}
	if got.Status != intake.StatusInProgress || got.CreatedBy != intake.CreatorClient {
		t.Fatalf("unexpected enums %s/%s", intake.StatusLabel(got.Status), intake.CreatorLabel(got.CreatedBy))
	}
	if got.Preferences["catering"] != "vegetarian" || got.Preferences["music"] != "dj" {
		t.Fatalf("expected preferences preserved, got %v", got.Preferences)
	}
	if !got.CreatedAt.Equal(createdAt) || !got.EventDate.Equal(in.EventDate) {
		t.Fatalf("expected timestamps preserved, got %+v", got)
	}

	byToken, err := s.FindIntakeByToken(ctx, "tok1")
	if err != nil {
		t.Fatalf("find by token: %v", err)
	}
	if byToken.ID != "i1" {
		t.Fatalf("expected i1, got %q", byToken.ID)
	}
}

func TestIntakeTokenUnique(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.CreateIntake(ctx, intake.Intake{ID: "i1", Token: "tok1", Status: intake.StatusDraft, CreatedBy: intake.CreatorClient}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := s.CreateIntake(ctx, intake.Intake{ID: "i2", Token: "tok1", Status: intake.StatusDraft, CreatedBy: intake.CreatorClient})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected token uniqueness, got %v", err)
	}
}

func TestUpdateIntakeGuardsStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	in := intake.Intake{ID: "i1", Token: "tok1", Status: intake.StatusSubmitted, CreatedBy: intake.CreatorClient}
	if err := s.CreateIntake(ctx, in); err != nil {
		t.Fatalf("create: %v", err)
	}

	converted := in
	converted.Status = intake.StatusConverted
	converted.ConvertedEventID = "e1"
	if err := s.UpdateIntake(ctx, converted, intake.StatusSubmitted); err != nil {
		t.Fatalf("first guarded write: %v", err)
	}

	err := s.UpdateIntake(ctx, converted, intake.StatusSubmitted)
	if !apperrors.IsCode(err, apperrors.CodeIntakeAlreadyConverted) {
		t.Fatalf("expected INTAKE_ALREADY_CONVERTED, got %v", err)
	}

	if err := s.UpdateIntake(ctx, intake.Intake{ID: "missing"}, intake.StatusDraft); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListIntakesByStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	for i, rec := range []intake.Intake{
		{ID: "i1", Token: "t1", Status: intake.StatusSubmitted, CreatedBy: intake.CreatorClient},
		{ID: "i2", Token: "t2", Status: intake.StatusDraft, CreatedBy: intake.CreatorClient},
		{ID: "i3", Token: "t3", Status: intake.StatusSubmitted, CreatedBy: intake.CreatorClient},
	} {
		rec.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := s.CreateIntake(ctx, rec); err != nil {
			t.Fatalf("create %s: %v", rec.ID, err)
		}
	}

	out, err := s.ListIntakesByStatus(ctx, intake.StatusSubmitted)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].ID != "i3" || out[1].ID != "i1" {
		t.Fatalf("expected i3,i1 newest first, got %+v", out)
	}
}

func TestEventRoundTripAndGuards(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	ev := event.Event{
		ID:           "e1",
		SubmissionID: "i1",
		PlannerID:    "p1",
		Status:       event.StatusProposed,
		Name:         "Gala",
		ClientName:   "Asha",
		Phone:        "9999999999",
		EventDate:    createdAt.Add(60 * 24 * time.Hour),
		GuestCount:   150,
		BudgetCents:  5_000_000,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err := s.CreateEvent(ctx, ev); err != nil {
		t.Fatalf("create event: %v", err)
	}

	bySubmission, err := s.FindEventBySubmissionID(ctx, "i1")
	if err != nil {
		t.Fatalf("find by submission: %v", err)
	}
	if bySubmission.ID != "e1" || bySubmission.Status != event.StatusProposed {
		t.Fatalf("unexpected record %+v", bySubmission)
	}

	// two events cannot reference the same intake
	dup := ev
	dup.ID = "e2"
	if err := s.CreateEvent(ctx, dup); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected submission uniqueness, got %v", err)
	}

	approvedAt := createdAt.Add(time.Hour)
	approved := ev
	approved.Status = event.StatusApproved
	approved.ApprovedAt = &approvedAt
	approved.UpdatedAt = approvedAt
	if err := s.UpdateEvent(ctx, approved, event.StatusProposed); err != nil {
		t.Fatalf("approve write: %v", err)
	}

	err = s.UpdateEvent(ctx, approved, event.StatusProposed)
	if !apperrors.IsCode(err, apperrors.CodeEventStatusConflict) {
		t.Fatalf("expected EVENT_STATUS_CONFLICT, got %v", err)
	}

	got, err := s.GetEvent(ctx, "e1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.ApprovedAt == nil || !got.ApprovedAt.Equal(approvedAt) {
		t.Fatal("expected ApprovedAt preserved")
	}
}

func TestEventsWithoutTokensCoexist(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// empty submission ids and public tokens must not collide as duplicates
	for _, id := range []string{"e1", "e2"} {
		if err := s.CreateEvent(ctx, event.Event{ID: id, PlannerID: "p1", Status: event.StatusDraft}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}

	if _, err := s.FindEventByPublicToken(ctx, ""); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected empty token lookup to miss, got %v", err)
	}
}

func TestDeleteEventGuardsStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.CreateEvent(ctx, event.Event{ID: "e1", PlannerID: "p1", Status: event.StatusPlanning}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.DeleteEvent(ctx, "e1", event.StatusDraft); !apperrors.IsCode(err, apperrors.CodeEventStatusConflict) {
		t.Fatalf("expected guarded delete to fail, got %v", err)
	}
	if err := s.DeleteEvent(ctx, "e1", event.StatusPlanning); err != nil {
		t.Fatalf("guarded delete: %v", err)
	}
	if err := s.DeleteEvent(ctx, "e1", event.StatusPlanning); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestProposalRoundTripAndCascade(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	if err := s.CreateEvent(ctx, event.Event{ID: "e1", PlannerID: "p1", Status: event.StatusPlanning, CreatedAt: createdAt, UpdatedAt: createdAt}); err != nil {
		t.Fatalf("create event: %v", err)
	}

	p := proposal.Proposal{
		ID:      "pr1",
		EventID: "e1",
		Token:   "ptok1",
		Status:  proposal.StatusDraft,
		Tier:    proposal.TierGold,
		Title:   "Gold Package",
		Items: []proposal.LineItem{
			{VendorName: "Bloom & Co", Description: "floral decor", Quantity: 1, UnitPriceCents: 120_000},
		},
		TaxRateBps: 1_800,
		TotalCents: 141_600,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if err := s.CreateProposal(ctx, p); err != nil {
		t.Fatalf("create proposal: %v", err)
	}

	got, err := s.FindProposalByToken(ctx, "ptok1")
	if err != nil {
		t.Fatalf("find by token: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].VendorName != "Bloom & Co" {
		t.Fatalf("expected line items preserved, got %+v", got.Items)
	}
	if got.Tier != proposal.TierGold {
		t.Fatalf("expected gold tier, got %s", proposal.TierLabel(got.Tier))
	}

	sentAt := createdAt.Add(time.Hour)
	sent := got
	sent.Status = proposal.StatusSent
	sent.SentAt = &sentAt
	sent.UpdatedAt = sentAt
	if err := s.UpdateProposal(ctx, sent, proposal.StatusDraft); err != nil {
		t.Fatalf("send write: %v", err)
	}
	if err := s.UpdateProposal(ctx, sent, proposal.StatusDraft); apperrors.GetCode(err) != apperrors.CodeProposalInvalidStatusTransition {
		t.Fatalf("expected status conflict, got %v", err)
	}

	// deleting the event removes its proposals
	if err := s.DeleteEvent(ctx, "e1", event.StatusPlanning); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if _, err := s.GetProposal(ctx, "pr1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected proposal cascade-deleted, got %v", err)
	}
}

func TestProfilePhoneUniquePerPlanner(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	createdAt := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	p := client.Profile{ID: "c1", PlannerID: "p1", Name: "Asha", Phone: "9999999999", CreatedAt: createdAt, UpdatedAt: createdAt}
	if err := s.CreateProfile(ctx, p); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	dup := client.Profile{ID: "c2", PlannerID: "p1", Phone: "9999999999"}
	if err := s.CreateProfile(ctx, dup); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected phone dedupe, got %v", err)
	}

	other := client.Profile{ID: "c3", PlannerID: "p2", Phone: "9999999999", CreatedAt: createdAt, UpdatedAt: createdAt}
	if err := s.CreateProfile(ctx, other); err != nil {
		t.Fatalf("expected cross-planner create to pass, got %v", err)
	}

	got, err := s.FindProfileByPhone(ctx, "p1", "9999999999")
	if err != nil {
		t.Fatalf("find by phone: %v", err)
	}
	if got.ID != "c1" {
		t.Fatalf("expected c1, got %q", got.ID)
	}

	got.Email = "asha@example.com"
	if err := s.UpdateProfile(ctx, got); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	reread, err := s.GetProfile(ctx, "c1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if reread.Email != "asha@example.com" {
		t.Fatalf("expected updated email, got %q", reread.Email)
	}
}
