package proposal

import (
	"errors"
	"testing"
	"time"

	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func validInput() CreateProposalInput {
	return CreateProposalInput{
		EventID: "event1",
		Title:   "Gold Package",
		Tier:    TierGold,
		Items: []LineItem{
			{VendorName: "Bloom & Co", Description: "floral decor", Quantity: 1, UnitPriceCents: 120_000},
			{VendorName: "Spice Route", Description: "catering per plate", Quantity: 150, UnitPriceCents: 1_200},
		},
		DiscountCents: 20_000,
		TaxRateBps:    1_800,
	}
}

func TestCreateProposalComputesTotal(t *testing.T) {
	fixedTime := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	p, err := CreateProposal(validInput(), fixedClock(fixedTime), func() (string, error) {
		return "prop1", nil
	}, func() (string, error) {
		return "tok456", nil
	})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}

	// subtotal 300000, taxed base 280000, tax 50400
	if p.TotalCents != 330_400 {
		t.Fatalf("expected total 330400, got %d", p.TotalCents)
	}
	if p.Status != StatusDraft {
		t.Fatalf("expected draft, got %s", StatusLabel(p.Status))
	}
	if p.ID != "prop1" || p.Token != "tok456" {
		t.Fatalf("unexpected identity %q/%q", p.ID, p.Token)
	}
	if p.SentAt != nil || p.ViewedAt != nil || p.DecidedAt != nil {
		t.Fatal("expected no lifecycle timestamps at creation")
	}
}

func TestCreateProposalClonesItems(t *testing.T) {
	input := validInput()
	p, err := CreateProposal(input, nil, nil, nil)
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}
	input.Items[0].VendorName = "changed"
	if p.Items[0].VendorName != "Bloom & Co" {
		t.Fatal("expected proposal items isolated from caller slice")
	}
}

func TestCreateProposalValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateProposalInput)
		err    error
	}{
		{
			name:   "empty title",
			mutate: func(in *CreateProposalInput) { in.Title = "   " },
			err:    ErrEmptyTitle,
		},
		{
			name:   "negative tax rate",
			mutate: func(in *CreateProposalInput) { in.TaxRateBps = -1 },
			err:    ErrInvalidTaxRate,
		},
		{
			name:   "tax rate over cap",
			mutate: func(in *CreateProposalInput) { in.TaxRateBps = TaxRateBpsMax + 1 },
			err:    ErrInvalidTaxRate,
		},
		{
			name:   "discount exceeds subtotal",
			mutate: func(in *CreateProposalInput) { in.DiscountCents = 10_000_000 },
			err:    ErrDiscountExceedsSubtotal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.mutate(&input)
			_, err := CreateProposal(input, nil, nil, nil)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
		})
	}
}

func TestCreateProposalRejectsBadLineItems(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
	}{
		{name: "missing vendor", item: LineItem{Quantity: 1, UnitPriceCents: 100}},
		{name: "zero quantity", item: LineItem{VendorName: "V", Quantity: 0, UnitPriceCents: 100}},
		{name: "negative unit price", item: LineItem{VendorName: "V", Quantity: 1, UnitPriceCents: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			input.Items = append(input.Items, tt.item)
			_, err := CreateProposal(input, nil, nil, nil)
			if !apperrors.IsCode(err, apperrors.CodeProposalInvalidLineItem) {
				t.Fatalf("expected PROPOSAL_INVALID_LINE_ITEM, got %v", err)
			}
		})
	}
}

func TestComputeTotalRoundsHalfUp(t *testing.T) {
	tests := []struct {
		name     string
		items    []LineItem
		discount int64
		taxBps   int
		want     int64
	}{
		{
			name:  "no tax no discount",
			items: []LineItem{{VendorName: "V", Quantity: 3, UnitPriceCents: 1_000}},
			want:  3_000,
		},
		{
			// tax 101*0.0050 = 0.505, rounds up to 1
			name:   "half cent rounds up",
			items:  []LineItem{{VendorName: "V", Quantity: 1, UnitPriceCents: 101}},
			taxBps: 50,
			want:   102,
		},
		{
			// tax 100*0.0049 = 0.49, rounds down
			name:   "below half rounds down",
			items:  []LineItem{{VendorName: "V", Quantity: 1, UnitPriceCents: 100}},
			taxBps: 49,
			want:   100,
		},
		{
			name:     "discount to zero",
			items:    []LineItem{{VendorName: "V", Quantity: 1, UnitPriceCents: 5_000}},
			discount: 5_000,
			taxBps:   1_800,
			want:     0,
		},
		{
			name: "empty items",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTotalCents(tt.items, tt.discount, tt.taxBps)
			if err != nil {
				t.Fatalf("compute total: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestSendStampsSentAt(t *testing.T) {
	base := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	p := Proposal{ID: "p1", Status: StatusDraft}

	sent, err := Send(p, fixedClock(base))
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.Status != StatusSent {
		t.Fatalf("expected SENT, got %s", StatusLabel(sent.Status))
	}
	if sent.SentAt == nil || !sent.SentAt.Equal(base) {
		t.Fatal("expected SentAt stamped")
	}
}

func TestSendTwiceIsNoOp(t *testing.T) {
	base := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	sentAt := base
	p := Proposal{ID: "p1", Status: StatusSent, SentAt: &sentAt, UpdatedAt: base}

	again, err := Send(p, fixedClock(base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("resend: %v", err)
	}
	if !again.UpdatedAt.Equal(base) || !again.SentAt.Equal(sentAt) {
		t.Fatal("expected resend to leave the proposal unchanged")
	}
}

func TestSendDecidedFails(t *testing.T) {
	for _, s := range []Status{StatusApproved, StatusRejected} {
		_, err := Send(Proposal{Status: s}, nil)
		if !errors.Is(err, ErrAlreadyDecided) {
			t.Fatalf("expected already-decided from %s, got %v", StatusLabel(s), err)
		}
	}
}

func TestMarkViewed(t *testing.T) {
	base := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	p := Proposal{ID: "p1", Status: StatusSent}

	viewed, err := MarkViewed(p, fixedClock(base))
	if err != nil {
		t.Fatalf("mark viewed: %v", err)
	}
	if viewed.Status != StatusViewed {
		t.Fatalf("expected VIEWED, got %s", StatusLabel(viewed.Status))
	}
	if viewed.ViewedAt == nil || !viewed.ViewedAt.Equal(base) {
		t.Fatal("expected ViewedAt stamped")
	}

	// repeat views keep the first timestamp
	again, err := MarkViewed(viewed, fixedClock(base.Add(time.Hour)))
	if err != nil {
		t.Fatalf("second view: %v", err)
	}
	if !again.ViewedAt.Equal(base) {
		t.Fatal("expected first ViewedAt preserved")
	}
}

func TestMarkViewedDraftFails(t *testing.T) {
	_, err := MarkViewed(Proposal{Status: StatusDraft}, nil)
	if !errors.Is(err, ErrNotSent) {
		t.Fatalf("expected not-sent error, got %v", err)
	}
}

func TestApproveFromSentAndViewed(t *testing.T) {
	base := time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC)
	for _, status := range []Status{StatusSent, StatusViewed} {
		p := Proposal{ID: "p1", Status: status}
		approved, err := Approve(p, "  looks great  ", fixedClock(base))
		if err != nil {
			t.Fatalf("approve from %s: %v", StatusLabel(status), err)
		}
		if approved.Status != StatusApproved {
			t.Fatalf("expected APPROVED, got %s", StatusLabel(approved.Status))
		}
		if approved.DecidedAt == nil || !approved.DecidedAt.Equal(base) {
			t.Fatal("expected DecidedAt stamped")
		}
		if approved.ClientNotes != "looks great" {
			t.Fatalf("expected trimmed client notes, got %q", approved.ClientNotes)
		}
	}
}

func TestRejectFromViewed(t *testing.T) {
	p := Proposal{ID: "p1", Status: StatusViewed}
	rejected, err := Reject(p, "over budget", nil)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != StatusRejected {
		t.Fatalf("expected REJECTED, got %s", StatusLabel(rejected.Status))
	}
	if rejected.ClientNotes != "over budget" {
		t.Fatalf("expected client notes kept, got %q", rejected.ClientNotes)
	}
}

func TestDecideTwiceYieldsConflict(t *testing.T) {
	p := Proposal{ID: "p1", Status: StatusApproved}

	_, err := Approve(p, "", nil)
	if !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected already-decided, got %v", err)
	}
	meta := apperrors.GetMetadata(err)
	if meta["Status"] != "APPROVED" {
		t.Fatalf("expected APPROVED metadata, got %v", meta)
	}

	if _, err := Reject(Proposal{Status: StatusRejected}, "", nil); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected already-decided on rejected, got %v", err)
	}
}

func TestDecideDraftFails(t *testing.T) {
	if _, err := Approve(Proposal{Status: StatusDraft}, "", nil); !errors.Is(err, ErrNotSent) {
		t.Fatalf("expected not-sent on draft approve, got %v", err)
	}
}

func TestProposalCanTransitionMatrix(t *testing.T) {
	all := []Status{StatusUnspecified, StatusDraft, StatusSent, StatusViewed, StatusApproved, StatusRejected}
	allowed := map[Status][]Status{
		StatusDraft:  {StatusSent},
		StatusSent:   {StatusViewed, StatusApproved, StatusRejected},
		StatusViewed: {StatusApproved, StatusRejected},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", StatusLabel(from), StatusLabel(to), got, want)
			}
		}
	}
}
