// Package proposal holds the Proposal domain model and its lifecycle rules.
//
// A Proposal is a costed package of vendor line items offered to a client
// under one event. Several proposals may coexist under an event (tiered
// packages), but the decision states are terminal per instance: a rejected
// proposal is never revived, the client is offered a fresh draft instead.
package proposal

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
	"github.com/planwellhq/planwell/internal/platform/id"
)

// Status describes the lifecycle of a proposal.
type Status int

const (
	// StatusUnspecified represents an invalid proposal status value.
	StatusUnspecified Status = iota
	// StatusDraft indicates the proposal is being assembled by the planner.
	StatusDraft
	// StatusSent indicates the proposal is in front of the client. One-way.
	StatusSent
	// StatusViewed indicates the client opened the proposal.
	StatusViewed
	// StatusApproved indicates the client accepted. Terminal.
	StatusApproved
	// StatusRejected indicates the client declined. Terminal.
	StatusRejected
)

// Tier describes the package tier of a proposal.
type Tier int

const (
	// TierUnspecified represents an unset tier.
	TierUnspecified Tier = iota
	// TierSilver is the entry package.
	TierSilver
	// TierGold is the mid package.
	TierGold
	// TierPlatinum is the premium package.
	TierPlatinum
	// TierCustom is a bespoke package.
	TierCustom
)

// TaxRateBpsMax caps the tax rate at 100%.
const TaxRateBpsMax = 10_000

var (
	// ErrEmptyTitle indicates a missing proposal title.
	ErrEmptyTitle = apperrors.New(apperrors.CodeProposalEmptyTitle, "proposal title is required")
	// ErrInvalidTaxRate indicates a tax rate outside 0..100%.
	ErrInvalidTaxRate = apperrors.New(apperrors.CodeProposalInvalidTaxRate, "tax rate must be between 0 and 10000 basis points")
	// ErrDiscountExceedsSubtotal indicates a discount larger than the line item subtotal.
	ErrDiscountExceedsSubtotal = apperrors.New(apperrors.CodeProposalDiscountExceedsSubtotal, "discount exceeds proposal subtotal")
	// ErrAlreadyDecided indicates a decision attempt on a decided proposal.
	ErrAlreadyDecided = apperrors.New(apperrors.CodeProposalAlreadyDecided, "proposal has already been decided")
	// ErrNotSent indicates a client action on a proposal still in draft.
	ErrNotSent = apperrors.New(apperrors.CodeProposalNotSent, "proposal has not been sent")
	// ErrInvalidStatusTransition indicates a disallowed proposal status change.
	ErrInvalidStatusTransition = apperrors.New(apperrors.CodeProposalInvalidStatusTransition, "proposal status transition is not allowed")
)

// LineItem is a single vendor line priced as quantity times unit price.
type LineItem struct {
	VendorName     string
	Description    string
	Quantity       int
	UnitPriceCents int64
}

// Proposal represents a costed package offered under one event.
type Proposal struct {
	ID      string
	EventID string
	// Token grants unauthenticated client access to view and decide.
	Token         string
	Status        Status
	Tier          Tier
	Title         string
	Items         []LineItem
	DiscountCents int64
	TaxRateBps    int
	// TotalCents is computed from items, discount and tax at creation.
	TotalCents  int64
	ClientNotes string
	SentAt      *time.Time
	ViewedAt    *time.Time
	// DecidedAt is the timestamp of approval or rejection.
	DecidedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateProposalInput describes the fields needed to assemble a proposal.
type CreateProposalInput struct {
	EventID       string
	Title         string
	Tier          Tier
	Items         []LineItem
	DiscountCents int64
	TaxRateBps    int
}

// CreateProposal creates a new draft proposal with a computed total.
func CreateProposal(input CreateProposalInput, now func() time.Time, idGenerator func() (string, error), tokenGenerator func() (string, error)) (Proposal, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if tokenGenerator == nil {
		tokenGenerator = id.NewToken
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return Proposal{}, ErrEmptyTitle
	}
	if err := validateItems(input.Items); err != nil {
		return Proposal{}, err
	}
	total, err := ComputeTotalCents(input.Items, input.DiscountCents, input.TaxRateBps)
	if err != nil {
		return Proposal{}, err
	}

	proposalID, err := idGenerator()
	if err != nil {
		return Proposal{}, fmt.Errorf("generate proposal id: %w", err)
	}
	token, err := tokenGenerator()
	if err != nil {
		return Proposal{}, fmt.Errorf("generate proposal token: %w", err)
	}

	createdAt := now().UTC()
	return Proposal{
		ID:            proposalID,
		EventID:       input.EventID,
		Token:         token,
		Status:        StatusDraft,
		Tier:          input.Tier,
		Title:         input.Title,
		Items:         cloneItems(input.Items),
		DiscountCents: input.DiscountCents,
		TaxRateBps:    input.TaxRateBps,
		TotalCents:    total,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}, nil
}

// ComputeTotalCents prices a proposal: (sum of quantity x unit price minus
// discount) with tax applied at the given basis points, rounded half up.
func ComputeTotalCents(items []LineItem, discountCents int64, taxRateBps int) (int64, error) {
	if taxRateBps < 0 || taxRateBps > TaxRateBpsMax {
		return 0, ErrInvalidTaxRate
	}
	var subtotal int64
	for _, item := range items {
		subtotal += int64(item.Quantity) * item.UnitPriceCents
	}
	taxed := subtotal - discountCents
	if taxed < 0 {
		return 0, ErrDiscountExceedsSubtotal
	}
	return taxed + (taxed*int64(taxRateBps)+5_000)/10_000, nil
}

func validateItems(items []LineItem) error {
	for i, item := range items {
		if strings.TrimSpace(item.VendorName) == "" || item.Quantity <= 0 || item.UnitPriceCents <= 0 {
			return apperrors.WithMetadata(
				apperrors.CodeProposalInvalidLineItem,
				fmt.Sprintf("line item %d must have a vendor, a positive quantity, and a positive unit price", i),
				map[string]string{"Index": fmt.Sprintf("%d", i)},
			)
		}
	}
	return nil
}

// Send marks a draft proposal sent. Sending twice is an idempotent no-op
// (re-delivery of the client link); decided proposals refuse.
func Send(p Proposal, now func() time.Time) (Proposal, error) {
	switch p.Status {
	case StatusSent, StatusViewed:
		return p, nil
	case StatusApproved, StatusRejected:
		return Proposal{}, decidedError(p.Status)
	}
	updated, err := transition(p, StatusSent, now)
	if err != nil {
		return Proposal{}, err
	}
	sentAt := updated.UpdatedAt
	updated.SentAt = &sentAt
	return updated, nil
}

// MarkViewed records the client opening the proposal. Viewing twice, or
// viewing after a decision, is not an error; a draft has no client link yet.
func MarkViewed(p Proposal, now func() time.Time) (Proposal, error) {
	switch p.Status {
	case StatusDraft:
		return Proposal{}, ErrNotSent
	case StatusViewed, StatusApproved, StatusRejected:
		return p, nil
	}
	updated, err := transition(p, StatusViewed, now)
	if err != nil {
		return Proposal{}, err
	}
	viewedAt := updated.UpdatedAt
	updated.ViewedAt = &viewedAt
	return updated, nil
}

// Approve records the client's acceptance. Terminal.
func Approve(p Proposal, clientNotes string, now func() time.Time) (Proposal, error) {
	return decide(p, StatusApproved, clientNotes, now)
}

// Reject records the client's refusal. Terminal.
func Reject(p Proposal, clientNotes string, now func() time.Time) (Proposal, error) {
	return decide(p, StatusRejected, clientNotes, now)
}

func decide(p Proposal, target Status, clientNotes string, now func() time.Time) (Proposal, error) {
	switch p.Status {
	case StatusDraft:
		return Proposal{}, ErrNotSent
	case StatusApproved, StatusRejected:
		return Proposal{}, decidedError(p.Status)
	}
	updated, err := transition(p, target, now)
	if err != nil {
		return Proposal{}, err
	}
	decidedAt := updated.UpdatedAt
	updated.DecidedAt = &decidedAt
	if notes := strings.TrimSpace(clientNotes); notes != "" {
		updated.ClientNotes = notes
	}
	return updated, nil
}

func decidedError(status Status) *apperrors.Error {
	label := StatusLabel(status)
	return apperrors.WithMetadata(
		apperrors.CodeProposalAlreadyDecided,
		fmt.Sprintf("proposal has already been %s", strings.ToLower(label)),
		map[string]string{"Status": label},
	)
}

func transition(p Proposal, target Status, now func() time.Time) (Proposal, error) {
	if !CanTransition(p.Status, target) {
		fromStatus := StatusLabel(p.Status)
		toStatus := StatusLabel(target)
		return Proposal{}, apperrors.WithMetadata(
			apperrors.CodeProposalInvalidStatusTransition,
			fmt.Sprintf("proposal status transition not allowed: %s -> %s", fromStatus, toStatus),
			map[string]string{"FromStatus": fromStatus, "ToStatus": toStatus},
		)
	}
	if now == nil {
		now = time.Now
	}
	updated := p
	updated.Status = target
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// CanTransition reports whether a proposal status transition is permitted.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusSent
	case StatusSent:
		return to == StatusViewed || to == StatusApproved || to == StatusRejected
	case StatusViewed:
		return to == StatusApproved || to == StatusRejected
	default:
		return false
	}
}

// StatusLabel returns a stable label for a proposal status.
func StatusLabel(status Status) string {
	switch status {
	case StatusDraft:
		return "DRAFT"
	case StatusSent:
		return "SENT"
	case StatusViewed:
		return "VIEWED"
	case StatusApproved:
		return "APPROVED"
	case StatusRejected:
		return "REJECTED"
	default:
		return "UNSPECIFIED"
	}
}

// TierLabel returns a stable label for a proposal tier.
func TierLabel(tier Tier) string {
	switch tier {
	case TierSilver:
		return "SILVER"
	case TierGold:
		return "GOLD"
	case TierPlatinum:
		return "PLATINUM"
	case TierCustom:
		return "CUSTOM"
	default:
		return "UNSPECIFIED"
	}
}

func cloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	cloned := make([]LineItem, len(items))
	copy(cloned, items)
	return cloned
}
