// Package intake holds the Intake domain model and its lifecycle rules.
//
// An Intake is a not-yet-committed capture of a prospective client's event
// requirements. It accumulates fields over repeated partial updates, is
// submitted once the required identity fields are present, and is converted
// into exactly one Event. Conversion is one-way: a converted intake is
// immutable apart from metadata.
package intake

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
	"github.com/planwellhq/planwell/internal/platform/id"
)

// Status describes the lifecycle of an intake.
type Status int

const (
	// StatusUnspecified represents an invalid intake status value.
	StatusUnspecified Status = iota
	// StatusDraft indicates the intake was created but never edited.
	StatusDraft
	// StatusInProgress indicates the intake has received at least one edit.
	StatusInProgress
	// StatusSubmitted indicates the required fields are present and the intake awaits conversion.
	StatusSubmitted
	// StatusConverted indicates the intake produced an event. Terminal.
	StatusConverted
)

// Creator describes who opened the intake.
type Creator int

const (
	// CreatorUnspecified represents an invalid creator value.
	CreatorUnspecified Creator = iota
	// CreatorPlanner indicates a planner pre-filled the intake.
	CreatorPlanner
	// CreatorClient indicates a client opened the intake through a shared link.
	CreatorClient
)

var (
	// ErrMissingClientName indicates a submit attempt without a client name.
	ErrMissingClientName = apperrors.New(apperrors.CodeIntakeMissingClientName, "client name is required to submit")
	// ErrMissingPhone indicates a submit attempt without a contact phone.
	ErrMissingPhone = apperrors.New(apperrors.CodeIntakeMissingPhone, "contact phone is required to submit")
	// ErrAlreadyConverted indicates a mutation attempt on a converted intake.
	ErrAlreadyConverted = apperrors.New(apperrors.CodeIntakeAlreadyConverted, "intake has already been converted")
	// ErrInvalidCreator indicates a missing or invalid creator value.
	ErrInvalidCreator = apperrors.New(apperrors.CodeIntakeInvalidCreator, "intake creator is required")
	// ErrInvalidStatusTransition indicates a disallowed intake status change.
	ErrInvalidStatusTransition = apperrors.New(apperrors.CodeIntakeInvalidStatusTransition, "intake status transition is not allowed")
)

// Intake represents a prospective client submission.
type Intake struct {
	ID string
	// Token grants unauthenticated access to the client-facing form.
	Token     string
	Status    Status
	CreatedBy Creator
	// PlannerID is the owning planner. Client links are issued against a
	// planner-owned intake, so this is set regardless of who created it.
	PlannerID      string
	ClientName     string
	Phone          string
	Email          string
	EventDate      time.Time
	GuestCount     int
	BudgetMinCents int64
	BudgetMaxCents int64
	VenueType      string
	// Preferences holds free-form per-category preference blocks keyed by category.
	Preferences map[string]string
	// CurrentTab tracks the client's position in the multi-tab form.
	CurrentTab int
	// ConvertedEventID is set if and only if Status is CONVERTED.
	ConvertedEventID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// CreateIntakeInput describes the fields needed to open an intake.
type CreateIntakeInput struct {
	CreatedBy      Creator
	PlannerID      string
	ClientName     string
	Phone          string
	Email          string
	EventDate      time.Time
	GuestCount     int
	BudgetMinCents int64
	BudgetMaxCents int64
	VenueType      string
	Preferences    map[string]string
}

// CreateIntake creates a new draft intake with a generated ID and access token.
func CreateIntake(input CreateIntakeInput, now func() time.Time, idGenerator func() (string, error), tokenGenerator func() (string, error)) (Intake, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}
	if tokenGenerator == nil {
		tokenGenerator = id.NewToken
	}

	if input.CreatedBy == CreatorUnspecified {
		return Intake{}, ErrInvalidCreator
	}

	intakeID, err := idGenerator()
	if err != nil {
		return Intake{}, fmt.Errorf("generate intake id: %w", err)
	}
	token, err := tokenGenerator()
	if err != nil {
		return Intake{}, fmt.Errorf("generate intake token: %w", err)
	}

	createdAt := now().UTC()
	return Intake{
		ID:             intakeID,
		Token:          token,
		Status:         StatusDraft,
		CreatedBy:      input.CreatedBy,
		PlannerID:      input.PlannerID,
		ClientName:     strings.TrimSpace(input.ClientName),
		Phone:          strings.TrimSpace(input.Phone),
		Email:          strings.TrimSpace(input.Email),
		EventDate:      input.EventDate,
		GuestCount:     input.GuestCount,
		BudgetMinCents: input.BudgetMinCents,
		BudgetMaxCents: input.BudgetMaxCents,
		VenueType:      strings.TrimSpace(input.VenueType),
		Preferences:    clonePreferences(input.Preferences),
		CurrentTab:     1,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}, nil
}

// UpdateIntakeInput carries a partial field patch. Nil pointers leave the
// corresponding field untouched; preference entries merge by category key.
type UpdateIntakeInput struct {
	ClientName     *string
	Phone          *string
	Email          *string
	EventDate      *time.Time
	GuestCount     *int
	BudgetMinCents *int64
	BudgetMaxCents *int64
	VenueType      *string
	Preferences    map[string]string
	CurrentTab     *int
}

// ApplyUpdate returns a copy of the intake with the patch applied.
//
// The first edit of a draft promotes it to IN_PROGRESS. A converted intake
// rejects every patch.
func ApplyUpdate(in Intake, patch UpdateIntakeInput, now func() time.Time) (Intake, error) {
	if in.Status == StatusConverted {
		return Intake{}, ErrAlreadyConverted
	}
	if now == nil {
		now = time.Now
	}

	updated := in
	if patch.ClientName != nil {
		updated.ClientName = strings.TrimSpace(*patch.ClientName)
	}
	if patch.Phone != nil {
		updated.Phone = strings.TrimSpace(*patch.Phone)
	}
	if patch.Email != nil {
		updated.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.EventDate != nil {
		updated.EventDate = *patch.EventDate
	}
	if patch.GuestCount != nil {
		updated.GuestCount = *patch.GuestCount
	}
	if patch.BudgetMinCents != nil {
		updated.BudgetMinCents = *patch.BudgetMinCents
	}
	if patch.BudgetMaxCents != nil {
		updated.BudgetMaxCents = *patch.BudgetMaxCents
	}
	if patch.VenueType != nil {
		updated.VenueType = strings.TrimSpace(*patch.VenueType)
	}
	if len(patch.Preferences) > 0 {
		merged := clonePreferences(updated.Preferences)
		if merged == nil {
			merged = map[string]string{}
		}
		for category, block := range patch.Preferences {
			merged[category] = block
		}
		updated.Preferences = merged
	}
	if patch.CurrentTab != nil {
		updated.CurrentTab = *patch.CurrentTab
	}

	if updated.Status == StatusDraft {
		updated.Status = StatusInProgress
	}
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// Submit validates the required identity fields and marks the intake submitted.
func Submit(in Intake, now func() time.Time) (Intake, error) {
	if strings.TrimSpace(in.ClientName) == "" {
		return Intake{}, ErrMissingClientName
	}
	if strings.TrimSpace(in.Phone) == "" {
		return Intake{}, ErrMissingPhone
	}
	return transition(in, StatusSubmitted, now)
}

// MarkConverted stamps the intake converted and records the produced event.
// Only a submitted intake converts; converting twice yields the idempotency
// conflict so callers can distinguish replays from genuine errors.
func MarkConverted(in Intake, eventID string, now func() time.Time) (Intake, error) {
	updated, err := transition(in, StatusConverted, now)
	if err != nil {
		return Intake{}, err
	}
	updated.ConvertedEventID = eventID
	return updated, nil
}

func transition(in Intake, target Status, now func() time.Time) (Intake, error) {
	if in.Status == StatusConverted {
		return Intake{}, ErrAlreadyConverted
	}
	if !CanTransition(in.Status, target) {
		fromStatus := StatusLabel(in.Status)
		toStatus := StatusLabel(target)
		return Intake{}, apperrors.WithMetadata(
			apperrors.CodeIntakeInvalidStatusTransition,
			fmt.Sprintf("intake status transition not allowed: %s -> %s", fromStatus, toStatus),
			map[string]string{"FromStatus": fromStatus, "ToStatus": toStatus},
		)
	}
	if now == nil {
		now = time.Now
	}
	updated := in
	updated.Status = target
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// CanTransition reports whether an intake status transition is permitted.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusInProgress || to == StatusSubmitted
	case StatusInProgress:
		return to == StatusSubmitted
	case StatusSubmitted:
		return to == StatusConverted
	default:
		return false
	}
}

// StatusLabel returns a stable label for an intake status.
func StatusLabel(status Status) string {
	switch status {
	case StatusDraft:
		return "DRAFT"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusConverted:
		return "CONVERTED"
	default:
		return "UNSPECIFIED"
	}
}

// CreatorLabel returns a stable label for an intake creator.
func CreatorLabel(creator Creator) string {
	switch creator {
	case CreatorPlanner:
		return "PLANNER"
	case CreatorClient:
		return "CLIENT"
	default:
		return "UNSPECIFIED"
	}
}

func clonePreferences(prefs map[string]string) map[string]string {
	if prefs == nil {
		return nil
	}
	cloned := make(map[string]string, len(prefs))
	for category, block := range prefs {
		cloned[category] = block
	}
	return cloned
}
