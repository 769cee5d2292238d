// Package event holds the Event domain model and its lifecycle rules.
//
// An Event is the operative, planner-owned record for a single client
// engagement. It is created either by converting a submitted intake or
// directly by a planner, and advances through a fixed status graph that
// ends in the edit-locked and archival states.
package event

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
	"github.com/planwellhq/planwell/internal/platform/id"
)

// Status describes the lifecycle of an event.
type Status int

const (
	// StatusUnspecified represents an invalid event status value.
	StatusUnspecified Status = iota
	// StatusDraft indicates the event has been created but planning has not started.
	StatusDraft
	// StatusPlanning indicates active planning with the client.
	StatusPlanning
	// StatusProposed indicates a proposal is in front of the client.
	StatusProposed
	// StatusApproved indicates the client approved a proposal; the event is edit-locked.
	StatusApproved
	// StatusCompleted indicates the event took place.
	StatusCompleted
	// StatusArchived indicates the event left the active pipeline. Terminal.
	StatusArchived
)

var (
	// ErrMissingName indicates neither an event name nor a client name was provided.
	ErrMissingName = apperrors.New(apperrors.CodeEventMissingName, "event name or client name is required")
	// ErrDateImplausible indicates an event date outside the plausible planning window.
	ErrDateImplausible = apperrors.New(apperrors.CodeEventDateImplausible, "event date is outside the plausible planning window")
	// ErrInvalidStatusTransition indicates a disallowed event status change.
	ErrInvalidStatusTransition = apperrors.New(apperrors.CodeEventInvalidStatusTransition, "event status transition is not allowed")
)

// Plausibility bounds for a non-zero event date, measured from creation time.
const (
	maxDatePast   = 30 * 24 * time.Hour
	maxDateFuture = 5 * 365 * 24 * time.Hour
)

// Event represents a single client engagement owned by a planner.
type Event struct {
	ID string
	// SubmissionID is a weak back-reference to the intake this event was
	// converted from. Empty for events created directly by a planner.
	SubmissionID string
	PlannerID    string
	Status       Status
	Name         string
	ClientName   string
	Phone        string
	Email        string
	EventDate    time.Time
	VenueType    string
	GuestCount   int
	BudgetCents  int64
	// PublicToken grants unauthenticated read access to the client view.
	// Empty until issued; regenerable.
	PublicToken string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	// ApprovedAt is the timestamp the event first reached APPROVED.
	ApprovedAt *time.Time
	// CompletedAt is the timestamp the event first reached COMPLETED.
	CompletedAt *time.Time
	// ArchivedAt is the timestamp the event first reached ARCHIVED.
	ArchivedAt *time.Time
}

// CreateEventInput describes the fields needed to create an event directly.
type CreateEventInput struct {
	PlannerID   string
	Name        string
	ClientName  string
	Phone       string
	Email       string
	EventDate   time.Time
	VenueType   string
	GuestCount  int
	BudgetCents int64
}

// CreateEvent creates a new draft event with a generated ID and timestamps.
func CreateEvent(input CreateEventInput, now func() time.Time, idGenerator func() (string, error)) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	createdAt := now().UTC()
	normalized, err := NormalizeCreateEventInput(input, createdAt)
	if err != nil {
		return Event{}, err
	}

	eventID, err := idGenerator()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}

	return newDraft(eventID, "", normalized, createdAt), nil
}

// CreateConvertedEvent creates a draft event from an intake projection.
//
// This is the canonical conversion path: the intake's own submit validation
// already guaranteed the client identity fields, so the direct-creation
// validation is intentionally skipped here. The submission back-reference is
// recorded so operators can trace the event to its intake.
func CreateConvertedEvent(input CreateEventInput, submissionID string, now func() time.Time, idGenerator func() (string, error)) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	eventID, err := idGenerator()
	if err != nil {
		return Event{}, fmt.Errorf("generate event id: %w", err)
	}

	input.Name = strings.TrimSpace(input.Name)
	input.ClientName = strings.TrimSpace(input.ClientName)
	return newDraft(eventID, submissionID, input, now().UTC()), nil
}

func newDraft(eventID, submissionID string, input CreateEventInput, createdAt time.Time) Event {
	return Event{
		ID:           eventID,
		SubmissionID: submissionID,
		PlannerID:    input.PlannerID,
		Status:       StatusDraft,
		Name:         input.Name,
		ClientName:   input.ClientName,
		Phone:        input.Phone,
		Email:        input.Email,
		EventDate:    input.EventDate,
		VenueType:    input.VenueType,
		GuestCount:   input.GuestCount,
		BudgetCents:  input.BudgetCents,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// NormalizeCreateEventInput trims and validates direct event creation input.
func NormalizeCreateEventInput(input CreateEventInput, at time.Time) (CreateEventInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.ClientName = strings.TrimSpace(input.ClientName)
	if input.Name == "" && input.ClientName == "" {
		return CreateEventInput{}, ErrMissingName
	}
	if err := ValidateEventDate(input.EventDate, at); err != nil {
		return CreateEventInput{}, err
	}
	return input, nil
}

// ValidateEventDate checks a non-zero event date against the plausible
// planning window measured from at. A zero date is always accepted.
func ValidateEventDate(date, at time.Time) error {
	if date.IsZero() {
		return nil
	}
	if date.Before(at.Add(-maxDatePast)) || date.After(at.Add(maxDateFuture)) {
		return ErrDateImplausible
	}
	return nil
}

// UpdateEventInput carries a partial field patch. Nil pointers leave the
// corresponding field untouched.
type UpdateEventInput struct {
	Name        *string
	ClientName  *string
	Phone       *string
	Email       *string
	EventDate   *time.Time
	VenueType   *string
	GuestCount  *int
	BudgetCents *int64
}

// IsEmpty reports whether the patch changes nothing.
func (p UpdateEventInput) IsEmpty() bool {
	return p.Name == nil && p.ClientName == nil && p.Phone == nil && p.Email == nil &&
		p.EventDate == nil && p.VenueType == nil && p.GuestCount == nil && p.BudgetCents == nil
}

// ApplyUpdate returns a copy of the event with the patch applied.
// The caller is responsible for checking the operation policy first; the
// write itself must be conditional on the status the patch was computed from.
func ApplyUpdate(ev Event, patch UpdateEventInput, now func() time.Time) Event {
	if now == nil {
		now = time.Now
	}
	updated := ev
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
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
	if patch.VenueType != nil {
		updated.VenueType = strings.TrimSpace(*patch.VenueType)
	}
	if patch.GuestCount != nil {
		updated.GuestCount = *patch.GuestCount
	}
	if patch.BudgetCents != nil {
		updated.BudgetCents = *patch.BudgetCents
	}
	updated.UpdatedAt = now().UTC()
	return updated
}

// TransitionStatus applies a status transition and updates timestamps.
func TransitionStatus(ev Event, target Status, now func() time.Time) (Event, error) {
	if now == nil {
		now = time.Now
	}
	if !CanTransition(ev.Status, target) {
		fromStatus := StatusLabel(ev.Status)
		toStatus := StatusLabel(target)
		return Event{}, apperrors.WithMetadata(
			apperrors.CodeEventInvalidStatusTransition,
			fmt.Sprintf("event status transition not allowed: %s -> %s", fromStatus, toStatus),
			map[string]string{"FromStatus": fromStatus, "ToStatus": toStatus},
		)
	}

	updated := ev
	updated.Status = target
	updatedAt := now().UTC()
	updated.UpdatedAt = updatedAt
	if target == StatusApproved && updated.ApprovedAt == nil {
		updated.ApprovedAt = &updatedAt
	}
	if target == StatusCompleted && updated.CompletedAt == nil {
		updated.CompletedAt = &updatedAt
	}
	if target == StatusArchived && updated.ArchivedAt == nil {
		updated.ArchivedAt = &updatedAt
	}
	return updated, nil
}

// Unlock reverses an approval administratively, returning the event to
// PLANNING. This is deliberately outside the public transition table: it is
// an operator escape hatch for events approved in error, and the only path
// that clears ApprovedAt.
func Unlock(ev Event, now func() time.Time) (Event, error) {
	if ev.Status != StatusApproved {
		return Event{}, newStatusOpError(ev.Status, OpUnlock)
	}
	if now == nil {
		now = time.Now
	}
	updated := ev
	updated.Status = StatusPlanning
	updated.ApprovedAt = nil
	updated.UpdatedAt = now().UTC()
	return updated, nil
}

// CanTransition reports whether a status transition is permitted.
//
// The table is exact pairs only: no wildcard rows and no skip-level jumps.
// PROPOSED -> PLANNING is the rejection path; ARCHIVED has no outbound
// transitions.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusDraft:
		return to == StatusPlanning || to == StatusArchived
	case StatusPlanning:
		return to == StatusProposed || to == StatusArchived
	case StatusProposed:
		return to == StatusApproved || to == StatusPlanning
	case StatusApproved:
		return to == StatusCompleted
	case StatusCompleted:
		return to == StatusArchived
	default:
		return false
	}
}

// StatusLabel returns a stable label for an event status.
func StatusLabel(status Status) string {
	switch status {
	case StatusDraft:
		return "DRAFT"
	case StatusPlanning:
		return "PLANNING"
	case StatusProposed:
		return "PROPOSED"
	case StatusApproved:
		return "APPROVED"
	case StatusCompleted:
		return "COMPLETED"
	case StatusArchived:
		return "ARCHIVED"
	default:
		return "UNSPECIFIED"
	}
}
