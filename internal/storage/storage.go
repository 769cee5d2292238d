package storage

import (
	"context"
	"fmt"

	"github.com/planwellhq/planwell/internal/planning/client"
	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/planning/intake"
	"github.com/planwellhq/planwell/internal/planning/proposal"
	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")
	// ErrAlreadyExists indicates a unique constraint violation.
	ErrAlreadyExists = apperrors.New(apperrors.CodeAlreadyExists, "record already exists")
)

// IntakeStore persists intake records.
//
// UpdateIntake is a guarded full-row write: it replaces the record only when
// the stored status still equals expectedStatus. A losing racer gets
// ErrNotFound when the row is gone and a status conflict error otherwise, so
// every status change is decided by exactly one writer.
type IntakeStore interface {
	CreateIntake(ctx context.Context, in intake.Intake) error
	GetIntake(ctx context.Context, id string) (intake.Intake, error)
	FindIntakeByToken(ctx context.Context, token string) (intake.Intake, error)
	ListIntakesByPlanner(ctx context.Context, plannerID string) ([]intake.Intake, error)
	ListIntakesByStatus(ctx context.Context, status intake.Status) ([]intake.Intake, error)
	UpdateIntake(ctx context.Context, in intake.Intake, expectedStatus intake.Status) error
}

// EventStore persists event records with the same guarded-write contract as
// IntakeStore. DeleteEvent is likewise guarded so a delete cannot race a
// status change.
type EventStore interface {
	CreateEvent(ctx context.Context, ev event.Event) error
	GetEvent(ctx context.Context, id string) (event.Event, error)
	FindEventBySubmissionID(ctx context.Context, submissionID string) (event.Event, error)
	FindEventByPublicToken(ctx context.Context, token string) (event.Event, error)
	ListEventsByPlanner(ctx context.Context, plannerID string) ([]event.Event, error)
	UpdateEvent(ctx context.Context, ev event.Event, expectedStatus event.Status) error
	DeleteEvent(ctx context.Context, id string, expectedStatus event.Status) error
}

// ProposalStore persists proposal records with the same guarded-write
// contract as IntakeStore.
type ProposalStore interface {
	CreateProposal(ctx context.Context, p proposal.Proposal) error
	GetProposal(ctx context.Context, id string) (proposal.Proposal, error)
	FindProposalByToken(ctx context.Context, token string) (proposal.Proposal, error)
	ListProposalsByEvent(ctx context.Context, eventID string) ([]proposal.Proposal, error)
	UpdateProposal(ctx context.Context, p proposal.Proposal, expectedStatus proposal.Status) error
}

// ClientProfileStore persists client profile records. Profiles carry no
// status machine, so updates are unconditional.
type ClientProfileStore interface {
	CreateProfile(ctx context.Context, p client.Profile) error
	GetProfile(ctx context.Context, id string) (client.Profile, error)
	FindProfileByPhone(ctx context.Context, plannerID, phone string) (client.Profile, error)
	UpdateProfile(ctx context.Context, p client.Profile) error
}

// Store aggregates all persistence interfaces behind one handle.
type Store interface {
	IntakeStore
	EventStore
	ProposalStore
	ClientProfileStore
	Close() error
}

// NewIntakeStatusConflict builds the error a guarded intake write returns
// when the stored status moved. A row already converted reports the
// idempotency conflict so replayed conversions are distinguishable.
func NewIntakeStatusConflict(expected, actual intake.Status) error {
	code := apperrors.CodeIntakeInvalidStatusTransition
	if actual == intake.StatusConverted {
		code = apperrors.CodeIntakeAlreadyConverted
	}
	return apperrors.WithMetadata(
		code,
		fmt.Sprintf("intake status changed: expected %s, found %s", intake.StatusLabel(expected), intake.StatusLabel(actual)),
		map[string]string{
			"ExpectedStatus": intake.StatusLabel(expected),
			"ActualStatus":   intake.StatusLabel(actual),
		},
	)
}

// NewEventStatusConflict builds the error a guarded event write returns when
// the stored status moved.
func NewEventStatusConflict(expected, actual event.Status) error {
	return apperrors.WithMetadata(
		apperrors.CodeEventStatusConflict,
		fmt.Sprintf("event status changed: expected %s, found %s", event.StatusLabel(expected), event.StatusLabel(actual)),
		map[string]string{
			"ExpectedStatus": event.StatusLabel(expected),
			"ActualStatus":   event.StatusLabel(actual),
		},
	)
}

// NewProposalStatusConflict builds the error a guarded proposal write returns
// when the stored status moved. A row already decided reports the decision
// conflict so a double decision surfaces as such.
func NewProposalStatusConflict(expected, actual proposal.Status) error {
	code := apperrors.CodeProposalInvalidStatusTransition
	if actual == proposal.StatusApproved || actual == proposal.StatusRejected {
		code = apperrors.CodeProposalAlreadyDecided
	}
	return apperrors.WithMetadata(
		code,
		fmt.Sprintf("proposal status changed: expected %s, found %s", proposal.StatusLabel(expected), proposal.StatusLabel(actual)),
		map[string]string{
			"ExpectedStatus": proposal.StatusLabel(expected),
			"ActualStatus":   proposal.StatusLabel(actual),
		},
	)
}
