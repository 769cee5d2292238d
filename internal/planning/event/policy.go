package event

import (
	"fmt"

	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
)

// Operation describes a category of event operation for policy checks.
type Operation int

const (
	// OpUnspecified represents an invalid operation.
	OpUnspecified Operation = iota
	// OpRead represents read-only operations.
	OpRead
	// OpFieldWrite represents field mutations outside status transitions.
	OpFieldWrite
	// OpDelete represents deleting the event record.
	OpDelete
	// OpTokenIssue represents issuing or regenerating the public client token.
	OpTokenIssue
	// OpUnlock represents the administrative unlock of an approved event.
	OpUnlock
)

// ErrStatusDisallowsOperation indicates a status that disallows the requested operation.
var ErrStatusDisallowsOperation = apperrors.New(apperrors.CodeEventStatusDisallowsOp, "event status does not allow operation")

// ValidateOperation ensures the event status allows the requested operation.
//
// Field writes are the edit-lock guard: an APPROVED event rejects every
// field mutation until it is administratively unlocked. Destructive
// operations narrow as the record matures, so deletion is draft-only.
func ValidateOperation(status Status, op Operation) error {
	switch op {
	case OpRead:
		return nil
	case OpFieldWrite:
		if status == StatusApproved || status == StatusArchived {
			return newStatusOpError(status, op)
		}
		return nil
	case OpDelete:
		if status != StatusDraft {
			return newStatusOpError(status, op)
		}
		return nil
	case OpTokenIssue:
		if status == StatusArchived {
			return newStatusOpError(status, op)
		}
		return nil
	case OpUnlock:
		if status != StatusApproved {
			return newStatusOpError(status, op)
		}
		return nil
	default:
		return newStatusOpError(status, op)
	}
}

// newStatusOpError creates a structured error for disallowed status/operation combinations.
func newStatusOpError(status Status, op Operation) *apperrors.Error {
	statusLabel := StatusLabel(status)
	opLabel := operationLabel(op)
	return apperrors.WithMetadata(
		apperrors.CodeEventStatusDisallowsOp,
		fmt.Sprintf("event status %s does not allow operation %s", statusLabel, opLabel),
		map[string]string{"Status": statusLabel, "Operation": opLabel},
	)
}

func operationLabel(op Operation) string {
	switch op {
	case OpRead:
		return "READ"
	case OpFieldWrite:
		return "FIELD_WRITE"
	case OpDelete:
		return "DELETE"
	case OpTokenIssue:
		return "TOKEN_ISSUE"
	case OpUnlock:
		return "UNLOCK"
	default:
		return "UNSPECIFIED"
	}
}
