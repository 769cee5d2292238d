// Package errors provides structured error handling for workflow guards.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Storage errors
	CodeNotFound      Code = "NOT_FOUND"
	CodeAlreadyExists Code = "ALREADY_EXISTS"

	// Intake errors
	CodeIntakeAlreadyConverted        Code = "INTAKE_ALREADY_CONVERTED"
	CodeIntakeInvalidStatusTransition Code = "INTAKE_INVALID_STATUS_TRANSITION"
	CodeIntakeMissingClientName       Code = "INTAKE_MISSING_CLIENT_NAME"
	CodeIntakeMissingPhone            Code = "INTAKE_MISSING_PHONE"
	CodeIntakeInvalidCreator          Code = "INTAKE_INVALID_CREATOR"

	// Event errors
	CodeEventInvalidStatusTransition Code = "EVENT_INVALID_STATUS_TRANSITION"
	CodeEventStatusDisallowsOp       Code = "EVENT_STATUS_DISALLOWS_OPERATION"
	CodeEventMissingName             Code = "EVENT_MISSING_NAME"
	CodeEventDateImplausible         Code = "EVENT_DATE_IMPLAUSIBLE"
	CodeEventStatusConflict          Code = "EVENT_STATUS_CONFLICT"

	// Proposal errors
	CodeProposalInvalidStatusTransition Code = "PROPOSAL_INVALID_STATUS_TRANSITION"
	CodeProposalAlreadyDecided          Code = "PROPOSAL_ALREADY_DECIDED"
	CodeProposalNotSent                 Code = "PROPOSAL_NOT_SENT"
	CodeProposalEmptyTitle              Code = "PROPOSAL_EMPTY_TITLE"
	CodeProposalInvalidLineItem         Code = "PROPOSAL_INVALID_LINE_ITEM"
	CodeProposalDiscountExceedsSubtotal Code = "PROPOSAL_DISCOUNT_EXCEEDS_SUBTOTAL"
	CodeProposalInvalidTaxRate          Code = "PROPOSAL_INVALID_TAX_RATE"

	// Client profile errors
	CodeProfileMissingPhone Code = "PROFILE_MISSING_PHONE"

	// Multi-step workflow errors
	CodeConversionPartialFailure Code = "CONVERSION_PARTIAL_FAILURE"
	CodeApprovalPartialFailure   Code = "APPROVAL_PARTIAL_FAILURE"

	// Ownership errors
	CodeOwnershipDenied Code = "OWNERSHIP_DENIED"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeIntakeMissingClientName,
		CodeIntakeMissingPhone,
		CodeIntakeInvalidCreator,
		CodeEventMissingName,
		CodeEventDateImplausible,
		CodeProposalEmptyTitle,
		CodeProposalInvalidLineItem,
		CodeProposalDiscountExceedsSubtotal,
		CodeProposalInvalidTaxRate,
		CodeProfileMissingPhone:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeIntakeAlreadyConverted,
		CodeIntakeInvalidStatusTransition,
		CodeEventInvalidStatusTransition,
		CodeEventStatusDisallowsOp,
		CodeEventStatusConflict,
		CodeProposalInvalidStatusTransition,
		CodeProposalAlreadyDecided,
		CodeProposalNotSent:
		return codes.FailedPrecondition

	// PermissionDenied - caller does not own the record
	case CodeOwnershipDenied:
		return codes.PermissionDenied

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// AlreadyExists - unique constraint violations
	case CodeAlreadyExists:
		return codes.AlreadyExists

	// Internal - partial multi-step writes needing operator reconciliation
	case CodeConversionPartialFailure,
		CodeApprovalPartialFailure:
		return codes.Internal

	default:
		return codes.Internal
	}
}
