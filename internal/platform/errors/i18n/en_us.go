package i18n

// Error codes must match the codes defined in internal/platform/errors/codes.go.
// These are duplicated as strings to avoid an import cycle.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyExists = "ALREADY_EXISTS"

	CodeIntakeAlreadyConverted        = "INTAKE_ALREADY_CONVERTED"
	CodeIntakeInvalidStatusTransition = "INTAKE_INVALID_STATUS_TRANSITION"
	CodeIntakeMissingClientName       = "INTAKE_MISSING_CLIENT_NAME"
	CodeIntakeMissingPhone            = "INTAKE_MISSING_PHONE"
	CodeIntakeInvalidCreator          = "INTAKE_INVALID_CREATOR"

	CodeEventInvalidStatusTransition = "EVENT_INVALID_STATUS_TRANSITION"
	CodeEventStatusDisallowsOp       = "EVENT_STATUS_DISALLOWS_OPERATION"
	CodeEventMissingName             = "EVENT_MISSING_NAME"
	CodeEventDateImplausible         = "EVENT_DATE_IMPLAUSIBLE"
	CodeEventStatusConflict          = "EVENT_STATUS_CONFLICT"

	CodeProposalInvalidStatusTransition = "PROPOSAL_INVALID_STATUS_TRANSITION"
	CodeProposalAlreadyDecided          = "PROPOSAL_ALREADY_DECIDED"
	CodeProposalNotSent                 = "PROPOSAL_NOT_SENT"
	CodeProposalEmptyTitle              = "PROPOSAL_EMPTY_TITLE"
	CodeProposalInvalidLineItem         = "PROPOSAL_INVALID_LINE_ITEM"
	CodeProposalDiscountExceedsSubtotal = "PROPOSAL_DISCOUNT_EXCEEDS_SUBTOTAL"
	CodeProposalInvalidTaxRate          = "PROPOSAL_INVALID_TAX_RATE"

	CodeProfileMissingPhone = "PROFILE_MISSING_PHONE"

	CodeConversionPartialFailure = "CONVERSION_PARTIAL_FAILURE"
	CodeApprovalPartialFailure   = "APPROVAL_PARTIAL_FAILURE"

	CodeOwnershipDenied = "OWNERSHIP_DENIED"
)

var enUSCatalog = &Catalog{
	locale: "en-US",
	messages: map[Code]string{
		// Storage errors
		CodeNotFound:      "The requested resource was not found",
		CodeAlreadyExists: "A record with the same identity already exists",

		// Intake errors
		CodeIntakeAlreadyConverted:        "This intake has already been converted to an event",
		CodeIntakeInvalidStatusTransition: "Cannot move intake from {{.FromStatus}} to {{.ToStatus}}",
		CodeIntakeMissingClientName:       "Client name is required before submitting",
		CodeIntakeMissingPhone:            "A contact phone number is required before submitting",
		CodeIntakeInvalidCreator:          "Intake creator must be a planner or a client",

		// Event errors
		CodeEventInvalidStatusTransition: "Cannot move event from {{.FromStatus}} to {{.ToStatus}}",
		CodeEventStatusDisallowsOp:       "Event status {{.Status}} does not allow {{.Operation}}",
		CodeEventMissingName:             "An event name or client name is required",
		CodeEventDateImplausible:         "The event date is outside the plausible planning window",
		CodeEventStatusConflict:          "The event changed while this request was in flight; reload and retry",

		// Proposal errors
		CodeProposalInvalidStatusTransition: "Cannot move proposal from {{.FromStatus}} to {{.ToStatus}}",
		CodeProposalAlreadyDecided:          "This proposal has already been {{.Status}}",
		CodeProposalNotSent:                 "This proposal has not been sent to the client yet",
		CodeProposalEmptyTitle:              "Proposal title cannot be empty",
		CodeProposalInvalidLineItem:         "Line item {{.Index}} must have a vendor, a positive quantity, and a positive unit price",
		CodeProposalDiscountExceedsSubtotal: "Discount cannot exceed the proposal subtotal",
		CodeProposalInvalidTaxRate:          "Tax rate must be between 0% and 100%",

		// Client profile errors
		CodeProfileMissingPhone: "A phone number is required for a client profile",

		// Multi-step workflow errors
		CodeConversionPartialFailure: "The event was created but the intake could not be finalized; contact support",
		CodeApprovalPartialFailure:   "The approval could not be completed cleanly; contact support",

		// Ownership errors
		CodeOwnershipDenied: "You do not have access to this record",
	},
}
