// Package actions exposes the two calling surfaces of the planning
// workflow: authenticated planners acting on records they own, and
// anonymous clients acting through access tokens.
package actions

import (
	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
)

func ownershipDenied(recordKind, recordID string) error {
	return apperrors.WithMetadata(
		apperrors.CodeOwnershipDenied,
		"caller does not own this record",
		map[string]string{"Kind": recordKind, "ID": recordID},
	)
}
