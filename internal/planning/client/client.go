// Package client holds the client Profile domain model.
//
// A Profile is the durable record of a person a planner works with. Profiles
// are deduplicated by phone number per planner, so a returning client who
// fills a second intake lands on the same record.
package client

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/planwellhq/planwell/internal/platform/errors"
	"github.com/planwellhq/planwell/internal/platform/id"
)

// ErrMissingPhone indicates a profile without the phone number used for
// deduplication.
var ErrMissingPhone = apperrors.New(apperrors.CodeProfileMissingPhone, "client phone is required")

// Profile represents a client a planner works with.
type Profile struct {
	ID        string
	PlannerID string
	Name      string
	// Phone is the deduplication key within a planner's book.
	Phone     string
	Email     string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateProfileInput describes the fields needed to record a client.
type CreateProfileInput struct {
	PlannerID string
	Name      string
	Phone     string
	Email     string
	Notes     string
}

// CreateProfile creates a new client profile.
func CreateProfile(input CreateProfileInput, now func() time.Time, idGenerator func() (string, error)) (Profile, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	phone := strings.TrimSpace(input.Phone)
	if phone == "" {
		return Profile{}, ErrMissingPhone
	}

	profileID, err := idGenerator()
	if err != nil {
		return Profile{}, fmt.Errorf("generate profile id: %w", err)
	}

	createdAt := now().UTC()
	return Profile{
		ID:        profileID,
		PlannerID: input.PlannerID,
		Name:      strings.TrimSpace(input.Name),
		Phone:     phone,
		Email:     strings.TrimSpace(input.Email),
		Notes:     strings.TrimSpace(input.Notes),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// UpdateProfileInput carries a partial field patch. Nil pointers leave the
// corresponding field untouched.
type UpdateProfileInput struct {
	Name  *string
	Phone *string
	Email *string
	Notes *string
}

// ApplyUpdate returns a copy of the profile with the patch applied. Blanking
// the phone is rejected since it is the deduplication key.
func ApplyUpdate(p Profile, patch UpdateProfileInput, now func() time.Time) (Profile, error) {
	if now == nil {
		now = time.Now
	}

	updated := p
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Phone != nil {
		phone := strings.TrimSpace(*patch.Phone)
		if phone == "" {
			return Profile{}, ErrMissingPhone
		}
		updated.Phone = phone
	}
	if patch.Email != nil {
		updated.Email = strings.TrimSpace(*patch.Email)
	}
	if patch.Notes != nil {
		updated.Notes = strings.TrimSpace(*patch.Notes)
	}
	updated.UpdatedAt = now().UTC()
	return updated, nil
}
