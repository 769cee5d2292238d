package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/planwellhq/planwell/internal/planning/client"
	"github.com/planwellhq/planwell/internal/storage"
)

const profileColumns = `id, planner_id, name, phone, email, notes, created_at, updated_at`

// CreateProfile inserts one client profile record.
func (s *Store) CreateProfile(ctx context.Context, p client.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO client_profiles (`+profileColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.PlannerID,
		p.Name,
		p.Phone,
		p.Email,
		p.Notes,
		toMillis(p.CreatedAt),
		toMillis(p.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

// GetProfile fetches one client profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (client.Profile, error) {
	if err := ctx.Err(); err != nil {
		return client.Profile{}, err
	}
	if s == nil || s.sqlDB == nil {
		return client.Profile{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM client_profiles WHERE id = ?`, id)
	return scanProfile(row)
}

// FindProfileByPhone fetches one planner's client profile by phone.
func (s *Store) FindProfileByPhone(ctx context.Context, plannerID, phone string) (client.Profile, error) {
	if err := ctx.Err(); err != nil {
		return client.Profile{}, err
	}
	if s == nil || s.sqlDB == nil {
		return client.Profile{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM client_profiles WHERE planner_id = ? AND phone = ?`, plannerID, phone)
	return scanProfile(row)
}

// UpdateProfile replaces one client profile record.
func (s *Store) UpdateProfile(ctx context.Context, p client.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE client_profiles SET
	planner_id = ?, name = ?, phone = ?, email = ?, notes = ?, updated_at = ?
WHERE id = ?`,
		p.PlannerID,
		p.Name,
		p.Phone,
		p.Email,
		p.Notes,
		toMillis(p.UpdatedAt),
		p.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update profile rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanProfile(row rowScanner) (client.Profile, error) {
	var p client.Profile
	var createdAt, updatedAt int64

	err := row.Scan(
		&p.ID,
		&p.PlannerID,
		&p.Name,
		&p.Phone,
		&p.Email,
		&p.Notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return client.Profile{}, storage.ErrNotFound
		}
		return client.Profile{}, fmt.Errorf("scan profile: %w", err)
	}

	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	return p, nil
}
