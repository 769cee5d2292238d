package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/planwellhq/planwell/internal/planning/intake"
	"github.com/planwellhq/planwell/internal/storage"
)

const intakeColumns = `id, token, status, created_by, planner_id, client_name, phone, email,
	event_date, guest_count, budget_min_cents, budget_max_cents, venue_type,
	preferences, current_tab, converted_event_id, created_at, updated_at`

// CreateIntake inserts one intake record.
func (s *Store) CreateIntake(ctx context.Context, in intake.Intake) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if in.ID == "" {
		return fmt.Errorf("intake id is required")
	}
	prefs, err := encodePreferences(in.Preferences)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO intakes (`+intakeColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID,
		in.Token,
		int(in.Status),
		int(in.CreatedBy),
		in.PlannerID,
		in.ClientName,
		in.Phone,
		in.Email,
		toMillis(in.EventDate),
		in.GuestCount,
		in.BudgetMinCents,
		in.BudgetMaxCents,
		in.VenueType,
		prefs,
		in.CurrentTab,
		in.ConvertedEventID,
		toMillis(in.CreatedAt),
		toMillis(in.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert intake: %w", err)
	}
	return nil
}

// GetIntake fetches one intake by ID.
func (s *Store) GetIntake(ctx context.Context, id string) (intake.Intake, error) {
	if err := ctx.Err(); err != nil {
		return intake.Intake{}, err
	}
	if s == nil || s.sqlDB == nil {
		return intake.Intake{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+intakeColumns+` FROM intakes WHERE id = ?`, id)
	return scanIntake(row)
}

// FindIntakeByToken fetches one intake by its access token.
func (s *Store) FindIntakeByToken(ctx context.Context, token string) (intake.Intake, error) {
	if err := ctx.Err(); err != nil {
		return intake.Intake{}, err
	}
	if s == nil || s.sqlDB == nil {
		return intake.Intake{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+intakeColumns+` FROM intakes WHERE token = ?`, token)
	return scanIntake(row)
}

// ListIntakesByPlanner lists a planner's intakes, newest first.
func (s *Store) ListIntakesByPlanner(ctx context.Context, plannerID string) ([]intake.Intake, error) {
	return s.listIntakes(ctx, `SELECT `+intakeColumns+` FROM intakes WHERE planner_id = ? ORDER BY created_at DESC, id`, plannerID)
}

// ListIntakesByStatus lists intakes in one status, newest first.
func (s *Store) ListIntakesByStatus(ctx context.Context, status intake.Status) ([]intake.Intake, error) {
	return s.listIntakes(ctx, `SELECT `+intakeColumns+` FROM intakes WHERE status = ? ORDER BY created_at DESC, id`, int(status))
}

func (s *Store) listIntakes(ctx context.Context, query string, arg any) ([]intake.Intake, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list intakes: %w", err)
	}
	defer rows.Close()

	var out []intake.Intake
	for rows.Next() {
		in, err := scanIntake(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list intakes: %w", err)
	}
	return out, nil
}

// UpdateIntake replaces one intake record if its stored status still matches.
func (s *Store) UpdateIntake(ctx context.Context, in intake.Intake, expectedStatus intake.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	prefs, err := encodePreferences(in.Preferences)
	if err != nil {
		return err
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE intakes SET
	status = ?, created_by = ?, planner_id = ?, client_name = ?, phone = ?, email = ?,
	event_date = ?, guest_count = ?, budget_min_cents = ?, budget_max_cents = ?,
	venue_type = ?, preferences = ?, current_tab = ?, converted_event_id = ?, updated_at = ?
WHERE id = ? AND status = ?`,
		int(in.Status),
		int(in.CreatedBy),
		in.PlannerID,
		in.ClientName,
		in.Phone,
		in.Email,
		toMillis(in.EventDate),
		in.GuestCount,
		in.BudgetMinCents,
		in.BudgetMaxCents,
		in.VenueType,
		prefs,
		in.CurrentTab,
		in.ConvertedEventID,
		toMillis(in.UpdatedAt),
		in.ID,
		int(expectedStatus),
	)
	if err != nil {
		return fmt.Errorf("update intake: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update intake rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// no row matched; re-read to tell a missing row from a lost race
	current, err := s.GetIntake(ctx, in.ID)
	if err != nil {
		return err
	}
	return storage.NewIntakeStatusConflict(expectedStatus, current.Status)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntake(row rowScanner) (intake.Intake, error) {
	var in intake.Intake
	var status, createdBy int
	var eventDate, createdAt, updatedAt int64
	var prefs string

	err := row.Scan(
		&in.ID,
		&in.Token,
		&status,
		&createdBy,
		&in.PlannerID,
		&in.ClientName,
		&in.Phone,
		&in.Email,
		&eventDate,
		&in.GuestCount,
		&in.BudgetMinCents,
		&in.BudgetMaxCents,
		&in.VenueType,
		&prefs,
		&in.CurrentTab,
		&in.ConvertedEventID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return intake.Intake{}, storage.ErrNotFound
		}
		return intake.Intake{}, fmt.Errorf("scan intake: %w", err)
	}

	in.Status = intake.Status(status)
	in.CreatedBy = intake.Creator(createdBy)
	in.EventDate = fromMillis(eventDate)
	in.CreatedAt = fromMillis(createdAt)
	in.UpdatedAt = fromMillis(updatedAt)
	in.Preferences, err = decodePreferences(prefs)
	if err != nil {
		return intake.Intake{}, err
	}
	return in, nil
}

func encodePreferences(prefs map[string]string) (string, error) {
	if len(prefs) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return "", fmt.Errorf("encode preferences: %w", err)
	}
	return string(raw), nil
}

func decodePreferences(raw string) (map[string]string, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	var prefs map[string]string
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return nil, fmt.Errorf("decode preferences: %w", err)
	}
	return prefs, nil
}
