package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/storage"
)

const eventColumns = `id, submission_id, planner_id, status, name, client_name, phone, email,
	event_date, venue_type, guest_count, budget_cents, public_token,
	approved_at, completed_at, archived_at, created_at, updated_at`

// CreateEvent inserts one event record.
func (s *Store) CreateEvent(ctx context.Context, ev event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if ev.ID == "" {
		return fmt.Errorf("event id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO events (`+eventColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID,
		toNullString(ev.SubmissionID),
		ev.PlannerID,
		int(ev.Status),
		ev.Name,
		ev.ClientName,
		ev.Phone,
		ev.Email,
		toMillis(ev.EventDate),
		ev.VenueType,
		ev.GuestCount,
		ev.BudgetCents,
		toNullString(ev.PublicToken),
		toNullMillis(ev.ApprovedAt),
		toNullMillis(ev.CompletedAt),
		toNullMillis(ev.ArchivedAt),
		toMillis(ev.CreatedAt),
		toMillis(ev.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetEvent fetches one event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// FindEventBySubmissionID fetches the event produced by one intake, if any.
func (s *Store) FindEventBySubmissionID(ctx context.Context, submissionID string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if submissionID == "" {
		return event.Event{}, storage.ErrNotFound
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE submission_id = ?`, submissionID)
	return scanEvent(row)
}

// FindEventByPublicToken fetches one event by its public share token.
func (s *Store) FindEventByPublicToken(ctx context.Context, token string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	if s == nil || s.sqlDB == nil {
		return event.Event{}, fmt.Errorf("storage is not configured")
	}
	if token == "" {
		return event.Event{}, storage.ErrNotFound
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE public_token = ?`, token)
	return scanEvent(row)
}

// ListEventsByPlanner lists a planner's events, newest first.
func (s *Store) ListEventsByPlanner(ctx context.Context, plannerID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+eventColumns+` FROM events WHERE planner_id = ? ORDER BY created_at DESC, id`, plannerID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []event.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

// UpdateEvent replaces one event record if its stored status still matches.
func (s *Store) UpdateEvent(ctx context.Context, ev event.Event, expectedStatus event.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE events SET
	status = ?, name = ?, client_name = ?, phone = ?, email = ?, event_date = ?,
	venue_type = ?, guest_count = ?, budget_cents = ?, public_token = ?,
	approved_at = ?, completed_at = ?, archived_at = ?, updated_at = ?
WHERE id = ? AND status = ?`,
		int(ev.Status),
		ev.Name,
		ev.ClientName,
		ev.Phone,
		ev.Email,
		toMillis(ev.EventDate),
		ev.VenueType,
		ev.GuestCount,
		ev.BudgetCents,
		toNullString(ev.PublicToken),
		toNullMillis(ev.ApprovedAt),
		toNullMillis(ev.CompletedAt),
		toNullMillis(ev.ArchivedAt),
		toMillis(ev.UpdatedAt),
		ev.ID,
		int(expectedStatus),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("update event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update event rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	current, err := s.GetEvent(ctx, ev.ID)
	if err != nil {
		return err
	}
	return storage.NewEventStatusConflict(expectedStatus, current.Status)
}

// DeleteEvent removes one event record if its stored status still matches.
func (s *Store) DeleteEvent(ctx context.Context, id string, expectedStatus event.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM events WHERE id = ? AND status = ?`, id, int(expectedStatus))
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete event rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	current, err := s.GetEvent(ctx, id)
	if err != nil {
		return err
	}
	return storage.NewEventStatusConflict(expectedStatus, current.Status)
}

func scanEvent(row rowScanner) (event.Event, error) {
	var ev event.Event
	var status int
	var submissionID, publicToken sql.NullString
	var eventDate, createdAt, updatedAt int64
	var approvedAt, completedAt, archivedAt sql.NullInt64

	err := row.Scan(
		&ev.ID,
		&submissionID,
		&ev.PlannerID,
		&status,
		&ev.Name,
		&ev.ClientName,
		&ev.Phone,
		&ev.Email,
		&eventDate,
		&ev.VenueType,
		&ev.GuestCount,
		&ev.BudgetCents,
		&publicToken,
		&approvedAt,
		&completedAt,
		&archivedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return event.Event{}, storage.ErrNotFound
		}
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}

	ev.SubmissionID = fromNullString(submissionID)
	ev.PublicToken = fromNullString(publicToken)
	ev.Status = event.Status(status)
	ev.EventDate = fromMillis(eventDate)
	ev.ApprovedAt = fromNullMillis(approvedAt)
	ev.CompletedAt = fromNullMillis(completedAt)
	ev.ArchivedAt = fromNullMillis(archivedAt)
	ev.CreatedAt = fromMillis(createdAt)
	ev.UpdatedAt = fromMillis(updatedAt)
	return ev, nil
}
