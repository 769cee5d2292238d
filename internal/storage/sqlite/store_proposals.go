package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/planwellhq/planwell/internal/planning/proposal"
	"github.com/planwellhq/planwell/internal/storage"
)

const proposalColumns = `id, event_id, token, status, tier, title, items,
	discount_cents, tax_rate_bps, total_cents, client_notes,
	sent_at, viewed_at, decided_at, created_at, updated_at`

// CreateProposal inserts one proposal record.
func (s *Store) CreateProposal(ctx context.Context, p proposal.Proposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if p.ID == "" {
		return fmt.Errorf("proposal id is required")
	}
	items, err := encodeItems(p.Items)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO proposals (`+proposalColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.EventID,
		p.Token,
		int(p.Status),
		int(p.Tier),
		p.Title,
		items,
		p.DiscountCents,
		p.TaxRateBps,
		p.TotalCents,
		p.ClientNotes,
		toNullMillis(p.SentAt),
		toNullMillis(p.ViewedAt),
		toNullMillis(p.DecidedAt),
		toMillis(p.CreatedAt),
		toMillis(p.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

// GetProposal fetches one proposal by ID.
func (s *Store) GetProposal(ctx context.Context, id string) (proposal.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return proposal.Proposal{}, err
	}
	if s == nil || s.sqlDB == nil {
		return proposal.Proposal{}, fmt.Errorf("storage is not configured")
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = ?`, id)
	return scanProposal(row)
}

// FindProposalByToken fetches one proposal by its client access token.
func (s *Store) FindProposalByToken(ctx context.Context, token string) (proposal.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return proposal.Proposal{}, err
	}
	if s == nil || s.sqlDB == nil {
		return proposal.Proposal{}, fmt.Errorf("storage is not configured")
	}
	if token == "" {
		return proposal.Proposal{}, storage.ErrNotFound
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE token = ?`, token)
	return scanProposal(row)
}

// ListProposalsByEvent lists an event's proposals, newest first.
func (s *Store) ListProposalsByEvent(ctx context.Context, eventID string) ([]proposal.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE event_id = ? ORDER BY created_at DESC, id`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var out []proposal.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return out, nil
}

// UpdateProposal replaces one proposal record if its stored status still
// matches.
func (s *Store) UpdateProposal(ctx context.Context, p proposal.Proposal, expectedStatus proposal.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	items, err := encodeItems(p.Items)
	if err != nil {
		return err
	}

	res, err := s.sqlDB.ExecContext(ctx, `
UPDATE proposals SET
	status = ?, tier = ?, title = ?, items = ?, discount_cents = ?, tax_rate_bps = ?,
	total_cents = ?, client_notes = ?, sent_at = ?, viewed_at = ?, decided_at = ?, updated_at = ?
WHERE id = ? AND status = ?`,
		int(p.Status),
		int(p.Tier),
		p.Title,
		items,
		p.DiscountCents,
		p.TaxRateBps,
		p.TotalCents,
		p.ClientNotes,
		toNullMillis(p.SentAt),
		toNullMillis(p.ViewedAt),
		toNullMillis(p.DecidedAt),
		toMillis(p.UpdatedAt),
		p.ID,
		int(expectedStatus),
	)
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update proposal rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	current, err := s.GetProposal(ctx, p.ID)
	if err != nil {
		return err
	}
	return storage.NewProposalStatusConflict(expectedStatus, current.Status)
}

func scanProposal(row rowScanner) (proposal.Proposal, error) {
	var p proposal.Proposal
	var status, tier int
	var items string
	var createdAt, updatedAt int64
	var sentAt, viewedAt, decidedAt sql.NullInt64

	err := row.Scan(
		&p.ID,
		&p.EventID,
		&p.Token,
		&status,
		&tier,
		&p.Title,
		&items,
		&p.DiscountCents,
		&p.TaxRateBps,
		&p.TotalCents,
		&p.ClientNotes,
		&sentAt,
		&viewedAt,
		&decidedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return proposal.Proposal{}, storage.ErrNotFound
		}
		return proposal.Proposal{}, fmt.Errorf("scan proposal: %w", err)
	}

	p.Status = proposal.Status(status)
	p.Tier = proposal.Tier(tier)
	p.SentAt = fromNullMillis(sentAt)
	p.ViewedAt = fromNullMillis(viewedAt)
	p.DecidedAt = fromNullMillis(decidedAt)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	p.Items, err = decodeItems(items)
	if err != nil {
		return proposal.Proposal{}, err
	}
	return p, nil
}

func encodeItems(items []proposal.LineItem) (string, error) {
	if len(items) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode line items: %w", err)
	}
	return string(raw), nil
}

func decodeItems(raw string) ([]proposal.LineItem, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var items []proposal.LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}
	return items, nil
}
