// Package memory provides an in-memory storage implementation.
//
// It mirrors the guarded-write semantics of the SQLite store and is meant
// for tests and local seeding, not durability.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/planwellhq/planwell/internal/planning/client"
	"github.com/planwellhq/planwell/internal/planning/event"
	"github.com/planwellhq/planwell/internal/planning/intake"
	"github.com/planwellhq/planwell/internal/planning/proposal"
	"github.com/planwellhq/planwell/internal/storage"
)

// Store keeps all records in process memory behind one mutex.
type Store struct {
	mu        sync.Mutex
	intakes   map[string]intake.Intake
	events    map[string]event.Event
	proposals map[string]proposal.Proposal
	profiles  map[string]client.Profile
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		intakes:   make(map[string]intake.Intake),
		events:    make(map[string]event.Event),
		proposals: make(map[string]proposal.Proposal),
		profiles:  make(map[string]client.Profile),
	}
}

// Close releases nothing; it exists to satisfy storage.Store.
func (s *Store) Close() error {
	return nil
}

// CreateIntake inserts one intake record.
func (s *Store) CreateIntake(ctx context.Context, in intake.Intake) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.intakes[in.ID]; ok {
		return storage.ErrAlreadyExists
	}
	for _, existing := range s.intakes {
		if existing.Token == in.Token {
			return storage.ErrAlreadyExists
		}
	}
	s.intakes[in.ID] = cloneIntake(in)
	return nil
}

// GetIntake fetches one intake by ID.
func (s *Store) GetIntake(ctx context.Context, id string) (intake.Intake, error) {
	if err := ctx.Err(); err != nil {
		return intake.Intake{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.intakes[id]
	if !ok {
		return intake.Intake{}, storage.ErrNotFound
	}
	return cloneIntake(in), nil
}

// FindIntakeByToken fetches one intake by its access token.
func (s *Store) FindIntakeByToken(ctx context.Context, token string) (intake.Intake, error) {
	if err := ctx.Err(); err != nil {
		return intake.Intake{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, in := range s.intakes {
		if in.Token == token {
			return cloneIntake(in), nil
		}
	}
	return intake.Intake{}, storage.ErrNotFound
}

// ListIntakesByPlanner lists a planner's intakes, newest first.
func (s *Store) ListIntakesByPlanner(ctx context.Context, plannerID string) ([]intake.Intake, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []intake.Intake
	for _, in := range s.intakes {
		if in.PlannerID == plannerID {
			out = append(out, cloneIntake(in))
		}
	}
	sortIntakes(out)
	return out, nil
}

// ListIntakesByStatus lists intakes in one status, newest first.
func (s *Store) ListIntakesByStatus(ctx context.Context, status intake.Status) ([]intake.Intake, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []intake.Intake
	for _, in := range s.intakes {
		if in.Status == status {
			out = append(out, cloneIntake(in))
		}
	}
	sortIntakes(out)
	return out, nil
}

// UpdateIntake replaces one intake record if its stored status still matches.
func (s *Store) UpdateIntake(ctx context.Context, in intake.Intake, expectedStatus intake.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.intakes[in.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if current.Status != expectedStatus {
		return storage.NewIntakeStatusConflict(expectedStatus, current.Status)
	}
	s.intakes[in.ID] = cloneIntake(in)
	return nil
}

// CreateEvent inserts one event record.
func (s *Store) CreateEvent(ctx context.Context, ev event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[ev.ID]; ok {
		return storage.ErrAlreadyExists
	}
	for _, existing := range s.events {
		if ev.SubmissionID != "" && existing.SubmissionID == ev.SubmissionID {
			return storage.ErrAlreadyExists
		}
		if ev.PublicToken != "" && existing.PublicToken == ev.PublicToken {
			return storage.ErrAlreadyExists
		}
	}
	s.events[ev.ID] = ev
	return nil
}

// GetEvent fetches one event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return event.Event{}, storage.ErrNotFound
	}
	return ev, nil
}

// FindEventBySubmissionID fetches the event produced by one intake, if any.
func (s *Store) FindEventBySubmissionID(ctx context.Context, submissionID string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.events {
		if ev.SubmissionID != "" && ev.SubmissionID == submissionID {
			return ev, nil
		}
	}
	return event.Event{}, storage.ErrNotFound
}

// FindEventByPublicToken fetches one event by its public share token.
func (s *Store) FindEventByPublicToken(ctx context.Context, token string) (event.Event, error) {
	if err := ctx.Err(); err != nil {
		return event.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.events {
		if ev.PublicToken != "" && ev.PublicToken == token {
			return ev, nil
		}
	}
	return event.Event{}, storage.ErrNotFound
}

// ListEventsByPlanner lists a planner's events, newest first.
func (s *Store) ListEventsByPlanner(ctx context.Context, plannerID string) ([]event.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Event
	for _, ev := range s.events {
		if ev.PlannerID == plannerID {
			out = append(out, ev)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateEvent replaces one event record if its stored status still matches.
func (s *Store) UpdateEvent(ctx context.Context, ev event.Event, expectedStatus event.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.events[ev.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if current.Status != expectedStatus {
		return storage.NewEventStatusConflict(expectedStatus, current.Status)
	}
	s.events[ev.ID] = ev
	return nil
}

// DeleteEvent removes one event record if its stored status still matches.
func (s *Store) DeleteEvent(ctx context.Context, id string, expectedStatus event.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.events[id]
	if !ok {
		return storage.ErrNotFound
	}
	if current.Status != expectedStatus {
		return storage.NewEventStatusConflict(expectedStatus, current.Status)
	}
	delete(s.events, id)
	return nil
}

// CreateProposal inserts one proposal record.
func (s *Store) CreateProposal(ctx context.Context, p proposal.Proposal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.proposals[p.ID]; ok {
		return storage.ErrAlreadyExists
	}
	for _, existing := range s.proposals {
		if existing.Token == p.Token {
			return storage.ErrAlreadyExists
		}
	}
	s.proposals[p.ID] = cloneProposal(p)
	return nil
}

// GetProposal fetches one proposal by ID.
func (s *Store) GetProposal(ctx context.Context, id string) (proposal.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return proposal.Proposal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.proposals[id]
	if !ok {
		return proposal.Proposal{}, storage.ErrNotFound
	}
	return cloneProposal(p), nil
}

// FindProposalByToken fetches one proposal by its client access token.
func (s *Store) FindProposalByToken(ctx context.Context, token string) (proposal.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return proposal.Proposal{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.proposals {
		if p.Token == token {
			return cloneProposal(p), nil
		}
	}
	return proposal.Proposal{}, storage.ErrNotFound
}

// ListProposalsByEvent lists an event's proposals, newest first.
func (s *Store) ListProposalsByEvent(ctx context.Context, eventID string) ([]proposal.Proposal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []proposal.Proposal
	for _, p := range s.proposals {
		if p.EventID == eventID {
			out = append(out, cloneProposal(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// UpdateProposal replaces one proposal record if its stored status still
// matches.
func (s *Store) UpdateProposal(ctx context.Context, p proposal.Proposal, expectedStatus proposal.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.proposals[p.ID]
	if !ok {
		return storage.ErrNotFound
	}
	if current.Status != expectedStatus {
		return storage.NewProposalStatusConflict(expectedStatus, current.Status)
	}
	s.proposals[p.ID] = cloneProposal(p)
	return nil
}

// CreateProfile inserts one client profile record.
func (s *Store) CreateProfile(ctx context.Context, p client.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; ok {
		return storage.ErrAlreadyExists
	}
	for _, existing := range s.profiles {
		if existing.PlannerID == p.PlannerID && existing.Phone == p.Phone {
			return storage.ErrAlreadyExists
		}
	}
	s.profiles[p.ID] = p
	return nil
}

// GetProfile fetches one client profile by ID.
func (s *Store) GetProfile(ctx context.Context, id string) (client.Profile, error) {
	if err := ctx.Err(); err != nil {
		return client.Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return client.Profile{}, storage.ErrNotFound
	}
	return p, nil
}

// FindProfileByPhone fetches one planner's client profile by phone.
func (s *Store) FindProfileByPhone(ctx context.Context, plannerID, phone string) (client.Profile, error) {
	if err := ctx.Err(); err != nil {
		return client.Profile{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.profiles {
		if p.PlannerID == plannerID && p.Phone == phone {
			return p, nil
		}
	}
	return client.Profile{}, storage.ErrNotFound
}

// UpdateProfile replaces one client profile record.
func (s *Store) UpdateProfile(ctx context.Context, p client.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[p.ID]; !ok {
		return storage.ErrNotFound
	}
	s.profiles[p.ID] = p
	return nil
}

func cloneIntake(in intake.Intake) intake.Intake {
	cloned := in
	if in.Preferences != nil {
		prefs := make(map[string]string, len(in.Preferences))
		for k, v := range in.Preferences {
			prefs[k] = v
		}
		cloned.Preferences = prefs
	}
	return cloned
}

func cloneProposal(p proposal.Proposal) proposal.Proposal {
	cloned := p
	if p.Items != nil {
		items := make([]proposal.LineItem, len(p.Items))
		copy(items, p.Items)
		cloned.Items = items
	}
	return cloned
}

func sortIntakes(intakes []intake.Intake) {
	sort.Slice(intakes, func(i, j int) bool {
		if !intakes[i].CreatedAt.Equal(intakes[j].CreatedAt) {
			return intakes[i].CreatedAt.After(intakes[j].CreatedAt)
		}
		return intakes[i].ID < intakes[j].ID
	})
}

var _ storage.Store = (*Store)(nil)
