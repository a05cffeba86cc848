package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"quorum/contexts/election/candidate-catalog/domain/entities"
	domainerrors "quorum/contexts/election/candidate-catalog/domain/errors"
	"quorum/contexts/election/candidate-catalog/ports"
)

// Store is the in-memory implementation of every catalog port, used for unit
// wiring. One mutex gives the same visible atomicity the postgres adapter
// gets from its replace transaction.
type Store struct {
	mu sync.RWMutex

	candidates map[string]entities.Candidate
	referenced map[string]struct{}
}

func NewStore(seed []entities.Candidate) *Store {
	candidates := make(map[string]entities.Candidate, len(seed))
	for _, candidate := range seed {
		candidates[candidate.CandidateID] = candidate
	}
	return &Store{
		candidates: candidates,
		referenced: make(map[string]struct{}),
	}
}

// MarkBallotReference records that committed ballots reference the candidate,
// so delete-guard paths can be exercised without the ballot store.
func (s *Store) MarkBallotReference(candidateID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referenced[strings.TrimSpace(candidateID)] = struct{}{}
}

func (s *Store) Create(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[candidate.CandidateID] = candidate
	return nil
}

func (s *Store) CreateBatch(_ context.Context, candidates []entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, candidate := range candidates {
		s.candidates[candidate.CandidateID] = candidate
	}
	return nil
}

func (s *Store) GetByID(_ context.Context, candidateID string) (entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[candidateID]
	if !ok {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	return candidate, nil
}

func (s *Store) ListAll(_ context.Context) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(func(entities.Candidate) bool { return true }), nil
}

func (s *Store) ListByCategory(_ context.Context, category entities.Category) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(func(c entities.Candidate) bool { return c.Category == category }), nil
}

func (s *Store) ListQualified(_ context.Context) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(func(c entities.Candidate) bool { return c.Round2Qualified }), nil
}

func (s *Store) listLocked(keep func(entities.Candidate) bool) []entities.Candidate {
	out := make([]entities.Candidate, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		if keep(candidate) {
			out = append(out, candidate)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].CandidateID < out[j].CandidateID
	})
	return out
}

func (s *Store) Update(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[candidate.CandidateID]; !ok {
		return domainerrors.ErrCandidateNotFound
	}
	s.candidates[candidate.CandidateID] = candidate
	return nil
}

func (s *Store) Delete(_ context.Context, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[candidateID]; !ok {
		return domainerrors.ErrCandidateNotFound
	}
	delete(s.candidates, candidateID)
	return nil
}

func (s *Store) ReplaceQualified(_ context.Context, candidateIDs []string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range candidateIDs {
		if _, ok := s.candidates[id]; !ok {
			return domainerrors.ErrUnknownQualifiedTarget
		}
	}
	wanted := make(map[string]struct{}, len(candidateIDs))
	for _, id := range candidateIDs {
		wanted[id] = struct{}{}
	}
	for id, candidate := range s.candidates {
		_, qualify := wanted[id]
		if candidate.Round2Qualified != qualify {
			candidate.Round2Qualified = qualify
			candidate.UpdatedAt = updatedAt
			s.candidates[id] = candidate
		}
	}
	return nil
}

func (s *Store) HasBallots(_ context.Context, candidateID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.referenced[candidateID]
	return ok, nil
}

func (s *Store) Now() time.Time { return time.Now().UTC() }

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.CandidateRepository = (*Store)(nil)
var _ ports.BallotReferenceChecker = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
