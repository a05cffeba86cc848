package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"quorum/contexts/election/ballot-engine/domain/entities"
	domainerrors "quorum/contexts/election/ballot-engine/domain/errors"
	"quorum/contexts/election/ballot-engine/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	published bool
}

// Store is the in-memory implementation of every engine port, used for unit
// wiring. One mutex provides the same visible atomicity the postgres adapter
// gets from transactions and the ballot uniqueness constraint.
type Store struct {
	mu sync.RWMutex

	ballots      map[string]entities.Ballot
	ballotKeys   map[string]struct{}
	state        entities.ElectionState
	statePresent bool
	outbox       map[string]outboxRecord
	candidates   map[string]ports.CandidateProjection
}

func NewStore(seed []entities.Ballot) *Store {
	ballots := make(map[string]entities.Ballot, len(seed))
	keys := make(map[string]struct{}, len(seed))
	for _, ballot := range seed {
		ballots[ballot.BallotID] = ballot
		keys[ballotKey(ballot.VoterID, ballot.CandidateID, ballot.Round)] = struct{}{}
	}
	return &Store{
		ballots:      ballots,
		ballotKeys:   keys,
		state:        entities.DefaultElectionState(),
		statePresent: true,
		outbox:       make(map[string]outboxRecord),
		candidates:   make(map[string]ports.CandidateProjection),
	}
}

func (s *Store) SetCandidate(candidate ports.CandidateProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates[strings.TrimSpace(candidate.CandidateID)] = ports.CandidateProjection{
		CandidateID:     strings.TrimSpace(candidate.CandidateID),
		Name:            strings.TrimSpace(candidate.Name),
		Category:        candidate.Category,
		Round2Qualified: candidate.Round2Qualified,
	}
}

func (s *Store) SetState(state entities.ElectionState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.statePresent = true
}

// ClearState simulates a missing singleton row for setup-defect tests.
func (s *Store) ClearState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statePresent = false
}

func (s *Store) Ballots() []entities.Ballot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Ballot, 0, len(s.ballots))
	for _, ballot := range s.ballots {
		items = append(items, ballot)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].BallotID < items[j].BallotID })
	return items
}

func (s *Store) CreateBatchWithOutbox(
	_ context.Context,
	ballots []entities.Ballot,
	event ports.EventEnvelope,
) error {
	if len(ballots) == 0 {
		return domainerrors.ErrInvalidVoteInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ballot := range ballots {
		key := ballotKey(ballot.VoterID, ballot.CandidateID, ballot.Round)
		if _, exists := s.ballotKeys[key]; exists {
			return domainerrors.ErrAlreadyVoted
		}
	}
	for _, ballot := range ballots {
		s.ballots[ballot.BallotID] = ballot
		s.ballotKeys[ballotKey(ballot.VoterID, ballot.CandidateID, ballot.Round)] = struct{}{}
	}
	s.appendOutboxLocked(event)
	return nil
}

func (s *Store) HasVoted(_ context.Context, voterID string, round int) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voterID = strings.TrimSpace(voterID)
	for _, ballot := range s.ballots {
		if ballot.VoterID == voterID && ballot.Round == round {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CountByRound(_ context.Context, round int) ([]ports.BallotCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct {
		candidateID string
		voteType    entities.VoteType
	}
	grouped := make(map[key]int64)
	for _, ballot := range s.ballots {
		if ballot.Round != round {
			continue
		}
		grouped[key{ballot.CandidateID, ballot.Type}]++
	}

	counts := make([]ports.BallotCount, 0, len(grouped))
	for k, total := range grouped {
		counts = append(counts, ports.BallotCount{
			CandidateID: k.candidateID,
			Type:        k.voteType,
			Count:       total,
		})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].CandidateID == counts[j].CandidateID {
			return counts[i].Type < counts[j].Type
		}
		return counts[i].CandidateID < counts[j].CandidateID
	})
	return counts, nil
}

func (s *Store) CountDistinctVoters(_ context.Context, round int) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	voters := make(map[string]struct{})
	for _, ballot := range s.ballots {
		if ballot.Round == round {
			voters[ballot.VoterID] = struct{}{}
		}
	}
	return int64(len(voters)), nil
}

func (s *Store) Get(_ context.Context) (entities.ElectionState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.statePresent {
		return entities.ElectionState{}, domainerrors.ErrStateNotFound
	}
	return s.state, nil
}

func (s *Store) Transition(
	_ context.Context,
	cmd entities.PhaseCommand,
	updatedAt time.Time,
) (entities.ElectionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.statePresent {
		return entities.ElectionState{}, domainerrors.ErrStateNotFound
	}
	next, ok := s.state.Phase.Apply(cmd)
	if !ok {
		return entities.ElectionState{}, domainerrors.ErrInvalidTransition
	}
	s.state.Phase = next
	s.state.UpdatedAt = updatedAt.UTC()
	return s.state, nil
}

func (s *Store) UpdateConfig(
	_ context.Context,
	update ports.ElectionConfigUpdate,
	updatedAt time.Time,
) (entities.ElectionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.statePresent {
		return entities.ElectionState{}, domainerrors.ErrStateNotFound
	}
	apply := func(target *int, value *int) {
		if value != nil {
			*target = *value
		}
	}
	apply(&s.state.Round1DirectorMaxApprove, update.Round1DirectorMaxApprove)
	apply(&s.state.Round1ManagerMaxApprove, update.Round1ManagerMaxApprove)
	apply(&s.state.Round2DirectorMaxApprove, update.Round2DirectorMaxApprove)
	apply(&s.state.Round2ManagerMaxApprove, update.Round2ManagerMaxApprove)
	apply(&s.state.DirectorQualifyCount, update.DirectorQualifyCount)
	apply(&s.state.ManagerQualifyCount, update.ManagerQualifyCount)
	apply(&s.state.DirectorElectCount, update.DirectorElectCount)
	apply(&s.state.ManagerElectCount, update.ManagerElectCount)
	s.state.UpdatedAt = updatedAt.UTC()
	return s.state, nil
}

func (s *Store) ListAll(_ context.Context) ([]ports.CandidateProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.CandidateProjection, 0, len(s.candidates))
	for _, candidate := range s.candidates {
		items = append(items, candidate)
	}
	sortProjections(items)
	return items, nil
}

func (s *Store) ListQualified(_ context.Context) ([]ports.CandidateProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.CandidateProjection, 0)
	for _, candidate := range s.candidates {
		if candidate.Round2Qualified {
			items = append(items, candidate)
		}
	}
	sortProjections(items)
	return items, nil
}

func (s *Store) GetByIDs(_ context.Context, ids []string) (map[string]ports.CandidateProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projections := make(map[string]ports.CandidateProjection, len(ids))
	for _, id := range ids {
		if candidate, ok := s.candidates[strings.TrimSpace(id)]; ok {
			projections[strings.TrimSpace(id)] = candidate
		}
	}
	return projections, nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendOutboxLocked(envelope)
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, record := range s.outbox {
		if record.published {
			continue
		}
		items = append(items, record.message)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].OutboxID < items[j].OutboxID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return nil
	}
	record.published = true
	s.outbox[strings.TrimSpace(outboxID)] = record
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) appendOutboxLocked(envelope ports.EventEnvelope) {
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if _, exists := s.outbox[outboxID]; exists {
		return
	}
	payload, err := marshalEnvelope(envelope)
	if err != nil {
		return
	}
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:  outboxID,
			EventType: envelope.EventType,
			Payload:   payload,
			CreatedAt: envelope.OccurredAt.UTC(),
		},
	}
}

func marshalEnvelope(envelope ports.EventEnvelope) ([]byte, error) {
	return json.Marshal(envelope)
}

func ballotKey(voterID, candidateID string, round int) string {
	return strings.TrimSpace(voterID) + "|" + strings.TrimSpace(candidateID) + "|" + strconv.Itoa(round)
}

func sortProjections(items []ports.CandidateProjection) {
	sort.Slice(items, func(i, j int) bool { return items[i].CandidateID < items[j].CandidateID })
}

var _ ports.BallotRepository = (*Store)(nil)
var _ ports.ElectionStateRepository = (*Store)(nil)
var _ ports.CandidateDirectory = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
