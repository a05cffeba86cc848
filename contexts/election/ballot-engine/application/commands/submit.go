package commands

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	application "quorum/contexts/election/ballot-engine/application"
	"quorum/contexts/election/ballot-engine/domain/entities"
	domainerrors "quorum/contexts/election/ballot-engine/domain/errors"
	"quorum/contexts/election/ballot-engine/ports"
)

// SubmitCommand carries one voter's full ballot batch for one round. Keys are
// candidate ids, values are raw vote-type strings from transport.
type SubmitCommand struct {
	VoterID string
	Round   int
	Votes   map[string]string
}

type SubmitResult struct {
	BallotCount int
}

// SubmitUseCase validates and atomically commits ballot batches. The
// duplicate-submission race is resolved by the storage uniqueness constraint,
// not by application locks: concurrent submissions for the same (voter, round)
// end with exactly one success and one ErrAlreadyVoted.
type SubmitUseCase struct {
	Ballots   ports.BallotRepository
	States    ports.ElectionStateRepository
	Directory ports.CandidateDirectory
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (uc SubmitUseCase) Submit(ctx context.Context, cmd SubmitCommand) (SubmitResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voterID := strings.TrimSpace(cmd.VoterID)
	logger.Info("ballot submission started",
		"event", "ballot_submit_started",
		"module", "election/ballot-engine",
		"layer", "application",
		"voter_id", voterID,
		"round", cmd.Round,
		"ballot_count", len(cmd.Votes),
	)

	votes, err := uc.validateInput(voterID, cmd)
	if err != nil {
		logger.Warn("ballot submission validation failed",
			"event", "ballot_submit_validation_failed",
			"module", "election/ballot-engine",
			"layer", "application",
			"voter_id", voterID,
			"round", cmd.Round,
			"error", err.Error(),
		)
		return SubmitResult{}, err
	}

	candidates, err := uc.resolveCandidates(ctx, votes)
	if err != nil {
		return SubmitResult{}, err
	}

	state, err := uc.States.Get(ctx)
	if err != nil {
		return SubmitResult{}, err
	}
	if state.ActiveRound() != cmd.Round {
		logger.Warn("ballot submission outside voting window",
			"event", "ballot_submit_round_closed",
			"module", "election/ballot-engine",
			"layer", "application",
			"voter_id", voterID,
			"round", cmd.Round,
			"phase", string(state.Phase),
		)
		return SubmitResult{}, domainerrors.ErrRoundNotOpen
	}

	voted, err := uc.Ballots.HasVoted(ctx, voterID, cmd.Round)
	if err != nil {
		return SubmitResult{}, err
	}
	if voted {
		return SubmitResult{}, domainerrors.ErrAlreadyVoted
	}

	if err := checkQuota(state, cmd.Round, votes, candidates); err != nil {
		logger.Warn("ballot submission quota rejected",
			"event", "ballot_submit_quota_rejected",
			"module", "election/ballot-engine",
			"layer", "application",
			"voter_id", voterID,
			"round", cmd.Round,
			"error", err.Error(),
		)
		return SubmitResult{}, err
	}

	now := uc.now()
	ballots, err := uc.buildBatch(ctx, voterID, cmd.Round, votes, now)
	if err != nil {
		return SubmitResult{}, err
	}
	envelope, err := uc.recordedEnvelope(ctx, voterID, cmd.Round, len(ballots), now)
	if err != nil {
		return SubmitResult{}, err
	}

	// The repository inserts the batch and the outbox row in one transaction;
	// a constraint violation from a racing submission rolls everything back
	// and surfaces as ErrAlreadyVoted.
	if err := uc.Ballots.CreateBatchWithOutbox(ctx, ballots, envelope); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) {
			logger.Warn("ballot submission lost duplicate race",
				"event", "ballot_submit_duplicate",
				"module", "election/ballot-engine",
				"layer", "application",
				"voter_id", voterID,
				"round", cmd.Round,
			)
		}
		return SubmitResult{}, err
	}

	logger.Info("ballot submission committed",
		"event", "ballot_submit_committed",
		"module", "election/ballot-engine",
		"layer", "application",
		"voter_id", voterID,
		"round", cmd.Round,
		"ballot_count", len(ballots),
	)
	return SubmitResult{BallotCount: len(ballots)}, nil
}

// validateInput rejects malformed submissions before any repository call.
func (uc SubmitUseCase) validateInput(voterID string, cmd SubmitCommand) (map[string]entities.VoteType, error) {
	if voterID == "" || len(cmd.Votes) == 0 {
		return nil, domainerrors.ErrInvalidVoteInput
	}
	if cmd.Round != 1 && cmd.Round != 2 {
		return nil, domainerrors.ErrInvalidRound
	}
	votes := make(map[string]entities.VoteType, len(cmd.Votes))
	for candidateID, raw := range cmd.Votes {
		candidateID = strings.TrimSpace(candidateID)
		if candidateID == "" {
			return nil, domainerrors.ErrInvalidVoteInput
		}
		voteType, ok := entities.ParseVoteType(strings.TrimSpace(raw))
		if !ok {
			return nil, domainerrors.ErrInvalidVoteInput
		}
		votes[candidateID] = voteType
	}
	return votes, nil
}

// resolveCandidates loads the referenced candidates and rejects the whole
// batch when any id is unknown. Stale ids never become persisted ballots.
func (uc SubmitUseCase) resolveCandidates(
	ctx context.Context,
	votes map[string]entities.VoteType,
) (map[string]ports.CandidateProjection, error) {
	ids := make([]string, 0, len(votes))
	for candidateID := range votes {
		ids = append(ids, candidateID)
	}
	candidates, err := uc.Directory.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, candidateID := range ids {
		if _, ok := candidates[candidateID]; !ok {
			return nil, domainerrors.ErrCandidateUnknown
		}
	}
	return candidates, nil
}

// checkQuota compares the batch's own approve counts per candidate category
// against the configured maximum for the round. Quota is evaluated on the
// incoming batch only, never on a cross-voter running total.
func checkQuota(
	state entities.ElectionState,
	round int,
	votes map[string]entities.VoteType,
	candidates map[string]ports.CandidateProjection,
) error {
	approvesByCategory := make(map[entities.Category]int)
	for candidateID, voteType := range votes {
		if voteType != entities.VoteTypeApprove {
			continue
		}
		approvesByCategory[candidates[candidateID].Category]++
	}

	categories := make([]entities.Category, 0, len(approvesByCategory))
	for category := range approvesByCategory {
		categories = append(categories, category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i] < categories[j] })

	for _, category := range categories {
		max := state.MaxApprove(round, category)
		actual := approvesByCategory[category]
		if actual > max {
			return domainerrors.QuotaExceededError{
				Category: string(category),
				Max:      max,
				Actual:   actual,
			}
		}
	}
	return nil
}

// buildBatch materialises ballots sharing one commit instant, ordered by
// candidate id so ids and inserts are deterministic.
func (uc SubmitUseCase) buildBatch(
	ctx context.Context,
	voterID string,
	round int,
	votes map[string]entities.VoteType,
	now time.Time,
) ([]entities.Ballot, error) {
	ids := make([]string, 0, len(votes))
	for candidateID := range votes {
		ids = append(ids, candidateID)
	}
	sort.Strings(ids)

	ballots := make([]entities.Ballot, 0, len(ids))
	for _, candidateID := range ids {
		ballotID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return nil, err
		}
		ballots = append(ballots, entities.Ballot{
			BallotID:    ballotID,
			VoterID:     voterID,
			CandidateID: candidateID,
			Round:       round,
			Type:        votes[candidateID],
			CreatedAt:   now,
		})
	}
	return ballots, nil
}

func (uc SubmitUseCase) recordedEnvelope(
	ctx context.Context,
	voterID string,
	round int,
	ballotCount int,
	occurredAt time.Time,
) (ports.EventEnvelope, error) {
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return newElectionEnvelope(eventID, "ballot.recorded", voterID, occurredAt, map[string]any{
		"voter_id":     voterID,
		"round":        round,
		"ballot_count": ballotCount,
		"occurred_at":  occurredAt.Format(time.RFC3339),
	})
}

func (uc SubmitUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
