package queries

import (
	"context"
	"strings"

	"quorum/contexts/election/ballot-engine/domain/entities"
	domainerrors "quorum/contexts/election/ballot-engine/domain/errors"
	"quorum/contexts/election/ballot-engine/ports"
)

// StatusUseCase serves the voter-facing read surface: current status, the
// per-round candidate list, and the has-voted check.
type StatusUseCase struct {
	Ballots   ports.BallotRepository
	States    ports.ElectionStateRepository
	Directory ports.CandidateDirectory
}

func (uc StatusUseCase) Status(ctx context.Context) (entities.ElectionState, error) {
	return uc.States.Get(ctx)
}

// Candidates lists every candidate for round 1 and only qualified candidates
// for round 2.
func (uc StatusUseCase) Candidates(ctx context.Context, round int) ([]ports.CandidateProjection, error) {
	switch round {
	case 1:
		return uc.Directory.ListAll(ctx)
	case 2:
		return uc.Directory.ListQualified(ctx)
	default:
		return nil, domainerrors.ErrInvalidRound
	}
}

func (uc StatusUseCase) HasVoted(ctx context.Context, voterID string, round int) (bool, error) {
	voterID = strings.TrimSpace(voterID)
	if voterID == "" {
		return false, domainerrors.ErrInvalidVoteInput
	}
	if round != 1 && round != 2 {
		return false, domainerrors.ErrInvalidRound
	}
	return uc.Ballots.HasVoted(ctx, voterID, round)
}
