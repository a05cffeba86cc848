package queries

import (
	"context"
	"sort"

	"quorum/contexts/election/ballot-engine/domain/entities"
	domainerrors "quorum/contexts/election/ballot-engine/domain/errors"
	"quorum/contexts/election/ballot-engine/ports"
)

// ResultsUseCase aggregates committed ballots into per-candidate tallies and
// the live-display summary. Both views are side-effect free and recomputable
// at any time.
type ResultsUseCase struct {
	Ballots   ports.BallotRepository
	States    ports.ElectionStateRepository
	Directory ports.CandidateDirectory
}

// Tally computes the result list for a round with one grouped count pass over
// the round's ballots. Candidates without ballots report zero counts. Order
// is approve count descending, candidate id ascending as tie-break, so
// repeated calls return identical output.
func (uc ResultsUseCase) Tally(ctx context.Context, round int) ([]entities.CandidateTally, error) {
	if round != 1 && round != 2 {
		return nil, domainerrors.ErrInvalidRound
	}
	candidates, err := uc.roundCandidates(ctx, round)
	if err != nil {
		return nil, err
	}
	counts, err := uc.Ballots.CountByRound(ctx, round)
	if err != nil {
		return nil, err
	}
	return buildTallies(candidates, counts), nil
}

// LiveSummary reports the current phase, the active round (0 outside voting
// windows), the distinct voter count for the active round, and the tally
// split into director/manager buckets. During round 2 the buckets are
// restricted to qualified candidates; outside an active voting window the
// most recently voted round is shown.
func (uc ResultsUseCase) LiveSummary(ctx context.Context) (entities.LiveSummary, error) {
	state, err := uc.States.Get(ctx)
	if err != nil {
		return entities.LiveSummary{}, err
	}

	summary := entities.LiveSummary{
		Phase:        state.Phase,
		CurrentRound: state.ActiveRound(),
		Directors:    []entities.CandidateTally{},
		Managers:     []entities.CandidateTally{},
	}

	round := displayRound(state.Phase)
	if round == 0 {
		return summary, nil
	}

	candidates, err := uc.roundCandidates(ctx, round)
	if err != nil {
		return entities.LiveSummary{}, err
	}
	counts, err := uc.Ballots.CountByRound(ctx, round)
	if err != nil {
		return entities.LiveSummary{}, err
	}
	if summary.CurrentRound != 0 {
		voters, err := uc.Ballots.CountDistinctVoters(ctx, summary.CurrentRound)
		if err != nil {
			return entities.LiveSummary{}, err
		}
		summary.VoterCount = voters
	}

	for _, tally := range buildTallies(candidates, counts) {
		switch tally.Category {
		case entities.CategoryManager:
			summary.Managers = append(summary.Managers, tally)
		default:
			summary.Directors = append(summary.Directors, tally)
		}
	}
	return summary, nil
}

// roundCandidates selects all candidates for round 1 and qualified-only for
// round 2.
func (uc ResultsUseCase) roundCandidates(ctx context.Context, round int) ([]ports.CandidateProjection, error) {
	if round == 2 {
		return uc.Directory.ListQualified(ctx)
	}
	return uc.Directory.ListAll(ctx)
}

// displayRound picks which round's ballots a summary shows for a phase.
func displayRound(phase entities.ElectionPhase) int {
	switch phase {
	case entities.PhaseRound1Voting, entities.PhaseRound1Ended:
		return 1
	case entities.PhaseRound2Voting, entities.PhaseRound2Ended:
		return 2
	default:
		return 0
	}
}

func buildTallies(
	candidates []ports.CandidateProjection,
	counts []ports.BallotCount,
) []entities.CandidateTally {
	byCandidate := make(map[string]map[entities.VoteType]int64, len(counts))
	for _, row := range counts {
		if byCandidate[row.CandidateID] == nil {
			byCandidate[row.CandidateID] = make(map[entities.VoteType]int64, 3)
		}
		byCandidate[row.CandidateID][row.Type] = row.Count
	}

	tallies := make([]entities.CandidateTally, 0, len(candidates))
	for _, candidate := range candidates {
		counts := byCandidate[candidate.CandidateID]
		tallies = append(tallies, entities.CandidateTally{
			CandidateID:   candidate.CandidateID,
			CandidateName: candidate.Name,
			Category:      candidate.Category,
			ApproveCount:  counts[entities.VoteTypeApprove],
			OpposeCount:   counts[entities.VoteTypeOppose],
			AbstainCount:  counts[entities.VoteTypeAbstain],
		})
	}

	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].ApproveCount == tallies[j].ApproveCount {
			return tallies[i].CandidateID < tallies[j].CandidateID
		}
		return tallies[i].ApproveCount > tallies[j].ApproveCount
	})
	return tallies
}
