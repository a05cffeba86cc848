package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quorum/contexts/election/ballot-engine/domain/entities"
	domainerrors "quorum/contexts/election/ballot-engine/domain/errors"
	"quorum/contexts/election/ballot-engine/ports"
)

func TestCreateBatchWithOutboxRaceSingleWinner(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	now := time.Now().UTC()

	const racers = 16
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(attempt int) {
			defer wg.Done()
			ballots := []entities.Ballot{
				{
					BallotID:    "ballot-" + string(rune('a'+attempt)),
					VoterID:     "voter-1",
					CandidateID: "cand-1",
					Round:       1,
					Type:        entities.VoteTypeApprove,
					CreatedAt:   now,
				},
			}
			results <- store.CreateBatchWithOutbox(ctx, ballots, ports.EventEnvelope{
				EventID:   "event-" + string(rune('a'+attempt)),
				EventType: "ballot.recorded",
			})
		}(i)
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domainerrors.ErrAlreadyVoted):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != racers-1 {
		t.Fatalf("expected exactly one winner, got %d wins and %d conflicts", wins, conflicts)
	}
	if got := len(store.Ballots()); got != 1 {
		t.Fatalf("expected one committed ballot, got %d", got)
	}

	pending, err := store.ListPendingOutbox(ctx, racers)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("losing submissions must not leave outbox rows, got %d", len(pending))
	}
}

func TestCreateBatchPartialOverlapRejectsWholeBatch(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	now := time.Now().UTC()

	first := []entities.Ballot{
		{BallotID: "b1", VoterID: "voter-1", CandidateID: "cand-1", Round: 1, Type: entities.VoteTypeApprove, CreatedAt: now},
	}
	if err := store.CreateBatchWithOutbox(ctx, first, ports.EventEnvelope{EventID: "e1"}); err != nil {
		t.Fatalf("first batch failed: %v", err)
	}

	second := []entities.Ballot{
		{BallotID: "b2", VoterID: "voter-1", CandidateID: "cand-2", Round: 1, Type: entities.VoteTypeApprove, CreatedAt: now},
		{BallotID: "b3", VoterID: "voter-1", CandidateID: "cand-1", Round: 1, Type: entities.VoteTypeOppose, CreatedAt: now},
	}
	if err := store.CreateBatchWithOutbox(ctx, second, ports.EventEnvelope{EventID: "e2"}); !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if got := len(store.Ballots()); got != 1 {
		t.Fatalf("conflicting batch must commit zero rows, got %d total", got)
	}
}

func TestTransitionRaceSingleWinner(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	const racers = 8
	var wg sync.WaitGroup
	results := make(chan error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Transition(ctx, entities.CommandStartRound1, time.Now().UTC())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domainerrors.ErrInvalidTransition):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly one successful transition, got %d", wins)
	}

	state, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get state failed: %v", err)
	}
	if state.Phase != entities.PhaseRound1Voting {
		t.Fatalf("expected phase round1_voting, got %s", state.Phase)
	}
}

func TestCountByRoundGroups(t *testing.T) {
	now := time.Now().UTC()
	store := NewStore([]entities.Ballot{
		{BallotID: "b1", VoterID: "v1", CandidateID: "c1", Round: 1, Type: entities.VoteTypeApprove, CreatedAt: now},
		{BallotID: "b2", VoterID: "v2", CandidateID: "c1", Round: 1, Type: entities.VoteTypeApprove, CreatedAt: now},
		{BallotID: "b3", VoterID: "v1", CandidateID: "c2", Round: 1, Type: entities.VoteTypeOppose, CreatedAt: now},
		{BallotID: "b4", VoterID: "v1", CandidateID: "c1", Round: 2, Type: entities.VoteTypeAbstain, CreatedAt: now},
	})

	counts, err := store.CountByRound(context.Background(), 1)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	got := make(map[string]int64)
	for _, row := range counts {
		got[row.CandidateID+"/"+string(row.Type)] = row.Count
	}
	if got["c1/approve"] != 2 || got["c2/oppose"] != 1 {
		t.Fatalf("unexpected grouped counts: %v", got)
	}
	if _, round2Leaked := got["c1/abstain"]; round2Leaked {
		t.Fatalf("round 2 ballots leaked into round 1 counts")
	}

	voters, err := store.CountDistinctVoters(context.Background(), 1)
	if err != nil {
		t.Fatalf("distinct voters failed: %v", err)
	}
	if voters != 2 {
		t.Fatalf("expected 2 distinct voters, got %d", voters)
	}
}
