package unit

import (
	"context"
	"errors"
	"testing"

	ballotengine "quorum/contexts/election/ballot-engine"
	"quorum/contexts/election/ballot-engine/domain/entities"
	domainerrors "quorum/contexts/election/ballot-engine/domain/errors"
	"quorum/contexts/election/ballot-engine/ports"
	httptransport "quorum/contexts/election/ballot-engine/transport/http"
)

func newVotingModule(phase entities.ElectionPhase) ballotengine.Module {
	module := ballotengine.NewInMemoryModule(nil, nil)
	state := entities.DefaultElectionState()
	state.Phase = phase
	module.Store.SetState(state)
	module.Store.SetCandidate(ports.CandidateProjection{
		CandidateID: "cand-d1", Name: "Director One", Category: entities.CategoryDirector, Round2Qualified: true,
	})
	module.Store.SetCandidate(ports.CandidateProjection{
		CandidateID: "cand-d2", Name: "Director Two", Category: entities.CategoryDirector,
	})
	module.Store.SetCandidate(ports.CandidateProjection{
		CandidateID: "cand-m1", Name: "Manager One", Category: entities.CategoryManager, Round2Qualified: true,
	})
	return module
}

func TestSubmitCommitsFullBatch(t *testing.T) {
	module := newVotingModule(entities.PhaseRound1Voting)

	resp, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
		VoterID: "voter-1",
		Round:   1,
		Votes: map[string]string{
			"cand-d1": "approve",
			"cand-d2": "oppose",
			"cand-m1": "abstain",
		},
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if resp.BallotCount != 3 {
		t.Fatalf("expected 3 ballots, got %d", resp.BallotCount)
	}

	check, err := module.Handler.CheckHandler(context.Background(), "voter-1", 1)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !check.HasVoted {
		t.Fatalf("expected voter-1 to be recorded for round 1")
	}

	if got := len(module.Store.Ballots()); got != 3 {
		t.Fatalf("expected 3 stored ballots, got %d", got)
	}
}

func TestSubmitRejectedOutsideVotingWindow(t *testing.T) {
	for _, phase := range []entities.ElectionPhase{
		entities.PhaseNotStarted,
		entities.PhaseRound1Ended,
		entities.PhaseRound2Ended,
	} {
		module := newVotingModule(phase)
		_, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
			VoterID: "voter-1",
			Round:   1,
			Votes:   map[string]string{"cand-d1": "approve"},
		})
		if !errors.Is(err, domainerrors.ErrRoundNotOpen) {
			t.Fatalf("phase %s: expected ErrRoundNotOpen, got %v", phase, err)
		}
		if got := len(module.Store.Ballots()); got != 0 {
			t.Fatalf("phase %s: expected no ballots committed, got %d", phase, got)
		}
	}
}

func TestSubmitRejectsWrongRoundForPhase(t *testing.T) {
	module := newVotingModule(entities.PhaseRound2Voting)
	_, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
		VoterID: "voter-1",
		Round:   1,
		Votes:   map[string]string{"cand-d1": "approve"},
	})
	if !errors.Is(err, domainerrors.ErrRoundNotOpen) {
		t.Fatalf("expected ErrRoundNotOpen for round 1 during round2_voting, got %v", err)
	}
}

func TestSubmitSecondBatchSameRoundRejected(t *testing.T) {
	module := newVotingModule(entities.PhaseRound1Voting)
	first := httptransport.SubmitRequest{
		VoterID: "voter-1",
		Round:   1,
		Votes:   map[string]string{"cand-d1": "approve"},
	}
	if _, err := module.Handler.SubmitHandler(context.Background(), first); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
		VoterID: "voter-1",
		Round:   1,
		Votes:   map[string]string{"cand-d2": "oppose"},
	})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
	if got := len(module.Store.Ballots()); got != 1 {
		t.Fatalf("expected only the first ballot to remain, got %d", got)
	}
}

func TestSubmitSameVoterDifferentRoundsAllowed(t *testing.T) {
	module := newVotingModule(entities.PhaseRound1Voting)
	if _, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
		VoterID: "voter-1",
		Round:   1,
		Votes:   map[string]string{"cand-d1": "approve"},
	}); err != nil {
		t.Fatalf("round 1 submit failed: %v", err)
	}

	state := entities.DefaultElectionState()
	state.Phase = entities.PhaseRound2Voting
	module.Store.SetState(state)

	if _, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
		VoterID: "voter-1",
		Round:   2,
		Votes:   map[string]string{"cand-d1": "approve"},
	}); err != nil {
		t.Fatalf("round 2 submit failed: %v", err)
	}
}

func TestSubmitMalformedInput(t *testing.T) {
	module := newVotingModule(entities.PhaseRound1Voting)
	cases := []struct {
		name string
		req  httptransport.SubmitRequest
		want error
	}{
		{"blank voter", httptransport.SubmitRequest{Round: 1, Votes: map[string]string{"cand-d1": "approve"}}, domainerrors.ErrInvalidVoteInput},
		{"empty votes", httptransport.SubmitRequest{VoterID: "voter-1", Round: 1, Votes: map[string]string{}}, domainerrors.ErrInvalidVoteInput},
		{"bad vote type", httptransport.SubmitRequest{VoterID: "voter-1", Round: 1, Votes: map[string]string{"cand-d1": "yes"}}, domainerrors.ErrInvalidVoteInput},
		{"round out of range", httptransport.SubmitRequest{VoterID: "voter-1", Round: 3, Votes: map[string]string{"cand-d1": "approve"}}, domainerrors.ErrInvalidVoteInput},
		{"unknown candidate", httptransport.SubmitRequest{VoterID: "voter-1", Round: 1, Votes: map[string]string{"cand-x": "approve"}}, domainerrors.ErrCandidateUnknown},
	}
	for _, tc := range cases {
		_, err := module.Handler.SubmitHandler(context.Background(), tc.req)
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
	if got := len(module.Store.Ballots()); got != 0 {
		t.Fatalf("expected no ballots committed by malformed batches, got %d", got)
	}
}

func TestSubmitQuotaEvaluatedPerBatch(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil, nil)
	state := entities.DefaultElectionState()
	state.Phase = entities.PhaseRound1Voting
	state.Round1DirectorMaxApprove = 2
	state.Round1ManagerMaxApprove = 1
	module.Store.SetState(state)
	for _, candidate := range []ports.CandidateProjection{
		{CandidateID: "d1", Name: "D1", Category: entities.CategoryDirector},
		{CandidateID: "d2", Name: "D2", Category: entities.CategoryDirector},
		{CandidateID: "d3", Name: "D3", Category: entities.CategoryDirector},
		{CandidateID: "m1", Name: "M1", Category: entities.CategoryManager},
	} {
		module.Store.SetCandidate(candidate)
	}

	// Exactly at the quota is allowed; oppose and abstain never count.
	if _, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
		VoterID: "voter-ok",
		Round:   1,
		Votes: map[string]string{
			"d1": "approve",
			"d2": "approve",
			"d3": "oppose",
			"m1": "approve",
		},
	}); err != nil {
		t.Fatalf("at-quota submit failed: %v", err)
	}

	_, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
		VoterID: "voter-over",
		Round:   1,
		Votes: map[string]string{
			"d1": "approve",
			"d2": "approve",
			"d3": "approve",
		},
	})
	var quotaErr domainerrors.QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("expected QuotaExceededError, got %v", err)
	}
	if quotaErr.Category != string(entities.CategoryDirector) || quotaErr.Max != 2 || quotaErr.Actual != 3 {
		t.Fatalf("unexpected quota error detail: %+v", quotaErr)
	}

	// Prior voters' approvals never count against a new batch.
	if _, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
		VoterID: "voter-later",
		Round:   1,
		Votes:   map[string]string{"d1": "approve", "d2": "approve"},
	}); err != nil {
		t.Fatalf("later voter at-quota submit failed: %v", err)
	}
}

func TestCandidatesByRound(t *testing.T) {
	module := newVotingModule(entities.PhaseRound1Voting)

	round1, err := module.Handler.CandidatesHandler(context.Background(), 1)
	if err != nil {
		t.Fatalf("round 1 candidates failed: %v", err)
	}
	if len(round1.Items) != 3 {
		t.Fatalf("expected 3 candidates in round 1, got %d", len(round1.Items))
	}

	round2, err := module.Handler.CandidatesHandler(context.Background(), 2)
	if err != nil {
		t.Fatalf("round 2 candidates failed: %v", err)
	}
	if len(round2.Items) != 2 {
		t.Fatalf("expected 2 qualified candidates in round 2, got %d", len(round2.Items))
	}
	for _, item := range round2.Items {
		if !item.Round2Qualified {
			t.Fatalf("round 2 listed unqualified candidate %s", item.CandidateID)
		}
	}

	if _, err := module.Handler.CandidatesHandler(context.Background(), 3); !errors.Is(err, domainerrors.ErrInvalidRound) {
		t.Fatalf("expected ErrInvalidRound for round 3, got %v", err)
	}
}

func TestResultsGroupedAndOrdered(t *testing.T) {
	module := newVotingModule(entities.PhaseRound1Voting)
	submit := func(voter string, votes map[string]string) {
		t.Helper()
		if _, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
			VoterID: voter, Round: 1, Votes: votes,
		}); err != nil {
			t.Fatalf("submit for %s failed: %v", voter, err)
		}
	}
	submit("voter-1", map[string]string{"cand-d2": "approve", "cand-m1": "oppose"})
	submit("voter-2", map[string]string{"cand-d2": "approve", "cand-d1": "abstain"})
	submit("voter-3", map[string]string{"cand-d1": "approve"})

	resp, err := module.Handler.ResultsHandler(context.Background(), 1)
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("expected every candidate in results, got %d rows", len(resp.Items))
	}
	if resp.Items[0].CandidateID != "cand-d2" || resp.Items[0].ApproveCount != 2 {
		t.Fatalf("expected cand-d2 first with 2 approves, got %+v", resp.Items[0])
	}
	if resp.Items[1].CandidateID != "cand-d1" || resp.Items[1].ApproveCount != 1 || resp.Items[1].AbstainCount != 1 {
		t.Fatalf("unexpected second row: %+v", resp.Items[1])
	}
	// cand-m1 has zero approves and still appears.
	if resp.Items[2].CandidateID != "cand-m1" || resp.Items[2].OpposeCount != 1 {
		t.Fatalf("unexpected zero-approve row: %+v", resp.Items[2])
	}

	// Reading results commits nothing; a second read is identical.
	again, err := module.Handler.ResultsHandler(context.Background(), 1)
	if err != nil {
		t.Fatalf("repeat results failed: %v", err)
	}
	for i := range resp.Items {
		if resp.Items[i] != again.Items[i] {
			t.Fatalf("results changed between reads at row %d", i)
		}
	}
}

func TestLiveSummaryBucketsAndVoterCount(t *testing.T) {
	module := newVotingModule(entities.PhaseRound1Voting)
	for _, voter := range []string{"voter-1", "voter-2"} {
		if _, err := module.Handler.SubmitHandler(context.Background(), httptransport.SubmitRequest{
			VoterID: voter,
			Round:   1,
			Votes:   map[string]string{"cand-d1": "approve", "cand-m1": "approve"},
		}); err != nil {
			t.Fatalf("submit for %s failed: %v", voter, err)
		}
	}

	live, err := module.Handler.LiveHandler(context.Background())
	if err != nil {
		t.Fatalf("live summary failed: %v", err)
	}
	if live.Phase != string(entities.PhaseRound1Voting) || live.CurrentRound != 1 {
		t.Fatalf("unexpected live phase/round: %s/%d", live.Phase, live.CurrentRound)
	}
	if live.VoterCount != 2 {
		t.Fatalf("expected 2 distinct voters, got %d", live.VoterCount)
	}
	if len(live.Directors) != 2 || len(live.Managers) != 1 {
		t.Fatalf("unexpected bucket sizes: %d directors, %d managers", len(live.Directors), len(live.Managers))
	}
	if live.Directors[0].CandidateID != "cand-d1" || live.Directors[0].ApproveCount != 2 {
		t.Fatalf("unexpected top director: %+v", live.Directors[0])
	}
}

func TestStatusReportsConfigAndPhase(t *testing.T) {
	module := newVotingModule(entities.PhaseRound1Voting)
	status, err := module.Handler.StatusHandler(context.Background())
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if status.Phase != string(entities.PhaseRound1Voting) || status.CurrentRound != 1 {
		t.Fatalf("unexpected status: %+v", status)
	}
	if status.Round1DirectorMaxApprove != 60 || status.Round2ManagerMaxApprove != 10 {
		t.Fatalf("unexpected seeded quotas: %+v", status)
	}
}

func TestStatusMissingStateRow(t *testing.T) {
	module := newVotingModule(entities.PhaseRound1Voting)
	module.Store.ClearState()
	_, err := module.Handler.StatusHandler(context.Background())
	if !errors.Is(err, domainerrors.ErrStateNotFound) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}
