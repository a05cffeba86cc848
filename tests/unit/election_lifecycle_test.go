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

func TestLifecycleWalksForwardOnly(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil, nil)

	steps := []struct {
		cmd  entities.PhaseCommand
		want entities.ElectionPhase
	}{
		{entities.CommandStartRound1, entities.PhaseRound1Voting},
		{entities.CommandEndRound1, entities.PhaseRound1Ended},
		{entities.CommandStartRound2, entities.PhaseRound2Voting},
		{entities.CommandEndRound2, entities.PhaseRound2Ended},
	}
	for _, step := range steps {
		resp, err := module.Handler.TransitionHandler(context.Background(), step.cmd)
		if err != nil {
			t.Fatalf("command %s failed: %v", step.cmd, err)
		}
		if resp.Phase != string(step.want) {
			t.Fatalf("command %s: expected phase %s, got %s", step.cmd, step.want, resp.Phase)
		}
	}
}

func TestLifecycleRejectsOutOfOrderCommands(t *testing.T) {
	cases := []struct {
		phase entities.ElectionPhase
		cmd   entities.PhaseCommand
	}{
		{entities.PhaseNotStarted, entities.CommandEndRound1},
		{entities.PhaseNotStarted, entities.CommandStartRound2},
		{entities.PhaseRound1Voting, entities.CommandStartRound1},
		{entities.PhaseRound1Voting, entities.CommandStartRound2},
		{entities.PhaseRound1Ended, entities.CommandEndRound2},
		{entities.PhaseRound2Ended, entities.CommandStartRound1},
		{entities.PhaseRound2Ended, entities.CommandEndRound2},
	}
	for _, tc := range cases {
		module := ballotengine.NewInMemoryModule(nil, nil)
		state := entities.DefaultElectionState()
		state.Phase = tc.phase
		module.Store.SetState(state)

		_, err := module.Handler.TransitionHandler(context.Background(), tc.cmd)
		if !errors.Is(err, domainerrors.ErrInvalidTransition) {
			t.Fatalf("phase %s cmd %s: expected ErrInvalidTransition, got %v", tc.phase, tc.cmd, err)
		}

		status, err := module.Handler.StatusHandler(context.Background())
		if err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if status.Phase != string(tc.phase) {
			t.Fatalf("phase changed on rejected command: %s -> %s", tc.phase, status.Phase)
		}
	}
}

func TestTransitionAppendsPhaseEvent(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil, nil)
	if _, err := module.Handler.TransitionHandler(context.Background(), entities.CommandStartRound1); err != nil {
		t.Fatalf("transition failed: %v", err)
	}

	pending, err := module.Store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one outbox row, got %d", len(pending))
	}
	if pending[0].EventType != "phase.changed" {
		t.Fatalf("unexpected event type %s", pending[0].EventType)
	}
}

func TestConfigPartialUpdate(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil, nil)
	newMax := 5
	resp, err := module.Handler.UpdateConfigHandler(context.Background(), httptransport.UpdateConfigRequest{
		Round1DirectorMaxApprove: &newMax,
	})
	if err != nil {
		t.Fatalf("update config failed: %v", err)
	}
	if resp.Round1DirectorMaxApprove != 5 {
		t.Fatalf("expected updated quota 5, got %d", resp.Round1DirectorMaxApprove)
	}
	// Untouched fields keep their seeded values.
	if resp.Round1ManagerMaxApprove != 15 || resp.DirectorElectCount != 40 {
		t.Fatalf("partial update overwrote unrelated fields: %+v", resp)
	}
	if resp.Phase != string(entities.PhaseNotStarted) {
		t.Fatalf("config update must not move the phase, got %s", resp.Phase)
	}
}

func TestTwoRoundElectionFlow(t *testing.T) {
	module := ballotengine.NewInMemoryModule(nil, nil)
	state := entities.DefaultElectionState()
	state.Round1DirectorMaxApprove = 2
	state.Round2DirectorMaxApprove = 1
	module.Store.SetState(state)
	for _, candidate := range []ports.CandidateProjection{
		{CandidateID: "d1", Name: "D1", Category: entities.CategoryDirector},
		{CandidateID: "d2", Name: "D2", Category: entities.CategoryDirector},
		{CandidateID: "d3", Name: "D3", Category: entities.CategoryDirector},
	} {
		module.Store.SetCandidate(candidate)
	}

	ctx := context.Background()
	mustTransition := func(cmd entities.PhaseCommand) {
		t.Helper()
		if _, err := module.Handler.TransitionHandler(ctx, cmd); err != nil {
			t.Fatalf("command %s failed: %v", cmd, err)
		}
	}

	mustTransition(entities.CommandStartRound1)
	for voter, votes := range map[string]map[string]string{
		"voter-1": {"d1": "approve", "d2": "approve"},
		"voter-2": {"d1": "approve", "d3": "oppose"},
		"voter-3": {"d2": "approve", "d3": "approve"},
	} {
		if _, err := module.Handler.SubmitHandler(ctx, httptransport.SubmitRequest{
			VoterID: voter, Round: 1, Votes: votes,
		}); err != nil {
			t.Fatalf("round 1 submit for %s failed: %v", voter, err)
		}
	}
	mustTransition(entities.CommandEndRound1)

	round1, err := module.Handler.ResultsHandler(ctx, 1)
	if err != nil {
		t.Fatalf("round 1 results failed: %v", err)
	}
	// d1 and d2 tie at 2 approves; id ascending breaks the tie.
	if round1.Items[0].CandidateID != "d1" || round1.Items[1].CandidateID != "d2" {
		t.Fatalf("unexpected round 1 order: %s, %s", round1.Items[0].CandidateID, round1.Items[1].CandidateID)
	}

	// Admin advances the top two into round 2.
	module.Store.SetCandidate(ports.CandidateProjection{CandidateID: "d1", Name: "D1", Category: entities.CategoryDirector, Round2Qualified: true})
	module.Store.SetCandidate(ports.CandidateProjection{CandidateID: "d2", Name: "D2", Category: entities.CategoryDirector, Round2Qualified: true})

	mustTransition(entities.CommandStartRound2)
	if _, err := module.Handler.SubmitHandler(ctx, httptransport.SubmitRequest{
		VoterID: "voter-1", Round: 2, Votes: map[string]string{"d1": "approve", "d2": "oppose"},
	}); err != nil {
		t.Fatalf("round 2 submit failed: %v", err)
	}

	round2List, err := module.Handler.CandidatesHandler(ctx, 2)
	if err != nil {
		t.Fatalf("round 2 candidates failed: %v", err)
	}
	if len(round2List.Items) != 2 {
		t.Fatalf("expected 2 qualified candidates, got %d", len(round2List.Items))
	}

	mustTransition(entities.CommandEndRound2)
	round2, err := module.Handler.ResultsHandler(ctx, 2)
	if err != nil {
		t.Fatalf("round 2 results failed: %v", err)
	}
	if len(round2.Items) != 2 {
		t.Fatalf("round 2 results must cover qualified candidates only, got %d", len(round2.Items))
	}
	if round2.Items[0].CandidateID != "d1" || round2.Items[0].ApproveCount != 1 {
		t.Fatalf("unexpected round 2 winner row: %+v", round2.Items[0])
	}

	// Round 1 results are unchanged by round 2 activity.
	round1Again, err := module.Handler.ResultsHandler(ctx, 1)
	if err != nil {
		t.Fatalf("round 1 re-read failed: %v", err)
	}
	for i := range round1.Items {
		if round1.Items[i] != round1Again.Items[i] {
			t.Fatalf("round 1 results drifted at row %d", i)
		}
	}
}
