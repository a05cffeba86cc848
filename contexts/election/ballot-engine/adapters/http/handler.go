package httpadapter

import (
	"context"
	"log/slog"

	"quorum/contexts/election/ballot-engine/application/commands"
	"quorum/contexts/election/ballot-engine/application/queries"
	"quorum/contexts/election/ballot-engine/domain/entities"
	"quorum/contexts/election/ballot-engine/ports"
	httptransport "quorum/contexts/election/ballot-engine/transport/http"
)

type Handler struct {
	Submit    commands.SubmitUseCase
	Lifecycle commands.LifecycleUseCase
	Status    queries.StatusUseCase
	Results   queries.ResultsUseCase
	Logger    *slog.Logger
}

// StatusHandler godoc
// @Summary Election status
// @Description Returns the current phase, active round, and quota configuration.
// @Tags vote
// @Produce json
// @Success 200 {object} httptransport.StatusResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/vote/status [get]
func (h Handler) StatusHandler(ctx context.Context) (httptransport.StatusResponse, error) {
	state, err := h.Status.Status(ctx)
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return mapStatus(state), nil
}

// CandidatesHandler godoc
// @Summary Candidate list for a round
// @Description Round 1 lists all candidates; round 2 only qualified ones.
// @Tags vote
// @Produce json
// @Param round query int false "Round (1 or 2)" default(1)
// @Success 200 {object} httptransport.CandidatesResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/vote/candidates [get]
func (h Handler) CandidatesHandler(ctx context.Context, round int) (httptransport.CandidatesResponse, error) {
	candidates, err := h.Status.Candidates(ctx, round)
	if err != nil {
		return httptransport.CandidatesResponse{}, err
	}
	items := make([]httptransport.CandidateItem, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, httptransport.CandidateItem{
			CandidateID:     candidate.CandidateID,
			Name:            candidate.Name,
			Category:        string(candidate.Category),
			Round2Qualified: candidate.Round2Qualified,
		})
	}
	return httptransport.CandidatesResponse{Round: round, Items: items}, nil
}

// CheckHandler godoc
// @Summary Has-voted check
// @Tags vote
// @Produce json
// @Param voter_id query string true "Voter id"
// @Param round query int true "Round (1 or 2)"
// @Success 200 {object} httptransport.CheckResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/vote/check [get]
func (h Handler) CheckHandler(ctx context.Context, voterID string, round int) (httptransport.CheckResponse, error) {
	voted, err := h.Status.HasVoted(ctx, voterID, round)
	if err != nil {
		return httptransport.CheckResponse{}, err
	}
	return httptransport.CheckResponse{HasVoted: voted}, nil
}

// SubmitHandler godoc
// @Summary Submit a ballot batch
// @Description Commits one voter's full ballot for a round atomically.
// @Tags vote
// @Accept json
// @Produce json
// @Param request body httptransport.SubmitRequest true "Ballot batch"
// @Success 200 {object} httptransport.SubmitResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Failure 422 {object} httptransport.ErrorResponse
// @Router /api/vote/submit [post]
func (h Handler) SubmitHandler(ctx context.Context, req httptransport.SubmitRequest) (httptransport.SubmitResponse, error) {
	result, err := h.Submit.Submit(ctx, commands.SubmitCommand{
		VoterID: req.VoterID,
		Round:   req.Round,
		Votes:   req.Votes,
	})
	if err != nil {
		return httptransport.SubmitResponse{}, err
	}
	return httptransport.SubmitResponse{BallotCount: result.BallotCount}, nil
}

// ResultsHandler godoc
// @Summary Round results
// @Description Per-candidate approve/oppose/abstain counts, approve-count descending.
// @Tags vote
// @Produce json
// @Param round path int true "Round (1 or 2)"
// @Success 200 {object} httptransport.ResultsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/vote/results/{round} [get]
func (h Handler) ResultsHandler(ctx context.Context, round int) (httptransport.ResultsResponse, error) {
	tallies, err := h.Results.Tally(ctx, round)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	return httptransport.ResultsResponse{Round: round, Items: mapTallies(tallies)}, nil
}

// LiveHandler godoc
// @Summary Live election summary
// @Description Phase, active round, distinct voter count, and category buckets.
// @Tags vote
// @Produce json
// @Success 200 {object} httptransport.LiveSummaryResponse
// @Router /api/vote/live [get]
func (h Handler) LiveHandler(ctx context.Context) (httptransport.LiveSummaryResponse, error) {
	summary, err := h.Results.LiveSummary(ctx)
	if err != nil {
		return httptransport.LiveSummaryResponse{}, err
	}
	return httptransport.LiveSummaryResponse{
		Phase:        string(summary.Phase),
		CurrentRound: summary.CurrentRound,
		VoterCount:   summary.VoterCount,
		Directors:    mapTallies(summary.Directors),
		Managers:     mapTallies(summary.Managers),
	}, nil
}

// TransitionHandler godoc
// @Summary Apply an admin phase command
// @Tags admin
// @Produce json
// @Success 200 {object} httptransport.TransitionResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/admin/round/{command} [post]
func (h Handler) TransitionHandler(ctx context.Context, cmd entities.PhaseCommand) (httptransport.TransitionResponse, error) {
	state, err := h.Lifecycle.Transition(ctx, cmd)
	if err != nil {
		return httptransport.TransitionResponse{}, err
	}
	return httptransport.TransitionResponse{Phase: string(state.Phase)}, nil
}

// ConfigHandler godoc
// @Summary Election configuration
// @Tags admin
// @Produce json
// @Success 200 {object} httptransport.StatusResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/admin/config [get]
func (h Handler) ConfigHandler(ctx context.Context) (httptransport.StatusResponse, error) {
	return h.StatusHandler(ctx)
}

// UpdateConfigHandler godoc
// @Summary Partial config update
// @Description Only fields present in the request overwrite stored values.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body httptransport.UpdateConfigRequest true "Config patch"
// @Success 200 {object} httptransport.StatusResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/admin/config [put]
func (h Handler) UpdateConfigHandler(
	ctx context.Context,
	req httptransport.UpdateConfigRequest,
) (httptransport.StatusResponse, error) {
	state, err := h.Lifecycle.UpdateConfig(ctx, ports.ElectionConfigUpdate{
		Round1DirectorMaxApprove: req.Round1DirectorMaxApprove,
		Round1ManagerMaxApprove:  req.Round1ManagerMaxApprove,
		Round2DirectorMaxApprove: req.Round2DirectorMaxApprove,
		Round2ManagerMaxApprove:  req.Round2ManagerMaxApprove,
		DirectorQualifyCount:     req.DirectorQualifyCount,
		ManagerQualifyCount:      req.ManagerQualifyCount,
		DirectorElectCount:       req.DirectorElectCount,
		ManagerElectCount:        req.ManagerElectCount,
	})
	if err != nil {
		return httptransport.StatusResponse{}, err
	}
	return mapStatus(state), nil
}

func mapStatus(state entities.ElectionState) httptransport.StatusResponse {
	return httptransport.StatusResponse{
		Phase:                    string(state.Phase),
		CurrentRound:             state.ActiveRound(),
		Round1DirectorMaxApprove: state.Round1DirectorMaxApprove,
		Round1ManagerMaxApprove:  state.Round1ManagerMaxApprove,
		Round2DirectorMaxApprove: state.Round2DirectorMaxApprove,
		Round2ManagerMaxApprove:  state.Round2ManagerMaxApprove,
		DirectorQualifyCount:     state.DirectorQualifyCount,
		ManagerQualifyCount:      state.ManagerQualifyCount,
		DirectorElectCount:       state.DirectorElectCount,
		ManagerElectCount:        state.ManagerElectCount,
	}
}

func mapTallies(tallies []entities.CandidateTally) []httptransport.ResultItem {
	items := make([]httptransport.ResultItem, 0, len(tallies))
	for _, tally := range tallies {
		items = append(items, httptransport.ResultItem{
			CandidateID:   tally.CandidateID,
			CandidateName: tally.CandidateName,
			Category:      string(tally.Category),
			ApproveCount:  tally.ApproveCount,
			OpposeCount:   tally.OpposeCount,
			AbstainCount:  tally.AbstainCount,
		})
	}
	return items
}
