package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	ballotengine "quorum/contexts/election/ballot-engine"
	electionerrors "quorum/contexts/election/ballot-engine/domain/errors"
	electionhttp "quorum/contexts/election/ballot-engine/transport/http"
	candidatecatalog "quorum/contexts/election/candidate-catalog"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "quorum/internal/platform/httpserver/docs"
)

type Server struct {
	mux     *http.ServeMux
	logger  *slog.Logger
	addr    string
	ballots ballotengine.Module
	catalog candidatecatalog.Module
}

func New(
	ballots ballotengine.Module,
	catalog candidatecatalog.Module,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:     http.NewServeMux(),
		logger:  logger,
		addr:    addr,
		ballots: ballots,
		catalog: catalog,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routed mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/vote/status", s.handleVoteStatus)
	s.mux.HandleFunc("GET /api/vote/candidates", s.handleVoteCandidates)
	s.mux.HandleFunc("GET /api/vote/check", s.handleVoteCheck)
	s.mux.HandleFunc("POST /api/vote/submit", s.handleVoteSubmit)
	s.mux.HandleFunc("GET /api/vote/results/{round}", s.handleVoteResults)
	s.mux.HandleFunc("GET /api/vote/live", s.handleVoteLive)

	s.registerAdminRoutes()
}

func (s *Server) handleVoteStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.StatusHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteCandidates(w http.ResponseWriter, r *http.Request) {
	round, err := resolveRound(r.URL.Query().Get("round"), 1)
	if err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_round", "round must be 1 or 2")
		return
	}
	resp, err := s.ballots.Handler.CandidatesHandler(r.Context(), round)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteCheck(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	voterID := query.Get("voter_id")
	round, err := resolveRound(query.Get("round"), 0)
	if err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_round", "round must be 1 or 2")
		return
	}
	resp, err := s.ballots.Handler.CheckHandler(r.Context(), voterID, round)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteSubmit(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballots.Handler.SubmitHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteResults(w http.ResponseWriter, r *http.Request) {
	round, err := resolveRound(r.PathValue("round"), 0)
	if err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_round", "round must be 1 or 2")
		return
	}
	resp, err := s.ballots.Handler.ResultsHandler(r.Context(), round)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteLive(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.LiveHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeElectionDomainError(w http.ResponseWriter, err error) {
	var quotaErr electionerrors.QuotaExceededError
	switch {
	case errors.As(err, &quotaErr):
		writeElectionError(w, http.StatusUnprocessableEntity, "quota_exceeded", quotaErr.Error())
	case errors.Is(err, electionerrors.ErrInvalidVoteInput),
		errors.Is(err, electionerrors.ErrInvalidRound):
		writeElectionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, electionerrors.ErrCandidateUnknown):
		writeElectionError(w, http.StatusBadRequest, "unknown_candidate", err.Error())
	case errors.Is(err, electionerrors.ErrStateNotFound):
		writeElectionError(w, http.StatusNotFound, "state_not_found", err.Error())
	case errors.Is(err, electionerrors.ErrRoundNotOpen):
		writeElectionError(w, http.StatusConflict, "round_not_open", err.Error())
	case errors.Is(err, electionerrors.ErrAlreadyVoted):
		writeElectionError(w, http.StatusConflict, "already_voted", err.Error())
	case errors.Is(err, electionerrors.ErrInvalidTransition):
		writeElectionError(w, http.StatusConflict, "invalid_transition", err.Error())
	default:
		writeElectionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeElectionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, electionhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// resolveRound parses a round parameter; fallback applies when the value is
// absent and fallback is nonzero.
func resolveRound(raw string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" && fallback != 0 {
		return fallback, nil
	}
	round, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}
	return round, nil
}
