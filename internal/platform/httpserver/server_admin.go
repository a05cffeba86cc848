package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"quorum/contexts/election/ballot-engine/domain/entities"
	electionhttp "quorum/contexts/election/ballot-engine/transport/http"
	catalogerrors "quorum/contexts/election/candidate-catalog/domain/errors"
	cataloghttp "quorum/contexts/election/candidate-catalog/transport/http"
)

// maxImportBytes caps candidate CSV uploads.
const maxImportBytes = 4 << 20

func (s *Server) registerAdminRoutes() {
	s.mux.HandleFunc("GET /api/admin/candidates", s.handleAdminListCandidates)
	s.mux.HandleFunc("POST /api/admin/candidates", s.handleAdminCreateCandidate)
	s.mux.HandleFunc("GET /api/admin/candidates/template", s.handleAdminCandidateTemplate)
	s.mux.HandleFunc("POST /api/admin/candidates/import", s.handleAdminImportCandidates)
	s.mux.HandleFunc("GET /api/admin/candidates/{id}", s.handleAdminGetCandidate)
	s.mux.HandleFunc("PUT /api/admin/candidates/{id}", s.handleAdminUpdateCandidate)
	s.mux.HandleFunc("DELETE /api/admin/candidates/{id}", s.handleAdminDeleteCandidate)

	s.mux.HandleFunc("GET /api/admin/config", s.handleAdminGetConfig)
	s.mux.HandleFunc("PUT /api/admin/config", s.handleAdminUpdateConfig)
	s.mux.HandleFunc("POST /api/admin/round/{command}", s.handleAdminTransition)
	s.mux.HandleFunc("PUT /api/admin/round2/qualified", s.handleAdminReplaceQualified)
	s.mux.HandleFunc("GET /api/admin/results/{round}", s.handleVoteResults)
}

func (s *Server) handleAdminListCandidates(w http.ResponseWriter, r *http.Request) {
	resp, err := s.catalog.Handler.ListHandler(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeCatalogDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminCreateCandidate(w http.ResponseWriter, r *http.Request) {
	var req cataloghttp.CandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCatalogError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.catalog.Handler.CreateHandler(r.Context(), req)
	if err != nil {
		writeCatalogDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleAdminGetCandidate(w http.ResponseWriter, r *http.Request) {
	resp, err := s.catalog.Handler.GetHandler(r.Context(), r.PathValue("id"))
	if err != nil {
		writeCatalogDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminUpdateCandidate(w http.ResponseWriter, r *http.Request) {
	var req cataloghttp.CandidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCatalogError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.catalog.Handler.UpdateHandler(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeCatalogDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminDeleteCandidate(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Handler.DeleteHandler(r.Context(), r.PathValue("id")); err != nil {
		writeCatalogDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminCandidateTemplate(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="candidates_template.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.catalog.Handler.TemplateHandler())
}

func (s *Server) handleAdminImportCandidates(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		writeCatalogError(w, http.StatusBadRequest, "invalid_upload", "multipart form with a file field is required")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeCatalogError(w, http.StatusBadRequest, "invalid_upload", "file field is required")
		return
	}
	defer file.Close()

	resp, err := s.catalog.Handler.ImportHandler(r.Context(), file)
	if err != nil {
		writeCatalogDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminGetConfig(w http.ResponseWriter, r *http.Request) {
	resp, err := s.ballots.Handler.ConfigHandler(r.Context())
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req electionhttp.UpdateConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeElectionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.ballots.Handler.UpdateConfigHandler(r.Context(), req)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminTransition(w http.ResponseWriter, r *http.Request) {
	cmd := entities.PhaseCommand(r.PathValue("command"))
	if _, _, ok := entities.TransitionFor(cmd); !ok {
		writeElectionError(w, http.StatusBadRequest, "unknown_command", "unknown phase command")
		return
	}
	resp, err := s.ballots.Handler.TransitionHandler(r.Context(), cmd)
	if err != nil {
		writeElectionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAdminReplaceQualified(w http.ResponseWriter, r *http.Request) {
	var req cataloghttp.ReplaceQualifiedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCatalogError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.catalog.Handler.ReplaceQualifiedHandler(r.Context(), req)
	if err != nil {
		writeCatalogDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeCatalogDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalogerrors.ErrInvalidCandidateInput),
		errors.Is(err, catalogerrors.ErrInvalidImportFile):
		writeCatalogError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, catalogerrors.ErrCandidateNotFound),
		errors.Is(err, catalogerrors.ErrUnknownQualifiedTarget):
		writeCatalogError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, catalogerrors.ErrCandidateReferenced):
		writeCatalogError(w, http.StatusConflict, "candidate_referenced", err.Error())
	default:
		writeCatalogError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeCatalogError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, cataloghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
