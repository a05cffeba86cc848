package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"time"

	"quorum/contexts/election/candidate-catalog/application/commands"
	"quorum/contexts/election/candidate-catalog/application/queries"
	"quorum/contexts/election/candidate-catalog/domain/entities"
	httptransport "quorum/contexts/election/candidate-catalog/transport/http"
)

type Handler struct {
	Catalog  commands.CatalogUseCase
	Importer commands.ImportUseCase
	Queries  queries.CatalogQueries
	Logger   *slog.Logger
}

// ListHandler godoc
// @Summary List candidates
// @Description Full catalog, optionally filtered by category.
// @Tags admin-candidates
// @Produce json
// @Param category query string false "director or manager"
// @Success 200 {object} httptransport.CandidateListResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/admin/candidates [get]
func (h Handler) ListHandler(ctx context.Context, category string) (httptransport.CandidateListResponse, error) {
	var (
		candidates []entities.Candidate
		err        error
	)
	if category == "" {
		candidates, err = h.Queries.ListAll(ctx)
	} else {
		candidates, err = h.Queries.ListByCategory(ctx, category)
	}
	if err != nil {
		return httptransport.CandidateListResponse{}, err
	}
	return httptransport.CandidateListResponse{Items: mapCandidates(candidates)}, nil
}

// GetHandler godoc
// @Summary Get one candidate
// @Tags admin-candidates
// @Produce json
// @Param id path string true "Candidate id"
// @Success 200 {object} httptransport.CandidateResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/admin/candidates/{id} [get]
func (h Handler) GetHandler(ctx context.Context, candidateID string) (httptransport.CandidateResponse, error) {
	candidate, err := h.Queries.GetByID(ctx, candidateID)
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

// CreateHandler godoc
// @Summary Create a candidate
// @Tags admin-candidates
// @Accept json
// @Produce json
// @Param request body httptransport.CandidateRequest true "Candidate"
// @Success 201 {object} httptransport.CandidateResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/admin/candidates [post]
func (h Handler) CreateHandler(ctx context.Context, req httptransport.CandidateRequest) (httptransport.CandidateResponse, error) {
	candidate, err := h.Catalog.CreateCandidate(ctx, commands.CreateCandidateCommand{
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		ResumeURL:   req.ResumeURL,
		Category:    req.Category,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

// UpdateHandler godoc
// @Summary Update a candidate
// @Tags admin-candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate id"
// @Param request body httptransport.CandidateRequest true "Candidate"
// @Success 200 {object} httptransport.CandidateResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/admin/candidates/{id} [put]
func (h Handler) UpdateHandler(ctx context.Context, candidateID string, req httptransport.CandidateRequest) (httptransport.CandidateResponse, error) {
	candidate, err := h.Catalog.UpdateCandidate(ctx, commands.UpdateCandidateCommand{
		CandidateID: candidateID,
		Name:        req.Name,
		Title:       req.Title,
		Description: req.Description,
		ResumeURL:   req.ResumeURL,
		Category:    req.Category,
	})
	if err != nil {
		return httptransport.CandidateResponse{}, err
	}
	return mapCandidate(candidate), nil
}

// DeleteHandler godoc
// @Summary Delete a candidate
// @Description Refused while any committed ballot references the candidate.
// @Tags admin-candidates
// @Param id path string true "Candidate id"
// @Success 204
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/admin/candidates/{id} [delete]
func (h Handler) DeleteHandler(ctx context.Context, candidateID string) error {
	return h.Catalog.DeleteCandidate(ctx, candidateID)
}

// ReplaceQualifiedHandler godoc
// @Summary Replace the round-2 qualified set
// @Description Full replace: afterwards exactly the given ids are qualified.
// @Tags admin-round
// @Accept json
// @Produce json
// @Param request body httptransport.ReplaceQualifiedRequest true "Qualified candidate ids"
// @Success 200 {object} httptransport.ReplaceQualifiedResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/admin/round2/qualified [put]
func (h Handler) ReplaceQualifiedHandler(ctx context.Context, req httptransport.ReplaceQualifiedRequest) (httptransport.ReplaceQualifiedResponse, error) {
	if err := h.Catalog.ReplaceQualified(ctx, req.CandidateIDs); err != nil {
		return httptransport.ReplaceQualifiedResponse{}, err
	}
	qualified, err := h.Queries.ListQualified(ctx)
	if err != nil {
		return httptransport.ReplaceQualifiedResponse{}, err
	}
	return httptransport.ReplaceQualifiedResponse{QualifiedCount: len(qualified)}, nil
}

// ImportHandler godoc
// @Summary Import candidates from CSV
// @Description Bulk-creates candidates; duplicate names are skipped and reported.
// @Tags admin-candidates
// @Accept mpfd
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} httptransport.ImportResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/admin/candidates/import [post]
func (h Handler) ImportHandler(ctx context.Context, file io.Reader) (httptransport.ImportResponse, error) {
	result, err := h.Importer.ImportCSV(ctx, file)
	if err != nil {
		return httptransport.ImportResponse{}, err
	}
	return httptransport.ImportResponse{
		Imported:     result.Imported,
		Skipped:      result.Skipped,
		SkippedNames: result.SkippedNames,
	}, nil
}

// TemplateHandler godoc
// @Summary Download the CSV import template
// @Tags admin-candidates
// @Produce text/csv
// @Success 200 {string} string "CSV template"
// @Router /api/admin/candidates/template [get]
func (h Handler) TemplateHandler() []byte {
	return h.Importer.TemplateCSV()
}

func mapCandidates(candidates []entities.Candidate) []httptransport.CandidateResponse {
	items := make([]httptransport.CandidateResponse, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, mapCandidate(candidate))
	}
	return items
}

func mapCandidate(candidate entities.Candidate) httptransport.CandidateResponse {
	return httptransport.CandidateResponse{
		CandidateID:     candidate.CandidateID,
		Name:            candidate.Name,
		Title:           candidate.Title,
		Description:     candidate.Description,
		ResumeURL:       candidate.ResumeURL,
		Category:        string(candidate.Category),
		Round2Qualified: candidate.Round2Qualified,
		CreatedAt:       candidate.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:       candidate.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
