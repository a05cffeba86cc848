package queries

import (
	"context"
	"log/slog"
	"strings"

	"quorum/contexts/election/candidate-catalog/domain/entities"
	domainerrors "quorum/contexts/election/candidate-catalog/domain/errors"
	"quorum/contexts/election/candidate-catalog/ports"
)

// CatalogQueries serves all read paths over the candidate catalog.
type CatalogQueries struct {
	Candidates ports.CandidateRepository
	Logger     *slog.Logger
}

func (q CatalogQueries) ListAll(ctx context.Context) ([]entities.Candidate, error) {
	return q.Candidates.ListAll(ctx)
}

func (q CatalogQueries) GetByID(ctx context.Context, candidateID string) (entities.Candidate, error) {
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidateInput
	}
	return q.Candidates.GetByID(ctx, candidateID)
}

func (q CatalogQueries) ListByCategory(ctx context.Context, category string) ([]entities.Candidate, error) {
	parsed, ok := entities.ParseCategory(strings.TrimSpace(category))
	if !ok {
		return nil, domainerrors.ErrInvalidCandidateInput
	}
	return q.Candidates.ListByCategory(ctx, parsed)
}

func (q CatalogQueries) ListQualified(ctx context.Context) ([]entities.Candidate, error) {
	return q.Candidates.ListQualified(ctx)
}
