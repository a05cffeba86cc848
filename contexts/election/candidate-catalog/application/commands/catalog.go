package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "quorum/contexts/election/candidate-catalog/application"
	"quorum/contexts/election/candidate-catalog/domain/entities"
	domainerrors "quorum/contexts/election/candidate-catalog/domain/errors"
	"quorum/contexts/election/candidate-catalog/ports"
)

type CreateCandidateCommand struct {
	Name        string
	Title       string
	Description string
	ResumeURL   string
	Category    string
}

type UpdateCandidateCommand struct {
	CandidateID string
	Name        string
	Title       string
	Description string
	ResumeURL   string
	Category    string
}

// CatalogUseCase owns candidate writes: CRUD plus the full-replace round-2
// qualification operation.
type CatalogUseCase struct {
	Candidates ports.CandidateRepository
	Ballots    ports.BallotReferenceChecker
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc CatalogUseCase) CreateCandidate(ctx context.Context, cmd CreateCandidateCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)
	name := strings.TrimSpace(cmd.Name)
	category, ok := entities.ParseCategory(strings.TrimSpace(cmd.Category))
	if name == "" || !ok {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidateInput
	}

	candidateID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Candidate{}, err
	}
	now := uc.now()
	candidate := entities.Candidate{
		CandidateID:     candidateID,
		Name:            name,
		Title:           strings.TrimSpace(cmd.Title),
		Description:     strings.TrimSpace(cmd.Description),
		ResumeURL:       strings.TrimSpace(cmd.ResumeURL),
		Category:        category,
		Round2Qualified: false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.Candidates.Create(ctx, candidate); err != nil {
		return entities.Candidate{}, err
	}

	logger.Info("candidate created",
		"event", "catalog_candidate_created",
		"module", "election/candidate-catalog",
		"layer", "application",
		"candidate_id", candidate.CandidateID,
		"category", string(candidate.Category),
	)
	return candidate, nil
}

func (uc CatalogUseCase) UpdateCandidate(ctx context.Context, cmd UpdateCandidateCommand) (entities.Candidate, error) {
	logger := application.ResolveLogger(uc.Logger)
	candidateID := strings.TrimSpace(cmd.CandidateID)
	name := strings.TrimSpace(cmd.Name)
	category, ok := entities.ParseCategory(strings.TrimSpace(cmd.Category))
	if candidateID == "" || name == "" || !ok {
		return entities.Candidate{}, domainerrors.ErrInvalidCandidateInput
	}

	candidate, err := uc.Candidates.GetByID(ctx, candidateID)
	if err != nil {
		return entities.Candidate{}, err
	}
	candidate.Name = name
	candidate.Title = strings.TrimSpace(cmd.Title)
	candidate.Description = strings.TrimSpace(cmd.Description)
	candidate.ResumeURL = strings.TrimSpace(cmd.ResumeURL)
	candidate.Category = category
	candidate.UpdatedAt = uc.now()

	if err := uc.Candidates.Update(ctx, candidate); err != nil {
		return entities.Candidate{}, err
	}
	logger.Info("candidate updated",
		"event", "catalog_candidate_updated",
		"module", "election/candidate-catalog",
		"layer", "application",
		"candidate_id", candidate.CandidateID,
	)
	return candidate, nil
}

// DeleteCandidate refuses deletion while ballots reference the candidate so
// committed results always resolve their candidate rows.
func (uc CatalogUseCase) DeleteCandidate(ctx context.Context, candidateID string) error {
	logger := application.ResolveLogger(uc.Logger)
	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return domainerrors.ErrInvalidCandidateInput
	}
	if _, err := uc.Candidates.GetByID(ctx, candidateID); err != nil {
		return err
	}
	referenced, err := uc.Ballots.HasBallots(ctx, candidateID)
	if err != nil {
		return err
	}
	if referenced {
		logger.Warn("candidate delete refused",
			"event", "catalog_candidate_delete_refused",
			"module", "election/candidate-catalog",
			"layer", "application",
			"candidate_id", candidateID,
		)
		return domainerrors.ErrCandidateReferenced
	}
	if err := uc.Candidates.Delete(ctx, candidateID); err != nil {
		return err
	}
	logger.Info("candidate deleted",
		"event", "catalog_candidate_deleted",
		"module", "election/candidate-catalog",
		"layer", "application",
		"candidate_id", candidateID,
	)
	return nil
}

// ReplaceQualified applies full-replace semantics for the round-2 set: the
// stored flags equal exactly the given ids afterwards, atomically.
func (uc CatalogUseCase) ReplaceQualified(ctx context.Context, candidateIDs []string) error {
	logger := application.ResolveLogger(uc.Logger)
	ids := make([]string, 0, len(candidateIDs))
	seen := make(map[string]struct{}, len(candidateIDs))
	for _, raw := range candidateIDs {
		id := strings.TrimSpace(raw)
		if id == "" {
			return domainerrors.ErrInvalidCandidateInput
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if err := uc.Candidates.ReplaceQualified(ctx, ids, uc.now()); err != nil {
		return err
	}
	logger.Info("round2 qualified set replaced",
		"event", "catalog_qualified_replaced",
		"module", "election/candidate-catalog",
		"layer", "application",
		"qualified_count", len(ids),
	)
	return nil
}

func (uc CatalogUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
