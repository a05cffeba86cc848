package ports

import (
	"context"
	"time"

	"quorum/contexts/election/candidate-catalog/domain/entities"
)

type CandidateRepository interface {
	Create(ctx context.Context, candidate entities.Candidate) error
	CreateBatch(ctx context.Context, candidates []entities.Candidate) error
	GetByID(ctx context.Context, candidateID string) (entities.Candidate, error)
	ListAll(ctx context.Context) ([]entities.Candidate, error)
	ListByCategory(ctx context.Context, category entities.Category) ([]entities.Candidate, error)
	ListQualified(ctx context.Context) ([]entities.Candidate, error)
	Update(ctx context.Context, candidate entities.Candidate) error
	Delete(ctx context.Context, candidateID string) error
	// ReplaceQualified clears every qualification flag and sets the given ids
	// in one transaction. Readers observe either the full pre-update or the
	// full post-update set. Unknown ids fail the whole replace.
	ReplaceQualified(ctx context.Context, candidateIDs []string, updatedAt time.Time) error
}

// BallotReferenceChecker answers whether committed ballots reference a
// candidate; delete is refused while any do.
type BallotReferenceChecker interface {
	HasBallots(ctx context.Context, candidateID string) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
