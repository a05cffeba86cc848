package ports

import (
	"context"
	"time"

	"quorum/contexts/election/ballot-engine/domain/entities"
)

// BallotCount is one grouped-count row of ballots for a round.
type BallotCount struct {
	CandidateID string
	Type        entities.VoteType
	Count       int64
}

type BallotRepository interface {
	// CreateBatchWithOutbox persists every ballot of one submission plus its
	// outbox event in a single transaction. A duplicate on the
	// (voter_id, candidate_id, round) uniqueness constraint must surface as
	// domainerrors.ErrAlreadyVoted with zero rows committed.
	CreateBatchWithOutbox(ctx context.Context, ballots []entities.Ballot, event EventEnvelope) error
	HasVoted(ctx context.Context, voterID string, round int) (bool, error)
	// CountByRound returns grouped (candidate, vote type) counts for a round
	// in one bulk pass.
	CountByRound(ctx context.Context, round int) ([]BallotCount, error)
	CountDistinctVoters(ctx context.Context, round int) (int64, error)
}

// ElectionConfigUpdate is a partial-merge config patch: only non-nil fields
// overwrite the stored singleton. The phase is never updatable through this.
type ElectionConfigUpdate struct {
	Round1DirectorMaxApprove *int
	Round1ManagerMaxApprove  *int
	Round2DirectorMaxApprove *int
	Round2ManagerMaxApprove  *int
	DirectorQualifyCount     *int
	ManagerQualifyCount      *int
	DirectorElectCount       *int
	ManagerElectCount        *int
}

type ElectionStateRepository interface {
	Get(ctx context.Context) (entities.ElectionState, error)
	// Transition applies an admin command as a compare-and-swap on the
	// singleton row: it succeeds only when the stored phase equals the
	// command's required source phase, otherwise it returns
	// domainerrors.ErrInvalidTransition with state unchanged. Concurrent
	// transitions must serialize so at most one succeeds.
	Transition(ctx context.Context, cmd entities.PhaseCommand, updatedAt time.Time) (entities.ElectionState, error)
	UpdateConfig(ctx context.Context, update ElectionConfigUpdate, updatedAt time.Time) (entities.ElectionState, error)
}

// CandidateProjection is the read shape the engine consumes from the
// candidate catalog.
type CandidateProjection struct {
	CandidateID     string
	Name            string
	Category        entities.Category
	Round2Qualified bool
}

type CandidateDirectory interface {
	ListAll(ctx context.Context) ([]CandidateProjection, error)
	ListQualified(ctx context.Context) ([]CandidateProjection, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]CandidateProjection, error)
}

type EventEnvelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	SourceService string    `json:"source_service"`
	SchemaVersion int       `json:"schema_version"`
	PartitionKey  string    `json:"partition_key"`
	Data          []byte    `json:"data"`
}

type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
