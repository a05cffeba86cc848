package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"quorum/contexts/election/ballot-engine/domain/entities"
	domainerrors "quorum/contexts/election/ballot-engine/domain/errors"
	"quorum/contexts/election/ballot-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"

	electionStateRowID = 1
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the engine-owned tables, including the composite uniqueness
// index on (voter_id, candidate_id, round) the submission contract relies on.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&ballotModel{}, &electionStateModel{}, &outboxModel{})
}

// SeedDefaultState inserts the singleton configuration row when missing.
// Existing state is never overwritten.
func (r *Repository) SeedDefaultState(ctx context.Context) error {
	row := stateModelFromEntity(entities.DefaultElectionState())
	row.ID = electionStateRowID
	row.UpdatedAt = time.Now().UTC()
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_seed_state_failed", create.Error)
	}
	return nil
}

// CreateBatchWithOutbox inserts every ballot of one submission plus the
// outbox event in a single transaction. A unique violation on the ballot
// identity rolls the whole batch back and maps to ErrAlreadyVoted: the
// constraint, not an application lock, decides duplicate-submission races.
func (r *Repository) CreateBatchWithOutbox(
	ctx context.Context,
	ballots []entities.Ballot,
	event ports.EventEnvelope,
) error {
	if len(ballots) == 0 {
		return domainerrors.ErrInvalidVoteInput
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return r.logError("election_repo_batch_event_marshal_failed", err,
			"event_id", strings.TrimSpace(event.EventID),
		)
	}

	rows := make([]ballotModel, 0, len(ballots))
	for _, ballot := range ballots {
		rows = append(rows, ballotModelFromEntity(ballot))
	}
	outboxRow := outboxModel{
		OutboxID:  strings.TrimSpace(event.EventID),
		EventType: strings.TrimSpace(event.EventType),
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: event.OccurredAt.UTC(),
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rows).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}
		return tx.Create(&outboxRow).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyVoted) {
			return err
		}
		return r.logError("election_repo_create_batch_failed", err,
			"voter_id", ballots[0].VoterID,
			"round", ballots[0].Round,
			"ballot_count", len(ballots),
		)
	}
	return nil
}

func (r *Repository) HasVoted(ctx context.Context, voterID string, round int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ballotModel{}).
		Where("voter_id = ?", strings.TrimSpace(voterID)).
		Where("round = ?", round).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("election_repo_has_voted_failed", err,
			"voter_id", strings.TrimSpace(voterID),
			"round", round,
		)
	}
	return count > 0, nil
}

type ballotCountRow struct {
	CandidateID string `gorm:"column:candidate_id"`
	VoteType    string `gorm:"column:vote_type"`
	Total       int64  `gorm:"column:total"`
}

// CountByRound is the single grouped pass behind tallies: one query per
// round regardless of candidate count.
func (r *Repository) CountByRound(ctx context.Context, round int) ([]ports.BallotCount, error) {
	var rows []ballotCountRow
	err := r.db.WithContext(ctx).
		Model(&ballotModel{}).
		Select("candidate_id, vote_type, COUNT(*) AS total").
		Where("round = ?", round).
		Group("candidate_id").
		Group("vote_type").
		Scan(&rows).
		Error
	if err != nil {
		return nil, r.logError("election_repo_count_by_round_failed", err, "round", round)
	}
	counts := make([]ports.BallotCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, ports.BallotCount{
			CandidateID: row.CandidateID,
			Type:        entities.VoteType(row.VoteType),
			Count:       row.Total,
		})
	}
	return counts, nil
}

func (r *Repository) CountDistinctVoters(ctx context.Context, round int) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&ballotModel{}).
		Where("round = ?", round).
		Distinct("voter_id").
		Count(&count).
		Error
	if err != nil {
		return 0, r.logError("election_repo_count_voters_failed", err, "round", round)
	}
	return count, nil
}

func (r *Repository) Get(ctx context.Context) (entities.ElectionState, error) {
	var row electionStateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", electionStateRowID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ElectionState{}, domainerrors.ErrStateNotFound
		}
		return entities.ElectionState{}, r.logError("election_repo_get_state_failed", err)
	}
	return row.toEntity(), nil
}

// Transition is a compare-and-swap on the singleton phase column. The
// conditional UPDATE serializes concurrent admin commands: whichever commits
// first flips the phase, the loser matches zero rows and gets
// ErrInvalidTransition.
func (r *Repository) Transition(
	ctx context.Context,
	cmd entities.PhaseCommand,
	updatedAt time.Time,
) (entities.ElectionState, error) {
	from, to, ok := entities.TransitionFor(cmd)
	if !ok {
		return entities.ElectionState{}, domainerrors.ErrInvalidTransition
	}

	result := r.db.WithContext(ctx).
		Model(&electionStateModel{}).
		Where("id = ?", electionStateRowID).
		Where("current_phase = ?", string(from)).
		Updates(map[string]any{
			"current_phase": string(to),
			"updated_at":    updatedAt.UTC(),
		})
	if result.Error != nil {
		return entities.ElectionState{}, r.logError("election_repo_transition_failed", result.Error,
			"command", string(cmd),
		)
	}
	if result.RowsAffected == 0 {
		if _, err := r.Get(ctx); err != nil {
			return entities.ElectionState{}, err
		}
		return entities.ElectionState{}, domainerrors.ErrInvalidTransition
	}
	return r.Get(ctx)
}

func (r *Repository) UpdateConfig(
	ctx context.Context,
	update ports.ElectionConfigUpdate,
	updatedAt time.Time,
) (entities.ElectionState, error) {
	changes := map[string]any{}
	setInt := func(column string, value *int) {
		if value != nil {
			changes[column] = *value
		}
	}
	setInt("round1_director_max_approve", update.Round1DirectorMaxApprove)
	setInt("round1_manager_max_approve", update.Round1ManagerMaxApprove)
	setInt("round2_director_max_approve", update.Round2DirectorMaxApprove)
	setInt("round2_manager_max_approve", update.Round2ManagerMaxApprove)
	setInt("director_qualify_count", update.DirectorQualifyCount)
	setInt("manager_qualify_count", update.ManagerQualifyCount)
	setInt("director_elect_count", update.DirectorElectCount)
	setInt("manager_elect_count", update.ManagerElectCount)

	if len(changes) == 0 {
		return r.Get(ctx)
	}
	changes["updated_at"] = updatedAt.UTC()

	result := r.db.WithContext(ctx).
		Model(&electionStateModel{}).
		Where("id = ?", electionStateRowID).
		Updates(changes)
	if result.Error != nil {
		return entities.ElectionState{}, r.logError("election_repo_update_config_failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return entities.ElectionState{}, domainerrors.ErrStateNotFound
	}
	return r.Get(ctx)
}

func (r *Repository) ListAll(ctx context.Context) ([]ports.CandidateProjection, error) {
	var rows []candidateDirectoryModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_directory_list_failed", err)
	}
	return toProjections(rows), nil
}

func (r *Repository) ListQualified(ctx context.Context) ([]ports.CandidateProjection, error) {
	var rows []candidateDirectoryModel
	if err := r.db.WithContext(ctx).
		Where("round2_qualified = ?", true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_directory_qualified_failed", err)
	}
	return toProjections(rows), nil
}

func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]ports.CandidateProjection, error) {
	if len(ids) == 0 {
		return map[string]ports.CandidateProjection{}, nil
	}
	var rows []candidateDirectoryModel
	if err := r.db.WithContext(ctx).
		Where("candidate_id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_directory_get_by_ids_failed", err, "id_count", len(ids))
	}
	projections := make(map[string]ports.CandidateProjection, len(rows))
	for _, row := range rows {
		projections[row.ID] = row.toProjection()
	}
	return projections, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return r.logError("election_repo_append_outbox_marshal_failed", err,
			"event_id", strings.TrimSpace(envelope.EventID),
		)
	}
	row := outboxModel{
		OutboxID:  strings.TrimSpace(envelope.EventID),
		EventType: strings.TrimSpace(envelope.EventType),
		Payload:   payload,
		Status:    outboxStatusPending,
		CreatedAt: envelope.OccurredAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("election_repo_append_outbox_failed", create.Error, "outbox_id", row.OutboxID)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("election_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   append([]byte(nil), row.Payload...),
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("election_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "election/ballot-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("election repository operation failed", fields...)
	return err
}

type ballotModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	VoterID     string    `gorm:"column:voter_id;uniqueIndex:ux_ballots_voter_candidate_round"`
	CandidateID string    `gorm:"column:candidate_id;uniqueIndex:ux_ballots_voter_candidate_round"`
	Round       int       `gorm:"column:round;uniqueIndex:ux_ballots_voter_candidate_round"`
	VoteType    string    `gorm:"column:vote_type"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (ballotModel) TableName() string {
	return "ballots"
}

func ballotModelFromEntity(ballot entities.Ballot) ballotModel {
	row := ballotModel{
		ID:          strings.TrimSpace(ballot.BallotID),
		VoterID:     strings.TrimSpace(ballot.VoterID),
		CandidateID: strings.TrimSpace(ballot.CandidateID),
		Round:       ballot.Round,
		VoteType:    string(ballot.Type),
		CreatedAt:   ballot.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row
}

type electionStateModel struct {
	ID                       int       `gorm:"column:id;primaryKey"`
	CurrentPhase             string    `gorm:"column:current_phase"`
	Round1DirectorMaxApprove int       `gorm:"column:round1_director_max_approve"`
	Round1ManagerMaxApprove  int       `gorm:"column:round1_manager_max_approve"`
	Round2DirectorMaxApprove int       `gorm:"column:round2_director_max_approve"`
	Round2ManagerMaxApprove  int       `gorm:"column:round2_manager_max_approve"`
	DirectorQualifyCount     int       `gorm:"column:director_qualify_count"`
	ManagerQualifyCount      int       `gorm:"column:manager_qualify_count"`
	DirectorElectCount       int       `gorm:"column:director_elect_count"`
	ManagerElectCount        int       `gorm:"column:manager_elect_count"`
	UpdatedAt                time.Time `gorm:"column:updated_at"`
}

func (electionStateModel) TableName() string {
	return "election_state"
}

func stateModelFromEntity(state entities.ElectionState) electionStateModel {
	return electionStateModel{
		ID:                       electionStateRowID,
		CurrentPhase:             string(state.Phase),
		Round1DirectorMaxApprove: state.Round1DirectorMaxApprove,
		Round1ManagerMaxApprove:  state.Round1ManagerMaxApprove,
		Round2DirectorMaxApprove: state.Round2DirectorMaxApprove,
		Round2ManagerMaxApprove:  state.Round2ManagerMaxApprove,
		DirectorQualifyCount:     state.DirectorQualifyCount,
		ManagerQualifyCount:      state.ManagerQualifyCount,
		DirectorElectCount:       state.DirectorElectCount,
		ManagerElectCount:        state.ManagerElectCount,
		UpdatedAt:                state.UpdatedAt.UTC(),
	}
}

func (m electionStateModel) toEntity() entities.ElectionState {
	return entities.ElectionState{
		Phase:                    entities.ElectionPhase(m.CurrentPhase),
		Round1DirectorMaxApprove: m.Round1DirectorMaxApprove,
		Round1ManagerMaxApprove:  m.Round1ManagerMaxApprove,
		Round2DirectorMaxApprove: m.Round2DirectorMaxApprove,
		Round2ManagerMaxApprove:  m.Round2ManagerMaxApprove,
		DirectorQualifyCount:     m.DirectorQualifyCount,
		ManagerQualifyCount:      m.ManagerQualifyCount,
		DirectorElectCount:       m.DirectorElectCount,
		ManagerElectCount:        m.ManagerElectCount,
		UpdatedAt:                m.UpdatedAt.UTC(),
	}
}

// candidateDirectoryModel is a read-only projection of the catalog-owned
// candidates table.
type candidateDirectoryModel struct {
	ID              string    `gorm:"column:candidate_id;primaryKey"`
	Name            string    `gorm:"column:name"`
	Category        string    `gorm:"column:category"`
	Round2Qualified bool      `gorm:"column:round2_qualified"`
	CreatedAt       time.Time `gorm:"column:created_at"`
}

func (candidateDirectoryModel) TableName() string {
	return "candidates"
}

func (m candidateDirectoryModel) toProjection() ports.CandidateProjection {
	return ports.CandidateProjection{
		CandidateID:     m.ID,
		Name:            m.Name,
		Category:        entities.Category(m.Category),
		Round2Qualified: m.Round2Qualified,
	}
}

func toProjections(rows []candidateDirectoryModel) []ports.CandidateProjection {
	items := make([]ports.CandidateProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toProjection())
	}
	return items
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:outbox_id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "election_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return newUUID(), nil
}

var _ ports.BallotRepository = (*Repository)(nil)
var _ ports.ElectionStateRepository = (*Repository)(nil)
var _ ports.CandidateDirectory = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
