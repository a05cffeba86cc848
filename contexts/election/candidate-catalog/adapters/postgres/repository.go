package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"quorum/contexts/election/candidate-catalog/domain/entities"
	domainerrors "quorum/contexts/election/candidate-catalog/domain/errors"
	"quorum/contexts/election/candidate-catalog/ports"
)

type candidateModel struct {
	CandidateID     string    `gorm:"column:candidate_id;primaryKey"`
	Name            string    `gorm:"column:name;not null"`
	Title           string    `gorm:"column:title"`
	Description     string    `gorm:"column:description"`
	ResumeURL       string    `gorm:"column:resume_url"`
	Category        string    `gorm:"column:category;not null;index:ix_candidates_category"`
	Round2Qualified bool      `gorm:"column:round2_qualified;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null"`
}

func (candidateModel) TableName() string { return "candidates" }

func (m candidateModel) toEntity() entities.Candidate {
	return entities.Candidate{
		CandidateID:     m.CandidateID,
		Name:            m.Name,
		Title:           m.Title,
		Description:     m.Description,
		ResumeURL:       m.ResumeURL,
		Category:        entities.Category(m.Category),
		Round2Qualified: m.Round2Qualified,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func fromEntity(candidate entities.Candidate) candidateModel {
	return candidateModel{
		CandidateID:     candidate.CandidateID,
		Name:            candidate.Name,
		Title:           candidate.Title,
		Description:     candidate.Description,
		ResumeURL:       candidate.ResumeURL,
		Category:        string(candidate.Category),
		Round2Qualified: candidate.Round2Qualified,
		CreatedAt:       candidate.CreatedAt,
		UpdatedAt:       candidate.UpdatedAt,
	}
}

// Repository stores the candidate catalog in Postgres through gorm.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&candidateModel{})
}

func (r *Repository) Create(ctx context.Context, candidate entities.Candidate) error {
	model := fromEntity(candidate)
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *Repository) CreateBatch(ctx context.Context, candidates []entities.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	models := make([]candidateModel, 0, len(candidates))
	for _, candidate := range candidates {
		models = append(models, fromEntity(candidate))
	}
	return r.db.WithContext(ctx).Create(&models).Error
}

func (r *Repository) GetByID(ctx context.Context, candidateID string) (entities.Candidate, error) {
	var model candidateModel
	err := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entities.Candidate{}, domainerrors.ErrCandidateNotFound
	}
	if err != nil {
		return entities.Candidate{}, err
	}
	return model.toEntity(), nil
}

func (r *Repository) ListAll(ctx context.Context) ([]entities.Candidate, error) {
	return r.list(ctx, r.db.WithContext(ctx))
}

func (r *Repository) ListByCategory(ctx context.Context, category entities.Category) ([]entities.Candidate, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("category = ?", string(category)))
}

func (r *Repository) ListQualified(ctx context.Context) ([]entities.Candidate, error) {
	return r.list(ctx, r.db.WithContext(ctx).Where("round2_qualified = ?", true))
}

func (r *Repository) list(_ context.Context, query *gorm.DB) ([]entities.Candidate, error) {
	var models []candidateModel
	if err := query.Order("created_at ASC, candidate_id ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	candidates := make([]entities.Candidate, 0, len(models))
	for _, model := range models {
		candidates = append(candidates, model.toEntity())
	}
	return candidates, nil
}

func (r *Repository) Update(ctx context.Context, candidate entities.Candidate) error {
	model := fromEntity(candidate)
	result := r.db.WithContext(ctx).
		Model(&candidateModel{}).
		Where("candidate_id = ?", model.CandidateID).
		Updates(map[string]any{
			"name":        model.Name,
			"title":       model.Title,
			"description": model.Description,
			"resume_url":  model.ResumeURL,
			"category":    model.Category,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCandidateNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, candidateID string) error {
	result := r.db.WithContext(ctx).
		Where("candidate_id = ?", candidateID).
		Delete(&candidateModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCandidateNotFound
	}
	return nil
}

// ReplaceQualified clears every flag and sets the given ids inside one
// transaction so readers never observe a partially replaced set.
func (r *Repository) ReplaceQualified(ctx context.Context, candidateIDs []string, updatedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(candidateIDs) > 0 {
			var known int64
			if err := tx.Model(&candidateModel{}).
				Where("candidate_id IN ?", candidateIDs).
				Count(&known).Error; err != nil {
				return err
			}
			if known != int64(len(candidateIDs)) {
				return domainerrors.ErrUnknownQualifiedTarget
			}
		}

		if err := tx.Model(&candidateModel{}).
			Where("round2_qualified = ?", true).
			Updates(map[string]any{"round2_qualified": false, "updated_at": updatedAt}).Error; err != nil {
			return err
		}
		if len(candidateIDs) == 0 {
			return nil
		}
		return tx.Model(&candidateModel{}).
			Where("candidate_id IN ?", candidateIDs).
			Updates(map[string]any{"round2_qualified": true, "updated_at": updatedAt}).Error
	})
}

// BallotChecker reads the ballot-engine's table to guard candidate deletion.
type BallotChecker struct {
	db *gorm.DB
}

func NewBallotChecker(db *gorm.DB) *BallotChecker {
	return &BallotChecker{db: db}
}

func (c *BallotChecker) HasBallots(ctx context.Context, candidateID string) (bool, error) {
	var count int64
	err := c.db.WithContext(ctx).
		Table("ballots").
		Where("candidate_id = ?", candidateID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

var _ ports.CandidateRepository = (*Repository)(nil)
var _ ports.BallotReferenceChecker = (*BallotChecker)(nil)
var _ ports.Clock = SystemClock{}
var _ ports.IDGenerator = UUIDGenerator{}
