package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type ReviewRepo interface {
	Create(ctx context.Context, tx *gorm.DB, review *types.Review) (*types.Review, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Review, error)
	GetBySubmissionID(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID) (*types.Review, error)
	ListByCoach(ctx context.Context, tx *gorm.DB, coachID uuid.UUID) ([]*types.Review, error)
}

type reviewRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReviewRepo(db *gorm.DB, baseLog *logger.Logger) ReviewRepo {
	return &reviewRepo{db: db, log: baseLog.With("repo", "ReviewRepo")}
}

func (r *reviewRepo) Create(ctx context.Context, tx *gorm.DB, review *types.Review) (*types.Review, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(review).Error; err != nil {
		return nil, err
	}
	return review, nil
}

func (r *reviewRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Review, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var review types.Review
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) GetBySubmissionID(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID) (*types.Review, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var review types.Review
	if err := transaction.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepo) ListByCoach(ctx context.Context, tx *gorm.DB, coachID uuid.UUID) ([]*types.Review, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Review
	if err := transaction.WithContext(ctx).
		Where("coach_id = ?", coachID).
		Order("published_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
