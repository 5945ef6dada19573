package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type ApplicationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, app *types.CoachingApplication) (*types.CoachingApplication, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CoachingApplication, error)
	ListByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, status string) ([]*types.CoachingApplication, error)
	ListByApplicant(ctx context.Context, tx *gorm.DB, applicantID uuid.UUID) ([]*types.CoachingApplication, error)
	Decide(ctx context.Context, tx *gorm.DB, id, reviewerID uuid.UUID, status string) error
}

type applicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApplicationRepo(db *gorm.DB, baseLog *logger.Logger) ApplicationRepo {
	return &applicationRepo{db: db, log: baseLog.With("repo", "ApplicationRepo")}
}

func (r *applicationRepo) Create(ctx context.Context, tx *gorm.DB, app *types.CoachingApplication) (*types.CoachingApplication, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

func (r *applicationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.CoachingApplication, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var app types.CoachingApplication
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&app).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *applicationRepo) ListByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID, status string) ([]*types.CoachingApplication, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("team_id = ?", teamID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var results []*types.CoachingApplication
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *applicationRepo) ListByApplicant(ctx context.Context, tx *gorm.DB, applicantID uuid.UUID) ([]*types.CoachingApplication, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.CoachingApplication
	if err := transaction.WithContext(ctx).
		Where("applicant_id = ?", applicantID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Decide resolves a pending application. The status precondition keeps a
// second reviewer from flipping an already-decided application.
func (r *applicationRepo) Decide(ctx context.Context, tx *gorm.DB, id, reviewerID uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.CoachingApplication{}).
		Where("id = ? AND status = ?", id, types.ApplicationStatusPending).
		Updates(map[string]interface{}{
			"status":      status,
			"reviewed_by": reviewerID,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}
