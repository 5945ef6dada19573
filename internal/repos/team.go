package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type TeamRepo interface {
	Create(ctx context.Context, tx *gorm.DB, team *types.Team) (*types.Team, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Team, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Team, error)
}

type teamRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeamRepo(db *gorm.DB, baseLog *logger.Logger) TeamRepo {
	return &teamRepo{db: db, log: baseLog.With("repo", "TeamRepo")}
}

func (r *teamRepo) Create(ctx context.Context, tx *gorm.DB, team *types.Team) (*types.Team, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(team).Error; err != nil {
		return nil, err
	}
	return team, nil
}

func (r *teamRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Team, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var team types.Team
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Team, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Team
	if err := transaction.WithContext(ctx).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
