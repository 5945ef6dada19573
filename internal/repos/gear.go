package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type GearRepo interface {
	Create(ctx context.Context, tx *gorm.DB, item *types.GearItem) (*types.GearItem, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GearItem, error)
	ListByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.GearItem, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type gearRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGearRepo(db *gorm.DB, baseLog *logger.Logger) GearRepo {
	return &gearRepo{db: db, log: baseLog.With("repo", "GearRepo")}
}

func (r *gearRepo) Create(ctx context.Context, tx *gorm.DB, item *types.GearItem) (*types.GearItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *gearRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.GearItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var item types.GearItem
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *gearRepo) ListByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.GearItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.GearItem
	if err := transaction.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("category ASC, name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *gearRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	res := transaction.WithContext(ctx).
		Model(&types.GearItem{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gearRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.GearItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
