package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type AnnouncementRepo interface {
	Create(ctx context.Context, tx *gorm.DB, a *types.Announcement) (*types.Announcement, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Announcement, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Announcement, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type announcementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnouncementRepo(db *gorm.DB, baseLog *logger.Logger) AnnouncementRepo {
	return &announcementRepo{db: db, log: baseLog.With("repo", "AnnouncementRepo")}
}

func (r *announcementRepo) Create(ctx context.Context, tx *gorm.DB, a *types.Announcement) (*types.Announcement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *announcementRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Announcement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var a types.Announcement
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Announcement, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Announcement
	if err := transaction.WithContext(ctx).
		Order("pinned DESC, created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *announcementRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	res := transaction.WithContext(ctx).
		Model(&types.Announcement{}).
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

func (r *announcementRepo) Delete(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("id = ?", id).
		Delete(&types.Announcement{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
