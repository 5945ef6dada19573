package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type CommentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, comment *types.Comment) (*types.Comment, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Comment, error)
	ListBySubmission(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID) ([]*types.Comment, error)
	UpdateContent(ctx context.Context, tx *gorm.DB, id uuid.UUID, content string) error
	DeleteWithReplies(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
}

type commentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCommentRepo(db *gorm.DB, baseLog *logger.Logger) CommentRepo {
	return &commentRepo{db: db, log: baseLog.With("repo", "CommentRepo")}
}

func (r *commentRepo) Create(ctx context.Context, tx *gorm.DB, comment *types.Comment) (*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

func (r *commentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var comment types.Comment
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepo) ListBySubmission(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID) ([]*types.Comment, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Comment
	if err := transaction.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *commentRepo) UpdateContent(ctx context.Context, tx *gorm.DB, id uuid.UUID, content string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Comment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"content":    content,
			"edited":     true,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteWithReplies removes a comment and, when it is top-level, its direct
// replies. The store has no referential action for parent_id, so the cascade
// is done explicitly here, replies first, inside one transaction.
func (r *commentRepo) DeleteWithReplies(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	run := func(transaction *gorm.DB) error {
		if err := transaction.WithContext(ctx).
			Where("parent_id = ?", id).
			Delete(&types.Comment{}).Error; err != nil {
			return err
		}
		res := transaction.WithContext(ctx).
			Where("id = ?", id).
			Delete(&types.Comment{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}
	if tx != nil {
		return run(tx)
	}
	return r.db.WithContext(ctx).Transaction(run)
}
