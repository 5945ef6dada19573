package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

// ErrConditionFailed is returned by the conditional writes when the
// precondition no longer holds and no row was updated. Callers decide
// whether that means the row is gone or another writer got there first.
var ErrConditionFailed = errors.New("conditional update affected no rows")

type SubmissionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sub *types.Submission) (*types.Submission, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Submission, error)
	ListByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.Submission, error)
	ListByAthlete(ctx context.Context, tx *gorm.DB, athleteUID uuid.UUID) ([]*types.Submission, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	AttachMedia(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error
	ClaimPending(ctx context.Context, tx *gorm.DB, id, teamID, coachID uuid.UUID, coachName string) error
	AdvanceStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to string, extra map[string]interface{}) error
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{db: db, log: baseLog.With("repo", "SubmissionRepo")}
}

func (r *submissionRepo) Create(ctx context.Context, tx *gorm.DB, sub *types.Submission) (*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(ctx).Create(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

func (r *submissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var sub types.Submission
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) ListByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Submission
	if err := transaction.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *submissionRepo) ListByAthlete(ctx context.Context, tx *gorm.DB, athleteUID uuid.UUID) ([]*types.Submission, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Submission
	if err := transaction.WithContext(ctx).
		Where("athlete_uid = ?", athleteUID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *submissionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	res := transaction.WithContext(ctx).
		Model(&types.Submission{}).
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

// AttachMedia completes phase two of submission creation: the media fields
// are written and the record leaves "uploading" in the same statement, so a
// half-finished upload can never surface in the coach queue.
func (r *submissionRepo) AttachMedia(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	fields["status"] = types.SubmissionStatusAwaitingCoach
	fields["updated_at"] = time.Now()
	res := transaction.WithContext(ctx).
		Model(&types.Submission{}).
		Where("id = ? AND status = ?", id, types.SubmissionStatusUploading).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}

// ClaimPending assigns an awaiting submission to a coach with a single
// conditional UPDATE. Two coaches racing on the same row get exactly one
// success; the loser sees ErrConditionFailed. The team predicate keeps the
// claim inside the coach's own team without a separate read.
func (r *submissionRepo) ClaimPending(ctx context.Context, tx *gorm.DB, id, teamID, coachID uuid.UUID, coachName string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Submission{}).
		Where("id = ? AND team_id = ? AND status = ? AND claimed_by IS NULL", id, teamID, types.SubmissionStatusAwaitingCoach).
		Updates(map[string]interface{}{
			"claimed_by":      coachID,
			"claimed_by_name": coachName,
			"status":          types.SubmissionStatusClaimed,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}

// AdvanceStatus moves a submission one step forward, but only if it is
// still in the expected state. Backward moves are rejected before touching
// the database.
func (r *submissionRepo) AdvanceStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to string, extra map[string]interface{}) error {
	if !types.CanAdvance(from, to) {
		return ErrConditionFailed
	}
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	fields := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	res := transaction.WithContext(ctx).
		Model(&types.Submission{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}
