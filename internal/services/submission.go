package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/repos"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/sla"
	"github.com/mtnvale/stridecoach-backend/internal/sse"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type CreateSubmissionInput struct {
	SkillName         string  `json:"skill_name" validate:"required"`
	AthleteContext    string  `json:"athlete_context" validate:"required"`
	AthleteGoals      string  `json:"athlete_goals"`
	SpecificQuestions string  `json:"specific_questions"`
	VideoFileName     string  `json:"video_file_name" validate:"required"`
	VideoFileSize     int64   `json:"video_file_size" validate:"gt=0"`
	VideoDuration     float64 `json:"video_duration"`
}

type AttachMediaInput struct {
	VideoDownloadURL string  `json:"video_download_url" validate:"required,url"`
	ThumbnailURL     string  `json:"thumbnail_url"`
	VideoDuration    float64 `json:"video_duration"`
}

type PublishReviewInput struct {
	OverallFeedback string `json:"overall_feedback" validate:"required"`
	NextSteps       string `json:"next_steps"`
}

// SubmissionDetail is the player page payload: the submission, its published
// review if any, the comment thread, and the SLA state evaluated at read time.
type SubmissionDetail struct {
	Submission *types.Submission      `json:"submission"`
	Review     *types.Review          `json:"review,omitempty"`
	Threads    []*types.CommentThread `json:"threads"`
	SLA        sla.Result             `json:"sla"`
}

type SubmissionService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, input CreateSubmissionInput) (*types.Submission, error)
	UploadVideo(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, filename string, size int64, file io.Reader) (*types.Submission, error)
	AttachMedia(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, input AttachMediaInput) (*types.Submission, error)
	Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*SubmissionDetail, error)
	ListMine(ctx context.Context, rd *requestdata.RequestData) ([]*types.Submission, error)
	Claim(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Submission, error)
	StartReview(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Submission, error)
	PublishReview(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, input PublishReviewInput) (*types.Review, error)
}

type submissionService struct {
	db             *gorm.DB
	log            *logger.Logger
	submissionRepo repos.SubmissionRepo
	reviewRepo     repos.ReviewRepo
	commentRepo    repos.CommentRepo
	bucketService  BucketService
	queueService   QueueService
	broadcaster    *Broadcaster
	slaHours       int
	maxUploadBytes int64
}

func NewSubmissionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	submissionRepo repos.SubmissionRepo,
	reviewRepo repos.ReviewRepo,
	commentRepo repos.CommentRepo,
	bucketService BucketService,
	queueService QueueService,
	broadcaster *Broadcaster,
	slaHours int,
	maxUploadBytes int64,
) SubmissionService {
	return &submissionService{
		db:             db,
		log:            baseLog.With("service", "SubmissionService"),
		submissionRepo: submissionRepo,
		reviewRepo:     reviewRepo,
		commentRepo:    commentRepo,
		bucketService:  bucketService,
		queueService:   queueService,
		broadcaster:    broadcaster,
		slaHours:       slaHours,
		maxUploadBytes: maxUploadBytes,
	}
}

var allowedVideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".m4v":  true,
	".webm": true,
}

// Create is phase one of the two-phase submission flow: the metadata record
// is written in "uploading" and stays invisible to coaches until the media
// attach lands. The SLA deadline is fixed here and never recalculated.
func (ss *submissionService) Create(ctx context.Context, rd *requestdata.RequestData, input CreateSubmissionInput) (*types.Submission, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if rd.Role != types.RoleAthlete {
		return nil, apierr.PermissionDenied(fmt.Errorf("only athletes submit videos"))
	}
	if rd.TeamID == uuid.Nil {
		return nil, apierr.PermissionDenied(fmt.Errorf("no team membership"))
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	if err := ss.validateVideoFile(input.VideoFileName, input.VideoFileSize); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(time.Duration(ss.slaHours) * time.Hour)
	sub := &types.Submission{
		ID:               uuid.New(),
		TeamID:           rd.TeamID,
		AthleteUID:       rd.UserID,
		AthleteName:      rd.DisplayName,
		SkillName:        strings.TrimSpace(input.SkillName),
		AthleteContext:   strings.TrimSpace(input.AthleteContext),
		AthleteGoals:     strings.TrimSpace(input.AthleteGoals),
		SpecificQuestion: strings.TrimSpace(input.SpecificQuestions),
		VideoFileName:    input.VideoFileName,
		VideoFileSize:    input.VideoFileSize,
		VideoDuration:    input.VideoDuration,
		Status:           types.SubmissionStatusUploading,
		SLADeadline:      &deadline,
	}
	if _, err := ss.submissionRepo.Create(ctx, nil, sub); err != nil {
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	ss.log.Info("Created submission", "submissionID", sub.ID, "athleteUID", rd.UserID)
	return sub, nil
}

// UploadVideo streams the file to the bucket, then attaches the download URL
// and moves the record to awaiting_coach. A cancelled or failed upload leaves
// the record in "uploading" with no URL; retry is an explicit re-upload.
func (ss *submissionService) UploadVideo(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, filename string, size int64, file io.Reader) (*types.Submission, error) {
	sub, err := ss.getOwned(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if sub.Status != types.SubmissionStatusUploading {
		return nil, apierr.InvalidStatus(fmt.Errorf("submission already has its video"))
	}
	if err := ss.validateVideoFile(filename, size); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s/%s", sub.AthleteUID, sub.ID, path.Base(filename))
	if err := ss.bucketService.UploadFile(ctx, key, file); err != nil {
		ss.log.Error("Video upload failed", "error", err, "submissionID", id, "key", key)
		return nil, apierr.UploadFailed(fmt.Errorf("video upload failed: %w", err))
	}
	// The context may have been cancelled between the copy finishing and
	// here; treat that the same as a failed upload so no URL is attached.
	if err := ctx.Err(); err != nil {
		return nil, apierr.UploadFailed(fmt.Errorf("upload cancelled: %w", err))
	}

	url := ss.bucketService.GetPublicURL(key)
	fields := map[string]interface{}{
		"video_download_url": url,
		"video_file_name":    path.Base(filename),
		"video_file_size":    size,
		"storage_key":        key,
	}
	if err := ss.submissionRepo.AttachMedia(ctx, nil, id, fields); err != nil {
		if errors.Is(err, repos.ErrConditionFailed) {
			return nil, apierr.InvalidStatus(fmt.Errorf("submission left uploading state during upload"))
		}
		return nil, fmt.Errorf("failed to attach media: %w", err)
	}

	updated, err := ss.submissionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	ss.notifySubmission(ctx, updated, sse.EventSubmissionCreated)
	ss.queueService.TeamQueueChanged(ctx, updated.TeamID)
	return updated, nil
}

// AttachMedia is the PATCH path for clients that upload straight to storage
// and report the resulting URL.
func (ss *submissionService) AttachMedia(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, input AttachMediaInput) (*types.Submission, error) {
	sub, err := ss.getOwned(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"video_download_url": input.VideoDownloadURL,
	}
	if input.ThumbnailURL != "" {
		fields["thumbnail_url"] = input.ThumbnailURL
	}
	if input.VideoDuration > 0 {
		fields["video_duration"] = input.VideoDuration
	}
	if err := ss.submissionRepo.AttachMedia(ctx, nil, id, fields); err != nil {
		if errors.Is(err, repos.ErrConditionFailed) {
			return nil, apierr.InvalidStatus(fmt.Errorf("submission is not awaiting media"))
		}
		return nil, err
	}
	updated, err := ss.submissionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	ss.notifySubmission(ctx, updated, sse.EventSubmissionCreated)
	ss.queueService.TeamQueueChanged(ctx, sub.TeamID)
	return updated, nil
}

func (ss *submissionService) Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*SubmissionDetail, error) {
	sub, err := ss.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewSubmission(rd, sub) {
		return nil, apierr.PermissionDenied(fmt.Errorf("no access to this submission"))
	}

	detail := &SubmissionDetail{
		Submission: sub,
		SLA:        sla.EvaluatePtr(sub.SLADeadline, time.Now()),
	}

	if sub.ReviewID != nil {
		review, err := ss.reviewRepo.GetBySubmissionID(ctx, nil, sub.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		detail.Review = review
	}

	comments, err := ss.commentRepo.ListBySubmission(ctx, nil, sub.ID)
	if err != nil {
		return nil, err
	}
	detail.Threads = GroupThreads(comments)
	return detail, nil
}

func (ss *submissionService) ListMine(ctx context.Context, rd *requestdata.RequestData) ([]*types.Submission, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	return ss.submissionRepo.ListByAthlete(ctx, nil, rd.UserID)
}

// Claim races any other coach pressing the button at the same moment. The
// repo's conditional write guarantees exactly one winner; the loser gets
// AlreadyClaimed and the next queue snapshot shows who won.
func (ss *submissionService) Claim(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Submission, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if !rd.IsCoach() {
		return nil, apierr.PermissionDenied(fmt.Errorf("only coaches claim submissions"))
	}

	err := ss.submissionRepo.ClaimPending(ctx, nil, id, rd.TeamID, rd.UserID, rd.DisplayName)
	if err != nil {
		if !errors.Is(err, repos.ErrConditionFailed) {
			return nil, fmt.Errorf("claim write failed: %w", err)
		}
		// Condition failed: the row is gone, belongs to another team, or
		// someone else owns it.
		existing, getErr := ss.submissionRepo.GetByID(ctx, nil, id)
		if getErr != nil {
			if errors.Is(getErr, gorm.ErrRecordNotFound) {
				return nil, apierr.NotFound(fmt.Errorf("submission not found"))
			}
			return nil, getErr
		}
		if existing.TeamID != rd.TeamID {
			return nil, apierr.PermissionDenied(fmt.Errorf("submission belongs to another team"))
		}
		return nil, apierr.AlreadyClaimed(fmt.Errorf("already claimed by %s", existing.ClaimedByName))
	}

	claimed, err := ss.submissionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	ss.log.Info("Submission claimed", "submissionID", id, "coachID", rd.UserID)
	ss.notifySubmission(ctx, claimed, sse.EventSubmissionClaimed)
	ss.queueService.TeamQueueChanged(ctx, claimed.TeamID)
	return claimed, nil
}

func (ss *submissionService) StartReview(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Submission, error) {
	sub, err := ss.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.ClaimedByCoach(rdUserID(rd)) {
		return nil, apierr.PermissionDenied(fmt.Errorf("only the claiming coach may review"))
	}
	err = ss.submissionRepo.AdvanceStatus(ctx, nil, id, types.SubmissionStatusClaimed, types.SubmissionStatusInReview, nil)
	if err != nil {
		if errors.Is(err, repos.ErrConditionFailed) {
			return nil, apierr.InvalidStatus(fmt.Errorf("submission is not in claimed state"))
		}
		return nil, err
	}
	updated, err := ss.submissionRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	ss.notifySubmission(ctx, updated, sse.EventSubmissionStatusMoved)
	ss.queueService.TeamQueueChanged(ctx, updated.TeamID)
	return updated, nil
}

// PublishReview creates the review, back-references it, and completes the
// submission in one transaction, so a submission can never be complete
// without its review or vice versa.
func (ss *submissionService) PublishReview(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, input PublishReviewInput) (*types.Review, error) {
	sub, err := ss.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.ClaimedByCoach(rdUserID(rd)) {
		return nil, apierr.PermissionDenied(fmt.Errorf("only the claiming coach may publish"))
	}
	if sub.Status != types.SubmissionStatusInReview {
		return nil, apierr.InvalidStatus(fmt.Errorf("submission is not in review"))
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}

	review := &types.Review{
		ID:              uuid.New(),
		SubmissionID:    sub.ID,
		CoachID:         rd.UserID,
		CoachName:       rd.DisplayName,
		OverallFeedback: strings.TrimSpace(input.OverallFeedback),
		NextSteps:       strings.TrimSpace(input.NextSteps),
		PublishedAt:     time.Now(),
	}
	if err := runTx(ctx, ss.db, func(tx *gorm.DB) error {
		if _, err := ss.reviewRepo.Create(ctx, tx, review); err != nil {
			return err
		}
		err := ss.submissionRepo.AdvanceStatus(ctx, tx, id,
			types.SubmissionStatusInReview, types.SubmissionStatusComplete,
			map[string]interface{}{"review_id": review.ID})
		if errors.Is(err, repos.ErrConditionFailed) {
			return apierr.InvalidStatus(fmt.Errorf("submission left in_review state"))
		}
		return err
	}); err != nil {
		return nil, err
	}

	ss.log.Info("Review published", "submissionID", id, "reviewID", review.ID, "coachID", rd.UserID)
	updated, err := ss.submissionRepo.GetByID(ctx, nil, id)
	if err == nil {
		ss.notifySubmission(ctx, updated, sse.EventReviewPublished)
		ss.queueService.TeamQueueChanged(ctx, updated.TeamID)
	}
	return review, nil
}

// CanViewSubmission is the detail-page access rule: the owning athlete, the
// claiming coach, or an administrator.
func CanViewSubmission(rd *requestdata.RequestData, sub *types.Submission) bool {
	if rd == nil || sub == nil || rd.UserID == uuid.Nil {
		return false
	}
	if rd.IsAdmin() {
		return true
	}
	if sub.AthleteUID == rd.UserID {
		return true
	}
	return sub.ClaimedByCoach(rd.UserID)
}

func (ss *submissionService) fetch(ctx context.Context, id uuid.UUID) (*types.Submission, error) {
	sub, err := ss.submissionRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("submission not found"))
		}
		return nil, err
	}
	return sub, nil
}

func (ss *submissionService) getOwned(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Submission, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	sub, err := ss.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.AthleteUID != rd.UserID {
		return nil, apierr.PermissionDenied(fmt.Errorf("not your submission"))
	}
	return sub, nil
}

func (ss *submissionService) validateVideoFile(filename string, size int64) error {
	ext := strings.ToLower(path.Ext(filename))
	if !allowedVideoExtensions[ext] {
		return apierr.ValidationFailed(fmt.Errorf("unsupported video type %q", ext))
	}
	if size <= 0 {
		return apierr.ValidationFailed(fmt.Errorf("video size must be positive"))
	}
	if ss.maxUploadBytes > 0 && size > ss.maxUploadBytes {
		return apierr.ValidationFailed(fmt.Errorf("video exceeds max size of %d bytes", ss.maxUploadBytes))
	}
	return nil
}

func (ss *submissionService) notifySubmission(ctx context.Context, sub *types.Submission, event sse.Event) {
	ss.broadcaster.Broadcast(ctx, sse.Message{
		Channel: sse.SubmissionChannel(sub.ID),
		Event:   event,
		Data:    sub,
	})
}

func rdUserID(rd *requestdata.RequestData) uuid.UUID {
	if rd == nil {
		return uuid.Nil
	}
	return rd.UserID
}
