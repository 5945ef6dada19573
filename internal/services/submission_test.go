package services

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/queue"
	"github.com/mtnvale/stridecoach-backend/internal/repos"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/sse"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

// fakeSubmissionRepo keeps submissions in memory and mirrors the store's
// conditional-write semantics: a guarded update that no longer matches
// returns ErrConditionFailed, exactly like RowsAffected == 0.
type fakeSubmissionRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*types.Submission

	attachCalls int
}

func newFakeSubmissionRepo() *fakeSubmissionRepo {
	return &fakeSubmissionRepo{subs: make(map[uuid.UUID]*types.Submission)}
}

func (f *fakeSubmissionRepo) put(sub *types.Submission) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *sub
	f.subs[sub.ID] = &cp
}

func (f *fakeSubmissionRepo) Create(ctx context.Context, tx *gorm.DB, sub *types.Submission) (*types.Submission, error) {
	f.put(sub)
	return sub, nil
}

func (f *fakeSubmissionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeSubmissionRepo) ListByTeam(ctx context.Context, tx *gorm.DB, teamID uuid.UUID) ([]*types.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Submission
	for _, sub := range f.subs {
		if sub.TeamID == teamID {
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) ListByAthlete(ctx context.Context, tx *gorm.DB, athleteUID uuid.UUID) ([]*types.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Submission
	for _, sub := range f.subs {
		if sub.AthleteUID == athleteUID {
			cp := *sub
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeSubmissionRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (f *fakeSubmissionRepo) AttachMedia(ctx context.Context, tx *gorm.DB, id uuid.UUID, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attachCalls++
	sub, ok := f.subs[id]
	if !ok || sub.Status != types.SubmissionStatusUploading {
		return repos.ErrConditionFailed
	}
	if url, ok := fields["video_download_url"].(string); ok {
		sub.VideoDownloadURL = url
	}
	if key, ok := fields["storage_key"].(string); ok {
		sub.StorageKey = key
	}
	sub.Status = types.SubmissionStatusAwaitingCoach
	return nil
}

func (f *fakeSubmissionRepo) ClaimPending(ctx context.Context, tx *gorm.DB, id, teamID, coachID uuid.UUID, coachName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok || sub.TeamID != teamID || sub.Status != types.SubmissionStatusAwaitingCoach || sub.ClaimedBy != nil {
		return repos.ErrConditionFailed
	}
	owner := coachID
	sub.ClaimedBy = &owner
	sub.ClaimedByName = coachName
	sub.Status = types.SubmissionStatusClaimed
	return nil
}

func (f *fakeSubmissionRepo) AdvanceStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, from, to string, extra map[string]interface{}) error {
	if !types.CanAdvance(from, to) {
		return fmt.Errorf("illegal status advance %s -> %s", from, to)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	sub, ok := f.subs[id]
	if !ok || sub.Status != from {
		return repos.ErrConditionFailed
	}
	sub.Status = to
	if reviewID, ok := extra["review_id"].(uuid.UUID); ok {
		rid := reviewID
		sub.ReviewID = &rid
	}
	return nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*types.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]*types.Review)}
}

func (f *fakeReviewRepo) Create(ctx context.Context, tx *gorm.DB, review *types.Review) (*types.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviews[review.SubmissionID] = review
	return review, nil
}

func (f *fakeReviewRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReviewRepo) GetBySubmissionID(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID) (*types.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[submissionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r, nil
}

func (f *fakeReviewRepo) ListByCoach(ctx context.Context, tx *gorm.DB, coachID uuid.UUID) ([]*types.Review, error) {
	return nil, nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[uuid.UUID]*types.Comment
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[uuid.UUID]*types.Comment)}
}

func (f *fakeCommentRepo) Create(ctx context.Context, tx *gorm.DB, comment *types.Comment) (*types.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *comment
	f.comments[comment.ID] = &cp
	return comment, nil
}

func (f *fakeCommentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCommentRepo) ListBySubmission(ctx context.Context, tx *gorm.DB, submissionID uuid.UUID) ([]*types.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*types.Comment
	for _, c := range f.comments {
		if c.SubmissionID == submissionID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeCommentRepo) UpdateContent(ctx context.Context, tx *gorm.DB, id uuid.UUID, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.comments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.Content = content
	c.Edited = true
	return nil
}

func (f *fakeCommentRepo) DeleteWithReplies(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.comments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	for cid, c := range f.comments {
		if c.ParentID != nil && *c.ParentID == id {
			delete(f.comments, cid)
		}
	}
	delete(f.comments, id)
	return nil
}

func (f *fakeCommentRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.comments)
}

// fakeBucket records uploads and can run a hook mid-upload, which the
// cancellation test uses to cancel the request while the copy is in flight.
type fakeBucket struct {
	mu         sync.Mutex
	uploads    []string
	uploadHook func()
}

func (f *fakeBucket) UploadFile(ctx context.Context, key string, file io.Reader) error {
	if _, err := io.Copy(io.Discard, file); err != nil {
		return err
	}
	if f.uploadHook != nil {
		f.uploadHook()
	}
	if ctx.Err() != nil {
		// The copy itself finished; the caller is expected to notice the
		// cancellation and refuse to attach.
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, key)
	return nil
}

func (f *fakeBucket) DeleteFile(ctx context.Context, key string) error { return nil }

func (f *fakeBucket) GetPublicURL(key string) string { return "https://cdn.test/" + key }

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testBroadcaster(t *testing.T) *Broadcaster {
	t.Helper()
	log := testLogger(t)
	return NewBroadcaster(log, sse.NewHub(log), nil)
}

type submissionFixture struct {
	service SubmissionService
	subRepo *fakeSubmissionRepo
	reviews *fakeReviewRepo
	bucket  *fakeBucket
	queue   *stubQueue
}

type stubQueue struct {
	mu      sync.Mutex
	changed []uuid.UUID
}

func (s *stubQueue) View(ctx context.Context, rd *requestdata.RequestData, teamID uuid.UUID, filter queue.Filter, sortBy queue.Sort) (*QueueView, error) {
	return nil, nil
}

func (s *stubQueue) TeamQueueChanged(ctx context.Context, teamID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changed = append(s.changed, teamID)
}

func newSubmissionFixture(t *testing.T) *submissionFixture {
	t.Helper()
	subRepo := newFakeSubmissionRepo()
	reviews := newFakeReviewRepo()
	comments := newFakeCommentRepo()
	bucket := &fakeBucket{}
	q := &stubQueue{}
	svc := NewSubmissionService(nil, testLogger(t), subRepo, reviews, comments, bucket, q, testBroadcaster(t), 48, 512<<20)
	return &submissionFixture{service: svc, subRepo: subRepo, reviews: reviews, bucket: bucket, queue: q}
}

func athleteRD(teamID uuid.UUID) *requestdata.RequestData {
	return &requestdata.RequestData{
		UserID:      uuid.New(),
		DisplayName: "Avery Brooks",
		Role:        types.RoleAthlete,
		TeamID:      teamID,
	}
}

func coachRD(teamID uuid.UUID, name string) *requestdata.RequestData {
	return &requestdata.RequestData{
		UserID:      uuid.New(),
		DisplayName: name,
		Role:        types.RoleCoach,
		TeamID:      teamID,
	}
}

func awaitingSubmission(teamID uuid.UUID) *types.Submission {
	deadline := time.Now().Add(48 * time.Hour)
	return &types.Submission{
		ID:          uuid.New(),
		TeamID:      teamID,
		AthleteUID:  uuid.New(),
		AthleteName: "Avery Brooks",
		SkillName:   "backhand clear",
		Status:      types.SubmissionStatusAwaitingCoach,
		SLADeadline: &deadline,
	}
}

func TestCreateSubmission(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamID := uuid.New()
	rd := athleteRD(teamID)

	before := time.Now()
	sub, err := fx.service.Create(context.Background(), rd, CreateSubmissionInput{
		SkillName:      "serve toss",
		AthleteContext: "Toss drifts behind me on second serves.",
		VideoFileName:  "serve.mp4",
		VideoFileSize:  42_000_000,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sub.Status != types.SubmissionStatusUploading {
		t.Fatalf("new submission status = %q, want uploading", sub.Status)
	}
	if sub.SLADeadline == nil {
		t.Fatal("SLA deadline not set at creation")
	}
	want := before.Add(48 * time.Hour)
	if diff := sub.SLADeadline.Sub(want); diff < 0 || diff > time.Minute {
		t.Fatalf("SLA deadline %v not ~48h from creation", sub.SLADeadline)
	}
	if sub.TeamID != teamID || sub.AthleteUID != rd.UserID {
		t.Fatal("submission not stamped with the caller's identity")
	}
}

func TestCreateSubmissionPermissions(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamID := uuid.New()
	input := CreateSubmissionInput{
		SkillName:      "serve toss",
		AthleteContext: "context",
		VideoFileName:  "serve.mp4",
		VideoFileSize:  1024,
	}

	if _, err := fx.service.Create(context.Background(), coachRD(teamID, "Coach"), input); !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("coach create error = %v, want permission_denied", err)
	}
	if _, err := fx.service.Create(context.Background(), athleteRD(uuid.Nil), input); !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("teamless athlete create error = %v, want permission_denied", err)
	}
	if _, err := fx.service.Create(context.Background(), nil, input); !apierr.Is(err, apierr.CodeUnauthorized) {
		t.Fatalf("anonymous create error = %v, want unauthorized", err)
	}

	bad := input
	bad.VideoFileName = "serve.exe"
	if _, err := fx.service.Create(context.Background(), athleteRD(teamID), bad); !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("bad extension error = %v, want validation_failed", err)
	}
}

func TestClaimExactlyOneWinner(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamID := uuid.New()
	sub := awaitingSubmission(teamID)
	fx.subRepo.put(sub)

	coaches := []*requestdata.RequestData{
		coachRD(teamID, "Coach One"),
		coachRD(teamID, "Coach Two"),
	}

	type outcome struct {
		rd  *requestdata.RequestData
		err error
	}
	results := make(chan outcome, len(coaches))
	start := make(chan struct{})
	var wg sync.WaitGroup
	for _, rd := range coaches {
		wg.Add(1)
		go func(rd *requestdata.RequestData) {
			defer wg.Done()
			<-start
			_, err := fx.service.Claim(context.Background(), rd, sub.ID)
			results <- outcome{rd: rd, err: err}
		}(rd)
	}
	close(start)
	wg.Wait()
	close(results)

	var winner *requestdata.RequestData
	losses := 0
	for res := range results {
		if res.err == nil {
			if winner != nil {
				t.Fatal("two coaches both claimed the same submission")
			}
			winner = res.rd
			continue
		}
		if !apierr.Is(res.err, apierr.CodeAlreadyClaimed) {
			t.Fatalf("loser error = %v, want already_claimed", res.err)
		}
		losses++
	}
	if winner == nil {
		t.Fatal("no coach managed to claim")
	}
	if losses != len(coaches)-1 {
		t.Fatalf("losses = %d, want %d", losses, len(coaches)-1)
	}

	final, err := fx.subRepo.GetByID(context.Background(), nil, sub.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if final.Status != types.SubmissionStatusClaimed {
		t.Fatalf("final status = %q, want claimed", final.Status)
	}
	if final.ClaimedBy == nil || *final.ClaimedBy != winner.UserID {
		t.Fatal("claimed_by does not match the winning coach")
	}
	if final.ClaimedByName != winner.DisplayName {
		t.Fatalf("claimed_by_name = %q, want %q", final.ClaimedByName, winner.DisplayName)
	}
}

func TestClaimCrossTeamDenied(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamA := uuid.New()
	teamB := uuid.New()
	sub := awaitingSubmission(teamA)
	fx.subRepo.put(sub)

	outsider := coachRD(teamB, "Outside Coach")
	_, err := fx.service.Claim(context.Background(), outsider, sub.ID)
	if !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("cross-team claim error = %v, want permission_denied", err)
	}

	stored, getErr := fx.subRepo.GetByID(context.Background(), nil, sub.ID)
	if getErr != nil {
		t.Fatalf("GetByID: %v", getErr)
	}
	if stored.ClaimedBy != nil || stored.Status != types.SubmissionStatusAwaitingCoach {
		t.Fatal("cross-team claim mutated the submission")
	}

	// The team's own coach still wins afterwards.
	coach := coachRD(teamA, "Home Coach")
	claimed, err := fx.service.Claim(context.Background(), coach, sub.ID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed.ClaimedBy == nil || *claimed.ClaimedBy != coach.UserID {
		t.Fatal("claim not recorded for the team's coach")
	}
}

func TestClaimErrors(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamID := uuid.New()

	if _, err := fx.service.Claim(context.Background(), athleteRD(teamID), uuid.New()); !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("athlete claim error = %v, want permission_denied", err)
	}
	if _, err := fx.service.Claim(context.Background(), coachRD(teamID, "Coach"), uuid.New()); !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("missing submission claim error = %v, want not_found", err)
	}

	sub := awaitingSubmission(teamID)
	sub.Status = types.SubmissionStatusUploading
	fx.subRepo.put(sub)
	if _, err := fx.service.Claim(context.Background(), coachRD(teamID, "Coach"), sub.ID); !apierr.Is(err, apierr.CodeAlreadyClaimed) {
		t.Fatalf("uploading submission claim error = %v, want already_claimed", err)
	}
}

func TestClaimIdempotentLoser(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamID := uuid.New()
	sub := awaitingSubmission(teamID)
	fx.subRepo.put(sub)

	first := coachRD(teamID, "First Coach")
	if _, err := fx.service.Claim(context.Background(), first, sub.ID); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	// The winner re-pressing the button is still a conflict: claims are not
	// re-entrant, the UI goes through StartReview instead.
	if _, err := fx.service.Claim(context.Background(), first, sub.ID); !apierr.Is(err, apierr.CodeAlreadyClaimed) {
		t.Fatalf("repeat claim error = %v, want already_claimed", err)
	}
}

func TestUploadVideoAttachesAndPromotes(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamID := uuid.New()
	rd := athleteRD(teamID)

	sub, err := fx.service.Create(context.Background(), rd, CreateSubmissionInput{
		SkillName:      "free kick",
		AthleteContext: "Ball keeps sailing over the wall.",
		VideoFileName:  "kick.mov",
		VideoFileSize:  1024,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := fx.service.UploadVideo(context.Background(), rd, sub.ID, "kick.mov", 1024, strings.NewReader("fake bytes"))
	if err != nil {
		t.Fatalf("UploadVideo: %v", err)
	}
	if updated.Status != types.SubmissionStatusAwaitingCoach {
		t.Fatalf("status after upload = %q, want awaiting_coach", updated.Status)
	}
	wantKey := fmt.Sprintf("%s/%s/kick.mov", sub.AthleteUID, sub.ID)
	if updated.VideoDownloadURL != "https://cdn.test/"+wantKey {
		t.Fatalf("download URL = %q", updated.VideoDownloadURL)
	}
	fx.queue.mu.Lock()
	notified := len(fx.queue.changed)
	fx.queue.mu.Unlock()
	if notified == 0 {
		t.Fatal("queue snapshot not refreshed after upload")
	}
}

func TestUploadVideoCancelledKeepsUploading(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamID := uuid.New()
	rd := athleteRD(teamID)

	sub, err := fx.service.Create(context.Background(), rd, CreateSubmissionInput{
		SkillName:      "free kick",
		AthleteContext: "context",
		VideoFileName:  "kick.mp4",
		VideoFileSize:  1024,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	fx.bucket.uploadHook = cancel

	_, err = fx.service.UploadVideo(ctx, rd, sub.ID, "kick.mp4", 1024, strings.NewReader("fake bytes"))
	if !apierr.Is(err, apierr.CodeUploadFailed) {
		t.Fatalf("cancelled upload error = %v, want upload_failed", err)
	}

	stored, err := fx.subRepo.GetByID(context.Background(), nil, sub.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Status != types.SubmissionStatusUploading {
		t.Fatalf("status after cancelled upload = %q, want uploading", stored.Status)
	}
	if stored.VideoDownloadURL != "" {
		t.Fatal("cancelled upload attached a download URL")
	}
	if fx.subRepo.attachCalls != 0 {
		t.Fatalf("attach called %d times after cancellation, want 0", fx.subRepo.attachCalls)
	}
}

func TestUploadVideoOwnerOnly(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamID := uuid.New()
	owner := athleteRD(teamID)

	sub, err := fx.service.Create(context.Background(), owner, CreateSubmissionInput{
		SkillName:      "layup",
		AthleteContext: "context",
		VideoFileName:  "layup.mp4",
		VideoFileSize:  1024,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	other := athleteRD(teamID)
	_, err = fx.service.UploadVideo(context.Background(), other, sub.ID, "layup.mp4", 1024, strings.NewReader("x"))
	if !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("stranger upload error = %v, want permission_denied", err)
	}
}

func TestStartReviewRequiresClaimingCoach(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamID := uuid.New()
	sub := awaitingSubmission(teamID)
	fx.subRepo.put(sub)

	coach := coachRD(teamID, "Coach One")
	rival := coachRD(teamID, "Coach Two")

	if _, err := fx.service.StartReview(context.Background(), coach, sub.ID); !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("start review before claim error = %v, want permission_denied", err)
	}

	if _, err := fx.service.Claim(context.Background(), coach, sub.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if _, err := fx.service.StartReview(context.Background(), rival, sub.ID); !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("rival start review error = %v, want permission_denied", err)
	}

	moved, err := fx.service.StartReview(context.Background(), coach, sub.ID)
	if err != nil {
		t.Fatalf("StartReview: %v", err)
	}
	if moved.Status != types.SubmissionStatusInReview {
		t.Fatalf("status = %q, want in_review", moved.Status)
	}

	// A second StartReview finds the record already in_review.
	if _, err := fx.service.StartReview(context.Background(), coach, sub.ID); !apierr.Is(err, apierr.CodeInvalidStatus) {
		t.Fatalf("repeat start review error = %v, want invalid_status", err)
	}
}

func TestPublishReview(t *testing.T) {
	fx := newSubmissionFixture(t)
	teamID := uuid.New()
	sub := awaitingSubmission(teamID)
	fx.subRepo.put(sub)

	coach := coachRD(teamID, "Coach Dana")
	rival := coachRD(teamID, "Coach Lee")
	input := PublishReviewInput{
		OverallFeedback: "Plant foot opens too early; keep it pointed at the target.",
		NextSteps:       "Ten slow reps against the wall before the next session.",
	}

	if _, err := fx.service.Claim(context.Background(), coach, sub.ID); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	// Publishing straight from claimed is a conflict; review must be started.
	if _, err := fx.service.PublishReview(context.Background(), coach, sub.ID, input); !apierr.Is(err, apierr.CodeInvalidStatus) {
		t.Fatalf("publish from claimed error = %v, want invalid_status", err)
	}

	if _, err := fx.service.StartReview(context.Background(), coach, sub.ID); err != nil {
		t.Fatalf("StartReview: %v", err)
	}

	if _, err := fx.service.PublishReview(context.Background(), rival, sub.ID, input); !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("rival publish error = %v, want permission_denied", err)
	}
	if _, err := fx.service.PublishReview(context.Background(), coach, sub.ID, PublishReviewInput{}); !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("empty feedback error = %v, want validation_failed", err)
	}

	review, err := fx.service.PublishReview(context.Background(), coach, sub.ID, input)
	if err != nil {
		t.Fatalf("PublishReview: %v", err)
	}
	if review.CoachID != coach.UserID || review.SubmissionID != sub.ID {
		t.Fatal("review not stamped with coach and submission")
	}
	if review.OverallFeedback != input.OverallFeedback {
		t.Fatalf("feedback = %q", review.OverallFeedback)
	}

	stored, err := fx.reviews.GetBySubmissionID(context.Background(), nil, sub.ID)
	if err != nil {
		t.Fatalf("review not persisted: %v", err)
	}
	if stored.ID != review.ID {
		t.Fatal("persisted review differs from the returned one")
	}

	final, err := fx.subRepo.GetByID(context.Background(), nil, sub.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if final.Status != types.SubmissionStatusComplete {
		t.Fatalf("status = %q, want complete", final.Status)
	}
	if final.ReviewID == nil || *final.ReviewID != review.ID {
		t.Fatal("review_id back-reference missing")
	}

	// A completed submission cannot be published again.
	if _, err := fx.service.PublishReview(context.Background(), coach, sub.ID, input); !apierr.Is(err, apierr.CodeInvalidStatus) {
		t.Fatalf("republish error = %v, want invalid_status", err)
	}
}

func TestCanViewSubmission(t *testing.T) {
	teamID := uuid.New()
	athlete := athleteRD(teamID)
	coach := coachRD(teamID, "Coach")
	admin := &requestdata.RequestData{UserID: uuid.New(), Role: types.RoleAdmin}

	sub := awaitingSubmission(teamID)
	sub.AthleteUID = athlete.UserID

	if !CanViewSubmission(athlete, sub) {
		t.Fatal("owning athlete denied")
	}
	if !CanViewSubmission(admin, sub) {
		t.Fatal("admin denied")
	}
	if CanViewSubmission(coach, sub) {
		t.Fatal("unrelated coach allowed before claiming")
	}

	owner := coach.UserID
	sub.ClaimedBy = &owner
	sub.Status = types.SubmissionStatusClaimed
	if !CanViewSubmission(coach, sub) {
		t.Fatal("claiming coach denied")
	}
	if CanViewSubmission(nil, sub) {
		t.Fatal("anonymous viewer allowed")
	}
}
