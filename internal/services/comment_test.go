package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type commentFixture struct {
	service  CommentService
	comments *fakeCommentRepo
	subRepo  *fakeSubmissionRepo
}

func newCommentFixture(t *testing.T) *commentFixture {
	t.Helper()
	comments := newFakeCommentRepo()
	subRepo := newFakeSubmissionRepo()
	svc := NewCommentService(nil, testLogger(t), comments, subRepo, testBroadcaster(t))
	return &commentFixture{service: svc, comments: comments, subRepo: subRepo}
}

func (fx *commentFixture) seedSubmission(rd *requestdata.RequestData) *types.Submission {
	sub := awaitingSubmission(rd.TeamID)
	sub.AthleteUID = rd.UserID
	fx.subRepo.put(sub)
	return sub
}

func TestCommentCreateAndReply(t *testing.T) {
	fx := newCommentFixture(t)
	teamID := uuid.New()
	athlete := athleteRD(teamID)
	sub := fx.seedSubmission(athlete)

	ts := 12.5
	top, err := fx.service.Create(context.Background(), athlete, sub.ID, CreateCommentInput{
		Content:        "Watch my elbow at contact here.",
		VideoTimestamp: &ts,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if top.IsReply() {
		t.Fatal("top-level comment reported as reply")
	}
	if top.VideoTimestamp == nil || *top.VideoTimestamp != ts {
		t.Fatal("video timestamp not stored as provided")
	}
	if top.AuthorID != athlete.UserID || top.AuthorRole != types.RoleAthlete {
		t.Fatal("comment not stamped with author identity")
	}

	reply, err := fx.service.Create(context.Background(), athlete, sub.ID, CreateCommentInput{
		Content:  "Adding a second angle below.",
		ParentID: &top.ID,
	})
	if err != nil {
		t.Fatalf("Create reply: %v", err)
	}
	if !reply.IsReply() {
		t.Fatal("reply not marked as reply")
	}

	// Replies cannot nest.
	_, err = fx.service.Create(context.Background(), athlete, sub.ID, CreateCommentInput{
		Content:  "nested",
		ParentID: &reply.ID,
	})
	if !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("nested reply error = %v, want validation_failed", err)
	}

	// Parent must exist.
	missing := uuid.New()
	_, err = fx.service.Create(context.Background(), athlete, sub.ID, CreateCommentInput{
		Content:  "orphan",
		ParentID: &missing,
	})
	if !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("missing parent error = %v, want not_found", err)
	}
}

func TestCommentParentMustMatchSubmission(t *testing.T) {
	fx := newCommentFixture(t)
	teamID := uuid.New()
	athlete := athleteRD(teamID)
	subA := fx.seedSubmission(athlete)
	subB := fx.seedSubmission(athlete)

	parent, err := fx.service.Create(context.Background(), athlete, subA.ID, CreateCommentInput{Content: "on A"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err = fx.service.Create(context.Background(), athlete, subB.ID, CreateCommentInput{
		Content:  "reply on B to a comment on A",
		ParentID: &parent.ID,
	})
	if !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("cross-submission reply error = %v, want validation_failed", err)
	}
}

func TestCommentAccessControl(t *testing.T) {
	fx := newCommentFixture(t)
	teamID := uuid.New()
	athlete := athleteRD(teamID)
	sub := fx.seedSubmission(athlete)

	stranger := coachRD(teamID, "Unassigned Coach")
	_, err := fx.service.Create(context.Background(), stranger, sub.ID, CreateCommentInput{Content: "hi"})
	if !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("stranger comment error = %v, want permission_denied", err)
	}

	// The claiming coach can comment.
	owner := stranger.UserID
	sub.ClaimedBy = &owner
	sub.Status = types.SubmissionStatusClaimed
	fx.subRepo.put(sub)
	if _, err := fx.service.Create(context.Background(), stranger, sub.ID, CreateCommentInput{Content: "now I can"}); err != nil {
		t.Fatalf("claiming coach comment: %v", err)
	}
}

func TestCommentEditAuthorOnly(t *testing.T) {
	fx := newCommentFixture(t)
	teamID := uuid.New()
	athlete := athleteRD(teamID)
	sub := fx.seedSubmission(athlete)

	comment, err := fx.service.Create(context.Background(), athlete, sub.ID, CreateCommentInput{Content: "original"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	admin := &requestdata.RequestData{UserID: uuid.New(), Role: types.RoleAdmin}
	if _, err := fx.service.Edit(context.Background(), admin, comment.ID, "edited by admin"); !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("non-author edit error = %v, want permission_denied", err)
	}

	updated, err := fx.service.Edit(context.Background(), athlete, comment.ID, "  fixed wording  ")
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if updated.Content != "fixed wording" {
		t.Fatalf("content = %q, want trimmed edit", updated.Content)
	}
	if !updated.Edited {
		t.Fatal("edited flag not set")
	}

	if _, err := fx.service.Edit(context.Background(), athlete, comment.ID, "   "); !apierr.Is(err, apierr.CodeValidationFailed) {
		t.Fatalf("blank edit error = %v, want validation_failed", err)
	}
}

func TestCommentDeleteCascadesToReplies(t *testing.T) {
	fx := newCommentFixture(t)
	teamID := uuid.New()
	athlete := athleteRD(teamID)
	sub := fx.seedSubmission(athlete)

	parent, err := fx.service.Create(context.Background(), athlete, sub.ID, CreateCommentInput{Content: "thread root"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := fx.service.Create(context.Background(), athlete, sub.ID, CreateCommentInput{
			Content:  "reply",
			ParentID: &parent.ID,
		}); err != nil {
			t.Fatalf("Create reply: %v", err)
		}
	}
	other, err := fx.service.Create(context.Background(), athlete, sub.ID, CreateCommentInput{Content: "separate thread"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	rival := athleteRD(teamID)
	if err := fx.service.Delete(context.Background(), rival, parent.ID); !apierr.Is(err, apierr.CodePermissionDenied) {
		t.Fatalf("non-author delete error = %v, want permission_denied", err)
	}

	if err := fx.service.Delete(context.Background(), athlete, parent.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := fx.comments.count(); got != 1 {
		t.Fatalf("comments left after cascade = %d, want 1", got)
	}
	if _, err := fx.comments.GetByID(context.Background(), nil, other.ID); err != nil {
		t.Fatal("unrelated comment removed by cascade")
	}
	if err := fx.service.Delete(context.Background(), athlete, parent.ID); !apierr.Is(err, apierr.CodeNotFound) {
		t.Fatalf("double delete error = %v, want not_found", err)
	}
}

func TestGroupThreads(t *testing.T) {
	subID := uuid.New()
	mk := func(parent *uuid.UUID) *types.Comment {
		return &types.Comment{ID: uuid.New(), SubmissionID: subID, ParentID: parent, Content: "c"}
	}

	a := mk(nil)
	b := mk(nil)
	ra1 := mk(&a.ID)
	ra2 := mk(&a.ID)
	rb := mk(&b.ID)

	gone := uuid.New()
	orphan := mk(&gone)

	threads := GroupThreads([]*types.Comment{a, ra1, b, ra2, rb, orphan})
	if len(threads) != 3 {
		t.Fatalf("threads = %d, want 3", len(threads))
	}
	if threads[0].Comment.ID != a.ID || threads[1].Comment.ID != b.ID {
		t.Fatal("top-level order not preserved")
	}
	if len(threads[0].Replies) != 2 || threads[0].Replies[0].ID != ra1.ID || threads[0].Replies[1].ID != ra2.ID {
		t.Fatal("replies not grouped under their parent in order")
	}
	if len(threads[1].Replies) != 1 || threads[1].Replies[0].ID != rb.ID {
		t.Fatal("second thread replies wrong")
	}
	if threads[2].Comment.ID != orphan.ID || len(threads[2].Replies) != 0 {
		t.Fatal("orphan reply should surface as its own thread")
	}

	if got := GroupThreads(nil); len(got) != 0 {
		t.Fatalf("GroupThreads(nil) = %d threads, want 0", len(got))
	}
}
