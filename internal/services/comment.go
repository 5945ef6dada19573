package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/repos"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/sse"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type CreateCommentInput struct {
	Content string `json:"content" validate:"required"`
	// ParentID makes this a reply. Replies to replies are rejected; one
	// level of nesting is all the thread view renders.
	ParentID *uuid.UUID `json:"parent_id"`
	// VideoTimestamp is only set when the author opted in to anchoring the
	// comment at the playhead; it is stored as provided, never derived.
	VideoTimestamp *float64 `json:"video_timestamp"`
}

type CommentService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, submissionID uuid.UUID, input CreateCommentInput) (*types.Comment, error)
	Edit(ctx context.Context, rd *requestdata.RequestData, commentID uuid.UUID, content string) (*types.Comment, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, commentID uuid.UUID) error
	ListThreads(ctx context.Context, rd *requestdata.RequestData, submissionID uuid.UUID) ([]*types.CommentThread, error)
}

type commentService struct {
	db             *gorm.DB
	log            *logger.Logger
	commentRepo    repos.CommentRepo
	submissionRepo repos.SubmissionRepo
	broadcaster    *Broadcaster
}

func NewCommentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	commentRepo repos.CommentRepo,
	submissionRepo repos.SubmissionRepo,
	broadcaster *Broadcaster,
) CommentService {
	return &commentService{
		db:             db,
		log:            baseLog.With("service", "CommentService"),
		commentRepo:    commentRepo,
		submissionRepo: submissionRepo,
		broadcaster:    broadcaster,
	}
}

func (cs *commentService) Create(ctx context.Context, rd *requestdata.RequestData, submissionID uuid.UUID, input CreateCommentInput) (*types.Comment, error) {
	sub, err := cs.requireAccess(ctx, rd, submissionID)
	if err != nil {
		return nil, err
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}

	if input.ParentID != nil {
		parent, err := cs.commentRepo.GetByID(ctx, nil, *input.ParentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apierr.NotFound(fmt.Errorf("parent comment not found"))
			}
			return nil, err
		}
		if parent.SubmissionID != submissionID {
			return nil, apierr.ValidationFailed(fmt.Errorf("parent comment belongs to another submission"))
		}
		if parent.IsReply() {
			return nil, apierr.ValidationFailed(fmt.Errorf("replies cannot be nested further"))
		}
	}

	comment := &types.Comment{
		ID:             uuid.New(),
		SubmissionID:   sub.ID,
		ParentID:       input.ParentID,
		AuthorID:       rd.UserID,
		AuthorName:     rd.DisplayName,
		AuthorRole:     rd.Role,
		Content:        strings.TrimSpace(input.Content),
		VideoTimestamp: input.VideoTimestamp,
	}
	if _, err := cs.commentRepo.Create(ctx, nil, comment); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}
	cs.broadcaster.Broadcast(ctx, sse.Message{
		Channel: sse.SubmissionChannel(sub.ID),
		Event:   sse.EventCommentAdded,
		Data:    comment,
	})
	return comment, nil
}

func (cs *commentService) Edit(ctx context.Context, rd *requestdata.RequestData, commentID uuid.UUID, content string) (*types.Comment, error) {
	comment, err := cs.requireAuthor(ctx, rd, commentID)
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apierr.ValidationFailed(fmt.Errorf("comment content required"))
	}
	if err := cs.commentRepo.UpdateContent(ctx, nil, commentID, content); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("comment not found"))
		}
		return nil, err
	}
	updated, err := cs.commentRepo.GetByID(ctx, nil, commentID)
	if err != nil {
		return nil, err
	}
	cs.broadcaster.Broadcast(ctx, sse.Message{
		Channel: sse.SubmissionChannel(comment.SubmissionID),
		Event:   sse.EventCommentEdited,
		Data:    updated,
	})
	return updated, nil
}

func (cs *commentService) Delete(ctx context.Context, rd *requestdata.RequestData, commentID uuid.UUID) error {
	comment, err := cs.requireAuthor(ctx, rd, commentID)
	if err != nil {
		return err
	}
	if err := cs.commentRepo.DeleteWithReplies(ctx, nil, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound(fmt.Errorf("comment not found"))
		}
		return err
	}
	cs.broadcaster.Broadcast(ctx, sse.Message{
		Channel: sse.SubmissionChannel(comment.SubmissionID),
		Event:   sse.EventCommentDeleted,
		Data:    map[string]any{"comment_id": commentID},
	})
	return nil
}

func (cs *commentService) ListThreads(ctx context.Context, rd *requestdata.RequestData, submissionID uuid.UUID) ([]*types.CommentThread, error) {
	if _, err := cs.requireAccess(ctx, rd, submissionID); err != nil {
		return nil, err
	}
	comments, err := cs.commentRepo.ListBySubmission(ctx, nil, submissionID)
	if err != nil {
		return nil, err
	}
	return GroupThreads(comments), nil
}

func (cs *commentService) requireAccess(ctx context.Context, rd *requestdata.RequestData, submissionID uuid.UUID) (*types.Submission, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	sub, err := cs.submissionRepo.GetByID(ctx, nil, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("submission not found"))
		}
		return nil, err
	}
	if !CanViewSubmission(rd, sub) {
		return nil, apierr.PermissionDenied(fmt.Errorf("no access to this submission"))
	}
	return sub, nil
}

func (cs *commentService) requireAuthor(ctx context.Context, rd *requestdata.RequestData, commentID uuid.UUID) (*types.Comment, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	comment, err := cs.commentRepo.GetByID(ctx, nil, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("comment not found"))
		}
		return nil, err
	}
	if comment.AuthorID != rd.UserID {
		return nil, apierr.PermissionDenied(fmt.Errorf("only the author may change a comment"))
	}
	return comment, nil
}

// GroupThreads folds the flat comment list into top-level threads with their
// direct replies. Input order is preserved (the repo returns chronological
// order); a reply whose parent is gone is shown as its own thread rather
// than dropped.
func GroupThreads(comments []*types.Comment) []*types.CommentThread {
	threads := make([]*types.CommentThread, 0, len(comments))
	byID := make(map[uuid.UUID]*types.CommentThread, len(comments))

	for _, c := range comments {
		if c == nil || c.IsReply() {
			continue
		}
		thread := &types.CommentThread{Comment: c, Replies: []*types.Comment{}}
		threads = append(threads, thread)
		byID[c.ID] = thread
	}
	for _, c := range comments {
		if c == nil || !c.IsReply() {
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, c)
			continue
		}
		threads = append(threads, &types.CommentThread{Comment: c, Replies: []*types.Comment{}})
	}
	return threads
}
