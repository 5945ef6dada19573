package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/queue"
	"github.com/mtnvale/stridecoach-backend/internal/repos"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/sla"
	"github.com/mtnvale/stridecoach-backend/internal/sse"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

// QueueRow is one submission as the queue renders it: the record plus its
// SLA state and the action the viewing coach is allowed to take.
type QueueRow struct {
	Submission *types.Submission `json:"submission"`
	SLA        sla.Result        `json:"sla"`
	Action     queue.RowAction   `json:"action"`
}

type QueueView struct {
	Items  []QueueRow   `json:"items"`
	Counts queue.Counts `json:"counts"`
}

type QueueService interface {
	View(ctx context.Context, rd *requestdata.RequestData, teamID uuid.UUID, filter queue.Filter, sortBy queue.Sort) (*QueueView, error)
	// TeamQueueChanged pushes a fresh full snapshot to everyone watching the
	// team's queue channel. Always the whole result set, never a diff.
	TeamQueueChanged(ctx context.Context, teamID uuid.UUID)
}

type queueService struct {
	db             *gorm.DB
	log            *logger.Logger
	submissionRepo repos.SubmissionRepo
	hub            *sse.Hub
	broadcaster    *Broadcaster
}

func NewQueueService(
	db *gorm.DB,
	baseLog *logger.Logger,
	submissionRepo repos.SubmissionRepo,
	hub *sse.Hub,
	broadcaster *Broadcaster,
) QueueService {
	return &queueService{
		db:             db,
		log:            baseLog.With("service", "QueueService"),
		submissionRepo: submissionRepo,
		hub:            hub,
		broadcaster:    broadcaster,
	}
}

func (qs *queueService) View(ctx context.Context, rd *requestdata.RequestData, teamID uuid.UUID, filter queue.Filter, sortBy queue.Sort) (*QueueView, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if !rd.IsCoach() && !rd.IsAdmin() {
		return nil, apierr.PermissionDenied(fmt.Errorf("queue is coach-only"))
	}
	if teamID == uuid.Nil {
		return nil, apierr.ValidationFailed(fmt.Errorf("team id required"))
	}
	// Coaches only see their own team's queue; admins may inspect any team.
	if rd.IsCoach() && rd.TeamID != teamID {
		return nil, apierr.PermissionDenied(fmt.Errorf("not a coach of this team"))
	}

	snapshot, err := qs.submissionRepo.ListByTeam(ctx, nil, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team submissions: %w", err)
	}

	now := time.Now()
	visible := make([]*types.Submission, 0, len(snapshot))
	for _, sub := range snapshot {
		// Records still mid-upload never surface in the queue.
		if sub.Status == types.SubmissionStatusUploading {
			continue
		}
		visible = append(visible, sub)
	}

	filtered := queue.Apply(visible, filter, sortBy, rd.UserID)
	items := make([]QueueRow, 0, len(filtered))
	for _, sub := range filtered {
		items = append(items, QueueRow{
			Submission: sub,
			SLA:        sla.EvaluatePtr(sub.SLADeadline, now),
			Action:     queue.ActionFor(sub, rd.UserID),
		})
	}

	return &QueueView{
		Items:  items,
		Counts: queue.CountsFor(visible, rd.UserID, now),
	}, nil
}

func (qs *queueService) TeamQueueChanged(ctx context.Context, teamID uuid.UUID) {
	channel := sse.TeamQueueChannel(teamID)

	snapshot, err := qs.submissionRepo.ListByTeam(ctx, nil, teamID)
	if err != nil {
		qs.log.Warn("failed to refresh queue snapshot", "error", err, "teamID", teamID)
		return
	}
	visible := make([]*types.Submission, 0, len(snapshot))
	for _, sub := range snapshot {
		if sub.Status == types.SubmissionStatusUploading {
			continue
		}
		visible = append(visible, sub)
	}

	qs.broadcaster.Broadcast(ctx, sse.Message{
		Channel: channel,
		Event:   sse.EventQueueSnapshot,
		Data:    visible,
	})
}
