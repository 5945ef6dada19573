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
)

// RealtimeService decides who may subscribe to which SSE channel. Channel
// names are the same strings the broadcasters publish to.
type RealtimeService interface {
	Authorize(ctx context.Context, rd *requestdata.RequestData, channel string) error
}

type realtimeService struct {
	log            *logger.Logger
	submissionRepo repos.SubmissionRepo
}

func NewRealtimeService(baseLog *logger.Logger, submissionRepo repos.SubmissionRepo) RealtimeService {
	return &realtimeService{
		log:            baseLog.With("service", "RealtimeService"),
		submissionRepo: submissionRepo,
	}
}

func (rs *realtimeService) Authorize(ctx context.Context, rd *requestdata.RequestData, channel string) error {
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if channel == sse.AnnouncementsChannel {
		return nil
	}

	switch {
	case strings.HasPrefix(channel, "team:") && strings.HasSuffix(channel, ":queue"):
		raw := strings.TrimSuffix(strings.TrimPrefix(channel, "team:"), ":queue")
		teamID, err := uuid.Parse(raw)
		if err != nil {
			return apierr.ValidationFailed(fmt.Errorf("malformed channel %q", channel))
		}
		if rd.IsAdmin() {
			return nil
		}
		if !rd.IsCoach() || rd.TeamID != teamID {
			return apierr.PermissionDenied(fmt.Errorf("queue channel is for the team's coaches"))
		}
		return nil

	case strings.HasPrefix(channel, "submission:"):
		id, err := uuid.Parse(strings.TrimPrefix(channel, "submission:"))
		if err != nil {
			return apierr.ValidationFailed(fmt.Errorf("malformed channel %q", channel))
		}
		sub, err := rs.submissionRepo.GetByID(ctx, nil, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apierr.NotFound(fmt.Errorf("submission not found"))
			}
			return err
		}
		// Coaches watch open submissions from the queue before claiming;
		// everyone else needs detail-page access.
		if rd.IsCoach() && rd.TeamID == sub.TeamID {
			return nil
		}
		if !CanViewSubmission(rd, sub) {
			return apierr.PermissionDenied(fmt.Errorf("no access to this submission"))
		}
		return nil
	}

	return apierr.ValidationFailed(fmt.Errorf("unknown channel %q", channel))
}
