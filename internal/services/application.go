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
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type ApplicationInput struct {
	TeamID          uuid.UUID `json:"team_id" validate:"required"`
	Goals           string    `json:"goals" validate:"required"`
	ExperienceLevel string    `json:"experience_level" validate:"required,oneof=beginner intermediate advanced"`
}

type ApplicationService interface {
	Apply(ctx context.Context, rd *requestdata.RequestData, input ApplicationInput) (*types.CoachingApplication, error)
	ListForTeam(ctx context.Context, rd *requestdata.RequestData, status string) ([]*types.CoachingApplication, error)
	ListMine(ctx context.Context, rd *requestdata.RequestData) ([]*types.CoachingApplication, error)
	Decide(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, accept bool) (*types.CoachingApplication, error)
}

type applicationService struct {
	db              *gorm.DB
	log             *logger.Logger
	applicationRepo repos.ApplicationRepo
	userRepo        repos.UserRepo
}

func NewApplicationService(db *gorm.DB, baseLog *logger.Logger, applicationRepo repos.ApplicationRepo, userRepo repos.UserRepo) ApplicationService {
	return &applicationService{
		db:              db,
		log:             baseLog.With("service", "ApplicationService"),
		applicationRepo: applicationRepo,
		userRepo:        userRepo,
	}
}

func (s *applicationService) Apply(ctx context.Context, rd *requestdata.RequestData, input ApplicationInput) (*types.CoachingApplication, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	app := &types.CoachingApplication{
		ID:              uuid.New(),
		TeamID:          input.TeamID,
		ApplicantID:     rd.UserID,
		ApplicantName:   rd.DisplayName,
		Goals:           strings.TrimSpace(input.Goals),
		ExperienceLevel: input.ExperienceLevel,
		Status:          types.ApplicationStatusPending,
	}
	if _, err := s.applicationRepo.Create(ctx, nil, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	s.log.Info("Coaching application submitted", "applicationID", app.ID, "applicantID", rd.UserID)
	return app, nil
}

func (s *applicationService) ListForTeam(ctx context.Context, rd *requestdata.RequestData, status string) ([]*types.CoachingApplication, error) {
	if err := requireStaff(rd); err != nil {
		return nil, err
	}
	if rd.TeamID == uuid.Nil && !rd.IsAdmin() {
		return nil, apierr.PermissionDenied(fmt.Errorf("no team membership"))
	}
	return s.applicationRepo.ListByTeam(ctx, nil, rd.TeamID, status)
}

func (s *applicationService) ListMine(ctx context.Context, rd *requestdata.RequestData) ([]*types.CoachingApplication, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	return s.applicationRepo.ListByApplicant(ctx, nil, rd.UserID)
}

// Decide accepts or rejects a pending application. Acceptance also places
// the applicant on the team, in the same transaction.
func (s *applicationService) Decide(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, accept bool) (*types.CoachingApplication, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if !rd.IsAdmin() {
		return nil, apierr.PermissionDenied(fmt.Errorf("only admins decide applications"))
	}
	app, err := s.applicationRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("application not found"))
		}
		return nil, err
	}

	status := types.ApplicationStatusRejected
	if accept {
		status = types.ApplicationStatusAccepted
	}
	if err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		if err := s.applicationRepo.Decide(ctx, tx, id, rd.UserID, status); err != nil {
			if errors.Is(err, repos.ErrConditionFailed) {
				return apierr.InvalidStatus(fmt.Errorf("application already decided"))
			}
			return err
		}
		if !accept {
			return nil
		}
		return s.userRepo.UpdateFields(ctx, tx, app.ApplicantID, map[string]interface{}{
			"team_id": app.TeamID,
		})
	}); err != nil {
		return nil, err
	}
	return s.applicationRepo.GetByID(ctx, nil, id)
}
