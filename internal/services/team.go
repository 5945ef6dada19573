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

type TeamInput struct {
	Name  string `json:"name" validate:"required"`
	Sport string `json:"sport" validate:"required"`
}

type TeamService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, input TeamInput) (*types.Team, error)
	Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Team, error)
	List(ctx context.Context, rd *requestdata.RequestData) ([]*types.Team, error)
}

type teamService struct {
	db       *gorm.DB
	log      *logger.Logger
	teamRepo repos.TeamRepo
}

func NewTeamService(db *gorm.DB, baseLog *logger.Logger, teamRepo repos.TeamRepo) TeamService {
	return &teamService{
		db:       db,
		log:      baseLog.With("service", "TeamService"),
		teamRepo: teamRepo,
	}
}

func (ts *teamService) Create(ctx context.Context, rd *requestdata.RequestData, input TeamInput) (*types.Team, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if !rd.IsAdmin() {
		return nil, apierr.PermissionDenied(fmt.Errorf("only admins create teams"))
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	team := &types.Team{
		ID:    uuid.New(),
		Name:  strings.TrimSpace(input.Name),
		Sport: strings.TrimSpace(input.Sport),
	}
	if _, err := ts.teamRepo.Create(ctx, nil, team); err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	ts.log.Info("Team created", "teamID", team.ID, "name", team.Name)
	return team, nil
}

func (ts *teamService) Get(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Team, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	team, err := ts.teamRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("team not found"))
		}
		return nil, err
	}
	return team, nil
}

func (ts *teamService) List(ctx context.Context, rd *requestdata.RequestData) ([]*types.Team, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	return ts.teamRepo.List(ctx, nil)
}
