package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/repos"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type UserService interface {
	GetMe(ctx context.Context, rd *requestdata.RequestData) (*types.User, error)
	ListTeamMembers(ctx context.Context, rd *requestdata.RequestData, role string) ([]*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, baseLog *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      baseLog.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) GetMe(ctx context.Context, rd *requestdata.RequestData) (*types.User, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	user, err := us.userRepo.GetByID(ctx, nil, rd.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("user not found"))
		}
		return nil, err
	}
	return user, nil
}

func (us *userService) ListTeamMembers(ctx context.Context, rd *requestdata.RequestData, role string) ([]*types.User, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if rd.TeamID == uuid.Nil {
		return nil, apierr.PermissionDenied(fmt.Errorf("no team membership"))
	}
	if role != "" && !types.ValidRole(role) {
		return nil, apierr.ValidationFailed(fmt.Errorf("unknown role %q", role))
	}
	return us.userRepo.ListByTeam(ctx, nil, rd.TeamID, role)
}
