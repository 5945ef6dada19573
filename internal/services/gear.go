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

type GearInput struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category"`
	URL      string `json:"url" validate:"omitempty,url"`
	Notes    string `json:"notes"`
}

type GearService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, input GearInput) (*types.GearItem, error)
	List(ctx context.Context, rd *requestdata.RequestData) ([]*types.GearItem, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, input GearInput) (*types.GearItem, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error
}

type gearService struct {
	db       *gorm.DB
	log      *logger.Logger
	gearRepo repos.GearRepo
}

func NewGearService(db *gorm.DB, baseLog *logger.Logger, gearRepo repos.GearRepo) GearService {
	return &gearService{
		db:       db,
		log:      baseLog.With("service", "GearService"),
		gearRepo: gearRepo,
	}
}

func (s *gearService) Create(ctx context.Context, rd *requestdata.RequestData, input GearInput) (*types.GearItem, error) {
	if err := requireStaff(rd); err != nil {
		return nil, err
	}
	if rd.TeamID == uuid.Nil {
		return nil, apierr.PermissionDenied(fmt.Errorf("no team membership"))
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	item := &types.GearItem{
		ID:       uuid.New(),
		TeamID:   rd.TeamID,
		Name:     strings.TrimSpace(input.Name),
		Category: strings.TrimSpace(input.Category),
		URL:      input.URL,
		Notes:    input.Notes,
		AddedBy:  rd.UserID,
	}
	if _, err := s.gearRepo.Create(ctx, nil, item); err != nil {
		return nil, fmt.Errorf("failed to create gear item: %w", err)
	}
	return item, nil
}

func (s *gearService) List(ctx context.Context, rd *requestdata.RequestData) ([]*types.GearItem, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if rd.TeamID == uuid.Nil {
		return nil, apierr.PermissionDenied(fmt.Errorf("no team membership"))
	}
	return s.gearRepo.ListByTeam(ctx, nil, rd.TeamID)
}

func (s *gearService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, input GearInput) (*types.GearItem, error) {
	if err := requireStaff(rd); err != nil {
		return nil, err
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	item, err := s.requireTeamItem(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"name":     strings.TrimSpace(input.Name),
		"category": strings.TrimSpace(input.Category),
		"url":      input.URL,
		"notes":    input.Notes,
	}
	if err := s.gearRepo.UpdateFields(ctx, nil, item.ID, fields); err != nil {
		return nil, err
	}
	return s.gearRepo.GetByID(ctx, nil, item.ID)
}

func (s *gearService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	if err := requireStaff(rd); err != nil {
		return err
	}
	item, err := s.requireTeamItem(ctx, rd, id)
	if err != nil {
		return err
	}
	return s.gearRepo.Delete(ctx, nil, item.ID)
}

func (s *gearService) requireTeamItem(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.GearItem, error) {
	item, err := s.gearRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("gear item not found"))
		}
		return nil, err
	}
	if !rd.IsAdmin() && item.TeamID != rd.TeamID {
		return nil, apierr.PermissionDenied(fmt.Errorf("gear item belongs to another team"))
	}
	return item, nil
}
