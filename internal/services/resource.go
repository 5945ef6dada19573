package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/logger"
	"github.com/mtnvale/stridecoach-backend/internal/repos"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type ResourceInput struct {
	Title       string   `json:"title" validate:"required"`
	Kind        string   `json:"kind" validate:"required"`
	URL         string   `json:"url" validate:"required,url"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

type ResourceService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, input ResourceInput) (*types.Resource, error)
	List(ctx context.Context, rd *requestdata.RequestData, kind string) ([]*types.Resource, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, input ResourceInput) (*types.Resource, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error
}

type resourceService struct {
	db           *gorm.DB
	log          *logger.Logger
	resourceRepo repos.ResourceRepo
}

func NewResourceService(db *gorm.DB, baseLog *logger.Logger, resourceRepo repos.ResourceRepo) ResourceService {
	return &resourceService{
		db:           db,
		log:          baseLog.With("service", "ResourceService"),
		resourceRepo: resourceRepo,
	}
}

func (s *resourceService) Create(ctx context.Context, rd *requestdata.RequestData, input ResourceInput) (*types.Resource, error) {
	if err := requireStaff(rd); err != nil {
		return nil, err
	}
	if rd.TeamID == uuid.Nil {
		return nil, apierr.PermissionDenied(fmt.Errorf("no team membership"))
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	if !types.ValidResourceKind(input.Kind) {
		return nil, apierr.ValidationFailed(fmt.Errorf("unknown resource kind %q", input.Kind))
	}
	tags, err := marshalTags(input.Tags)
	if err != nil {
		return nil, err
	}
	res := &types.Resource{
		ID:          uuid.New(),
		TeamID:      rd.TeamID,
		Title:       strings.TrimSpace(input.Title),
		Kind:        input.Kind,
		URL:         input.URL,
		Description: input.Description,
		Tags:        tags,
		AddedBy:     rd.UserID,
	}
	if _, err := s.resourceRepo.Create(ctx, nil, res); err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

func (s *resourceService) List(ctx context.Context, rd *requestdata.RequestData, kind string) ([]*types.Resource, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if rd.TeamID == uuid.Nil {
		return nil, apierr.PermissionDenied(fmt.Errorf("no team membership"))
	}
	if kind != "" && !types.ValidResourceKind(kind) {
		return nil, apierr.ValidationFailed(fmt.Errorf("unknown resource kind %q", kind))
	}
	return s.resourceRepo.ListByTeam(ctx, nil, rd.TeamID, kind)
}

func (s *resourceService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, input ResourceInput) (*types.Resource, error) {
	if err := requireStaff(rd); err != nil {
		return nil, err
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	if !types.ValidResourceKind(input.Kind) {
		return nil, apierr.ValidationFailed(fmt.Errorf("unknown resource kind %q", input.Kind))
	}
	res, err := s.requireTeamResource(ctx, rd, id)
	if err != nil {
		return nil, err
	}
	tags, err := marshalTags(input.Tags)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"title":       strings.TrimSpace(input.Title),
		"kind":        input.Kind,
		"url":         input.URL,
		"description": input.Description,
		"tags":        tags,
	}
	if err := s.resourceRepo.UpdateFields(ctx, nil, res.ID, fields); err != nil {
		return nil, err
	}
	return s.resourceRepo.GetByID(ctx, nil, res.ID)
}

func (s *resourceService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	if err := requireStaff(rd); err != nil {
		return err
	}
	res, err := s.requireTeamResource(ctx, rd, id)
	if err != nil {
		return err
	}
	return s.resourceRepo.Delete(ctx, nil, res.ID)
}

func (s *resourceService) requireTeamResource(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) (*types.Resource, error) {
	res, err := s.resourceRepo.GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("resource not found"))
		}
		return nil, err
	}
	if !rd.IsAdmin() && res.TeamID != rd.TeamID {
		return nil, apierr.PermissionDenied(fmt.Errorf("resource belongs to another team"))
	}
	return res, nil
}

func marshalTags(tags []string) (datatypes.JSON, error) {
	if tags == nil {
		tags = []string{}
	}
	raw, err := json.Marshal(tags)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
