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
	"github.com/mtnvale/stridecoach-backend/internal/sse"
	"github.com/mtnvale/stridecoach-backend/internal/types"
)

type AnnouncementInput struct {
	Title         string   `json:"title" validate:"required"`
	Body          string   `json:"body" validate:"required"`
	AudienceRoles []string `json:"audience_roles"`
	Pinned        bool     `json:"pinned"`
}

type AnnouncementService interface {
	Create(ctx context.Context, rd *requestdata.RequestData, input AnnouncementInput) (*types.Announcement, error)
	List(ctx context.Context, rd *requestdata.RequestData) ([]*types.Announcement, error)
	Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, input AnnouncementInput) (*types.Announcement, error)
	Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error
}

type announcementService struct {
	db               *gorm.DB
	log              *logger.Logger
	announcementRepo repos.AnnouncementRepo
	broadcaster      *Broadcaster
}

func NewAnnouncementService(db *gorm.DB, baseLog *logger.Logger, announcementRepo repos.AnnouncementRepo, broadcaster *Broadcaster) AnnouncementService {
	return &announcementService{
		db:               db,
		log:              baseLog.With("service", "AnnouncementService"),
		announcementRepo: announcementRepo,
		broadcaster:      broadcaster,
	}
}

func (s *announcementService) Create(ctx context.Context, rd *requestdata.RequestData, input AnnouncementInput) (*types.Announcement, error) {
	if err := requireStaff(rd); err != nil {
		return nil, err
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	roles, err := marshalRoles(input.AudienceRoles)
	if err != nil {
		return nil, err
	}
	a := &types.Announcement{
		ID:            uuid.New(),
		Title:         strings.TrimSpace(input.Title),
		Body:          input.Body,
		AudienceRoles: roles,
		AuthorID:      rd.UserID,
		AuthorName:    rd.DisplayName,
		Pinned:        input.Pinned,
	}
	if _, err := s.announcementRepo.Create(ctx, nil, a); err != nil {
		return nil, fmt.Errorf("failed to create announcement: %w", err)
	}
	s.broadcaster.Broadcast(ctx, sse.Message{
		Channel: sse.AnnouncementsChannel,
		Event:   sse.EventAnnouncementPublished,
		Data:    a,
	})
	return a, nil
}

// List returns announcements whose audience includes the caller's role. An
// empty audience means everyone.
func (s *announcementService) List(ctx context.Context, rd *requestdata.RequestData) ([]*types.Announcement, error) {
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	all, err := s.announcementRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]*types.Announcement, 0, len(all))
	for _, a := range all {
		if audienceIncludes(a.AudienceRoles, rd.Role) || rd.IsAdmin() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *announcementService) Update(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID, input AnnouncementInput) (*types.Announcement, error) {
	if err := requireStaff(rd); err != nil {
		return nil, err
	}
	if err := checkInput(input); err != nil {
		return nil, err
	}
	roles, err := marshalRoles(input.AudienceRoles)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"title":          strings.TrimSpace(input.Title),
		"body":           input.Body,
		"audience_roles": roles,
		"pinned":         input.Pinned,
	}
	if err := s.announcementRepo.UpdateFields(ctx, nil, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound(fmt.Errorf("announcement not found"))
		}
		return nil, err
	}
	return s.announcementRepo.GetByID(ctx, nil, id)
}

func (s *announcementService) Delete(ctx context.Context, rd *requestdata.RequestData, id uuid.UUID) error {
	if err := requireStaff(rd); err != nil {
		return err
	}
	if err := s.announcementRepo.Delete(ctx, nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apierr.NotFound(fmt.Errorf("announcement not found"))
		}
		return err
	}
	return nil
}

func requireStaff(rd *requestdata.RequestData) error {
	if rd == nil || rd.UserID == uuid.Nil {
		return apierr.Unauthorized(fmt.Errorf("not logged in"))
	}
	if !rd.IsCoach() && !rd.IsAdmin() {
		return apierr.PermissionDenied(fmt.Errorf("coach or admin role required"))
	}
	return nil
}

func marshalRoles(roles []string) (datatypes.JSON, error) {
	for _, r := range roles {
		if !types.ValidRole(r) {
			return nil, apierr.ValidationFailed(fmt.Errorf("unknown audience role %q", r))
		}
	}
	if roles == nil {
		roles = []string{}
	}
	raw, err := json.Marshal(roles)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func audienceIncludes(raw datatypes.JSON, role string) bool {
	if len(raw) == 0 {
		return true
	}
	var roles []string
	if err := json.Unmarshal(raw, &roles); err != nil {
		return true
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
