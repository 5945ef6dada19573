package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/services"
)

type AnnouncementHandler struct {
	announcementService services.AnnouncementService
}

func NewAnnouncementHandler(announcementService services.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

func (ah *AnnouncementHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var input services.AnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	announcement, err := ah.announcementService.Create(c.Request.Context(), rd, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, announcement)
}

func (ah *AnnouncementHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	announcements, err := ah.announcementService.List(c.Request.Context(), rd)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, announcements)
}

func (ah *AnnouncementHandler) Update(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var input services.AnnouncementInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	announcement, err := ah.announcementService.Update(c.Request.Context(), rd, id, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, announcement)
}

func (ah *AnnouncementHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := ah.announcementService.Delete(c.Request.Context(), rd, id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
