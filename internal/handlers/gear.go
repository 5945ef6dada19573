package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/services"
)

type GearHandler struct {
	gearService services.GearService
}

func NewGearHandler(gearService services.GearService) *GearHandler {
	return &GearHandler{gearService: gearService}
}

func (gh *GearHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var input services.GearInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	item, err := gh.gearService.Create(c.Request.Context(), rd, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, item)
}

func (gh *GearHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	items, err := gh.gearService.List(c.Request.Context(), rd)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, items)
}

func (gh *GearHandler) Update(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var input services.GearInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	item, err := gh.gearService.Update(c.Request.Context(), rd, id, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, item)
}

func (gh *GearHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := gh.gearService.Delete(c.Request.Context(), rd, id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
