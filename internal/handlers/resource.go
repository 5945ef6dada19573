package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/services"
)

type ResourceHandler struct {
	resourceService services.ResourceService
}

func NewResourceHandler(resourceService services.ResourceService) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService}
}

func (rh *ResourceHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var input services.ResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	resource, err := rh.resourceService.Create(c.Request.Context(), rd, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, resource)
}

func (rh *ResourceHandler) List(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	resources, err := rh.resourceService.List(c.Request.Context(), rd, c.Query("kind"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, resources)
}

func (rh *ResourceHandler) Update(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var input services.ResourceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	resource, err := rh.resourceService.Update(c.Request.Context(), rd, id, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, resource)
}

func (rh *ResourceHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := rh.resourceService.Delete(c.Request.Context(), rd, id); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
