package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/services"
)

type ApplicationHandler struct {
	applicationService services.ApplicationService
}

func NewApplicationHandler(applicationService services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

func (ah *ApplicationHandler) Apply(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var input services.ApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	app, err := ah.applicationService.Apply(c.Request.Context(), rd, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, app)
}

func (ah *ApplicationHandler) ListForTeam(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	apps, err := ah.applicationService.ListForTeam(c.Request.Context(), rd, c.Query("status"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, apps)
}

func (ah *ApplicationHandler) ListMine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	apps, err := ah.applicationService.ListMine(c.Request.Context(), rd)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, apps)
}

func (ah *ApplicationHandler) Decide(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var req struct {
		Accept bool `json:"accept"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	app, err := ah.applicationService.Decide(c.Request.Context(), rd, id, req.Accept)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, app)
}
