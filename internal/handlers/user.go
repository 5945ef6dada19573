package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	user, err := uh.userService.GetMe(c.Request.Context(), rd)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (uh *UserHandler) ListTeamMembers(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	members, err := uh.userService.ListTeamMembers(c.Request.Context(), rd, c.Query("role"))
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, members)
}
