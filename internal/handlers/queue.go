package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/queue"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/services"
)

type QueueHandler struct {
	queueService services.QueueService
}

func NewQueueHandler(queueService services.QueueService) *QueueHandler {
	return &QueueHandler{queueService: queueService}
}

// View serves the coach queue. team_id defaults to the caller's own team;
// admins may pass any team. Unknown filter or sort values fall back to the
// defaults rather than erroring.
func (qh *QueueHandler) View(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	teamID := uuid.Nil
	if raw := c.Query("team_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, fmt.Errorf("malformed team_id %q", raw))
			return
		}
		teamID = parsed
	} else if rd != nil {
		teamID = rd.TeamID
	}

	view, err := qh.queueService.View(
		c.Request.Context(),
		rd,
		teamID,
		queue.ParseFilter(c.Query("filter")),
		queue.ParseSort(c.Query("sort")),
	)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, view)
}
