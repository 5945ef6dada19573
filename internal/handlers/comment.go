package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/services"
)

type CommentHandler struct {
	commentService services.CommentService
}

func NewCommentHandler(commentService services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

func (ch *CommentHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	submissionID, err := parseIDParam(c)
	if err != nil {
		return
	}
	var input services.CreateCommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	comment, err := ch.commentService.Create(c.Request.Context(), rd, submissionID, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, comment)
}

func (ch *CommentHandler) ListThreads(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	submissionID, err := parseIDParam(c)
	if err != nil {
		return
	}
	threads, err := ch.commentService.ListThreads(c.Request.Context(), rd, submissionID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, threads)
}

func (ch *CommentHandler) Edit(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	commentID, err := parseIDParam(c)
	if err != nil {
		return
	}
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	comment, err := ch.commentService.Edit(c.Request.Context(), rd, commentID, req.Content)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, comment)
}

func (ch *CommentHandler) Delete(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	commentID, err := parseIDParam(c)
	if err != nil {
		return
	}
	if err := ch.commentService.Delete(c.Request.Context(), rd, commentID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true})
}
