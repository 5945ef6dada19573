package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mtnvale/stridecoach-backend/internal/apierr"
	"github.com/mtnvale/stridecoach-backend/internal/requestdata"
	"github.com/mtnvale/stridecoach-backend/internal/services"
)

type SubmissionHandler struct {
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

func (sh *SubmissionHandler) Create(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	var input services.CreateSubmissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	sub, err := sh.submissionService.Create(c.Request.Context(), rd, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, sub)
}

// UploadVideo receives the multipart upload for a submission still in the
// uploading state and promotes it once the file is stored.
func (sh *SubmissionHandler) UploadVideo(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	fileHeader, err := c.FormFile("video")
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, fmt.Errorf("missing video file: %w", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	defer file.Close()

	sub, err := sh.submissionService.UploadVideo(c.Request.Context(), rd, id, fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sub)
}

func (sh *SubmissionHandler) AttachMedia(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var input services.AttachMediaInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	sub, err := sh.submissionService.AttachMedia(c.Request.Context(), rd, id, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sub)
}

func (sh *SubmissionHandler) Get(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	detail, err := sh.submissionService.Get(c.Request.Context(), rd, id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, detail)
}

func (sh *SubmissionHandler) ListMine(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	subs, err := sh.submissionService.ListMine(c.Request.Context(), rd)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, subs)
}

func (sh *SubmissionHandler) Claim(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	sub, err := sh.submissionService.Claim(c.Request.Context(), rd, id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sub)
}

func (sh *SubmissionHandler) StartReview(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	sub, err := sh.submissionService.StartReview(c.Request.Context(), rd, id)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, sub)
}

func (sh *SubmissionHandler) PublishReview(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	id, err := parseIDParam(c)
	if err != nil {
		return
	}
	var input services.PublishReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, err)
		return
	}
	review, err := sh.submissionService.PublishReview(c.Request.Context(), rd, id, input)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondCreated(c, review)
}

// parseIDParam pulls the :id path segment. On a parse failure it writes the
// error response itself; callers just return.
func parseIDParam(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, apierr.CodeValidationFailed, fmt.Errorf("malformed id %q", c.Param("id")))
		return uuid.Nil, err
	}
	return id, nil
}
