package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/examgate/examgate-backend/internal/middleware"
	"github.com/examgate/examgate-backend/internal/model"
	"github.com/examgate/examgate-backend/internal/response"
	"github.com/examgate/examgate-backend/internal/service"
	"github.com/examgate/examgate-backend/internal/timing"
	"github.com/examgate/examgate-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// ExamHandler handles exam and section progression endpoints.
type ExamHandler struct {
	progressService *service.ProgressService
	behaviorService *service.BehaviorService
}

// NewExamHandler creates a new ExamHandler.
func NewExamHandler(progressService *service.ProgressService, behaviorService *service.BehaviorService) *ExamHandler {
	return &ExamHandler{
		progressService: progressService,
		behaviorService: behaviorService,
	}
}

// Enter godoc
// POST /api/v1/exam/enter
// Resolves the examinee's unclosed exam and serves the overview, applying
// any overdue section timeout on the way.
func (h *ExamHandler) Enter(c *gin.Context) {
	claims := middleware.GetClaims(c)

	result, err := h.progressService.Enter(c.Request.Context(), claims.UserID)
	if err != nil {
		failProgress(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// EnterSection godoc
// POST /api/v1/exam/section
// Serves the lobby for the exam's current section, creating its runtime
// record on first entry.
func (h *ExamHandler) EnterSection(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.EnterSectionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.progressService.EnterSection(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failProgress(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// StartSection godoc
// POST /api/v1/exam/section/start
// Admits the examinee into a section, starting its countdown. Idempotent:
// retries return the original start instant.
func (h *ExamHandler) StartSection(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.StartSectionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.progressService.StartSection(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failProgress(c, err)
		return
	}

	h.behaviorService.RecordAsync(claims.UserID, c.ClientIP(), "start_section")

	response.Success(c, http.StatusOK, result)
}

// SubmitSection godoc
// POST /api/v1/exam/section/submit
// Closes a section on the examinee's request and advances the exam.
func (h *ExamHandler) SubmitSection(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.SubmitSectionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.progressService.SubmitSection(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failProgress(c, err)
		return
	}

	h.behaviorService.RecordAsync(claims.UserID, c.ClientIP(), "submit_section")

	response.Success(c, http.StatusOK, result)
}

// SubmitExam godoc
// POST /api/v1/exam/submit
// Closes the whole exam, optionally closing the current section first.
func (h *ExamHandler) SubmitExam(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.SubmitExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.progressService.SubmitExam(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failProgress(c, err)
		return
	}

	h.behaviorService.RecordAsync(claims.UserID, c.ClientIP(), "submit_exam")

	response.Success(c, http.StatusOK, gin.H{"exam": exam})
}

// failProgress maps domain errors from the progression and answer
// services onto the API error envelope.
func failProgress(c *gin.Context, err error) {
	var notOpen *timing.NotOpenError

	switch {
	case errors.Is(err, service.ErrExamNotFound),
		errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, service.ErrAnswerNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrExamOver):
		response.Fail(c, http.StatusConflict, response.ErrExamOver)
	case errors.Is(err, service.ErrSectionOver):
		response.Fail(c, http.StatusConflict, response.ErrSectionOver)
	case errors.Is(err, service.ErrNotInExam):
		response.Fail(c, http.StatusConflict, response.ErrNotInExam)
	case errors.As(err, &notOpen):
		response.FailWithFields(c, http.StatusConflict, response.ErrWindowNotOpen, map[string]string{
			"wait_seconds": strconv.FormatInt(int64(notOpen.Wait.Seconds()), 10),
		})
	case errors.Is(err, timing.ErrWindowExpired):
		response.Fail(c, http.StatusGone, response.ErrWindowExpired)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
