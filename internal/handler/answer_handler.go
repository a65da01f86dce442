package handler

import (
	"net/http"

	"github.com/examgate/examgate-backend/internal/middleware"
	"github.com/examgate/examgate-backend/internal/model"
	"github.com/examgate/examgate-backend/internal/response"
	"github.com/examgate/examgate-backend/internal/service"
	"github.com/examgate/examgate-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AnswerHandler handles answer capture and question delivery endpoints.
type AnswerHandler struct {
	answerService   *service.AnswerService
	behaviorService *service.BehaviorService
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(answerService *service.AnswerService, behaviorService *service.BehaviorService) *AnswerHandler {
	return &AnswerHandler{
		answerService:   answerService,
		behaviorService: behaviorService,
	}
}

// SaveAnswer godoc
// POST /api/v1/exam/answer
// Creates or overwrites the answer for a question. Retries converge on
// the same row.
func (h *AnswerHandler) SaveAnswer(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.SaveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.answerService.SaveAnswer(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failProgress(c, err)
		return
	}

	h.behaviorService.RecordAsync(claims.UserID, c.ClientIP(), "save_answer")

	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// Mark godoc
// POST /api/v1/exam/mark
// Toggles the marked-for-review flag on a question's answer.
func (h *AnswerHandler) Mark(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.MarkRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	answer, err := h.answerService.Mark(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failProgress(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"answer": answer})
}

// Question godoc
// POST /api/v1/exam/question
// Serves one question by ordinal within a running section, with the
// answer key redacted and the examinee's current answer attached.
func (h *AnswerHandler) Question(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.QuestionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.answerService.Question(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failProgress(c, err)
		return
	}

	response.Success(c, http.StatusOK, view)
}

// SectionQuestions godoc
// POST /api/v1/exam/section/questions
// Lists every question of a running section, answer key redacted.
func (h *AnswerHandler) SectionQuestions(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.SectionQuestionsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	views, err := h.answerService.SectionQuestions(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		failProgress(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"questions": views})
}

// Behavior godoc
// POST /api/v1/exam/behavior
// Records a client-reported behavior event (tab switch, fullscreen exit).
// Always succeeds from the client's point of view.
func (h *AnswerHandler) Behavior(c *gin.Context) {
	claims := middleware.GetClaims(c)

	var req model.BehaviorRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	h.behaviorService.RecordAsync(claims.UserID, c.ClientIP(), req.BehaviorType)

	response.Success(c, http.StatusOK, gin.H{})
}
