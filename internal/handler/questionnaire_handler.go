package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/quizdeck/quizdeck-backend/internal/model"
	"github.com/quizdeck/quizdeck-backend/internal/response"
	"github.com/quizdeck/quizdeck-backend/internal/service"
	"github.com/quizdeck/quizdeck-backend/internal/validator"
)

type QuestionnaireHandler struct {
	questionnaireService *service.QuestionnaireService
}

func NewQuestionnaireHandler(questionnaireService *service.QuestionnaireService) *QuestionnaireHandler {
	return &QuestionnaireHandler{questionnaireService: questionnaireService}
}

// GetAll godoc
// GET /api/v1/questionnaires
func (h *QuestionnaireHandler) GetAll(c *gin.Context) {
	questionnaires, err := h.questionnaireService.List(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questionnaires": questionnaires})
}

// Create godoc
// POST /api/v1/questionnaires
func (h *QuestionnaireHandler) Create(c *gin.Context) {
	var req model.CreateQuestionnaireRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	q, err := h.questionnaireService.Create(c.Request.Context(), &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"questionnaire": q})
}

// GetByID godoc
// GET /api/v1/questionnaires/:id
func (h *QuestionnaireHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	q, err := h.questionnaireService.Get(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"questionnaire": q})
}

// Delete godoc
// DELETE /api/v1/questionnaires/:id
func (h *QuestionnaireHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionnaireService.Delete(c.Request.Context(), id); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "questionário removido"})
}

// GetSummary godoc
// GET /api/v1/questionnaires/:id/summary
func (h *QuestionnaireHandler) GetSummary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	summary, err := h.questionnaireService.Summarize(c.Request.Context(), id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summary": summary})
}

// ResetResolutions godoc
// POST /api/v1/questionnaires/:id/reset
func (h *QuestionnaireHandler) ResetResolutions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.questionnaireService.ResetResolutions(c.Request.Context(), id); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "resoluções zeradas"})
}
