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

type PracticeHandler struct {
	practiceService *service.PracticeService
}

func NewPracticeHandler(practiceService *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{practiceService: practiceService}
}

// GetState godoc
// GET /api/v1/questionnaires/:id/practice
func (h *PracticeHandler) GetState(c *gin.Context) {
	questionnaireID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	view, err := h.practiceService.State(c.Request.Context(), questionnaireID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"practice": view})
}

// Advance godoc
// POST /api/v1/questionnaires/:id/practice/advance
func (h *PracticeHandler) Advance(c *gin.Context) {
	questionnaireID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.AdvanceRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	view, err := h.practiceService.Advance(c.Request.Context(), questionnaireID, req.Direction)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"practice": view})
}

// Answer godoc
// POST /api/v1/questionnaires/:id/practice/answer
func (h *PracticeHandler) Answer(c *gin.Context) {
	questionnaireID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.SubmitAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.practiceService.Answer(c.Request.Context(), questionnaireID, req.Value)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"result": result})
}

// Reset godoc
// DELETE /api/v1/questionnaires/:id/practice
func (h *PracticeHandler) Reset(c *gin.Context) {
	questionnaireID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.practiceService.Reset(c.Request.Context(), questionnaireID); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "sessão de prática reiniciada"})
}
