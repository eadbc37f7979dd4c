package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quizdeck/quizdeck-backend/internal/response"
	"github.com/quizdeck/quizdeck-backend/internal/service"
)

// failFromError maps service-layer domain errors onto the response error
// catalog. Anything unmapped is an internal error.
func failFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, service.ErrNameTaken):
		response.Fail(c, http.StatusConflict, response.ErrConflict)
	case errors.Is(err, service.ErrReservedGroup):
		response.Fail(c, http.StatusForbidden, response.ErrActionForbidden)
	case errors.Is(err, service.ErrUnresolvableAnswerKey):
		response.Fail(c, http.StatusBadRequest, response.ErrBadAnswerKey)
	case errors.Is(err, service.ErrInsufficientOptions), errors.Is(err, service.ErrTooManyOptions):
		response.Fail(c, http.StatusBadRequest, response.ErrBadOptions)
	case errors.Is(err, service.ErrPoolExhausted):
		response.Fail(c, http.StatusConflict, response.ErrPoolExhausted)
	case errors.Is(err, service.ErrExamFinished):
		response.Fail(c, http.StatusConflict, response.ErrExamFinished)
	case errors.Is(err, service.ErrNoQuestions):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
	case errors.Is(err, service.ErrEmptyImport):
		response.Fail(c, http.StatusBadRequest, response.ErrEmptyImport)
	case errors.Is(err, service.ErrMissingColumns):
		response.Fail(c, http.StatusBadRequest, response.ErrMissingColumns)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
