package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/voyagecm/policy-api/services"
	"github.com/voyagecm/policy-api/utils"
	"go.uber.org/zap"
)

func TestHandleServiceError(t *testing.T) {
	t.Run("not found answers 404", func(t *testing.T) {
		rec := httptest.NewRecorder()

		HandleServiceError(rec, services.ErrBusNotFound, zap.NewNop())

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "bus not found")
	})

	t.Run("validation answers 400 with details", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := services.NewDomainError(services.ErrorTypeValidation, "invalid limit", nil).
			WithDetail("limit", "zero")

		HandleServiceError(rec, err, zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid limit")
		assert.Contains(t, rec.Body.String(), "zero")
	})

	t.Run("conflict answers 409", func(t *testing.T) {
		rec := httptest.NewRecorder()

		HandleServiceError(rec, services.ErrDuplicateEmail, zap.NewNop())

		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, rec.Body.String(), "email already exists")
	})

	t.Run("internal answers 500 with generic message", func(t *testing.T) {
		rec := httptest.NewRecorder()
		err := services.WrapInternal("storage operation failed", errors.New("connection reset"))

		HandleServiceError(rec, err, zap.NewNop())

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "An internal error occurred")
		assert.NotContains(t, rec.Body.String(), "connection reset")
	})

	t.Run("plain error answers 500", func(t *testing.T) {
		rec := httptest.NewRecorder()

		HandleServiceError(rec, errors.New("db down"), zap.NewNop())

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "An unexpected error occurred")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		rec := httptest.NewRecorder()

		HandleServiceError(rec, nil, zap.NewNop())

		assert.Zero(t, rec.Body.Len())
	})
}

func TestHandleValidationError(t *testing.T) {
	t.Run("struct validation failure lists fields", func(t *testing.T) {
		type payload struct {
			SeatCount int `validate:"required,gt=0"`
		}
		rec := httptest.NewRecorder()

		HandleValidationError(rec, utils.ValidateStruct(&payload{}), zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Validation failed")
		assert.Contains(t, rec.Body.String(), "SeatCount")
	})

	t.Run("generic error answers 400", func(t *testing.T) {
		rec := httptest.NewRecorder()

		HandleValidationError(rec, errors.New("bad payload"), zap.NewNop())

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "bad payload")
	})
}
