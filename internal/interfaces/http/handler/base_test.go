package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontor/backend/internal/domain/shared"
	"github.com/kontor/backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newHandlerContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/billing/invoices", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("context key wins over header", func(t *testing.T) {
		c, _ := newHandlerContext(t)
		c.Set(RequestIDKey, "ctx-id")
		c.Request.Header.Set(RequestIDKey, "header-id")
		assert.Equal(t, "ctx-id", getRequestID(c))
	})

	t.Run("falls back to the middleware key", func(t *testing.T) {
		c, _ := newHandlerContext(t)
		c.Set("request_id", "mw-id")
		assert.Equal(t, "mw-id", getRequestID(c))
	})

	t.Run("falls back to the header", func(t *testing.T) {
		c, _ := newHandlerContext(t)
		c.Request.Header.Set(RequestIDKey, "header-id")
		assert.Equal(t, "header-id", getRequestID(c))
	})

	t.Run("empty when nothing is set", func(t *testing.T) {
		c, _ := newHandlerContext(t)
		assert.Empty(t, getRequestID(c))
	})
}

func TestBaseHandlerSuccessResponses(t *testing.T) {
	var h BaseHandler

	t.Run("Success wraps the payload", func(t *testing.T) {
		c, w := newHandlerContext(t)
		h.Success(c, map[string]string{"invoice_number": "2026MUS01-R01"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("SuccessWithMeta carries pagination", func(t *testing.T) {
		c, w := newHandlerContext(t)
		h.SuccessWithMeta(c, []string{"2026MUS01", "2026MUS02"}, 42, 2, 20)

		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Meta)
		assert.Equal(t, int64(42), resp.Meta.Total)
		assert.Equal(t, 2, resp.Meta.Page)
		assert.Equal(t, 20, resp.Meta.PageSize)
	})

	t.Run("Created answers 201", func(t *testing.T) {
		c, w := newHandlerContext(t)
		h.Created(c, map[string]string{"id": "0191d4a0-0000-7000-8000-000000000000"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeResponse(t, w).Success)
	})

	t.Run("NoContent answers an empty 204", func(t *testing.T) {
		engine := gin.New()
		engine.DELETE("/api/v1/budget/plans/:id", func(c *gin.Context) {
			h.NoContent(c)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete,
			"/api/v1/budget/plans/0191d4a0-0000-7000-8000-000000000000", nil))

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})
}

func TestBaseHandlerErrorHelpers(t *testing.T) {
	var h BaseHandler

	tests := []struct {
		name       string
		send       func(c *gin.Context)
		wantStatus int
		wantCode   string
	}{
		{"BadRequest", func(c *gin.Context) { h.BadRequest(c, "malformed filter") },
			http.StatusBadRequest, dto.ErrCodeBadRequest},
		{"NotFound", func(c *gin.Context) { h.NotFound(c, "invoice not found") },
			http.StatusNotFound, dto.ErrCodeNotFound},
		{"Conflict", func(c *gin.Context) { h.Conflict(c, "number already assigned") },
			http.StatusConflict, dto.ErrCodeConflict},
		{"UnprocessableEntity", func(c *gin.Context) { h.UnprocessableEntity(c, dto.ErrCodeBusinessRule, "order is not active") },
			http.StatusUnprocessableEntity, dto.ErrCodeBusinessRule},
		{"InternalError", func(c *gin.Context) { h.InternalError(c, "storage unavailable") },
			http.StatusInternalServerError, dto.ErrCodeInternal},
		{"TooManyRequests", func(c *gin.Context) { h.TooManyRequests(c, "slow down") },
			http.StatusTooManyRequests, dto.ErrCodeRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newHandlerContext(t)
			tt.send(c)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}

	t.Run("the request ID travels into the envelope", func(t *testing.T) {
		c, w := newHandlerContext(t)
		c.Set(RequestIDKey, "req-kontor-9")
		h.NotFound(c, "invoice not found")

		assert.Equal(t, "req-kontor-9", decodeResponse(t, w).Error.RequestID)
	})
}

func TestBaseHandlerErrorWithCode(t *testing.T) {
	var h BaseHandler
	c, w := newHandlerContext(t)

	h.ErrorWithCode(c, dto.ErrCodeSequenceOverflow, "99 numbers per scope and year")

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeSequenceOverflow, decodeResponse(t, w).Error.Code)
}

func TestBaseHandlerValidationError(t *testing.T) {
	var h BaseHandler
	c, w := newHandlerContext(t)
	c.Set(RequestIDKey, "req-kontor-3")

	h.ValidationError(c, []dto.ValidationDetail{
		{Field: "organization_id", Message: "This field is required"},
		{Field: "total_value", Message: "Must be greater than or equal to 0"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-kontor-3", resp.Error.RequestID)
	assert.Len(t, resp.Error.Details, 2)
}

func TestBaseHandlerHandleDomainError(t *testing.T) {
	var h BaseHandler

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"missing resource", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"duplicate resource", shared.ErrAlreadyExists, http.StatusConflict, dto.ErrCodeAlreadyExists},
		{"invalid input", shared.ErrInvalidInput, http.StatusBadRequest, dto.ErrCodeValidation},
		{"state transition refused", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"allocation retries exhausted", shared.ErrAllocationConflict, http.StatusConflict, dto.ErrCodeAllocationConflict},
		{"stale aggregate write", shared.ErrConcurrencyConflict, http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"sequence exhausted", shared.ErrSequenceOverflow, http.StatusUnprocessableEntity, dto.ErrCodeSequenceOverflow},
		{"document store failure", shared.ErrDocumentPersist, http.StatusInternalServerError, dto.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newHandlerContext(t)
			h.HandleDomainError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}

	t.Run("unknown error types become internal errors", func(t *testing.T) {
		c, w := newHandlerContext(t)
		h.HandleDomainError(c, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
		assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
	})

	t.Run("keeps the request ID", func(t *testing.T) {
		c, w := newHandlerContext(t)
		c.Set(RequestIDKey, "req-kontor-5")
		h.HandleDomainError(c, shared.ErrNotFound)

		assert.Equal(t, "req-kontor-5", decodeResponse(t, w).Error.RequestID)
	})
}

func TestBaseHandlerHandleError(t *testing.T) {
	var h BaseHandler

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newHandlerContext(t)
		h.HandleError(c, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("domain errors map to their status", func(t *testing.T) {
		c, w := newHandlerContext(t)
		h.HandleError(c, shared.ErrConcurrencyConflict)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeConcurrencyConflict, decodeResponse(t, w).Error.Code)
	})

	t.Run("wrapped domain errors are unwrapped", func(t *testing.T) {
		c, w := newHandlerContext(t)
		h.HandleError(c, fmt.Errorf("recording payment: %w", shared.ErrNotFound))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
	})

	t.Run("plain errors default to internal", func(t *testing.T) {
		c, w := newHandlerContext(t)
		h.HandleError(c, assert.AnError)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
