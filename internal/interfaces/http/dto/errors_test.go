package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTokenExpired, http.StatusUnauthorized},
		{ErrCodeInvalidCredentials, http.StatusUnauthorized},
		{ErrCodeAccountDeactivated, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeInsufficientStock, http.StatusUnprocessableEntity},
		{ErrCodeShareCodeInvalid, http.StatusUnprocessableEntity},
		{ErrCodeCheckoutIncomplete, http.StatusInternalServerError},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		// Unknown code falls back to 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"UNAUTHORIZED", ErrCodeUnauthorized},
		{"FORBIDDEN", ErrCodeForbidden},
		{"CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"INSUFFICIENT_STOCK", ErrCodeInsufficientStock},
		{"SHARE_CODE_INVALID", ErrCodeShareCodeInvalid},
		{"INVALID_CREDENTIALS", ErrCodeInvalidCredentials},
		{"VALIDATION", ErrCodeValidation},
		// Field-level domain rejections fold into validation
		{"INVALID_QUANTITY", ErrCodeValidation},
		{"INVALID_EMAIL", ErrCodeValidation},
		{"NO_LINES", ErrCodeValidation},
		// Already-normalized and unknown codes pass through
		{ErrCodeNotFound, ErrCodeNotFound},
		{"SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestResponseEnvelope(t *testing.T) {
	t.Run("success response omits error", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]string{"key": "value"})

		raw, err := json.Marshal(resp)
		assert.NoError(t, err)
		assert.Contains(t, string(raw), `"success":true`)
		assert.NotContains(t, string(raw), `"error"`)
	})

	t.Run("error response omits data", func(t *testing.T) {
		resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Order not found", "req-123")

		raw, err := json.Marshal(resp)
		assert.NoError(t, err)
		assert.Contains(t, string(raw), `"success":false`)
		assert.Contains(t, string(raw), ErrCodeNotFound)
		assert.Contains(t, string(raw), "req-123")
		assert.NotContains(t, string(raw), `"data"`)
	})

	t.Run("meta computes total pages with remainder", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta([]int{1, 2, 3}, 25, 1, 10)

		assert.NotNil(t, resp.Meta)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})
}

func TestListRequestToFilter(t *testing.T) {
	t.Run("applies defaults for zero values", func(t *testing.T) {
		f := ListRequest{}.ToFilter()

		assert.Equal(t, 1, f.Page)
		assert.Equal(t, 20, f.PageSize)
		assert.Equal(t, "created_at", f.OrderBy)
		assert.Equal(t, "desc", f.OrderDir)
	})

	t.Run("keeps explicit values", func(t *testing.T) {
		f := ListRequest{Page: 3, PageSize: 50, OrderBy: "name", OrderDir: "asc", Search: "asp"}.ToFilter()

		assert.Equal(t, 3, f.Page)
		assert.Equal(t, 50, f.PageSize)
		assert.Equal(t, "name", f.OrderBy)
		assert.Equal(t, "asc", f.OrderDir)
		assert.Equal(t, "asp", f.Search)
	})
}
