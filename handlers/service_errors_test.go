package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskdeck/taskdeck/services"
	"go.uber.org/zap"
)

func handledResponse(t *testing.T, err error) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	HandleServiceError(rec, err, zap.NewNop())

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body.Code
}

func TestHandleServiceError_StatusAndCode(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"task not found", services.ErrTaskNotFound, http.StatusNotFound, "TASK_NOT_FOUND"},
		{"user not found", services.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
		{"unsupported provider", services.ErrUnsupportedProvider, http.StatusNotFound, "UNSUPPORTED_PROVIDER"},
		{"login failed", services.ErrLoginFailed, http.StatusUnauthorized, "LOGIN_FAILED"},
		{"token expired", services.ErrTokenExpired, http.StatusUnauthorized, "TOKEN_EXPIRED"},
		{"access denied", services.ErrAccessDenied, http.StatusForbidden, "ACCESS_DENIED"},
		{"duplicate email", services.ErrDuplicateEmail, http.StatusConflict, "DUPLICATE_EMAIL"},
		{"duplicate username", services.ErrDuplicateUsername, http.StatusConflict, "DUPLICATE_USERNAME"},
		{"validation", services.ErrValidationFailed, http.StatusBadRequest, "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := handledResponse(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}

func TestHandleServiceError_InternalHidesCause(t *testing.T) {
	err := services.WrapInternal("connection pool exhausted", assert.AnError)

	rec := httptest.NewRecorder()
	HandleServiceError(rec, err, zap.NewNop())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection pool exhausted")
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
}

func TestHandleServiceError_UnknownErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleServiceError(rec, assert.AnError, zap.NewNop())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
