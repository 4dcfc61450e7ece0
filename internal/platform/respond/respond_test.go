// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/respond"
)

/*
TestError_AppError renders the status and code of a taxonomy error.
*/
func TestError_AppError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/refresh-token", nil)

	respond.Error(recorder, request, apperr.Unauthorized("Invalid or expired refresh token"))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	var body respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "UNAUTHORIZED", body.Code)
	assert.Equal(t, "Invalid or expired refresh token", body.Error)
}

/*
TestError_RateLimitedSetsRetryAfter tells throttled clients how long to wait.
*/
func TestError_RateLimitedSetsRetryAfter(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/users/login", nil)

	respond.Error(recorder, request, apperr.RateLimited(900))

	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	assert.Equal(t, "900", recorder.Header().Get("Retry-After"))
}

/*
TestError_HidesInternalCause ensures unknown errors become a generic 500.
*/
func TestError_HidesInternalCause(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, errors.New("pq: password authentication failed for user vidora"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "password authentication")
	assert.Contains(t, recorder.Body.String(), "INTERNAL_ERROR")
}

/*
TestOK_Envelope wraps payloads under "data".
*/
func TestOK_Envelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, map[string]string{"message": "ok"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"message":"ok"}}`, recorder.Body.String())
}
