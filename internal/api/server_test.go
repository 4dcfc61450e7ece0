// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/api"
	"github.com/taibuivan/vidora/internal/platform/config"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/metrics"
	"github.com/taibuivan/vidora/internal/platform/middleware"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/users/auth"
)

/*
TestServer_Routing checks the mounted routes and the middleware chain.
*/
func TestServer_Routing(t *testing.T) {
	tokens, err := sec.NewTokenService(sec.TokenConfig{
		Issuer:        "vidora.test",
		AccessSecret:  []byte("access"),
		AccessTTL:     time.Minute,
		RefreshSecret: []byte("refresh"),
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	liveness, readiness := api.NewHealthHandlers(logger)
	recorder := metrics.New()

	server := api.NewServer(
		&config.Config{ServerPort: "0", Environment: "development"},
		logger,
		api.Dependencies{
			Verifier:    tokens,
			RateLimiter: middleware.NewRateLimiter(100, 100),
			Metrics:     recorder,
		},
		api.Handlers{
			Liveness:  liveness,
			Readiness: readiness,
			Users:     auth.NewHandler(auth.NewService(nil, nil, tokens)),
		},
	)

	tests := []struct {
		method     string
		path       string
		wantStatus int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/ready", http.StatusOK},
		{http.MethodGet, "/api/v1/users/me", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/users/logout", http.StatusUnauthorized},
		{http.MethodPost, "/api/v1/users/refresh-token", http.StatusUnauthorized},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
		{http.MethodGet, "/metrics", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			response := httptest.NewRecorder()
			server.Handler().ServeHTTP(response, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.wantStatus, response.Code)
			assert.NotEmpty(t, response.Header().Get(constants.HeaderXRequestID))
		})
	}
}
