// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package requestutil_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/platform/validate"
)

/*
TestBearerToken separates an absent header from a malformed one.
*/
func TestBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantOK    bool
	}{
		{"absent", "", "", true},
		{"bearer", "Bearer abc.def", "abc.def", true},
		{"lowercase_scheme", "bearer abc.def", "abc.def", true},
		{"basic_scheme", "Basic dXNlcg==", "", false},
		{"no_token", "Bearer ", "", false},
		{"no_space", "Bearerabc", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				request.Header.Set(constants.HeaderAuthorization, tt.header)
			}

			token, ok := requestutil.BearerToken(request)
			assert.Equal(t, tt.wantToken, token)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

/*
TestDecodeOptionalJSON accepts an empty body and rejects a broken one.
*/
func TestDecodeOptionalJSON(t *testing.T) {
	var target struct {
		Value string `json:"value"`
	}

	empty := httptest.NewRequest(http.MethodPost, "/", nil)
	require.NoError(t, requestutil.DecodeOptionalJSON(empty, &target))
	assert.Empty(t, target.Value)

	filled := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"value":"x"}`))
	require.NoError(t, requestutil.DecodeOptionalJSON(filled, &target))
	assert.Equal(t, "x", target.Value)

	broken := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"value":`))
	assert.ErrorIs(t, requestutil.DecodeOptionalJSON(broken, &target), validate.ErrInvalidJSON)
}

/*
TestRequiredAccountID reads the account id from attached claims.
*/
func TestRequiredAccountID(t *testing.T) {
	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := requestutil.RequiredAccountID(anonymous)
	assert.Error(t, err)

	claims := &sec.AccessClaims{AccountID: "acc-1"}
	authed := anonymous.WithContext(ctxutil.WithAuthUser(anonymous.Context(), claims))
	id, err := requestutil.RequiredAccountID(authed)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", id)

	cookie := httptest.NewRequest(http.MethodGet, "/", nil)
	cookie.AddCookie(&http.Cookie{Name: constants.AccessTokenCookieName, Value: "v"})
	assert.Equal(t, "v", requestutil.Cookie(cookie, constants.AccessTokenCookieName))
	assert.Empty(t, requestutil.Cookie(cookie, "missing"))
}
