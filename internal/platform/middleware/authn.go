// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"net/http"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/internal/platform/sec"
)

// TokenVerifier verifies access tokens for [Authenticate].
//
// Declared here so the middleware does not depend on the token implementation.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*sec.AccessClaims, error)
}

// Authenticate resolves the caller's identity from the access token.
//
// # Flow
//  1. Read 'Authorization: Bearer <token>', falling back to the access token cookie.
//  2. A malformed Authorization header is rejected with 401.
//  3. A missing, expired or invalid token leaves the request anonymous.
//  4. Verified [*sec.AccessClaims] are injected into the request context.
//
// Invalid tokens do not abort the request: login and refresh must keep working
// for a browser still holding a stale access cookie. Routes that need an
// identity mount [RequireAuth].
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Token Extraction ───────────────────────────────────────────
			token, wellFormed := requestutil.BearerToken(request)
			if !wellFormed {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}
			if token == "" {
				token = requestutil.Cookie(request, constants.AccessTokenCookieName)
			}

			// ── 2. Anonymous Access ───────────────────────────────────────────
			if token == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Token Verification ─────────────────────────────────────────
			claims, err := verifier.VerifyToken(token)
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthUser(request.Context(), claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetAuthUser(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
