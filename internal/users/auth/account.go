// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements account registration and the session token lifecycle.

A session is a single refresh token stored on the account row. Login creates
it, Refresh rotates it, Logout clears it. Access tokens are stateless and are
only ever checked by signature and expiry.

# Architecture

  - Service: Orchestrates Login, Refresh, Logout, Me and Register.
  - Repository: Postgres (accounts + session slot) and Redis (login throttle).
  - Transport: chi handler mounted at /api/v1/users.
*/
package auth

import "time"

// # Domain Entities

// Account represents a registered member of the Vidora platform.
//
// Secrets never leave the process: both PasswordHash and RefreshToken are
// excluded from JSON.
type Account struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"full_name"`
	AvatarURL     string    `json:"avatar_url"`
	CoverImageURL string    `json:"cover_image_url,omitempty"`
	PasswordHash  string    `json:"-"`
	RefreshToken  *string   `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Session is the result of a successful Login or Refresh.
type Session struct {
	Account               *Account
	AccessToken           string
	RefreshToken          string
	AccessTokenExpiresAt  time.Time
	RefreshTokenExpiresAt time.Time
}
