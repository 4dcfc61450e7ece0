// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"io"
)

// # Account Data Access

// AccountRepository defines the data access contract for accounts.
type AccountRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - error: dberr.ErrNotFound when absent, STORAGE_FAILURE otherwise
	*/
	FindByID(ctx context.Context, id string) (*Account, error)

	/*
		FindByIdentifier returns the account whose username or email equals
		the already-normalised identifier.
	*/
	FindByIdentifier(ctx context.Context, identifier string) (*Account, error)

	// ExistsByUsernameOrEmail reports whether either value is already taken.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	/*
		Create persists a brand-new account with an empty session slot.

		Returns:
		  - error: CONFLICT on a unique violation, STORAGE_FAILURE otherwise
	*/
	Create(ctx context.Context, account *Account) error
}

// # Session Data Access

// SessionStore owns the single refresh token slot on each account.
type SessionStore interface {

	/*
		SetRefreshToken overwrites the stored token; nil clears it.

		Returns:
		  - *Account: the updated account, without secrets
		  - error: dberr.ErrNotFound when the account does not exist
	*/
	SetRefreshToken(ctx context.Context, accountID string, token *string) (*Account, error)

	// GetRefreshToken returns the stored token, or nil when there is no session.
	GetRefreshToken(ctx context.Context, accountID string) (*string, error)

	/*
		SwapRefreshToken replaces expected with next in one atomic step.

		Returns:
		  - bool: false when the stored token no longer equals expected
	*/
	SwapRefreshToken(ctx context.Context, accountID, expected, next string) (bool, error)
}

// # Collaborators

// LoginThrottle counts failed logins per identifier.
type LoginThrottle interface {
	Allowed(ctx context.Context, identifier string) (bool, error)
	RecordFailure(ctx context.Context, identifier string) error
	Reset(ctx context.Context, identifier string) error
}

// MediaUploader stores a profile image and returns its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error)
}

// EventRecorder counts lifecycle outcomes.
type EventRecorder interface {
	AuthEvent(operation, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) AuthEvent(string, string) {}
