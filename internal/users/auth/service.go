// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/vidora/internal/platform/apperr"
	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/ctxutil"
	"github.com/taibuivan/vidora/internal/platform/dberr"
	"github.com/taibuivan/vidora/internal/platform/sec"
	"github.com/taibuivan/vidora/internal/platform/validate"
	"github.com/taibuivan/vidora/pkg/normalize"
	"github.com/taibuivan/vidora/pkg/uuid"
)

// # Contracts & Types

// TokenProvider issues and verifies the session token pair.
type TokenProvider interface {
	IssueAccessToken(identity sec.Identity) (sec.SignedToken, error)
	IssueRefreshToken(accountID string) (sec.SignedToken, error)
	VerifyRefreshToken(token string) (*sec.RefreshClaims, error)
}

// errRefreshRejected is returned for every caller-side refresh failure.
func errRefreshRejected() error {
	return apperr.Unauthorized("Invalid or expired refresh token")
}

// Service implements the session lifecycle and registration use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to credential checks,
// token rotation, or the refresh comparison must be reviewed by the security team.
type Service struct {
	accounts AccountRepository
	sessions SessionStore
	tokens   TokenProvider

	throttle           LoginThrottle
	throttleRetryAfter time.Duration
	uploader           MediaUploader
	events             EventRecorder
}

// ServiceOption configures optional collaborators of [Service].
type ServiceOption func(*Service)

// WithLoginThrottle enables failed-login throttling.
func WithLoginThrottle(throttle LoginThrottle, retryAfter time.Duration) ServiceOption {
	return func(service *Service) {
		service.throttle = throttle
		service.throttleRetryAfter = retryAfter
	}
}

// WithMediaUploader enables registration with profile images.
func WithMediaUploader(uploader MediaUploader) ServiceOption {
	return func(service *Service) { service.uploader = uploader }
}

// WithEventRecorder counts lifecycle outcomes.
func WithEventRecorder(events EventRecorder) ServiceOption {
	return func(service *Service) {
		if events != nil {
			service.events = events
		}
	}
}

// NewService constructs a new [Service] with its required dependencies.
func NewService(accounts AccountRepository, sessions SessionStore, tokens TokenProvider, opts ...ServiceOption) *Service {
	service := &Service{
		accounts: accounts,
		sessions: sessions,
		tokens:   tokens,
		events:   noopRecorder{},
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Identifier string // Username or Email
	Password   string
}

/*
Login verifies credentials and opens a new session.

Description: Resolves the account by username or email, compares the password
hash, signs a fresh token pair and stores the refresh token on the account,
replacing any previous session.

Returns:
  - *Session: Token pair and the account's public view
  - error: NOT_FOUND, INVALID_CREDENTIALS, RATE_LIMITED or STORAGE_FAILURE
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	identifier := normalize.Username(input.Identifier)

	if !service.loginAllowed(ctx, identifier) {
		service.events.AuthEvent(OpLogin, OutcomeThrottled)
		return nil, apperr.RateLimited(int(service.throttleRetryAfter.Seconds()))
	}

	// Resolve the identity
	account, err := service.accounts.FindByIdentifier(ctx, identifier)
	if err != nil {
		if dberr.IsNotFound(err) {
			service.events.AuthEvent(OpLogin, OutcomeNotFound)
			return nil, apperr.NotFound("User")
		}
		service.events.AuthEvent(OpLogin, OutcomeError)
		return nil, err
	}

	// bcrypt comparison is constant-time
	if !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		service.recordLoginFailure(ctx, identifier)
		service.events.AuthEvent(OpLogin, OutcomeInvalidCredentials)
		ctxutil.GetLogger(ctx).InfoContext(ctx, "login_failed", slog.String("account_id", account.ID))
		return nil, apperr.InvalidCredentials()
	}

	session, err := service.issueSession(account)
	if err != nil {
		service.events.AuthEvent(OpLogin, OutcomeError)
		return nil, err
	}

	// Nothing has been persisted until this point
	stored, err := service.sessions.SetRefreshToken(ctx, account.ID, &session.RefreshToken)
	if err != nil {
		service.events.AuthEvent(OpLogin, OutcomeError)
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}

	service.resetLoginFailures(ctx, identifier)
	service.events.AuthEvent(OpLogin, OutcomeSuccess)
	ctxutil.GetLogger(ctx).InfoContext(ctx, "login_succeeded", slog.String("account_id", account.ID))

	session.Account = stored
	return session, nil
}

/*
Refresh rotates the session presented by a refresh token.

Description: The token must verify against the refresh secret, name an
existing account, and equal the token currently stored for it. The stored
token is then replaced by a new one in a single compare-and-swap, so a
superseded, logged-out or concurrently used token is rejected.

Returns:
  - *Session: The new token pair
  - error: UNAUTHORIZED for any token problem, STORAGE_FAILURE otherwise
*/
func (service *Service) Refresh(ctx context.Context, incoming string) (*Session, error) {
	if incoming == "" {
		return nil, service.rejectRefresh(ctx, "missing", nil)
	}
	if len(incoming) > constants.MaxRefreshTokenLength {
		return nil, service.rejectRefresh(ctx, "oversized", nil)
	}

	// 1. Signature, expiry, issuer and kind
	claims, err := service.tokens.VerifyRefreshToken(incoming)
	if err != nil {
		return nil, service.rejectRefresh(ctx, "verify", err)
	}

	// 2. The account must still exist; absence is not disclosed
	account, err := service.accounts.FindByID(ctx, claims.AccountID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, service.rejectRefresh(ctx, "account_missing", nil)
		}
		service.events.AuthEvent(OpRefresh, OutcomeError)
		return nil, err
	}

	// 3. Only the most recently issued token is honoured
	stored, err := service.sessions.GetRefreshToken(ctx, account.ID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, service.rejectRefresh(ctx, "account_missing", nil)
		}
		service.events.AuthEvent(OpRefresh, OutcomeError)
		return nil, err
	}
	if stored == nil || subtle.ConstantTimeCompare([]byte(*stored), []byte(incoming)) != 1 {
		return nil, service.rejectRefresh(ctx, "mismatch", nil)
	}

	// 4. Rotate
	session, err := service.issueSession(account)
	if err != nil {
		service.events.AuthEvent(OpRefresh, OutcomeError)
		return nil, err
	}

	swapped, err := service.sessions.SwapRefreshToken(ctx, account.ID, incoming, session.RefreshToken)
	if err != nil {
		service.events.AuthEvent(OpRefresh, OutcomeError)
		return nil, err
	}
	if !swapped {
		return nil, service.rejectRefresh(ctx, "superseded", nil)
	}

	service.events.AuthEvent(OpRefresh, OutcomeSuccess)
	ctxutil.GetLogger(ctx).InfoContext(ctx, "refresh_rotated", slog.String("account_id", account.ID))

	account.PasswordHash = ""
	session.Account = account
	return session, nil
}

/*
Logout clears the account's session.

Description: Idempotent. Clearing an already empty session, or the session of
an account that no longer exists, succeeds.
*/
func (service *Service) Logout(ctx context.Context, accountID string) error {
	if _, err := service.sessions.SetRefreshToken(ctx, accountID, nil); err != nil && !dberr.IsNotFound(err) {
		service.events.AuthEvent(OpLogout, OutcomeError)
		return err
	}

	service.events.AuthEvent(OpLogout, OutcomeSuccess)
	ctxutil.GetLogger(ctx).InfoContext(ctx, "logout_completed", slog.String("account_id", accountID))
	return nil
}

// Me returns the public view of the given account.
func (service *Service) Me(ctx context.Context, accountID string) (*Account, error) {
	account, err := service.accounts.FindByID(ctx, accountID)
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, err
	}

	account.PasswordHash = ""
	return account, nil
}

// # Registration Flow

// MediaFile is an uploaded image as received by the transport layer.
type MediaFile struct {
	Body        io.Reader
	Size        int64
	ContentType string
}

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username   string
	Email      string
	Password   string
	FullName   string
	Avatar     *MediaFile
	CoverImage *MediaFile
}

/*
Register creates a new account with no active session.

Description: Normalises the identity fields, rejects duplicates, uploads the
avatar (required) and the cover image (optional), then persists the account
with a bcrypt password hash.

Returns:
  - *Account: Created account, public view
  - error: VALIDATION_ERROR, CONFLICT, SERVICE_UNAVAILABLE or STORAGE_FAILURE
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	username := normalize.Username(input.Username)
	email := normalize.Email(input.Email)
	fullName := strings.TrimSpace(input.FullName)

	if input.Avatar == nil {
		return nil, validate.RequiredError(FieldAvatar, "Avatar file is required")
	}

	avatarExt, err := imageExtension(FieldAvatar, input.Avatar)
	if err != nil {
		return nil, err
	}

	var coverExt string
	if input.CoverImage != nil {
		if coverExt, err = imageExtension(FieldCoverImage, input.CoverImage); err != nil {
			return nil, err
		}
	}

	if service.uploader == nil {
		return nil, apperr.ServiceUnavailable("Media uploads are not configured")
	}

	exists, err := service.accounts.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		service.events.AuthEvent(OpRegister, OutcomeError)
		return nil, err
	}
	if exists {
		service.events.AuthEvent(OpRegister, OutcomeConflict)
		return nil, apperr.Conflict("User with email or username already exists")
	}

	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_hash_failed: %w", err))
	}

	account := &Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
	}

	// Media is keyed by account id so a retried registration overwrites its own objects
	account.AvatarURL, err = service.uploader.Upload(ctx, AvatarKeyPrefix+account.ID+avatarExt,
		input.Avatar.ContentType, input.Avatar.Size, input.Avatar.Body)
	if err != nil {
		service.events.AuthEvent(OpRegister, OutcomeError)
		return nil, apperr.StorageFailure(err)
	}

	if input.CoverImage != nil {
		account.CoverImageURL, err = service.uploader.Upload(ctx, CoverKeyPrefix+account.ID+coverExt,
			input.CoverImage.ContentType, input.CoverImage.Size, input.CoverImage.Body)
		if err != nil {
			service.events.AuthEvent(OpRegister, OutcomeError)
			return nil, apperr.StorageFailure(err)
		}
	}

	if err := service.accounts.Create(ctx, account); err != nil {
		if apperr.HasCode(err, "CONFLICT") {
			service.events.AuthEvent(OpRegister, OutcomeConflict)
		} else {
			service.events.AuthEvent(OpRegister, OutcomeError)
		}
		return nil, err
	}

	service.events.AuthEvent(OpRegister, OutcomeSuccess)

	account.PasswordHash = ""
	return account, nil
}

// # Helpers

// issueSession signs a new access/refresh pair for account. Nothing is stored.
func (service *Service) issueSession(account *Account) (*Session, error) {
	access, err := service.tokens.IssueAccessToken(sec.Identity{
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
	})
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_access_token_failed: %w", err))
	}

	refresh, err := service.tokens.IssueRefreshToken(account.ID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("auth_service_refresh_token_failed: %w", err))
	}

	return &Session{
		AccessToken:           access.Value,
		RefreshToken:          refresh.Value,
		AccessTokenExpiresAt:  access.ExpiresAt,
		RefreshTokenExpiresAt: refresh.ExpiresAt,
	}, nil
}

func (service *Service) rejectRefresh(ctx context.Context, reason string, cause error) error {
	attrs := []any{slog.String("reason", reason)}
	if cause != nil {
		attrs = append(attrs, slog.String("error", cause.Error()))
	}
	ctxutil.GetLogger(ctx).DebugContext(ctx, "refresh_rejected", attrs...)

	service.events.AuthEvent(OpRefresh, OutcomeRejected)
	return errRefreshRejected()
}

// loginAllowed consults the throttle; a throttle outage never blocks logins.
func (service *Service) loginAllowed(ctx context.Context, identifier string) bool {
	if service.throttle == nil {
		return true
	}

	allowed, err := service.throttle.Allowed(ctx, identifier)
	if err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_throttle_unavailable", slog.String("error", err.Error()))
		return true
	}
	return allowed
}

func (service *Service) recordLoginFailure(ctx context.Context, identifier string) {
	if service.throttle == nil {
		return
	}
	if err := service.throttle.RecordFailure(ctx, identifier); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_throttle_record_failed", slog.String("error", err.Error()))
	}
}

func (service *Service) resetLoginFailures(ctx context.Context, identifier string) {
	if service.throttle == nil {
		return
	}
	if err := service.throttle.Reset(ctx, identifier); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "login_throttle_reset_failed", slog.String("error", err.Error()))
	}
}

// imageExtension validates the content type and returns the object key suffix.
func imageExtension(field string, file *MediaFile) (string, error) {
	ext, ok := allowedImageTypes[strings.ToLower(file.ContentType)]
	if !ok {
		return "", validate.RequiredError(field, "Unsupported image type")
	}
	if file.Size > constants.MaxUploadBytes {
		return "", validate.RequiredError(field, "Image is too large")
	}
	return ext, nil
}
