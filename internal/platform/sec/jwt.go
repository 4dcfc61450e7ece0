// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, JWT signing)
// from the domain logic. The auth service consumes it through narrow interfaces.
//
// # Token Kinds
//
// Access and refresh tokens are both HS256 JWTs, but each kind is signed with
// its own secret and carries its own expiry. A token of one kind can never
// verify as the other because the secrets differ and the "typ" claim is checked.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes access tokens from refresh tokens inside the payload.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures, wrong issuer and wrong kind.
	ErrTokenInvalid = errors.New("sec: token is invalid")

	// ErrTokenExpired is returned for a well-formed, correctly signed token past its expiry.
	ErrTokenExpired = errors.New("sec: token has expired")
)

// # Claims

// Identity is the account data embedded in an access token.
type Identity struct {
	AccountID string
	Username  string
	Email     string
}

// AccessClaims represents the payload embedded inside a JWT Access Token.
//
// Custom application claims are abbreviated to keep the JWT payload small.
type AccessClaims struct {
	jwt.RegisteredClaims

	AccountID string    `json:"aid"`
	Username  string    `json:"unm"`
	Email     string    `json:"eml"`
	Kind      TokenKind `json:"typ"`
}

// RefreshClaims represents the payload embedded inside a JWT Refresh Token.
// It intentionally carries nothing but the account id.
type RefreshClaims struct {
	jwt.RegisteredClaims

	AccountID string    `json:"aid"`
	Kind      TokenKind `json:"typ"`
}

// SignedToken is a compact JWT together with its expiry instant.
type SignedToken struct {
	Value     string
	ExpiresAt time.Time
}

// # Token Service

// TokenConfig carries the signing material for both token kinds.
type TokenConfig struct {
	Issuer        string
	AccessSecret  []byte
	AccessTTL     time.Duration
	RefreshSecret []byte
	RefreshTTL    time.Duration
}

// TokenService handles generation and verification of HS256 JWT tokens.
//
// It has no I/O and no mutable state after construction and is safe for
// concurrent use.
type TokenService struct {
	cfg TokenConfig
	now func() time.Time
}

// Option customizes a [TokenService].
type Option func(*TokenService)

// WithClock replaces the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(service *TokenService) {
		service.now = now
	}
}

// NewTokenService validates cfg and returns a ready [TokenService].
func NewTokenService(cfg TokenConfig, opts ...Option) (*TokenService, error) {
	switch {
	case len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0:
		return nil, errors.New("sec: access and refresh secrets are required")
	case string(cfg.AccessSecret) == string(cfg.RefreshSecret):
		return nil, errors.New("sec: access and refresh secrets must differ")
	case cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0:
		return nil, errors.New("sec: token lifetimes must be positive")
	}

	service := &TokenService{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// AccessTTL returns the configured access token lifetime.
func (service *TokenService) AccessTTL() time.Duration {
	return service.cfg.AccessTTL
}

// IssueAccessToken signs a short-lived token carrying the account identity.
func (service *TokenService) IssueAccessToken(identity Identity) (SignedToken, error) {
	issuedAt := service.now()
	expiresAt := issuedAt.Add(service.cfg.AccessTTL)

	claims := AccessClaims{
		RegisteredClaims: service.registered(identity.AccountID, issuedAt, expiresAt),
		AccountID:        identity.AccountID,
		Username:         identity.Username,
		Email:            identity.Email,
		Kind:             TokenKindAccess,
	}

	return service.sign(claims, service.cfg.AccessSecret, expiresAt)
}

// IssueRefreshToken signs a long-lived token carrying only the account id.
func (service *TokenService) IssueRefreshToken(accountID string) (SignedToken, error) {
	issuedAt := service.now()
	expiresAt := issuedAt.Add(service.cfg.RefreshTTL)

	claims := RefreshClaims{
		RegisteredClaims: service.registered(accountID, issuedAt, expiresAt),
		AccountID:        accountID,
		Kind:             TokenKindRefresh,
	}

	return service.sign(claims, service.cfg.RefreshSecret, expiresAt)
}

// VerifyAccessToken checks signature, issuer, expiry and kind of an access token.
func (service *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := service.parse(tokenString, claims, service.cfg.AccessSecret); err != nil {
		return nil, err
	}

	if claims.Kind != TokenKindAccess || claims.AccountID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// VerifyRefreshToken checks signature, issuer, expiry and kind of a refresh token.
func (service *TokenService) VerifyRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := service.parse(tokenString, claims, service.cfg.RefreshSecret); err != nil {
		return nil, err
	}

	if claims.Kind != TokenKindRefresh || claims.AccountID == "" {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// VerifyToken is [TokenService.VerifyAccessToken] under the name the
// authentication middleware expects.
func (service *TokenService) VerifyToken(tokenString string) (*AccessClaims, error) {
	return service.VerifyAccessToken(tokenString)
}

// registered builds the standard claims shared by both kinds.
//
// The random jti makes two tokens minted for the same account within the same
// second distinct, which rotation relies on.
func (service *TokenService) registered(subject string, issuedAt, expiresAt time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    service.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
}

func (service *TokenService) sign(claims jwt.Claims, secret []byte, expiresAt time.Time) (SignedToken, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(secret)
	if err != nil {
		return SignedToken{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return SignedToken{Value: signedToken, ExpiresAt: expiresAt}, nil
}

// parse validates tokenString into claims and folds every jwt error into
// [ErrTokenExpired] or [ErrTokenInvalid].
func (service *TokenService) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	}
	if service.cfg.Issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(service.cfg.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}
