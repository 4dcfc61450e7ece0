// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/vidora/internal/platform/constants"
	"github.com/taibuivan/vidora/internal/platform/middleware"
	requestutil "github.com/taibuivan/vidora/internal/platform/request"
	"github.com/taibuivan/vidora/internal/platform/respond"
	"github.com/taibuivan/vidora/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the account and session HTTP endpoints.
//
// # Scope
//
// Registration, login, token refresh, logout and the current-account view.
// Identity on protected routes comes from [middleware.Authenticate], which the
// server mounts ahead of this router.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] mounted at /api/v1/users.
//
// # Endpoints
//   - POST /register      : Creates a new account (multipart).
//   - POST /login         : Opens a session and sets the token cookies.
//   - POST /refresh-token : Rotates the session.
//   - POST /logout        : Clears the session (auth required).
//   - GET  /me            : Current account (auth required).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/me", handler.me)
	})

	return router
}

// # Request Payloads

type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// identifier picks the first identity field the client filled in.
func (input loginRequest) identifier() string {
	for _, candidate := range []string{input.Login, input.Username, input.Email} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	User                 *Account  `json:"user"`
	AccessToken          string    `json:"access_token"`
	RefreshToken         string    `json:"refresh_token"`
	AccessTokenExpiresAt time.Time `json:"access_token_expires_at"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/users/register

Request:
  - Body: multipart/form-data (username, email, password, fullName, avatar, coverImage)

Response:
  - 201: Account: Created account, public view
  - 400: VALIDATION_ERROR: Missing field, bad email or unsupported image
  - 409: CONFLICT: Username or Email already exists
  - 503: SERVICE_UNAVAILABLE: Media storage disabled
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxUploadBytes)
	if err := request.ParseMultipartForm(constants.MaxMultipartMemory); err != nil {
		respond.Error(writer, request, validate.ErrInvalidForm)
		return
	}
	defer func() { _ = request.MultipartForm.RemoveAll() }()

	username := request.FormValue(FieldUsername)
	email := request.FormValue(FieldEmail)
	password := request.FormValue(FieldPassword)
	fullName := request.FormValue(FieldFullName)

	avatar, closeAvatar, err := formImage(request, FieldAvatar)
	if err != nil {
		respond.Error(writer, request, validate.ErrInvalidForm)
		return
	}
	defer closeAvatar()

	cover, closeCover, err := formImage(request, FieldCoverImage)
	if err != nil {
		respond.Error(writer, request, validate.ErrInvalidForm)
		return
	}
	defer closeCover()

	validator := &validate.Validator{}
	validator.Required(FieldUsername, username).
		MinLen(FieldUsername, strings.TrimSpace(username), UsernameMinLength).
		MaxLen(FieldUsername, strings.TrimSpace(username), UsernameMaxLength).
		NoSpaces(FieldUsername, strings.TrimSpace(username)).
		Required(FieldEmail, email).
		Email(FieldEmail, email).
		MaxLen(FieldEmail, email, EmailMaxLength).
		Required(FieldPassword, password).
		MinLen(FieldPassword, password, PasswordMinLength).
		Custom(FieldPassword, len(password) > PasswordMaxLength, "Password is too long").
		Required(FieldFullName, fullName).
		MaxLen(FieldFullName, fullName, FullNameMaxLength).
		Custom(FieldAvatar, avatar == nil, "Avatar file is required")

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Register(request.Context(), RegisterInput{
		Username:   username,
		Email:      email,
		Password:   password,
		FullName:   fullName,
		Avatar:     avatar,
		CoverImage: cover,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/users/login

Request:
  - Body: loginRequest (login | username | email, password)

Response:
  - 200: sessionResponse, plus accessToken and refreshToken cookies
  - 401: INVALID_CREDENTIALS: Wrong password
  - 404: NOT_FOUND: No account for the identifier
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	identifier := input.identifier()

	validator := &validate.Validator{}
	validator.Required(FieldLogin, identifier).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Identifier: identifier,
		Password:   input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session)
	respond.OK(writer, newSessionResponse(session))
}

/*
Refresh rotates the session using a refresh token.

POST /api/v1/users/refresh-token

Request:
  - Cookie refreshToken, or Body: refreshRequest (refresh_token)

Response:
  - 200: sessionResponse, plus rotated cookies
  - 401: UNAUTHORIZED: Missing, invalid, expired or superseded refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.Cookie(request, constants.RefreshTokenCookieName)

	if token == "" {
		var input refreshRequest
		if err := requestutil.DecodeOptionalJSON(request, &input); err != nil {
			respond.Error(writer, request, validate.ErrInvalidJSON)
			return
		}
		token = strings.TrimSpace(input.RefreshToken)
	}

	session, err := handler.authService.Refresh(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookies(writer, session)
	respond.OK(writer, newSessionResponse(session))
}

/*
Logout terminates the caller's session.

POST /api/v1/users/logout

Response:
  - 200: Message, both cookies cleared
  - 401: UNAUTHORIZED: No valid access token
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	clearSessionCookies(writer)
	respond.OK(writer, map[string]string{
		FieldMessage: "User logged out",
	})
}

/*
Me returns the authenticated account.

GET /api/v1/users/me
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.Me(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account)
}

// # Helpers

func newSessionResponse(session *Session) sessionResponse {
	return sessionResponse{
		User:                 session.Account,
		AccessToken:          session.AccessToken,
		RefreshToken:         session.RefreshToken,
		AccessTokenExpiresAt: session.AccessTokenExpiresAt,
	}
}

func setSessionCookies(writer http.ResponseWriter, session *Session) {
	http.SetCookie(writer, sessionCookie(constants.AccessTokenCookieName, constants.AccessTokenCookiePath,
		session.AccessToken, session.AccessTokenExpiresAt))
	http.SetCookie(writer, sessionCookie(constants.RefreshTokenCookieName, constants.RefreshTokenCookiePath,
		session.RefreshToken, session.RefreshTokenExpiresAt))
}

func clearSessionCookies(writer http.ResponseWriter) {
	for _, cookie := range []*http.Cookie{
		sessionCookie(constants.AccessTokenCookieName, constants.AccessTokenCookiePath, "", time.Time{}),
		sessionCookie(constants.RefreshTokenCookieName, constants.RefreshTokenCookiePath, "", time.Time{}),
	} {
		cookie.MaxAge = -1
		http.SetCookie(writer, cookie)
	}
}

func sessionCookie(name, path, value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}
}

// formImage reads an optional multipart file. The returned closer is always safe to call.
func formImage(request *http.Request, field string) (*MediaFile, func(), error) {
	file, header, err := request.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}

	contentType, err := detectContentType(file, header)
	if err != nil {
		_ = file.Close()
		return nil, func() {}, err
	}

	media := &MediaFile{
		Body:        file,
		Size:        header.Size,
		ContentType: contentType,
	}
	return media, func() { _ = file.Close() }, nil
}

// detectContentType trusts the part header unless it is missing or generic.
func detectContentType(file multipart.File, header *multipart.FileHeader) (string, error) {
	declared := header.Header.Get("Content-Type")
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}

	sniff := make([]byte, 512)
	n, err := io.ReadFull(file, sniff)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(sniff[:n]), nil
}
