// Copyright (c) 2026 Vidora. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Registration Constraints

const (
	UsernameMinLength = 3
	UsernameMaxLength = 32
	PasswordMinLength = 8
	PasswordMaxLength = 72 // bcrypt ignores anything past 72 bytes
	FullNameMaxLength = 100
	EmailMaxLength    = 254
)

// # Field Identifiers

const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldLogin        = "login"
	FieldPassword     = "password"
	FieldFullName     = "fullName"
	FieldAvatar       = "avatar"
	FieldCoverImage   = "coverImage"
	FieldRefreshToken = "refresh_token"
	FieldAccessToken  = "access_token"
	FieldUser         = "user"
	FieldMessage      = "message"
)

// # Media

const (
	AvatarKeyPrefix = "avatars/"
	CoverKeyPrefix  = "covers/"
)

// allowedImageTypes maps accepted upload content types to object key extensions.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// # Metric Labels

const (
	OpLogin    = "login"
	OpRefresh  = "refresh"
	OpLogout   = "logout"
	OpRegister = "register"

	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeNotFound           = "not_found"
	OutcomeRejected           = "rejected"
	OutcomeThrottled          = "throttled"
	OutcomeConflict           = "conflict"
	OutcomeError              = "error"
)
