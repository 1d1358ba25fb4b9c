package auth

import "errors"

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidToken         = errors.New("invalid or expired token")
	ErrTokenExpired         = errors.New("token has expired")
	ErrRefreshTokenRevoked  = errors.New("refresh token has been revoked")
	ErrUserNotFound         = errors.New("user not found")
	ErrWrongCurrentPassword = errors.New("current password is incorrect")
	ErrOAuthStateMismatch   = errors.New("oauth state mismatch")
	ErrOAuthNotConfigured   = errors.New("google sign-in is not configured")
)
