package user

import "errors"

var (
	ErrUserNotFound           = errors.New("user not found")
	ErrUserEmailExists        = errors.New("email already registered")
	ErrInvalidEmailFormat     = errors.New("invalid email format")
	ErrInvalidPasswordLength  = errors.New("password must be at least 6 characters")
	ErrInvalidOAuthProvider   = errors.New("invalid oauth provider")
	ErrAccountDeactivated     = errors.New("account has been deactivated")
	ErrAdminPrivilegeRequired = errors.New("admin privilege required")
	ErrStudentRoleRequired    = errors.New("student role required")
)
