package student

import "errors"

var (
	ErrStudentNotFound       = errors.New("student not found")
	ErrStudentCodeExists     = errors.New("student code already exists")
	ErrStudentProfileMissing = errors.New("student profile not found for this account")
)
