package response

import (
	"errors"
	"net/http"

	"github.com/campustrack/attendance-backend-go/internal/domain/attendance"
	"github.com/campustrack/attendance-backend-go/internal/domain/auth"
	"github.com/campustrack/attendance-backend-go/internal/domain/leave"
	"github.com/campustrack/attendance-backend-go/internal/domain/qrsession"
	"github.com/campustrack/attendance-backend-go/internal/domain/student"
	"github.com/campustrack/attendance-backend-go/internal/domain/user"
	"github.com/campustrack/attendance-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Auth domain errors
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid token")
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrWrongCurrentPassword):
		BadRequest(w, "Current password is incorrect", nil)
	case errors.Is(err, auth.ErrOAuthStateMismatch):
		Unauthorized(w, "OAuth state mismatch")
	case errors.Is(err, auth.ErrOAuthNotConfigured):
		BadRequest(w, "Google sign-in is not configured", nil)

	// User domain errors
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, user.ErrAccountDeactivated):
		Forbidden(w, "Account has been deactivated")
	case errors.Is(err, user.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")
	case errors.Is(err, user.ErrStudentRoleRequired):
		Forbidden(w, "Student role required")

	// Student domain errors
	case errors.Is(err, student.ErrStudentNotFound):
		NotFound(w, "Student not found")
	case errors.Is(err, student.ErrStudentCodeExists):
		Conflict(w, "Student code already exists")
	case errors.Is(err, student.ErrStudentProfileMissing):
		NotFound(w, "Student profile not found for this account")

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		Conflict(w, "Must check in before checking out")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Already checked out today")
	case errors.Is(err, attendance.ErrCheckOutBeforeCheckIn):
		BadRequest(w, "Check-out time cannot be before check-in time", nil)
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")

	// QR session domain errors
	case errors.Is(err, qrsession.ErrSessionNotFound):
		NotFound(w, "QR session not found")
	case errors.Is(err, qrsession.ErrSessionUnusable):
		Gone(w, "QR session is expired, inactive or has reached maximum uses")
	case errors.Is(err, qrsession.ErrSessionTypeMismatch):
		BadRequest(w, "QR session type does not match the requested action", nil)
	case errors.Is(err, qrsession.ErrLocationRejected):
		Forbidden(w, "Location is outside the allowed radius")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveRequestAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrLeaveOverlaps):
		Conflict(w, "An overlapping leave request already exists")
	case errors.Is(err, leave.ErrNotRequestOwner):
		Forbidden(w, "Leave request belongs to another student")
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, "End date must not be before start date", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
