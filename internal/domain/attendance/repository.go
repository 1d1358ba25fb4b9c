package attendance

import (
	"context"
	"time"
)

// StatusCounts aggregates a set of attendance records by status.
type StatusCounts struct {
	TotalDays   int
	PresentDays int
	LateDays    int
	AbsentDays  int
}

// AttendanceRepository defines data access methods for attendance
// records. The check-in/check-out writes are conditional updates: they
// only apply while the guarded timestamp is unset, so two concurrent
// attempts for the same record cannot both succeed.
type AttendanceRepository interface {
	// GetOrCreateForDate finds the record for (studentID, date) or
	// creates an empty one. Safe under concurrent callers; the unique
	// (student_id, date) constraint guarantees at most one record.
	GetOrCreateForDate(ctx context.Context, studentID string, date time.Time) (Attendance, error)

	// GetByID retrieves an attendance record by ID
	GetByID(ctx context.Context, id string) (Attendance, error)

	// SetCheckIn sets the check-in timestamp and derived fields only if
	// check-in is currently unset. Returns false when the guard failed.
	SetCheckIn(ctx context.Context, rec Attendance) (bool, error)

	// SetCheckOut sets the check-out timestamp and derived fields only
	// if check-in is set and check-out is unset. Returns false when the
	// guard failed.
	SetCheckOut(ctx context.Context, rec Attendance) (bool, error)

	// Update overwrites timestamps, derived fields and notes (admin
	// corrections only; normal transitions use the conditional setters)
	Update(ctx context.Context, rec Attendance) error

	// List retrieves attendance records with filters and pagination
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// CountByStatus aggregates a student's records in [from, to); nil
	// bounds are open
	CountByStatus(ctx context.Context, studentID string, from, to *time.Time) (StatusCounts, error)

	// CreateAbsence inserts an absent record for (studentID, date) if no
	// record exists yet. Returns false when a record was already there.
	CreateAbsence(ctx context.Context, studentID string, date time.Time) (bool, error)
}
