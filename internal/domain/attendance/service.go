package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for attendance operations
type AttendanceService interface {
	// Mark redeems a QR session and applies the check-in or check-out
	// transition to today's record, then refreshes the student's rollup
	Mark(ctx context.Context, req MarkAttendanceRequest) (AttendanceResponse, error)

	// History retrieves attendance records; students only see their own
	History(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	// Stats returns monthly and overall aggregates for a student
	Stats(ctx context.Context, studentCode string) (StatsResponse, error)

	// GetAttendance retrieves a single record by ID (admin)
	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)

	// UpdateAttendance corrects a record's timestamps (admin); the
	// status and percentage are always re-derived
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)

	// MarkAbsentees creates absent records for students without any
	// record on the given day; returns the number created
	MarkAbsentees(ctx context.Context, day time.Time) (int, error)
}
