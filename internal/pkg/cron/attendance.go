package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/attendance"
	"github.com/campustrack/attendance-backend-go/internal/domain/qrsession"
)

type AttendanceJobs struct {
	attendanceSvc attendance.AttendanceService
	sessionSvc    qrsession.SessionService
}

func NewAttendanceJobs(
	attendanceSvc attendance.AttendanceService,
	sessionSvc qrsession.SessionService,
) *AttendanceJobs {
	return &AttendanceJobs{
		attendanceSvc: attendanceSvc,
		sessionSvc:    sessionSvc,
	}
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("cleanup_expired_sessions", 1*time.Hour, j.CleanupExpiredSessions)
	scheduler.AddJob("mark_absent_students", 1*time.Hour, j.MarkAbsentStudents)
}

// CleanupExpiredSessions deletes QR sessions that are both expired and
// deactivated. Sessions still marked active are kept so their usage
// history stays visible in the admin listing.
func (j *AttendanceJobs) CleanupExpiredSessions(ctx context.Context) error {
	result, err := j.sessionSvc.Cleanup(ctx)
	if err != nil {
		return fmt.Errorf("failed to clean up expired sessions: %w", err)
	}

	if result.DeletedCount > 0 {
		slog.Info("Cron: Cleaned up expired QR sessions", "count", result.DeletedCount)
	}
	return nil
}

// MarkAbsentStudents writes absent records for yesterday for every
// student without one. The job ticks hourly but only acts in the first
// hour of the UTC day; creation is conditional so a rerun after a crash
// never duplicates records.
func (j *AttendanceJobs) MarkAbsentStudents(ctx context.Context) error {
	// Only run at midnight (00:00-00:59 UTC)
	if time.Now().UTC().Hour() != 0 {
		return nil
	}

	slog.Info("Cron: Starting mark absent students job")

	yesterday := attendance.StartOfDay(time.Now().UTC().AddDate(0, 0, -1))

	count, err := j.attendanceSvc.MarkAbsentees(ctx, yesterday)
	if err != nil {
		return fmt.Errorf("failed to mark absent students: %w", err)
	}

	slog.Info("Cron: Marked absent students", "count", count, "date", yesterday.Format("2006-01-02"))
	return nil
}
