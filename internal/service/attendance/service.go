package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/attendance"
	"github.com/campustrack/attendance-backend-go/internal/domain/qrsession"
	"github.com/campustrack/attendance-backend-go/internal/domain/student"
	"github.com/campustrack/attendance-backend-go/internal/domain/user"
	"github.com/campustrack/attendance-backend-go/internal/pkg/database"
	"github.com/campustrack/attendance-backend-go/internal/pkg/metrics"
	"github.com/go-chi/jwtauth/v5"
)

type AttendanceServiceImpl struct {
	db database.Transactor
	attendance.AttendanceRepository
	qrsession.SessionRepository
	student.StudentRepository
}

func NewAttendanceService(
	db database.Transactor,
	attendanceRepository attendance.AttendanceRepository,
	sessionRepository qrsession.SessionRepository,
	studentRepository student.StudentRepository,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		db:                   db,
		AttendanceRepository: attendanceRepository,
		SessionRepository:    sessionRepository,
		StudentRepository:    studentRepository,
	}
}

func toAttendanceResponse(rec attendance.Attendance) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:          rec.ID,
		StudentID:   rec.StudentID,
		StudentCode: rec.StudentCode,
		StudentName: rec.StudentName,
		Date:        rec.Date.Format("2006-01-02"),
		Status:      string(rec.Status),
		Percentage:  rec.Percentage,
		Notes:       rec.Notes,
	}
	if rec.CheckIn != nil {
		formatted := rec.CheckIn.Format(time.RFC3339)
		resp.CheckIn = &formatted
	}
	if rec.CheckOut != nil {
		formatted := rec.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &formatted
	}
	return resp
}

// Mark implements attendance.AttendanceService. The session consume and
// the ledger transition commit together: if either conditional write
// loses its race the whole attempt rolls back and the student can retry
// with a clear error. The statistics rollup afterwards is best effort
// and never undoes a committed mark.
func (s *AttendanceServiceImpl) Mark(ctx context.Context, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	studentID, err := studentIDFromClaims(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := time.Now().UTC()

	session, err := s.SessionRepository.GetByCode(ctx, req.Code)
	if err != nil {
		if err == qrsession.ErrSessionNotFound {
			metrics.SessionsRejected.WithLabelValues("not_found").Inc()
		}
		return attendance.AttendanceResponse{}, err
	}

	if !session.CanBeUsed(now) {
		metrics.SessionsRejected.WithLabelValues("unusable").Inc()
		return attendance.AttendanceResponse{}, qrsession.ErrSessionUnusable
	}
	if !session.MatchesAction(req.Action) {
		metrics.SessionsRejected.WithLabelValues("type_mismatch").Inc()
		return attendance.AttendanceResponse{}, qrsession.ErrSessionTypeMismatch
	}
	if session.Geofence != nil {
		if req.Latitude == nil || req.Longitude == nil || !session.Geofence.Contains(*req.Latitude, *req.Longitude) {
			metrics.SessionsRejected.WithLabelValues("location").Inc()
			return attendance.AttendanceResponse{}, qrsession.ErrLocationRejected
		}
	}

	var marked attendance.Attendance
	err = s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		rec, err := s.AttendanceRepository.GetOrCreateForDate(txCtx, studentID, attendance.StartOfDay(now))
		if err != nil {
			return fmt.Errorf("failed to load today's record: %w", err)
		}

		switch req.Action {
		case "check-in":
			if rec.CheckIn != nil {
				return attendance.ErrAlreadyCheckedIn
			}
			rec.CheckIn = &now
			rec.QRSessionID = &session.ID
			rec.Latitude = req.Latitude
			rec.Longitude = req.Longitude
			rec.DeviceInfo = req.DeviceInfo
			rec.Rederive()

			ok, err := s.AttendanceRepository.SetCheckIn(txCtx, rec)
			if err != nil {
				return fmt.Errorf("failed to set check-in: %w", err)
			}
			if !ok {
				return attendance.ErrAlreadyCheckedIn
			}

		case "check-out":
			if rec.CheckIn == nil {
				return attendance.ErrNotCheckedIn
			}
			if rec.CheckOut != nil {
				return attendance.ErrAlreadyCheckedOut
			}
			if now.Before(*rec.CheckIn) {
				return attendance.ErrCheckOutBeforeCheckIn
			}
			rec.CheckOut = &now
			rec.Rederive()

			ok, err := s.AttendanceRepository.SetCheckOut(txCtx, rec)
			if err != nil {
				return fmt.Errorf("failed to set check-out: %w", err)
			}
			if !ok {
				return attendance.ErrAlreadyCheckedOut
			}
		}

		_, ok, err := s.SessionRepository.Consume(txCtx, session.ID, studentID, now)
		if err != nil {
			return fmt.Errorf("failed to consume session: %w", err)
		}
		if !ok {
			// Lost the race for the last remaining use
			return qrsession.ErrSessionUnusable
		}

		marked = rec
		return nil
	})
	if err != nil {
		switch err {
		case attendance.ErrAlreadyCheckedIn, attendance.ErrNotCheckedIn, attendance.ErrAlreadyCheckedOut, attendance.ErrCheckOutBeforeCheckIn:
			metrics.SessionsRejected.WithLabelValues("ledger_state").Inc()
		case qrsession.ErrSessionUnusable:
			metrics.SessionsRejected.WithLabelValues("unusable").Inc()
		}
		return attendance.AttendanceResponse{}, err
	}

	metrics.SessionsConsumed.WithLabelValues(string(session.SessionType)).Inc()
	if req.Action == "check-in" {
		metrics.CheckIns.Inc()
	} else {
		metrics.CheckOuts.Inc()
	}

	s.recomputeStats(ctx, studentID)

	return toAttendanceResponse(marked), nil
}

// recomputeStats refreshes the student's rollup. Failures are logged
// and counted; the attendance mark has already committed.
func (s *AttendanceServiceImpl) recomputeStats(ctx context.Context, studentID string) {
	if _, err := s.StudentRepository.RecomputeStats(ctx, studentID); err != nil {
		metrics.StatsRecomputeFailures.Inc()
		slog.Error("Failed to recompute student stats", "student_id", studentID, "error", err)
	}
}

// History implements attendance.AttendanceService. Students are pinned
// to their own records regardless of the requested filter.
func (s *AttendanceServiceImpl) History(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	if role, _ := claims["role"].(string); role != string(user.RoleAdmin) {
		studentID, ok := claims["student_id"].(string)
		if !ok || studentID == "" {
			return attendance.ListAttendanceResponse{}, user.ErrStudentRoleRequired
		}
		filter.StudentID = studentID
	}
	filter.Normalize()

	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	resp := attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		Attendances: make([]attendance.AttendanceResponse, 0, len(records)),
	}
	for _, rec := range records {
		resp.Attendances = append(resp.Attendances, toAttendanceResponse(rec))
	}

	return resp, nil
}

// Stats implements attendance.AttendanceService. An empty studentCode
// means the caller's own stats.
func (s *AttendanceServiceImpl) Stats(ctx context.Context, studentCode string) (attendance.StatsResponse, error) {
	var studentID string

	if studentCode == "" {
		id, err := studentIDFromClaims(ctx)
		if err != nil {
			return attendance.StatsResponse{}, err
		}
		studentID = id
	} else {
		studentData, err := s.StudentRepository.GetByStudentCode(ctx, studentCode)
		if err != nil {
			return attendance.StatsResponse{}, err
		}
		studentID = studentData.ID
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	monthly, err := s.AttendanceRepository.CountByStatus(ctx, studentID, &monthStart, &monthEnd)
	if err != nil {
		return attendance.StatsResponse{}, fmt.Errorf("failed to count monthly attendance: %w", err)
	}
	overall, err := s.AttendanceRepository.CountByStatus(ctx, studentID, nil, nil)
	if err != nil {
		return attendance.StatsResponse{}, fmt.Errorf("failed to count overall attendance: %w", err)
	}

	return attendance.StatsResponse{
		Monthly: toPeriodStats(monthly),
		Overall: toPeriodStats(overall),
	}, nil
}

func toPeriodStats(counts attendance.StatusCounts) attendance.PeriodStats {
	stats := attendance.PeriodStats{
		TotalDays:   counts.TotalDays,
		PresentDays: counts.PresentDays,
		LateDays:    counts.LateDays,
		AbsentDays:  counts.AbsentDays,
	}
	if counts.TotalDays > 0 {
		stats.AttendancePercentage = int(float64(counts.PresentDays)/float64(counts.TotalDays)*100 + 0.5)
	}
	return stats
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	rec, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return toAttendanceResponse(rec), nil
}

// UpdateAttendance implements attendance.AttendanceService. The status
// and percentage are always re-derived from the corrected timestamps.
func (s *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	rec, err := s.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if req.CheckIn != nil {
		checkIn, parseErr := time.Parse(time.RFC3339, *req.CheckIn)
		if parseErr != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("invalid check_in: %w", parseErr)
		}
		checkIn = checkIn.UTC()
		rec.CheckIn = &checkIn
	}
	if req.CheckOut != nil {
		checkOut, parseErr := time.Parse(time.RFC3339, *req.CheckOut)
		if parseErr != nil {
			return attendance.AttendanceResponse{}, fmt.Errorf("invalid check_out: %w", parseErr)
		}
		checkOut = checkOut.UTC()
		rec.CheckOut = &checkOut
	}
	if req.Notes != nil {
		rec.Notes = req.Notes
	}

	if rec.CheckIn != nil && rec.CheckOut != nil && rec.CheckOut.Before(*rec.CheckIn) {
		return attendance.AttendanceResponse{}, attendance.ErrCheckOutBeforeCheckIn
	}
	rec.Rederive()

	if err := s.AttendanceRepository.Update(ctx, rec); err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to update attendance: %w", err)
	}

	s.recomputeStats(ctx, rec.StudentID)

	return toAttendanceResponse(rec), nil
}

// MarkAbsentees implements attendance.AttendanceService. Creation is
// conditional on no record existing, so reruns for the same day are
// harmless.
func (s *AttendanceServiceImpl) MarkAbsentees(ctx context.Context, day time.Time) (int, error) {
	day = attendance.StartOfDay(day)

	ids, err := s.StudentRepository.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list students: %w", err)
	}

	created := 0
	for _, studentID := range ids {
		inserted, err := s.AttendanceRepository.CreateAbsence(ctx, studentID, day)
		if err != nil {
			slog.Error("Failed to create absence record", "student_id", studentID, "date", day, "error", err)
			continue
		}
		if inserted {
			created++
			s.recomputeStats(ctx, studentID)
		}
	}

	return created, nil
}

// studentIDFromClaims extracts the caller's student profile ID from the
// verified JWT claims.
func studentIDFromClaims(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	studentID, ok := claims["student_id"].(string)
	if !ok || studentID == "" {
		return "", user.ErrStudentRoleRequired
	}
	return studentID, nil
}
