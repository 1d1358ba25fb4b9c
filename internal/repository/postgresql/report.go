package postgresql

import (
	"context"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/report"
	"github.com/campustrack/attendance-backend-go/internal/pkg/database"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// GetDashboardSummary implements report.ReportRepository.
func (r *reportRepositoryImpl) GetDashboardSummary(ctx context.Context, day time.Time) (report.DashboardSummary, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			(SELECT COUNT(*) FROM students),
			(SELECT COUNT(*) FROM attendances WHERE date = $1 AND status = 'present'),
			(SELECT COUNT(*) FROM attendances WHERE date = $1 AND status = 'late'),
			(SELECT COUNT(*) FROM attendances WHERE date = $1 AND status = 'absent'),
			(SELECT COUNT(*) FROM qr_sessions WHERE is_active AND expires_at >= NOW()),
			(SELECT COUNT(*) FROM leave_requests WHERE status = 'pending'),
			(SELECT COUNT(*) FROM leave_requests WHERE status = 'approved' AND start_date <= $1 AND end_date >= $1)
	`

	var summary report.DashboardSummary
	err := q.QueryRow(ctx, query, day).Scan(
		&summary.TotalStudents,
		&summary.PresentToday,
		&summary.LateToday,
		&summary.AbsentToday,
		&summary.ActiveSessions,
		&summary.PendingLeaves,
		&summary.ApprovedLeaves,
	)
	if err != nil {
		return report.DashboardSummary{}, err
	}

	marked := summary.PresentToday + summary.LateToday + summary.AbsentToday
	summary.NotMarkedToday = summary.TotalStudents - marked
	if summary.NotMarkedToday < 0 {
		summary.NotMarkedToday = 0
	}
	if summary.TotalStudents > 0 {
		summary.AttendanceRate = int(float64(summary.PresentToday+summary.LateToday)/float64(summary.TotalStudents)*100 + 0.5)
	}

	return summary, nil
}

// GetRecentActivity implements report.ReportRepository. Check-ins and
// check-outs are flattened into one feed ordered by timestamp.
func (r *reportRepositoryImpl) GetRecentActivity(ctx context.Context, limit int) ([]report.ActivityEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT s.student_code, u.name, ev.action, ev.occurred_at
		FROM (
			SELECT student_id, 'check-in' AS action, check_in AS occurred_at
			FROM attendances WHERE check_in IS NOT NULL
			UNION ALL
			SELECT student_id, 'check-out' AS action, check_out AS occurred_at
			FROM attendances WHERE check_out IS NOT NULL
		) ev
		INNER JOIN students s ON s.id = ev.student_id
		INNER JOIN users u ON u.id = s.user_id
		ORDER BY ev.occurred_at DESC
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []report.ActivityEntry
	for rows.Next() {
		var entry report.ActivityEntry
		var occurredAt time.Time

		if err := rows.Scan(&entry.StudentCode, &entry.StudentName, &entry.Action, &occurredAt); err != nil {
			return nil, err
		}
		entry.OccurredAt = occurredAt.Format(time.RFC3339)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// GetMonthlyReport implements report.ReportRepository. Rows come back
// ordered by student then date; the per-student grouping happens here
// rather than in SQL.
func (r *reportRepositoryImpl) GetMonthlyReport(ctx context.Context, month, year int) ([]report.MonthlyReportStudent, error) {
	q := GetQuerier(ctx, r.db)

	periodStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, 0)

	query := `
		SELECT s.id, s.student_code, u.name, s.department, s.year,
			   a.date, a.check_in, a.check_out, a.status, a.percentage
		FROM students s
		INNER JOIN users u ON s.user_id = u.id
		LEFT JOIN attendances a ON a.student_id = s.id AND a.date >= $1 AND a.date < $2
		ORDER BY s.student_code ASC, a.date ASC
	`

	rows, err := q.Query(ctx, query, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []report.MonthlyReportStudent
	var current *report.MonthlyReportStudent

	for rows.Next() {
		var studentID, studentCode, studentName, department string
		var studentYear int
		var date *time.Time
		var checkIn, checkOut *time.Time
		var status *string
		var percentage *int

		err := rows.Scan(
			&studentID, &studentCode, &studentName, &department, &studentYear,
			&date, &checkIn, &checkOut, &status, &percentage,
		)
		if err != nil {
			return nil, err
		}

		if current == nil || current.StudentID != studentID {
			students = append(students, report.MonthlyReportStudent{
				StudentID:   studentID,
				StudentCode: studentCode,
				StudentName: studentName,
				Department:  department,
				Year:        studentYear,
			})
			current = &students[len(students)-1]
		}

		if date == nil {
			// Student without any record this month
			continue
		}

		log := report.DailyLog{
			Date:      date.Format("2006-01-02"),
			DayOfWeek: date.Weekday().String(),
			Status:    *status,
		}
		if percentage != nil {
			log.Percentage = *percentage
		}
		if checkIn != nil {
			formatted := checkIn.Format(time.RFC3339)
			log.CheckIn = &formatted
		}
		if checkOut != nil {
			formatted := checkOut.Format(time.RFC3339)
			log.CheckOut = &formatted
		}
		current.DailyLogs = append(current.DailyLogs, log)

		current.Summary.TotalDays++
		switch *status {
		case "present":
			current.Summary.PresentDays++
		case "late":
			current.Summary.LateDays++
		case "absent":
			current.Summary.AbsentDays++
		}
	}

	for i := range students {
		s := &students[i]
		if s.Summary.TotalDays > 0 {
			s.Summary.AttendancePercentage = int(float64(s.Summary.PresentDays)/float64(s.Summary.TotalDays)*100 + 0.5)
		}
	}

	return students, nil
}
