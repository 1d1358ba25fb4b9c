package report

import (
	"fmt"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ADMIN DASHBOARD
// ========================================

type DashboardSummary struct {
	TotalStudents  int `json:"total_students"`
	PresentToday   int `json:"present_today"`
	LateToday      int `json:"late_today"`
	AbsentToday    int `json:"absent_today"`
	NotMarkedToday int `json:"not_marked_today"`
	ActiveSessions int `json:"active_sessions"`
	PendingLeaves  int `json:"pending_leaves"`
	ApprovedLeaves int `json:"approved_leaves"`
	AttendanceRate int `json:"attendance_rate"` // percent of students present or late today
}

// ActivityEntry is one row of the dashboard's recent activity feed,
// derived from the latest ledger timestamps.
type ActivityEntry struct {
	StudentCode string `json:"student_code"`
	StudentName string `json:"student_name"`
	Action      string `json:"action"` // check-in or check-out
	OccurredAt  string `json:"occurred_at"`
}

type DashboardResponse struct {
	Date           string           `json:"date"`
	Summary        DashboardSummary `json:"summary"`
	RecentActivity []ActivityEntry  `json:"recent_activity"`
}

// ========================================
// MONTHLY ATTENDANCE REPORT
// ========================================

type MonthlyReportRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (r *MonthlyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	currentYear := time.Now().Year()
	if r.Year < 2020 || r.Year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2020 and %d", currentYear+1),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MonthlyReport struct {
	PeriodMonth int    `json:"period_month"`
	PeriodYear  int    `json:"period_year"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
	GeneratedAt string `json:"generated_at"`

	Students []MonthlyReportStudent `json:"students"`
}

type MonthlyReportStudent struct {
	StudentID   string `json:"student_id"`
	StudentCode string `json:"student_code"`
	StudentName string `json:"student_name"`
	Department  string `json:"department"`
	Year        int    `json:"year"`

	Summary   AttendanceSummary `json:"summary"`
	DailyLogs []DailyLog        `json:"daily_logs"`
}

type AttendanceSummary struct {
	TotalDays            int `json:"total_days"`
	PresentDays          int `json:"present_days"`
	LateDays             int `json:"late_days"`
	AbsentDays           int `json:"absent_days"`
	AttendancePercentage int `json:"attendance_percentage"`
}

type DailyLog struct {
	Date       string  `json:"date"`
	DayOfWeek  string  `json:"day_of_week"`
	CheckIn    *string `json:"check_in"`
	CheckOut   *string `json:"check_out"`
	Status     string  `json:"status"`
	Percentage int     `json:"percentage"`
}

// CSVExport is a rendered CSV document ready to be served as a download.
type CSVExport struct {
	Filename string
	Content  []byte
}
