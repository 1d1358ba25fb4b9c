package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/attendance"
	"github.com/campustrack/attendance-backend-go/internal/domain/report"
)

// recentActivityLimit caps the dashboard activity feed.
const recentActivityLimit = 10

type ReportServiceImpl struct {
	report.ReportRepository
}

func NewReportService(reportRepository report.ReportRepository) report.ReportService {
	return &ReportServiceImpl{
		ReportRepository: reportRepository,
	}
}

// Dashboard implements report.ReportService.
func (s *ReportServiceImpl) Dashboard(ctx context.Context) (report.DashboardResponse, error) {
	today := attendance.StartOfDay(time.Now().UTC())

	summary, err := s.ReportRepository.GetDashboardSummary(ctx, today)
	if err != nil {
		return report.DashboardResponse{}, fmt.Errorf("failed to build dashboard summary: %w", err)
	}

	recent, err := s.ReportRepository.GetRecentActivity(ctx, recentActivityLimit)
	if err != nil {
		return report.DashboardResponse{}, fmt.Errorf("failed to load recent activity: %w", err)
	}

	return report.DashboardResponse{
		Date:           today.Format("2006-01-02"),
		Summary:        summary,
		RecentActivity: recent,
	}, nil
}

// GenerateMonthlyReport implements report.ReportService.
func (s *ReportServiceImpl) GenerateMonthlyReport(ctx context.Context, req report.MonthlyReportRequest) (report.MonthlyReport, error) {
	students, err := s.ReportRepository.GetMonthlyReport(ctx, req.Month, req.Year)
	if err != nil {
		return report.MonthlyReport{}, fmt.Errorf("failed to build monthly report: %w", err)
	}

	periodStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)

	return report.MonthlyReport{
		PeriodMonth: req.Month,
		PeriodYear:  req.Year,
		PeriodStart: periodStart.Format("2006-01-02"),
		PeriodEnd:   periodEnd.Format("2006-01-02"),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Students:    students,
	}, nil
}

// ExportMonthlyReportCSV implements report.ReportService. One row per
// student with the monthly summary columns.
func (s *ReportServiceImpl) ExportMonthlyReportCSV(ctx context.Context, req report.MonthlyReportRequest) (report.CSVExport, error) {
	monthly, err := s.GenerateMonthlyReport(ctx, req)
	if err != nil {
		return report.CSVExport{}, err
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"student_code", "student_name", "department", "year",
		"total_days", "present_days", "late_days", "absent_days", "attendance_percentage",
	}
	if err := writer.Write(header); err != nil {
		return report.CSVExport{}, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, st := range monthly.Students {
		row := []string{
			st.StudentCode,
			st.StudentName,
			st.Department,
			strconv.Itoa(st.Year),
			strconv.Itoa(st.Summary.TotalDays),
			strconv.Itoa(st.Summary.PresentDays),
			strconv.Itoa(st.Summary.LateDays),
			strconv.Itoa(st.Summary.AbsentDays),
			strconv.Itoa(st.Summary.AttendancePercentage),
		}
		if err := writer.Write(row); err != nil {
			return report.CSVExport{}, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return report.CSVExport{}, fmt.Errorf("failed to flush csv: %w", err)
	}

	return report.CSVExport{
		Filename: fmt.Sprintf("attendance-report-%d-%02d.csv", req.Year, req.Month),
		Content:  buf.Bytes(),
	}, nil
}
