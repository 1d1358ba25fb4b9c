package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportRepo struct {
	summary  report.DashboardSummary
	recent   []report.ActivityEntry
	students []report.MonthlyReportStudent
}

func (f *fakeReportRepo) GetDashboardSummary(ctx context.Context, day time.Time) (report.DashboardSummary, error) {
	return f.summary, nil
}

func (f *fakeReportRepo) GetRecentActivity(ctx context.Context, limit int) ([]report.ActivityEntry, error) {
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeReportRepo) GetMonthlyReport(ctx context.Context, month, year int) ([]report.MonthlyReportStudent, error) {
	return f.students, nil
}

func TestReportService_Dashboard(t *testing.T) {
	repo := &fakeReportRepo{
		summary: report.DashboardSummary{
			TotalStudents:  40,
			PresentToday:   30,
			LateToday:      5,
			AbsentToday:    3,
			NotMarkedToday: 2,
			AttendanceRate: 88,
		},
		recent: []report.ActivityEntry{
			{StudentCode: "STU20260001", StudentName: "Ayu Lestari", Action: "check-in", OccurredAt: "2026-08-29T08:01:00Z"},
		},
	}
	svc := NewReportService(repo)

	resp, err := svc.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), resp.Date)
	assert.Equal(t, 40, resp.Summary.TotalStudents)
	assert.Equal(t, 88, resp.Summary.AttendanceRate)
	require.Len(t, resp.RecentActivity, 1)
	assert.Equal(t, "check-in", resp.RecentActivity[0].Action)
}

func TestReportService_GenerateMonthlyReport_Period(t *testing.T) {
	svc := NewReportService(&fakeReportRepo{})

	monthly, err := svc.GenerateMonthlyReport(context.Background(), report.MonthlyReportRequest{Month: 2, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, "2026-02-01", monthly.PeriodStart)
	assert.Equal(t, "2026-02-28", monthly.PeriodEnd)
	assert.Equal(t, 2, monthly.PeriodMonth)
	assert.Equal(t, 2026, monthly.PeriodYear)
}

func TestReportService_ExportMonthlyReportCSV(t *testing.T) {
	repo := &fakeReportRepo{students: []report.MonthlyReportStudent{
		{
			StudentCode: "STU20260001",
			StudentName: "Ayu Lestari",
			Department:  "Informatics",
			Year:        2,
			Summary: report.AttendanceSummary{
				TotalDays:            20,
				PresentDays:          16,
				LateDays:             2,
				AbsentDays:           2,
				AttendancePercentage: 80,
			},
		},
	}}
	svc := NewReportService(repo)

	export, err := svc.ExportMonthlyReportCSV(context.Background(), report.MonthlyReportRequest{Month: 3, Year: 2026})
	require.NoError(t, err)
	assert.Equal(t, "attendance-report-2026-03.csv", export.Filename)

	lines := strings.Split(strings.TrimSpace(string(export.Content)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "student_code,student_name,department,year,total_days,present_days,late_days,absent_days,attendance_percentage", lines[0])
	assert.Equal(t, "STU20260001,Ayu Lestari,Informatics,2,20,16,2,2,80", lines[1])
}
