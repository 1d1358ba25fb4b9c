package report

import "context"

// ReportService defines business logic for the admin dashboard and
// attendance reports
type ReportService interface {
	// Dashboard returns today's attendance, session and leave summary
	Dashboard(ctx context.Context) (DashboardResponse, error)

	// GenerateMonthlyReport builds the per-student monthly report
	GenerateMonthlyReport(ctx context.Context, req MonthlyReportRequest) (MonthlyReport, error)

	// ExportMonthlyReportCSV renders the monthly report as CSV
	ExportMonthlyReportCSV(ctx context.Context, req MonthlyReportRequest) (CSVExport, error)
}
