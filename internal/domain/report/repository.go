package report

import (
	"context"
	"time"
)

// ReportRepository defines read-only aggregate queries for dashboards
// and reports. These never mutate the ledger.
type ReportRepository interface {
	// GetDashboardSummary aggregates today's attendance, session and
	// leave counters
	GetDashboardSummary(ctx context.Context, day time.Time) (DashboardSummary, error)

	// GetRecentActivity returns the latest ledger check-ins and
	// check-outs, newest first
	GetRecentActivity(ctx context.Context, limit int) ([]ActivityEntry, error)

	// GetMonthlyReport returns every student's summary and daily logs
	// for the given month
	GetMonthlyReport(ctx context.Context, month, year int) ([]MonthlyReportStudent, error)
}
