package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/report"
	"github.com/campustrack/attendance-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	Dashboard(w http.ResponseWriter, r *http.Request)
	MonthlyReport(w http.ResponseWriter, r *http.Request)
	ExportMonthlyReportCSV(w http.ResponseWriter, r *http.Request)
}

type ReportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &ReportHandlerImpl{reportService: reportService}
}

// Dashboard implements ReportHandler.
func (h *ReportHandlerImpl) Dashboard(w http.ResponseWriter, r *http.Request) {
	dashboardResponse, err := h.reportService.Dashboard(r.Context())
	if err != nil {
		slog.Error("Dashboard service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, dashboardResponse)
}

func monthlyReportRequestFromQuery(r *http.Request) report.MonthlyReportRequest {
	now := time.Now().UTC()
	req := report.MonthlyReportRequest{
		Month: int(now.Month()),
		Year:  now.Year(),
	}
	if m := r.URL.Query().Get("month"); m != "" {
		if parsed, err := strconv.Atoi(m); err == nil {
			req.Month = parsed
		}
	}
	if y := r.URL.Query().Get("year"); y != "" {
		if parsed, err := strconv.Atoi(y); err == nil {
			req.Year = parsed
		}
	}
	return req
}

// MonthlyReport implements ReportHandler.
func (h *ReportHandlerImpl) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	reportReq := monthlyReportRequestFromQuery(r)

	// Validate DTO
	if err := reportReq.Validate(); err != nil {
		slog.Error("MonthlyReport validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	monthlyReport, err := h.reportService.GenerateMonthlyReport(r.Context(), reportReq)
	if err != nil {
		slog.Error("MonthlyReport service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, monthlyReport)
}

// ExportMonthlyReportCSV implements ReportHandler.
func (h *ReportHandlerImpl) ExportMonthlyReportCSV(w http.ResponseWriter, r *http.Request) {
	reportReq := monthlyReportRequestFromQuery(r)

	// Validate DTO
	if err := reportReq.Validate(); err != nil {
		slog.Error("ExportMonthlyReportCSV validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	export, err := h.reportService.ExportMonthlyReportCSV(r.Context(), reportReq)
	if err != nil {
		slog.Error("ExportMonthlyReportCSV service error", "error", err)
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(export.Content); err != nil {
		slog.Error("ExportMonthlyReportCSV write error", "error", err)
	}
}
