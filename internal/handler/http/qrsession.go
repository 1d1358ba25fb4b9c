package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/qrsession"
	"github.com/campustrack/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type QRSessionHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	Validate(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Deactivate(w http.ResponseWriter, r *http.Request)
	Stats(w http.ResponseWriter, r *http.Request)
	Cleanup(w http.ResponseWriter, r *http.Request)
}

type QRSessionHandlerImpl struct {
	sessionService qrsession.SessionService
}

func NewQRSessionHandler(sessionService qrsession.SessionService) QRSessionHandler {
	return &QRSessionHandlerImpl{sessionService: sessionService}
}

// Generate implements QRSessionHandler.
func (h *QRSessionHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var generateReq qrsession.GenerateSessionRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&generateReq); err != nil {
		slog.Error("Generate decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Validate DTO
	generateReq.ApplyDefaults()
	if err := generateReq.Validate(); err != nil {
		slog.Error("Generate validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	// Call service
	generateResponse, err := h.sessionService.Generate(r.Context(), generateReq)
	if err != nil {
		slog.Error("Generate service error", "error", err)
		response.HandleError(w, err)
		return
	}

	// Success response
	slog.Info("QR session generated", "session_type", generateReq.SessionType)
	response.Created(w, "QR session generated successfully", generateResponse)
}

// Validate implements QRSessionHandler.
func (h *QRSessionHandlerImpl) Validate(w http.ResponseWriter, r *http.Request) {
	var validateReq qrsession.ValidateSessionRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&validateReq); err != nil {
		slog.Error("Validate decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	// Validate DTO
	if err := validateReq.Validate(); err != nil {
		slog.Error("Validate validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	// Call service
	validateResponse, err := h.sessionService.ValidateCode(r.Context(), validateReq)
	if err != nil {
		slog.Error("Validate service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, validateResponse)
}

// List implements QRSessionHandler.
func (h *QRSessionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter qrsession.SessionFilter

	if sessionType := r.URL.Query().Get("session_type"); sessionType != "" {
		filter.SessionType = sessionType
	}
	if active := r.URL.Query().Get("is_active"); active != "" {
		if parsed, err := strconv.ParseBool(active); err == nil {
			filter.IsActive = &parsed
		}
	}
	if p := r.URL.Query().Get("page"); p != "" {
		if pageNum, err := strconv.Atoi(p); err == nil && pageNum > 0 {
			filter.Page = pageNum
		}
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if limitNum, err := strconv.Atoi(l); err == nil && limitNum > 0 {
			filter.Limit = limitNum
		}
	}

	listResponse, err := h.sessionService.ListSessions(r.Context(), filter)
	if err != nil {
		slog.Error("List service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, listResponse.Sessions, &response.Meta{
		Page:       listResponse.Page,
		Limit:      listResponse.Limit,
		TotalItems: listResponse.TotalCount,
		TotalPages: listResponse.TotalPages,
	})
}

// GetByID implements QRSessionHandler.
func (h *QRSessionHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sessionResponse, err := h.sessionService.GetSession(r.Context(), id)
	if err != nil {
		slog.Error("GetByID service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, sessionResponse)
}

// Deactivate implements QRSessionHandler.
func (h *QRSessionHandlerImpl) Deactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	sessionResponse, err := h.sessionService.Deactivate(r.Context(), id)
	if err != nil {
		slog.Error("Deactivate service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("QR session deactivated", "session_id", id)
	response.SuccessWithMessage(w, "QR session deactivated successfully", sessionResponse)
}

// Stats implements QRSessionHandler.
func (h *QRSessionHandlerImpl) Stats(w http.ResponseWriter, r *http.Request) {
	var statsRange qrsession.StatsRange

	if from := r.URL.Query().Get("from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			statsRange.From = &parsed
		}
	}
	if to := r.URL.Query().Get("to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			statsRange.To = &parsed
		}
	}

	statsResponse, err := h.sessionService.Stats(r.Context(), statsRange)
	if err != nil {
		slog.Error("Stats service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, statsResponse)
}

// Cleanup implements QRSessionHandler.
func (h *QRSessionHandlerImpl) Cleanup(w http.ResponseWriter, r *http.Request) {
	cleanupResponse, err := h.sessionService.Cleanup(r.Context())
	if err != nil {
		slog.Error("Cleanup service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Expired QR sessions cleaned up", "deleted_count", cleanupResponse.DeletedCount)
	response.SuccessWithMessage(w, "Expired sessions cleaned up", cleanupResponse)
}
