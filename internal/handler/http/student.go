package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/campustrack/attendance-backend-go/internal/domain/student"
	"github.com/campustrack/attendance-backend-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type StudentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
}

type StudentHandlerImpl struct {
	studentService student.StudentService
}

func NewStudentHandler(studentService student.StudentService) StudentHandler {
	return &StudentHandlerImpl{studentService: studentService}
}

// List implements StudentHandler.
func (h *StudentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var filter student.StudentFilter

	if search := r.URL.Query().Get("q"); search != "" {
		filter.Search = search
	}
	if department := r.URL.Query().Get("department"); department != "" {
		filter.Department = department
	}
	if year := r.URL.Query().Get("year"); year != "" {
		if parsed, err := strconv.Atoi(year); err == nil && parsed > 0 {
			filter.Year = parsed
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

	listResponse, err := h.studentService.ListStudents(r.Context(), filter)
	if err != nil {
		slog.Error("List service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, listResponse.Students, &response.Meta{
		Page:       listResponse.Page,
		Limit:      listResponse.Limit,
		TotalItems: listResponse.TotalCount,
		TotalPages: listResponse.TotalPages,
	})
}

// GetByID implements StudentHandler.
func (h *StudentHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	studentResponse, err := h.studentService.GetStudent(r.Context(), id)
	if err != nil {
		slog.Error("GetByID service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, studentResponse)
}

// Update implements StudentHandler.
func (h *StudentHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var updateReq student.UpdateStudentRequest

	// 1. Decode JSON
	if err := json.NewDecoder(r.Body).Decode(&updateReq); err != nil {
		slog.Error("Update decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	updateReq.ID = chi.URLParam(r, "id")

	// Validate DTO
	if err := updateReq.Validate(); err != nil {
		slog.Error("Update validate error", "error", err)
		response.HandleError(w, err)
		return
	}

	// Call service
	studentResponse, err := h.studentService.UpdateStudent(r.Context(), updateReq)
	if err != nil {
		slog.Error("Update service error", "error", err)
		response.HandleError(w, err)
		return
	}

	// Success response
	response.SuccessWithMessage(w, "Student updated successfully", studentResponse)
}

// Delete implements StudentHandler.
func (h *StudentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.studentService.DeleteStudent(r.Context(), id); err != nil {
		slog.Error("Delete service error", "error", err)
		response.HandleError(w, err)
		return
	}

	slog.Info("Student deleted", "student_id", id)
	response.SuccessWithMessage(w, "Student deleted successfully", nil)
}
