package student

import (
	"context"
	"fmt"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/student"
)

type StudentServiceImpl struct {
	student.StudentRepository
}

func NewStudentService(studentRepository student.StudentRepository) student.StudentService {
	return &StudentServiceImpl{
		StudentRepository: studentRepository,
	}
}

func toStudentResponse(s student.Student) student.StudentResponse {
	resp := student.StudentResponse{
		ID:                   s.ID,
		StudentCode:          s.StudentCode,
		Department:           s.Department,
		Year:                 s.Year,
		PhoneNumber:          s.PhoneNumber,
		TotalDays:            s.TotalDays,
		PresentDays:          s.PresentDays,
		AttendancePercentage: s.AttendancePercentage,
		CreatedAt:            s.CreatedAt.Format(time.RFC3339),
	}
	if s.Name != nil {
		resp.Name = *s.Name
	}
	if s.Email != nil {
		resp.Email = *s.Email
	}
	return resp
}

// ListStudents implements student.StudentService.
func (s *StudentServiceImpl) ListStudents(ctx context.Context, filter student.StudentFilter) (student.ListStudentsResponse, error) {
	filter.Normalize()

	students, total, err := s.StudentRepository.List(ctx, filter)
	if err != nil {
		return student.ListStudentsResponse{}, fmt.Errorf("failed to list students: %w", err)
	}

	resp := student.ListStudentsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		Students:   make([]student.StudentResponse, 0, len(students)),
	}
	for _, st := range students {
		resp.Students = append(resp.Students, toStudentResponse(st))
	}

	return resp, nil
}

// GetStudent implements student.StudentService.
func (s *StudentServiceImpl) GetStudent(ctx context.Context, id string) (student.StudentResponse, error) {
	studentData, err := s.StudentRepository.GetByID(ctx, id)
	if err != nil {
		return student.StudentResponse{}, err
	}
	return toStudentResponse(studentData), nil
}

// UpdateStudent implements student.StudentService.
func (s *StudentServiceImpl) UpdateStudent(ctx context.Context, req student.UpdateStudentRequest) (student.StudentResponse, error) {
	studentData, err := s.StudentRepository.GetByID(ctx, req.ID)
	if err != nil {
		return student.StudentResponse{}, err
	}

	if req.Department != nil {
		studentData.Department = *req.Department
	}
	if req.Year != nil {
		studentData.Year = *req.Year
	}
	if req.PhoneNumber != nil {
		studentData.PhoneNumber = *req.PhoneNumber
	}

	if err := s.StudentRepository.Update(ctx, studentData); err != nil {
		return student.StudentResponse{}, fmt.Errorf("failed to update student: %w", err)
	}

	return toStudentResponse(studentData), nil
}

// DeleteStudent implements student.StudentService.
func (s *StudentServiceImpl) DeleteStudent(ctx context.Context, id string) error {
	return s.StudentRepository.Delete(ctx, id)
}

// RecomputeStats implements student.StudentService.
func (s *StudentServiceImpl) RecomputeStats(ctx context.Context, studentID string) (student.Stats, error) {
	return s.StudentRepository.RecomputeStats(ctx, studentID)
}
