package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/leave"
	"github.com/campustrack/attendance-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
)

type LeaveServiceImpl struct {
	leave.LeaveRepository
}

func NewLeaveService(leaveRepository leave.LeaveRepository) leave.LeaveService {
	return &LeaveServiceImpl{
		LeaveRepository: leaveRepository,
	}
}

// caller identity extracted from the verified JWT claims
type caller struct {
	UserID    string
	StudentID string
	IsAdmin   bool
}

func callerFromClaims(ctx context.Context) (caller, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return caller{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	var c caller
	c.UserID, _ = claims["user_id"].(string)
	c.StudentID, _ = claims["student_id"].(string)
	role, _ := claims["role"].(string)
	c.IsAdmin = role == string(user.RoleAdmin)

	return c, nil
}

func toLeaveResponse(req leave.LeaveRequest) leave.LeaveResponse {
	resp := leave.LeaveResponse{
		ID:          req.ID,
		StudentID:   req.StudentID,
		StudentCode: req.StudentCode,
		StudentName: req.StudentName,
		StartDate:   req.StartDate.Format("2006-01-02"),
		EndDate:     req.EndDate.Format("2006-01-02"),
		Reason:      req.Reason,
		LeaveType:   string(req.LeaveType),
		Status:      string(req.Status),
		TotalDays:   req.TotalDays,
		AppliedAt:   req.AppliedAt.Format(time.RFC3339),
		AdminNotes:  req.AdminNotes,
	}
	if req.ReviewedAt != nil {
		formatted := req.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &formatted
	}
	return resp
}

// Apply implements leave.LeaveService.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
	c, err := callerFromClaims(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if c.StudentID == "" {
		return leave.LeaveResponse{}, user.ErrStudentRoleRequired
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	overlaps, err := s.LeaveRepository.HasOverlap(ctx, c.StudentID, start, end, "")
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to check leave overlap: %w", err)
	}
	if overlaps {
		return leave.LeaveResponse{}, leave.ErrLeaveOverlaps
	}

	leaveType := leave.LeaveType(req.LeaveType)
	if leaveType == "" {
		leaveType = leave.TypeOther
	}

	created, err := s.LeaveRepository.Create(ctx, leave.LeaveRequest{
		StudentID: c.StudentID,
		StartDate: start,
		EndDate:   end,
		Reason:    req.Reason,
		LeaveType: leaveType,
		Status:    leave.StatusPending,
		TotalDays: leave.TotalDaysBetween(start, end),
		AppliedAt: time.Now().UTC(),
	})
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return toLeaveResponse(created), nil
}

// ListLeaves implements leave.LeaveService.
func (s *LeaveServiceImpl) ListLeaves(ctx context.Context, filter leave.LeaveFilter) (leave.ListLeaveResponse, error) {
	c, err := callerFromClaims(ctx)
	if err != nil {
		return leave.ListLeaveResponse{}, err
	}
	if !c.IsAdmin {
		if c.StudentID == "" {
			return leave.ListLeaveResponse{}, user.ErrStudentRoleRequired
		}
		filter.StudentID = c.StudentID
	}
	filter.Normalize()

	requests, total, err := s.LeaveRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	resp := leave.ListLeaveResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		Leaves:     make([]leave.LeaveResponse, 0, len(requests)),
	}
	for _, req := range requests {
		resp.Leaves = append(resp.Leaves, toLeaveResponse(req))
	}

	return resp, nil
}

// GetLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) GetLeave(ctx context.Context, id string) (leave.LeaveResponse, error) {
	c, err := callerFromClaims(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	req, err := s.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if !c.IsAdmin && req.StudentID != c.StudentID {
		return leave.LeaveResponse{}, leave.ErrNotRequestOwner
	}

	return toLeaveResponse(req), nil
}

// UpdateLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) UpdateLeave(ctx context.Context, updateReq leave.UpdateLeaveRequest) (leave.LeaveResponse, error) {
	c, err := callerFromClaims(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}

	req, err := s.LeaveRepository.GetByID(ctx, updateReq.ID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if req.StudentID != c.StudentID {
		return leave.LeaveResponse{}, leave.ErrNotRequestOwner
	}
	if !req.IsPending() {
		return leave.LeaveResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	if updateReq.StartDate != nil {
		start, _ := time.Parse("2006-01-02", *updateReq.StartDate)
		req.StartDate = start
	}
	if updateReq.EndDate != nil {
		end, _ := time.Parse("2006-01-02", *updateReq.EndDate)
		req.EndDate = end
	}
	if req.EndDate.Before(req.StartDate) {
		return leave.LeaveResponse{}, leave.ErrInvalidDateRange
	}
	if updateReq.Reason != nil {
		req.Reason = *updateReq.Reason
	}
	if updateReq.LeaveType != nil {
		req.LeaveType = leave.LeaveType(*updateReq.LeaveType)
	}
	req.TotalDays = leave.TotalDaysBetween(req.StartDate, req.EndDate)

	overlaps, err := s.LeaveRepository.HasOverlap(ctx, c.StudentID, req.StartDate, req.EndDate, req.ID)
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to check leave overlap: %w", err)
	}
	if overlaps {
		return leave.LeaveResponse{}, leave.ErrLeaveOverlaps
	}

	if err := s.LeaveRepository.Update(ctx, req); err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	return toLeaveResponse(req), nil
}

// ReviewLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) ReviewLeave(ctx context.Context, reviewReq leave.ReviewLeaveRequest) (leave.LeaveResponse, error) {
	c, err := callerFromClaims(ctx)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if !c.IsAdmin {
		return leave.LeaveResponse{}, user.ErrAdminPrivilegeRequired
	}

	req, err := s.LeaveRepository.GetByID(ctx, reviewReq.ID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if !req.IsPending() {
		return leave.LeaveResponse{}, leave.ErrLeaveRequestAlreadyProcessed
	}

	now := time.Now().UTC()
	req.Status = leave.LeaveStatus(reviewReq.Status)
	req.ReviewedAt = &now
	req.ReviewedBy = &c.UserID
	req.AdminNotes = reviewReq.AdminNotes

	if err := s.LeaveRepository.UpdateStatus(ctx, req); err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("failed to review leave request: %w", err)
	}

	return toLeaveResponse(req), nil
}

// DeleteLeave implements leave.LeaveService.
func (s *LeaveServiceImpl) DeleteLeave(ctx context.Context, id string) error {
	c, err := callerFromClaims(ctx)
	if err != nil {
		return err
	}

	req, err := s.LeaveRepository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !c.IsAdmin {
		if req.StudentID != c.StudentID {
			return leave.ErrNotRequestOwner
		}
		if !req.IsPending() {
			return leave.ErrLeaveRequestAlreadyProcessed
		}
	}

	return s.LeaveRepository.Delete(ctx, id)
}

// Stats implements leave.LeaveService.
func (s *LeaveServiceImpl) Stats(ctx context.Context) (leave.LeaveStatsResponse, error) {
	c, err := callerFromClaims(ctx)
	if err != nil {
		return leave.LeaveStatsResponse{}, err
	}

	scope := ""
	if !c.IsAdmin {
		if c.StudentID == "" {
			return leave.LeaveStatsResponse{}, user.ErrStudentRoleRequired
		}
		scope = c.StudentID
	}

	return s.LeaveRepository.CountByStatus(ctx, scope)
}
