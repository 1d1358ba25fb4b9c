package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/leave"
	"github.com/campustrack/attendance-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLeaveRepo is an in-memory LeaveRepository for service tests.
type fakeLeaveRepo struct {
	requests map[string]leave.LeaveRequest
	nextID   int
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{requests: make(map[string]leave.LeaveRequest)}
}

func (f *fakeLeaveRepo) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.nextID++
	req.ID = fmt.Sprintf("leave-%d", f.nextID)
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeLeaveRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	req, ok := f.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (f *fakeLeaveRepo) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	var out []leave.LeaveRequest
	for _, req := range f.requests {
		if filter.StudentID != "" && req.StudentID != filter.StudentID {
			continue
		}
		if filter.Status != "" && string(req.Status) != filter.Status {
			continue
		}
		out = append(out, req)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLeaveRepo) HasOverlap(ctx context.Context, studentID string, start, end time.Time, excludeID string) (bool, error) {
	for _, req := range f.requests {
		if req.StudentID != studentID || req.ID == excludeID {
			continue
		}
		if req.Status == leave.StatusRejected {
			continue
		}
		if !start.After(req.EndDate) && !end.Before(req.StartDate) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLeaveRepo) Update(ctx context.Context, req leave.LeaveRequest) error {
	if _, ok := f.requests[req.ID]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	f.requests[req.ID] = req
	return nil
}

func (f *fakeLeaveRepo) UpdateStatus(ctx context.Context, req leave.LeaveRequest) error {
	stored, ok := f.requests[req.ID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	stored.Status = req.Status
	stored.ReviewedAt = req.ReviewedAt
	stored.ReviewedBy = req.ReviewedBy
	stored.AdminNotes = req.AdminNotes
	f.requests[req.ID] = stored
	return nil
}

func (f *fakeLeaveRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.requests[id]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	delete(f.requests, id)
	return nil
}

func (f *fakeLeaveRepo) CountByStatus(ctx context.Context, studentID string) (leave.LeaveStatsResponse, error) {
	var stats leave.LeaveStatsResponse
	for _, req := range f.requests {
		if studentID != "" && req.StudentID != studentID {
			continue
		}
		stats.Total++
		switch req.Status {
		case leave.StatusPending:
			stats.Pending++
		case leave.StatusApproved:
			stats.Approved++
		case leave.StatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func claimsContext(t *testing.T, claims map[string]interface{}) context.Context {
	t.Helper()
	ja := jwtauth.New("HS256", []byte("test-secret-key"), nil)
	token, _, err := ja.Encode(claims)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func studentContext(t *testing.T, studentID string) context.Context {
	return claimsContext(t, map[string]interface{}{
		"user_id":    "user-1",
		"student_id": studentID,
		"role":       "student",
	})
}

func adminContext(t *testing.T) context.Context {
	return claimsContext(t, map[string]interface{}{
		"user_id": "admin-1",
		"role":    "admin",
	})
}

func TestLeaveService_Apply_Success(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)
	ctx := studentContext(t, "student-1")

	resp, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-04",
		Reason:    "Family event out of town",
		LeaveType: "personal",
	})

	require.NoError(t, err)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, 3, resp.TotalDays)
	assert.Equal(t, "student-1", resp.StudentID)
}

func TestLeaveService_Apply_DefaultsTypeToOther(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)
	ctx := studentContext(t, "student-1")

	resp, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-02",
		Reason:    "Personal errand that cannot wait",
	})

	require.NoError(t, err)
	assert.Equal(t, "other", resp.LeaveType)
	assert.Equal(t, 1, resp.TotalDays)
}

func TestLeaveService_Apply_RejectsOverlap(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)
	ctx := studentContext(t, "student-1")

	_, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-06",
		Reason:    "First request for the week",
		LeaveType: "sick",
	})
	require.NoError(t, err)

	_, err = svc.Apply(ctx, leave.ApplyLeaveRequest{
		StartDate: "2026-03-05",
		EndDate:   "2026-03-09",
		Reason:    "Second request overlapping the first",
		LeaveType: "personal",
	})
	assert.ErrorIs(t, err, leave.ErrLeaveOverlaps)
}

func TestLeaveService_Apply_RequiresStudent(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)
	ctx := adminContext(t)

	_, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-04",
		Reason:    "Admins cannot file leave",
	})
	assert.ErrorIs(t, err, user.ErrStudentRoleRequired)
}

func TestLeaveService_ListLeaves_PinsStudentToOwnRecords(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)

	_, err := svc.Apply(studentContext(t, "student-1"), leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-03",
		Reason:    "Own request",
	})
	require.NoError(t, err)
	_, err = svc.Apply(studentContext(t, "student-2"), leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-03",
		Reason:    "Someone else's request",
	})
	require.NoError(t, err)

	// A student asking for another student's records still only sees their own
	listResp, err := svc.ListLeaves(studentContext(t, "student-1"), leave.LeaveFilter{StudentID: "student-2"})
	require.NoError(t, err)
	require.Len(t, listResp.Leaves, 1)
	assert.Equal(t, "student-1", listResp.Leaves[0].StudentID)

	// Admin sees everything
	listResp, err = svc.ListLeaves(adminContext(t), leave.LeaveFilter{})
	require.NoError(t, err)
	assert.Len(t, listResp.Leaves, 2)
}

func TestLeaveService_GetLeave_OwnerOnly(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)

	created, err := svc.Apply(studentContext(t, "student-1"), leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-03",
		Reason:    "Own request",
	})
	require.NoError(t, err)

	_, err = svc.GetLeave(studentContext(t, "student-2"), created.ID)
	assert.ErrorIs(t, err, leave.ErrNotRequestOwner)

	_, err = svc.GetLeave(adminContext(t), created.ID)
	assert.NoError(t, err)
}

func TestLeaveService_UpdateLeave_RejectsInvertedDates(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)
	ctx := studentContext(t, "student-1")

	created, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-04",
		Reason:    "Original request",
	})
	require.NoError(t, err)

	badEnd := "2026-03-01"
	_, err = svc.UpdateLeave(ctx, leave.UpdateLeaveRequest{
		ID:      created.ID,
		EndDate: &badEnd,
	})
	assert.ErrorIs(t, err, leave.ErrInvalidDateRange)
}

func TestLeaveService_ReviewLeave_ApproveThenReReviewFails(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)

	created, err := svc.Apply(studentContext(t, "student-1"), leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-04",
		Reason:    "Needs approval",
	})
	require.NoError(t, err)

	reviewed, err := svc.ReviewLeave(adminContext(t), leave.ReviewLeaveRequest{
		ID:     created.ID,
		Status: "approved",
	})
	require.NoError(t, err)
	assert.Equal(t, "approved", reviewed.Status)
	assert.NotNil(t, reviewed.ReviewedAt)

	_, err = svc.ReviewLeave(adminContext(t), leave.ReviewLeaveRequest{
		ID:     created.ID,
		Status: "rejected",
	})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)
}

func TestLeaveService_ReviewLeave_AdminOnly(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)

	created, err := svc.Apply(studentContext(t, "student-1"), leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-04",
		Reason:    "Needs approval",
	})
	require.NoError(t, err)

	_, err = svc.ReviewLeave(studentContext(t, "student-1"), leave.ReviewLeaveRequest{
		ID:     created.ID,
		Status: "approved",
	})
	assert.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)
}

func TestLeaveService_DeleteLeave_StudentOwnPendingOnly(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)
	ctx := studentContext(t, "student-1")

	created, err := svc.Apply(ctx, leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-04",
		Reason:    "To be withdrawn",
	})
	require.NoError(t, err)

	_, err = svc.ReviewLeave(adminContext(t), leave.ReviewLeaveRequest{
		ID:     created.ID,
		Status: "approved",
	})
	require.NoError(t, err)

	// Approved requests can no longer be withdrawn by the student
	err = svc.DeleteLeave(ctx, created.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyProcessed)

	// Admin can still delete
	err = svc.DeleteLeave(adminContext(t), created.ID)
	assert.NoError(t, err)
}

func TestLeaveService_Stats_ScopedToStudent(t *testing.T) {
	repo := newFakeLeaveRepo()
	svc := NewLeaveService(repo)

	_, err := svc.Apply(studentContext(t, "student-1"), leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-03",
		Reason:    "First",
	})
	require.NoError(t, err)
	_, err = svc.Apply(studentContext(t, "student-2"), leave.ApplyLeaveRequest{
		StartDate: "2026-03-02",
		EndDate:   "2026-03-03",
		Reason:    "Second",
	})
	require.NoError(t, err)

	stats, err := svc.Stats(studentContext(t, "student-1"))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
	assert.Equal(t, 1, stats.Pending)

	stats, err = svc.Stats(adminContext(t))
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}
