package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/leave"
	"github.com/campustrack/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRepository(db *database.DB) leave.LeaveRepository {
	return &leaveRepositoryImpl{db: db}
}

const leaveColumns = `lr.id, lr.student_id, lr.start_date, lr.end_date, lr.reason, lr.leave_type,
		   lr.status, lr.total_days, lr.applied_at, lr.reviewed_at, lr.reviewed_by, lr.admin_notes,
		   lr.created_at, lr.updated_at`

// Create implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			student_id, start_date, end_date, reason, leave_type, status, total_days, applied_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, student_id, start_date, end_date, reason, leave_type, status, total_days,
				  applied_at, reviewed_at, reviewed_by, admin_notes, created_at, updated_at
	`

	var created leave.LeaveRequest
	err := q.QueryRow(ctx, query,
		req.StudentID,
		req.StartDate,
		req.EndDate,
		req.Reason,
		req.LeaveType,
		req.Status,
		req.TotalDays,
		req.AppliedAt,
	).Scan(
		&created.ID,
		&created.StudentID,
		&created.StartDate,
		&created.EndDate,
		&created.Reason,
		&created.LeaveType,
		&created.Status,
		&created.TotalDays,
		&created.AppliedAt,
		&created.ReviewedAt,
		&created.ReviewedBy,
		&created.AdminNotes,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return created, nil
}

// GetByID implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + leaveColumns + `, s.student_code, u.name
		FROM leave_requests lr
		INNER JOIN students s ON lr.student_id = s.id
		INNER JOIN users u ON s.user_id = u.id
		WHERE lr.id = $1
	`

	var req leave.LeaveRequest
	err := q.QueryRow(ctx, query, id).Scan(
		&req.ID,
		&req.StudentID,
		&req.StartDate,
		&req.EndDate,
		&req.Reason,
		&req.LeaveType,
		&req.Status,
		&req.TotalDays,
		&req.AppliedAt,
		&req.ReviewedAt,
		&req.ReviewedBy,
		&req.AdminNotes,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.StudentCode,
		&req.StudentName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}

	return req, nil
}

// List implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) List(ctx context.Context, filter leave.LeaveFilter) ([]leave.LeaveRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.StudentID != "" {
		where += fmt.Sprintf(` AND lr.student_id = $%d`, argPos)
		args = append(args, filter.StudentID)
		argPos++
	}
	if filter.Status != "" {
		where += fmt.Sprintf(` AND lr.status = $%d`, argPos)
		args = append(args, filter.Status)
		argPos++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM leave_requests lr
		` + where

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + leaveColumns + `, s.student_code, u.name
		FROM leave_requests lr
		INNER JOIN students s ON lr.student_id = s.id
		INNER JOIN users u ON s.user_id = u.id
		` + where + fmt.Sprintf(`
		ORDER BY lr.applied_at DESC
		LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var req leave.LeaveRequest
		err := rows.Scan(
			&req.ID,
			&req.StudentID,
			&req.StartDate,
			&req.EndDate,
			&req.Reason,
			&req.LeaveType,
			&req.Status,
			&req.TotalDays,
			&req.AppliedAt,
			&req.ReviewedAt,
			&req.ReviewedBy,
			&req.AdminNotes,
			&req.CreatedAt,
			&req.UpdatedAt,
			&req.StudentCode,
			&req.StudentName,
		)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, req)
	}

	return requests, total, nil
}

// HasOverlap implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) HasOverlap(ctx context.Context, studentID string, start, end time.Time, excludeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE student_id = $1
			  AND status IN ('pending', 'approved')
			  AND start_date <= $3
			  AND end_date >= $2
			  AND ($4 = '' OR id::text != $4)
		)
	`

	var exists bool
	err := q.QueryRow(ctx, query, studentID, start, end, excludeID).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// Update implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) Update(ctx context.Context, req leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET start_date = $1, end_date = $2, reason = $3, leave_type = $4,
			total_days = $5, updated_at = NOW()
		WHERE id = $6
	`

	commandTag, err := q.Exec(ctx, query,
		req.StartDate,
		req.EndDate,
		req.Reason,
		req.LeaveType,
		req.TotalDays,
		req.ID,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// UpdateStatus implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) UpdateStatus(ctx context.Context, req leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $1, reviewed_at = $2, reviewed_by = $3, admin_notes = $4, updated_at = NOW()
		WHERE id = $5
	`

	commandTag, err := q.Exec(ctx, query,
		req.Status,
		req.ReviewedAt,
		req.ReviewedBy,
		req.AdminNotes,
		req.ID,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// Delete implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM leave_requests
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// CountByStatus implements leave.LeaveRepository.
func (r *leaveRepositoryImpl) CountByStatus(ctx context.Context, studentID string) (leave.LeaveStatsResponse, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE status = 'pending'),
			   COUNT(*) FILTER (WHERE status = 'approved'),
			   COUNT(*) FILTER (WHERE status = 'rejected')
		FROM leave_requests
		WHERE ($1 = '' OR student_id::text = $1)
	`

	var stats leave.LeaveStatsResponse
	err := q.QueryRow(ctx, query, studentID).Scan(
		&stats.Total,
		&stats.Pending,
		&stats.Approved,
		&stats.Rejected,
	)
	if err != nil {
		return leave.LeaveStatsResponse{}, err
	}

	return stats, nil
}
