package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/campustrack/attendance-backend-go/internal/domain/attendance"
	"github.com/campustrack/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepositoryImpl{db: db}
}

const attendanceColumns = `a.id, a.student_id, a.date, a.check_in, a.check_out, a.status, a.percentage,
		   a.qr_session_id, a.latitude, a.longitude, a.device_info, a.notes, a.created_at, a.updated_at`

func scanAttendance(row pgx.Row) (attendance.Attendance, error) {
	var rec attendance.Attendance
	err := row.Scan(
		&rec.ID,
		&rec.StudentID,
		&rec.Date,
		&rec.CheckIn,
		&rec.CheckOut,
		&rec.Status,
		&rec.Percentage,
		&rec.QRSessionID,
		&rec.Latitude,
		&rec.Longitude,
		&rec.DeviceInfo,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	return rec, err
}

// GetOrCreateForDate implements attendance.AttendanceRepository. The
// insert is a no-op when a record already exists, so concurrent callers
// for the same (student, day) all converge on the same row.
func (r *attendanceRepositoryImpl) GetOrCreateForDate(ctx context.Context, studentID string, date time.Time) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	insertQuery := `
		INSERT INTO attendances (student_id, date, status, percentage)
		VALUES ($1, $2, 'absent', 0)
		ON CONFLICT (student_id, date) DO NOTHING
	`
	if _, err := q.Exec(ctx, insertQuery, studentID, date); err != nil {
		return attendance.Attendance{}, err
	}

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.student_id = $1 AND a.date = $2
	`

	rec, err := scanAttendance(q.QueryRow(ctx, query, studentID, date))
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, err
	}

	return rec, nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `, s.student_code, u.name
		FROM attendances a
		INNER JOIN students s ON a.student_id = s.id
		INNER JOIN users u ON s.user_id = u.id
		WHERE a.id = $1
	`

	var rec attendance.Attendance
	err := q.QueryRow(ctx, query, id).Scan(
		&rec.ID,
		&rec.StudentID,
		&rec.Date,
		&rec.CheckIn,
		&rec.CheckOut,
		&rec.Status,
		&rec.Percentage,
		&rec.QRSessionID,
		&rec.Latitude,
		&rec.Longitude,
		&rec.DeviceInfo,
		&rec.Notes,
		&rec.CreatedAt,
		&rec.UpdatedAt,
		&rec.StudentCode,
		&rec.StudentName,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, err
	}

	return rec, nil
}

// SetCheckIn implements attendance.AttendanceRepository. The write only
// applies while check_in is still unset; the caller learns about a lost
// race through the returned bool, not an error.
func (r *attendanceRepositoryImpl) SetCheckIn(ctx context.Context, rec attendance.Attendance) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_in = $1, status = $2, percentage = $3, qr_session_id = $4,
			latitude = $5, longitude = $6, device_info = $7, updated_at = NOW()
		WHERE id = $8 AND check_in IS NULL
	`

	commandTag, err := q.Exec(ctx, query,
		rec.CheckIn,
		rec.Status,
		rec.Percentage,
		rec.QRSessionID,
		rec.Latitude,
		rec.Longitude,
		rec.DeviceInfo,
		rec.ID,
	)
	if err != nil {
		return false, err
	}
	return commandTag.RowsAffected() == 1, nil
}

// SetCheckOut implements attendance.AttendanceRepository. Guarded the
// same way: check_in must be set and check_out still unset.
func (r *attendanceRepositoryImpl) SetCheckOut(ctx context.Context, rec attendance.Attendance) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_out = $1, status = $2, percentage = $3, updated_at = NOW()
		WHERE id = $4 AND check_in IS NOT NULL AND check_out IS NULL
	`

	commandTag, err := q.Exec(ctx, query,
		rec.CheckOut,
		rec.Status,
		rec.Percentage,
		rec.ID,
	)
	if err != nil {
		return false, err
	}
	return commandTag.RowsAffected() == 1, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) Update(ctx context.Context, rec attendance.Attendance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE attendances
		SET check_in = $1, check_out = $2, status = $3, percentage = $4,
			notes = $5, updated_at = NOW()
		WHERE id = $6
	`

	commandTag, err := q.Exec(ctx, query,
		rec.CheckIn,
		rec.CheckOut,
		rec.Status,
		rec.Percentage,
		rec.Notes,
		rec.ID,
	)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.StudentID != "" {
		where += fmt.Sprintf(` AND a.student_id = $%d`, argPos)
		args = append(args, filter.StudentID)
		argPos++
	}
	if filter.StartDate != nil {
		where += fmt.Sprintf(` AND a.date >= $%d`, argPos)
		args = append(args, *filter.StartDate)
		argPos++
	}
	if filter.EndDate != nil {
		where += fmt.Sprintf(` AND a.date <= $%d`, argPos)
		args = append(args, *filter.EndDate)
		argPos++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		` + where

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + attendanceColumns + `, s.student_code, u.name
		FROM attendances a
		INNER JOIN students s ON a.student_id = s.id
		INNER JOIN users u ON s.user_id = u.id
		` + where + fmt.Sprintf(`
		ORDER BY a.date DESC
		LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var records []attendance.Attendance
	for rows.Next() {
		var rec attendance.Attendance
		err := rows.Scan(
			&rec.ID,
			&rec.StudentID,
			&rec.Date,
			&rec.CheckIn,
			&rec.CheckOut,
			&rec.Status,
			&rec.Percentage,
			&rec.QRSessionID,
			&rec.Latitude,
			&rec.Longitude,
			&rec.DeviceInfo,
			&rec.Notes,
			&rec.CreatedAt,
			&rec.UpdatedAt,
			&rec.StudentCode,
			&rec.StudentName,
		)
		if err != nil {
			return nil, 0, err
		}
		records = append(records, rec)
	}

	return records, total, nil
}

// CountByStatus implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CountByStatus(ctx context.Context, studentID string, from, to *time.Time) (attendance.StatusCounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COUNT(*),
			   COUNT(*) FILTER (WHERE status = 'present'),
			   COUNT(*) FILTER (WHERE status = 'late'),
			   COUNT(*) FILTER (WHERE status = 'absent')
		FROM attendances
		WHERE student_id = $1
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date < $3)
	`

	var counts attendance.StatusCounts
	err := q.QueryRow(ctx, query, studentID, from, to).Scan(
		&counts.TotalDays,
		&counts.PresentDays,
		&counts.LateDays,
		&counts.AbsentDays,
	)
	if err != nil {
		return attendance.StatusCounts{}, err
	}

	return counts, nil
}

// CreateAbsence implements attendance.AttendanceRepository.
func (r *attendanceRepositoryImpl) CreateAbsence(ctx context.Context, studentID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendances (student_id, date, status, percentage)
		VALUES ($1, $2, 'absent', 0)
		ON CONFLICT (student_id, date) DO NOTHING
	`

	commandTag, err := q.Exec(ctx, query, studentID, date)
	if err != nil {
		return false, err
	}
	return commandTag.RowsAffected() == 1, nil
}
