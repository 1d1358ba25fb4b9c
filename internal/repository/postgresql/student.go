package postgresql

import (
	"context"
	"fmt"

	"github.com/campustrack/attendance-backend-go/internal/domain/student"
	"github.com/campustrack/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type studentRepositoryImpl struct {
	db *database.DB
}

func NewStudentRepository(db *database.DB) student.StudentRepository {
	return &studentRepositoryImpl{db: db}
}

const studentColumns = `s.id, s.user_id, s.student_code, s.department, s.year, s.phone_number,
		   s.total_days, s.present_days, s.attendance_percentage, s.created_at, s.updated_at,
		   u.name, u.email`

func scanStudent(row pgx.Row) (student.Student, error) {
	var found student.Student
	err := row.Scan(
		&found.ID,
		&found.UserID,
		&found.StudentCode,
		&found.Department,
		&found.Year,
		&found.PhoneNumber,
		&found.TotalDays,
		&found.PresentDays,
		&found.AttendancePercentage,
		&found.CreatedAt,
		&found.UpdatedAt,
		&found.Name,
		&found.Email,
	)
	return found, err
}

// Create implements student.StudentRepository.
func (r *studentRepositoryImpl) Create(ctx context.Context, s student.Student) (student.Student, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO students (user_id, student_code, department, year, phone_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, student_code, department, year, phone_number,
				  total_days, present_days, attendance_percentage, created_at, updated_at
	`

	var created student.Student
	err := q.QueryRow(ctx, query,
		s.UserID,
		s.StudentCode,
		s.Department,
		s.Year,
		s.PhoneNumber,
	).Scan(
		&created.ID,
		&created.UserID,
		&created.StudentCode,
		&created.Department,
		&created.Year,
		&created.PhoneNumber,
		&created.TotalDays,
		&created.PresentDays,
		&created.AttendancePercentage,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		return student.Student{}, err
	}

	return created, nil
}

// GetByID implements student.StudentRepository.
func (r *studentRepositoryImpl) GetByID(ctx context.Context, id string) (student.Student, error) {
	return r.getByField(ctx, "s.id", id)
}

// GetByUserID implements student.StudentRepository.
func (r *studentRepositoryImpl) GetByUserID(ctx context.Context, userID string) (student.Student, error) {
	return r.getByField(ctx, "s.user_id", userID)
}

// GetByStudentCode implements student.StudentRepository.
func (r *studentRepositoryImpl) GetByStudentCode(ctx context.Context, code string) (student.Student, error) {
	return r.getByField(ctx, "s.student_code", code)
}

func (r *studentRepositoryImpl) getByField(ctx context.Context, field string, value string) (student.Student, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + studentColumns + `
		FROM students s
		INNER JOIN users u ON s.user_id = u.id
		WHERE ` + field + ` = $1
	`

	found, err := scanStudent(q.QueryRow(ctx, query, value))
	if err != nil {
		if err == pgx.ErrNoRows {
			return student.Student{}, student.ErrStudentNotFound
		}
		return student.Student{}, err
	}

	return found, nil
}

// List implements student.StudentRepository.
func (r *studentRepositoryImpl) List(ctx context.Context, filter student.StudentFilter) ([]student.Student, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if filter.Search != "" {
		where += fmt.Sprintf(` AND (u.name ILIKE $%d OR u.email ILIKE $%d OR s.student_code ILIKE $%d)`, argPos, argPos, argPos)
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}
	if filter.Department != "" {
		where += fmt.Sprintf(` AND s.department = $%d`, argPos)
		args = append(args, filter.Department)
		argPos++
	}
	if filter.Year != 0 {
		where += fmt.Sprintf(` AND s.year = $%d`, argPos)
		args = append(args, filter.Year)
		argPos++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM students s
		INNER JOIN users u ON s.user_id = u.id
		` + where

	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT ` + studentColumns + `
		FROM students s
		INNER JOIN users u ON s.user_id = u.id
		` + where + fmt.Sprintf(`
		ORDER BY s.student_code ASC
		LIMIT $%d OFFSET $%d`, argPos, argPos+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var students []student.Student
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, 0, err
		}
		students = append(students, s)
	}

	return students, total, nil
}

// ListIDs implements student.StudentRepository.
func (r *studentRepositoryImpl) ListIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id FROM students ORDER BY student_code ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, nil
}

// Update implements student.StudentRepository.
func (r *studentRepositoryImpl) Update(ctx context.Context, s student.Student) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE students
		SET department = $1, year = $2, phone_number = $3, updated_at = NOW()
		WHERE id = $4
	`

	commandTag, err := q.Exec(ctx, query, s.Department, s.Year, s.PhoneNumber, s.ID)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return student.ErrStudentNotFound
	}
	return nil
}

// Delete implements student.StudentRepository. Deleting the user account
// cascades to the student profile and its attendance history.
func (r *studentRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		DELETE FROM users
		WHERE id = (SELECT user_id FROM students WHERE id = $1)
	`

	commandTag, err := q.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return student.ErrStudentNotFound
	}
	return nil
}

// RecomputeStats implements student.StudentRepository. The rollup is
// always regenerated from the full attendance history in one statement;
// concurrent recomputes are idempotent and converge on the same values.
func (r *studentRepositoryImpl) RecomputeStats(ctx context.Context, studentID string) (student.Stats, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE students s
		SET total_days = agg.total,
			present_days = agg.present,
			attendance_percentage = agg.pct,
			updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS total,
				   COUNT(*) FILTER (WHERE status = 'present') AS present,
				   COALESCE(ROUND(100.0 * COUNT(*) FILTER (WHERE status = 'present') / NULLIF(COUNT(*), 0)), 0)::int AS pct
			FROM attendances
			WHERE student_id = $1
		) agg
		WHERE s.id = $1
		RETURNING s.total_days, s.present_days, s.attendance_percentage
	`

	var stats student.Stats
	err := q.QueryRow(ctx, query, studentID).Scan(
		&stats.TotalDays,
		&stats.PresentDays,
		&stats.AttendancePercentage,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return student.Stats{}, student.ErrStudentNotFound
		}
		return student.Stats{}, err
	}

	return stats, nil
}
