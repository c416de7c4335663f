package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// CreateStudent inserts a student and returns the stored row with its course.
func (s *Store) CreateStudent(ctx context.Context, student Student) (*StudentRow, error) {
	ts := timestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO students (student_no, first_name, last_name, email, course_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		student.StudentNo,
		student.FirstName,
		student.LastName,
		student.Email,
		nullableID(student.CourseID),
		ts,
		ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert student: %w", translateConstraint(err, "student", student.StudentNo))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetStudent(ctx, id)
}

// GetStudent fetches a student by identifier. A missing row yields ErrNotFound.
func (s *Store) GetStudent(ctx context.Context, id int64) (*StudentRow, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+studentRowColumns+studentRowFrom+` WHERE s.id = ?`, id)
	student, err := scanStudentRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get student: %w", err)
	}
	return student, nil
}

// GetStudentByNumber fetches a student by the unique student number.
func (s *Store) GetStudentByNumber(ctx context.Context, studentNo string) (*StudentRow, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+studentRowColumns+studentRowFrom+` WHERE s.student_no = ?`,
		strings.TrimSpace(studentNo),
	)
	student, err := scanStudentRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("student %q: %w", studentNo, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get student by number: %w", err)
	}
	return student, nil
}

// ListStudents returns every student ordered by student number.
func (s *Store) ListStudents(ctx context.Context) ([]StudentRow, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+studentRowColumns+studentRowFrom+` ORDER BY s.student_no, s.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return collectStudentRows(rows)
}

// SearchStudents returns students whose number, first name, last name, full
// name or email contains term. An empty term lists every student.
func (s *Store) SearchStudents(ctx context.Context, term string) ([]StudentRow, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListStudents(ctx)
	}
	pattern := likePattern(term)
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+studentRowColumns+studentRowFrom+`
         WHERE s.student_no LIKE ? ESCAPE '\'
            OR s.first_name LIKE ? ESCAPE '\'
            OR s.last_name LIKE ? ESCAPE '\'
            OR (s.first_name || ' ' || s.last_name) LIKE ? ESCAPE '\'
            OR s.email LIKE ? ESCAPE '\'
         ORDER BY s.student_no, s.id`,
		pattern, pattern, pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return collectStudentRows(rows)
}

// UpdateStudent overwrites the editable columns of an existing student.
func (s *Store) UpdateStudent(ctx context.Context, student Student) (*StudentRow, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE students
         SET student_no = ?, first_name = ?, last_name = ?, email = ?, course_id = ?, updated_at = ?
         WHERE id = ?`,
		student.StudentNo,
		student.FirstName,
		student.LastName,
		student.Email,
		nullableID(student.CourseID),
		timestamp(time.Now()),
		student.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update student: %w", translateConstraint(err, "student", student.StudentNo))
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return nil, fmt.Errorf("student %d: %w", student.ID, ErrNotFound)
	}
	return s.GetStudent(ctx, student.ID)
}

// DeleteStudent removes exactly the addressed student and reports whether a
// row was removed.
func (s *Store) DeleteStudent(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
