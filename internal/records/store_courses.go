package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// CreateCourse inserts a course and returns the stored row.
func (s *Store) CreateCourse(ctx context.Context, course Course) (*Course, error) {
	ts := timestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO courses (course_code, course_name, lecturer, credits, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		course.Code,
		course.Name,
		course.Lecturer,
		course.Credits,
		ts,
		ts,
	)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", translateConstraint(err, "course", course.Code))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCourse(ctx, id)
}

// GetCourse fetches a course by identifier. A missing row yields ErrNotFound.
func (s *Store) GetCourse(ctx context.Context, id int64) (*Course, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+courseColumns+` FROM courses WHERE id = ?`, id)
	course, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

// GetCourseByCode fetches a course by its unique code. Codes are stored
// upper-cased, so the lookup ignores case.
func (s *Store) GetCourseByCode(ctx context.Context, code string) (*Course, error) {
	row := s.db.QueryRowContext(
		ensureContext(ctx),
		`SELECT `+courseColumns+` FROM courses WHERE course_code = ? COLLATE NOCASE ORDER BY id LIMIT 1`,
		strings.ToUpper(strings.TrimSpace(code)),
	)
	course, err := scanCourse(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("course %q: %w", code, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get course by code: %w", err)
	}
	return course, nil
}

// FindCourseByName returns the first course whose name matches under Unicode
// case folding, ordered by id.
func (s *Store) FindCourseByName(ctx context.Context, name string) (*Course, error) {
	want := strings.TrimSpace(name)
	if want == "" {
		return nil, fmt.Errorf("course name is empty: %w", ErrNotFound)
	}
	courses, err := s.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	fold := cases.Fold()
	want = fold.String(want)
	for i := range courses {
		if fold.String(strings.TrimSpace(courses[i].Name)) == want {
			return &courses[i], nil
		}
	}
	return nil, fmt.Errorf("course named %q: %w", name, ErrNotFound)
}

// ListCourses returns all courses ordered by code.
func (s *Store) ListCourses(ctx context.Context) ([]Course, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), `SELECT `+courseColumns+` FROM courses ORDER BY course_code, id`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return collectCourses(rows)
}

// SearchCourses returns courses whose code, name or lecturer contains term.
// An empty term lists every course.
func (s *Store) SearchCourses(ctx context.Context, term string) ([]Course, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return s.ListCourses(ctx)
	}
	pattern := likePattern(term)
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT `+courseColumns+` FROM courses
         WHERE course_code LIKE ? ESCAPE '\'
            OR course_name LIKE ? ESCAPE '\'
            OR lecturer LIKE ? ESCAPE '\'
         ORDER BY course_code, id`,
		pattern, pattern, pattern,
	)
	if err != nil {
		return nil, fmt.Errorf("search courses: %w", err)
	}
	return collectCourses(rows)
}

// UpdateCourse overwrites the editable columns of an existing course.
func (s *Store) UpdateCourse(ctx context.Context, course Course) (*Course, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE courses
         SET course_code = ?, course_name = ?, lecturer = ?, credits = ?, updated_at = ?
         WHERE id = ?`,
		course.Code,
		course.Name,
		course.Lecturer,
		course.Credits,
		timestamp(time.Now()),
		course.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", translateConstraint(err, "course", course.Code))
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	} else if affected == 0 {
		return nil, fmt.Errorf("course %d: %w", course.ID, ErrNotFound)
	}
	return s.GetCourse(ctx, course.ID)
}

// DeleteCourse removes exactly the addressed course. Enrolled students are
// detached, not deleted. It reports whether a row was removed.
func (s *Store) DeleteCourse(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM courses WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete course: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// CourseOptions returns the ordered course picker entries.
func (s *Store) CourseOptions(ctx context.Context) ([]CourseOption, error) {
	rows, err := s.db.QueryContext(
		ensureContext(ctx),
		`SELECT id, course_code, course_name FROM courses ORDER BY course_name COLLATE NOCASE, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("course options: %w", err)
	}
	defer rows.Close()

	var options []CourseOption
	for rows.Next() {
		var opt CourseOption
		if err := rows.Scan(&opt.ID, &opt.Code, &opt.Name); err != nil {
			return nil, err
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

// CountStudentsInCourse returns how many students reference the course.
func (s *Store) CountStudentsInCourse(ctx context.Context, courseID int64) (int, error) {
	var count int
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT COUNT(1) FROM students WHERE course_id = ?`, courseID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count students in course: %w", err)
	}
	return count, nil
}
