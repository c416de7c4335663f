package records

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

const courseColumns = "id, course_code, course_name, lecturer, credits, created_at, updated_at"

const studentRowColumns = `s.id, s.student_no, s.first_name, s.last_name, s.email, s.course_id,
    s.created_at, s.updated_at, c.course_code, c.course_name`

const studentRowFrom = ` FROM students s LEFT JOIN courses c ON c.id = s.course_id`

type rowScanner interface{ Scan(dest ...any) error }

func scanCourse(scanner rowScanner) (*Course, error) {
	var (
		course     Course
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)
	if err := scanner.Scan(
		&course.ID,
		&course.Code,
		&course.Name,
		&course.Lecturer,
		&course.Credits,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		course.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		course.UpdatedAt = updated
	}
	return &course, nil
}

func scanStudentRow(scanner rowScanner) (*StudentRow, error) {
	var (
		row        StudentRow
		courseID   sql.NullInt64
		createdRaw sql.NullString
		updatedRaw sql.NullString
		courseCode sql.NullString
		courseName sql.NullString
	)
	if err := scanner.Scan(
		&row.ID,
		&row.StudentNo,
		&row.FirstName,
		&row.LastName,
		&row.Email,
		&courseID,
		&createdRaw,
		&updatedRaw,
		&courseCode,
		&courseName,
	); err != nil {
		return nil, err
	}
	if courseID.Valid {
		id := courseID.Int64
		row.CourseID = &id
	}
	row.CourseCode = courseCode.String
	row.CourseName = courseName.String
	if created, err := parseTimeString(createdRaw.String); err == nil {
		row.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		row.UpdatedAt = updated
	}
	return &row, nil
}

func collectStudentRows(rows *sql.Rows) ([]StudentRow, error) {
	defer rows.Close()
	var out []StudentRow
	for rows.Next() {
		row, err := scanStudentRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *row)
	}
	return out, rows.Err()
}

func collectCourses(rows *sql.Rows) ([]Course, error) {
	defer rows.Close()
	var out []Course
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *course)
	}
	return out, rows.Err()
}

func nullableID(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

// likePattern wraps term for a substring LIKE match with ESCAPE '\'. The
// wildcard characters and the escape character itself match literally.
func likePattern(term string) string {
	var b strings.Builder
	b.Grow(len(term) + 2)
	b.WriteByte('%')
	for _, r := range term {
		switch r {
		case '\\', '%', '_':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('%')
	return b.String()
}
