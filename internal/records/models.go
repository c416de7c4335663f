package records

import (
	"strings"
	"time"
)

// Course is a row in the courses table.
type Course struct {
	ID        int64
	Code      string
	Name      string
	Lecturer  string
	Credits   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Student is a row in the students table. CourseID is nil when the student
// is not enrolled, including after their course was deleted.
type Student struct {
	ID        int64
	StudentNo string
	FirstName string
	LastName  string
	Email     string
	CourseID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name, tolerating an empty last name.
func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// StudentRow is a student joined with its course for display.
type StudentRow struct {
	Student
	CourseCode string
	CourseName string
}

// CourseLabel renders the course column, or "" when unassigned.
func (r StudentRow) CourseLabel() string {
	if r.CourseCode == "" {
		return ""
	}
	return r.CourseCode + " " + r.CourseName
}

// CourseOption is one entry in the course picker used to assign students.
type CourseOption struct {
	ID   int64
	Code string
	Name string
}

// Label is the picker text, e.g. "CS101 - Intro to Programming".
func (o CourseOption) Label() string {
	return o.Code + " - " + o.Name
}

// CourseEnrollment counts students attached to one course.
type CourseEnrollment struct {
	CourseID int64
	Code     string
	Name     string
	Students int
}

// Stats summarises table sizes.
type Stats struct {
	Students   int
	Courses    int
	Unassigned int
	Enrollment []CourseEnrollment
}

// DatabaseHealth reports diagnostic information about the records database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    int64
	MissingTables    []string
	MissingColumns   []string
	IntegrityCheck   bool
	Students         int
	Courses          int
	Error            string
}

// Healthy reports whether every probe passed.
func (h DatabaseHealth) Healthy() bool {
	return h.DatabaseExists && h.DatabaseReadable && h.IntegrityCheck &&
		len(h.MissingTables) == 0 && len(h.MissingColumns) == 0 && h.Error == ""
}
