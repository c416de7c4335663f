package api

import (
	"time"

	"roster/internal/audit"
	"roster/internal/records"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}

// FromStudentRow converts a joined student row to its API representation.
func FromStudentRow(row *records.StudentRow) Student {
	if row == nil {
		return Student{}
	}
	dto := Student{
		ID:         row.ID,
		StudentNo:  row.StudentNo,
		FirstName:  row.FirstName,
		LastName:   row.LastName,
		FullName:   row.FullName(),
		Email:      row.Email,
		CourseCode: row.CourseCode,
		CourseName: row.CourseName,
		CreatedAt:  formatTime(row.CreatedAt),
		UpdatedAt:  formatTime(row.UpdatedAt),
	}
	if row.CourseID != nil {
		id := *row.CourseID
		dto.CourseID = &id
	}
	return dto
}

// FromStudentRows converts a slice of rows.
func FromStudentRows(rows []records.StudentRow) []Student {
	out := make([]Student, 0, len(rows))
	for i := range rows {
		out = append(out, FromStudentRow(&rows[i]))
	}
	return out
}

// FromCourse converts a course row.
func FromCourse(course *records.Course) Course {
	if course == nil {
		return Course{}
	}
	return Course{
		ID:        course.ID,
		Code:      course.Code,
		Name:      course.Name,
		Lecturer:  course.Lecturer,
		Credits:   course.Credits,
		CreatedAt: formatTime(course.CreatedAt),
		UpdatedAt: formatTime(course.UpdatedAt),
	}
}

// FromCourses converts a slice of courses.
func FromCourses(courses []records.Course) []Course {
	out := make([]Course, 0, len(courses))
	for i := range courses {
		out = append(out, FromCourse(&courses[i]))
	}
	return out
}

// FromCourseOptions converts picker entries.
func FromCourseOptions(options []records.CourseOption) []CourseOption {
	out := make([]CourseOption, 0, len(options))
	for _, opt := range options {
		out = append(out, CourseOption{ID: opt.ID, Code: opt.Code, Name: opt.Name, Label: opt.Label()})
	}
	return out
}

// FromStats converts record stats.
func FromStats(stats records.Stats) Stats {
	dto := Stats{
		Students:   stats.Students,
		Courses:    stats.Courses,
		Unassigned: stats.Unassigned,
		Enrollment: make([]Enrollment, 0, len(stats.Enrollment)),
	}
	for _, e := range stats.Enrollment {
		dto.Enrollment = append(dto.Enrollment, Enrollment{CourseID: e.CourseID, Code: e.Code, Name: e.Name, Students: e.Students})
	}
	return dto
}

// FromAuditEntries converts audit lines.
func FromAuditEntries(entries []audit.Entry) []AuditEntry {
	out := make([]AuditEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, AuditEntry{
			ID:       e.ID,
			Time:     formatTime(e.Time),
			Action:   string(e.Action),
			Entity:   e.Entity,
			RecordID: e.RecordID,
			Key:      e.Key,
			Summary:  e.Summary,
			Actor:    e.Actor,
		})
	}
	return out
}

// FromDatabaseHealth converts database diagnostics.
func FromDatabaseHealth(h records.DatabaseHealth) DatabaseHealth {
	return DatabaseHealth{
		Path:           h.DBPath,
		Exists:         h.DatabaseExists,
		Readable:       h.DatabaseReadable,
		SchemaVersion:  h.SchemaVersion,
		MissingTables:  append([]string(nil), h.MissingTables...),
		MissingColumns: append([]string(nil), h.MissingColumns...),
		IntegrityOK:    h.IntegrityCheck,
		Students:       h.Students,
		Courses:        h.Courses,
		Error:          h.Error,
		Healthy:        h.Healthy(),
	}
}
