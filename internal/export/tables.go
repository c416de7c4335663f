package export

import (
	"strconv"
	"time"

	"roster/internal/audit"
	"roster/internal/records"
)

// AuditTable lays out audit entries, oldest first.
func AuditTable(entries []audit.Entry) Table {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Time.UTC().Format(time.RFC3339),
			string(e.Action),
			e.Entity,
			strconv.FormatInt(e.RecordID, 10),
			e.Key,
			e.Summary,
			e.Actor,
			e.ID,
		})
	}
	return Table{
		Title:  "Audit",
		Header: []string{"Time", "Action", "Entity", "Record ID", "Key", "Summary", "Actor", "Entry ID"},
		Rows:   rows,
	}
}

// StudentTable lays out students with their course.
func StudentTable(students []records.StudentRow) Table {
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{
			strconv.FormatInt(s.ID, 10),
			s.StudentNo,
			s.FirstName,
			s.LastName,
			s.Email,
			s.CourseCode,
			s.CourseName,
		})
	}
	return Table{
		Title:  "Students",
		Header: []string{"ID", "Student No", "First Name", "Last Name", "Email", "Course Code", "Course Name"},
		Rows:   rows,
	}
}

// CourseTable lays out courses.
func CourseTable(courses []records.Course) Table {
	rows := make([][]string, 0, len(courses))
	for _, c := range courses {
		rows = append(rows, []string{
			strconv.FormatInt(c.ID, 10),
			c.Code,
			c.Name,
			c.Lecturer,
			strconv.Itoa(c.Credits),
		})
	}
	return Table{
		Title:  "Courses",
		Header: []string{"ID", "Code", "Name", "Lecturer", "Credits"},
		Rows:   rows,
	}
}
