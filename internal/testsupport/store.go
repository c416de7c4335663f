package testsupport

import (
	"context"
	"testing"

	"roster/internal/config"
	"roster/internal/records"
)

// MustOpenStore opens a records.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *records.Store {
	t.Helper()

	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("records.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewCourse inserts a course with fixed lecturer and credits.
func NewCourse(t testing.TB, store *records.Store, code, name string) *records.Course {
	t.Helper()

	course, err := store.CreateCourse(context.Background(), records.Course{
		Code:     code,
		Name:     name,
		Lecturer: "Dr. Smith",
		Credits:  3,
	})
	if err != nil {
		t.Fatalf("store.CreateCourse: %v", err)
	}
	return course
}

// NewStudent inserts a student enrolled in course (which may be nil).
func NewStudent(t testing.TB, store *records.Store, studentNo, first, last string, course *records.Course) *records.StudentRow {
	t.Helper()

	student := records.Student{
		StudentNo: studentNo,
		FirstName: first,
		LastName:  last,
		Email:     studentNo + "@example.com",
	}
	if course != nil {
		id := course.ID
		student.CourseID = &id
	}
	row, err := store.CreateStudent(context.Background(), student)
	if err != nil {
		t.Fatalf("store.CreateStudent: %v", err)
	}
	return row
}
