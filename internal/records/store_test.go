package records_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"roster/internal/records"
	"roster/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if store.Path() != cfg.DatabasePath() {
		t.Fatalf("unexpected store path %q", store.Path())
	}
	if _, err := os.Stat(cfg.DatabasePath()); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	health, err := store.CheckHealth(context.Background())
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if !health.Healthy() {
		t.Fatalf("expected healthy database, got %#v", health)
	}
	if health.SchemaVersion < 1 {
		t.Fatalf("expected schema version >= 1, got %d", health.SchemaVersion)
	}
}

func TestReopenKeepsData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := records.Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	testsupport.NewCourse(t, store, "CS101", "Intro to Programming")
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	if _, err := reopened.GetCourseByCode(context.Background(), "CS101"); err != nil {
		t.Fatalf("expected course to survive reopen: %v", err)
	}
}

func TestCreateStudentRejectsDuplicateNumber(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewStudent(t, store, "S1001", "Ada", "Lovelace", nil)

	_, err := store.CreateStudent(ctx, records.Student{
		StudentNo: "S1001",
		FirstName: "Grace",
		LastName:  "Hopper",
		Email:     "grace@example.com",
	})
	if !errors.Is(err, records.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	var constraint *records.ConstraintError
	if !errors.As(err, &constraint) {
		t.Fatalf("expected ConstraintError, got %T", err)
	}
	if constraint.Field != "student_no" {
		t.Fatalf("expected student_no field, got %q", constraint.Field)
	}
	if records.Kind(err) != "conflict" {
		t.Fatalf("expected conflict kind, got %q", records.Kind(err))
	}
}

func TestUpdateCourseRejectsDuplicateCode(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewCourse(t, store, "CS101", "Intro")
	other := testsupport.NewCourse(t, store, "MA201", "Calculus")

	other.Code = "CS101"
	_, err := store.UpdateCourse(ctx, *other)
	var constraint *records.ConstraintError
	if !errors.As(err, &constraint) || constraint.Field != "course_code" {
		t.Fatalf("expected course_code constraint error, got %v", err)
	}
}

func TestCreateCourseRejectsNegativeCredits(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.CreateCourse(context.Background(), records.Course{Code: "CS101", Name: "Intro", Lecturer: "X", Credits: -3})
	if !errors.Is(err, records.ErrCheckFailed) {
		t.Fatalf("expected check failure, got %v", err)
	}
	if records.Kind(err) != "validation" {
		t.Fatalf("expected validation kind, got %q", records.Kind(err))
	}
}

func TestCreateStudentRejectsUnknownCourse(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	missing := int64(999)
	_, err := store.CreateStudent(context.Background(), records.Student{
		StudentNo: "S1001",
		FirstName: "Ada",
		Email:     "ada@example.com",
		CourseID:  &missing,
	})
	if !errors.Is(err, records.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
}

func TestDeleteStudentRemovesExactlyOneRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.NewStudent(t, store, "S1001", "Ada", "Lovelace", nil)
	second := testsupport.NewStudent(t, store, "S1002", "Grace", "Hopper", nil)
	third := testsupport.NewStudent(t, store, "S1003", "Alan", "Turing", nil)

	removed, err := store.DeleteStudent(ctx, second.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteStudent = %v, %v", removed, err)
	}

	remaining, err := store.ListStudents(ctx)
	if err != nil {
		t.Fatalf("ListStudents failed: %v", err)
	}
	if len(remaining) != 2 || remaining[0].ID != first.ID || remaining[1].ID != third.ID {
		t.Fatalf("unexpected remaining students: %#v", remaining)
	}

	removed, err = store.DeleteStudent(ctx, second.ID)
	if err != nil || removed {
		t.Fatalf("second delete = %v, %v; want false, nil", removed, err)
	}
	if _, err := store.GetStudent(ctx, second.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSearchStudentsMatchesSubstrings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewStudent(t, store, "S1001", "Ada", "Lovelace", nil)
	testsupport.NewStudent(t, store, "S1002", "Grace", "Hopper", nil)
	testsupport.NewStudent(t, store, "S2001", "Adam", "Smith", nil)

	cases := []struct {
		term string
		want []string
	}{
		{"ada", []string{"S1001", "S2001"}},
		{"hopp", []string{"S1002"}},
		{"Ada Love", []string{"S1001"}},
		{"S100", []string{"S1001", "S1002"}},
		{"s2001@example", []string{"S2001"}},
		{"nobody", nil},
	}
	for _, tc := range cases {
		got, err := store.SearchStudents(ctx, tc.term)
		if err != nil {
			t.Fatalf("SearchStudents(%q) failed: %v", tc.term, err)
		}
		if len(got) != len(tc.want) {
			t.Fatalf("SearchStudents(%q) returned %d rows, want %d", tc.term, len(got), len(tc.want))
		}
		for i, row := range got {
			if row.StudentNo != tc.want[i] {
				t.Fatalf("SearchStudents(%q)[%d] = %s, want %s", tc.term, i, row.StudentNo, tc.want[i])
			}
		}
	}
}

func TestSearchTreatsSpecialCharactersLiterally(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewStudent(t, store, "S1001", "Ada", "Lovelace", nil)
	testsupport.NewStudent(t, store, "S1002", "Percent", "100%", nil)

	for _, term := range []string{"' OR '1'='1", "'; DROP TABLE students; --", "_", "\\"} {
		got, err := store.SearchStudents(ctx, term)
		if err != nil {
			t.Fatalf("SearchStudents(%q) failed: %v", term, err)
		}
		if len(got) != 0 {
			t.Fatalf("SearchStudents(%q) returned %d rows, want 0", term, len(got))
		}
	}

	got, err := store.SearchStudents(ctx, "%")
	if err != nil {
		t.Fatalf("SearchStudents(%%) failed: %v", err)
	}
	if len(got) != 1 || got[0].StudentNo != "S1002" {
		t.Fatalf("expected only the literal percent match, got %#v", got)
	}

	all, err := store.ListStudents(ctx)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected table intact, got %d rows (%v)", len(all), err)
	}
}

func TestSingleNameStudentRoundTrips(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	created := testsupport.NewStudent(t, store, "S1001", "Cher", "", nil)
	fetched, err := store.GetStudentByNumber(context.Background(), "S1001")
	if err != nil {
		t.Fatalf("GetStudentByNumber failed: %v", err)
	}
	if fetched.ID != created.ID || fetched.FullName() != "Cher" {
		t.Fatalf("unexpected single-name student: %#v", fetched)
	}
}

func TestDeleteCourseDetachesStudents(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	course := testsupport.NewCourse(t, store, "CS101", "Intro to Programming")
	student := testsupport.NewStudent(t, store, "S1001", "Ada", "Lovelace", course)
	if student.CourseCode != "CS101" || student.CourseLabel() != "CS101 Intro to Programming" {
		t.Fatalf("expected joined course, got %#v", student)
	}
	if n, err := store.CountStudentsInCourse(ctx, course.ID); err != nil || n != 1 {
		t.Fatalf("CountStudentsInCourse = %d, %v", n, err)
	}

	removed, err := store.DeleteCourse(ctx, course.ID)
	if err != nil || !removed {
		t.Fatalf("DeleteCourse = %v, %v", removed, err)
	}

	after, err := store.GetStudent(ctx, student.ID)
	if err != nil {
		t.Fatalf("expected student to survive course delete: %v", err)
	}
	if after.CourseID != nil || after.CourseCode != "" {
		t.Fatalf("expected student detached from course, got %#v", after)
	}
}

func TestUpdateStudentMissingRow(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	_, err := store.UpdateStudent(context.Background(), records.Student{ID: 42, StudentNo: "S1", FirstName: "X", Email: "x@example.com"})
	if !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if records.Kind(err) != "not_found" {
		t.Fatalf("expected not_found kind, got %q", records.Kind(err))
	}
}

func TestCourseLookupsAndOptions(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.NewCourse(t, store, "MA201", "calculus")
	testsupport.NewCourse(t, store, "CS101", "Algorithms")
	testsupport.NewCourse(t, store, "PH110", "Bio-Physics")

	found, err := store.FindCourseByName(ctx, "  CALCULUS ")
	if err != nil || found.Code != "MA201" {
		t.Fatalf("FindCourseByName = %#v, %v", found, err)
	}
	if _, err := store.FindCourseByName(ctx, "History"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	byCode, err := store.GetCourseByCode(ctx, " cs101 ")
	if err != nil || byCode.Code != "CS101" {
		t.Fatalf("GetCourseByCode(lowercase) = %#v, %v", byCode, err)
	}

	options, err := store.CourseOptions(ctx)
	if err != nil {
		t.Fatalf("CourseOptions failed: %v", err)
	}
	want := []string{"CS101 - Algorithms", "PH110 - Bio-Physics", "MA201 - calculus"}
	if len(options) != len(want) {
		t.Fatalf("expected %d options, got %d", len(want), len(options))
	}
	for i, opt := range options {
		if opt.Label() != want[i] {
			t.Fatalf("option %d = %q, want %q", i, opt.Label(), want[i])
		}
	}

	matches, err := store.SearchCourses(ctx, "smith")
	if err != nil || len(matches) != 3 {
		t.Fatalf("expected lecturer search to match all courses, got %d (%v)", len(matches), err)
	}
}

func TestStatsCountsRows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	course := testsupport.NewCourse(t, store, "CS101", "Intro")
	testsupport.NewCourse(t, store, "MA201", "Calculus")
	testsupport.NewStudent(t, store, "S1001", "Ada", "Lovelace", course)
	testsupport.NewStudent(t, store, "S1002", "Grace", "Hopper", nil)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Students != 2 || stats.Courses != 2 || stats.Unassigned != 1 {
		t.Fatalf("unexpected stats: %#v", stats)
	}
	if len(stats.Enrollment) != 2 || stats.Enrollment[0].Code != "CS101" || stats.Enrollment[0].Students != 1 {
		t.Fatalf("unexpected enrollment: %#v", stats.Enrollment)
	}
}
