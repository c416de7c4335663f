package seed_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roster/internal/api"
	"roster/internal/audit"
	"roster/internal/logging"
	"roster/internal/records"
	"roster/internal/seed"
	"roster/internal/testsupport"
	"roster/internal/validation"
)

const sampleSeed = `
courses:
  - code: CS101
    name: Intro to Programming
    lecturer: Dr. Smith
    credits: 3
  - code: MA201
    name: Linear Algebra
    lecturer: Prof. Noether
    credits: "4"
students:
  - student_no: "1001"
    first_name: Ada
    last_name: Lovelace
    email: ada@example.com
    course: CS101
  - student_no: "1002"
    first_name: Cher
    email: cher@example.com
    course: linear algebra
`

func newImporter(t *testing.T) (*seed.Importer, *api.Service) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	service := api.New(store, validation.NewHolder(validation.MustPolicy(cfg.Validation)), audit.New(cfg.AuditLogPath()), logging.NewNop())
	return seed.NewImporter(service, logging.NewNop()), service
}

func TestImportCreatesCoursesThenStudents(t *testing.T) {
	importer, service := newImporter(t)
	doc, err := seed.Parse(strings.NewReader(sampleSeed))
	require.NoError(t, err)

	report, err := importer.Import(context.Background(), doc, seed.Options{})
	require.NoError(t, err)
	assert.Equal(t, seed.Report{CoursesCreated: 2, StudentsCreated: 2}, report)

	students, err := service.Students.List(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	byNo := map[string]api.Student{}
	for _, s := range students {
		byNo[s.StudentNo] = s
	}
	assert.Equal(t, "CS101", byNo["1001"].CourseCode)
	assert.Equal(t, "MA201", byNo["1002"].CourseCode)
	assert.Equal(t, "Cher", byNo["1002"].FullName)

	entries, err := service.Audit(audit.Filter{Action: audit.ActionCreate})
	require.NoError(t, err)
	assert.Len(t, entries.Entries, 4)
}

func TestImportSkipExisting(t *testing.T) {
	importer, _ := newImporter(t)
	doc, err := seed.Parse(strings.NewReader(sampleSeed))
	require.NoError(t, err)
	ctx := context.Background()

	_, err = importer.Import(ctx, doc, seed.Options{})
	require.NoError(t, err)

	report, err := importer.Import(ctx, doc, seed.Options{SkipExisting: true})
	require.NoError(t, err)
	assert.Equal(t, seed.Report{CoursesSkipped: 2, StudentsSkipped: 2}, report)

	report, err = importer.Import(ctx, doc, seed.Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, records.ErrDuplicate))
	assert.Contains(t, err.Error(), "course #1 (CS101)")
	assert.Zero(t, report.CoursesCreated)
}

func TestImportStopsOnInvalidRow(t *testing.T) {
	importer, service := newImporter(t)
	doc := seed.Document{
		Courses: []seed.Course{{Code: "CS101", Name: "Intro", Lecturer: "Dr. Smith", Credits: "3"}},
		Students: []seed.Student{
			{StudentNo: "1001", FirstName: "Ada", Email: "ada@example.com", Course: "CS101"},
			{StudentNo: "1002", FirstName: "Bad", Email: "invalid-email", Course: "CS101"},
			{StudentNo: "1003", FirstName: "Never", Email: "never@example.com", Course: "CS101"},
		},
	}

	report, err := importer.Import(context.Background(), doc, seed.Options{SkipExisting: true})
	require.Error(t, err)
	assert.Equal(t, "validation", records.Kind(err))
	assert.Equal(t, 1, report.StudentsCreated)

	students, err := service.Students.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := seed.Parse(strings.NewReader("courses:\n  - code: CS101\n    teacher: Nobody\n"))
	require.Error(t, err)
}

func TestLoadFileEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	doc, err := seed.LoadFile(path)
	require.NoError(t, err)
	assert.Empty(t, doc.Courses)
	assert.Empty(t, doc.Students)

	_, err = seed.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
