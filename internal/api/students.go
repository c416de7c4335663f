package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"roster/internal/audit"
	"roster/internal/logging"
	"roster/internal/records"
	"roster/internal/validation"
)

const entityStudent = "student"

// StudentService exposes student operations.
type StudentService struct {
	*base
}

// Add validates in, resolves its course and inserts the student.
func (s *StudentService) Add(ctx context.Context, in StudentInput) (Student, error) {
	row, err := s.add(ctx, in)
	observe(entityStudent, "create", err)
	if err != nil {
		return Student{}, err
	}
	return FromStudentRow(row), nil
}

func (s *StudentService) add(ctx context.Context, in StudentInput) (*records.StudentRow, error) {
	fields, err := s.policy.Policy().Student(in.form(), false)
	if err != nil {
		return nil, err
	}
	course, err := s.resolveCourse(ctx, fields.Course)
	if err != nil {
		return nil, err
	}
	row, err := s.store.CreateStudent(ctx, records.Student{
		StudentNo: fields.StudentNo,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Email:     fields.Email,
		CourseID:  courseID(course),
	})
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("student added",
		logging.Int64(logging.FieldStudentID, row.ID),
		logging.String("student_no", row.StudentNo),
	)
	s.record(ctx, audit.ActionCreate, entityStudent, row.ID, row.StudentNo, row.FullName())
	return row, nil
}

// Update replaces the student's fields. Validation matches Add, except the
// course may stay empty when the student is currently unassigned.
func (s *StudentService) Update(ctx context.Context, id int64, in StudentInput) (Student, error) {
	row, err := s.update(ctx, id, in)
	observe(entityStudent, "update", err)
	if err != nil {
		return Student{}, err
	}
	return FromStudentRow(row), nil
}

func (s *StudentService) update(ctx context.Context, id int64, in StudentInput) (*records.StudentRow, error) {
	existing, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	fields, err := s.policy.Policy().Student(in.form(), existing.CourseID == nil)
	if err != nil {
		return nil, err
	}
	course, err := s.resolveCourse(ctx, fields.Course)
	if err != nil {
		return nil, err
	}
	row, err := s.store.UpdateStudent(ctx, records.Student{
		ID:        id,
		StudentNo: fields.StudentNo,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Email:     fields.Email,
		CourseID:  courseID(course),
	})
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("student updated",
		logging.Int64(logging.FieldStudentID, row.ID),
		logging.String("student_no", row.StudentNo),
	)
	s.record(ctx, audit.ActionUpdate, entityStudent, row.ID, row.StudentNo, row.FullName())
	return row, nil
}

// Delete removes the student and returns it as it was before removal.
func (s *StudentService) Delete(ctx context.Context, id int64) (Student, error) {
	row, err := s.delete(ctx, id)
	observe(entityStudent, "delete", err)
	if err != nil {
		return Student{}, err
	}
	return FromStudentRow(row), nil
}

func (s *StudentService) delete(ctx context.Context, id int64) (*records.StudentRow, error) {
	existing, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	removed, err := s.store.DeleteStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, fmt.Errorf("student %d: %w", id, records.ErrNotFound)
	}
	s.log(ctx).Info("student deleted",
		logging.Int64(logging.FieldStudentID, existing.ID),
		logging.String("student_no", existing.StudentNo),
	)
	s.record(ctx, audit.ActionDelete, entityStudent, existing.ID, existing.StudentNo, existing.FullName())
	return existing, nil
}

// Get returns one student by row id.
func (s *StudentService) Get(ctx context.Context, id int64) (Student, error) {
	row, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	return FromStudentRow(row), nil
}

// Lookup finds a student by student number, falling back to the row id when
// ref is numeric and no student carries that number.
func (s *StudentService) Lookup(ctx context.Context, ref string) (Student, error) {
	ref = trimmed(ref)
	if ref == "" {
		return Student{}, fmt.Errorf("student reference is empty: %w", records.ErrNotFound)
	}
	row, err := s.store.GetStudentByNumber(ctx, ref)
	if err == nil {
		return FromStudentRow(row), nil
	}
	if !errors.Is(err, records.ErrNotFound) {
		return Student{}, err
	}
	id, convErr := strconv.ParseInt(ref, 10, 64)
	if convErr != nil {
		return Student{}, err
	}
	return s.Get(ctx, id)
}

// List returns all students with their course.
func (s *StudentService) List(ctx context.Context) ([]Student, error) {
	rows, err := s.store.ListStudents(ctx)
	if err != nil {
		return nil, err
	}
	return FromStudentRows(rows), nil
}

// Search returns students matching term as a literal substring. An empty
// term lists everything.
func (s *StudentService) Search(ctx context.Context, term string) ([]Student, error) {
	term = trimmed(term)
	if term == "" {
		return s.List(ctx)
	}
	rows, err := s.store.SearchStudents(ctx, term)
	observe(entityStudent, "search", err)
	if err != nil {
		return nil, err
	}
	return FromStudentRows(rows), nil
}

// Rows returns the raw joined rows, used by table export.
func (s *StudentService) Rows(ctx context.Context) ([]records.StudentRow, error) {
	return s.store.ListStudents(ctx)
}

// resolveCourse maps a course reference onto a course: numeric row id first,
// then course code, then case-insensitive course name. An empty reference
// resolves to no course.
func (b *base) resolveCourse(ctx context.Context, ref string) (*records.Course, error) {
	ref = trimmed(ref)
	if ref == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		course, err := b.store.GetCourse(ctx, id)
		if err == nil {
			return course, nil
		}
		if !errors.Is(err, records.ErrNotFound) {
			return nil, err
		}
	}
	course, err := b.store.GetCourseByCode(ctx, ref)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, records.ErrNotFound) {
		return nil, err
	}
	course, err = b.store.FindCourseByName(ctx, ref)
	if err == nil {
		return course, nil
	}
	if !errors.Is(err, records.ErrNotFound) {
		return nil, err
	}
	return nil, &validation.Error{
		Message: "Invalid input.",
		Fields:  map[string]string{"course": fmt.Sprintf("unknown course %q", ref)},
	}
}

func courseID(course *records.Course) *int64 {
	if course == nil {
		return nil
	}
	id := course.ID
	return &id
}

// form converts the transport input to the validation form, splitting
// FullName when no first name was given.
func (in StudentInput) form() validation.StudentInput {
	first, last := in.FirstName, in.LastName
	if trimmed(first) == "" && trimmed(in.FullName) != "" {
		first, last = validation.SplitFullName(in.FullName)
	}
	return validation.StudentInput{
		StudentNo: in.StudentNo,
		FirstName: first,
		LastName:  last,
		Email:     in.Email,
		Course:    string(in.Course),
	}
}

// InputFromStudent prefills a form from an existing student, the way the
// edit form is populated when a row is selected.
func InputFromStudent(student Student) StudentInput {
	in := StudentInput{
		StudentNo: student.StudentNo,
		FirstName: student.FirstName,
		LastName:  student.LastName,
		Email:     student.Email,
	}
	if student.CourseID != nil {
		in.Course = Text(strconv.FormatInt(*student.CourseID, 10))
	}
	return in
}
