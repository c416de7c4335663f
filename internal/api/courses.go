package api

import (
	"context"
	"errors"
	"fmt"

	"roster/internal/audit"
	"roster/internal/logging"
	"roster/internal/records"
	"roster/internal/validation"
)

const entityCourse = "course"

// CourseService exposes course operations.
type CourseService struct {
	*base
}

// Add validates in and inserts the course.
func (s *CourseService) Add(ctx context.Context, in CourseInput) (Course, error) {
	course, err := s.add(ctx, in)
	observe(entityCourse, "create", err)
	if err != nil {
		return Course{}, err
	}
	return FromCourse(course), nil
}

func (s *CourseService) add(ctx context.Context, in CourseInput) (*records.Course, error) {
	fields, err := s.policy.Policy().Course(in.form())
	if err != nil {
		return nil, err
	}
	course, err := s.store.CreateCourse(ctx, records.Course{
		Code:     fields.Code,
		Name:     fields.Name,
		Lecturer: fields.Lecturer,
		Credits:  fields.Credits,
	})
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("course added",
		logging.Int64(logging.FieldCourseID, course.ID),
		logging.String("course_code", course.Code),
	)
	s.record(ctx, audit.ActionCreate, entityCourse, course.ID, course.Code, course.Name)
	return course, nil
}

// Update replaces the course's fields after the same validation as Add.
func (s *CourseService) Update(ctx context.Context, id int64, in CourseInput) (Course, error) {
	course, err := s.update(ctx, id, in)
	observe(entityCourse, "update", err)
	if err != nil {
		return Course{}, err
	}
	return FromCourse(course), nil
}

func (s *CourseService) update(ctx context.Context, id int64, in CourseInput) (*records.Course, error) {
	if _, err := s.store.GetCourse(ctx, id); err != nil {
		return nil, err
	}
	fields, err := s.policy.Policy().Course(in.form())
	if err != nil {
		return nil, err
	}
	course, err := s.store.UpdateCourse(ctx, records.Course{
		ID:       id,
		Code:     fields.Code,
		Name:     fields.Name,
		Lecturer: fields.Lecturer,
		Credits:  fields.Credits,
	})
	if err != nil {
		return nil, err
	}
	s.log(ctx).Info("course updated",
		logging.Int64(logging.FieldCourseID, course.ID),
		logging.String("course_code", course.Code),
	)
	s.record(ctx, audit.ActionUpdate, entityCourse, course.ID, course.Code, course.Name)
	return course, nil
}

// Delete removes the course. Students enrolled in it are detached, and the
// number detached is reported.
func (s *CourseService) Delete(ctx context.Context, id int64) (CourseDeletion, error) {
	out, err := s.delete(ctx, id)
	observe(entityCourse, "delete", err)
	return out, err
}

func (s *CourseService) delete(ctx context.Context, id int64) (CourseDeletion, error) {
	existing, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return CourseDeletion{}, err
	}
	enrolled, err := s.store.CountStudentsInCourse(ctx, id)
	if err != nil {
		return CourseDeletion{}, err
	}
	removed, err := s.store.DeleteCourse(ctx, id)
	if err != nil {
		return CourseDeletion{}, err
	}
	if !removed {
		return CourseDeletion{}, fmt.Errorf("course %d: %w", id, records.ErrNotFound)
	}
	s.log(ctx).Info("course deleted",
		logging.Int64(logging.FieldCourseID, existing.ID),
		logging.String("course_code", existing.Code),
		logging.Int64("detached_students", int64(enrolled)),
	)
	s.record(ctx, audit.ActionDelete, entityCourse, existing.ID, existing.Code, existing.Name)
	return CourseDeletion{Course: FromCourse(existing), Detached: enrolled}, nil
}

// Get returns one course by row id.
func (s *CourseService) Get(ctx context.Context, id int64) (Course, error) {
	course, err := s.store.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	return FromCourse(course), nil
}

// Lookup resolves a course by id, code or name.
func (s *CourseService) Lookup(ctx context.Context, ref string) (Course, error) {
	course, err := s.resolveCourse(ctx, ref)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			return Course{}, fmt.Errorf("course %q: %w", trimmed(ref), records.ErrNotFound)
		}
		return Course{}, err
	}
	if course == nil {
		return Course{}, fmt.Errorf("course reference is empty: %w", records.ErrNotFound)
	}
	return FromCourse(course), nil
}

// List returns every course ordered by code.
func (s *CourseService) List(ctx context.Context) ([]Course, error) {
	courses, err := s.store.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	return FromCourses(courses), nil
}

// Search matches code, name and lecturer. An empty term lists everything.
func (s *CourseService) Search(ctx context.Context, term string) ([]Course, error) {
	term = trimmed(term)
	if term == "" {
		return s.List(ctx)
	}
	courses, err := s.store.SearchCourses(ctx, term)
	observe(entityCourse, "search", err)
	if err != nil {
		return nil, err
	}
	return FromCourses(courses), nil
}

// Options returns the course picker entries ordered by name.
func (s *CourseService) Options(ctx context.Context) ([]CourseOption, error) {
	options, err := s.store.CourseOptions(ctx)
	if err != nil {
		return nil, err
	}
	return FromCourseOptions(options), nil
}

// Rows returns the raw course rows, used by table export.
func (s *CourseService) Rows(ctx context.Context) ([]records.Course, error) {
	return s.store.ListCourses(ctx)
}

func (in CourseInput) form() validation.CourseInput {
	return validation.CourseInput{
		Code:     in.Code,
		Name:     in.Name,
		Lecturer: in.Lecturer,
		Credits:  string(in.Credits),
	}
}

// InputFromCourse prefills a form from an existing course.
func InputFromCourse(course Course) CourseInput {
	return CourseInput{
		Code:     course.Code,
		Name:     course.Name,
		Lecturer: course.Lecturer,
		Credits:  TextInt(course.Credits),
	}
}
