// Package seed imports courses and students from a YAML document through the
// service layer, so seeded rows are validated and audited like manual edits.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"roster/internal/api"
	"roster/internal/logging"
	"roster/internal/records"
)

// Document is the seed file layout.
type Document struct {
	Courses  []Course  `yaml:"courses"`
	Students []Student `yaml:"students"`
}

// Course is one seeded course. Credits is kept as text so malformed values
// fail validation with a field message.
type Course struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Lecturer string `yaml:"lecturer"`
	Credits  string `yaml:"credits"`
}

// Student is one seeded student. Course holds a course code, id or name.
type Student struct {
	StudentNo string `yaml:"student_no"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Course    string `yaml:"course"`
}

// Options controls duplicate handling.
type Options struct {
	SkipExisting bool
}

// Report counts imported and skipped rows.
type Report struct {
	CoursesCreated  int `json:"coursesCreated"`
	CoursesSkipped  int `json:"coursesSkipped"`
	StudentsCreated int `json:"studentsCreated"`
	StudentsSkipped int `json:"studentsSkipped"`
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, nil
		}
		return Document{}, fmt.Errorf("parse seed: %w", err)
	}
	return doc, nil
}

// LoadFile reads and parses the seed document at path.
func LoadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Importer applies seed documents.
type Importer struct {
	service *api.Service
	logger  *slog.Logger
}

// NewImporter returns an Importer writing through service.
func NewImporter(service *api.Service, logger *slog.Logger) *Importer {
	return &Importer{service: service, logger: logging.NewComponentLogger(logger, "seed")}
}

// Import creates courses first, then students, so students can reference
// courses from the same document. With SkipExisting a duplicate row is
// counted and skipped; otherwise the first error aborts the import and the
// partial report is returned alongside it.
func (i *Importer) Import(ctx context.Context, doc Document, opts Options) (Report, error) {
	var report Report
	for idx, c := range doc.Courses {
		_, err := i.service.Courses.Add(ctx, api.CourseInput{
			Code:     c.Code,
			Name:     c.Name,
			Lecturer: c.Lecturer,
			Credits:  api.Text(c.Credits),
		})
		switch {
		case err == nil:
			report.CoursesCreated++
		case opts.SkipExisting && errors.Is(err, records.ErrDuplicate):
			report.CoursesSkipped++
			i.logger.Debug("seed course skipped", logging.String("course_code", c.Code))
		default:
			return report, fmt.Errorf("course #%d (%s): %w", idx+1, c.Code, err)
		}
	}
	for idx, s := range doc.Students {
		_, err := i.service.Students.Add(ctx, api.StudentInput{
			StudentNo: s.StudentNo,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Email:     s.Email,
			Course:    api.Text(s.Course),
		})
		switch {
		case err == nil:
			report.StudentsCreated++
		case opts.SkipExisting && errors.Is(err, records.ErrDuplicate):
			report.StudentsSkipped++
			i.logger.Debug("seed student skipped", logging.String("student_no", s.StudentNo))
		default:
			return report, fmt.Errorf("student #%d (%s): %w", idx+1, s.StudentNo, err)
		}
	}
	i.logger.Info("seed import complete",
		logging.Int64("courses_created", int64(report.CoursesCreated)),
		logging.Int64("courses_skipped", int64(report.CoursesSkipped)),
		logging.Int64("students_created", int64(report.StudentsCreated)),
		logging.Int64("students_skipped", int64(report.StudentsSkipped)),
	)
	return report, nil
}
