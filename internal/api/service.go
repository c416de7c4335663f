package api

import (
	"context"
	"log/slog"
	"strings"

	"roster/internal/audit"
	"roster/internal/logging"
	"roster/internal/metrics"
	"roster/internal/records"
	"roster/internal/validation"
)

// Store is the subset of records.Store used by the services.
type Store interface {
	CreateCourse(ctx context.Context, course records.Course) (*records.Course, error)
	GetCourse(ctx context.Context, id int64) (*records.Course, error)
	GetCourseByCode(ctx context.Context, code string) (*records.Course, error)
	FindCourseByName(ctx context.Context, name string) (*records.Course, error)
	ListCourses(ctx context.Context) ([]records.Course, error)
	SearchCourses(ctx context.Context, term string) ([]records.Course, error)
	UpdateCourse(ctx context.Context, course records.Course) (*records.Course, error)
	DeleteCourse(ctx context.Context, id int64) (bool, error)
	CourseOptions(ctx context.Context) ([]records.CourseOption, error)
	CountStudentsInCourse(ctx context.Context, courseID int64) (int, error)

	CreateStudent(ctx context.Context, student records.Student) (*records.StudentRow, error)
	GetStudent(ctx context.Context, id int64) (*records.StudentRow, error)
	GetStudentByNumber(ctx context.Context, studentNo string) (*records.StudentRow, error)
	ListStudents(ctx context.Context) ([]records.StudentRow, error)
	SearchStudents(ctx context.Context, term string) ([]records.StudentRow, error)
	UpdateStudent(ctx context.Context, student records.Student) (*records.StudentRow, error)
	DeleteStudent(ctx context.Context, id int64) (bool, error)

	Stats(ctx context.Context) (records.Stats, error)
	CheckHealth(ctx context.Context) (records.DatabaseHealth, error)
}

// AuditLog records and reads audit entries.
type AuditLog interface {
	Append(ctx context.Context, entry audit.Entry) (audit.Entry, error)
	Read(filter audit.Filter) (audit.Result, error)
}

// Service bundles the student and course services over one store.
type Service struct {
	Students *StudentService
	Courses  *CourseService

	store  Store
	audit  AuditLog
	logger *slog.Logger
}

// New wires the services. auditLog may be nil, in which case nothing is
// audited.
func New(store Store, policy *validation.Holder, auditLog AuditLog, logger *slog.Logger) *Service {
	logger = logging.NewComponentLogger(logger, "records")
	base := &base{store: store, policy: policy, audit: auditLog, logger: logger}
	return &Service{
		Students: &StudentService{base: base},
		Courses:  &CourseService{base: base},
		store:    store,
		audit:    auditLog,
		logger:   logger,
	}
}

// Stats returns row counts and per-course enrollment.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	return FromStats(stats), nil
}

// Health runs the database diagnostics.
func (s *Service) Health(ctx context.Context) (records.DatabaseHealth, error) {
	return s.store.CheckHealth(ctx)
}

// Audit reads audit entries. A service without an audit log returns an empty result.
func (s *Service) Audit(filter audit.Filter) (audit.Result, error) {
	if s == nil || s.audit == nil {
		return audit.Result{}, nil
	}
	return s.audit.Read(filter)
}

// base carries the dependencies shared by both services.
type base struct {
	store  Store
	policy *validation.Holder
	audit  AuditLog
	logger *slog.Logger
}

func (b *base) log(ctx context.Context) *slog.Logger {
	return logging.WithContext(ctx, b.logger)
}

// record appends an audit entry. Failures are logged and counted but do not
// fail the operation that already committed.
func (b *base) record(ctx context.Context, action audit.Action, entity string, id int64, key, summary string) {
	if b.audit == nil {
		return
	}
	_, err := b.audit.Append(ctx, audit.Entry{
		Action:   action,
		Entity:   entity,
		RecordID: id,
		Key:      key,
		Summary:  summary,
	})
	if err != nil {
		metrics.AuditFailures.Inc()
		b.log(ctx).Warn("audit append failed",
			logging.String(logging.FieldEntity, entity),
			logging.String(logging.FieldAction, string(action)),
			logging.Int64("record_id", id),
			logging.Error(err),
		)
	}
}

func observe(entity, op string, err error) {
	metrics.ObserveOperation(entity, op, resultLabel(err))
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	if kind := records.Kind(err); kind != "" {
		return kind
	}
	return "error"
}

func trimmed(value string) string { return strings.TrimSpace(value) }
