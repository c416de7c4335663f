package records

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an addressed row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate marks a uniqueness violation (student_no, course_code).
	ErrDuplicate = errors.New("duplicate value")
	// ErrInvalidReference marks a foreign key pointing at a missing row.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrCheckFailed marks a CHECK constraint violation.
	ErrCheckFailed = errors.New("check constraint failed")
)

// ErrorClassifier allows errors to declare their classification for status mapping.
//
// Known kinds: "validation", "conflict", "not_found", "configuration".
type ErrorClassifier interface {
	ErrorKind() string
}

// Kind returns the classification of err, or "" when err does not carry one.
func Kind(err error) string {
	var classifier ErrorClassifier
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}
	return ""
}

// ConstraintError describes a database constraint violation on a single field.
type ConstraintError struct {
	Entity string
	Field  string
	Value  string
	Err    error
}

func (e *ConstraintError) Error() string {
	subject := e.Field
	if e.Entity != "" {
		subject = e.Entity + " " + e.Field
	}
	switch {
	case errors.Is(e.Err, ErrDuplicate) && e.Value != "":
		return fmt.Sprintf("%s %q already exists", subject, e.Value)
	case errors.Is(e.Err, ErrDuplicate):
		return subject + " already exists"
	case errors.Is(e.Err, ErrInvalidReference):
		return subject + " references a missing record"
	default:
		return fmt.Sprintf("%s: %v", subject, e.Err)
	}
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// ErrorKind reports "conflict" for duplicates and "validation" otherwise.
func (e *ConstraintError) ErrorKind() string {
	if errors.Is(e.Err, ErrDuplicate) {
		return "conflict"
	}
	return "validation"
}

// translateConstraint maps SQLite constraint failures onto ConstraintError.
// value is reported for uniqueness failures. Other errors are returned as-is.
func translateConstraint(err error, entity, value string) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return &ConstraintError{Entity: entity, Field: constraintColumn(msg, "UNIQUE constraint failed:"), Value: value, Err: ErrDuplicate}
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return &ConstraintError{Entity: entity, Field: "course_id", Err: ErrInvalidReference}
	case strings.Contains(msg, "CHECK constraint failed"):
		field := constraintColumn(msg, "CHECK constraint failed:")
		if field == "" {
			field = "credits"
		}
		return &ConstraintError{Entity: entity, Field: field, Err: ErrCheckFailed}
	}
	return err
}

// constraintColumn extracts "column" from driver messages shaped like
// "UNIQUE constraint failed: students.student_no (2067)".
func constraintColumn(msg, marker string) string {
	idx := strings.Index(msg, marker)
	if idx < 0 {
		return ""
	}
	rest := strings.TrimSpace(msg[idx+len(marker):])
	if cut := strings.IndexAny(rest, " ,("); cut >= 0 {
		rest = rest[:cut]
	}
	if dot := strings.LastIndex(rest, "."); dot >= 0 {
		rest = rest[dot+1:]
	}
	// CHECK messages carry the expression, e.g. "credits >= 0".
	return strings.Trim(rest, "() ")
}
