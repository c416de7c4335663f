// Package validation checks student and course form input before it reaches
// the records store.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"roster/internal/config"
)

// MessageRequired is reported when any required field is blank.
const MessageRequired = "All fields are required."

// Error carries per-field validation messages.
type Error struct {
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+": "+e.Fields[key])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// ErrorKind classifies validation failures for status mapping.
func (e *Error) ErrorKind() string { return "validation" }

type collector struct {
	missing bool
	fields  map[string]string
}

func (c *collector) add(field, msg string) {
	if c.fields == nil {
		c.fields = make(map[string]string)
	}
	if _, ok := c.fields[field]; !ok {
		c.fields[field] = msg
	}
}

func (c *collector) require(field, value string) bool {
	if value == "" {
		c.missing = true
		c.add(field, "is required")
		return false
	}
	return true
}

func (c *collector) err() error {
	if len(c.fields) == 0 {
		return nil
	}
	msg := "Invalid input."
	if c.missing {
		msg = MessageRequired
	}
	return &Error{Message: msg, Fields: c.fields}
}

// Policy holds the compiled rules for one configuration.
type Policy struct {
	studentNo  *regexp.Regexp
	courseCode *regexp.Regexp
	minCredits int
	maxCredits int
}

// NewPolicy compiles the configured patterns.
func NewPolicy(cfg config.Validation) (*Policy, error) {
	studentNo, err := regexp.Compile(cfg.StudentNoPattern)
	if err != nil {
		return nil, fmt.Errorf("student number pattern: %w", err)
	}
	courseCode, err := regexp.Compile(cfg.CourseCodePattern)
	if err != nil {
		return nil, fmt.Errorf("course code pattern: %w", err)
	}
	if cfg.MaxCredits < cfg.MinCredits {
		return nil, fmt.Errorf("credit range %d..%d is empty", cfg.MinCredits, cfg.MaxCredits)
	}
	return &Policy{
		studentNo:  studentNo,
		courseCode: courseCode,
		minCredits: cfg.MinCredits,
		maxCredits: cfg.MaxCredits,
	}, nil
}

// MustPolicy is NewPolicy for known-good settings such as config.Default.
func MustPolicy(cfg config.Validation) *Policy {
	policy, err := NewPolicy(cfg)
	if err != nil {
		panic(err)
	}
	return policy
}

// CreditRange returns the accepted inclusive bounds.
func (p *Policy) CreditRange() (int, int) {
	return p.minCredits, p.maxCredits
}

// StudentInput is the raw student form.
type StudentInput struct {
	StudentNo string
	FirstName string
	LastName  string
	Email     string
	// Course references the enrolled course by id, code or name.
	Course string
}

// CourseInput is the raw course form. Credits is text so non-numeric input
// can be reported rather than silently coerced.
type CourseInput struct {
	Code     string
	Name     string
	Lecturer string
	Credits  string
}

// CourseFields is a validated course form.
type CourseFields struct {
	Code     string
	Name     string
	Lecturer string
	Credits  int
}

// Student validates and normalizes a student form. The last name may be
// empty; the course reference is required unless optionalCourse is set.
func (p *Policy) Student(in StudentInput, optionalCourse bool) (StudentInput, error) {
	out := StudentInput{
		StudentNo: strings.TrimSpace(in.StudentNo),
		FirstName: collapseSpaces(in.FirstName),
		LastName:  collapseSpaces(in.LastName),
		Email:     strings.TrimSpace(in.Email),
		Course:    strings.TrimSpace(in.Course),
	}

	var c collector
	if c.require("student_no", out.StudentNo) && !p.studentNo.MatchString(out.StudentNo) {
		c.add("student_no", fmt.Sprintf("must match %s", p.studentNo.String()))
	}
	c.require("first_name", out.FirstName)
	if c.require("email", out.Email) {
		if err := Email(out.Email); err != nil {
			c.add("email", err.Error())
		}
	}
	if !optionalCourse {
		c.require("course", out.Course)
	}
	return out, c.err()
}

// Course validates and normalizes a course form.
func (p *Policy) Course(in CourseInput) (CourseFields, error) {
	out := CourseFields{
		Code:     strings.ToUpper(strings.TrimSpace(in.Code)),
		Name:     collapseSpaces(in.Name),
		Lecturer: collapseSpaces(in.Lecturer),
	}

	var c collector
	if c.require("course_code", out.Code) && !p.courseCode.MatchString(out.Code) {
		c.add("course_code", fmt.Sprintf("must match %s", p.courseCode.String()))
	}
	c.require("course_name", out.Name)
	c.require("lecturer", out.Lecturer)
	if raw := strings.TrimSpace(in.Credits); c.require("credits", raw) {
		credits, err := p.Credits(raw)
		if err != nil {
			c.add("credits", err.Error())
		}
		out.Credits = credits
	}
	return out, c.err()
}

// Credits parses a credit value and checks it against the configured range.
func (p *Policy) Credits(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, errors.New("must be a whole number")
	}
	if value < p.minCredits || value > p.maxCredits {
		return value, fmt.Errorf("must be between %d and %d", p.minCredits, p.maxCredits)
	}
	return value, nil
}

// Email reports whether addr is a bare, well-formed address whose domain
// contains a dot.
func Email(addr string) error {
	if addr == "" {
		return errors.New("is required")
	}
	if strings.ContainsAny(addr, " \t\r\n") {
		return errors.New("must not contain spaces")
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr || parsed.Name != "" {
		return errors.New("is not a valid email address")
	}
	at := strings.LastIndex(addr, "@")
	local, domain := addr[:at], addr[at+1:]
	if local == "" || domain == "" {
		return errors.New("is not a valid email address")
	}
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") || strings.Contains(domain, "..") {
		return errors.New("domain must contain a dot")
	}
	return nil
}

// SplitFullName splits a display name into first and last name. Single names
// yield an empty last name; everything after the first word is the last name.
func SplitFullName(full string) (string, string) {
	words := strings.Fields(full)
	switch len(words) {
	case 0:
		return "", ""
	case 1:
		return words[0], ""
	default:
		return words[0], strings.Join(words[1:], " ")
	}
}

func collapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
