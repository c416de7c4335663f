package api

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Student describes a student with its course in a transport-friendly format.
type Student struct {
	ID         int64  `json:"id"`
	StudentNo  string `json:"studentNo"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	CourseID   *int64 `json:"courseId"`
	CourseCode string `json:"courseCode,omitempty"`
	CourseName string `json:"courseName,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`
}

// Course describes a course.
type Course struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Lecturer  string `json:"lecturer"`
	Credits   int    `json:"credits"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// CourseOption is one entry of the course picker.
type CourseOption struct {
	ID    int64  `json:"id"`
	Code  string `json:"code"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Enrollment counts students in one course.
type Enrollment struct {
	CourseID int64  `json:"courseId"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Students int    `json:"students"`
}

// Stats summarises the records database.
type Stats struct {
	Students   int          `json:"students"`
	Courses    int          `json:"courses"`
	Unassigned int          `json:"unassigned"`
	Enrollment []Enrollment `json:"enrollment"`
}

// CourseDeletion reports a removed course and how many students it detached.
type CourseDeletion struct {
	Course   Course `json:"course"`
	Detached int    `json:"detachedStudents"`
}

// StudentInput is the student form. FullName is split into first and last
// name when FirstName is empty. Course is an id, code or course name.
type StudentInput struct {
	StudentNo string `json:"studentNo"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName,omitempty"`
	Email     string `json:"email"`
	Course    Text   `json:"course"`
}

// CourseInput is the course form. Credits accepts a JSON number or string so
// non-numeric input reaches validation instead of failing to decode.
type CourseInput struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Lecturer string `json:"lecturer"`
	Credits  Text   `json:"credits"`
}

// Text is a form value that decodes from a JSON string, number or null.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*t = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", raw)
		}
		*t = Text(n.String())
	}
	return nil
}

// TextInt formats an integer form value.
func TextInt(v int) Text { return Text(strconv.Itoa(v)) }

// StudentListResponse wraps student lists returned by the HTTP API.
type StudentListResponse struct {
	Students []Student `json:"students"`
}

// StudentResponse wraps a single student.
type StudentResponse struct {
	Student Student `json:"student"`
}

// CourseListResponse wraps course lists.
type CourseListResponse struct {
	Courses []Course `json:"courses"`
}

// CourseResponse wraps a single course.
type CourseResponse struct {
	Course Course `json:"course"`
}

// CourseOptionsResponse wraps the course picker entries.
type CourseOptionsResponse struct {
	Options []CourseOption `json:"options"`
}

// AuditEntry is one audit line in API payloads.
type AuditEntry struct {
	ID       string `json:"id"`
	Time     string `json:"time"`
	Action   string `json:"action"`
	Entity   string `json:"entity"`
	RecordID int64  `json:"recordId"`
	Key      string `json:"key"`
	Summary  string `json:"summary,omitempty"`
	Actor    string `json:"actor,omitempty"`
}

// AuditResponse lists audit entries and the number of unreadable lines.
type AuditResponse struct {
	Entries []AuditEntry `json:"entries"`
	Skipped int          `json:"skipped"`
}

// DatabaseHealth mirrors records.DatabaseHealth for transport.
type DatabaseHealth struct {
	Path           string   `json:"path"`
	Exists         bool     `json:"exists"`
	Readable       bool     `json:"readable"`
	SchemaVersion  int64    `json:"schemaVersion"`
	MissingTables  []string `json:"missingTables,omitempty"`
	MissingColumns []string `json:"missingColumns,omitempty"`
	IntegrityOK    bool     `json:"integrityOk"`
	Students       int      `json:"students"`
	Courses        int      `json:"courses"`
	Error          string   `json:"error,omitempty"`
	Healthy        bool     `json:"healthy"`
}

// HealthResponse is returned by the health endpoint.
type HealthResponse struct {
	Status   string         `json:"status"`
	Database DatabaseHealth `json:"database"`
}
