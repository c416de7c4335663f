// Package api is the service layer shared by the CLI and the HTTP server.
//
// StudentService and CourseService validate form input, resolve the course a
// student is assigned to (by id, code or name), call the records store, append
// audit entries and count operations. Results are returned as DTOs with
// camelCase JSON tags so `--json` output and HTTP responses share one shape.
//
// Errors keep their classification: validation failures are
// *validation.Error, uniqueness failures are *records.ConstraintError and
// missing rows wrap records.ErrNotFound. Use records.Kind to map them onto
// exit messages or HTTP status codes.
package api
