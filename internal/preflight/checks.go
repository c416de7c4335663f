package preflight

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"roster/internal/audit"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckOptionalDirectory is CheckDirectoryAccess for directories created on
// demand: a missing directory only warns.
func CheckOptionalDirectory(name, path string) Result {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Result{Name: name, Passed: true, Warn: true, Detail: fmt.Sprintf("%s (created on first export)", path)}
	}
	return CheckDirectoryAccess(name, path)
}

// CheckDatabase converts database diagnostics into one result per concern.
func CheckDatabase(ctx context.Context, db HealthChecker) []Result {
	health, err := db.CheckHealth(ctx)
	if err != nil {
		return []Result{{Name: "Database", Detail: err.Error()}}
	}

	results := make([]Result, 0, 3)
	switch {
	case !health.DatabaseExists:
		results = append(results, Result{Name: "Database", Detail: fmt.Sprintf("%s (error: does not exist)", health.DBPath)})
	case !health.DatabaseReadable:
		detail := health.Error
		if detail == "" {
			detail = "unreadable"
		}
		results = append(results, Result{Name: "Database", Detail: fmt.Sprintf("%s (error: %s)", health.DBPath, detail)})
	default:
		results = append(results, Result{
			Name:   "Database",
			Passed: true,
			Detail: fmt.Sprintf("%s (schema v%d, %d students, %d courses)", health.DBPath, health.SchemaVersion, health.Students, health.Courses),
		})
	}

	var missing []string
	for _, table := range health.MissingTables {
		missing = append(missing, "table "+table)
	}
	for _, column := range health.MissingColumns {
		missing = append(missing, "column "+column)
	}
	if len(missing) > 0 {
		results = append(results, Result{Name: "Schema", Detail: "missing " + strings.Join(missing, ", ")})
	} else if health.DatabaseReadable {
		results = append(results, Result{Name: "Schema", Passed: true, Detail: "students and courses tables present"})
	}

	if health.DatabaseReadable {
		if health.IntegrityCheck {
			results = append(results, Result{Name: "Integrity", Passed: true, Detail: "ok"})
		} else {
			results = append(results, Result{Name: "Integrity", Detail: "integrity_check failed"})
		}
	}
	if health.Error != "" && health.DatabaseReadable {
		results = append(results, Result{Name: "Database probe", Detail: health.Error})
	}
	return results
}

// CheckAuditLog verifies the audit log can be read. A missing log only warns;
// malformed lines warn with their count.
func CheckAuditLog(path string) Result {
	const name = "Audit log"
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Result{Name: name, Passed: true, Warn: true, Detail: fmt.Sprintf("%s (no entries yet)", path)}
	}
	if err := unix.Access(path, unix.R_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: not readable: %v)", path, err)}
	}
	result, err := audit.New(path).Read(audit.Filter{})
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if result.Skipped > 0 {
		return Result{
			Name:   name,
			Passed: true,
			Warn:   true,
			Detail: fmt.Sprintf("%s (%d entries, %d malformed lines skipped)", path, len(result.Entries), result.Skipped),
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d entries)", path, len(result.Entries))}
}
