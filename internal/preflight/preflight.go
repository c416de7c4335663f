package preflight

import (
	"context"

	"roster/internal/config"
	"roster/internal/records"
)

// Result reports the outcome of a single preflight check. Warn marks a
// passing check that still deserves attention.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Warn   bool   `json:"warn,omitempty"`
	Detail string `json:"detail"`
}

// Status renders the outcome as OK, WARN or ERROR.
func (r Result) Status() string {
	switch {
	case !r.Passed:
		return "ERROR"
	case r.Warn:
		return "WARN"
	default:
		return "OK"
	}
}

// HealthChecker reports database diagnostics.
type HealthChecker interface {
	CheckHealth(ctx context.Context) (records.DatabaseHealth, error)
}

// RunAll executes every check for cfg. db may be nil when the database could
// not be opened; openErr then explains why.
func RunAll(ctx context.Context, cfg *config.Config, db HealthChecker, openErr error) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckOptionalDirectory("Export directory", cfg.Paths.ExportDir),
	}

	if db == nil {
		detail := "not opened"
		if openErr != nil {
			detail = openErr.Error()
		}
		results = append(results, Result{Name: "Database", Detail: detail})
	} else {
		results = append(results, CheckDatabase(ctx, db)...)
	}

	results = append(results, CheckAuditLog(cfg.AuditLogPath()))
	return results
}

// Failed reports whether any result failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
