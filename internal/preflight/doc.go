// Package preflight provides the readiness checks behind `roster doctor`.
//
// Checks cover the data, log and export directories, the records database
// (existence, schema, integrity) and the audit log. Each check returns a
// Result with a pass/warn/fail outcome and a one-line detail; RunAll runs the
// full set for a configuration.
package preflight
