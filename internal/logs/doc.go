// Package logs reads the tail of roster's line-oriented log files and follows
// them as they grow. It backs `roster logs` for both the application log and
// the audit log; reads are bounded so large files stay cheap to inspect.
package logs
