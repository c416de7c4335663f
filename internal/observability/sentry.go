// Package observability wires optional Sentry error reporting.
package observability

import (
	"time"

	"github.com/getsentry/sentry-go"
)

// InitSentry configures the Sentry client. An empty DSN disables reporting.
// The returned function flushes buffered events.
func InitSentry(dsn, env, release string) (func(), error) {
	if dsn == "" {
		return func() {}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: env,
		Release:     release,
	}); err != nil {
		return func() {}, err
	}
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// CaptureErr reports err when a client is configured. Without Init it is a
// no-op.
func CaptureErr(err error) {
	if err != nil {
		sentry.CaptureException(err)
	}
}
