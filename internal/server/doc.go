// Package server hosts the local JSON API used by `roster serve`.
//
// The Server owns a single-instance lock in the data directory, serves the
// student, course, audit and health endpoints over net/http, exposes
// Prometheus metrics at /metrics, and reloads the validation policy and log
// level when the config file changes on disk. Requests are authenticated with
// an optional bearer token and tagged with a request id that flows into logs
// and error payloads.
package server
