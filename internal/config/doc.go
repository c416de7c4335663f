// Package config loads, normalizes, and validates Roster configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ROSTER_API_TOKEN. The Config type centralizes every knob the CLI and the
// HTTP server need: where the database and logs live, how strictly form
// fields are validated, and which display palette terminal output uses.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
