// Package records persists students and courses in SQLite.
//
// The Store owns the database connection, applies the embedded goose
// migrations on open, and exposes CRUD, search, the course option list used
// to assign students, row counts and a health probe. Uniqueness and foreign
// key failures from the driver are translated into ConstraintError values so
// callers never see raw SQLite errors.
//
// All statements are parameterised. Search terms are matched literally: LIKE
// wildcards in user input are escaped before they reach SQLite.
package records
