package records

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

var expectedColumns = map[string][]string{
	"courses":  {"id", "course_code", "course_name", "lecturer", "credits", "created_at", "updated_at"},
	"students": {"id", "student_no", "first_name", "last_name", "email", "course_id", "created_at", "updated_at"},
}

// Stats returns row counts and per-course enrollment.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	ctx = ensureContext(ctx)
	var stats Stats
	row := s.db.QueryRowContext(ctx, `SELECT
        (SELECT COUNT(1) FROM students),
        (SELECT COUNT(1) FROM courses),
        (SELECT COUNT(1) FROM students WHERE course_id IS NULL)`)
	if err := row.Scan(&stats.Students, &stats.Courses, &stats.Unassigned); err != nil {
		return Stats{}, fmt.Errorf("record stats: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT c.id, c.course_code, c.course_name, COUNT(s.id)
        FROM courses c LEFT JOIN students s ON s.course_id = c.id
        GROUP BY c.id ORDER BY c.course_code`)
	if err != nil {
		return Stats{}, fmt.Errorf("enrollment stats: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e CourseEnrollment
		if err := rows.Scan(&e.CourseID, &e.Code, &e.Name, &e.Students); err != nil {
			return Stats{}, err
		}
		stats.Enrollment = append(stats.Enrollment, e)
	}
	return stats, rows.Err()
}

// CheckHealth returns diagnostic information about the records database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}

	if s.path == "" {
		return health, errors.New("records database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat records database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("records database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	if s.db == nil {
		return health, errors.New("records database connection unavailable")
	}

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(connCtx); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("ping records database: %w", err)
	}
	health.DatabaseReadable = true

	if version, err := schemaVersion(connCtx, s.db); err == nil {
		health.SchemaVersion = version
	}

	tables := make([]string, 0, len(expectedColumns))
	for table := range expectedColumns {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		columns, err := s.tableColumns(connCtx, table)
		if err != nil {
			health.Error = err.Error()
			return health, err
		}
		if len(columns) == 0 {
			health.MissingTables = append(health.MissingTables, table)
			continue
		}
		present := make(map[string]struct{}, len(columns))
		for _, col := range columns {
			present[col] = struct{}{}
		}
		for _, col := range expectedColumns[table] {
			if _, ok := present[col]; !ok {
				health.MissingColumns = append(health.MissingColumns, table+"."+col)
			}
		}
	}

	if len(health.MissingTables) == 0 {
		row := s.db.QueryRowContext(connCtx, `SELECT (SELECT COUNT(1) FROM students), (SELECT COUNT(1) FROM courses)`)
		if err := row.Scan(&health.Students, &health.Courses); err != nil {
			health.Error = err.Error()
			return health, fmt.Errorf("count records: %w", err)
		}
	}

	var integrityResult string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrityResult); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityCheck = strings.EqualFold(integrityResult, "ok")

	return health, nil
}

func (s *Store) tableColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "PRAGMA table_info("+table+")")
	if err != nil {
		return nil, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid     int
			name    string
			typeStr string
			notNull int
			dflt    any
			pk      int
		)
		if err := rows.Scan(&cid, &name, &typeStr, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("scan table info %s: %w", table, err)
		}
		columns = append(columns, name)
	}
	return columns, rows.Err()
}
