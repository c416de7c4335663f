package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"roster/internal/config"
	"roster/internal/preflight"
	"roster/internal/seed"
	"roster/internal/theme"
)

func TestExportLogsWritesDeleteLine(t *testing.T) {
	env := setupCLITestEnv(t)
	addCourse(t, env, "CS101", "Intro to Computing")
	addStudent(t, env, "--no", "6006", "--first", "Barbara", "--last", "Liskov", "--email", "barbara@example.com", "--course", "CS101")
	env.mustRun(t, "student", "delete", "6006", "--yes")

	target := filepath.Join(env.baseDir, "out", "audit.csv")
	out := env.mustRun(t, "export", "logs", "--out", target)
	requireContains(t, out, "Exported 3 row(s)")

	f, err := os.Open(target)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus three entries, got %d rows", len(rows))
	}
	last := rows[len(rows)-1]
	if last[1] != "DELETE" || last[4] != "6006" {
		t.Fatalf("unexpected delete row %v", last)
	}
}

func TestExportDefaultsToExportDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	addCourse(t, env, "CS101", "Intro to Computing")

	env.mustRun(t, "export", "courses", "--format", "xlsx")
	matches, err := filepath.Glob(filepath.Join(env.exportDir, "courses-*.xlsx"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one course workbook, got %v (%v)", matches, err)
	}

	_, _, err = runCLI(t, []string{"export", "students", "--format", "pdf"}, env.configPath)
	if err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestExportAllWritesWorkbook(t *testing.T) {
	env := setupCLITestEnv(t)
	addCourse(t, env, "CS101", "Intro to Computing")
	addStudent(t, env, "--no", "7007", "--first", "Donald", "--last", "Knuth", "--email", "don@example.com", "--course", "CS101")

	target := filepath.Join(env.baseDir, "all.xlsx")
	env.mustRun(t, "export", "all", "--out", target)

	wb, err := excelize.OpenFile(target)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer wb.Close()
	sheets := wb.GetSheetList()
	if strings.Join(sheets, ",") != "Students,Courses,Audit" {
		t.Fatalf("unexpected sheets %v", sheets)
	}
	value, err := wb.GetCellValue("Students", "B2")
	if err != nil || value != "7007" {
		t.Fatalf("expected student number in B2, got %q (%v)", value, err)
	}

	_, _, err = runCLI(t, []string{"export", "all", "--out", filepath.Join(env.baseDir, "all.csv")}, env.configPath)
	if err == nil {
		t.Fatal("expected csv workbook export to fail")
	}
}

func TestThemeToggleFlipsAndPersists(t *testing.T) {
	env := setupCLITestEnv(t)

	shown := decodeJSON[themeView](t, strings.NewReader(env.mustRun(t, "theme", "show", "--json")))
	if shown.Active != config.ThemeLight || shown.ToggleLabel != "Dark Mode" {
		t.Fatalf("unexpected initial theme %+v", shown)
	}

	result := decodeJSON[theme.ToggleResult](t, strings.NewReader(env.mustRun(t, "theme", "toggle", "--json")))
	if result.Active != config.ThemeDark || result.ToggleLabel != "Light Mode" {
		t.Fatalf("unexpected toggle result %+v", result)
	}

	cfg, _, _, err := config.Load(env.configPath)
	if err != nil {
		t.Fatalf("reload config: %v", err)
	}
	if cfg.Display.Theme != config.ThemeDark {
		t.Fatalf("theme not persisted, got %q", cfg.Display.Theme)
	}
	if cfg.Paths.DataDir != env.dataDir {
		t.Fatalf("toggle dropped other settings: data_dir=%q", cfg.Paths.DataDir)
	}

	out := env.mustRun(t, "theme", "toggle")
	requireContains(t, out, "Theme switched to light")
	requireContains(t, out, "Toggle: Dark Mode")
}

func TestSeedImportsYAML(t *testing.T) {
	env := setupCLITestEnv(t)
	file := filepath.Join(env.baseDir, "seed.yaml")
	doc := `courses:
  - code: CS101
    name: Intro to Computing
    lecturer: Dr. Byte
    credits: "12"
students:
  - student_no: "8001"
    first_name: Katherine
    last_name: Johnson
    email: katherine@example.com
    course: CS101
  - student_no: "8002"
    first_name: Dorothy
    email: dorothy@example.com
    course: Intro to Computing
`
	if err := os.WriteFile(file, []byte(doc), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	report := decodeJSON[seed.Report](t, strings.NewReader(env.mustRun(t, "seed", "--file", file, "--json")))
	if report.CoursesCreated != 1 || report.StudentsCreated != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	_, _, err := runCLI(t, []string{"seed", "--file", file}, env.configPath)
	if err == nil {
		t.Fatal("expected duplicate to abort without --skip-existing")
	}

	out := env.mustRun(t, "seed", "--file", file, "--skip-existing")
	requireContains(t, out, "0 created, 1 skipped")
	requireContains(t, out, "0 created, 2 skipped")

	if _, _, err := runCLI(t, []string{"seed"}, env.configPath); err == nil {
		t.Fatal("expected --file to be required")
	}
}

func TestDoctorReportsHealthyInstall(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "doctor")
	requireContains(t, out, "Data directory:")
	requireContains(t, out, "Integrity:")
	requireNotContains(t, out, "[ERROR]")

	results := decodeJSON[[]preflight.Result](t, strings.NewReader(env.mustRun(t, "doctor", "--json")))
	if preflight.Failed(results) {
		t.Fatalf("expected passing checks, got %+v", results)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)
	target := filepath.Join(env.baseDir, "fresh", "config.toml")

	out, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config missing: %v", err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected existing config to be kept without --overwrite")
	}

	out = env.mustRun(t, "config", "validate")
	requireContains(t, out, "Configuration valid")
	requireContains(t, out, filepath.Join(env.dataDir, "roster.db"))
}

func TestInvalidConfigFailsBeforeCommandRuns(t *testing.T) {
	env := setupCLITestEnv(t)
	writeTestConfig(t, env, "\n[validation]\nmin_credits = 10\nmax_credits = 2\n")

	_, _, err := runCLI(t, []string{"student", "list"}, env.configPath)
	if err == nil {
		t.Fatal("expected invalid config to be rejected")
	}
}

func TestLogsShowsAuditTail(t *testing.T) {
	env := setupCLITestEnv(t)
	addCourse(t, env, "CS101", "Intro to Computing")
	addCourse(t, env, "CS102", "Data Structures")

	out := env.mustRun(t, "logs", "--audit", "--lines", "1")
	requireContains(t, out, `"key":"CS102"`)
	requireNotContains(t, out, `"key":"CS101"`)
}
