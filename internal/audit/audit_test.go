package audit_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"roster/internal/audit"
)

func TestAppendWritesDeleteLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.log")
	log := audit.New(path).WithActor("tester")

	entry, err := log.Append(context.Background(), audit.Entry{
		Action:   audit.ActionDelete,
		Entity:   "student",
		RecordID: 3,
		Key:      "S1005",
		Summary:  "Delete Me",
	})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if entry.ID == "" || entry.Time.IsZero() || entry.Actor != "tester" {
		t.Fatalf("expected filled entry, got %#v", entry)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read audit log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "DELETE") || !strings.Contains(line, "S1005") {
		t.Fatalf("expected DELETE and student number in line, got %q", line)
	}
	if strings.Count(line, "\n") != 1 {
		t.Fatalf("expected exactly one line, got %q", line)
	}
}

func TestAppendRequiresAction(t *testing.T) {
	log := audit.New(filepath.Join(t.TempDir(), "audit.log"))
	if _, err := log.Append(context.Background(), audit.Entry{Entity: "student"}); err == nil {
		t.Fatal("expected error for entry without action")
	}
}

func TestReadFiltersAndSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	log := audit.New(path)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	entries := []audit.Entry{
		{Action: audit.ActionCreate, Entity: "student", RecordID: 1, Key: "S1001", Time: base},
		{Action: audit.ActionDelete, Entity: "student", RecordID: 1, Key: "S1001", Time: base.Add(time.Hour)},
		{Action: audit.ActionDelete, Entity: "course", RecordID: 2, Key: "CS101", Time: base.Add(2 * time.Hour)},
	}
	for _, e := range entries {
		if _, err := log.Append(ctx, e); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	fmt.Fprintln(file, "not json")
	fmt.Fprintln(file, `{"id":"x"}`)
	file.Close()

	all, err := log.Read(audit.Filter{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(all.Entries) != 3 || all.Skipped != 2 {
		t.Fatalf("expected 3 entries and 2 skipped, got %d and %d", len(all.Entries), all.Skipped)
	}

	deletes, err := log.Read(audit.Filter{Action: audit.ActionDelete})
	if err != nil || len(deletes.Entries) != 2 {
		t.Fatalf("expected 2 deletes, got %d (%v)", len(deletes.Entries), err)
	}

	courses, err := log.Read(audit.Filter{Entity: "COURSE"})
	if err != nil || len(courses.Entries) != 1 || courses.Entries[0].Key != "CS101" {
		t.Fatalf("unexpected course filter result: %#v (%v)", courses.Entries, err)
	}

	latest, err := log.Read(audit.Filter{Limit: 1})
	if err != nil || len(latest.Entries) != 1 || latest.Entries[0].Key != "CS101" {
		t.Fatalf("expected latest entry only, got %#v (%v)", latest.Entries, err)
	}

	since, err := log.Read(audit.Filter{Since: base.Add(30 * time.Minute)})
	if err != nil || len(since.Entries) != 2 {
		t.Fatalf("expected 2 entries since cutoff, got %d (%v)", len(since.Entries), err)
	}
}

func TestReadMissingLogIsEmpty(t *testing.T) {
	result, err := audit.New(filepath.Join(t.TempDir(), "absent.log")).Read(audit.Filter{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(result.Entries) != 0 || result.Skipped != 0 {
		t.Fatalf("expected empty result, got %#v", result)
	}
}

func TestConcurrentAppendsKeepWholeLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	writers := []*audit.Log{audit.New(path), audit.New(path)}

	var wg sync.WaitGroup
	for w, log := range writers {
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func(w, i int, log *audit.Log) {
				defer wg.Done()
				if _, err := log.Append(context.Background(), audit.Entry{
					Action: audit.ActionCreate,
					Entity: "student",
					Key:    fmt.Sprintf("S%d%03d", w, i),
				}); err != nil {
					t.Errorf("Append failed: %v", err)
				}
			}(w, i, log)
		}
	}
	wg.Wait()

	result, err := audit.New(path).Read(audit.Filter{})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(result.Entries) != 50 || result.Skipped != 0 {
		t.Fatalf("expected 50 intact entries, got %d (skipped %d)", len(result.Entries), result.Skipped)
	}
}

func TestParseAction(t *testing.T) {
	if action, err := audit.ParseAction("delete"); err != nil || action != audit.ActionDelete {
		t.Fatalf("ParseAction(delete) = %q, %v", action, err)
	}
	if _, err := audit.ParseAction("purge"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}
