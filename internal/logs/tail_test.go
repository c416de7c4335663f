package logs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"roster/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func TestLastReturnsTrailingLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	chunk, err := logs.Last(path, 2)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(chunk.Lines) != 2 || chunk.Lines[0] != "b" || chunk.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", chunk.Lines)
	}
	if chunk.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", chunk.Offset)
	}

	chunk, err = logs.Last(path, 10)
	if err != nil || len(chunk.Lines) != 3 {
		t.Fatalf("expected all lines, got %#v (%v)", chunk.Lines, err)
	}
}

func TestLastHandlesHugeLimitAndWrap(t *testing.T) {
	path := writeLog(t, "1\n2\n3\n4\n5\n")

	chunk, err := logs.Last(path, 10_000_000_000)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(chunk.Lines) != 5 || chunk.Lines[0] != "1" || chunk.Lines[4] != "5" {
		t.Fatalf("unexpected lines: %#v", chunk.Lines)
	}

	chunk, err = logs.Last(path, 3)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(chunk.Lines) != 3 || chunk.Lines[0] != "3" || chunk.Lines[2] != "5" {
		t.Fatalf("wrapped ring out of order: %#v", chunk.Lines)
	}
}

func TestLastMissingFileIsEmpty(t *testing.T) {
	chunk, err := logs.Last(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}
	if len(chunk.Lines) != 0 || chunk.Offset != 0 {
		t.Fatalf("expected empty chunk, got %+v", chunk)
	}
}

func TestFromLeavesPartialLine(t *testing.T) {
	path := writeLog(t, "one\ntw")

	chunk, err := logs.From(path, 0)
	if err != nil {
		t.Fatalf("From: %v", err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "one" || chunk.Offset != 4 {
		t.Fatalf("unexpected chunk %+v", chunk)
	}

	appendLog(t, path, "o\r\n")
	chunk, err = logs.From(path, chunk.Offset)
	if err != nil {
		t.Fatalf("From: %v", err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "two" {
		t.Fatalf("expected completed line, got %#v", chunk.Lines)
	}
}

func TestFromRestartsAfterTruncation(t *testing.T) {
	path := writeLog(t, "short\n")
	chunk, err := logs.From(path, 500)
	if err != nil {
		t.Fatalf("From: %v", err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "short" {
		t.Fatalf("expected restart from beginning, got %#v", chunk.Lines)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	start, err := logs.Last(path, 0)
	if err != nil {
		t.Fatalf("Last: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, start.Offset, 20*time.Millisecond, func(lines []string) error {
			mu.Lock()
			got = append(got, lines...)
			mu.Unlock()
			cancel()
			return nil
		})
	}()

	time.Sleep(50 * time.Millisecond)
	appendLog(t, path, "later\n")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Follow: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not return")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "later" {
		t.Fatalf("unexpected follow lines %#v", got)
	}
}

func TestFollowStopsOnEmitError(t *testing.T) {
	path := writeLog(t, "x\n")
	stop := errors.New("stop")
	err := logs.Follow(context.Background(), path, 0, 10*time.Millisecond, func([]string) error { return stop })
	if !errors.Is(err, stop) {
		t.Fatalf("expected emit error, got %v", err)
	}
}
