// Package audit records create, update and delete operations as JSON lines in
// an append-only log shared by the CLI and the HTTP server.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Action names an audited operation.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// ParseAction accepts action names in any case.
func ParseAction(value string) (Action, error) {
	switch Action(strings.ToUpper(strings.TrimSpace(value))) {
	case ActionCreate:
		return ActionCreate, nil
	case ActionUpdate:
		return ActionUpdate, nil
	case ActionDelete:
		return ActionDelete, nil
	case "":
		return "", nil
	}
	return "", fmt.Errorf("unknown audit action %q", value)
}

// Entry is one audit line.
type Entry struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Action   Action    `json:"action"`
	Entity   string    `json:"entity"`
	RecordID int64     `json:"record_id"`
	Key      string    `json:"key"`
	Summary  string    `json:"summary,omitempty"`
	Actor    string    `json:"actor,omitempty"`
}

// Filter narrows Read results. Zero values match everything; Limit keeps the
// most recent entries.
type Filter struct {
	Action Action
	Entity string
	Key    string
	Since  time.Time
	Limit  int
}

func (f Filter) match(e Entry) bool {
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Entity != "" && !strings.EqualFold(e.Entity, f.Entity) {
		return false
	}
	if f.Key != "" && !strings.EqualFold(e.Key, f.Key) {
		return false
	}
	if !f.Since.IsZero() && e.Time.Before(f.Since) {
		return false
	}
	return true
}

// Result holds the entries read and the number of malformed lines skipped.
type Result struct {
	Entries []Entry
	Skipped int
}

const lockRetryDelay = 10 * time.Millisecond

// Log appends to and reads from a single audit file.
type Log struct {
	mu    *sync.Mutex
	path  string
	lock  *flock.Flock
	actor string
	now   func() time.Time
}

// New returns a Log writing to path. The file is created on first append.
func New(path string) *Log {
	return &Log{
		mu:    &sync.Mutex{},
		path:  path,
		lock:  flock.New(path + ".lock"),
		actor: currentActor(),
		now:   time.Now,
	}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// WithActor returns a copy of l that stamps entries with actor.
func (l *Log) WithActor(actor string) *Log {
	clone := *l
	if actor = strings.TrimSpace(actor); actor != "" {
		clone.actor = actor
	}
	return &clone
}

// Append writes entry as one line under an exclusive file lock. ID, Time and
// Actor are filled when empty. The completed entry is returned.
func (l *Log) Append(ctx context.Context, entry Entry) (Entry, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if entry.Action == "" {
		return entry, errors.New("audit entry requires an action")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Time.IsZero() {
		entry.Time = l.now().UTC()
	}
	if entry.Actor == "" {
		entry.Actor = l.actor
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return entry, fmt.Errorf("encode audit entry: %w", err)
	}
	line = append(line, '\n')

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return entry, fmt.Errorf("create audit directory: %w", err)
	}
	// flock is per handle; the mutex serializes goroutines sharing it.
	l.mu.Lock()
	defer l.mu.Unlock()
	locked, err := l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return entry, fmt.Errorf("lock audit log: %w", err)
	}
	if !locked {
		return entry, errors.New("audit log is locked by another process")
	}
	defer func() { _ = l.lock.Unlock() }()

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return entry, fmt.Errorf("open audit log: %w", err)
	}
	if _, err := file.Write(line); err != nil {
		_ = file.Close()
		return entry, fmt.Errorf("write audit log: %w", err)
	}
	if err := file.Close(); err != nil {
		return entry, fmt.Errorf("close audit log: %w", err)
	}
	return entry, nil
}

// Read returns entries matching filter in file order. A missing log yields an
// empty result; malformed lines are skipped and counted.
func (l *Log) Read(filter Filter) (Result, error) {
	file, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("open audit log: %w", err)
	}
	defer file.Close()

	var result Result
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil || entry.Action == "" {
			result.Skipped++
			continue
		}
		if filter.match(entry) {
			result.Entries = append(result.Entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return result, fmt.Errorf("read audit log: %w", err)
	}
	if filter.Limit > 0 && len(result.Entries) > filter.Limit {
		result.Entries = result.Entries[len(result.Entries)-filter.Limit:]
	}
	return result, nil
}

func currentActor() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if name := os.Getenv("USER"); name != "" {
		return name
	}
	return "unknown"
}
