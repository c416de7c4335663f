package server_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"roster/internal/api"
	"roster/internal/audit"
	"roster/internal/config"
	"roster/internal/logging"
	"roster/internal/server"
	"roster/internal/testsupport"
	"roster/internal/validation"
)

type harness struct {
	cfg     *config.Config
	policy  *validation.Holder
	service *api.Service
	srv     *server.Server
	handler http.Handler
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)
	policy := validation.NewHolder(validation.MustPolicy(cfg.Validation))
	service := api.New(store, policy, audit.New(cfg.AuditLogPath()), logging.NewNop())
	srv, err := server.New(cfg, service, server.Options{Policy: policy, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	return harness{cfg: cfg, policy: policy, service: service, srv: srv, handler: srv.Handler()}
}

func (h harness) do(t *testing.T, method, path string, body any, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

type errorBody struct {
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields"`
	RequestID string            `json:"requestId"`
}

func seedCourse(t *testing.T, h harness) api.Course {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/courses", map[string]any{
		"code": "CS101", "name": "Intro to Programming", "lecturer": "Dr. Smith", "credits": 3,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create course: %d %s", w.Code, w.Body.String())
	}
	return decode[api.CourseResponse](t, w).Course
}

func TestStudentLifecycle(t *testing.T) {
	h := newHarness(t)
	seedCourse(t, h)

	w := h.do(t, http.MethodPost, "/api/students", map[string]any{
		"studentNo": "1005", "fullName": "Delete Me", "email": "delete@example.com", "course": "CS101",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create student: %d %s", w.Code, w.Body.String())
	}
	created := decode[api.StudentResponse](t, w).Student
	if created.FirstName != "Delete" || created.LastName != "Me" || created.CourseCode != "CS101" {
		t.Fatalf("unexpected student %+v", created)
	}

	w = h.do(t, http.MethodGet, "/api/students?q=delete", nil)
	list := decode[api.StudentListResponse](t, w)
	if w.Code != http.StatusOK || len(list.Students) != 1 {
		t.Fatalf("search: %d %+v", w.Code, list)
	}

	path := fmt.Sprintf("/api/students/%d", created.ID)
	update := api.InputFromStudent(created)
	update.Email = "changed@example.com"
	w = h.do(t, http.MethodPut, path, update)
	if w.Code != http.StatusOK {
		t.Fatalf("update: %d %s", w.Code, w.Body.String())
	}
	if got := decode[api.StudentResponse](t, w).Student.Email; got != "changed@example.com" {
		t.Fatalf("email not updated: %q", got)
	}

	if w = h.do(t, http.MethodDelete, path, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: %d %s", w.Code, w.Body.String())
	}
	if w = h.do(t, http.MethodDelete, path, nil); w.Code != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", w.Code)
	}
	if w = h.do(t, http.MethodGet, path, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get deleted: expected 404, got %d", w.Code)
	}

	w = h.do(t, http.MethodGet, "/api/audit?action=delete", nil)
	auditResp := decode[api.AuditResponse](t, w)
	if len(auditResp.Entries) != 1 || auditResp.Entries[0].Key != "1005" {
		t.Fatalf("unexpected audit response %+v", auditResp)
	}
}

func TestValidationErrorsReturn422WithFields(t *testing.T) {
	h := newHarness(t)
	seedCourse(t, h)

	w := h.do(t, http.MethodPost, "/api/students", map[string]any{
		"studentNo": "1001", "firstName": "Ada", "email": "invalid-email", "course": "CS101",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %s", w.Code, w.Body.String())
	}
	body := decode[errorBody](t, w)
	if _, ok := body.Fields["email"]; !ok {
		t.Fatalf("expected email field error, got %+v", body)
	}

	w = h.do(t, http.MethodPost, "/api/courses", map[string]any{
		"code": "MA201", "name": "Algebra", "lecturer": "Prof. Noether", "credits": "abc",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for non-numeric credits, got %d", w.Code)
	}
}

func TestDuplicateReturns409(t *testing.T) {
	h := newHarness(t)
	seedCourse(t, h)

	w := h.do(t, http.MethodPost, "/api/courses", map[string]any{
		"code": "cs101", "name": "Other", "lecturer": "Dr. Who", "credits": 2,
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", w.Code, w.Body.String())
	}
	body := decode[errorBody](t, w)
	if _, ok := body.Fields["course_code"]; !ok {
		t.Fatalf("expected course_code field, got %+v", body)
	}
}

func TestBadRequests(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		method, path string
		body         string
		want         int
	}{
		{http.MethodGet, "/api/students/abc", "", http.StatusBadRequest},
		{http.MethodPost, "/api/students", "", http.StatusBadRequest},
		{http.MethodPost, "/api/students", `{"unknown":1}`, http.StatusBadRequest},
		{http.MethodGet, "/api/audit?limit=-1", "", http.StatusBadRequest},
		{http.MethodGet, "/api/audit?limit=0", "", http.StatusBadRequest},
		{http.MethodGet, "/api/audit?action=purge", "", http.StatusBadRequest},
		{http.MethodPatch, "/api/students/1", "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		w := httptest.NewRecorder()
		h.handler.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d (%s)", tc.method, tc.path, tc.want, w.Code, w.Body.String())
		}
	}
}

func TestCourseDeleteAndOptions(t *testing.T) {
	h := newHarness(t)
	course := seedCourse(t, h)
	h.do(t, http.MethodPost, "/api/students", map[string]any{
		"studentNo": "1001", "firstName": "Ada", "email": "ada@example.com", "course": course.ID,
	})

	w := h.do(t, http.MethodGet, "/api/courses/options", nil)
	options := decode[api.CourseOptionsResponse](t, w)
	if len(options.Options) != 1 || options.Options[0].Label != "CS101 - Intro to Programming" {
		t.Fatalf("unexpected options %+v", options)
	}

	w = h.do(t, http.MethodDelete, fmt.Sprintf("/api/courses/%d", course.ID), nil)
	deletion := decode[api.CourseDeletion](t, w)
	if w.Code != http.StatusOK || deletion.Detached != 1 {
		t.Fatalf("delete course: %d %+v", w.Code, deletion)
	}

	w = h.do(t, http.MethodGet, "/api/stats", nil)
	stats := decode[api.Stats](t, w)
	if stats.Students != 1 || stats.Courses != 0 || stats.Unassigned != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestAuthRequiresBearerToken(t *testing.T) {
	h := newHarness(t, testsupport.WithToken("s3cret"))

	if w := h.do(t, http.MethodGet, "/api/students", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
	if w := h.do(t, http.MethodGet, "/api/students", nil, "Authorization", "Bearer wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with wrong token, got %d", w.Code)
	}
	if w := h.do(t, http.MethodGet, "/api/students", nil, "Authorization", "Bearer s3cret"); w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", w.Code)
	}
	w := h.do(t, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "roster_http_requests_total") {
		t.Fatalf("metrics should be public, got %d", w.Code)
	}
}

func TestRequestIDPropagates(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/students/999", nil, "X-Request-ID", "req-123")
	if got := w.Header().Get("X-Request-ID"); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
	if body := decode[errorBody](t, w); body.RequestID != "req-123" {
		t.Fatalf("expected request id in error body, got %+v", body)
	}

	w = h.do(t, http.MethodGet, "/api/students", nil)
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected generated request id")
	}
}

func TestHealthEndpoint(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	resp := decode[api.HealthResponse](t, w)
	if resp.Status != "ok" || !resp.Database.Healthy || resp.Database.Path != h.cfg.DatabasePath() {
		t.Fatalf("unexpected health %+v", resp)
	}
}

func TestStartHoldsInstanceLock(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := h.srv.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer h.srv.Stop()

	resp, err := http.Get("http://" + h.srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from live server, got %d", resp.StatusCode)
	}

	second, err := server.New(h.cfg, h.service, server.Options{Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	if err := second.Start(ctx); err == nil {
		second.Stop()
		t.Fatal("expected second server to fail on the instance lock")
	}

	h.srv.Stop()
	if err := second.Start(ctx); err != nil {
		t.Fatalf("lock should be free after Stop: %v", err)
	}
	second.Stop()
}

func TestStopDrainsInFlightRequests(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := h.srv.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	conn, err := net.Dial("tcp", h.srv.Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	body := `{"code":"CS101","name":"Intro to Programming","lecturer":"Dr. Smith","credits":3}`
	head := fmt.Sprintf("POST /api/courses HTTP/1.1\r\nHost: roster\r\nContent-Type: application/json\r\nContent-Length: %d\r\n\r\n", len(body))
	split := len(body) / 2
	if _, err := io.WriteString(conn, head+body[:split]); err != nil {
		t.Fatalf("write partial request: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	cancel()
	stopped := make(chan struct{})
	go func() {
		h.srv.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a request was still in flight")
	case <-time.After(200 * time.Millisecond):
	}

	if _, err := io.WriteString(conn, body[split:]); err != nil {
		t.Fatalf("write rest of request: %v", err)
	}
	resp, err := http.ReadResponse(bufio.NewReader(conn), nil)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected in-flight create to finish with 201, got %d", resp.StatusCode)
	}

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the request drained")
	}
	select {
	case <-h.srv.Done():
	default:
		t.Fatal("Done should be closed once Stop returns")
	}

	if _, err := h.service.Courses.Lookup(context.Background(), "CS101"); err != nil {
		t.Fatalf("course written during shutdown is missing: %v", err)
	}
}

func TestConfigReloadSwapsPolicyAndLevel(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	configPath := filepath.Join(testsupport.BaseDir(cfg), "roster.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"info\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	store := testsupport.MustOpenStore(t, cfg)
	policy := validation.NewHolder(validation.MustPolicy(cfg.Validation))
	level := new(slog.LevelVar)
	service := api.New(store, policy, nil, logging.NewNop())
	srv, err := server.New(cfg, service, server.Options{
		ConfigPath: configPath,
		Policy:     policy,
		LevelVar:   level,
		Logger:     logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := srv.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer srv.Stop()

	updated := "[validation]\nmax_credits = 5\n\n[logging]\nlevel = \"debug\"\n"
	if err := os.WriteFile(configPath, []byte(updated), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		_, hi := policy.Policy().CreditRange()
		if hi == 5 && level.Level() == slog.LevelDebug {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	_, hi := policy.Policy().CreditRange()
	t.Fatalf("config not reloaded: max credits %d, level %v", hi, level.Level())
}
