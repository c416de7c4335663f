package server

import (
	"net/http"
	"strconv"
	"strings"

	"roster/internal/api"
	"roster/internal/audit"
	"roster/internal/metrics"
)

const defaultAuditLimit = 100

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/students", s.handleListStudents)
	mux.HandleFunc("POST /api/students", s.handleCreateStudent)
	mux.HandleFunc("GET /api/students/{id}", s.handleGetStudent)
	mux.HandleFunc("PUT /api/students/{id}", s.handleUpdateStudent)
	mux.HandleFunc("DELETE /api/students/{id}", s.handleDeleteStudent)

	mux.HandleFunc("GET /api/courses", s.handleListCourses)
	mux.HandleFunc("POST /api/courses", s.handleCreateCourse)
	mux.HandleFunc("GET /api/courses/options", s.handleCourseOptions)
	mux.HandleFunc("GET /api/courses/{id}", s.handleGetCourse)
	mux.HandleFunc("PUT /api/courses/{id}", s.handleUpdateCourse)
	mux.HandleFunc("DELETE /api/courses/{id}", s.handleDeleteCourse)

	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/audit", s.handleAudit)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())

	return s.instrument(authMiddleware(s.cfg.Server.Token, mux))
}

func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students, err := s.service.Students.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StudentListResponse{Students: students})
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	var in api.StudentInput
	if !s.decodeBody(w, r, &in) {
		return
	}
	student, err := s.service.Students.Add(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.StudentResponse{Student: student})
}

func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	student, err := s.service.Students.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StudentResponse{Student: student})
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var in api.StudentInput
	if !s.decodeBody(w, r, &in) {
		return
	}
	student, err := s.service.Students.Update(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StudentResponse{Student: student})
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	student, err := s.service.Students.Delete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.StudentResponse{Student: student})
}

func (s *Server) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := s.service.Courses.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CourseListResponse{Courses: courses})
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var in api.CourseInput
	if !s.decodeBody(w, r, &in) {
		return
	}
	course, err := s.service.Courses.Add(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, api.CourseResponse{Course: course})
}

func (s *Server) handleCourseOptions(w http.ResponseWriter, r *http.Request) {
	options, err := s.service.Courses.Options(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CourseOptionsResponse{Options: options})
}

func (s *Server) handleGetCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	course, err := s.service.Courses.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CourseResponse{Course: course})
}

func (s *Server) handleUpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var in api.CourseInput
	if !s.decodeBody(w, r, &in) {
		return
	}
	course, err := s.service.Courses.Update(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.CourseResponse{Course: course})
}

func (s *Server) handleDeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}
	deletion, err := s.service.Courses.Delete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, deletion)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	action, err := audit.ParseAction(query.Get("action"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}
	limit := defaultAuditLimit
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, r, http.StatusBadRequest, "limit must be a positive whole number", nil)
			return
		}
		limit = parsed
	}
	result, err := s.service.Audit(audit.Filter{
		Action: action,
		Entity: strings.TrimSpace(query.Get("entity")),
		Key:    strings.TrimSpace(query.Get("key")),
		Limit:  limit,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.AuditResponse{
		Entries: api.FromAuditEntries(result.Entries),
		Skipped: result.Skipped,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health, err := s.service.Health(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := api.HealthResponse{Status: "ok", Database: api.FromDatabaseHealth(health)}
	status := http.StatusOK
	if !resp.Database.Healthy {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, resp)
}
