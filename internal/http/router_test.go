package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"jobboard/internal/app"
	"jobboard/internal/database"
	"jobboard/internal/http/handlers"
	"jobboard/internal/http/metrics"
	httpmw "jobboard/internal/http/middleware"
	"jobboard/internal/repository/sqlstore"
	"jobboard/internal/security"
)

type testServer struct {
	handler   http.Handler
	collector *metrics.Collector
}

func newTestServer(t *testing.T, opts ...func(*RouterDependencies)) *testServer {
	t.Helper()
	c := qt.New(t)
	ctx := context.Background()
	db, dialect, err := database.Open(ctx, database.Config{Driver: database.DriverSQLite, DSN: ":memory:"})
	c.Assert(err, qt.IsNil)
	t.Cleanup(func() { _ = db.Close() })
	c.Assert(database.MigrateUp(db, dialect), qt.IsNil)

	users := sqlstore.NewUserRepository(db)
	jobs := sqlstore.NewJobRepository(db)
	applications := sqlstore.NewApplicationRepository(db)
	hasher := security.NewPasswordHasher(4)
	jwt := security.NewJWTProvider("test-secret")
	collector := metrics.NewCollector()
	limiter := httpmw.NewRateLimiter()

	_, _, err = app.NewUserService(users, hasher).EnsureAdmin(ctx, "admin@example.com", "admin123", "Admin User")
	c.Assert(err, qt.IsNil)

	pages := app.DefaultPageRules()
	deps := RouterDependencies{
		AuthHandler:        handlers.NewAuthHandler(app.NewAuthService(users, hasher, jwt, time.Hour)),
		JobHandler:         handlers.NewJobHandler(app.NewJobService(jobs, applications, pages)),
		ApplicationHandler: handlers.NewApplicationHandler(app.NewApplicationService(applications, jobs, users, app.DefaultApplicationRules(), pages), collector),
		MetricsHandler:     metrics.NewHandler(collector),
		AuthMiddleware:     httpmw.NewAuthMiddleware(jwt),
		Metrics:            collector,
		Limiter:            limiter,
		AuthRateLimit:      100,
		AuthRateWindow:     time.Minute,
		RequestTimeout:     5 * time.Second,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	return &testServer{handler: NewRouter(deps), collector: collector}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	out := map[string]any{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode %s %s response: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec.Code, out
}

func (s *testServer) login(t *testing.T, email, password string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": password})
	if status != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d: %v", email, status, body)
	}
	return body["token"].(string)
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	status, body := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": email, "password": "secret123", "name": "Jane Doe"})
	if status != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d: %v", email, status, body)
	}
	return body["token"].(string)
}

func (s *testServer) createJob(t *testing.T, token, title, status string) int64 {
	t.Helper()
	code, body := s.do(t, http.MethodPost, "/api/jobs", token, map[string]any{
		"title":       title,
		"description": "Build and run backend services",
		"company":     "Acme",
		"location":    "Berlin",
		"salary_min":  50000,
		"salary_max":  70000,
		"status":      status,
	})
	if code != http.StatusCreated {
		t.Fatalf("create job: expected 201, got %d: %v", code, body)
	}
	return int64(body["job"].(map[string]any)["id"].(float64))
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "jobboard_http_requests_total") {
		t.Fatalf("metrics output missing counters: %s", rec.Body.String())
	}
	if status, _ := s.do(t, http.MethodGet, "/api/unknown", "", nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", status)
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "Jane@Example.com")

	status, body := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %v", status, body)
	}
	me := body["user"].(map[string]any)
	if me["email"] != "jane@example.com" || me["role"] != "user" {
		t.Fatalf("unexpected user %v", me)
	}
	if _, leaked := me["password_hash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
	if status, _ := s.do(t, http.MethodGet, "/api/auth/profile", token, nil); status != http.StatusOK {
		t.Fatalf("profile alias: expected 200, got %d", status)
	}

	status, body = s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{"email": "jane@example.com", "password": "secret123", "name": "Jane"})
	if status != http.StatusBadRequest || body["code"] != "conflict" {
		t.Fatalf("duplicate register: expected 400 conflict, got %d: %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"email": "jane@example.com", "password": "wrong-password"})
	if status != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d: %v", status, body)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/auth/me", "", nil); status != http.StatusUnauthorized {
		t.Fatalf("me without token: expected 401, got %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/auth/me", "not-a-token", nil); status != http.StatusUnauthorized {
		t.Fatalf("me with garbage token: expected 401, got %d", status)
	}
}

func TestJobEndpoints(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@example.com", "admin123")
	member := s.register(t, "member@example.com")

	if status, _ := s.do(t, http.MethodPost, "/api/jobs", "", map[string]string{"title": "x"}); status != http.StatusUnauthorized {
		t.Fatalf("anonymous create: expected 401, got %d", status)
	}
	if status, _ := s.do(t, http.MethodPost, "/api/jobs", member, map[string]string{"title": "Backend Engineer"}); status != http.StatusForbidden {
		t.Fatalf("member create: expected 403, got %d", status)
	}

	active := s.createJob(t, admin, "Backend Engineer", "active")
	hidden := s.createJob(t, admin, "Data Engineer", "inactive")

	status, body := s.do(t, http.MethodPost, "/api/jobs", admin, map[string]any{
		"title": "Backend Engineer", "description": "Another description", "company": "Acme", "location": "Berlin",
	})
	if status != http.StatusBadRequest || body["code"] != "conflict" {
		t.Fatalf("duplicate title: expected 400 conflict, got %d: %v", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/api/jobs", "", nil)
	if status != http.StatusOK {
		t.Fatalf("list jobs: expected 200, got %d", status)
	}
	if jobs := body["jobs"].([]any); len(jobs) != 1 {
		t.Fatalf("anonymous list should only show active jobs, got %d", len(jobs))
	}
	status, body = s.do(t, http.MethodGet, "/api/jobs", admin, nil)
	if status != http.StatusOK || len(body["jobs"].([]any)) != 2 {
		t.Fatalf("admin list should show every job, got %d: %v", status, body)
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["total"].(float64) != 2 || pagination["page"].(float64) != 1 {
		t.Fatalf("unexpected pagination %v", pagination)
	}

	if status, _ := s.do(t, http.MethodGet, "/api/jobs/"+itoa(hidden), "", nil); status != http.StatusNotFound {
		t.Fatalf("anonymous get of inactive job: expected 404, got %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/jobs/"+itoa(hidden), admin, nil); status != http.StatusOK {
		t.Fatalf("admin get of inactive job: expected 200, got %d", status)
	}

	status, body = s.do(t, http.MethodPut, "/api/jobs/"+itoa(active), admin, map[string]any{"location": "Remote"})
	if status != http.StatusOK || body["job"].(map[string]any)["location"] != "Remote" {
		t.Fatalf("update job: unexpected %d: %v", status, body)
	}
	status, body = s.do(t, http.MethodPut, "/api/jobs/"+itoa(active), admin, map[string]any{"salary_min": 90000})
	if status != http.StatusBadRequest || body["code"] != "validation" {
		t.Fatalf("salary range: expected 400 validation, got %d: %v", status, body)
	}

	if status, _ := s.do(t, http.MethodDelete, "/api/jobs/"+itoa(hidden), admin, nil); status != http.StatusOK {
		t.Fatalf("delete job: expected 200, got %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/jobs/"+itoa(hidden), admin, nil); status != http.StatusNotFound {
		t.Fatalf("deleted job: expected 404, got %d", status)
	}
}

func TestApplicationFlow(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@example.com", "admin123")
	member := s.register(t, "member@example.com")
	other := s.register(t, "other@example.com")
	jobID := s.createJob(t, admin, "Backend Engineer", "active")
	closedID := s.createJob(t, admin, "Old Role", "closed")

	letter := "I would love to work on your backend team."
	status, body := s.do(t, http.MethodPost, "/api/applications/send", member, map[string]any{
		"job_id": itoa(jobID), "cover_letter": letter, "cv_link": "https://example.com/cv.pdf",
	})
	if status != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d: %v", status, body)
	}
	created := body["application"].(map[string]any)
	if created["status"] != "pending" || created["job"].(map[string]any)["title"] != "Backend Engineer" {
		t.Fatalf("unexpected application view %v", created)
	}
	if created["user"].(map[string]any)["email"] != "member@example.com" {
		t.Fatalf("application view should embed the applicant, got %v", created["user"])
	}
	appID := int64(created["id"].(float64))

	status, body = s.do(t, http.MethodPost, "/api/applications/send", member, map[string]any{"job_id": jobID, "cover_letter": letter})
	if status != http.StatusBadRequest || body["code"] != "conflict" {
		t.Fatalf("duplicate submit: expected 400 conflict, got %d: %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/applications/send", member, map[string]any{"job_id": closedID, "cover_letter": letter})
	if status != http.StatusBadRequest || body["code"] != "invalid_state" {
		t.Fatalf("closed job: expected 400 invalid_state, got %d: %v", status, body)
	}
	status, body = s.do(t, http.MethodPost, "/api/applications/send", member, map[string]any{"job_id": jobID, "cover_letter": "short"})
	if status != http.StatusBadRequest || body["fields"].(map[string]any)["cover_letter"] == nil {
		t.Fatalf("short letter: expected field error, got %d: %v", status, body)
	}
	if status, _ := s.do(t, http.MethodPost, "/api/applications/send", "", map[string]any{"job_id": jobID, "cover_letter": letter}); status != http.StatusUnauthorized {
		t.Fatalf("anonymous submit: expected 401, got %d", status)
	}

	status, body = s.do(t, http.MethodGet, "/api/applications", other, nil)
	if status != http.StatusOK || len(body["applications"].([]any)) != 0 {
		t.Fatalf("other user should see no applications, got %d: %v", status, body)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/applications/"+itoa(appID), other, nil); status != http.StatusForbidden {
		t.Fatalf("foreign get: expected 403, got %d", status)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/applications/"+itoa(appID), member, nil); status != http.StatusOK {
		t.Fatalf("own get: expected 200, got %d", status)
	}

	if status, _ := s.do(t, http.MethodPatch, "/api/applications/"+itoa(appID)+"/status", member, map[string]string{"status": "accepted"}); status != http.StatusForbidden {
		t.Fatalf("member status change: expected 403, got %d", status)
	}
	status, body = s.do(t, http.MethodPatch, "/api/applications/"+itoa(appID)+"/status", admin, map[string]string{"status": "withdrawn"})
	if status != http.StatusBadRequest {
		t.Fatalf("unknown status: expected 400, got %d: %v", status, body)
	}
	status, body = s.do(t, http.MethodPatch, "/api/applications/"+itoa(appID)+"/status", admin, map[string]string{"status": "accepted"})
	if status != http.StatusOK || body["application"].(map[string]any)["status"] != "accepted" {
		t.Fatalf("admin status change: unexpected %d: %v", status, body)
	}

	status, body = s.do(t, http.MethodGet, "/api/applications/job/"+itoa(jobID), admin, nil)
	if status != http.StatusOK || len(body["applications"].([]any)) != 1 {
		t.Fatalf("by job: unexpected %d: %v", status, body)
	}
	if status, _ := s.do(t, http.MethodGet, "/api/applications/job/"+itoa(jobID), member, nil); status != http.StatusForbidden {
		t.Fatalf("member by job: expected 403, got %d", status)
	}

	if status, _ := s.do(t, http.MethodDelete, "/api/jobs/"+itoa(jobID), admin, nil); status != http.StatusBadRequest {
		t.Fatalf("delete job with applications: expected 400, got %d", status)
	}
	if status, _ := s.do(t, http.MethodDelete, "/api/applications/"+itoa(appID), member, nil); status != http.StatusOK {
		t.Fatalf("delete own application: expected 200, got %d", status)
	}
	if got := s.collector.Snapshot().Submissions; got != 1 {
		t.Fatalf("expected one counted submission, got %d", got)
	}
}

func TestRepeatedSubmissionsConflict(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@example.com", "admin123")
	member := s.register(t, "member@example.com")
	jobID := s.createJob(t, admin, "Backend Engineer", "active")

	payload := map[string]any{"job_id": jobID, "cover_letter": "I would love to work on your team."}
	if status, body := s.do(t, http.MethodPost, "/api/applications/send", member, payload); status != http.StatusCreated {
		t.Fatalf("first submit: expected 201, got %d: %v", status, body)
	}
	for i := 0; i < 10; i++ {
		status, body := s.do(t, http.MethodPost, "/api/applications/send", member, payload)
		if status != http.StatusBadRequest || body["code"] != "conflict" {
			t.Fatalf("repeat %d: expected 400 conflict, got %d: %v", i+1, status, body)
		}
	}
}

func TestConcurrentSubmissionsConflict(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(t, "admin@example.com", "admin123")
	member := s.register(t, "member@example.com")
	jobID := s.createJob(t, admin, "Backend Engineer", "active")

	const attempts = 10
	payload := map[string]any{"job_id": jobID, "cover_letter": "I would love to work on your team."}
	type outcome struct {
		status int
		code   any
	}
	results := make(chan outcome, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, body := s.do(t, http.MethodPost, "/api/applications/send", member, payload)
			results <- outcome{status: status, code: body["code"]}
		}()
	}
	wg.Wait()
	close(results)

	created, conflicts := 0, 0
	for r := range results {
		switch {
		case r.status == http.StatusCreated:
			created++
		case r.status == http.StatusBadRequest && r.code == "conflict":
			conflicts++
		default:
			t.Fatalf("unexpected outcome %d %v", r.status, r.code)
		}
	}
	if created != 1 || conflicts != attempts-1 {
		t.Fatalf("expected 1 created and %d conflicts, got %d and %d", attempts-1, created, conflicts)
	}
	if got := s.collector.Snapshot().Submissions; got != 1 {
		t.Fatalf("expected one counted submission, got %d", got)
	}
}

func TestAuthRateLimited(t *testing.T) {
	s := newTestServer(t, func(deps *RouterDependencies) {
		deps.AuthRateLimit = 2
	})
	creds := map[string]string{"email": "admin@example.com", "password": "wrong-password"}
	for i := 0; i < 2; i++ {
		if status, _ := s.do(t, http.MethodPost, "/api/auth/login", "", creds); status != http.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, status)
		}
	}
	status, body := s.do(t, http.MethodPost, "/api/auth/login", "", creds)
	if status != http.StatusTooManyRequests || body["code"] != "rate_limited" {
		t.Fatalf("expected 429, got %d: %v", status, body)
	}
	if got := s.collector.Snapshot().RateLimited; got != 1 {
		t.Fatalf("expected one rate limited response, got %d", got)
	}
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
