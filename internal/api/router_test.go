package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/sandwichproject/admin-api/internal/api/handler"
	"github.com/sandwichproject/admin-api/internal/core/domain"
	"github.com/sandwichproject/admin-api/internal/core/ports"
	"github.com/sandwichproject/admin-api/internal/core/service"
)

// --- in-memory adapters ---

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.User
}

func newMemUsers() *memUsers { return &memUsers{byID: map[int64]domain.User{}} }

func (m *memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	m.nextID++
	stored := *user
	stored.ID = m.nextID
	m.byID[stored.ID] = stored
	return &stored, nil
}

func (m *memUsers) UpdateRole(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	m.byID[user.ID] = *user
	return nil
}

type memCache struct {
	mu       sync.Mutex
	byID     map[int64]domain.User
	versions map[int64]int64
}

func (c *memCache) Get(_ context.Context, id int64) (*domain.User, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	u, ok := c.byID[id]
	if !ok {
		return nil, false, nil
	}
	return &u, true, nil
}

func (c *memCache) Version(_ context.Context, id int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[id], nil
}

func (c *memCache) Set(_ context.Context, user *domain.User, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[user.ID] != version {
		return false, nil
	}
	c.byID[user.ID] = *user
	return true, nil
}

func (c *memCache) Invalidate(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[id]++
	delete(c.byID, id)
	return nil
}

type memRevoker struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (r *memRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = until
	return nil
}

func (r *memRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

type memProjects struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.Project
}

func (m *memProjects) List(_ context.Context, f ports.ListProjectsFilter) ([]*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Project{}
	for id := int64(1); id <= m.nextID; id++ {
		p, ok := m.byID[id]
		if !ok {
			continue
		}
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		out = append(out, &p)
	}
	return out, nil
}

func (m *memProjects) FindByID(_ context.Context, id int64) (*domain.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return &p, nil
}

func (m *memProjects) Create(_ context.Context, p *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p.ID = m.nextID
	m.byID[p.ID] = *p
	return nil
}

func (m *memProjects) Update(_ context.Context, p *domain.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	m.byID[p.ID] = *p
	return nil
}

func (m *memProjects) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(m.byID, id)
	return nil
}

type discardAudit struct{}

func (discardAudit) Enqueue(domain.AuditEntry) {}

// --- harness ---

const (
	adminEmail    = "admin@sandwichproject.org"
	adminPassword = "admin-password"
)

type testServer struct {
	t *testing.T
	e *echo.Echo
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zerolog.Nop()

	users := newMemUsers()
	projects := &memProjects{byID: map[int64]domain.Project{}}
	cache := &memCache{byID: map[int64]domain.User{}, versions: map[int64]int64{}}
	revoker := &memRevoker{revoked: map[string]time.Time{}}

	seeder := service.NewSeeder(users, projects, log)
	if err := seeder.Seed(context.Background(), service.SeedInput{
		AdminEmail:    adminEmail,
		AdminName:     "Admin",
		AdminPassword: adminPassword,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	reg := prometheus.NewRegistry()
	e := NewRouter(Dependencies{
		Auth:     service.NewAuthService(users, cache, revoker, "test-secret", time.Hour, log),
		Projects: service.NewProjectService(projects, discardAudit{}, log),
		Users:    service.NewUserService(users, cache, discardAudit{}, log),
		Checks: map[string]handler.DependencyCheck{
			"mongodb": func(context.Context) error { return nil },
		},
		Registerer: reg,
		Gatherer:   reg,
		Logger:     log,
	})
	return &testServer{t: t, e: e}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	s.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(email, password string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"`+password+`"}`)
	if rec.Code != http.StatusOK {
		s.t.Fatalf("login %s: expected 200, got %d: %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		s.t.Fatalf("login %s: no token in %s", email, rec.Body.String())
	}
	return resp.Token
}

func (s *testServer) createUser(adminToken, email string, role domain.Role) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/users", adminToken,
		`{"email":"`+email+`","name":"Member","role":"`+string(role)+`","password":"member-password"}`)
	if rec.Code != http.StatusCreated {
		s.t.Fatalf("create %s: expected 201, got %d: %s", email, rec.Code, rec.Body.String())
	}
	return s.login(email, "member-password")
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid error body %q: %v", rec.Body.String(), err)
	}
	return resp.Error
}

// --- tests ---

func TestRouter_OperationalEndpoints(t *testing.T) {
	s := newTestServer(t)

	expectStatus(t, s.do(http.MethodGet, "/health", "", ""), http.StatusOK)
	expectStatus(t, s.do(http.MethodGet, "/health/ready", "", ""), http.StatusOK)

	s.do(http.MethodGet, "/health", "", "")
	rec := s.do(http.MethodGet, "/metrics", "", "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "sandwich_http_requests_total") {
		t.Fatalf("expected http request metrics, got:\n%s", rec.Body.String())
	}
}

func TestRouter_LoginAndCurrentUser(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/auth/login", "", `{"email":"`+adminEmail+`","password":"wrong"}`)
	expectStatus(t, rec, http.StatusUnauthorized)

	rec = s.do(http.MethodPost, "/api/auth/login", "", `{"email":"nobody@sandwichproject.org","password":"x"}`)
	expectStatus(t, rec, http.StatusUnauthorized)

	token := s.login(adminEmail, adminPassword)
	rec = s.do(http.MethodGet, "/api/auth/user", token, "")
	expectStatus(t, rec, http.StatusOK)

	var user struct {
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if user.Role != "admin" || len(user.Permissions) != len(domain.AllPermissions()) {
		t.Fatalf("expected admin with every permission, got %+v", user)
	}
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/auth/user", "/api/projects", "/api/roles"} {
		rec := s.do(http.MethodGet, path, "", "")
		expectStatus(t, rec, http.StatusUnauthorized)
	}
	expectStatus(t, s.do(http.MethodGet, "/api/projects", "garbage", ""), http.StatusUnauthorized)
}

func TestRouter_LogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token := s.login(adminEmail, adminPassword)

	rec := s.do(http.MethodPost, "/api/logout", token, "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Logged out successfully") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}

	expectStatus(t, s.do(http.MethodGet, "/api/auth/user", token, ""), http.StatusUnauthorized)
}

func TestRouter_ProjectPermissions(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, adminPassword)
	coordinator := s.createUser(admin, "coord@sandwichproject.org", domain.RoleCoordinator)
	viewer := s.createUser(admin, "viewer@sandwichproject.org", domain.RoleViewer)

	// Seeded starter projects are visible to the coordinator.
	rec := s.do(http.MethodGet, "/api/projects", coordinator, "")
	expectStatus(t, rec, http.StatusOK)
	var listed []domain.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil || len(listed) != 2 {
		t.Fatalf("expected 2 seeded projects, got %s", rec.Body.String())
	}

	// Viewer lacks view_projects.
	rec = s.do(http.MethodGet, "/api/projects", viewer, "")
	expectStatus(t, rec, http.StatusForbidden)
	if got := errorBody(t, rec); got != "forbidden" {
		t.Fatalf("expected forbidden envelope, got %q", got)
	}

	// Coordinator holds edit_data.
	rec = s.do(http.MethodPost, "/api/projects", coordinator, `{"title":"Holiday Drive","priority":"high"}`)
	expectStatus(t, rec, http.StatusCreated)
	var created domain.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if created.Status != domain.ProjectPlanning || created.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected defaults: %+v", created)
	}
	path := "/api/projects/" + jsonID(created.ID)

	rec = s.do(http.MethodPut, path, coordinator, `{"status":"active"}`)
	expectStatus(t, rec, http.StatusOK)

	rec = s.do(http.MethodPut, path, coordinator, `{"status":"archived"}`)
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	// Only delete_data may delete.
	expectStatus(t, s.do(http.MethodDelete, path, coordinator, ""), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodDelete, path, admin, ""), http.StatusNoContent)

	rec = s.do(http.MethodGet, path, admin, "")
	expectStatus(t, rec, http.StatusNotFound)
	if got := errorBody(t, rec); got != "project not found" {
		t.Fatalf("unexpected error message %q", got)
	}

	expectStatus(t, s.do(http.MethodPatch, path, admin, `{}`), http.StatusMethodNotAllowed)
}

func TestRouter_UserManagement(t *testing.T) {
	s := newTestServer(t)
	admin := s.login(adminEmail, adminPassword)
	volunteer := s.createUser(admin, "vol@sandwichproject.org", domain.RoleVolunteer)

	// Duplicate email.
	rec := s.do(http.MethodPost, "/api/users", admin,
		`{"email":"vol@sandwichproject.org","name":"Again","role":"volunteer","password":"member-password"}`)
	expectStatus(t, rec, http.StatusConflict)

	// Volunteers cannot manage users.
	rec = s.do(http.MethodPost, "/api/users", volunteer,
		`{"email":"x@sandwichproject.org","name":"X","role":"admin","password":"member-password"}`)
	expectStatus(t, rec, http.StatusForbidden)

	// The volunteer can view projects but not edit them until promoted.
	expectStatus(t, s.do(http.MethodPost, "/api/projects", volunteer, `{"title":"T"}`), http.StatusForbidden)

	rec = s.do(http.MethodPut, "/api/users/2/role", admin, `{"role":"coordinator"}`)
	expectStatus(t, rec, http.StatusOK)

	// Same token, recomputed permissions.
	expectStatus(t, s.do(http.MethodPost, "/api/projects", volunteer, `{"title":"T"}`), http.StatusCreated)

	expectStatus(t, s.do(http.MethodPut, "/api/users/99/role", admin, `{"role":"viewer"}`), http.StatusNotFound)
	expectStatus(t, s.do(http.MethodPut, "/api/users/2/role", admin, `{"role":"superuser"}`), http.StatusUnprocessableEntity)
}

func TestRouter_ListRoles(t *testing.T) {
	s := newTestServer(t)
	token := s.login(adminEmail, adminPassword)

	rec := s.do(http.MethodGet, "/api/roles", token, "")
	expectStatus(t, rec, http.StatusOK)

	var roles []struct {
		Role        string   `json:"role"`
		DisplayName string   `json:"display_name"`
		Permissions []string `json:"permissions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &roles); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(roles) != len(domain.Roles()) {
		t.Fatalf("expected %d roles, got %d", len(domain.Roles()), len(roles))
	}
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
