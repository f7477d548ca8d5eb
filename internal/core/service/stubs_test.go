package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sandwichproject/admin-api/internal/core/domain"
	"github.com/sandwichproject/admin-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	byID   map[int64]*domain.User
	nextID int64
	err    error // if set, every call returns this error
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{byID: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Permissions = append([]domain.Permission(nil), u.Permissions...)
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = r.nextID
	r.byID[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, user *domain.User) error {
	if r.err != nil {
		return r.err
	}
	stored, ok := r.byID[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	stored.Role = user.Role
	stored.Permissions = append([]domain.Permission(nil), user.Permissions...)
	stored.UpdatedAt = user.UpdatedAt
	return nil
}

type stubUserCache struct {
	users       map[int64]*domain.User
	versions    map[int64]int64
	getErr      error
	invalidated []int64
}

func newStubUserCache() *stubUserCache {
	return &stubUserCache{users: make(map[int64]*domain.User), versions: make(map[int64]int64)}
}

func (c *stubUserCache) Get(_ context.Context, id int64) (*domain.User, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	u, ok := c.users[id]
	return cloneUser(u), ok, nil
}

func (c *stubUserCache) Version(_ context.Context, id int64) (int64, error) {
	return c.versions[id], nil
}

func (c *stubUserCache) Set(_ context.Context, user *domain.User, version int64) (bool, error) {
	if c.versions[user.ID] != version {
		return false, nil
	}
	c.users[user.ID] = cloneUser(user)
	return true, nil
}

func (c *stubUserCache) Invalidate(_ context.Context, id int64) error {
	c.versions[id]++
	delete(c.users, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

type stubRevoker struct {
	revoked map[string]time.Time
	err     error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Time)}
}

func (r *stubRevoker) Revoke(_ context.Context, tokenID string, until time.Time) error {
	if r.err != nil {
		return r.err
	}
	r.revoked[tokenID] = until
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if r.err != nil {
		return false, r.err
	}
	_, ok := r.revoked[tokenID]
	return ok, nil
}

type stubProjectRepo struct {
	byID   map[int64]*domain.Project
	nextID int64
	err    error
}

func newStubProjectRepo() *stubProjectRepo {
	return &stubProjectRepo{byID: make(map[int64]*domain.Project)}
}

func (r *stubProjectRepo) List(_ context.Context, f ports.ListProjectsFilter) ([]*domain.Project, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]*domain.Project, 0, len(r.byID))
	for _, p := range r.byID {
		if f.Status != "" && string(p.Status) != f.Status {
			continue
		}
		if f.Priority != "" && string(p.Priority) != f.Priority {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProjectRepo) FindByID(_ context.Context, id int64) (*domain.Project, error) {
	if r.err != nil {
		return nil, r.err
	}
	p, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *stubProjectRepo) Create(_ context.Context, p *domain.Project) error {
	if r.err != nil {
		return r.err
	}
	r.nextID++
	p.ID = r.nextID
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProjectRepo) Update(_ context.Context, p *domain.Project) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.byID[p.ID]; !ok {
		return domain.ErrProjectNotFound
	}
	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *stubProjectRepo) Delete(_ context.Context, id int64) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.byID[id]; !ok {
		return domain.ErrProjectNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubAuditSink struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

func (s *stubAuditSink) Enqueue(entry domain.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

// userWithRole builds an actor carrying its role's default permissions.
func userWithRole(id int64, role domain.Role) *domain.User {
	u := domain.NewUser("user@sandwichproject.org", "Test User", role, time.Now().UTC())
	u.ID = id
	return u
}
