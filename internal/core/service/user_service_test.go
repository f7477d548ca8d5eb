package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sandwichproject/admin-api/internal/core/domain"
	"github.com/sandwichproject/admin-api/internal/core/ports"
)

func newUserSvc() (*UserService, *stubUserRepo, *stubUserCache, *stubAuditSink) {
	repo := newStubUserRepo()
	cache := newStubUserCache()
	sink := &stubAuditSink{}
	return NewUserService(repo, cache, sink, zerolog.Nop()), repo, cache, sink
}

func TestUserService_Create_DerivesPermissions(t *testing.T) {
	svc, repo, _, sink := newUserSvc()
	admin := userWithRole(100, domain.RoleAdmin)

	u, err := svc.Create(context.Background(), admin, ports.CreateUserInput{
		Email: "host@sandwichproject.org", Name: "Hana", Role: domain.RoleHost, Password: "pw",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Role != domain.RoleHost {
		t.Fatalf("unexpected role %s", u.Role)
	}
	if !domain.HasAllPermissions(u, domain.DefaultPermissionsForRole(domain.RoleHost)) || len(u.Permissions) != 3 {
		t.Fatalf("permissions not derived from role: %v", u.Permissions)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.byID[u.ID].PasswordHash), []byte("pw")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(sink.entries) != 1 || sink.entries[0].ActorID != 100 || sink.entries[0].Resource != "user" {
		t.Fatalf("unexpected audit entries: %+v", sink.entries)
	}
}

func TestUserService_Create_Errors(t *testing.T) {
	svc, _, _, _ := newUserSvc()
	admin := userWithRole(1, domain.RoleAdmin)
	ctx := context.Background()

	if _, err := svc.Create(ctx, userWithRole(2, domain.RoleCoordinator), ports.CreateUserInput{Role: domain.RoleViewer}); err != domain.ErrForbidden {
		t.Fatalf("coordinator: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.Create(ctx, admin, ports.CreateUserInput{Email: "x@y.org", Role: "superuser", Password: "pw"}); !errors.Is(err, domain.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}

	in := ports.CreateUserInput{Email: "dup@sandwichproject.org", Role: domain.RoleViewer, Password: "pw"}
	if _, err := svc.Create(ctx, admin, in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(ctx, admin, in); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	in.Email = "  DUP@SandwichProject.org"
	if _, err := svc.Create(ctx, admin, in); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists for differently cased email, got %v", err)
	}
}

func TestUserService_Create_PasswordTooLong(t *testing.T) {
	svc, repo, _, sink := newUserSvc()
	admin := userWithRole(1, domain.RoleAdmin)

	_, err := svc.Create(context.Background(), admin, ports.CreateUserInput{
		Email: "long@sandwichproject.org", Role: domain.RoleViewer, Password: strings.Repeat("a", 73),
	})
	if !errors.Is(err, domain.ErrPasswordTooLong) {
		t.Fatalf("expected ErrPasswordTooLong, got %v", err)
	}
	if len(repo.byID) != 0 || len(sink.entries) != 0 {
		t.Fatalf("nothing should be stored for a rejected password")
	}

	if _, err := svc.Create(context.Background(), admin, ports.CreateUserInput{
		Email: "edge@sandwichproject.org", Role: domain.RoleViewer, Password: strings.Repeat("a", 72),
	}); err != nil {
		t.Fatalf("72-byte password should be accepted: %v", err)
	}
}

func TestUserService_Create_NormalizesEmail(t *testing.T) {
	svc, repo, _, _ := newUserSvc()

	u, err := svc.Create(context.Background(), userWithRole(1, domain.RoleAdmin), ports.CreateUserInput{
		Email: " Mixed.Case@SandwichProject.org ", Role: domain.RoleHost, Password: "pw",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Email != "mixed.case@sandwichproject.org" || repo.byID[u.ID].Email != u.Email {
		t.Fatalf("email not normalized: %q", u.Email)
	}
}

func TestUserService_ChangeRole_RecomputesAndInvalidates(t *testing.T) {
	svc, repo, cache, sink := newUserSvc()
	admin := userWithRole(1, domain.RoleAdmin)
	target, _ := repo.Create(context.Background(), userWithRole(0, domain.RoleVolunteer))
	cache.users[target.ID] = cloneUser(target)

	updated, err := svc.ChangeRole(context.Background(), admin, target.ID, domain.RoleCoordinator)
	if err != nil {
		t.Fatalf("change role: %v", err)
	}
	if updated.Role != domain.RoleCoordinator || !domain.HasPermission(updated, domain.PermModerateMessages) {
		t.Fatalf("permissions not recomputed: %+v", updated)
	}

	stored := repo.byID[target.ID]
	if stored.Role != domain.RoleCoordinator || len(stored.Permissions) != len(domain.DefaultPermissionsForRole(domain.RoleCoordinator)) {
		t.Fatalf("stored snapshot drifted from role: %+v", stored)
	}
	if _, ok := cache.users[target.ID]; ok {
		t.Fatalf("cached user not invalidated")
	}
	if len(sink.entries) != 1 || sink.entries[0].Action != "change_role" {
		t.Fatalf("expected change_role audit entry, got %+v", sink.entries)
	}
}

func TestUserService_ChangeRole_Errors(t *testing.T) {
	svc, _, _, _ := newUserSvc()
	ctx := context.Background()

	if _, err := svc.ChangeRole(ctx, userWithRole(1, domain.RoleVolunteer), 2, domain.RoleAdmin); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ChangeRole(ctx, userWithRole(1, domain.RoleAdmin), 2, "root"); !errors.Is(err, domain.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	if _, err := svc.ChangeRole(ctx, userWithRole(1, domain.RoleAdmin), 2, domain.RoleViewer); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
