package db

import (
	"context"
	"testing"

	"github.com/geocoder89/commenthub/internal/config"
	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/repo/memory"
	"github.com/geocoder89/commenthub/internal/security"
)

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsersRepo(nil)
	cfg := config.Config{AdminEmail: "Root@Example.com", AdminPassword: "hunter22", AdminName: "Root"}

	created, err := EnsureAdminUser(ctx, users, cfg)
	if err != nil {
		t.Fatalf("EnsureAdminUser error: %v", err)
	}
	if !created {
		t.Fatalf("expected admin to be created")
	}

	u, err := users.GetByEmail(ctx, "root@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if u.Role != user.RoleAdmin {
		t.Fatalf("got role %q, want admin", u.Role)
	}
	if ok, _ := security.PasswordMatches(u.PasswordHash, "hunter22"); !ok {
		t.Fatalf("seeded password does not match")
	}

	created, err = EnsureAdminUser(ctx, users, cfg)
	if err != nil || created {
		t.Fatalf("second run should be a no-op, got created=%v err=%v", created, err)
	}
	if users.Count() != 1 {
		t.Fatalf("got %d users, want 1", users.Count())
	}
}

func TestEnsureAdminUser_Disabled(t *testing.T) {
	users := memory.NewUsersRepo(nil)

	created, err := EnsureAdminUser(context.Background(), users, config.Config{})
	if err != nil || created {
		t.Fatalf("expected no-op, got created=%v err=%v", created, err)
	}
}
