package policy

import (
	"testing"

	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/identity"
)

func TestCanModerate(t *testing.T) {
	admin := identity.Authenticated("a1", user.RoleAdmin, nil)
	owner := identity.Authenticated("u1", user.RoleUser, nil)
	other := identity.Authenticated("u2", user.RoleUser, nil)

	tests := []struct {
		name    string
		id      identity.Identity
		ownerID string
		want    bool
	}{
		{"guest", identity.Guest(), "u1", false},
		{"admin on any owner", admin, "u1", true},
		{"admin on guest resource", admin, "", true},
		{"owner", owner, "u1", true},
		{"other user", other, "u1", false},
		{"user on guest resource", owner, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanModerate(tt.id, tt.ownerID); got != tt.want {
				t.Fatalf("CanModerate = %v, want %v", got, tt.want)
			}
			err := Moderate(tt.id, tt.ownerID)
			if tt.want && err != nil {
				t.Fatalf("Moderate returned %v", err)
			}
			if !tt.want && err != ErrForbidden {
				t.Fatalf("Moderate returned %v, want ErrForbidden", err)
			}
		})
	}
}

func TestRequiresAdmin(t *testing.T) {
	if RequiresAdmin(identity.Guest()) {
		t.Fatalf("guest passed admin check")
	}
	if RequiresAdmin(identity.Authenticated("u1", user.RoleUser, nil)) {
		t.Fatalf("user passed admin check")
	}
	if err := Admin(identity.Authenticated("a1", user.RoleAdmin, nil)); err != nil {
		t.Fatalf("admin rejected: %v", err)
	}
}
