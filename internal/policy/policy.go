package policy

import (
	"errors"

	"github.com/geocoder89/commenthub/internal/domain/user"
	"github.com/geocoder89/commenthub/internal/identity"
)

var ErrForbidden = errors.New("insufficient permissions")

// CanModerate allows admins, and users acting on a resource they own.
func CanModerate(id identity.Identity, ownerID string) bool {
	if id.IsGuest() {
		return false
	}
	if id.Role.AtLeast(user.RoleAdmin) {
		return true
	}
	return id.Role == user.RoleUser && ownerID != "" && id.UserID == ownerID
}

func RequiresAdmin(id identity.Identity) bool {
	return !id.IsGuest() && id.Role.AtLeast(user.RoleAdmin)
}

func Moderate(id identity.Identity, ownerID string) error {
	if !CanModerate(id, ownerID) {
		return ErrForbidden
	}
	return nil
}

func Admin(id identity.Identity) error {
	if !RequiresAdmin(id) {
		return ErrForbidden
	}
	return nil
}
