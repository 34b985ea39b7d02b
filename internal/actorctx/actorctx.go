package actorctx

import (
	"context"

	"github.com/geocoder89/commenthub/internal/identity"
)

type ctxKey struct{}

func WithIdentity(ctx context.Context, id identity.Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity resolved for this request, or a guest when
// none was attached.
func IdentityFrom(ctx context.Context) identity.Identity {
	id, ok := ctx.Value(ctxKey{}).(identity.Identity)
	if !ok {
		return identity.Guest()
	}
	return id
}

// UserIDFrom is the log-friendly view; guests have no id.
func UserIDFrom(ctx context.Context) (string, bool) {
	id := IdentityFrom(ctx)
	return id.UserID, !id.IsGuest() && id.UserID != ""
}
