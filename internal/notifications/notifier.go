package notifications

import (
	"context"
	"time"
)

type SendPasswordResetInput struct {
	UserID    string
	Email     string
	Name      string
	Token     string
	ExpiresAt time.Time
}

// Notifier hands a reset token to whatever delivers it to the user. Mail delivery
// itself lives outside this service.
type Notifier interface {
	SendPasswordReset(ctx context.Context, input SendPasswordResetInput) error
}
