package notifications

import (
	"context"
	"log/slog"
)

// LogNotifier records that a reset was requested. The token itself is never logged.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, in SendPasswordResetInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.password_reset",
		"user_id", in.UserID,
		"email", in.Email,
		"expires_at", in.ExpiresAt,
	)
	return nil
}
