package auth

import (
	"context"
	"log/slog"

	"inventory-server/models"
)

// Notifier delivers password reset tokens to their owners.
type Notifier interface {
	SendPasswordReset(ctx context.Context, u models.User, token string) error
}

// LogNotifier writes reset tokens to the log. It stands in for a mailer.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) SendPasswordReset(ctx context.Context, u models.User, token string) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "password reset requested", "user_id", u.ID, "email", u.Email, "reset_token", token)
	return nil
}
