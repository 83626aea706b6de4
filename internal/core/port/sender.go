package port

import (
	"authbot/internal/core/domain"
	"context"
)

type Notifier interface {
	// Notify sends a plain text message to the given identity.
	Notify(ctx context.Context, target domain.Identity, text string) error
}
