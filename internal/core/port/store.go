package port

import (
	"authbot/internal/core/domain"
	"context"
)

type IdentityStore interface {
	// Load restores the authorized and pending sets. Both maps are empty when no state was persisted yet.
	Load(ctx context.Context) (authorized, pending map[domain.Identity]domain.IdentityMetadata, err error)
	// Persist durably replaces the stored sets. It returns only after the write is complete.
	Persist(ctx context.Context, authorized, pending map[domain.Identity]domain.IdentityMetadata) error
	// Close releases the backing resources.
	Close() error
}
