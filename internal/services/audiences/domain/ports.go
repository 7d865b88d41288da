package domain

import (
	"context"

	"adrelay/internal/core/identity"
)

// CatalogPort reads and mutates the partner audience catalog
type CatalogPort interface {
	// ListAll materializes the full catalog, paginating until the
	// reported total is covered. Any page failure fails the listing
	ListAll(ctx context.Context) ([]AudienceRecord, error)
	// Create registers a new audience keyed to its primary identifier
	// type and returns its id
	Create(ctx context.Context, name string, idType identity.Type) (string, error)
	// Mutate sends one batch. A nil error means the partner accepted it
	Mutate(ctx context.Context, advertiserID, audienceID string, batch MutationBatch) error
}

// SyncPort runs one full sync invocation
type SyncPort interface {
	Sync(ctx context.Context, in SyncInput) (SyncResult, error)
}

// ResolverPort maps an audience name to a partner id, creating on miss
type ResolverPort interface {
	Resolve(ctx context.Context, name string, idType identity.Type) (id string, created bool, err error)
}
