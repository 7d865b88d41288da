package service

import (
	"context"

	"adrelay/internal/core/identity"
	perr "adrelay/internal/platform/errors"
	dom "adrelay/internal/services/audiences/domain"
)

// Resolver maps an audience name to its partner id, creating the
// audience when the catalog has no match. The catalog is re-fetched on
// every call; nothing is cached across invocations
type Resolver struct {
	catalog dom.CatalogPort
}

// NewResolver constructs a Resolver over a catalog port
func NewResolver(catalog dom.CatalogPort) *Resolver {
	return &Resolver{catalog: catalog}
}

// Resolve returns the id for name, creating on a miss. Two or more
// catalog entries with the same name fail fast rather than picking one.
// Creation is not retried here: a failed create fails the whole attempt
// and the caller must restart from the listing
func (r *Resolver) Resolve(ctx context.Context, name string, idType identity.Type) (string, bool, error) {
	catalog, err := r.catalog.ListAll(ctx)
	if err != nil {
		return "", false, err
	}

	var matches []dom.AudienceRecord
	for _, rec := range catalog {
		if rec.Name == name {
			matches = append(matches, rec)
		}
	}
	switch len(matches) {
	case 0:
		id, err := r.catalog.Create(ctx, name, idType)
		if err != nil {
			return "", false, err
		}
		return id, true, nil
	case 1:
		return matches[0].ID, false, nil
	default:
		return "", false, perr.Configurationf("ambiguous audience name %q matches %d audiences", name, len(matches))
	}
}
