// Package repo adapts the partner audience API to the domain catalog port
package repo

import (
	"context"

	"adrelay/internal/adapters/partner"
	"adrelay/internal/core/identity"
	perr "adrelay/internal/platform/errors"
	dom "adrelay/internal/services/audiences/domain"
)

// pageSize is the partner's page upper bound, not configurable per call
const pageSize = 100

// Catalog implements domain.CatalogPort against the partner HTTP API
type Catalog struct {
	client *partner.Client
}

// New constructs a Catalog over a partner client
func New(client *partner.Client) *Catalog {
	return &Catalog{client: client}
}

// ListAll materializes the full audience catalog. Pages are fetched
// sequentially starting at 1 until received covers the total reported by
// the latest page; the empty-page guard bounds the loop even when the
// partner reports a shrinking total mid-listing. Any page failure fails
// the whole listing so an incomplete catalog can never drive a create
// decision
func (c *Catalog) ListAll(ctx context.Context) ([]dom.AudienceRecord, error) {
	var out []dom.AudienceRecord
	page := 1
	for {
		res, err := c.client.ListAudiences(ctx, page, pageSize)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "audience catalog page %d", page)
		}
		for _, a := range res.List {
			out = append(out, dom.AudienceRecord{Name: a.Name, ID: a.ID, CreatedAt: a.CreatedAt})
		}
		// >= tolerates totals moving while we page
		if len(out) >= res.PageInfo.TotalNumber || len(res.List) == 0 {
			return out, nil
		}
		page++
	}
}

// Create registers name with the partner and returns the new id
func (c *Catalog) Create(ctx context.Context, name string, idType identity.Type) (string, error) {
	id, err := c.client.CreateAudience(ctx, name, idType)
	if err != nil {
		return "", perr.Wrapf(err, perr.ErrorCodeUpstream, "audience create %q", name)
	}
	return id, nil
}

// Mutate sends one membership batch. The error, if any, is the partner
// client's *StatusError so the caller can classify the status and body
func (c *Catalog) Mutate(ctx context.Context, advertiserID, audienceID string, batch dom.MutationBatch) error {
	rows := make([][]partner.HashedIdentifier, 0, len(batch.Rows))
	for _, row := range batch.Rows {
		wire := make([]partner.HashedIdentifier, 0, len(row.Digests))
		for _, hd := range row.Digests {
			wire = append(wire, partner.HashedIdentifier{Digest: hd.Digest, AudienceIDs: hd.AudienceIDs})
		}
		rows = append(rows, wire)
	}
	return c.client.MutateMembers(ctx, partner.MutationRequest{
		AdvertiserIDs: []string{advertiserID},
		Action:        batch.Action.WireAction(),
		IDSchema:      batch.IDSchema,
		BatchData:     rows,
	})
}
