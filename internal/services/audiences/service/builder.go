package service

import (
	"adrelay/internal/core/identity"
	perr "adrelay/internal/platform/errors"
	dom "adrelay/internal/services/audiences/domain"
)

// BuildBatch assembles one mutation batch from member records. The id
// schema is computed once for the whole batch, in declared type order.
// Records with no usable identifier are dropped, not sent as empty rows;
// the dropped count is reported back for the caller's accounting
func BuildBatch(
	records []dom.MemberRecord,
	enabled []identity.Type,
	audienceID string,
	action dom.Action,
) (dom.MutationBatch, int, error) {
	on := map[identity.Type]bool{}
	for _, t := range enabled {
		on[t] = true
	}
	if len(on) == 0 {
		return dom.MutationBatch{}, 0, perr.Configurationf("no identifier types enabled")
	}

	// schema in declared order, independent of caller ordering
	var schema []identity.Type
	for _, t := range identity.AllTypes {
		if on[t] {
			schema = append(schema, t)
		}
	}

	audiences := []string{audienceID}
	rows := make([]dom.HashedRow, 0, len(records))
	dropped := 0
	for _, rec := range records {
		var digests []dom.HashedIdentifier
		for _, t := range schema {
			for _, env := range rec.Identifiers {
				if env.Type != t {
					continue
				}
				digest, ok := identity.Process(env)
				if !ok {
					continue
				}
				digests = append(digests, dom.HashedIdentifier{
					Type:        t,
					Digest:      digest,
					AudienceIDs: audiences,
				})
			}
		}
		if len(digests) == 0 {
			dropped++
			continue
		}
		rows = append(rows, dom.HashedRow{Digests: digests})
	}

	return dom.MutationBatch{Action: action, IDSchema: schema, Rows: rows}, dropped, nil
}
