// Package domain defines the audience sync types shared across the
// service, repo, and transport layers
package domain

import "adrelay/internal/core/identity"

// Action is a membership mutation direction
type Action string

const (
	// ActionAdd adds members to an audience
	ActionAdd Action = "add"
	// ActionRemove removes members from an audience
	ActionRemove Action = "remove"
)

// WireAction maps an Action to the partner's verb
func (a Action) WireAction() string {
	if a == ActionRemove {
		return "delete"
	}
	return "add"
}

// AudienceRecord is one catalog entry. Identity is ID; Name is a caller
// chosen label the partner does not keep unique
type AudienceRecord struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

// CatalogPage is one page of the audience catalog as reported upstream
type CatalogPage struct {
	Items      []AudienceRecord
	PageNumber int
	PageSize   int
	TotalCount int
}

// MemberRecord is one user record to sync. Identifiers carries at most
// one envelope per identifier type
type MemberRecord struct {
	Identifiers []identity.Envelope
}

// HashedRow is the hashed identifiers of one member, each stamped with
// the target audience. Raw values never appear here
type HashedRow struct {
	Digests []HashedIdentifier
}

// HashedIdentifier is one digest bound to its audiences
type HashedIdentifier struct {
	Type        identity.Type
	Digest      string
	AudienceIDs []string
}

// MutationBatch is one wire-bound group of membership mutations.
// IDSchema is computed once per batch in declared type order
type MutationBatch struct {
	Action   Action
	IDSchema []identity.Type
	Rows     []HashedRow
}

// Empty reports whether the batch has no rows to send
func (b MutationBatch) Empty() bool { return len(b.Rows) == 0 }

// OutcomeStatus classifies a dispatch attempt
type OutcomeStatus string

const (
	// OutcomeOK means the partner accepted the mutation
	OutcomeOK OutcomeStatus = "OK"
	// OutcomeRetryable means the caller should re-run the whole sync
	// after a delay
	OutcomeRetryable OutcomeStatus = "RETRYABLE"
	// OutcomeFatal means retrying the same input cannot succeed
	OutcomeFatal OutcomeStatus = "FATAL"
)

// MutationOutcome is the dispatch classification handed to the caller's
// retry policy
type MutationOutcome struct {
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// SyncInput is one sync invocation: a target audience by name or by a
// pre-resolved external id, plus the member records to mutate
type SyncInput struct {
	AudienceName string
	ExternalID   string
	AdvertiserID string
	Action       Action
	EnabledTypes []identity.Type
	Records      []MemberRecord
}

// SyncResult reports what one invocation did
type SyncResult struct {
	AudienceID string          `json:"audience_id"`
	Created    bool            `json:"created"`
	Rows       int             `json:"rows"`
	Dropped    int             `json:"dropped"`
	Outcome    MutationOutcome `json:"outcome"`
}
