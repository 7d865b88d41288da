// Package partner provides a resilient HTTP client for the ad partner's
// audience API
package partner

import "adrelay/internal/core/identity"

// AudienceRecord is one catalog entry as the partner reports it
type AudienceRecord struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

// PageInfo is the paging block attached to catalog responses
type PageInfo struct {
	TotalNumber int `json:"total_number"`
	PageSize    int `json:"page_size"`
	Page        int `json:"page"`
}

// AudiencePage is one page of the audience catalog
type AudiencePage struct {
	List     []AudienceRecord `json:"list"`
	PageInfo PageInfo         `json:"page_info"`
}

// createRequest is the audience creation payload
type createRequest struct {
	Name   string `json:"name"`
	IDType string `json:"id_type"`
	Action string `json:"action"`
}

// createResponse wraps the new audience id
type createResponse struct {
	Data struct {
		AudienceID string `json:"audience_id"`
	} `json:"data"`
}

// HashedIdentifier is the only identifier form that crosses the wire.
// Digest is a lowercase hex SHA-256 of the canonical raw value
type HashedIdentifier struct {
	Digest      string   `json:"digest"`
	AudienceIDs []string `json:"audience_ids"`
}

// MutationRequest is the membership mutation payload. IDSchema declares,
// once for the whole batch, which identifier types the rows carry
type MutationRequest struct {
	AdvertiserIDs []string             `json:"advertiser_ids"`
	Action        string               `json:"action"`
	IDSchema      []identity.Type      `json:"id_schema"`
	BatchData     [][]HashedIdentifier `json:"batch_data"`
}
