package domain

import (
	"adrelay/internal/core/identity"
	pstr "adrelay/internal/platform/strings"
)

// SyncRequest is the transport payload for one sync invocation
type SyncRequest struct {
	// AudienceName is resolved against the partner catalog; ExternalID
	// bypasses resolution when the caller already holds a partner id
	AudienceName string `json:"audience_name" validate:"required_without=ExternalID"`
	ExternalID   string `json:"external_id"`
	AdvertiserID string `json:"advertiser_id"`
	Action       string `json:"action"        validate:"omitempty,oneof=add remove"`
	// EnabledTypes is a CSV of identifier type names, e.g. "EMAIL,PHONE"
	EnabledTypes string      `json:"enabled_types" validate:"required,id_types_csv"`
	Records      []RecordDTO `json:"records"       validate:"required,min=1"`
}

// RecordDTO is one member record with at most one value per type
type RecordDTO struct {
	Email      string `json:"email"`
	MobileAdID string `json:"mobile_ad_id"`
	Phone      string `json:"phone"`
}

// ToInput converts the validated payload into a SyncInput
func (r SyncRequest) ToInput() SyncInput {
	var enabled []identity.Type
	for _, name := range pstr.SplitCSV(r.EnabledTypes) {
		if t, ok := identity.ParseType(name); ok {
			enabled = append(enabled, t)
		}
	}

	records := make([]MemberRecord, 0, len(r.Records))
	for _, rec := range r.Records {
		var envs []identity.Envelope
		if rec.Email != "" {
			envs = append(envs, identity.Envelope{Raw: rec.Email, Type: identity.TypeEmail, Enabled: true})
		}
		if rec.MobileAdID != "" {
			envs = append(envs, identity.Envelope{Raw: rec.MobileAdID, Type: identity.TypeMobileAdID, Enabled: true})
		}
		if rec.Phone != "" {
			envs = append(envs, identity.Envelope{Raw: rec.Phone, Type: identity.TypePhone, Enabled: true})
		}
		records = append(records, MemberRecord{Identifiers: envs})
	}

	return SyncInput{
		AudienceName: r.AudienceName,
		ExternalID:   r.ExternalID,
		AdvertiserID: r.AdvertiserID,
		Action:       Action(r.Action),
		EnabledTypes: enabled,
		Records:      records,
	}
}
