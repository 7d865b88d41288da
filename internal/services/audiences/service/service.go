// Package service implements the audience sync orchestration
package service

import (
	"context"

	perr "adrelay/internal/platform/errors"
	"adrelay/internal/platform/logger"
	dom "adrelay/internal/services/audiences/domain"
)

// Config for the audiences service
type Config struct {
	// AdvertiserID is the account context applied when the input does
	// not carry one
	AdvertiserID string
}

// Service implements domain.SyncPort. One Sync call is one invocation:
// list, resolve, build, send, sequentially, with no state carried over
type Service struct {
	catalog    dom.CatalogPort
	resolver   *Resolver
	dispatcher *Dispatcher
	cfg        Config
}

// New constructs the audiences service over a catalog port
func New(catalog dom.CatalogPort, cfg Config) *Service {
	return &Service{
		catalog:    catalog,
		resolver:   NewResolver(catalog),
		dispatcher: NewDispatcher(catalog),
		cfg:        cfg,
	}
}

// Sync runs one full invocation. Configuration problems surface as
// errors before any partner call; dispatch classification is returned in
// the result for the caller's retry policy
func (s *Service) Sync(ctx context.Context, in dom.SyncInput) (dom.SyncResult, error) {
	if len(in.EnabledTypes) == 0 {
		return dom.SyncResult{}, perr.Configurationf("no identifier types enabled")
	}
	if in.AudienceName == "" && in.ExternalID == "" {
		return dom.SyncResult{}, perr.Configurationf("audience name or external id required")
	}
	advertiserID := in.AdvertiserID
	if advertiserID == "" {
		advertiserID = s.cfg.AdvertiserID
	}
	if advertiserID == "" {
		return dom.SyncResult{}, perr.Configurationf("advertiser id required")
	}
	action := in.Action
	if action == "" {
		action = dom.ActionAdd
	}

	// a pre-resolved external id skips listing and creation entirely
	audienceID := in.ExternalID
	created := false
	if audienceID == "" {
		var err error
		audienceID, created, err = s.resolver.Resolve(ctx, in.AudienceName, in.EnabledTypes[0])
		if err != nil {
			return dom.SyncResult{}, err
		}
	}

	batch, dropped, err := BuildBatch(in.Records, in.EnabledTypes, audienceID, action)
	if err != nil {
		return dom.SyncResult{}, err
	}

	res := dom.SyncResult{
		AudienceID: audienceID,
		Created:    created,
		Rows:       len(batch.Rows),
		Dropped:    dropped,
	}

	if batch.Empty() {
		// nothing usable to send is a no-op, not a failure
		res.Outcome = dom.MutationOutcome{Status: dom.OutcomeOK, Reason: "no usable identifiers"}
		logger.C(ctx).Info().Str("audience_id", audienceID).Int("dropped", dropped).Msg("sync skipped empty batch")
		return res, nil
	}

	res.Outcome = s.dispatcher.Send(ctx, advertiserID, audienceID, batch, created)
	logger.C(ctx).Info().
		Str("audience_id", audienceID).
		Bool("created", created).
		Str("action", string(action)).
		Int("rows", res.Rows).
		Int("dropped", res.Dropped).
		Str("outcome", string(res.Outcome.Status)).
		Msg("sync dispatched")
	return res, nil
}
