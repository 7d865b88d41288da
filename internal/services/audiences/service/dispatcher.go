package service

import (
	"context"
	"errors"
	"fmt"

	"adrelay/internal/adapters/partner"
	perr "adrelay/internal/platform/errors"
	dom "adrelay/internal/services/audiences/domain"
)

// Dispatcher sends one batch and classifies the partner's answer. It
// holds no retry loop of its own; RETRYABLE hands timing back to the
// caller's delivery pipeline
type Dispatcher struct {
	catalog dom.CatalogPort
}

// NewDispatcher constructs a Dispatcher over a catalog port
func NewDispatcher(catalog dom.CatalogPort) *Dispatcher {
	return &Dispatcher{catalog: catalog}
}

// Send dispatches batch and classifies the result. created reports
// whether the target audience was created within this same invocation:
// a rejection right after creation is the partner's consistency window,
// not a bad payload, so it classifies RETRYABLE
func (d *Dispatcher) Send(
	ctx context.Context,
	advertiserID, audienceID string,
	batch dom.MutationBatch,
	created bool,
) dom.MutationOutcome {
	err := d.catalog.Mutate(ctx, advertiserID, audienceID, batch)
	return Classify(err, created)
}

// Classify maps a mutation error to an outcome. A partner rejection
// after a same-invocation create reads as the audience not yet being
// available; partners need on the order of a minute or two after
// creation before a new audience accepts membership writes
func Classify(err error, created bool) dom.MutationOutcome {
	if err == nil {
		return dom.MutationOutcome{Status: dom.OutcomeOK}
	}

	var se *partner.StatusError
	if errors.As(err, &se) {
		if created {
			return dom.MutationOutcome{
				Status: dom.OutcomeRetryable,
				Reason: fmt.Sprintf("audience not yet available for mutation (status %d)", se.Status),
			}
		}
		return dom.MutationOutcome{
			Status: dom.OutcomeFatal,
			Reason: fmt.Sprintf("mutation rejected with status %d: %s", se.Status, se.Body),
		}
	}

	if perr.Retryable(err) {
		return dom.MutationOutcome{Status: dom.OutcomeRetryable, Reason: err.Error()}
	}
	return dom.MutationOutcome{Status: dom.OutcomeFatal, Reason: err.Error()}
}
