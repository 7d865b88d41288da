// Package http provides HTTP transport for the audiences service
package http

import (
	stdhttp "net/http"

	"adrelay/internal/modkit/httpkit"
	"adrelay/internal/services/audiences/domain"
)

// Register mounts audience endpoints on the given router
func Register(r httpkit.Router, svc domain.SyncPort, catalog domain.CatalogPort) {
	h := &handlers{svc: svc, catalog: catalog}

	httpkit.PostResponse[domain.SyncRequest](r, "/sync", h.sync)
	httpkit.GetJSON(r, "/", h.list)
}

type handlers struct {
	svc     domain.SyncPort
	catalog domain.CatalogPort
}

// sync runs one full invocation and maps the outcome to a status the
// outer delivery system's retry policy can act on: RETRYABLE is 503,
// FATAL is 502, OK is 200
func (h *handlers) sync(r *stdhttp.Request, in domain.SyncRequest) httpkit.Response {
	res, err := h.svc.Sync(r.Context(), in.ToInput())
	if err != nil {
		return httpkit.Error(err)
	}
	switch res.Outcome.Status {
	case domain.OutcomeRetryable:
		return httpkit.Status(stdhttp.StatusServiceUnavailable, res)
	case domain.OutcomeFatal:
		return httpkit.Status(stdhttp.StatusBadGateway, res)
	default:
		return httpkit.OK(res)
	}
}

// list returns the full partner catalog, freshly paginated
func (h *handlers) list(r *stdhttp.Request) (any, error) {
	return h.catalog.ListAll(r.Context())
}
