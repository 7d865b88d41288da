// Package module wires the audiences service into HTTP via modkit
package module

import (
	"net/http"

	"adrelay/internal/adapters/partner"
	"adrelay/internal/modkit"
	"adrelay/internal/modkit/httpkit"
	"adrelay/internal/services/audiences/domain"
	audhttp "adrelay/internal/services/audiences/http"
	"adrelay/internal/services/audiences/repo"
	"adrelay/internal/services/audiences/service"
)

// Ports exposes the service ports for cross-module lookups
type Ports struct {
	Sync    domain.SyncPort
	Catalog domain.CatalogPort
}

// Module implements the audiences module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     Ports
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs the audiences module. The partner client comes from
// deps when the composition root built one, otherwise from config
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("audiences"), modkit.WithPrefix("/audiences")}, opts...)...)

	o := FromConfig(deps.Cfg)
	client := deps.Partner
	if client == nil {
		client = partner.NewClient(partner.Options{
			BaseURL:     o.PartnerBaseURL,
			AccessToken: o.PartnerAccessToken,
			Timeout:     o.PartnerTimeout,
			MaxRetries:  o.PartnerMaxRetries,
			RetryBase:   o.PartnerRetryBase,
		})
	}

	catalog := repo.New(client)
	svc := service.New(catalog, service.Config{AdvertiserID: o.AdvertiserID})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
	}
	m.ports = Ports{Sync: svc, Catalog: catalog}

	external := b.Register
	m.register = func(r httpkit.Router) {
		audhttp.Register(r, m.ports.Sync, m.ports.Catalog)
		if external != nil {
			external(r)
		}
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return m.prefix }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, m.mws, func(sub httpkit.Router) {
		m.register(m.subrouter(sub))
	})
}
