// Package module wires the meta endpoints into HTTP via modkit
package module

import (
	"time"

	"adrelay/internal/modkit"
	"adrelay/internal/modkit/httpkit"
	metahttp "adrelay/internal/services/api/meta/http"
)

// Module implements the meta module
type Module struct {
	deps    modkit.Deps
	name    string
	prefix  string
	started time.Time
}

// New constructs the meta module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("meta"), modkit.WithPrefix("/meta")}, opts...)...)
	return &Module{
		deps:    deps,
		name:    b.Name,
		prefix:  b.Prefix,
		started: time.Now(),
	}
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return m.name }

// Prefix satisfies modkit.Module
func (m *Module) Prefix() string { return m.prefix }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return struct{}{} }

// MountRoutes satisfies modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	httpkit.MountUnder(r, m.prefix, nil, func(sub httpkit.Router) {
		metahttp.Register(sub, metahttp.Deps{
			ServiceName: "adrelay-api",
			StartedAt:   m.started,
		})
	})
}
