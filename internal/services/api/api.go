// Package api provides the HTTP API for the application
package api

import (
	"adrelay/internal/adapters/partner"
	"adrelay/internal/platform/config"
	"adrelay/internal/platform/logger"
	phttp "adrelay/internal/platform/net/http"

	"adrelay/internal/modkit"
	"adrelay/internal/modkit/httpkit"
	"adrelay/internal/modkit/module"

	metamod "adrelay/internal/services/api/meta/module"
	audmod "adrelay/internal/services/audiences/module"
)

// Options are the API options
type Options struct {
	Config  config.Conf
	Logger  *logger.Logger
	Partner *partner.Client
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg:     opt.Config,
		Partner: opt.Partner,
	}
	if opt.Logger != nil {
		deps.Log = *opt.Logger
	}

	mods := []module.Module{
		metamod.New(deps),
		audmod.New(deps),
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
