// @title         Adrelay API
// @version       0.1.0
// @description   Audience membership sync endpoints

package main

import (
	"context"

	"adrelay/internal/platform/config"
	"adrelay/internal/platform/logger"
	phttp "adrelay/internal/platform/net/http"

	"adrelay/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	// bring up logging early
	l := logger.Get()

	// http server (reads CORE_API_PORT / CORE_API_ADDR)
	srv := phttp.NewServer(apiCfg)

	// mount our API; modules read their own config under AUDIENCES_*
	api.Mount(
		srv.Router(),
		api.Options{
			Config: root,
			Logger: l,
		},
	)

	// run
	if err := srv.Run(context.Background()); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
