package httpkit

import "net/http"

// MountUnder mounts a subrouter at prefix and applies per-module middlewares
func MountUnder(r Router, prefix string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route(prefix, func(sub Router) {
		if len(mw) > 0 {
			sub.Use(mw...)
		}
		mount(sub)
	})
}

// MountAPIV1 mounts fn under /v1 with the given middleware stack
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, fn func(Router)) {
	MountUnder(r, "/v1", mw, fn)
}
