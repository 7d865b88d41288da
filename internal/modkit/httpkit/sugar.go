package httpkit

import (
	"net/http"

	phttp "adrelay/internal/platform/net/http"
)

// GetJSON mounts a pure JSON handler under GET
func GetJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Get(path, phttp.JSONHandlerNoBody(h))
}

// PostJSON mounts a pure JSON handler under POST
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Post(path, phttp.JSONHandler(h))
}

// PostResponse mounts a Response-returning JSON handler under POST
// used when the handler needs to pick its own status from the outcome
func PostResponse[T any](r Router, path string, h func(*http.Request, T) Response) {
	r.Post(path, phttp.ResponseHandler(h))
}

// PutJSON mounts a pure JSON handler under PUT
func PutJSON[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	r.Put(path, phttp.JSONHandler(h))
}

// DeleteJSON mounts a body-less JSON handler under DELETE
func DeleteJSON(r Router, path string, h func(*http.Request) (any, error)) {
	r.Delete(path, phttp.JSONHandlerNoBody(h))
}
