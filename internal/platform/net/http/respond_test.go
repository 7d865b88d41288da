package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "adrelay/internal/platform/errors"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func TestHandleSuccessEnvelope(t *testing.T) {
	h := Handle(func(r *stdhttp.Request) Response { return OK(map[string]string{"k": "v"}) })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.StatusCode != 200 || env.Error != "" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestHandleErrorEnvelope(t *testing.T) {
	h := Handle(func(r *stdhttp.Request) Response {
		return Error(perr.Configurationf("ambiguous audience name %q", "X"))
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Code != perr.ErrorCodeConfiguration || env.Error == "" {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestHandleCustomStatus(t *testing.T) {
	h := Handle(func(r *stdhttp.Request) Response {
		return Status(stdhttp.StatusServiceUnavailable, map[string]string{"status": "RETRYABLE"})
	})
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("POST", "/", nil))
	if rec.Code != stdhttp.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.StatusCode != stdhttp.StatusServiceUnavailable || env.Data == nil {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestNoContent(t *testing.T) {
	h := Handle(func(r *stdhttp.Request) Response { return NoContent() })
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest("DELETE", "/", nil))
	if rec.Code != stdhttp.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("status = %d body %q", rec.Code, rec.Body.String())
	}
}
