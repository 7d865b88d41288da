package partner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"adrelay/internal/core/identity"
)

// newTestClient points a client at ts and disarms real sleeping
func newTestClient(ts *httptest.Server, maxRetries int) *Client {
	c := NewClient(Options{
		BaseURL:     ts.URL,
		AccessToken: "tok",
		MaxRetries:  maxRetries,
		RetryBase:   time.Millisecond,
	})
	c.sleep = func(time.Duration) {}
	return c
}

func TestListAudiences_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audiences" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("page = %s", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("auth = %s", got)
		}
		_ = json.NewEncoder(w).Encode(AudiencePage{
			List:     []AudienceRecord{{Name: "vips", ID: "a-1"}},
			PageInfo: PageInfo{TotalNumber: 1, PageSize: 100, Page: 2},
		})
	}))
	defer ts.Close()

	page, err := newTestClient(ts, 1).ListAudiences(context.Background(), 2, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.List) != 1 || page.List[0].ID != "a-1" || page.PageInfo.TotalNumber != 1 {
		t.Fatalf("page = %+v", page)
	}
}

func TestListAudiences_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(AudiencePage{PageInfo: PageInfo{TotalNumber: 0}})
	}))
	defer ts.Close()

	if _, err := newTestClient(ts, 3).ListAudiences(context.Background(), 1, 100); err != nil {
		t.Fatal(err)
	}
	if calls.Load() != 2 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestDo_RetryBudgetSpent(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	_, err := newTestClient(ts, 2).ListAudiences(context.Background(), 1, 100)
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v", err)
	}
	if se.Status != http.StatusBadGateway {
		t.Fatalf("status = %d", se.Status)
	}
	// initial attempt plus two retries
	if calls.Load() != 3 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestCreateAudience(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req createRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.Name != "vips" || req.Action != "create" || req.IDType != "EMAIL" {
			t.Errorf("req = %+v", req)
		}
		_, _ = w.Write([]byte(`{"data":{"audience_id":"a-9"}}`))
	}))
	defer ts.Close()

	id, err := newTestClient(ts, 1).CreateAudience(context.Background(), "vips", identity.TypeEmail)
	if err != nil {
		t.Fatal(err)
	}
	if id != "a-9" {
		t.Fatalf("id = %s", id)
	}
}

func TestCreateAudience_EmptyIDFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer ts.Close()

	if _, err := newTestClient(ts, 1).CreateAudience(context.Background(), "vips", identity.TypeEmail); err == nil {
		t.Fatal("expected error")
	}
}

func TestMutateMembers_NoRetryOnStatus(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"audience pending"}`))
	}))
	defer ts.Close()

	err := newTestClient(ts, 5).MutateMembers(context.Background(), MutationRequest{
		Action:   "add",
		IDSchema: []identity.Type{identity.TypeEmail},
	})
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v", err)
	}
	if se.Status != http.StatusBadRequest || se.Body != `{"message":"audience pending"}` {
		t.Fatalf("se = %+v", se)
	}
	// even a retryable budget must not re-send a mutation
	if calls.Load() != 1 {
		t.Fatalf("calls = %d", calls.Load())
	}
}

func TestMutateMembers_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req MutationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Error(err)
		}
		if req.Action != "delete" || len(req.BatchData) != 1 {
			t.Errorf("req = %+v", req)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	err := newTestClient(ts, 1).MutateMembers(context.Background(), MutationRequest{
		AdvertiserIDs: []string{"adv-1"},
		Action:        "delete",
		IDSchema:      []identity.Type{identity.TypeEmail},
		BatchData: [][]HashedIdentifier{
			{{Digest: "abc", AudienceIDs: []string{"a-1"}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newTestClient(ts, 1).ListAudiences(ctx, 1, 100); err == nil {
		t.Fatal("expected context error")
	}
}

func TestRetryAfterHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "3")
	if got := retryAfter(h); got != 3*time.Second {
		t.Fatalf("got %v", got)
	}
	h.Set("Retry-After", "soon")
	if got := retryAfter(h); got != 0 {
		t.Fatalf("got %v", got)
	}
}
