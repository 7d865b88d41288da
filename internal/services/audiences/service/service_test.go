package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"testing"

	"adrelay/internal/adapters/partner"
	"adrelay/internal/core/identity"
	perr "adrelay/internal/platform/errors"
	dom "adrelay/internal/services/audiences/domain"
)

// fakeCatalog scripts the catalog port for orchestration tests
type fakeCatalog struct {
	records []dom.AudienceRecord
	listErr error

	createID  string
	createErr error

	mutateErr error

	listCalls   int
	createCalls int
	mutateCalls int
	lastCreate  string
	lastBatch   dom.MutationBatch
	lastAdv     string
}

func (f *fakeCatalog) ListAll(ctx context.Context) ([]dom.AudienceRecord, error) {
	f.listCalls++
	return f.records, f.listErr
}

func (f *fakeCatalog) Create(ctx context.Context, name string, idType identity.Type) (string, error) {
	f.createCalls++
	f.lastCreate = name
	return f.createID, f.createErr
}

func (f *fakeCatalog) Mutate(ctx context.Context, advertiserID, audienceID string, batch dom.MutationBatch) error {
	f.mutateCalls++
	f.lastAdv = advertiserID
	f.lastBatch = batch
	return f.mutateErr
}

func sha(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func emailRecord(raw string) dom.MemberRecord {
	return dom.MemberRecord{Identifiers: []identity.Envelope{
		{Raw: raw, Type: identity.TypeEmail, Enabled: true},
	}}
}

func TestResolver_ExistingMatch(t *testing.T) {
	fc := &fakeCatalog{records: []dom.AudienceRecord{
		{Name: "vips", ID: "a-1"},
		{Name: "churned", ID: "a-2"},
	}}
	id, created, err := NewResolver(fc).Resolve(context.Background(), "vips", identity.TypeEmail)
	if err != nil {
		t.Fatal(err)
	}
	if id != "a-1" || created {
		t.Fatalf("id=%s created=%v", id, created)
	}
	if fc.createCalls != 0 {
		t.Fatalf("createCalls = %d", fc.createCalls)
	}
}

func TestResolver_CreatesOnMiss(t *testing.T) {
	fc := &fakeCatalog{createID: "a-9"}
	id, created, err := NewResolver(fc).Resolve(context.Background(), "fresh", identity.TypeEmail)
	if err != nil {
		t.Fatal(err)
	}
	if id != "a-9" || !created {
		t.Fatalf("id=%s created=%v", id, created)
	}
	if fc.createCalls != 1 || fc.lastCreate != "fresh" {
		t.Fatalf("createCalls=%d lastCreate=%s", fc.createCalls, fc.lastCreate)
	}
}

func TestResolver_AmbiguousNameFailsFast(t *testing.T) {
	fc := &fakeCatalog{records: []dom.AudienceRecord{
		{Name: "vips", ID: "a-1"},
		{Name: "vips", ID: "a-2"},
	}}
	_, _, err := NewResolver(fc).Resolve(context.Background(), "vips", identity.TypeEmail)
	if err == nil {
		t.Fatal("expected error")
	}
	if perr.CodeOf(err) != perr.ErrorCodeConfiguration {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "ambiguous audience name") {
		t.Fatalf("err = %v", err)
	}
	if fc.createCalls != 0 {
		t.Fatalf("createCalls = %d", fc.createCalls)
	}
}

func TestResolver_ListFailureAbortsResolve(t *testing.T) {
	fc := &fakeCatalog{listErr: perr.Newf(perr.ErrorCodeUnavailable, "catalog down")}
	if _, _, err := NewResolver(fc).Resolve(context.Background(), "vips", identity.TypeEmail); err == nil {
		t.Fatal("expected error")
	}
	if fc.createCalls != 0 {
		t.Fatal("create must not run on a partial catalog")
	}
}

func TestBuildBatch_DropsUnusableRecords(t *testing.T) {
	records := []dom.MemberRecord{
		emailRecord("a@example.com"),
		{Identifiers: []identity.Envelope{{Raw: "", Type: identity.TypeEmail, Enabled: true}}},
		emailRecord("b@example.com"),
	}
	batch, dropped, err := BuildBatch(records, []identity.Type{identity.TypeEmail}, "a-1", dom.ActionAdd)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.Rows) != 2 || dropped != 1 {
		t.Fatalf("rows=%d dropped=%d", len(batch.Rows), dropped)
	}
	if batch.Rows[0].Digests[0].Digest != sha("a@example.com") {
		t.Fatalf("digest = %s", batch.Rows[0].Digests[0].Digest)
	}
	if got := batch.Rows[0].Digests[0].AudienceIDs; len(got) != 1 || got[0] != "a-1" {
		t.Fatalf("audiences = %v", got)
	}
}

func TestBuildBatch_DisabledTypesNotSent(t *testing.T) {
	records := []dom.MemberRecord{{Identifiers: []identity.Envelope{
		{Raw: "a@example.com", Type: identity.TypeEmail, Enabled: true},
		{Raw: "+14155550123", Type: identity.TypePhone, Enabled: true},
	}}}
	// phone present on the record but not enabled for the sync
	batch, _, err := BuildBatch(records, []identity.Type{identity.TypeEmail}, "a-1", dom.ActionAdd)
	if err != nil {
		t.Fatal(err)
	}
	if len(batch.IDSchema) != 1 || batch.IDSchema[0] != identity.TypeEmail {
		t.Fatalf("schema = %v", batch.IDSchema)
	}
	if len(batch.Rows[0].Digests) != 1 || batch.Rows[0].Digests[0].Type != identity.TypeEmail {
		t.Fatalf("digests = %+v", batch.Rows[0].Digests)
	}
}

func TestBuildBatch_SchemaDeclaredOrder(t *testing.T) {
	enabled := []identity.Type{identity.TypePhone, identity.TypeEmail, identity.TypeMobileAdID}
	batch, _, err := BuildBatch(nil, enabled, "a-1", dom.ActionAdd)
	if err != nil {
		t.Fatal(err)
	}
	want := []identity.Type{identity.TypeEmail, identity.TypeMobileAdID, identity.TypePhone}
	if len(batch.IDSchema) != len(want) {
		t.Fatalf("schema = %v", batch.IDSchema)
	}
	for i, typ := range want {
		if batch.IDSchema[i] != typ {
			t.Fatalf("schema = %v, want %v", batch.IDSchema, want)
		}
	}
}

func TestBuildBatch_NoEnabledTypes(t *testing.T) {
	_, _, err := BuildBatch([]dom.MemberRecord{emailRecord("a@example.com")}, nil, "a-1", dom.ActionAdd)
	if err == nil {
		t.Fatal("expected error")
	}
	if perr.CodeOf(err) != perr.ErrorCodeConfiguration {
		t.Fatalf("code = %v", perr.CodeOf(err))
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		created bool
		status  dom.OutcomeStatus
		reason  string
	}{
		{name: "nil is ok", err: nil, status: dom.OutcomeOK},
		{
			name:    "rejection after create is the consistency window",
			err:     &partner.StatusError{Status: http.StatusBadRequest, Body: `{"message":"pending"}`},
			created: true,
			status:  dom.OutcomeRetryable,
			reason:  "not yet available",
		},
		{
			name:   "rejection without create is fatal with body",
			err:    &partner.StatusError{Status: http.StatusBadRequest, Body: `{"message":"bad schema"}`},
			status: dom.OutcomeFatal,
			reason: "bad schema",
		},
		{
			name:   "transport unavailable is retryable",
			err:    perr.Newf(perr.ErrorCodeUnavailable, "partner do failed"),
			status: dom.OutcomeRetryable,
		},
		{
			name:   "unknown error is fatal",
			err:    perr.Newf(perr.ErrorCodeUnknown, "boom"),
			status: dom.OutcomeFatal,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := Classify(tc.err, tc.created)
			if out.Status != tc.status {
				t.Fatalf("status = %s, want %s", out.Status, tc.status)
			}
			if tc.reason != "" && !strings.Contains(out.Reason, tc.reason) {
				t.Fatalf("reason = %q, want it to contain %q", out.Reason, tc.reason)
			}
		})
	}
}

func TestSync_EndToEnd(t *testing.T) {
	fc := &fakeCatalog{createID: "a-9"}
	svc := New(fc, Config{AdvertiserID: "adv-1"})

	res, err := svc.Sync(context.Background(), dom.SyncInput{
		AudienceName: "fresh",
		Action:       dom.ActionAdd,
		EnabledTypes: []identity.Type{identity.TypeEmail},
		Records:      []dom.MemberRecord{emailRecord("Jane+test@Example.com")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Created || res.AudienceID != "a-9" || res.Rows != 1 {
		t.Fatalf("res = %+v", res)
	}
	if res.Outcome.Status != dom.OutcomeOK {
		t.Fatalf("outcome = %+v", res.Outcome)
	}
	if fc.lastAdv != "adv-1" || fc.mutateCalls != 1 {
		t.Fatalf("adv=%s mutateCalls=%d", fc.lastAdv, fc.mutateCalls)
	}
	if got := fc.lastBatch.Rows[0].Digests[0].Digest; got != sha("jane@example.com") {
		t.Fatalf("digest = %s", got)
	}
}

func TestSync_ExternalIDSkipsCatalog(t *testing.T) {
	fc := &fakeCatalog{}
	svc := New(fc, Config{AdvertiserID: "adv-1"})

	res, err := svc.Sync(context.Background(), dom.SyncInput{
		ExternalID:   "a-77",
		EnabledTypes: []identity.Type{identity.TypeEmail},
		Records:      []dom.MemberRecord{emailRecord("a@example.com")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.AudienceID != "a-77" || res.Created {
		t.Fatalf("res = %+v", res)
	}
	if fc.listCalls != 0 || fc.createCalls != 0 {
		t.Fatalf("list=%d create=%d", fc.listCalls, fc.createCalls)
	}
}

func TestSync_EmptyBatchSkipsDispatch(t *testing.T) {
	fc := &fakeCatalog{records: []dom.AudienceRecord{{Name: "vips", ID: "a-1"}}}
	svc := New(fc, Config{AdvertiserID: "adv-1"})

	res, err := svc.Sync(context.Background(), dom.SyncInput{
		AudienceName: "vips",
		EnabledTypes: []identity.Type{identity.TypeEmail},
		Records: []dom.MemberRecord{
			{Identifiers: []identity.Envelope{{Raw: "  ", Type: identity.TypeEmail, Enabled: true}}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome.Status != dom.OutcomeOK || !strings.Contains(res.Outcome.Reason, "no usable identifiers") {
		t.Fatalf("outcome = %+v", res.Outcome)
	}
	if res.Rows != 0 || res.Dropped != 1 {
		t.Fatalf("res = %+v", res)
	}
	if fc.mutateCalls != 0 {
		t.Fatalf("mutateCalls = %d", fc.mutateCalls)
	}
}

func TestSync_ConfigurationBeforeAnyCall(t *testing.T) {
	fc := &fakeCatalog{}
	svc := New(fc, Config{AdvertiserID: "adv-1"})

	_, err := svc.Sync(context.Background(), dom.SyncInput{
		AudienceName: "vips",
		Records:      []dom.MemberRecord{emailRecord("a@example.com")},
	})
	if perr.CodeOf(err) != perr.ErrorCodeConfiguration {
		t.Fatalf("err = %v", err)
	}
	if fc.listCalls != 0 || fc.mutateCalls != 0 {
		t.Fatal("no partner call may precede configuration checks")
	}
}

func TestSync_NotReadyAfterCreate(t *testing.T) {
	fc := &fakeCatalog{
		createID:  "a-9",
		mutateErr: &partner.StatusError{Status: http.StatusBadRequest, Body: "pending"},
	}
	svc := New(fc, Config{AdvertiserID: "adv-1"})

	res, err := svc.Sync(context.Background(), dom.SyncInput{
		AudienceName: "fresh",
		EnabledTypes: []identity.Type{identity.TypeEmail},
		Records:      []dom.MemberRecord{emailRecord("a@example.com")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome.Status != dom.OutcomeRetryable {
		t.Fatalf("outcome = %+v", res.Outcome)
	}
	if !strings.Contains(res.Outcome.Reason, "not yet available") {
		t.Fatalf("reason = %q", res.Outcome.Reason)
	}
}

func TestSync_MissingAdvertiser(t *testing.T) {
	svc := New(&fakeCatalog{}, Config{})
	_, err := svc.Sync(context.Background(), dom.SyncInput{
		AudienceName: "vips",
		EnabledTypes: []identity.Type{identity.TypeEmail},
	})
	if perr.CodeOf(err) != perr.ErrorCodeConfiguration {
		t.Fatalf("err = %v", err)
	}
}
