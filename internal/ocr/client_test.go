package ocr

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claimsight/claims-pipeline/internal/artifact"
	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

// fakeRecognizer returns scripted outcomes in order, repeating the last one.
type fakeRecognizer struct {
	texts []string
	errs  []error
	calls int
}

func (f *fakeRecognizer) Recognize(_ context.Context, _ *entity.Document) (string, error) {
	i := f.calls
	if i >= len(f.errs) {
		i = len(f.errs) - 1
	}
	f.calls++
	return f.texts[i], f.errs[i]
}

func testStore(t *testing.T) artifact.Store {
	t.Helper()
	store, err := artifact.NewFSStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}
	return store
}

func testDoc() *entity.Document {
	return &entity.Document{ID: "doc-1", SourcePath: "/claims/front.jpg"}
}

func fastCfg() Config {
	return Config{MaxAttempts: 3, BackoffBase: time.Millisecond, Timeout: time.Second}
}

func TestInvokeSuccessPersistsArtifact(t *testing.T) {
	store := testStore(t)
	rec := &fakeRecognizer{texts: []string{"Front bumper  dented.\r\n"}, errs: []error{nil}}
	c := NewClient(rec, store, fastCfg(), nil)

	res, err := c.Invoke(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !res.OK() {
		t.Fatalf("status = %q, want success", res.Status)
	}
	if res.Text != "Front bumper dented." {
		t.Errorf("text = %q, not normalized", res.Text)
	}
	if res.ErrorDetail != nil {
		t.Errorf("success result carries error detail: %+v", res.ErrorDetail)
	}

	persisted, err := store.LoadOCR(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("load persisted artifact: %v", err)
	}
	if persisted.Text != res.Text || persisted.Status != res.Status {
		t.Errorf("persisted artifact differs: %+v vs %+v", persisted, res)
	}
}

func TestInvokeNonRetryableFailsOnce(t *testing.T) {
	store := testStore(t)
	rec := &fakeRecognizer{
		texts: []string{""},
		errs:  []error{common.NewServiceError(common.KindAuthFailure, "bad key", nil)},
	}
	c := NewClient(rec, store, fastCfg(), nil)

	res, err := c.Invoke(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if rec.calls != 1 {
		t.Errorf("calls = %d, want 1 (auth failures must not be retried)", rec.calls)
	}
	if res.OK() {
		t.Fatal("expected error result")
	}
	if res.Text != "" {
		t.Errorf("error result has text %q, want empty", res.Text)
	}
	if res.ErrorDetail == nil || res.ErrorDetail.Kind != common.KindAuthFailure {
		t.Errorf("error detail = %+v, want auth_failure", res.ErrorDetail)
	}
}

func TestInvokeRetriesTransientToCeiling(t *testing.T) {
	store := testStore(t)
	rateLimited := common.NewServiceError(common.KindRateLimited, "429", nil)
	rec := &fakeRecognizer{
		texts: []string{"", "", ""},
		errs:  []error{rateLimited, rateLimited, rateLimited},
	}
	c := NewClient(rec, store, fastCfg(), nil)

	res, err := c.Invoke(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if rec.calls != 3 {
		t.Errorf("calls = %d, want 3", rec.calls)
	}
	if res.OK() || res.ErrorDetail == nil || res.ErrorDetail.Kind != common.KindRateLimited {
		t.Errorf("result = %+v, want rate_limited error", res)
	}

	// The error artifact is persisted like any other outcome.
	if _, err := store.LoadOCR(context.Background(), "doc-1"); err != nil {
		t.Errorf("error artifact not persisted: %v", err)
	}
}

func TestInvokeTransientThenSuccess(t *testing.T) {
	store := testStore(t)
	rec := &fakeRecognizer{
		texts: []string{"", "recovered text"},
		errs:  []error{common.NewServiceError(common.KindTimeout, "slow", nil), nil},
	}
	c := NewClient(rec, store, fastCfg(), nil)

	res, err := c.Invoke(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if rec.calls != 2 {
		t.Errorf("calls = %d, want 2", rec.calls)
	}
	if !res.OK() || res.Text != "recovered text" {
		t.Errorf("result = %+v, want success after retry", res)
	}
}

func TestInvokeEmptyTextIsMalformed(t *testing.T) {
	store := testStore(t)
	rec := &fakeRecognizer{texts: []string{"   \n\n  "}, errs: []error{nil}}
	c := NewClient(rec, store, fastCfg(), nil)

	res, err := c.Invoke(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if res.OK() || res.ErrorDetail == nil || res.ErrorDetail.Kind != common.KindMalformedResponse {
		t.Errorf("result = %+v, want malformed_response error", res)
	}
}

func TestInvokeCancelledPersistsNothing(t *testing.T) {
	store := testStore(t)
	rec := &fakeRecognizer{texts: []string{"text"}, errs: []error{nil}}
	c := NewClient(rec, store, fastCfg(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Invoke(ctx, testDoc()); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := store.LoadOCR(context.Background(), "doc-1"); !errors.Is(err, common.ErrArtifactNotFound) {
		t.Errorf("cancelled run persisted an artifact (err = %v)", err)
	}
}
