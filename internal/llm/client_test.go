package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/claimsight/claims-pipeline/constants"
	"github.com/claimsight/claims-pipeline/internal/common"
)

type fakeExtractor struct {
	outs  []json.RawMessage
	errs  []error
	calls int
}

func (f *fakeExtractor) ExtractClaim(_ context.Context, _ ExtractRequest) (json.RawMessage, error) {
	i := f.calls
	if i >= len(f.errs) {
		i = len(f.errs) - 1
	}
	f.calls++
	return f.outs[i], f.errs[i]
}

func fastConfig() Config {
	return Config{MaxAttempts: 3, BackoffBase: time.Millisecond, Timeout: time.Second}
}

func req() ExtractRequest {
	return ExtractRequest{OCRText: "front bumper dented", Variant: constants.VariantFront}
}

func TestInvokeReturnsCandidate(t *testing.T) {
	ext := &fakeExtractor{outs: []json.RawMessage{json.RawMessage(`{"vehicle_side":"front"}`)}, errs: []error{nil}}
	c := NewClient(ext, fastConfig(), nil)

	got, err := c.Invoke(context.Background(), req())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(got, &m); err != nil {
		t.Fatalf("candidate not an object: %v", err)
	}
	if m["vehicle_side"] != "front" {
		t.Errorf("candidate = %s", got)
	}
}

func TestInvokeStripsCodeFences(t *testing.T) {
	fenced := "```json\n{\"vehicle_side\":\"back\"}\n```"
	ext := &fakeExtractor{outs: []json.RawMessage{json.RawMessage(fenced)}, errs: []error{nil}}
	c := NewClient(ext, fastConfig(), nil)

	got, err := c.Invoke(context.Background(), req())
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(got, &m); err != nil {
		t.Fatalf("fence stripping failed, candidate = %q: %v", got, err)
	}
}

func TestInvokeNonObjectIsSchemaViolation(t *testing.T) {
	ext := &fakeExtractor{outs: []json.RawMessage{json.RawMessage(`"just a string"`)}, errs: []error{nil}}
	c := NewClient(ext, fastConfig(), nil)

	_, err := c.Invoke(context.Background(), req())
	if err == nil {
		t.Fatal("expected error for non-object response")
	}
	var se *common.ServiceError
	if !errors.As(err, &se) || se.Kind != common.KindSchemaViolation {
		t.Fatalf("err = %v, want schema_violation service error", err)
	}
	if ext.calls != 1 {
		t.Errorf("calls = %d; structural violations must not be retried", ext.calls)
	}
}

func TestInvokeRetriesTransient(t *testing.T) {
	ext := &fakeExtractor{
		outs: []json.RawMessage{nil, json.RawMessage(`{"ok":true}`)},
		errs: []error{common.NewServiceError(common.KindRateLimited, "429", nil), nil},
	}
	c := NewClient(ext, fastConfig(), nil)

	if _, err := c.Invoke(context.Background(), req()); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if ext.calls != 2 {
		t.Errorf("calls = %d, want 2", ext.calls)
	}
}

func TestInvokeExhaustsRetryCeiling(t *testing.T) {
	timeout := common.NewServiceError(common.KindTimeout, "deadline", nil)
	ext := &fakeExtractor{outs: []json.RawMessage{nil, nil, nil}, errs: []error{timeout, timeout, timeout}}
	c := NewClient(ext, fastConfig(), nil)

	_, err := c.Invoke(context.Background(), req())
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if ext.calls != 3 {
		t.Errorf("calls = %d, want 3", ext.calls)
	}
	if common.KindOf(err) != common.KindTimeout {
		t.Errorf("kind = %q, want timeout", common.KindOf(err))
	}
}

func TestInvokeAuthFailureNotRetried(t *testing.T) {
	ext := &fakeExtractor{
		outs: []json.RawMessage{nil},
		errs: []error{common.NewServiceError(common.KindAuthFailure, "401", nil)},
	}
	c := NewClient(ext, fastConfig(), nil)

	if _, err := c.Invoke(context.Background(), req()); err == nil {
		t.Fatal("expected error")
	}
	if ext.calls != 1 {
		t.Errorf("calls = %d, want 1", ext.calls)
	}
}
