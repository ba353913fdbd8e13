package artifact

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

func newSQLite(t *testing.T) Store {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "artifacts.db"), nil)
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("close sqlite store: %v", err)
		}
	})
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	res := entity.NewOCRError(common.KindRateLimited, "quota exhausted", "/claims/b.pdf")
	if err := s.SaveOCR(ctx, "doc-2", res); err != nil {
		t.Fatalf("SaveOCR: %v", err)
	}
	got, err := s.LoadOCR(ctx, "doc-2")
	if err != nil {
		t.Fatalf("LoadOCR: %v", err)
	}
	if got.OK() {
		t.Fatal("persisted error artifact loaded as success")
	}
	if got.ErrorDetail == nil || got.ErrorDetail.Kind != common.KindRateLimited {
		t.Errorf("error detail = %+v", got.ErrorDetail)
	}
	if got.Text != "" {
		t.Errorf("error artifact carries text %q", got.Text)
	}

	claim := sampleClaim()
	if err := s.SaveClaim(ctx, "doc-2", claim); err != nil {
		t.Fatalf("SaveClaim: %v", err)
	}
	gotClaim, err := s.LoadClaim(ctx, "doc-2")
	if err != nil {
		t.Fatalf("LoadClaim: %v", err)
	}
	if gotClaim.VehicleInfo != claim.VehicleInfo {
		t.Errorf("claim round trip mismatch: %+v vs %+v", gotClaim.VehicleInfo, claim.VehicleInfo)
	}
}

func TestSQLiteWriteOnce(t *testing.T) {
	s := newSQLite(t)
	ctx := context.Background()

	if err := s.SaveOCR(ctx, "doc-2", entity.NewOCRSuccess("first", "b.jpg")); err != nil {
		t.Fatalf("SaveOCR: %v", err)
	}
	if err := s.SaveOCR(ctx, "doc-2", entity.NewOCRSuccess("second", "b.jpg")); err != nil {
		t.Fatalf("repeat SaveOCR: %v", err)
	}
	got, err := s.LoadOCR(ctx, "doc-2")
	if err != nil {
		t.Fatalf("LoadOCR: %v", err)
	}
	if got.Text != "first" {
		t.Errorf("text = %q; first write must win", got.Text)
	}
}

func TestSQLiteMissingArtifact(t *testing.T) {
	s := newSQLite(t)
	if _, err := s.LoadOCR(context.Background(), "nope"); !errors.Is(err, common.ErrArtifactNotFound) {
		t.Errorf("err = %v, want ErrArtifactNotFound", err)
	}
}

func TestSQLitePing(t *testing.T) {
	s := newSQLite(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
