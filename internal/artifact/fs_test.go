package artifact

import (
	"context"
	"errors"
	"testing"

	"github.com/claimsight/claims-pipeline/internal/common"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

func newFS(t *testing.T) Store {
	t.Helper()
	s, err := NewFSStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new fs store: %v", err)
	}
	return s
}

func sampleClaim() *entity.StructuredClaim {
	return &entity.StructuredClaim{
		VehicleSide: "front",
		VehicleInfo: entity.VehicleInfo{Make: "Honda", Model: "Accord", Year: "2019", VIN: "unknown"},
		IncidentDetails: entity.IncidentDetails{
			Date: "2024-03-01", Description: "rear-ended a truck", Location: "unknown",
		},
		FrontSpecific: &entity.FrontDamage{
			FrontBumperDamage: "dented",
			HoodDamage:        "none",
			WindshieldDamage:  "cracked",
			HeadlightsDamage:  "shattered",
			GrilleDamage:      "unknown",
		},
	}
}

func TestFSRoundTrip(t *testing.T) {
	s := newFS(t)
	ctx := context.Background()

	ocrRes := entity.NewOCRSuccess("front bumper dented", "/claims/a.jpg")
	if err := s.SaveOCR(ctx, "doc-1", ocrRes); err != nil {
		t.Fatalf("SaveOCR: %v", err)
	}
	got, err := s.LoadOCR(ctx, "doc-1")
	if err != nil {
		t.Fatalf("LoadOCR: %v", err)
	}
	if got.Text != ocrRes.Text || got.Status != ocrRes.Status {
		t.Errorf("round trip mismatch: %+v vs %+v", got, ocrRes)
	}

	claim := sampleClaim()
	if err := s.SaveClaim(ctx, "doc-1", claim); err != nil {
		t.Fatalf("SaveClaim: %v", err)
	}
	gotClaim, err := s.LoadClaim(ctx, "doc-1")
	if err != nil {
		t.Fatalf("LoadClaim: %v", err)
	}
	if *gotClaim.FrontSpecific != *claim.FrontSpecific || gotClaim.VehicleInfo != claim.VehicleInfo {
		t.Errorf("claim round trip mismatch: %+v vs %+v", gotClaim, claim)
	}
}

func TestFSWriteOnce(t *testing.T) {
	s := newFS(t)
	ctx := context.Background()

	first := entity.NewOCRSuccess("original text", "/claims/a.jpg")
	if err := s.SaveOCR(ctx, "doc-1", first); err != nil {
		t.Fatalf("SaveOCR: %v", err)
	}
	// A second write for the same key must not clobber the first artifact.
	second := entity.NewOCRSuccess("different text", "/claims/a.jpg")
	if err := s.SaveOCR(ctx, "doc-1", second); err != nil {
		t.Fatalf("repeat SaveOCR: %v", err)
	}

	got, err := s.LoadOCR(ctx, "doc-1")
	if err != nil {
		t.Fatalf("LoadOCR: %v", err)
	}
	if got.Text != "original text" {
		t.Errorf("text = %q; first write must win", got.Text)
	}
}

func TestFSMissingArtifact(t *testing.T) {
	s := newFS(t)
	if _, err := s.LoadOCR(context.Background(), "nope"); !errors.Is(err, common.ErrArtifactNotFound) {
		t.Errorf("err = %v, want ErrArtifactNotFound", err)
	}
	if _, err := s.LoadClaim(context.Background(), "nope"); !errors.Is(err, common.ErrArtifactNotFound) {
		t.Errorf("err = %v, want ErrArtifactNotFound", err)
	}
}

func TestFSStagesAreIndependent(t *testing.T) {
	s := newFS(t)
	ctx := context.Background()

	if err := s.SaveOCR(ctx, "doc-1", entity.NewOCRSuccess("text", "a.jpg")); err != nil {
		t.Fatalf("SaveOCR: %v", err)
	}
	// OCR artifact present, claim artifact absent.
	if _, err := s.LoadClaim(ctx, "doc-1"); !errors.Is(err, common.ErrArtifactNotFound) {
		t.Errorf("err = %v, want ErrArtifactNotFound for claim stage", err)
	}
}
