package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/claimsight/claims-pipeline/internal/artifact"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

func seedStore(t *testing.T) artifact.Store {
	t.Helper()
	store, err := artifact.NewFSStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	claim := &entity.StructuredClaim{
		VehicleSide: "front",
		VehicleInfo: entity.VehicleInfo{Make: "Honda", Model: "Accord", Year: "2019", VIN: "unknown"},
		IncidentDetails: entity.IncidentDetails{
			Date: "2024-03-01", Description: "rear-ended a truck", Location: "Austin, TX",
		},
		FrontSpecific: &entity.FrontDamage{
			FrontBumperDamage: "dented",
			HoodDamage:        "none",
			WindshieldDamage:  "cracked",
			HeadlightsDamage:  "none",
			GrilleDamage:      "unknown",
		},
	}
	if err := store.SaveClaim(context.Background(), "doc-a", claim); err != nil {
		t.Fatalf("seed claim: %v", err)
	}
	return store
}

func TestExportClaimsXLSX(t *testing.T) {
	store := seedStore(t)
	svc := NewService(store, nil)

	// doc-b has no claim and must be skipped, not fail the export.
	out, err := svc.ExportClaimsXLSX(context.Background(), []string{"doc-a", "doc-b"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			t.Errorf("close workbook: %v", cerr)
		}
	}()

	rows, err := f.GetRows("Claims")
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want header + one claim", len(rows))
	}
	if rows[0][0] != "Document ID" {
		t.Errorf("header = %v", rows[0])
	}
	got := rows[1]
	if got[2] != "Honda" || got[3] != "Accord" || got[4] != "2019" {
		t.Errorf("claim row = %v", got)
	}
}

func TestDamageSummaryOmitsUndamaged(t *testing.T) {
	claim := &entity.StructuredClaim{
		BackSpecific: &entity.BackDamage{
			RearBumperDamage:     "crushed",
			TrunkDamage:          "none",
			RearWindshieldDamage: "none",
			TaillightsDamage:     "shattered",
			TailgateDamage:       "none",
		},
	}
	got := damageSummary(claim)
	want := "rear bumper: crushed; taillights: shattered"
	if got != want {
		t.Errorf("damageSummary = %q, want %q", got, want)
	}
}
