// Package export produces XLSX workbooks from persisted claim artifacts so
// adjusters can review a batch without touching the store directly.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/claimsight/claims-pipeline/internal/artifact"
	"github.com/claimsight/claims-pipeline/internal/entity"
)

// Service is a tiny façade over the artifact store that renders claims to
// XLSX bytes.
type Service struct {
	store  artifact.Store
	logger *slog.Logger
}

func NewService(store artifact.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// ExportClaimsXLSX returns an XLSX workbook for the given document IDs.
// Documents with no persisted claim are skipped with a warning rather than
// failing the whole export; a batch usually mixes succeeded and failed runs.
func (s *Service) ExportClaimsXLSX(ctx context.Context, docIDs []string) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	const sheet = "Claims"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Document ID",
		"Vehicle Side",
		"Make",
		"Model",
		"Year",
		"VIN",
		"Incident Date",
		"Location",
		"Description",
		"Damage",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	exported := 0
	for _, id := range docIDs {
		claim, err := s.store.LoadClaim(ctx, id)
		if err != nil {
			s.logger.Warn("export.claim_missing", "doc_id", id, "error", err)
			continue
		}

		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, shortID(id))
		write(2, claim.VehicleSide)
		write(3, claim.VehicleInfo.Make)
		write(4, claim.VehicleInfo.Model)
		write(5, claim.VehicleInfo.Year)
		write(6, claim.VehicleInfo.VIN)
		write(7, claim.IncidentDetails.Date)
		write(8, claim.IncidentDetails.Location)
		write(9, truncate(claim.IncidentDetails.Description, 140))
		write(10, damageSummary(claim))

		row++
		exported++
	}

	_ = f.SetColWidth(sheet, "A", "A", 16)
	_ = f.SetColWidth(sheet, "B", "B", 12)
	_ = f.SetColWidth(sheet, "C", "F", 18)
	_ = f.SetColWidth(sheet, "G", "H", 16)
	_ = f.SetColWidth(sheet, "I", "I", 48)
	_ = f.SetColWidth(sheet, "J", "J", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"requested", len(docIDs),
		"rows", exported,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// damageSummary flattens the variant damage block into "component: severity"
// pairs, omitting undamaged components to keep the column readable.
func damageSummary(claim *entity.StructuredClaim) string {
	var parts []string
	add := func(name, severity string) {
		if severity == "none" {
			return
		}
		parts = append(parts, name+": "+severity)
	}
	if d := claim.FrontSpecific; d != nil {
		add("front bumper", d.FrontBumperDamage)
		add("hood", d.HoodDamage)
		add("windshield", d.WindshieldDamage)
		add("headlights", d.HeadlightsDamage)
		add("grille", d.GrilleDamage)
	}
	if d := claim.BackSpecific; d != nil {
		add("rear bumper", d.RearBumperDamage)
		add("trunk", d.TrunkDamage)
		add("rear windshield", d.RearWindshieldDamage)
		add("taillights", d.TaillightsDamage)
		add("tailgate", d.TailgateDamage)
	}
	if len(parts) == 0 {
		return "none reported"
	}
	return strings.Join(parts, "; ")
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
