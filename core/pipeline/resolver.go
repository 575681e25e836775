package pipeline

import (
	"log/slog"
	"strings"

	"github.com/declarant/declarant/model"
)

// ResolveMaterials maps one document's extraction records onto the bill
// of materials. A record survives when its material id matches a BOM id
// case-insensitively (the BOM casing wins), or when the BOM has exactly
// one entry and the extracted id is missing or unknown. Everything else
// is skipped with a machine-readable reason. The claimed set spans this
// call only, so a second record resolving to an already claimed id in
// the same document is skipped as a duplicate.
func ResolveMaterials(records []*model.ExtractionRecord, bomIDs []string, sourcePath string) ([]*model.MaterialRecord, []model.SkipRecord) {
	byLower := make(map[string]string, len(bomIDs))
	for _, id := range bomIDs {
		id = strings.TrimSpace(id)
		if id != "" {
			byLower[strings.ToLower(id)] = id
		}
	}

	resolved := []*model.MaterialRecord{}
	skips := []model.SkipRecord{}
	claimed := map[string]bool{}

	for _, record := range records {
		extractedID := strings.TrimSpace(record.MaterialID)

		materialID, ok := byLower[strings.ToLower(extractedID)]
		if !ok {
			if len(byLower) == 1 {
				for _, only := range byLower {
					materialID = only
				}
				slog.Info("adopting sole BOM material for unmatched extraction",
					slog.String("extracted_id", extractedID),
					slog.String("material_id", materialID),
					slog.String("file", sourcePath))
			} else {
				skips = append(skips, model.SkipRecord{
					Reason:     model.SkipMaterialNotInBOM,
					MaterialID: extractedID,
					File:       sourcePath,
				})
				continue
			}
		}

		if claimed[materialID] {
			skips = append(skips, model.SkipRecord{
				Reason:     model.SkipDuplicateMaterialInPDF,
				MaterialID: materialID,
				File:       sourcePath,
			})
			continue
		}
		claimed[materialID] = true

		resolved = append(resolved, &model.MaterialRecord{
			MaterialID:             materialID,
			SupplierName:           record.SupplierName,
			DeclarationDate:        record.DeclarationDate,
			Compliant:              record.Compliant,
			Recyclability:          record.Recyclability,
			RecycledContentPercent: record.RecycledContentPercent,
			RestrictedSubstances:   record.RestrictedSubstances,
			Notes:                  record.Notes,
			Mentions:               record.Mentions,
			SourcePath:             sourcePath,
		})
	}

	return resolved, skips
}
