package model

import "time"

// MaterialRecord is a persisted assessment row in the materials table,
// keyed by the BOM-normalized material id. Later runs for the same id
// overwrite every field except CreatedAt.
type MaterialRecord struct {
	MaterialID             string    `json:"material_id"`
	SupplierName           string    `json:"supplier_name"`
	DeclarationDate        string    `json:"declaration_date"`
	Compliant              *bool     `json:"compliant"`
	Recyclability          string    `json:"recyclability"`
	RecycledContentPercent *float64  `json:"recycled_content_percent"`
	RestrictedSubstances   []string  `json:"restricted_substances"`
	Notes                  string    `json:"notes"`
	Mentions               []Mention `json:"regulatory_mentions"`
	SourcePath             string    `json:"source_path"`
	CreatedAt              time.Time `json:"created_at"`
}

// BOMEntry is one line of the caller-supplied bill of materials.
// Only MaterialID participates in resolution; the rest enriches chunk
// metadata at indexing time.
type BOMEntry struct {
	MaterialID   string `json:"material_id"`
	SKU          string `json:"sku,omitempty"`
	MaterialName string `json:"material_name,omitempty"`
	SupplierName string `json:"supplier_name,omitempty"`
	Component    string `json:"component,omitempty"`
	Subcomponent string `json:"subcomponent,omitempty"`
}
