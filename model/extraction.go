package model

// Mention is one cited regulation or substance reference found in a
// document, either by the model or by the deterministic scanner.
// Compliant is tri-state: nil means the evidence did not say.
type Mention struct {
	Keyword   string `json:"keyword"`
	Evidence  string `json:"evidence"`
	Compliant *bool  `json:"compliant,omitempty"`
}

// ExtractionRecord is the normalized per-material result of one
// extraction pass over a document. It is transient; persisted rows are
// MaterialRecord.
type ExtractionRecord struct {
	MaterialID             string    `json:"material_id"`
	SupplierName           string    `json:"supplier_name"`
	DeclarationDate        string    `json:"declaration_date"`
	Compliant              *bool     `json:"compliant"`
	Recyclability          string    `json:"recyclability"`
	RecycledContentPercent *float64  `json:"recycled_content_percent"`
	RestrictedSubstances   []string  `json:"restricted_substances"`
	Notes                  string    `json:"notes"`
	Mentions               []Mention `json:"regulatory_mentions"`
}
