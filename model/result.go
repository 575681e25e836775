package model

// RetrievalResult represents a chunk retrieved by a query
type RetrievalResult struct {
	Chunk    *Chunk  `json:"chunk"`
	Distance float64 `json:"distance"`
}

// IndexResult summarizes one indexing run for a document
type IndexResult struct {
	MaterialID      string `json:"material_id"`
	Collection      string `json:"collection"`
	ChunksCreated   int    `json:"chunks_created"`
	ChunksAttempted int    `json:"chunks_attempted"`
}

// Skip reasons for records the resolver refuses to persist
const (
	SkipMaterialNotInBOM       = "material_not_in_bom"
	SkipDuplicateMaterialInPDF = "duplicate_material_in_pdf"
	SkipEmptyDocumentText      = "empty_document_text"
	SkipIndexingFailed         = "indexing_failed"
)

// SkipRecord explains why a record or document was not persisted
type SkipRecord struct {
	Reason     string `json:"reason"`
	MaterialID string `json:"material_id,omitempty"`
	File       string `json:"file,omitempty"`
}

// UpsertStats counts rows written by a materials upsert transaction
type UpsertStats struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
}

// ConsolidationResult summarizes a full assessment run
type ConsolidationResult struct {
	Inserted    int          `json:"inserted"`
	Updated     int          `json:"updated"`
	Skipped     int          `json:"skipped"`
	SkipReasons []SkipRecord `json:"skip_reasons,omitempty"`
}
