package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Chunk represents one indexed slice of a supplier declaration document.
// Chunks are keyed by (collection, chunk key) so re-indexing the same
// material overwrites instead of appending.
type Chunk struct {
	ID             int        `json:"id"`
	ChunkKey       string     `json:"chunk_key"`
	Collection     string     `json:"collection"`
	MaterialID     string     `json:"material_id"`
	DeclarationRID *uuid.UUID `json:"declaration_rid,omitempty"`
	Content        string     `json:"content"`
	Embedding      []float32  `json:"embedding,omitempty"`
	SequenceIndex  int        `json:"sequence_index"`
	TotalChunks    int        `json:"total_chunks"`
	Metadata       Metadata   `json:"metadata,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	// Results
	Distance float64 `json:"distance,omitempty"`
}

// ChunkKeyFor builds the canonical chunk key for a material and sequence index.
func ChunkKeyFor(materialID string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", materialID, index)
}
