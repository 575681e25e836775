package model

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// QueryConfig represents configuration for a retrieval query
type QueryConfig struct {
	// Vector search parameters
	TopK int `json:"top_k"`

	// Collection to search in
	Collection string `json:"collection,omitempty"`

	// MaterialID restricts retrieval to the chunks of a single material.
	// Empty means all materials in the collection.
	MaterialID string `json:"material_id,omitempty"`
}

// DefaultQueryConfig returns a sensible default configuration
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		TopK:       5,
		Collection: DefaultCollection,
	}
}

// DefaultCollection is the collection documents are indexed into when the
// caller does not name one.
const DefaultCollection = "declarations"

// PipelineConfig holds the tunables of the extraction pipeline.
type PipelineConfig struct {
	// Chunking parameters (word counts)
	ChunkSize    int `json:"chunk_size" toml:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap" toml:"chunk_overlap"`

	// Retrieval
	MaxResults int    `json:"max_results" toml:"max_results"`
	Collection string `json:"collection" toml:"collection"`

	// Generation
	Temperature float64 `json:"temperature" toml:"temperature"`
	MaxTokens   int     `json:"max_tokens" toml:"max_tokens"`

	// Deterministic mention scan window in lines around a hit
	MentionWindow int `json:"mention_window" toml:"mention_window"`
}

// DefaultPipelineConfig returns the default pipeline tunables
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		ChunkSize:     300,
		ChunkOverlap:  50,
		MaxResults:    5,
		Collection:    DefaultCollection,
		Temperature:   0.4,
		MaxTokens:     2048,
		MentionWindow: 50,
	}
}

// LoadPipelineConfig reads a TOML config file and overlays it on the defaults.
// Keys absent from the file keep their default values.
func LoadPipelineConfig(path string) (*PipelineConfig, error) {
	config := DefaultPipelineConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading pipeline config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing pipeline config %s: %w", path, err)
	}

	if config.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk_size must be positive, got %d", config.ChunkSize)
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("chunk_overlap must be in [0, chunk_size), got %d", config.ChunkOverlap)
	}

	return config, nil
}
