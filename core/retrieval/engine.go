package retrieval

import (
	"context"

	"github.com/declarant/declarant/database"
	"github.com/declarant/declarant/helper"
	"github.com/declarant/declarant/model"
)

// Engine retrieves declaration chunks by vector similarity
type Engine struct {
	chunks *database.ChunksDBHandler
}

// NewEngine creates a new retrieval engine
func NewEngine(chunks *database.ChunksDBHandler) *Engine {
	return &Engine{
		chunks: chunks,
	}
}

// Retrieve performs vector similarity search over the configured
// collection, optionally scoped to one material. An empty store yields
// an empty result, not an error.
func (e *Engine) Retrieve(ctx context.Context, embedding []float32, config *model.QueryConfig) ([]*model.RetrievalResult, error) {
	chunks, err := e.chunks.SelectChunksBySimilarity(embedding, config.Collection, config.TopK, config.MaterialID)
	if err != nil {
		return nil, helper.NewError("select chunks by similarity", err)
	}

	results := make([]*model.RetrievalResult, len(chunks))
	for i, chunk := range chunks {
		results[i] = &model.RetrievalResult{
			Chunk:    chunk,
			Distance: chunk.Distance,
		}
	}

	return results, nil
}

// RetrieveAll returns every chunk of a material in sequence order,
// for full-document mode.
func (e *Engine) RetrieveAll(ctx context.Context, config *model.QueryConfig) ([]*model.Chunk, error) {
	chunks, err := e.chunks.SelectChunksByMaterial(config.Collection, config.MaterialID)
	if err != nil {
		return nil, helper.NewError("select chunks by material", err)
	}

	return chunks, nil
}
