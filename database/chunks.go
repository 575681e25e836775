package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/declarant/declarant/helper"
	"github.com/declarant/declarant/model"
	loadSql "github.com/declarant/declarant/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	UpsertChunk(chunk *model.Chunk) error
	SelectChunk(id int) (*model.Chunk, error)
	SelectChunksByMaterial(collection string, materialID string) ([]*model.Chunk, error)
	SelectChunksBySimilarity(embedding []float32, collection string, limit int, materialID string) ([]*model.Chunk, error)
	DeleteChunksByMaterial(collection string, materialID string) (int, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary extensions and indexes.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing chunks table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// UpsertChunk inserts a chunk or overwrites the existing row with the
// same (collection, chunk key)
func (h *ChunksDBHandler) UpsertChunk(chunk *model.Chunk) error {
	var embeddingVector any
	if chunk.Embedding != nil {
		embeddingVector = pgvector.NewVector(chunk.Embedding)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM upsert_chunk($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		chunk.ChunkKey,
		chunk.Collection,
		chunk.MaterialID,
		chunk.DeclarationRID,
		chunk.Content,
		embeddingVector,
		chunk.SequenceIndex,
		chunk.TotalChunks,
		chunk.Metadata,
	)

	err := row.Scan(
		&chunk.ID,
		&chunk.ChunkKey,
		&chunk.Collection,
		&chunk.MaterialID,
		&chunk.DeclarationRID,
		&chunk.Content,
		pq.Array(&chunk.Embedding),
		&chunk.SequenceIndex,
		&chunk.TotalChunks,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectChunk retrieves a chunk by ID
func (h *ChunksDBHandler) SelectChunk(id int) (*model.Chunk, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_chunk($1)`,
		id,
	)

	chunk := &model.Chunk{}
	err := row.Scan(
		&chunk.ID,
		&chunk.ChunkKey,
		&chunk.Collection,
		&chunk.MaterialID,
		&chunk.DeclarationRID,
		&chunk.Content,
		pq.Array(&chunk.Embedding),
		&chunk.SequenceIndex,
		&chunk.TotalChunks,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return chunk, nil
}

// SelectChunksByMaterial retrieves all chunks of one material in
// sequence order
func (h *ChunksDBHandler) SelectChunksByMaterial(collection string, materialID string) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_material($1, $2)`,
		collection,
		materialID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.ChunkKey,
			&chunk.Collection,
			&chunk.MaterialID,
			&chunk.DeclarationRID,
			&chunk.Content,
			pq.Array(&chunk.Embedding),
			&chunk.SequenceIndex,
			&chunk.TotalChunks,
			&chunk.Metadata,
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// SelectChunksBySimilarity performs vector similarity search over a
// collection, ordered by cosine distance.
// If materialID is empty, searches across all materials.
func (h *ChunksDBHandler) SelectChunksBySimilarity(embedding []float32, collection string, limit int, materialID string) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3, $4)`,
		pgvector.NewVector(embedding),
		collection,
		limit,
		materialID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		err := rows.Scan(
			&chunk.ID,
			&chunk.ChunkKey,
			&chunk.Collection,
			&chunk.MaterialID,
			&chunk.DeclarationRID,
			&chunk.Content,
			pq.Array(&chunk.Embedding),
			&chunk.SequenceIndex,
			&chunk.TotalChunks,
			&chunk.Metadata,
			&chunk.CreatedAt,
			&chunk.Distance,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		results = append(results, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// DeleteChunksByMaterial deletes all chunks of a material in a
// collection and returns the number of deleted rows
func (h *ChunksDBHandler) DeleteChunksByMaterial(collection string, materialID string) (int, error) {
	var deleted int
	err := h.db.Instance.QueryRow(
		`SELECT delete_chunks_by_material($1, $2)`,
		collection,
		materialID,
	).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}
