package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/declarant/declarant/model"
)

func testEmbedding(dim int, seed float32) []float32 {
	embedding := make([]float32, dim)
	for i := range embedding {
		embedding[i] = seed + float32(i)/float32(dim)
	}
	return embedding
}

func TestChunksNewChunksDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewChunksDBHandler", func(t *testing.T) {
		chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
		assert.NoError(t, err, "Expected NewChunksDBHandler to not return an error")
		require.NotNil(t, chunksDbHandler, "Expected NewChunksDBHandler to return a non-nil instance")
		require.NotNil(t, chunksDbHandler.db, "Expected NewChunksDBHandler to have a non-nil database instance")
		require.NotNil(t, chunksDbHandler.db.Instance, "Expected NewChunksDBHandler to have a non-nil database connection instance")
	})

	t.Run("Invalid call NewChunksDBHandler with nil database", func(t *testing.T) {
		_, err := NewChunksDBHandler(nil, 384, false)
		assert.Error(t, err, "Expected error when creating ChunksDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestChunksUpsert(t *testing.T) {
	database := initDB(t)

	chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewChunksDBHandler to not return an error")

	t.Run("Upsert chunk with embedding", func(t *testing.T) {
		chunk := &model.Chunk{
			ChunkKey:      model.ChunkKeyFor("MAT-1", 0),
			Collection:    "upsert_test",
			MaterialID:    "MAT-1",
			Content:       "This is a test chunk",
			Embedding:     testEmbedding(384, 0),
			SequenceIndex: 0,
			TotalChunks:   2,
			Metadata:      map[string]interface{}{"filename": "test.pdf"},
		}

		err := chunksDbHandler.UpsertChunk(chunk)
		assert.NoError(t, err, "Expected Upsert to not return an error")
		assert.NotEmpty(t, chunk.ID, "Expected upserted chunk to have an ID")
		assert.Len(t, chunk.Embedding, 384, "Expected embedding to round-trip")
		assert.WithinDuration(t, chunk.CreatedAt, time.Now(), 2*time.Second, "Expected CreatedAt to be set")
	})

	t.Run("Upsert chunk without embedding", func(t *testing.T) {
		chunk := &model.Chunk{
			ChunkKey:      model.ChunkKeyFor("MAT-1", 1),
			Collection:    "upsert_test",
			MaterialID:    "MAT-1",
			Content:       "A chunk whose embedding failed",
			SequenceIndex: 1,
			TotalChunks:   2,
			Metadata:      map[string]interface{}{},
		}

		err := chunksDbHandler.UpsertChunk(chunk)
		assert.NoError(t, err, "Expected Upsert to not return an error")
		assert.Nil(t, chunk.Embedding, "Expected missing embedding to stay nil")
	})

	t.Run("Upsert with same chunk key overwrites", func(t *testing.T) {
		first := &model.Chunk{
			ChunkKey:      model.ChunkKeyFor("MAT-OVERWRITE", 0),
			Collection:    "upsert_test",
			MaterialID:    "MAT-OVERWRITE",
			Content:       "Original content",
			Embedding:     testEmbedding(384, 0),
			SequenceIndex: 0,
			TotalChunks:   1,
			Metadata:      map[string]interface{}{},
		}
		require.NoError(t, chunksDbHandler.UpsertChunk(first))

		second := &model.Chunk{
			ChunkKey:      model.ChunkKeyFor("MAT-OVERWRITE", 0),
			Collection:    "upsert_test",
			MaterialID:    "MAT-OVERWRITE",
			Content:       "Replaced content",
			Embedding:     testEmbedding(384, 1),
			SequenceIndex: 0,
			TotalChunks:   1,
			Metadata:      map[string]interface{}{},
		}
		require.NoError(t, chunksDbHandler.UpsertChunk(second))

		assert.Equal(t, first.ID, second.ID, "Expected overwrite to keep the row")

		chunks, err := chunksDbHandler.SelectChunksByMaterial("upsert_test", "MAT-OVERWRITE")
		require.NoError(t, err)
		require.Len(t, chunks, 1, "Expected no duplicate rows")
		assert.Equal(t, "Replaced content", chunks[0].Content)
	})
}

func TestChunksSelect(t *testing.T) {
	database := initDB(t)

	chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewChunksDBHandler to not return an error")

	seeded := make([]*model.Chunk, 3)
	for i := range seeded {
		seeded[i] = &model.Chunk{
			ChunkKey:      model.ChunkKeyFor("MAT-SELECT", i),
			Collection:    "select_test",
			MaterialID:    "MAT-SELECT",
			Content:       "chunk content",
			Embedding:     testEmbedding(384, float32(i)),
			SequenceIndex: i,
			TotalChunks:   3,
			Metadata:      map[string]interface{}{},
		}
		require.NoError(t, chunksDbHandler.UpsertChunk(seeded[i]))
	}

	t.Run("Select chunk by id", func(t *testing.T) {
		chunk, err := chunksDbHandler.SelectChunk(seeded[0].ID)

		require.NoError(t, err)
		assert.Equal(t, seeded[0].ChunkKey, chunk.ChunkKey)
		assert.Equal(t, seeded[0].Content, chunk.Content)
		assert.Len(t, chunk.Embedding, 384)
	})

	t.Run("Select chunk with unknown id", func(t *testing.T) {
		_, err := chunksDbHandler.SelectChunk(999999)

		assert.Error(t, err)
	})

	t.Run("Select chunks by material in sequence order", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksByMaterial("select_test", "MAT-SELECT")

		require.NoError(t, err)
		require.Len(t, chunks, 3)
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.SequenceIndex)
		}
	})

	t.Run("Select chunks for unknown material", func(t *testing.T) {
		chunks, err := chunksDbHandler.SelectChunksByMaterial("select_test", "MAT-404")

		require.NoError(t, err)
		assert.Empty(t, chunks)
	})
}

func TestChunksSelectBySimilarity(t *testing.T) {
	database := initDB(t)

	chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewChunksDBHandler to not return an error")

	near := testEmbedding(384, 0)
	far := testEmbedding(384, 100)

	chunksToSeed := []*model.Chunk{
		{
			ChunkKey:      model.ChunkKeyFor("MAT-SIM-1", 0),
			Collection:    "similarity_test",
			MaterialID:    "MAT-SIM-1",
			Content:       "near chunk",
			Embedding:     near,
			SequenceIndex: 0,
			TotalChunks:   1,
			Metadata:      map[string]interface{}{},
		},
		{
			ChunkKey:      model.ChunkKeyFor("MAT-SIM-2", 0),
			Collection:    "similarity_test",
			MaterialID:    "MAT-SIM-2",
			Content:       "far chunk",
			Embedding:     far,
			SequenceIndex: 0,
			TotalChunks:   1,
			Metadata:      map[string]interface{}{},
		},
	}
	for _, chunk := range chunksToSeed {
		require.NoError(t, chunksDbHandler.UpsertChunk(chunk))
	}

	t.Run("Orders by cosine distance", func(t *testing.T) {
		results, err := chunksDbHandler.SelectChunksBySimilarity(near, "similarity_test", 10, "")

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "near chunk", results[0].Content)
		assert.InDelta(t, 0.0, results[0].Distance, 0.001)
		assert.Greater(t, results[1].Distance, results[0].Distance)
	})

	t.Run("Respects limit", func(t *testing.T) {
		results, err := chunksDbHandler.SelectChunksBySimilarity(near, "similarity_test", 1, "")

		require.NoError(t, err)
		assert.Len(t, results, 1)
	})

	t.Run("Material filter restricts results", func(t *testing.T) {
		results, err := chunksDbHandler.SelectChunksBySimilarity(near, "similarity_test", 10, "MAT-SIM-2")

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "MAT-SIM-2", results[0].MaterialID)
	})

	t.Run("Empty collection yields no results", func(t *testing.T) {
		results, err := chunksDbHandler.SelectChunksBySimilarity(near, "empty_collection", 10, "")

		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestChunksDelete(t *testing.T) {
	database := initDB(t)

	chunksDbHandler, err := NewChunksDBHandler(database, 384, true)
	require.NoError(t, err, "Expected NewChunksDBHandler to not return an error")

	for i := 0; i < 3; i++ {
		chunk := &model.Chunk{
			ChunkKey:      model.ChunkKeyFor("MAT-DELETE", i),
			Collection:    "delete_test",
			MaterialID:    "MAT-DELETE",
			Content:       "chunk content",
			Embedding:     testEmbedding(384, float32(i)),
			SequenceIndex: i,
			TotalChunks:   3,
			Metadata:      map[string]interface{}{},
		}
		require.NoError(t, chunksDbHandler.UpsertChunk(chunk))
	}

	t.Run("Delete chunks by material", func(t *testing.T) {
		deleted, err := chunksDbHandler.DeleteChunksByMaterial("delete_test", "MAT-DELETE")

		require.NoError(t, err)
		assert.Equal(t, 3, deleted)

		chunks, err := chunksDbHandler.SelectChunksByMaterial("delete_test", "MAT-DELETE")
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("Delete for unknown material deletes nothing", func(t *testing.T) {
		deleted, err := chunksDbHandler.DeleteChunksByMaterial("delete_test", "MAT-404")

		require.NoError(t, err)
		assert.Equal(t, 0, deleted)
	})
}
