package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cosine similarity for comparing test embeddings
func cosineSimilarity(a []float32, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (sqrt32(normA) * sqrt32(normB))
}

func sqrt32(f float32) float32 {
	if f <= 0 {
		return 0
	}
	x := f
	for i := 0; i < 20; i++ {
		x = (x + f/x) / 2
	}
	return x
}

func TestDefaultEmbedder(t *testing.T) {
	// Note: DefaultEmbedder uses hugot which requires downloading models
	// These tests may take longer on first run

	t.Run("Create embedder successfully", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, err := DefaultEmbedder()

		require.NoError(t, err)
		assert.NotNil(t, embedder)
	})

	t.Run("Generate embedding for text", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, err := DefaultEmbedder()
		require.NoError(t, err)

		text := "The supplier declares conformity with packaging regulations."
		embedding, err := embedder(text)

		require.NoError(t, err)
		assert.NotNil(t, embedding)
		assert.Equal(t, 384, len(embedding), "all-MiniLM-L6-v2 produces 384-dimensional embeddings")

		// Verify embedding contains non-zero values
		hasNonZero := false
		for _, val := range embedding {
			if val != 0 {
				hasNonZero = true
				break
			}
		}
		assert.True(t, hasNonZero, "Embedding should contain non-zero values")
	})

	t.Run("Same text produces same embedding", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, err := DefaultEmbedder()
		require.NoError(t, err)

		text := "Deterministic embedding test"
		embedding1, err1 := embedder(text)
		require.NoError(t, err1)

		embedding2, err2 := embedder(text)
		require.NoError(t, err2)

		assert.Equal(t, len(embedding1), len(embedding2))

		// Check that embeddings are identical (or very close due to floating point)
		for i := range embedding1 {
			assert.InDelta(t, embedding1[i], embedding2[i], 0.0001, "Same text should produce same embedding")
		}
	})

	t.Run("Similar texts have similar embeddings", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, err := DefaultEmbedder()
		require.NoError(t, err)

		text1 := "The packaging is fully recyclable"
		text2 := "The packaging can be recycled"
		text3 := "Quantum physics is complex"

		embedding1, err1 := embedder(text1)
		require.NoError(t, err1)

		embedding2, err2 := embedder(text2)
		require.NoError(t, err2)

		embedding3, err3 := embedder(text3)
		require.NoError(t, err3)

		// Calculate cosine similarity
		similarity12 := cosineSimilarity(embedding1, embedding2)
		similarity13 := cosineSimilarity(embedding1, embedding3)

		assert.Greater(t, similarity12, similarity13,
			"Semantically similar texts should have higher similarity")
		assert.Greater(t, similarity12, float32(0.5),
			"Related texts should have reasonable similarity")
	})

	t.Run("Handle special characters", func(t *testing.T) {
		if testing.Short() {
			t.Skip("Skipping DefaultEmbedder test in short mode (requires model download)")
		}

		embedder, err := DefaultEmbedder()
		require.NoError(t, err)

		text := "Special chars: @#$%^&*()! 你好 🎉"
		embedding, err := embedder(text)

		require.NoError(t, err)
		assert.NotNil(t, embedding)
		assert.Equal(t, 384, len(embedding))
	})
}
