package pipeline

import "context"

// ChunkFunc is a function that splits text into retrieval-sized chunks
type ChunkFunc func(text string) ([]string, error)

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// GenerateFunc is a function that produces a model completion for a prompt
type GenerateFunc func(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)

// Pipeline combines the chunking, embedding and generation functions
// used by the extraction flow
type Pipeline struct {
	Chunker   ChunkFunc
	Embedder  EmbedFunc
	Generator GenerateFunc
}

// NewPipeline creates a new processing pipeline
func NewPipeline(chunker ChunkFunc, embedder EmbedFunc, generator GenerateFunc) *Pipeline {
	return &Pipeline{
		Chunker:   chunker,
		Embedder:  embedder,
		Generator: generator,
	}
}

// EmbeddedChunk is a chunk with its embedding, produced by Process
type EmbeddedChunk struct {
	Content   string
	Embedding []float32
}

// Process splits text into chunks and embeds each one.
// A chunk whose embedding fails is returned with a nil embedding so the
// caller can decide whether to keep or skip it.
func (p *Pipeline) Process(text string) ([]EmbeddedChunk, error) {
	contents, err := p.Chunker(text)
	if err != nil {
		return nil, err
	}

	chunks := make([]EmbeddedChunk, 0, len(contents))
	for _, content := range contents {
		embedding, err := p.Embedder(content)
		if err != nil {
			chunks = append(chunks, EmbeddedChunk{Content: content})
			continue
		}
		chunks = append(chunks, EmbeddedChunk{Content: content, Embedding: embedding})
	}

	return chunks, nil
}
