package declarant

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/declarant/declarant/core/pipeline"
	"github.com/declarant/declarant/core/retrieval"
	"github.com/declarant/declarant/database"
	"github.com/declarant/declarant/helper"
	"github.com/declarant/declarant/model"
	"github.com/declarant/declarant/pdf"
	loadSql "github.com/declarant/declarant/sql"
)

// Declarant provides a unified interface to indexing, extraction and
// persistence of supplier declaration assessments
type Declarant struct {
	DB           *helper.Database
	Chunks       *database.ChunksDBHandler
	Declarations *database.DeclarationsDBHandler
	Materials    *database.MaterialsDBHandler
	Pipeline     *pipeline.Pipeline // Chunking, embedding and generation
	Engine       *retrieval.Engine  // Vector retrieval over indexed chunks
	Config       *model.PipelineConfig
	Fields       []pipeline.ExtractionField
	// Logging
	log *slog.Logger
}

// NewDeclarant creates a new Declarant instance with all handlers initialized
func NewDeclarant(dbConfig *helper.DatabaseConfiguration, pipelineConfig *model.PipelineConfig, embeddingDim int) (*Declarant, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	if pipelineConfig == nil {
		pipelineConfig = model.DefaultPipelineConfig()
	}

	// Initialize database
	db := helper.NewDatabase("declarant", dbConfig, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers, force=false to not reload if functions already exist
	chunks, err := database.NewChunksDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	declarations, err := database.NewDeclarationsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create declarations handler", err)
	}

	materials, err := database.NewMaterialsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create materials handler", err)
	}

	engine := retrieval.NewEngine(chunks)

	return &Declarant{
		DB:           db,
		Chunks:       chunks,
		Declarations: declarations,
		Materials:    materials,
		Engine:       engine,
		Config:       pipelineConfig,
		Fields:       pipeline.DefaultExtractionFields(),
		log:          logger,
	}, nil
}

// Close closes the database connection
func (d *Declarant) Close() error {
	if d.DB != nil && d.DB.Instance != nil {
		return d.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the processing pipeline for document indexing and extraction
func (d *Declarant) SetPipeline(pipeline *pipeline.Pipeline) {
	d.Pipeline = pipeline
}

// UseDefaultPipeline sets up the default pipeline: word-window chunking
// per the configured size and overlap, all-MiniLM-L6-v2 embeddings (384
// dimensions) and the Anthropic API for generation. An empty model name
// selects the default Claude model.
func (d *Declarant) UseDefaultPipeline(llmModel string) error {
	chunker := pipeline.WordWindowChunker(d.Config.ChunkSize, d.Config.ChunkOverlap)
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}
	generator := pipeline.DefaultGenerator(llmModel)

	d.Pipeline = pipeline.NewPipeline(chunker, embedder, generator)
	return nil
}

// documentText returns the plain text of a source document, extracting
// PDF data when no text was supplied directly.
func documentText(doc *model.SourceDocument) (string, error) {
	if doc.Text != "" {
		return doc.Text, nil
	}
	if len(doc.Data) > 0 {
		return pdf.ExtractText(doc.Data)
	}
	return "", nil
}

// IndexDeclaration chunks and embeds one declaration document into the
// configured collection and records it in the declarations registry.
// Chunks of an earlier run for the same material are superseded, not
// appended: they are deleted before the new set is written. A chunk
// whose embedding failed is logged and skipped.
// The optional BOM entry enriches the registry row and chunk metadata.
func (d *Declarant) IndexDeclaration(ctx context.Context, doc *model.SourceDocument, bomEntry *model.BOMEntry) (*model.IndexResult, error) {
	if d.Pipeline == nil {
		return nil, helper.NewError("index declaration", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}

	text, err := documentText(doc)
	if err != nil {
		return nil, helper.NewError("extract document text", err)
	}
	if text == "" {
		return nil, helper.NewError("index declaration", fmt.Errorf("document text is empty"))
	}

	materialID := doc.MaterialKey()
	collection := d.Config.Collection

	deleted, err := d.Chunks.DeleteChunksByMaterial(collection, materialID)
	if err != nil {
		return nil, helper.NewError("delete previous chunks", err)
	}
	if deleted > 0 {
		d.log.Info("Superseding previous chunks",
			slog.String("material_id", materialID), slog.Int("deleted", deleted))
	}

	decl := &model.Declaration{
		Filename:   doc.Filename,
		MaterialID: materialID,
		Metadata:   model.Metadata{},
	}
	if bomEntry != nil {
		decl.SKU = bomEntry.SKU
		decl.SupplierName = bomEntry.SupplierName
		decl.Metadata["component"] = bomEntry.Component
		decl.Metadata["subcomponent"] = bomEntry.Subcomponent
	}
	if err := d.Declarations.InsertDeclaration(decl); err != nil {
		return nil, helper.NewError("insert declaration", err)
	}

	embedded, err := d.Pipeline.Process(text)
	if err != nil {
		return nil, helper.NewError("process chunks", err)
	}

	result := &model.IndexResult{
		MaterialID:      materialID,
		Collection:      collection,
		ChunksAttempted: len(embedded),
	}

	for i, chunk := range embedded {
		if chunk.Embedding == nil {
			d.log.Warn("Skipping chunk with failed embedding",
				slog.String("material_id", materialID), slog.Int("sequence_index", i))
			continue
		}

		metadata := model.Metadata{"filename": doc.Filename}
		if bomEntry != nil {
			metadata["sku"] = bomEntry.SKU
			metadata["material_name"] = bomEntry.MaterialName
			metadata["supplier_name"] = bomEntry.SupplierName
		}

		err := d.Chunks.UpsertChunk(&model.Chunk{
			ChunkKey:       model.ChunkKeyFor(materialID, i),
			Collection:     collection,
			MaterialID:     materialID,
			DeclarationRID: &decl.RID,
			Content:        chunk.Content,
			Embedding:      chunk.Embedding,
			SequenceIndex:  i,
			TotalChunks:    len(embedded),
			Metadata:       metadata,
		})
		if err != nil {
			return result, helper.NewError(fmt.Sprintf("upsert chunk %d", i), err)
		}
		result.ChunksCreated++
	}

	d.log.Info("Indexed declaration",
		slog.String("material_id", materialID),
		slog.Int("chunks_created", result.ChunksCreated),
		slog.Int("chunks_attempted", result.ChunksAttempted))

	return result, nil
}

// extractField runs retrieval, prompting, generation and parsing for one
// extraction field. Every failure is logged and isolated to an empty
// result for this field only.
func (d *Declarant) extractField(ctx context.Context, field pipeline.ExtractionField, materialID string) []map[string]any {
	embedding, err := d.Pipeline.Embedder(field.Query)
	if err != nil {
		d.log.Error("Embedding failed for field",
			slog.String("field", field.Name), slog.Any("error", err))
		return []map[string]any{}
	}

	config := &model.QueryConfig{
		TopK:       d.Config.MaxResults,
		Collection: d.Config.Collection,
		MaterialID: materialID,
	}
	results, err := d.Engine.Retrieve(ctx, embedding, config)
	if err != nil {
		d.log.Error("Retrieval failed for field",
			slog.String("field", field.Name), slog.Any("error", err))
		return []map[string]any{}
	}

	texts := make([]string, 0, len(results))
	for _, result := range results {
		texts = append(texts, result.Chunk.Content)
	}

	prompt := pipeline.BuildFieldPrompt(pipeline.BuildContext(texts), field.Name, field.Query, field.Instructions)

	response, err := d.Pipeline.Generator(ctx, prompt, d.Config.Temperature, d.Config.MaxTokens)
	if err != nil {
		d.log.Error("Generation failed for field",
			slog.String("field", field.Name), slog.Any("error", err))
		return []map[string]any{}
	}

	return pipeline.ParseResponse(response)
}

// consolidateFieldwise merges per-field result lists index-wise: the
// i-th parsed object of every field contributes to the i-th raw record.
func consolidateFieldwise(fieldwise map[string][]map[string]any, order []string) []map[string]any {
	maxLen := 0
	for _, values := range fieldwise {
		if len(values) > maxLen {
			maxLen = len(values)
		}
	}

	var consolidated []map[string]any
	for i := 0; i < maxLen; i++ {
		record := map[string]any{}
		for _, field := range order {
			values := fieldwise[field]
			if i < len(values) {
				for key, value := range values[i] {
					record[key] = value
				}
			}
		}
		if len(record) > 0 {
			consolidated = append(consolidated, record)
		}
	}

	return consolidated
}

// Assess runs the full extraction flow over a batch of declaration
// documents and persists the surviving assessment rows in a single
// transaction. One bad document or field never aborts the batch; a
// persistence failure rolls back everything and is returned.
func (d *Declarant) Assess(ctx context.Context, bomIDs []string, docs []*model.SourceDocument) (*model.ConsolidationResult, error) {
	if d.Pipeline == nil || d.Pipeline.Generator == nil {
		return nil, helper.NewError("assess", fmt.Errorf("pipeline with generator not set, use SetPipeline() first"))
	}

	var batch []*model.MaterialRecord
	var skips []model.SkipRecord

	for _, doc := range docs {
		text, err := documentText(doc)
		if err != nil || text == "" {
			if err != nil {
				d.log.Error("Text extraction failed", slog.String("file", doc.Filename), slog.Any("error", err))
			}
			skips = append(skips, model.SkipRecord{
				Reason: model.SkipEmptyDocumentText,
				File:   doc.Filename,
			})
			continue
		}

		if _, err := d.IndexDeclaration(ctx, &model.SourceDocument{
			Filename:   doc.Filename,
			MaterialID: doc.MaterialID,
			Text:       text,
		}, nil); err != nil {
			d.log.Error("Indexing failed", slog.String("file", doc.Filename), slog.Any("error", err))
			skips = append(skips, model.SkipRecord{
				Reason: model.SkipIndexingFailed,
				File:   doc.Filename,
			})
			continue
		}

		materialKey := doc.MaterialKey()

		fieldwise := map[string][]map[string]any{}
		order := make([]string, 0, len(d.Fields))
		for _, field := range d.Fields {
			order = append(order, field.Name)
			fieldwise[field.Name] = d.extractField(ctx, field, materialKey)
		}

		raws := consolidateFieldwise(fieldwise, order)
		records := pipeline.NormalizeRecords(raws)

		snippets := pipeline.ScanMentions(text, d.Config.MentionWindow)
		assessed := pipeline.AssessMentions(ctx, d.Pipeline.Generator, snippets)

		for _, record := range records {
			record.Mentions = pipeline.ReconcileMentions(record.Mentions, assessed, snippets)
		}

		// The model may come back empty while the scanner still found
		// regulation citations. Carry them on a single fallback record so
		// deterministic evidence reaches the materials table.
		if len(records) == 0 && len(snippets) > 0 {
			d.log.Info("No extraction results, keeping deterministic mentions",
				slog.String("file", doc.Filename), slog.Int("mentions", len(snippets)))
			fallback := pipeline.NormalizeRecord(map[string]any{})
			fallback.Mentions = pipeline.ReconcileMentions(nil, assessed, snippets)
			records = append(records, fallback)
		}

		resolved, docSkips := pipeline.ResolveMaterials(records, bomIDs, doc.Filename)
		batch = append(batch, resolved...)
		skips = append(skips, docSkips...)
	}

	stats, err := d.Materials.UpsertAll(ctx, batch)
	if err != nil {
		return nil, helper.NewError("persist assessments", err)
	}

	return &model.ConsolidationResult{
		Inserted:    stats.Inserted,
		Updated:     stats.Updated,
		Skipped:     len(skips),
		SkipReasons: skips,
	}, nil
}

// Search performs vector similarity search over indexed declarations
func (d *Declarant) Search(ctx context.Context, query string, config *model.QueryConfig) ([]*model.RetrievalResult, error) {
	if d.Engine == nil {
		return nil, helper.NewError("vector search", fmt.Errorf("retrieval engine not initialized"))
	}
	if d.Pipeline == nil || d.Pipeline.Embedder == nil {
		return nil, helper.NewError("vector search", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}

	embedding, err := d.Pipeline.Embedder(query)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	if config == nil {
		defaultConfig := model.DefaultQueryConfig()
		config = &defaultConfig
	}
	if config.Collection == "" {
		config.Collection = d.Config.Collection
	}

	return d.Engine.Retrieve(ctx, embedding, config)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (d *Declarant) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return d.Chunks.ChangeIndexType(ctx, indexType, params)
}
