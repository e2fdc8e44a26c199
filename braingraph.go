package braingraph

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/siherrmann/braingraph/core/graph"
	"github.com/siherrmann/braingraph/core/pipeline"
	"github.com/siherrmann/braingraph/database"
	"github.com/siherrmann/braingraph/helper"
	"github.com/siherrmann/braingraph/model"
	loadSql "github.com/siherrmann/braingraph/sql"
)

// BrainGraph provides a unified interface to all database handlers
type BrainGraph struct {
	DB       *helper.Database
	Nodes    *database.NodesDBHandler
	Edges    *database.EdgesDBHandler
	Sources  *database.SourcesDBHandler
	Graph    *database.GraphDBHandler
	Pipeline *pipeline.Pipeline // Ingestion pipeline
	// Logging
	log *slog.Logger
	// Merge serialization per brain
	mu         sync.Mutex
	brainLocks map[string]*sync.Mutex
}

// NewBrainGraph creates a new BrainGraph instance with all handlers initialized
func NewBrainGraph(config *helper.DatabaseConfiguration, embeddingDim int) (*BrainGraph, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("braingraph", config, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	// Create all handlers in the correct order (nodes first, then edges)
	// force=false to not reload if functions already exist
	sources, err := database.NewSourcesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create sources handler", err)
	}

	nodes, err := database.NewNodesDBHandler(db, embeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create nodes handler", err)
	}

	edges, err := database.NewEdgesDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create edges handler", err)
	}

	graphHandler, err := database.NewGraphDBHandler(db, nodes, edges)
	if err != nil {
		return nil, helper.NewError("create graph handler", err)
	}

	return &BrainGraph{
		DB:         db,
		Nodes:      nodes,
		Edges:      edges,
		Sources:    sources,
		Graph:      graphHandler,
		log:        logger,
		brainLocks: make(map[string]*sync.Mutex),
	}, nil
}

// Close closes the database connection
func (b *BrainGraph) Close() error {
	if b.DB != nil && b.DB.Instance != nil {
		return b.DB.Instance.Close()
	}
	return nil
}

// SetPipeline sets the ingestion pipeline
func (b *BrainGraph) SetPipeline(p *pipeline.Pipeline) {
	b.Pipeline = p
}

// SetEmbedder replaces the embedder of the current pipeline. When no
// pipeline is set yet, a default-configured one is created around the
// embedder.
func (b *BrainGraph) SetEmbedder(embedder pipeline.EmbedFunc) {
	if b.Pipeline == nil {
		b.Pipeline = pipeline.NewPipeline(model.DefaultPipelineConfig(), embedder)
		return
	}
	b.Pipeline.Embedder = embedder
}

// SetConfig replaces the pipeline configuration, keeping the embedder.
// A nil config falls back to the defaults.
func (b *BrainGraph) SetConfig(config *model.PipelineConfig) {
	if b.Pipeline == nil {
		b.Pipeline = pipeline.NewPipeline(config, nil)
		return
	}
	if config == nil {
		config = model.DefaultPipelineConfig()
	}
	b.Pipeline.Config = config
}

// UseDefaultPipeline sets up the default ingestion pipeline.
// This uses the default hyperparameter block (5 topics, deterministic
// seed) and the all-MiniLM-L6-v2 embedder (384 dimensions) for phrase
// deduplication and keyword similarity search.
func (b *BrainGraph) UseDefaultPipeline() error {
	embedder, err := pipeline.DefaultEmbedder()
	if err != nil {
		return helper.NewError("create default embedder", err)
	}

	b.Pipeline = pipeline.NewPipeline(model.DefaultPipelineConfig(), embedder)
	return nil
}

// brainLock returns the merge lock of a brain, creating it on first use.
func (b *BrainGraph) brainLock(brainID string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()

	lock, ok := b.brainLocks[brainID]
	if !ok {
		lock = &sync.Mutex{}
		b.brainLocks[brainID] = lock
	}
	return lock
}

// Ingest processes one source into the brain's knowledge graph:
// 1. Segmenting and tokenizing the raw text
// 2. Recursive topic chunking into a keyword hierarchy
// 3. Per-chunk concept node and edge emission
// 4. One idempotent batch merge into the persisted graph
// The merge is serialized per brain; cancellation before the merge
// discards the batch, the merge itself always runs to completion.
func (b *BrainGraph) Ingest(ctx context.Context, sourceID, brainID, rawText string) (*model.IngestReport, error) {
	if b.Pipeline == nil {
		return nil, helper.NewError("ingest", fmt.Errorf("pipeline not set, use SetPipeline() first"))
	}
	if err := b.Pipeline.Config.Validate(); err != nil {
		return nil, helper.NewError("validate pipeline config", err)
	}

	orchestrator := pipeline.NewOrchestrator(b.Pipeline, b.log)
	result, err := orchestrator.Process(ctx, sourceID, brainID, rawText)
	if err != nil {
		return nil, err
	}

	if len(result.Batch.Nodes) == 0 {
		b.log.Info("Ingest produced no graph, skipping merge",
			slog.String("source_id", sourceID),
			slog.String("brain_id", brainID))
		return result.Report, nil
	}

	if ctx.Err() != nil {
		return nil, model.ErrCancelled
	}

	lock := b.brainLock(brainID)
	lock.Lock()
	defer lock.Unlock()

	err = b.Sources.InsertSource(&model.Source{
		SourceID: sourceID,
		BrainID:  brainID,
		Title:    sourceID,
	})
	if err != nil {
		return nil, helper.NewError("insert source", err)
	}

	// The merge is not cancellable; the running batch completes or fails
	// as a whole.
	mergeCtx := context.WithoutCancel(ctx)
	err = b.Graph.MergeBatch(mergeCtx, result.Batch.Nodes, result.Batch.Edges, b.Pipeline.Config.MergeRetries)
	if err != nil {
		return nil, err
	}

	b.log.Info("Ingested source",
		slog.String("source_id", sourceID),
		slog.String("brain_id", brainID),
		slog.String("root_keyword", result.Report.RootKeyword),
		slog.Int("nodes", result.Report.NodesCreated),
		slog.Int("edges", result.Report.EdgesCreated),
		slog.Int("chunks", result.Report.Chunks))

	return result.Report, nil
}

// RemoveSource removes exactly one source's contribution from the brain:
// its edges, its entries in node record lists, and nodes left without any
// evidence. Other sources' contributions to shared nodes are preserved.
func (b *BrainGraph) RemoveSource(ctx context.Context, sourceID, brainID string) error {
	retries := model.DefaultPipelineConfig().MergeRetries
	if b.Pipeline != nil {
		retries = b.Pipeline.Config.MergeRetries
	}

	lock := b.brainLock(brainID)
	lock.Lock()
	defer lock.Unlock()

	err := b.Graph.RemoveSource(ctx, sourceID, brainID, retries)
	if err != nil {
		return err
	}

	b.log.Info("Removed source",
		slog.String("source_id", sourceID),
		slog.String("brain_id", brainID))

	return nil
}

// SearchKeywords returns the keyword nodes of a brain nearest to the
// query by embedding cosine distance
func (b *BrainGraph) SearchKeywords(ctx context.Context, brainID, query string, limit int) ([]*model.KeywordNode, error) {
	if b.Pipeline == nil || b.Pipeline.Embedder == nil {
		return nil, helper.NewError("keyword search", fmt.Errorf("pipeline with embedder not set, use SetPipeline() first"))
	}

	// Generate embedding from query
	embedding, err := b.Pipeline.Embedder(query)
	if err != nil {
		return nil, helper.NewError("generate embedding", err)
	}

	return b.Nodes.SelectNodesBySimilarity(ctx, brainID, embedding, limit)
}

// Neighborhood performs breadth-first traversal from a keyword node
func (b *BrainGraph) Neighborhood(ctx context.Context, brainID, name string, maxHops int) ([]*graph.TraversalResult, error) {
	return graph.BFS(ctx, b.Graph, brainID, name, maxHops)
}

// GetGraph returns all nodes and edges of a brain
func (b *BrainGraph) GetGraph(ctx context.Context, brainID string) ([]*model.KeywordNode, []*model.Edge, error) {
	nodes, err := b.Nodes.SelectNodesByBrain(brainID)
	if err != nil {
		return nil, nil, err
	}

	edges, err := b.Edges.SelectEdgesByBrain(brainID)
	if err != nil {
		return nil, nil, err
	}

	return nodes, edges, nil
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat
func (b *BrainGraph) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return b.Nodes.ChangeIndexType(ctx, indexType, params)
}
