// Package pipeline drives the knowledge-graph construction for one source:
// segmentation, tokenization, recursive topic chunking, per-chunk node and
// edge emission, and batching for the graph merger.
package pipeline

import "github.com/siherrmann/braingraph/model"

// EmbedFunc is a function that generates embeddings for text
type EmbedFunc func(text string) ([]float32, error)

// Pipeline bundles the configuration and embedder one ingestion runs with.
// Topic model, TF-IDF state and phrase embeddings are created per job and
// never shared across jobs.
type Pipeline struct {
	Config   *model.PipelineConfig
	Embedder EmbedFunc
}

// NewPipeline creates a pipeline with the given configuration. A nil
// config falls back to the defaults.
func NewPipeline(config *model.PipelineConfig, embedder EmbedFunc) *Pipeline {
	if config == nil {
		config = model.DefaultPipelineConfig()
	}
	return &Pipeline{
		Config:   config,
		Embedder: embedder,
	}
}
