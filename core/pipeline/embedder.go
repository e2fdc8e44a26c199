package pipeline

import (
	"fmt"

	"github.com/knights-analytics/hugot"
	"github.com/siherrmann/braingraph/helper"
)

// defaultEmbeddingModel produces 384-dimensional sentence embeddings,
// used for phrase near-duplicate grouping and keyword similarity search.
const defaultEmbeddingModel = "sentence-transformers/all-MiniLM-L6-v2"

// DefaultEmbedder creates an EmbedFunc over the default sentence
// transformer model, downloading it on first use.
func DefaultEmbedder() (EmbedFunc, error) {
	return NewHugotEmbedder(defaultEmbeddingModel)
}

// NewHugotEmbedder creates an EmbedFunc backed by a hugot
// feature-extraction pipeline over the given model.
func NewHugotEmbedder(modelName string) (EmbedFunc, error) {
	modelPath, err := helper.PrepareModel(modelName, "onnx/model.onnx")
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create hugot session: %w", err)
	}

	config := hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "phrase-embedder",
	}
	phrasePipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		if destroyErr := session.Destroy(); destroyErr != nil {
			return nil, fmt.Errorf("failed to create phrase pipeline: %w (cleanup error: %v)", err, destroyErr)
		}
		return nil, fmt.Errorf("failed to create phrase pipeline: %w", err)
	}

	return func(text string) ([]float32, error) {
		result, err := phrasePipeline.RunPipeline([]string{text})
		if err != nil {
			return nil, fmt.Errorf("failed to generate embedding: %w", err)
		}
		if len(result.Embeddings) == 0 {
			return nil, fmt.Errorf("no embedding generated for %q", text)
		}
		return result.Embeddings[0], nil
	}, nil
}
