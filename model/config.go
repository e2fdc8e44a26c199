package model

import (
	"fmt"
	"time"
)

// TopicConfig holds the topic model hyperparameters. The fixed seed is a
// contract: ingestion of the same text must produce the same graph.
type TopicConfig struct {
	Topics     int           `json:"topics"`
	Passes     int           `json:"passes"`
	Iterations int           `json:"iterations"`
	Alpha      float64       `json:"alpha"`
	Eta        float64       `json:"eta"`
	Seed       int64         `json:"seed"`
	FitTimeout time.Duration `json:"fit_timeout"`
}

// ChunkConfig bounds the recursive chunker.
type ChunkConfig struct {
	// MinSentences and MinTokens are the floors at or below which a chunk
	// past depth 0 is dropped without emitting nodes or edges; a whole
	// document at or below them is finalized instead.
	MinSentences int `json:"min_sentences"`
	MinTokens    int `json:"min_tokens"`
	// MaxGroups caps the number of sub-chunks a single split may produce.
	MaxGroups int `json:"max_groups"`
	// ThresholdGrowth scales the similarity threshold per recursion depth.
	ThresholdGrowth float64 `json:"threshold_growth"`
	// InitialPercentile seeds the threshold from the root similarity matrix.
	InitialPercentile float64 `json:"initial_percentile"`
	MaxDepth          int     `json:"max_depth"`
}

// ScoreConfig weights phrase scoring and bounds node emission per chunk.
type ScoreConfig struct {
	SentenceCountWeight float64 `json:"sentence_count_weight"`
	LengthWeight        float64 `json:"length_weight"`
	TFIDFWeight         float64 `json:"tfidf_weight"`
	// GroupThreshold is the embedding cosine at or above which two phrases
	// are considered near-duplicates.
	GroupThreshold float64 `json:"group_threshold"`
	// MaxNodesPerChunk caps new top-level phrase nodes per finalized chunk.
	MaxNodesPerChunk int `json:"max_nodes_per_chunk"`
	// MaxChildrenPerGroup caps child nodes emitted under a representative.
	MaxChildrenPerGroup int `json:"max_children_per_group"`
	// MaxRelationLength bounds relation label length in runes.
	MaxRelationLength int `json:"max_relation_length"`
}

// PipelineConfig is the single configuration block for one ingestion
// pipeline. All hyperparameters live here so callers can pin determinism.
type PipelineConfig struct {
	Topic TopicConfig `json:"topic"`
	Chunk ChunkConfig `json:"chunk"`
	Score ScoreConfig `json:"score"`
	// MergeRetries is the number of additional merge attempts on transient
	// persistence errors.
	MergeRetries int `json:"merge_retries"`
}

// DefaultPipelineConfig returns the default configuration.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Topic: TopicConfig{
			Topics:     5,
			Passes:     20,
			Iterations: 400,
			Alpha:      0.1,
			Eta:        0.01,
			Seed:       42,
			FitTimeout: 60 * time.Second,
		},
		Chunk: ChunkConfig{
			MinSentences:      3,
			MinTokens:         20,
			MaxGroups:         10,
			ThresholdGrowth:   1.1,
			InitialPercentile: 0.25,
			MaxDepth:          20,
		},
		Score: ScoreConfig{
			SentenceCountWeight: 1.0,
			LengthWeight:        0.1,
			TFIDFWeight:         2.0,
			GroupThreshold:      0.85,
			MaxNodesPerChunk:    5,
			MaxChildrenPerGroup: 5,
			MaxRelationLength:   80,
		},
		MergeRetries: 2,
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *PipelineConfig) Validate() error {
	if c.Topic.Topics <= 0 {
		return fmt.Errorf("topics must be positive, got %d", c.Topic.Topics)
	}
	if c.Topic.Passes <= 0 || c.Topic.Iterations <= 0 {
		return fmt.Errorf("passes and iterations must be positive")
	}
	if c.Chunk.ThresholdGrowth <= 1.0 {
		return fmt.Errorf("threshold growth must be greater than 1.0, got %f", c.Chunk.ThresholdGrowth)
	}
	if c.Chunk.InitialPercentile <= 0 || c.Chunk.InitialPercentile >= 1 {
		return fmt.Errorf("initial percentile must be in (0, 1), got %f", c.Chunk.InitialPercentile)
	}
	if c.Chunk.MaxGroups < 2 {
		return fmt.Errorf("max groups must be at least 2, got %d", c.Chunk.MaxGroups)
	}
	if c.Score.MaxNodesPerChunk <= 0 {
		return fmt.Errorf("max nodes per chunk must be positive, got %d", c.Score.MaxNodesPerChunk)
	}
	return nil
}
