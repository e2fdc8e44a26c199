package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/siherrmann/braingraph/core/phrase"
	"github.com/siherrmann/braingraph/core/text"
	"github.com/siherrmann/braingraph/model"
)

// Orchestrator drives the whole pipeline for single source jobs:
// segmentation, tokenization, recursive chunking and batching. Persistence
// is left to the caller so the merge can be serialized per brain.
type Orchestrator struct {
	pipeline *Pipeline
	log      *slog.Logger
}

// NewOrchestrator creates an orchestrator over the given pipeline.
func NewOrchestrator(p *Pipeline, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		pipeline: p,
		log:      logger,
	}
}

// Result carries the emitted batch and the report of one processed source.
type Result struct {
	Batch  *Batch
	Report *model.IngestReport
}

// Process runs one (source_id, brain_id, text) job and returns the batch
// of nodes and edges to merge. Empty or invalid input is rejected; input
// whose segmentation filters out every fragment yields an empty batch and
// a zero-emit report.
func (o *Orchestrator) Process(ctx context.Context, sourceID, brainID, rawText string) (*Result, error) {
	if strings.TrimSpace(rawText) == "" || !utf8.ValidString(rawText) {
		return nil, model.ErrInputRejected
	}

	jobID := uuid.NewString()
	start := time.Now()
	report := &model.IngestReport{JobID: jobID}
	batch := NewBatch()

	raw := text.SplitSentences(rawText)
	if len(raw) == 0 {
		o.log.Warn("segmentation produced no sentences",
			slog.String("source_id", sourceID),
			slog.String("job_id", jobID))
		report.DurationMS = time.Since(start).Milliseconds()
		return &Result{Batch: batch, Report: report}, nil
	}

	sentences := make([]*model.Sentence, 0, len(raw))
	for i, s := range raw {
		lang := text.DetectLanguage(s)
		sentences = append(sentences, &model.Sentence{
			Index:  i,
			Text:   s,
			Lang:   lang,
			Tokens: phrase.Extract(s, lang),
		})
	}

	chunker := NewChunker(o.pipeline, o.log, sourceID, brainID, batch)
	rootKeyword, err := chunker.Run(ctx, sentences)
	if err != nil {
		return nil, err
	}

	report.RootKeyword = rootKeyword
	report.NodesCreated = len(batch.Nodes)
	report.EdgesCreated = len(batch.Edges)
	report.Chunks = chunker.Chunks()
	report.DurationMS = time.Since(start).Milliseconds()

	o.log.Info("processed source",
		slog.String("source_id", sourceID),
		slog.String("brain_id", brainID),
		slog.String("job_id", jobID),
		slog.Int("sentences", len(sentences)),
		slog.Int("nodes", report.NodesCreated),
		slog.Int("edges", report.EdgesCreated),
		slog.Int("chunks", report.Chunks))

	return &Result{Batch: batch, Report: report}, nil
}
