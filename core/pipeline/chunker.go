package pipeline

import (
	"context"
	"log/slog"
	"sort"

	"github.com/siherrmann/braingraph/core/score"
	"github.com/siherrmann/braingraph/core/topic"
	"github.com/siherrmann/braingraph/model"
	"gonum.org/v1/gonum/mat"
)

// Chunk termination flags. A chunk is either dropped, finalized for node
// generation, flat-split without recursion, or split recursively.
const (
	flagDrop     = 1
	flagFinalize = 2
	flagFlat     = 3
	flagRecurse  = -1
)

// Chunker performs the top-down recursive split of a document into a
// chunk/keyword tree, emitting hierarchy nodes and edges into the batch.
// The already-made cache is threaded through the whole recursion and
// prevents duplicate node emission within one document; names are
// normalized by stripping the trailing hierarchy-root marker.
type Chunker struct {
	config   *model.PipelineConfig
	embedder EmbedFunc
	log      *slog.Logger
	sourceID string
	brainID  string
	batch    *Batch

	alreadyMade map[string]struct{}
	chunks      int
}

// NewChunker creates a chunker for one document emitting into batch.
func NewChunker(p *Pipeline, logger *slog.Logger, sourceID, brainID string, batch *Batch) *Chunker {
	return &Chunker{
		config:      p.Config,
		embedder:    p.Embedder,
		log:         logger,
		sourceID:    sourceID,
		brainID:     brainID,
		batch:       batch,
		alreadyMade: make(map[string]struct{}),
	}
}

// Chunks returns the number of finalized chunks so far.
func (c *Chunker) Chunks() int {
	return c.chunks
}

// Run fits the root topic model, emits the hierarchy-root keyword node and
// recurses over the whole document. It returns the root keyword name, or
// "" when the document could not seed a topic model (no-op result).
func (c *Chunker) Run(ctx context.Context, sentences []*model.Sentence) (string, error) {
	if ctx.Err() != nil {
		return "", model.ErrCancelled
	}

	root := &model.Chunk{Sentences: sentences}

	fit := topic.Fit(ctx, root.TokenLists(), c.config.Topic)
	if fit.Failed() || fit.TopKeyword == "" {
		c.log.Warn("root topic model failed, skipping source",
			slog.String("source_id", c.sourceID),
			slog.Int("depth", 0),
			slog.String("fallback", "no-op"))
		return "", nil
	}

	rootName := fit.TopKeyword + "*"
	c.batch.AddNode(&model.KeywordNode{
		Name:              rootName,
		Label:             rootName,
		BrainID:           c.brainID,
		SourceID:          c.sourceID,
		Descriptions:      model.RecordList{},
		OriginalSentences: model.RecordList{},
	})
	c.alreadyMade[fit.TopKeyword] = struct{}{}

	threshold := topic.UpperTriangularPercentile(fit.Similarity, c.config.Chunk.InitialPercentile)

	err := c.recurse(ctx, root, rootName, threshold, 0, fit, nil, 0)
	if err != nil {
		return "", err
	}
	return rootName, nil
}

// classify decides how to treat a chunk at the given depth. A depth-0
// chunk below the size floors is finalized rather than dropped, otherwise
// the whole document would be unprocessable.
func (c *Chunker) classify(chunk *model.Chunk, fit *topic.Result, depth int) int {
	cc := c.config.Chunk
	below := chunk.Len() <= cc.MinSentences || chunk.TokenCount() <= cc.MinTokens
	if below && depth > 0 {
		return flagDrop
	}
	if fit.Failed() || below || depth >= cc.MaxDepth {
		return flagFinalize
	}
	return flagRecurse
}

// recurse processes one chunk. The fit parameter carries the topic model
// already computed for this chunk (only at depth 0); every other level
// fits its own model so a fit failure stays local to its subtree.
func (c *Chunker) recurse(ctx context.Context, chunk *model.Chunk, topKeyword string, threshold float64, depth int, fit *topic.Result, tf *score.TFIDF, doc int) error {
	if ctx.Err() != nil {
		return model.ErrCancelled
	}

	if fit == nil {
		fit = topic.Fit(ctx, chunk.TokenLists(), c.config.Topic)
	}

	switch c.classify(chunk, fit, depth) {
	case flagDrop:
		return nil
	case flagFinalize:
		if fit.Failed() {
			c.log.Warn("topic fit failed, treating chunk as terminal",
				slog.String("source_id", c.sourceID),
				slog.Int("depth", depth),
				slog.String("fallback", "finalize"))
		}
		return c.finalize(chunk, topKeyword, tf, doc)
	}

	groups := groupAdjacent(chunk, fit.Similarity, &threshold, c.config.Chunk.MaxGroups)
	if len(groups) <= 1 {
		// Borderline non-splittable at the current threshold.
		return c.flatSplit(chunk, topKeyword, depth)
	}

	docs := make([][]string, len(groups))
	for i, g := range groups {
		docs[i] = flattenTokens(g)
	}
	subTF, err := score.NewTFIDF(docs)
	if err != nil {
		c.log.Warn("tfidf over sub-chunks failed, treating chunk as terminal",
			slog.String("source_id", c.sourceID),
			slog.Int("depth", depth),
			slog.String("fallback", "finalize"))
		return c.finalize(chunk, topKeyword, tf, doc)
	}

	for i, g := range groups {
		parent := topKeyword
		keyword := subTF.TopTerm(i)
		if keyword != "" && keyword != model.BaseKeyword(topKeyword) {
			if _, dup := c.alreadyMade[keyword]; !dup {
				c.batch.AddNode(&model.KeywordNode{
					Name:              keyword,
					Label:             keyword,
					BrainID:           c.brainID,
					SourceID:          c.sourceID,
					Descriptions:      model.RecordList{},
					OriginalSentences: model.RecordList{},
				})
				c.alreadyMade[keyword] = struct{}{}
			}
			c.batch.AddEdge(&model.Edge{
				Source:   topKeyword,
				Target:   keyword,
				Relation: c.relationFromSentences(g.Sentences, keyword),
				BrainID:  c.brainID,
				SourceID: c.sourceID,
			})
			parent = keyword
		}

		err := c.recurse(ctx, g, parent, threshold*c.config.Chunk.ThresholdGrowth, depth+1, nil, subTF, i)
		if err != nil {
			return err
		}
	}
	return nil
}

// flatSplit is the non-recursive fallback for chunks a split cannot
// separate: fixed windows under the current keyword, each finalized.
func (c *Chunker) flatSplit(chunk *model.Chunk, topKeyword string, depth int) error {
	c.log.Warn("chunk not splittable at current threshold, flat chunking",
		slog.String("source_id", c.sourceID),
		slog.Int("depth", depth),
		slog.String("fallback", "flat"))

	windowSize := c.config.Chunk.MaxGroups
	var windows []*model.Chunk
	for start := 0; start < chunk.Len(); start += windowSize {
		end := start + windowSize
		if end > chunk.Len() {
			end = chunk.Len()
		}
		windows = append(windows, &model.Chunk{Sentences: chunk.Sentences[start:end]})
	}

	docs := make([][]string, len(windows))
	for i, w := range windows {
		docs[i] = flattenTokens(w)
	}
	tf, err := score.NewTFIDF(docs)
	if err != nil {
		return c.finalize(chunk, topKeyword, nil, 0)
	}

	for i, w := range windows {
		parent := topKeyword
		keyword := tf.TopTerm(i)
		if keyword != "" && keyword != model.BaseKeyword(topKeyword) {
			if _, dup := c.alreadyMade[keyword]; !dup {
				c.batch.AddNode(&model.KeywordNode{
					Name:              keyword,
					Label:             keyword,
					BrainID:           c.brainID,
					SourceID:          c.sourceID,
					Descriptions:      model.RecordList{},
					OriginalSentences: model.RecordList{},
				})
				c.alreadyMade[keyword] = struct{}{}
			}
			c.batch.AddEdge(&model.Edge{
				Source:   topKeyword,
				Target:   keyword,
				Relation: c.relationFromSentences(w.Sentences, keyword),
				BrainID:  c.brainID,
				SourceID: c.sourceID,
			})
			parent = keyword
		}
		if err := c.finalize(w, parent, tf, i); err != nil {
			return err
		}
	}
	return nil
}

// groupAdjacent sweeps the chunk left to right, extending a group while
// the adjacent similarity meets the threshold. When the chunk holds more
// sentences than maxGroups, the threshold is first clamped so the sweep
// cannot produce more than maxGroups groups. The clamp is written back so
// descendants inherit it.
func groupAdjacent(chunk *model.Chunk, sim *mat.SymDense, threshold *float64, maxGroups int) []*model.Chunk {
	n := chunk.Len()
	if n <= 1 || sim == nil {
		return []*model.Chunk{chunk}
	}

	if n > maxGroups {
		adjacent := make([]float64, 0, n-1)
		for j := 1; j < n; j++ {
			adjacent = append(adjacent, sim.At(j-1, j))
		}
		sort.Float64s(adjacent)
		if clamp := adjacent[maxGroups-2]; clamp < *threshold {
			*threshold = clamp
		}
	}

	var groups []*model.Chunk
	start := 0
	for j := 1; j < n; j++ {
		if sim.At(j-1, j) >= *threshold {
			continue
		}
		groups = append(groups, &model.Chunk{Sentences: chunk.Sentences[start:j]})
		start = j
	}
	groups = append(groups, &model.Chunk{Sentences: chunk.Sentences[start:]})

	return groups
}

// flattenTokens concatenates the chunk's per-sentence token lists.
func flattenTokens(chunk *model.Chunk) []string {
	tokens := make([]string, 0, chunk.TokenCount())
	for _, s := range chunk.Sentences {
		tokens = append(tokens, s.Tokens...)
	}
	return tokens
}
