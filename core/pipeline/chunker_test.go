package pipeline

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/siherrmann/braingraph/core/topic"
	"github.com/siherrmann/braingraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testChunker(t *testing.T) *Chunker {
	t.Helper()
	return NewChunker(NewPipeline(nil, nil), testLogger(), "source-1", "brain-1", NewBatch())
}

// testSentences builds sentences carrying the given token lists as their
// tokens.
func testSentences(tokenLists ...[]string) []*model.Sentence {
	sentences := make([]*model.Sentence, len(tokenLists))
	for i, tokens := range tokenLists {
		sentences[i] = &model.Sentence{
			Index:  i,
			Text:   "sentence",
			Lang:   model.LanguageEnglish,
			Tokens: tokens,
		}
	}
	return sentences
}

// adjacencyMatrix builds a similarity matrix with the given adjacent
// similarities; non-adjacent entries are zero.
func adjacencyMatrix(adjacent []float64) *mat.SymDense {
	n := len(adjacent) + 1
	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		s.SetSym(i, i, 1)
	}
	for j, sim := range adjacent {
		s.SetSym(j, j+1, sim)
	}
	return s
}

func TestGroupAdjacent(t *testing.T) {
	t.Run("Groups break where adjacent similarity falls below threshold", func(t *testing.T) {
		chunk := &model.Chunk{Sentences: testSentences(
			[]string{"a"}, []string{"b"}, []string{"c"}, []string{"d"},
		)}
		sim := adjacencyMatrix([]float64{0.9, 0.1, 0.9})
		threshold := 0.5

		groups := groupAdjacent(chunk, sim, &threshold, 10)

		require.Equal(t, 2, len(groups))
		assert.Equal(t, []int{0, 1}, groups[0].Indices())
		assert.Equal(t, []int{2, 3}, groups[1].Indices())
	})

	t.Run("Child chunks partition the parent preserving order", func(t *testing.T) {
		chunk := &model.Chunk{Sentences: testSentences(
			[]string{"a"}, []string{"b"}, []string{"c"}, []string{"d"}, []string{"e"},
		)}
		sim := adjacencyMatrix([]float64{0.2, 0.9, 0.2, 0.9})
		threshold := 0.5

		groups := groupAdjacent(chunk, sim, &threshold, 10)

		var union []int
		for _, g := range groups {
			require.NotEmpty(t, g.Sentences, "Expected non-empty groups")
			union = append(union, g.Indices()...)
		}
		assert.Equal(t, chunk.Indices(), union, "Expected disjoint union equal to the parent in order")
	})

	t.Run("Branching is bounded for large chunks", func(t *testing.T) {
		adjacent := make([]float64, 24)
		for i := range adjacent {
			adjacent[i] = float64(i+1) / 100.0
		}
		chunk := &model.Chunk{Sentences: testSentences(make([][]string, 25)...)}
		sim := adjacencyMatrix(adjacent)
		threshold := 1.0

		groups := groupAdjacent(chunk, sim, &threshold, 10)

		assert.LessOrEqual(t, len(groups), 10, "Expected no more than ten groups per split")
		assert.InDelta(t, 0.09, threshold, 1e-9, "Expected threshold clamped to the ninth smallest adjacency")
	})

	t.Run("Single sentence stays one group", func(t *testing.T) {
		chunk := &model.Chunk{Sentences: testSentences([]string{"a"})}
		threshold := 0.5

		groups := groupAdjacent(chunk, nil, &threshold, 10)
		require.Equal(t, 1, len(groups))
	})
}

func TestClassify(t *testing.T) {
	config := model.DefaultPipelineConfig()
	okFit := topic.Fit(context.Background(), [][]string{
		{"graph", "node"}, {"graph", "edge"}, {"topic", "model"}, {"chunk", "tree"},
		{"keyword", "score"}, {"merge", "batch"}, {"store", "brain"}, {"vector", "cosine"},
		{"phrase", "group"}, {"source", "ingest"}, {"label", "relation"},
	}, config.Topic)
	failedFit := topic.Fit(context.Background(), [][]string{{}, {}}, config.Topic)

	bigChunk := &model.Chunk{Sentences: testSentences(
		[]string{"graph", "node"}, []string{"graph", "edge"}, []string{"topic", "model"},
		[]string{"chunk", "tree"}, []string{"keyword", "score"}, []string{"merge", "batch"},
		[]string{"store", "brain"}, []string{"vector", "cosine"}, []string{"phrase", "group"},
		[]string{"source", "ingest"}, []string{"label", "relation"},
	)}
	smallChunk := &model.Chunk{Sentences: testSentences([]string{"graph"}, []string{"node"})}

	t.Run("Small chunk below floors is dropped past depth zero", func(t *testing.T) {
		assert.Equal(t, flagDrop, testChunker(t).classify(smallChunk, okFit, 1))
	})

	t.Run("Small chunk at depth zero is finalized", func(t *testing.T) {
		assert.Equal(t, flagFinalize, testChunker(t).classify(smallChunk, okFit, 0))
	})

	t.Run("Failed fit finalizes the chunk", func(t *testing.T) {
		assert.Equal(t, flagFinalize, testChunker(t).classify(bigChunk, failedFit, 1))
	})

	t.Run("Depth cap finalizes the chunk", func(t *testing.T) {
		assert.Equal(t, flagFinalize, testChunker(t).classify(bigChunk, okFit, config.Chunk.MaxDepth))
	})

	t.Run("Large healthy chunk recurses", func(t *testing.T) {
		assert.Equal(t, flagRecurse, testChunker(t).classify(bigChunk, okFit, 1))
	})
}

func TestChunkerRun(t *testing.T) {
	t.Run("Root node carries the hierarchy marker", func(t *testing.T) {
		batch := NewBatch()
		chunker := NewChunker(NewPipeline(nil, nil), testLogger(), "source-1", "brain-1", batch)

		sentences := testSentences(
			[]string{"alpha beta gamma", "alpha"},
			[]string{"alpha", "letter"},
			[]string{"beta", "letter"},
		)

		root, err := chunker.Run(context.Background(), sentences)

		require.NoError(t, err)
		require.NotEmpty(t, root)
		assert.Equal(t, "*", root[len(root)-1:], "Expected trailing hierarchy marker")
		assert.True(t, batch.HasNode(root), "Expected root node in batch")
		assert.GreaterOrEqual(t, chunker.Chunks(), 1, "Expected the whole document finalized as one chunk")
		assert.NotEmpty(t, batch.Edges, "Expected at least one edge from the root")
	})

	t.Run("Node names are unique after stripping the marker", func(t *testing.T) {
		batch := NewBatch()
		chunker := NewChunker(NewPipeline(nil, nil), testLogger(), "source-1", "brain-1", batch)

		sentences := testSentences(
			[]string{"graph", "node", "pipeline"},
			[]string{"graph", "edge", "pipeline"},
			[]string{"topic", "model", "graph"},
			[]string{"chunk", "tree", "split"},
			[]string{"keyword", "score", "chunk"},
			[]string{"merge", "batch", "store"},
			[]string{"store", "brain", "merge"},
			[]string{"vector", "cosine", "phrase"},
		)

		_, err := chunker.Run(context.Background(), sentences)
		require.NoError(t, err)

		seen := map[string]int{}
		for _, node := range batch.Nodes {
			seen[model.BaseKeyword(node.Name)]++
		}
		for name, count := range seen {
			assert.Equal(t, 1, count, "Expected %s at most once in the node stream", name)
		}
	})

	t.Run("Token-free document is a no-op", func(t *testing.T) {
		batch := NewBatch()
		chunker := NewChunker(NewPipeline(nil, nil), testLogger(), "source-1", "brain-1", batch)

		root, err := chunker.Run(context.Background(), testSentences([]string{}, []string{}))

		require.NoError(t, err)
		assert.Empty(t, root)
		assert.Empty(t, batch.Nodes)
		assert.Empty(t, batch.Edges)
	})

	t.Run("Cancelled context aborts the recursion", func(t *testing.T) {
		batch := NewBatch()
		chunker := NewChunker(NewPipeline(nil, nil), testLogger(), "source-1", "brain-1", batch)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := chunker.Run(ctx, testSentences(
			[]string{"graph", "node"},
			[]string{"graph", "edge"},
			[]string{"topic", "model"},
			[]string{"chunk", "tree"},
		))

		assert.ErrorIs(t, err, model.ErrCancelled)
	})
}
