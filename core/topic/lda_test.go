package topic

import (
	"context"
	"testing"
	"time"

	"github.com/siherrmann/braingraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTopicConfig() model.TopicConfig {
	return model.DefaultPipelineConfig().Topic
}

var testCorpus = [][]string{
	{"graph", "node", "edge"},
	{"graph", "database", "postgres"},
	{"topic", "model", "sentence"},
	{"sentence", "chunk", "keyword"},
	{"keyword", "node", "graph"},
}

func TestLDAFit(t *testing.T) {
	t.Run("Valid fit over small corpus", func(t *testing.T) {
		dict := NewDictionary(testCorpus)
		docs := make([][]int, len(testCorpus))
		for i, doc := range testCorpus {
			docs[i] = dict.BagOfWords(doc)
		}

		lda := NewLDA(testTopicConfig(), dict, docs)
		err := lda.Fit(context.Background())

		require.NoError(t, err)
		assert.NotEmpty(t, lda.TopTerm(0), "Expected a top term for topic 0")

		for i := range docs {
			vector := lda.DocumentTopics(i)
			require.Equal(t, 5, len(vector), "Expected a dense vector per topic")
			sum := 0.0
			for _, v := range vector {
				assert.GreaterOrEqual(t, v, 0.0)
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-9, "Expected topic probabilities to sum to one")
		}
	})

	t.Run("Deterministic under fixed seed", func(t *testing.T) {
		run := func() [][]float64 {
			dict := NewDictionary(testCorpus)
			docs := make([][]int, len(testCorpus))
			for i, doc := range testCorpus {
				docs[i] = dict.BagOfWords(doc)
			}
			lda := NewLDA(testTopicConfig(), dict, docs)
			require.NoError(t, lda.Fit(context.Background()))

			vectors := make([][]float64, len(docs))
			for i := range docs {
				vectors[i] = lda.DocumentTopics(i)
			}
			return vectors
		}

		assert.Equal(t, run(), run(), "Expected identical topic vectors for identical seed")
	})

	t.Run("Degenerate corpus fails", func(t *testing.T) {
		dict := NewDictionary([][]string{{}, {}})
		lda := NewLDA(testTopicConfig(), dict, [][]int{{}, {}})

		err := lda.Fit(context.Background())
		assert.ErrorIs(t, err, ErrDegenerateCorpus)
	})

	t.Run("Expired context is a fit failure", func(t *testing.T) {
		dict := NewDictionary(testCorpus)
		docs := make([][]int, len(testCorpus))
		for i, doc := range testCorpus {
			docs[i] = dict.BagOfWords(doc)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		lda := NewLDA(testTopicConfig(), dict, docs)
		assert.Error(t, lda.Fit(ctx))
	})
}

func TestFit(t *testing.T) {
	t.Run("Valid fit result", func(t *testing.T) {
		result := Fit(context.Background(), testCorpus, testTopicConfig())

		require.False(t, result.Failed())
		assert.NotEmpty(t, result.TopKeyword)
		assert.Equal(t, len(testCorpus), len(result.Vectors))
		assert.Equal(t, len(testCorpus), result.Similarity.SymmetricDim())
	})

	t.Run("Empty vocabulary recovers into failed result", func(t *testing.T) {
		result := Fit(context.Background(), [][]string{{}, {}}, testTopicConfig())

		assert.True(t, result.Failed())
		assert.Empty(t, result.TopKeyword)
	})

	t.Run("Immediate timeout recovers into failed result", func(t *testing.T) {
		config := testTopicConfig()
		config.FitTimeout = time.Nanosecond

		result := Fit(context.Background(), testCorpus, config)
		assert.True(t, result.Failed())
	})

	t.Run("Sentence without tokens gets a zero vector", func(t *testing.T) {
		corpus := [][]string{{"graph", "node"}, {}, {"graph", "edge"}}
		result := Fit(context.Background(), corpus, testTopicConfig())

		require.False(t, result.Failed())
		assert.Equal(t, []float64{0, 0, 0, 0, 0}, result.Vectors[1])
	})
}

func TestSimilarityMatrix(t *testing.T) {
	t.Run("Diagonal is one and matrix is symmetric", func(t *testing.T) {
		vectors := [][]float64{
			{1, 0, 0},
			{0.5, 0.5, 0},
			{0, 0, 1},
		}
		s := SimilarityMatrix(vectors)

		require.NotNil(t, s)
		for i := 0; i < 3; i++ {
			assert.InDelta(t, 1.0, s.At(i, i), 1e-9)
			for j := 0; j < 3; j++ {
				assert.InDelta(t, s.At(i, j), s.At(j, i), 1e-12)
			}
		}
	})

	t.Run("Empty input yields nil matrix", func(t *testing.T) {
		assert.Nil(t, SimilarityMatrix(nil))
	})
}

func TestCosine(t *testing.T) {
	t.Run("Identical vectors", func(t *testing.T) {
		assert.InDelta(t, 1.0, Cosine([]float64{1, 2, 3}, []float64{1, 2, 3}), 1e-12)
	})

	t.Run("Orthogonal vectors", func(t *testing.T) {
		assert.InDelta(t, 0.0, Cosine([]float64{1, 0}, []float64{0, 1}), 1e-12)
	})

	t.Run("Zero vector", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine([]float64{0, 0}, []float64{1, 1}))
	})

	t.Run("Length mismatch", func(t *testing.T) {
		assert.Equal(t, 0.0, Cosine([]float64{1}, []float64{1, 2}))
	})
}

func TestUpperTriangularPercentile(t *testing.T) {
	t.Run("Quartile over known entries", func(t *testing.T) {
		vectors := [][]float64{
			{1, 0},
			{1, 0},
			{0, 1},
		}
		s := SimilarityMatrix(vectors)

		p := UpperTriangularPercentile(s, 0.25)
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	})

	t.Run("Single row yields zero", func(t *testing.T) {
		s := SimilarityMatrix([][]float64{{1, 0}})
		assert.Equal(t, 0.0, UpperTriangularPercentile(s, 0.25))
	})

	t.Run("Nil matrix yields zero", func(t *testing.T) {
		assert.Equal(t, 0.0, UpperTriangularPercentile(nil, 0.25))
	})
}
