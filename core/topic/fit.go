package topic

import (
	"context"

	"github.com/siherrmann/braingraph/model"
	"gonum.org/v1/gonum/mat"
)

// Result carries the outcome of one topic model fit over a chunk.
// A failed fit has an empty TopKeyword and a nil Similarity; the caller
// must treat the chunk as terminal in that case.
type Result struct {
	TopKeyword string
	Similarity *mat.SymDense
	Vectors    [][]float64
}

// Failed reports whether the fit produced no usable model.
func (r *Result) Failed() bool {
	return r.Similarity == nil
}

// Fit builds a dictionary and bag-of-words corpus over the chunk's
// per-sentence token lists, fits the topic model under the configured
// wall-clock bound, and derives the per-sentence topic vectors, their
// cosine similarity matrix and the top term of topic 0.
// Fit failures (empty vocabulary, degenerate corpus, timeout) are
// recovered into a failed Result, never an error.
func Fit(ctx context.Context, tokenLists [][]string, config model.TopicConfig) *Result {
	dict := NewDictionary(tokenLists)
	docs := make([][]int, len(tokenLists))
	for i, tokens := range tokenLists {
		docs[i] = dict.BagOfWords(tokens)
	}

	lda := NewLDA(config, dict, docs)

	fitCtx := ctx
	if config.FitTimeout > 0 {
		var cancel context.CancelFunc
		fitCtx, cancel = context.WithTimeout(ctx, config.FitTimeout)
		defer cancel()
	}

	if err := lda.Fit(fitCtx); err != nil {
		return &Result{}
	}

	vectors := make([][]float64, len(docs))
	for i := range docs {
		vectors[i] = lda.DocumentTopics(i)
	}

	return &Result{
		TopKeyword: lda.TopTerm(0),
		Similarity: SimilarityMatrix(vectors),
		Vectors:    vectors,
	}
}
