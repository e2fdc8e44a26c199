// Package score computes phrase importance over chunk collections and
// groups near-duplicate phrases by embedding similarity.
package score

import (
	"fmt"

	tfidf "github.com/rioloc/tfidf-go"
)

// TFIDF holds term scores over one chunk collection, one document per
// chunk. Vocabulary order follows first appearance across the collection.
type TFIDF struct {
	vocabulary []string
	index      map[string]int
	matrix     [][]float64
}

// NewTFIDF computes smoothed TF-IDF over the given documents.
func NewTFIDF(docs [][]string) (*TFIDF, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("empty document collection")
	}

	index := make(map[string]int)
	var vocabulary []string
	for _, doc := range docs {
		for _, term := range doc {
			if _, ok := index[term]; !ok {
				index[term] = len(vocabulary)
				vocabulary = append(vocabulary, term)
			}
		}
	}
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("empty vocabulary")
	}

	tfMatrix := tfidf.Tf(vocabulary, docs)
	idfVector := tfidf.Idf(vocabulary, docs, true)

	vectorizer := tfidf.NewTfIdfVectorizer()
	matrix, err := vectorizer.TfIdf(tfMatrix, idfVector)
	if err != nil {
		return nil, fmt.Errorf("vectorize tfidf: %w", err)
	}

	return &TFIDF{
		vocabulary: vocabulary,
		index:      index,
		matrix:     matrix,
	}, nil
}

// Score returns the TF-IDF weight of a term within a document, 0 for
// unknown terms.
func (t *TFIDF) Score(term string, doc int) float64 {
	if doc < 0 || doc >= len(t.matrix) {
		return 0
	}
	idx, ok := t.index[term]
	if !ok {
		return 0
	}
	return t.matrix[doc][idx]
}

// TopTerm returns the highest-scored term of a document. Equal scores are
// broken in favor of the earlier-appearing term.
func (t *TFIDF) TopTerm(doc int) string {
	if doc < 0 || doc >= len(t.matrix) {
		return ""
	}

	best := ""
	bestScore := 0.0
	for i, term := range t.vocabulary {
		s := t.matrix[doc][i]
		if s > bestScore {
			bestScore = s
			best = term
		}
	}
	return best
}
