package topic

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Cosine computes the cosine similarity between two dense vectors.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	dot := floats.Dot(a, b)
	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (normA * normB)
}

// SimilarityMatrix builds the symmetric pairwise cosine matrix over the
// given vectors. The diagonal is 1 by construction.
func SimilarityMatrix(vectors [][]float64) *mat.SymDense {
	n := len(vectors)
	if n == 0 {
		return nil
	}

	s := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		s.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			s.SetSym(i, j, Cosine(vectors[i], vectors[j]))
		}
	}
	return s
}

// UpperTriangularPercentile returns the q-quantile of the strict upper
// triangle of s. Returns 0 when the matrix has fewer than two rows.
func UpperTriangularPercentile(s *mat.SymDense, q float64) float64 {
	if s == nil {
		return 0
	}
	n := s.SymmetricDim()
	if n < 2 {
		return 0
	}

	entries := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			entries = append(entries, s.At(i, j))
		}
	}
	sort.Float64s(entries)

	return stat.Quantile(q, stat.Empirical, entries, nil)
}
