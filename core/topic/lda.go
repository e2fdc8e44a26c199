package topic

import (
	"context"
	"errors"
	"math"
	"math/rand"

	"github.com/siherrmann/braingraph/model"
)

// ErrDegenerateCorpus is returned when the corpus has no usable vocabulary.
var ErrDegenerateCorpus = errors.New("degenerate corpus")

// LDA is a collapsed Gibbs sampler for latent Dirichlet allocation.
// The sampler is seeded deterministically; two fits over the same corpus
// with the same configuration produce identical assignments.
type LDA struct {
	config model.TopicConfig
	dict   *Dictionary
	docs   [][]int

	assignments [][]int
	docTopic    [][]int
	topicWord   [][]int
	topicTotal  []int
	fitted      bool
}

// NewLDA prepares a sampler over the bag-of-words corpus.
func NewLDA(config model.TopicConfig, dict *Dictionary, docs [][]int) *LDA {
	return &LDA{
		config: config,
		dict:   dict,
		docs:   docs,
	}
}

// Fit runs the sampler. The corpus is swept in blocks derived from the
// configured passes, with a perplexity-based early stop between blocks.
// The context deadline is honored between sweeps; an expired deadline is a
// fit failure.
func (l *LDA) Fit(ctx context.Context) error {
	total := 0
	for _, doc := range l.docs {
		total += len(doc)
	}
	if l.dict.Len() == 0 || total == 0 {
		return ErrDegenerateCorpus
	}

	k := l.config.Topics
	v := l.dict.Len()
	rnd := rand.New(rand.NewSource(l.config.Seed))

	l.docTopic = make([][]int, len(l.docs))
	l.topicWord = make([][]int, k)
	l.topicTotal = make([]int, k)
	l.assignments = make([][]int, len(l.docs))
	for t := 0; t < k; t++ {
		l.topicWord[t] = make([]int, v)
	}

	// Random initial assignment.
	for d, doc := range l.docs {
		l.docTopic[d] = make([]int, k)
		l.assignments[d] = make([]int, len(doc))
		for i, w := range doc {
			t := rnd.Intn(k)
			l.assignments[d][i] = t
			l.docTopic[d][t]++
			l.topicWord[t][w]++
			l.topicTotal[t]++
		}
	}

	sweepsPerBlock := l.config.Iterations / l.config.Passes
	if sweepsPerBlock < 1 {
		sweepsPerBlock = 1
	}

	weights := make([]float64, k)
	prevLikelihood := math.Inf(-1)

	for sweep := 0; sweep < l.config.Iterations; sweep++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		for d, doc := range l.docs {
			for i, w := range doc {
				old := l.assignments[d][i]
				l.docTopic[d][old]--
				l.topicWord[old][w]--
				l.topicTotal[old]--

				sum := 0.0
				for t := 0; t < k; t++ {
					weights[t] = (float64(l.docTopic[d][t]) + l.config.Alpha) *
						(float64(l.topicWord[t][w]) + l.config.Eta) /
						(float64(l.topicTotal[t]) + float64(v)*l.config.Eta)
					sum += weights[t]
				}

				target := rnd.Float64() * sum
				chosen := k - 1
				acc := 0.0
				for t := 0; t < k; t++ {
					acc += weights[t]
					if target < acc {
						chosen = t
						break
					}
				}

				l.assignments[d][i] = chosen
				l.docTopic[d][chosen]++
				l.topicWord[chosen][w]++
				l.topicTotal[chosen]++
			}
		}

		if (sweep+1)%sweepsPerBlock == 0 {
			likelihood := l.logLikelihood()
			if math.Abs(likelihood-prevLikelihood) < 1e-4*math.Abs(likelihood) {
				break
			}
			prevLikelihood = likelihood
		}
	}

	l.fitted = true
	return nil
}

// logLikelihood computes the corpus log likelihood under the current
// assignments, used only for the early-stop check.
func (l *LDA) logLikelihood() float64 {
	k := l.config.Topics
	v := float64(l.dict.Len())
	likelihood := 0.0
	for d, doc := range l.docs {
		nd := float64(len(doc))
		for _, w := range doc {
			p := 0.0
			for t := 0; t < k; t++ {
				theta := (float64(l.docTopic[d][t]) + l.config.Alpha) / (nd + float64(k)*l.config.Alpha)
				phi := (float64(l.topicWord[t][w]) + l.config.Eta) / (float64(l.topicTotal[t]) + v*l.config.Eta)
				p += theta * phi
			}
			likelihood += math.Log(p)
		}
	}
	return likelihood
}

// DocumentTopics returns the dense topic-probability vector of a document.
// Documents without tokens get a zero-filled vector.
func (l *LDA) DocumentTopics(doc int) []float64 {
	k := l.config.Topics
	vector := make([]float64, k)
	if !l.fitted || doc >= len(l.docs) || len(l.docs[doc]) == 0 {
		return vector
	}

	nd := float64(len(l.docs[doc]))
	for t := 0; t < k; t++ {
		vector[t] = (float64(l.docTopic[doc][t]) + l.config.Alpha) / (nd + float64(k)*l.config.Alpha)
	}
	return vector
}

// TopTerm returns the highest-weight term of a topic. Ties are broken by
// the smaller token id, which follows first appearance in sentence order.
func (l *LDA) TopTerm(topic int) string {
	if !l.fitted || topic >= l.config.Topics {
		return ""
	}

	best := -1
	bestCount := -1
	for w := 0; w < l.dict.Len(); w++ {
		if l.topicWord[topic][w] > bestCount {
			bestCount = l.topicWord[topic][w]
			best = w
		}
	}
	if best < 0 {
		return ""
	}
	return l.dict.Token(best)
}
