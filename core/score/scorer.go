package score

import (
	"math"
	"sort"
	"unicode/utf8"

	"github.com/siherrmann/braingraph/model"
)

// PhraseScorer weights phrases of one finalized chunk by sentence count,
// phrase length and TF-IDF within the chunk collection.
type PhraseScorer struct {
	Config model.ScoreConfig
	TFIDF  *TFIDF
	Doc    int
}

// Score computes the weighted phrase importance.
func (s *PhraseScorer) Score(phrase string, sentenceCount int) float64 {
	tfidfScore := 0.0
	if s.TFIDF != nil {
		tfidfScore = s.TFIDF.Score(phrase, s.Doc)
	}
	return s.Config.SentenceCountWeight*float64(sentenceCount) +
		s.Config.LengthWeight*float64(utf8.RuneCountInString(phrase)) +
		s.Config.TFIDFWeight*tfidfScore
}

// Group is a set of near-duplicate phrases with the highest-scored phrase
// as representative.
type Group struct {
	Representative string
	Members        []string
}

// GroupPhrases groups phrases whose embedding cosine meets the threshold.
// Phrases must be sorted by descending score; each phrase joins the first
// existing group whose representative it matches, otherwise it starts its
// own. Embeddings are computed lazily, at most once per phrase, and the
// cache is returned so emitted nodes reuse them; a phrase whose embedding
// fails stays in its own group.
func GroupPhrases(phrases []string, embed func(text string) ([]float32, error), threshold float64) ([]Group, map[string][]float32) {
	embeddings := make(map[string][]float32, len(phrases))
	lookup := func(phrase string) []float32 {
		if e, ok := embeddings[phrase]; ok {
			return e
		}
		var e []float32
		if embed != nil {
			if computed, err := embed(phrase); err == nil {
				e = computed
			}
		}
		embeddings[phrase] = e
		return e
	}

	var groups []Group
	for _, phrase := range phrases {
		placed := false
		e := lookup(phrase)
		if e != nil {
			for i := range groups {
				re := lookup(groups[i].Representative)
				if re == nil {
					continue
				}
				if Cosine32(e, re) >= threshold {
					groups[i].Members = append(groups[i].Members, phrase)
					placed = true
					break
				}
			}
		}
		if !placed {
			groups = append(groups, Group{Representative: phrase})
		}
	}
	return groups, embeddings
}

// SortByScore sorts phrases by descending score; ties go to the phrase
// whose earliest sentence index is smaller, then lexicographically.
func SortByScore(phrases []string, scores map[string]float64, firstIndex map[string]int) {
	sort.SliceStable(phrases, func(i, j int) bool {
		si, sj := scores[phrases[i]], scores[phrases[j]]
		if si != sj {
			return si > sj
		}
		fi, fj := firstIndex[phrases[i]], firstIndex[phrases[j]]
		if fi != fj {
			return fi < fj
		}
		return phrases[i] < phrases[j]
	})
}

// Cosine32 computes cosine similarity between two float32 embeddings.
func Cosine32(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
