package pipeline

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/siherrmann/braingraph/core/score"
	"github.com/siherrmann/braingraph/model"
)

// finalize records a chunk as terminal and emits its concept nodes and
// edges. The TF-IDF handed in was built at the split that finalized the
// chunk; a chunk finalized without a split gets a single-document model
// over itself.
func (c *Chunker) finalize(chunk *model.Chunk, parentKeyword string, tf *score.TFIDF, doc int) error {
	c.chunks++

	if tf == nil {
		var err error
		tf, err = score.NewTFIDF([][]string{flattenTokens(chunk)})
		if err != nil {
			tf = nil
		}
		doc = 0
	}

	c.buildChunkGraph(chunk, parentKeyword, tf, doc)
	return nil
}

// buildChunkGraph emits up to the configured number of new top-level
// phrase nodes from a finalized chunk, connected under the parent keyword,
// each followed by up to the configured number of near-duplicate child
// nodes grouped by embedding similarity; child nodes do not count toward
// the top-level cap. Emission is aborted when the parent keyword
// does not occur in the chunk.
func (c *Chunker) buildChunkGraph(chunk *model.Chunk, parentKeyword string, tf *score.TFIDF, doc int) {
	if parentKeyword == "" {
		return
	}

	// Phrase occurrences over this chunk only.
	phraseInfo := make(map[string][]int)
	firstIndex := make(map[string]int)
	sentenceByIndex := make(map[int]*model.Sentence, chunk.Len())
	for _, s := range chunk.Sentences {
		sentenceByIndex[s.Index] = s
		for _, p := range s.Tokens {
			if _, ok := firstIndex[p]; !ok {
				firstIndex[p] = s.Index
			}
			if indices := phraseInfo[p]; len(indices) == 0 || indices[len(indices)-1] != s.Index {
				phraseInfo[p] = append(indices, s.Index)
			}
		}
	}

	parentBase := model.BaseKeyword(parentKeyword)
	if _, ok := phraseInfo[parentBase]; !ok {
		c.log.Warn("parent keyword absent from chunk, skipping emission",
			slog.String("source_id", c.sourceID),
			slog.String("keyword", parentBase),
			slog.String("fallback", "skip-chunk"))
		return
	}

	// The parent participates in this chunk: attach its sentence evidence.
	c.batch.AddNode(c.newNode(parentKeyword, phraseInfo[parentBase], sentenceByIndex, nil))

	scorer := &score.PhraseScorer{Config: c.config.Score, TFIDF: tf, Doc: doc}
	phrases := make([]string, 0, len(phraseInfo))
	scores := make(map[string]float64, len(phraseInfo))
	for p, indices := range phraseInfo {
		if p == parentBase {
			continue
		}
		phrases = append(phrases, p)
		scores[p] = scorer.Score(p, len(indices))
	}
	score.SortByScore(phrases, scores, firstIndex)

	groups, embeddings := score.GroupPhrases(phrases, c.embedder, c.config.Score.GroupThreshold)

	newNodes := 0
	for _, g := range groups {
		if newNodes >= c.config.Score.MaxNodesPerChunk {
			break
		}
		p := g.Representative

		c.batch.AddEdge(&model.Edge{
			Source:   parentKeyword,
			Target:   p,
			Relation: c.relationFor(parentBase, p, phraseInfo, sentenceByIndex),
			BrainID:  c.brainID,
			SourceID: c.sourceID,
		})

		if _, made := c.alreadyMade[p]; !made {
			c.batch.AddNode(c.newNode(p, phraseInfo[p], sentenceByIndex, embeddings[p]))
			c.alreadyMade[p] = struct{}{}
			newNodes++
		}

		children := 0
		for _, m := range g.Members {
			if children >= c.config.Score.MaxChildrenPerGroup {
				break
			}
			if _, made := c.alreadyMade[m]; made {
				continue
			}
			c.batch.AddNode(c.newNode(m, phraseInfo[m], sentenceByIndex, embeddings[m]))
			c.alreadyMade[m] = struct{}{}
			c.batch.AddEdge(&model.Edge{
				Source:   p,
				Target:   m,
				Relation: c.relationFor(p, m, phraseInfo, sentenceByIndex),
				BrainID:  c.brainID,
				SourceID: c.sourceID,
			})
			children++
		}
	}
}

// newNode builds a keyword node with one description and one original
// sentence record over the given sentence indices.
func (c *Chunker) newNode(name string, indices []int, sentenceByIndex map[int]*model.Sentence, embedding []float32) *model.KeywordNode {
	description := shortestText(indices, sentenceByIndex)

	var originals []string
	for _, i := range indices {
		if s, ok := sentenceByIndex[i]; ok {
			originals = append(originals, s.Text)
		}
	}

	return &model.KeywordNode{
		Name:    name,
		Label:   name,
		BrainID: c.brainID,
		Descriptions: model.RecordList{{
			Data:            description,
			SourceID:        c.sourceID,
			SentenceIndices: indices,
		}},
		OriginalSentences: model.RecordList{{
			Data:            strings.Join(originals, "\n"),
			SourceID:        c.sourceID,
			SentenceIndices: indices,
		}},
		SourceID:  c.sourceID,
		Embedding: embedding,
	}
}

// relationFor derives the relation label for an edge from the shortest
// sentence in which source and target phrases co-occur; when none exists,
// from the shortest sentence containing the target alone.
func (c *Chunker) relationFor(source, target string, phraseInfo map[string][]int, sentenceByIndex map[int]*model.Sentence) string {
	shared := intersect(phraseInfo[source], phraseInfo[target])
	if len(shared) == 0 {
		shared = phraseInfo[target]
	}
	return c.truncateRelation(shortestText(shared, sentenceByIndex))
}

// relationFromSentences derives a hierarchy edge label from the shortest
// sentence of the chunk containing the keyword, falling back to the
// shortest sentence overall.
func (c *Chunker) relationFromSentences(sentences []*model.Sentence, keyword string) string {
	best := ""
	fallback := ""
	for _, s := range sentences {
		if fallback == "" || utf8.RuneCountInString(s.Text) < utf8.RuneCountInString(fallback) {
			fallback = s.Text
		}
		if !containsToken(s.Tokens, keyword) {
			continue
		}
		if best == "" || utf8.RuneCountInString(s.Text) < utf8.RuneCountInString(best) {
			best = s.Text
		}
	}
	if best == "" {
		best = fallback
	}
	return c.truncateRelation(best)
}

// truncateRelation bounds a relation label to the configured rune length.
func (c *Chunker) truncateRelation(label string) string {
	limit := c.config.Score.MaxRelationLength
	if limit <= 0 || utf8.RuneCountInString(label) <= limit {
		return label
	}
	return string([]rune(label)[:limit])
}

// shortestText returns the shortest sentence text over the given indices.
func shortestText(indices []int, sentenceByIndex map[int]*model.Sentence) string {
	best := ""
	for _, i := range indices {
		s, ok := sentenceByIndex[i]
		if !ok {
			continue
		}
		if best == "" || utf8.RuneCountInString(s.Text) < utf8.RuneCountInString(best) {
			best = s.Text
		}
	}
	return best
}

// intersect returns the values present in both sorted index lists.
func intersect(a, b []int) []int {
	var out []int
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}

// containsToken reports whether tokens contains the keyword.
func containsToken(tokens []string, keyword string) bool {
	for _, t := range tokens {
		if t == keyword {
			return true
		}
	}
	return false
}
