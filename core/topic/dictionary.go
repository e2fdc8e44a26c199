// Package topic fits a latent topic model over tokenized sentences and
// derives topic-distribution vectors and their similarity matrix.
package topic

// Dictionary maps tokens to integer ids in first-appearance order, so id
// order follows sentence order.
type Dictionary struct {
	ids    map[string]int
	tokens []string
}

// NewDictionary builds a dictionary over all tokens of the given documents.
func NewDictionary(docs [][]string) *Dictionary {
	d := &Dictionary{ids: make(map[string]int)}
	for _, doc := range docs {
		for _, token := range doc {
			if _, ok := d.ids[token]; !ok {
				d.ids[token] = len(d.tokens)
				d.tokens = append(d.tokens, token)
			}
		}
	}
	return d
}

// Len returns the vocabulary size.
func (d *Dictionary) Len() int {
	return len(d.tokens)
}

// Token returns the token for an id.
func (d *Dictionary) Token(id int) string {
	return d.tokens[id]
}

// BagOfWords converts a document to its token id list.
func (d *Dictionary) BagOfWords(doc []string) []int {
	bow := make([]int, 0, len(doc))
	for _, token := range doc {
		if id, ok := d.ids[token]; ok {
			bow = append(bow, id)
		}
	}
	return bow
}
