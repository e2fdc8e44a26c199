// Package phrase extracts candidate noun phrases from sentences.
package phrase

import (
	"strings"
	"unicode"
	"unicode/utf8"

	prose "github.com/jdkato/prose/v2"
	"github.com/siherrmann/braingraph/model"
)

// predicateEndings are the final characters of conjugated Korean
// predicates; a candidate ending in one of these is not a phrase stem.
const predicateEndings = "다요죠며지만"

// particles are common Korean postpositions stripped from the end of a
// word before it is considered a phrase candidate. Longer particles are
// listed first so they are tried before their suffixes.
var particles = []string{
	"에서는", "에서도", "으로는", "으로도", "이라는", "이라고",
	"에서", "에게", "한테", "께서", "으로", "까지", "부터", "보다",
	"처럼", "같이", "마저", "조차", "라는", "라고", "라도", "이나",
	"은", "는", "이", "가", "을", "를", "의", "에", "로", "와", "과",
	"도", "만", "나", "야", "랑",
}

// Extract produces the deduplicated candidate phrases of a sentence in its
// detected language. Phrases are stop-word filtered and at least two
// characters long. For unsupported languages the trimmed sentence itself
// is the single token.
func Extract(text string, lang model.Language) []string {
	var candidates []string
	switch lang {
	case model.LanguageKorean:
		candidates = extractKorean(text)
	case model.LanguageEnglish:
		candidates = extractEnglish(text)
	default:
		trimmed := strings.TrimSpace(text)
		if trimmed != "" {
			candidates = []string{trimmed}
		}
	}

	return dedupe(candidates)
}

// extractEnglish uses POS tags to collect contiguous noun chunks
// (adjectives and nouns, plus foreign words), lowercased.
func extractEnglish(text string) []string {
	doc, err := prose.NewDocument(text, prose.WithExtraction(false), prose.WithSegmentation(false))
	if err != nil {
		return nil
	}

	var phrases []string
	var run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		candidate := strings.ToLower(strings.Join(run, " "))
		run = nil
		if keepPhrase(candidate) {
			phrases = append(phrases, candidate)
		}
	}

	for _, tok := range doc.Tokens() {
		if isNounChunkTag(tok.Tag) {
			run = append(run, tok.Text)
			continue
		}
		flush()
	}
	flush()

	return phrases
}

// isNounChunkTag reports whether a Penn Treebank tag belongs in a noun
// chunk run.
func isNounChunkTag(tag string) bool {
	return strings.HasPrefix(tag, "NN") || tag == "JJ" || tag == "FW"
}

// extractKorean collects contiguous runs of noun-like words. A word is
// noun-like when, after stripping a trailing postposition, a stem of more
// than one character remains whose last character is not a predicate
// ending.
func extractKorean(text string) []string {
	var phrases []string
	var run []string

	flush := func() {
		if len(run) == 0 {
			return
		}
		candidate := strings.Join(run, " ")
		run = nil
		if keepPhrase(candidate) {
			phrases = append(phrases, candidate)
		}
	}

	for _, word := range strings.Fields(text) {
		stem := koreanStem(word)
		if stem == "" {
			flush()
			continue
		}
		run = append(run, stem)
	}
	flush()

	return phrases
}

// koreanStem strips punctuation and one trailing particle, returning the
// remaining stem or "" when the word is not a phrase candidate.
func koreanStem(word string) string {
	word = strings.TrimFunc(word, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	if word == "" {
		return ""
	}

	for _, r := range word {
		if !unicode.Is(unicode.Hangul, r) && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return ""
		}
	}

	for _, p := range particles {
		if strings.HasSuffix(word, p) && utf8.RuneCountInString(word) > utf8.RuneCountInString(p)+1 {
			word = strings.TrimSuffix(word, p)
			break
		}
	}

	runes := []rune(word)
	if len(runes) <= 1 {
		return ""
	}
	if strings.ContainsRune(predicateEndings, runes[len(runes)-1]) {
		return ""
	}
	return word
}

// keepPhrase filters stop words and phrases shorter than two characters.
func keepPhrase(candidate string) bool {
	if utf8.RuneCountInString(candidate) < 2 {
		return false
	}
	return !IsStopword(candidate)
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(phrases []string) []string {
	if len(phrases) < 2 {
		return phrases
	}
	seen := make(map[string]struct{}, len(phrases))
	result := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	return result
}
