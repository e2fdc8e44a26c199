package model

// Language classifies the script of a sentence or phrase.
type Language string

const (
	LanguageKorean  Language = "ko"
	LanguageEnglish Language = "en"
	LanguageOther   Language = "other"
)

// Sentence is one segmented sentence of a source document.
// Index is the position in the document-wide ordered sequence produced by
// the segmenter. Tokens are the noun phrases extracted for Text in Lang.
// Sentences are immutable after tokenization and live only for one ingest.
type Sentence struct {
	Index  int      `json:"index"`
	Text   string   `json:"text"`
	Lang   Language `json:"lang"`
	Tokens []string `json:"tokens"`
}
