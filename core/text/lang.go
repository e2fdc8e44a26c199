// Package text provides language detection and sentence segmentation for
// raw document text.
package text

import (
	"unicode"

	"github.com/siherrmann/braingraph/model"
)

// DetectLanguage classifies a sentence by script inspection. A sentence
// with Hangul characters at least as many as its ASCII letters classifies
// as Korean; otherwise any ASCII letter classifies it as English;
// everything else falls back to other.
func DetectLanguage(s string) model.Language {
	var hangul, latin int
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Hangul, r):
			hangul++
		case r < 128 && unicode.IsLetter(r):
			latin++
		}
	}

	if hangul > 0 && hangul >= latin {
		return model.LanguageKorean
	}
	if latin > 0 {
		return model.LanguageEnglish
	}
	return model.LanguageOther
}
