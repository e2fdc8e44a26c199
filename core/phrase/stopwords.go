package phrase

// Stop-word lists are read-only and process-global, initialized once at
// package load.

var englishStopwords = makeSet([]string{
	"a", "about", "above", "after", "again", "against", "all", "also", "am",
	"an", "and", "any", "are", "as", "at", "be", "because", "been", "before",
	"being", "below", "between", "both", "but", "by", "can", "could", "did",
	"do", "does", "doing", "down", "during", "each", "few", "for", "from",
	"further", "had", "has", "have", "having", "he", "her", "here", "hers",
	"herself", "him", "himself", "his", "how", "i", "if", "in", "into", "is",
	"it", "its", "itself", "just", "me", "more", "most", "my", "myself",
	"no", "nor", "not", "now", "of", "off", "on", "once", "only", "or",
	"other", "our", "ours", "ourselves", "out", "over", "own", "same", "she",
	"should", "so", "some", "such", "than", "that", "the", "their", "theirs",
	"them", "themselves", "then", "there", "these", "they", "this", "those",
	"through", "to", "too", "under", "until", "up", "very", "was", "we",
	"were", "what", "when", "where", "which", "while", "who", "whom", "why",
	"will", "with", "you", "your", "yours", "yourself", "yourselves",
})

var koreanStopwords = makeSet([]string{
	"그리고", "그러나", "그런데", "하지만", "또한", "또는", "및", "등",
	"이것", "그것", "저것", "여기", "거기", "저기", "이번", "저번",
	"우리", "당신", "자신", "때문", "경우", "정도", "부분", "사이",
	"하나", "다른", "모든", "어떤", "무엇", "누구", "언제", "어디",
	"이런", "그런", "저런", "같은", "위해", "통해", "대한", "관한",
	"오늘", "내일", "어제", "지금", "이후", "이전", "동안", "가장",
	"매우", "많이", "조금", "거의", "바로", "함께", "다시", "계속",
})

func makeSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether the phrase is an English or Korean stop word.
func IsStopword(word string) bool {
	if _, ok := englishStopwords[word]; ok {
		return true
	}
	_, ok := koreanStopwords[word]
	return ok
}
