package features

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var textSuspiciousKeywords = []string{
	"urgent", "immediate", "verify", "confirm", "account", "security",
	"suspended", "locked", "expired", "update", "click", "here",
	"phishing", "scam", "fraud", "fake", "suspicious",
}

const tfidfTopK = 50

var (
	contractionNot = regexp.MustCompile(`(\w)n't\b`)
	contractionEnd = regexp.MustCompile(`(\w)'(s|m|d|ll|re|ve)\b`)
	tokenPattern   = regexp.MustCompile(
		`\p{N}+(?:[,.]\p{N}+)+` +
			`|[\p{L}\p{N}_]+(?:[.'\-][\p{L}\p{N}_]+)*` +
			`|\.\.\.` +
			`|[^\p{L}\p{N}_\s]`,
	)
)

// Tokenize splits text into word and punctuation tokens the way treebank
// tokenizers do. Contractions split into "do", "n't". Periods, hyphens and
// apostrophes between word characters stay inside the token, as do commas
// and periods between digits; other punctuation is its own token.
func Tokenize(text string) []string {
	text = contractionNot.ReplaceAllString(text, "$1 n't")
	text = contractionEnd.ReplaceAllString(text, "$1 '$2")

	var tokens []string
	for _, field := range strings.Fields(text) {
		if isClitic(field) {
			tokens = append(tokens, field)
			continue
		}
		tokens = append(tokens, tokenPattern.FindAllString(field, -1)...)
	}
	return tokens
}

func isClitic(s string) bool {
	switch strings.ToLower(s) {
	case "n't", "'s", "'m", "'d", "'ll", "'re", "'ve":
		return true
	}
	return false
}

// NLPExtractor computes text statistics and, when a vectorizer is set,
// the top TF-IDF weights of the text.
type NLPExtractor struct {
	vectorizer *TFIDFVectorizer
}

func NewNLPExtractor(v *TFIDFVectorizer) *NLPExtractor {
	return &NLPExtractor{vectorizer: v}
}

func (e *NLPExtractor) Extract(text string) *Set {
	s := NewSet()
	lower := strings.ToLower(text)
	tokens := Tokenize(lower)

	totalLen, stops := 0, 0
	for _, tok := range tokens {
		totalLen += utf8.RuneCountInString(tok)
		if englishStopWords[tok] {
			stops++
		}
	}

	textLen := utf8.RuneCountInString(text)
	special := 0
	for _, r := range text {
		if strings.ContainsRune(specialChars, r) {
			special++
		}
	}

	s.Put("text_length", float64(textLen))
	s.Put("word_count", float64(len(tokens)))
	s.Put("avg_word_length", ratio(totalLen, len(tokens)))
	s.Put("stop_word_ratio", ratio(stops, len(tokens)))
	s.Put("special_char_ratio", ratio(special, textLen))
	s.Put("suspicious_keywords", float64(countKeywords(lower, textSuspiciousKeywords)))

	if e.vectorizer != nil {
		for i, v := range e.vectorizer.Top(text, tfidfTopK) {
			s.Put("tfidf_"+strconv.Itoa(i), v)
		}
	}
	return s
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}
