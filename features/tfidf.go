package features

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"regexp"
	"sort"
	"strings"
)

var (
	wordNgramToken = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)
	multiSpace     = regexp.MustCompile(`\s\s+`)
)

// TFIDFVectorizer applies a fitted TF-IDF vocabulary to new text. It is
// loaded from the JSON export of a trained vectorizer.
type TFIDFVectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Analyzer    string         `json:"analyzer"`
	NgramRange  [2]int         `json:"ngram_range"`
	Lowercase   *bool          `json:"lowercase"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"` // "l2", "l1" or "" for none
}

func LoadTFIDFVectorizer(path string) (*TFIDFVectorizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var v TFIDFVectorizer
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := v.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &v, nil
}

func (v *TFIDFVectorizer) validate() error {
	if v.Analyzer == "" {
		v.Analyzer = "word"
	}
	switch v.Analyzer {
	case "word", "char", "char_wb":
	default:
		return fmt.Errorf("unsupported analyzer %q", v.Analyzer)
	}
	if v.NgramRange == [2]int{} {
		v.NgramRange = [2]int{1, 1}
	}
	if v.NgramRange[0] < 1 || v.NgramRange[1] < v.NgramRange[0] {
		return fmt.Errorf("invalid ngram_range %v", v.NgramRange)
	}
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("term %q index %d outside idf of length %d", term, idx, len(v.IDF))
		}
	}
	return nil
}

// Transform returns the sparse TF-IDF vector of text as index→weight.
func (v *TFIDFVectorizer) Transform(text string) map[int]float64 {
	if v.Lowercase == nil || *v.Lowercase {
		text = strings.ToLower(text)
	}

	counts := make(map[int]float64)
	for _, term := range v.analyze(text) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}

	for idx, tf := range counts {
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		counts[idx] = tf * v.IDF[idx]
	}

	var total float64
	switch v.Norm {
	case "l2":
		for _, w := range counts {
			total += w * w
		}
		total = math.Sqrt(total)
	case "l1":
		for _, w := range counts {
			total += math.Abs(w)
		}
	}
	if total > 0 {
		for idx := range counts {
			counts[idx] /= total
		}
	}
	return counts
}

// Top returns the k largest weights of the dense vector in ascending order.
// When the vocabulary has at least k terms the result always has k values,
// padded at the front with zeros.
func (v *TFIDFVectorizer) Top(text string, k int) []float64 {
	if len(v.IDF) < k {
		k = len(v.IDF)
	}
	weights := make([]float64, 0, len(v.IDF))
	for _, w := range v.Transform(text) {
		weights = append(weights, w)
	}
	sort.Float64s(weights)
	if len(weights) > k {
		weights = weights[len(weights)-k:]
	}
	out := make([]float64, k-len(weights), k)
	return append(out, weights...)
}

func (v *TFIDFVectorizer) analyze(text string) []string {
	switch v.Analyzer {
	case "char":
		return charNgrams(text, v.NgramRange[0], v.NgramRange[1])
	case "char_wb":
		return charWBNgrams(text, v.NgramRange[0], v.NgramRange[1])
	default:
		return wordNgrams(wordNgramToken.FindAllString(text, -1), v.NgramRange[0], v.NgramRange[1])
	}
}

func wordNgrams(tokens []string, minN, maxN int) []string {
	if maxN == 1 {
		return tokens
	}
	var out []string
	if minN == 1 {
		out = append(out, tokens...)
		minN = 2
	}
	for n := minN; n <= maxN; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}

func charNgrams(text string, minN, maxN int) []string {
	runes := []rune(multiSpace.ReplaceAllString(text, " "))
	var out []string
	for n := minN; n <= maxN && n <= len(runes); n++ {
		for i := 0; i+n <= len(runes); i++ {
			out = append(out, string(runes[i:i+n]))
		}
	}
	return out
}

func charWBNgrams(text string, minN, maxN int) []string {
	var out []string
	for _, word := range strings.Fields(multiSpace.ReplaceAllString(text, " ")) {
		w := []rune(" " + word + " ")
		for n := minN; n <= maxN; n++ {
			offset := 0
			out = append(out, string(w[offset:min(offset+n, len(w))]))
			for offset+n < len(w) {
				offset++
				out = append(out, string(w[offset:offset+n]))
			}
			if offset == 0 {
				break
			}
		}
	}
	return out
}
