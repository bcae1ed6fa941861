package llm

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// LLM verdicts.
const (
	PredictionPhishing   = "PHISHING"
	PredictionLegitimate = "LEGITIMATE"
	PredictionUnknown    = "UNKNOWN"
)

const (
	defaultConfidence  = 0.5
	noExplanation      = "No explanation available"
	maxFallbackExplain = 500
)

var (
	phishingWords = []string{"phishing", "suspicious", "malicious", "dangerous"}
	legitWords    = []string{"legitimate", "safe", "clean", "normal"}
	percentage    = regexp.MustCompile(`(\d+)%`)
)

// Analysis is a structured LLM verdict.
type Analysis struct {
	Prediction      string   `json:"prediction"`
	Confidence      float64  `json:"confidence"`
	Explanation     string   `json:"explanation"`
	RiskFactors     []string `json:"risk_factors"`
	Recommendations []string `json:"recommendations"`

	// Failed marks a placeholder produced when the model could not be
	// queried or answered unusably.
	Failed bool `json:"-"`
}

// Parse turns raw model output into an Analysis. JSON embedded anywhere in
// the text is preferred; otherwise keywords and the first percentage decide.
func Parse(text string) Analysis {
	cleaned := cleanJSONResponse(text)
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		var fields map[string]interface{}
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &fields); err == nil {
			return fromFields(fields)
		}
	}
	return fallbackParse(text)
}

func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func fromFields(fields map[string]interface{}) Analysis {
	a := Analysis{
		Prediction:      PredictionUnknown,
		Confidence:      defaultConfidence,
		Explanation:     noExplanation,
		RiskFactors:     []string{},
		Recommendations: []string{},
	}
	if p, ok := fields["prediction"].(string); ok && strings.TrimSpace(p) != "" {
		a.Prediction = strings.ToUpper(strings.TrimSpace(p))
	}
	if c, ok := toFloat(fields["confidence"]); ok {
		a.Confidence = clamp01(c)
	}
	if e, ok := fields["explanation"].(string); ok {
		a.Explanation = e
	}
	a.RiskFactors = toStrings(fields["risk_factors"])
	a.Recommendations = toStrings(fields["recommendations"])
	return a
}

func fallbackParse(text string) Analysis {
	lower := strings.ToLower(text)
	prediction := PredictionUnknown
	switch {
	case containsAny(lower, phishingWords):
		prediction = PredictionPhishing
	case containsAny(lower, legitWords):
		prediction = PredictionLegitimate
	}

	confidence := defaultConfidence
	if m := percentage.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			confidence = clamp01(v / 100)
		}
	}

	return Analysis{
		Prediction:      prediction,
		Confidence:      confidence,
		Explanation:     truncate(text, maxFallbackExplain),
		RiskFactors:     []string{},
		Recommendations: []string{},
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch c := v.(type) {
	case float64:
		return c, !math.IsNaN(c)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(c), "%"), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		if strings.HasSuffix(strings.TrimSpace(c), "%") {
			f /= 100
		}
		return f, true
	}
	return 0, false
}

func toStrings(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		switch s := item.(type) {
		case string:
			out = append(out, s)
		case nil:
		default:
			out = append(out, fmt.Sprint(s))
		}
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
