package llm

import (
	"math"
	"strings"

	"phishing-detection-api/classifier"
)

// CombineURL blends an ML URL decision with an LLM verdict. Agreement on
// PHISHING yields at least 0.9 confidence, a single PHISHING vote at least
// 0.7, otherwise LEGITIMATE with the mean. An undecided side votes
// non-phishing with its zero confidence.
func CombineURL(ml classifier.Result, verdict Analysis) (string, float64) {
	mlPhishing := ml.Label == classifier.LabelPhishing
	llmPhishing := strings.ToUpper(verdict.Prediction) == PredictionPhishing
	mean := (ml.Confidence + verdict.Confidence) / 2

	switch {
	case mlPhishing && llmPhishing:
		return PredictionPhishing, math.Max(0.9, mean)
	case mlPhishing || llmPhishing:
		return PredictionPhishing, math.Max(0.7, mean)
	default:
		return PredictionLegitimate, mean
	}
}
