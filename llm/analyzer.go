package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const urlBiasThreshold = 0.9

// Analyzer asks the LLM for phishing verdicts. Its Analyze methods never
// fail; errors produce a placeholder Analysis with Failed set.
type Analyzer struct {
	client *Client
}

func NewAnalyzer(client *Client) *Analyzer {
	return &Analyzer{client: client}
}

func (a *Analyzer) Model() string   { return a.client.Model() }
func (a *Analyzer) BaseURL() string { return a.client.BaseURL() }

func (a *Analyzer) Available(ctx context.Context) bool {
	return a.client.Available(ctx)
}

// Models returns an empty list when the server cannot be reached.
func (a *Analyzer) Models(ctx context.Context) []string {
	models, err := a.client.Models(ctx)
	if err != nil {
		slog.Debug("list llm models", "error", err)
		return []string{}
	}
	return models
}

// AnalyzeURL leans towards PHISHING: a LEGITIMATE verdict below 0.9
// confidence is flipped.
func (a *Analyzer) AnalyzeURL(ctx context.Context, url string) Analysis {
	res, err := a.analyze(ctx, BuildURLPrompt(url))
	if err != nil {
		slog.Error("llm url analysis failed", "error", err)
		return fallbackResult(fmt.Sprintf("Analysis failed: %v", err))
	}
	if res.Prediction == PredictionLegitimate && res.Confidence < urlBiasThreshold {
		res.Prediction = PredictionPhishing
	}
	return res
}

func (a *Analyzer) AnalyzeText(ctx context.Context, text string) Analysis {
	res, err := a.analyze(ctx, BuildTextPrompt(text))
	if err != nil {
		slog.Error("llm text analysis failed", "error", err)
		return fallbackResult(fmt.Sprintf("Analysis failed: %v", err))
	}
	return res
}

func (a *Analyzer) AnalyzeHybrid(ctx context.Context, url, text string) Analysis {
	res, err := a.analyze(ctx, BuildHybridPrompt(url, text))
	if err != nil {
		slog.Error("llm hybrid analysis failed", "error", err)
		return fallbackResult(fmt.Sprintf("Analysis failed: %v", err))
	}
	return res
}

// Explain returns the model's free-text explanation of a prior verdict.
func (a *Analyzer) Explain(ctx context.Context, prediction, url, text string) (string, error) {
	out, err := a.client.Generate(ctx, BuildExplainPrompt(prediction, url, text))
	if err != nil {
		return "", fmt.Errorf("generate explanation: %w", err)
	}
	return strings.TrimSpace(out), nil
}

func (a *Analyzer) analyze(ctx context.Context, prompt string) (Analysis, error) {
	raw, err := a.client.Generate(ctx, prompt)
	if err != nil {
		return Analysis{}, err
	}
	return Parse(raw), nil
}

func fallbackResult(msg string) Analysis {
	return Analysis{
		Prediction:      PredictionUnknown,
		Confidence:      0,
		Explanation:     "LLM analysis unavailable: " + msg,
		RiskFactors:     []string{},
		Recommendations: []string{"Use traditional ML analysis", "Check LLM service status"},
		Failed:          true,
	}
}
