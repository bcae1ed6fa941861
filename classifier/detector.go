package classifier

import (
	"context"
	"log/slog"

	"phishing-detection-api/features"
)

// Detector runs feature extraction and classification for each kind.
// Extraction is skipped when the kind has no model.
type Detector struct {
	loader *Loader
	url    *features.URLExtractor
	nlp    *features.NLPExtractor
	hybrid *features.HybridExtractor
}

func NewDetector(loader *Loader, whois *features.WhoisExtractor, pages *features.PageFetcher) *Detector {
	urlExt := features.NewURLExtractor()
	nlp := features.NewNLPExtractor(loader.Vectorizer())
	return &Detector{
		loader: loader,
		url:    urlExt,
		nlp:    nlp,
		hybrid: &features.HybridExtractor{URL: urlExt, Whois: whois, NLP: nlp, Pages: pages},
	}
}

func (d *Detector) Loader() *Loader {
	return d.loader
}

func (d *Detector) PredictURL(ctx context.Context, rawURL string) Result {
	if !d.loader.Available(KindURL) {
		return Result{Label: LabelUnavailable}
	}
	return d.predict(KindURL, d.url.Extract(rawURL))
}

func (d *Detector) PredictText(ctx context.Context, text string) Result {
	if !d.loader.Available(KindText) {
		return Result{Label: LabelUnavailable}
	}
	return d.predict(KindText, d.nlp.Extract(text))
}

// PredictHybrid fetches the page text when text is nil.
func (d *Detector) PredictHybrid(ctx context.Context, rawURL string, text *string) Result {
	if !d.loader.Available(KindHybrid) {
		return Result{Label: LabelUnavailable}
	}
	return d.predict(KindHybrid, d.hybrid.Extract(ctx, rawURL, text))
}

func (d *Detector) predict(kind Kind, raw *features.Set) Result {
	res, err := d.loader.Predict(kind, raw)
	if err != nil {
		slog.Error("prediction failed", "kind", kind, "error", err)
	}
	return res
}
