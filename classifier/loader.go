package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"phishing-detection-api/features"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

// Kind names one of the three classifiers.
type Kind string

const (
	KindURL    Kind = "url"
	KindText   Kind = "text"
	KindHybrid Kind = "hybrid"
)

var Kinds = []Kind{KindURL, KindText, KindHybrid}

// Prediction labels.
const (
	LabelPhishing    = "Phishing"
	LabelLegitimate  = "Legitimate"
	LabelUnavailable = "Model not available"
	LabelError       = "Error"
)

const (
	vectorizerFile = "tfidf_vectorizer.json"
	manifestFile   = "manifest.yaml"
	phishingClass  = 1
)

var ErrModelUnavailable = errors.New("model not available")

// Result is a classifier decision.
type Result struct {
	Label      string  `json:"prediction"`
	Confidence float64 `json:"confidence"`
}

type bundle struct {
	model        Model
	scaler       *Scaler
	featureNames []string
	version      string
}

// Manifest describes the artifact set in a models directory.
type Manifest struct {
	Models map[Kind]ManifestEntry `yaml:"models"`
}

type ManifestEntry struct {
	Version     string `yaml:"version"`
	TrainedAt   string `yaml:"trained_at"`
	Description string `yaml:"description"`
}

// KindStatus is reported by GET /models/status.
type KindStatus struct {
	Available    bool   `json:"available"`
	Scaler       bool   `json:"scaler"`
	FeatureCount int    `json:"feature_count"`
	Version      string `json:"version,omitempty"`
}

// Loader holds the classifiers found in a models directory. Every artifact
// is optional; a kind without a model is unavailable.
type Loader struct {
	dir        string
	bundles    map[Kind]*bundle
	vectorizer *features.TFIDFVectorizer
}

// Load reads every artifact in dir. Broken artifacts are logged and skipped.
func Load(dir string) *Loader {
	l := &Loader{dir: dir, bundles: make(map[Kind]*bundle)}

	manifest, err := loadManifest(filepath.Join(dir, manifestFile))
	if err != nil {
		slog.Error("load model manifest", "dir", dir, "error", err)
	}

	for _, kind := range Kinds {
		b, err := loadBundle(dir, kind)
		if err != nil {
			slog.Error("load model artifacts", "kind", kind, "error", err)
		}
		if b == nil {
			continue
		}
		if manifest != nil {
			b.version = manifest.Models[kind].Version
		}
		l.bundles[kind] = b
		slog.Info("model loaded", "kind", kind, "features", len(b.featureNames), "scaler", b.scaler != nil, "version", b.version)
	}

	v, err := features.LoadTFIDFVectorizer(filepath.Join(dir, vectorizerFile))
	switch {
	case err == nil:
		l.vectorizer = v
		slog.Info("tfidf vectorizer loaded", "terms", len(v.Vocabulary))
	case !errors.Is(err, fs.ErrNotExist):
		slog.Error("load tfidf vectorizer", "error", err)
	}
	return l
}

// NewLoader builds a loader from in-memory parts. Used by tests and tools.
func NewLoader(vectorizer *features.TFIDFVectorizer) *Loader {
	return &Loader{bundles: make(map[Kind]*bundle), vectorizer: vectorizer}
}

// Register installs a model for kind, replacing any previous one.
func (l *Loader) Register(kind Kind, model Model, scaler *Scaler, featureNames []string) {
	l.bundles[kind] = &bundle{model: model, scaler: scaler, featureNames: featureNames}
}

func loadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &m, nil
}

// loadBundle returns nil without error when the kind has no model file.
// A model whose scaler or schema fails to load is still returned.
func loadBundle(dir string, kind Kind) (*bundle, error) {
	model, err := LoadModel(filepath.Join(dir, string(kind)+"_model.json"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b := &bundle{model: model}

	var errs []error
	scaler, err := LoadScaler(filepath.Join(dir, string(kind)+"_scaler.json"))
	switch {
	case err == nil:
		b.scaler = scaler
	case !errors.Is(err, fs.ErrNotExist):
		errs = append(errs, err)
	}

	names, err := loadFeatureNames(filepath.Join(dir, string(kind)+"_feature_names.json"))
	switch {
	case err == nil:
		b.featureNames = names
	case !errors.Is(err, fs.ErrNotExist):
		errs = append(errs, err)
	}
	return b, errors.Join(errs...)
}

func loadFeatureNames(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return names, nil
}

func (l *Loader) Available(kind Kind) bool {
	_, ok := l.bundles[kind]
	return ok
}

func (l *Loader) Vectorizer() *features.TFIDFVectorizer {
	return l.vectorizer
}

// Predict orders raw by the kind's schema, scales it and classifies it.
// The returned Result is always usable: a missing model yields
// LabelUnavailable with ErrModelUnavailable, any other failure LabelError.
func (l *Loader) Predict(kind Kind, raw *features.Set) (Result, error) {
	b, ok := l.bundles[kind]
	if !ok {
		return Result{Label: LabelUnavailable}, ErrModelUnavailable
	}

	res, err := b.predict(raw)
	if err != nil {
		return Result{Label: LabelError}, fmt.Errorf("predict %s: %w", kind, err)
	}
	return res, nil
}

func (b *bundle) predict(raw *features.Set) (Result, error) {
	var x []float64
	if len(b.featureNames) > 0 {
		x = raw.Ordered(b.featureNames)
	} else {
		x = raw.Values()
	}

	if b.scaler != nil {
		scaled, err := b.scaler.Transform(x)
		if err != nil {
			return Result{}, err
		}
		x = scaled
	}

	proba, err := b.model.PredictProba(x)
	if err != nil {
		return Result{}, err
	}
	classes := b.model.Classes()
	if len(proba) != len(classes) {
		return Result{}, fmt.Errorf("model returned %d probabilities for %d classes", len(proba), len(classes))
	}

	best := floats.MaxIdx(proba)
	label := LabelLegitimate
	if classes[best] == phishingClass {
		label = LabelPhishing
	}
	return Result{Label: label, Confidence: proba[best]}, nil
}

func (l *Loader) Status() map[Kind]KindStatus {
	out := make(map[Kind]KindStatus, len(Kinds))
	for _, kind := range Kinds {
		b, ok := l.bundles[kind]
		if !ok {
			out[kind] = KindStatus{}
			continue
		}
		out[kind] = KindStatus{
			Available:    true,
			Scaler:       b.scaler != nil,
			FeatureCount: len(b.featureNames),
			Version:      b.version,
		}
	}
	return out
}
