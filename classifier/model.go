package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// Model types understood by LoadModel.
const (
	TypeLogisticRegression = "logistic_regression"
	TypeRandomForest       = "random_forest"
	TypeGradientBoosting   = "gradient_boosting"
)

var ErrDimension = errors.New("feature dimension mismatch")

// Model is a fitted binary or multi-class probabilistic classifier.
type Model interface {
	PredictProba(x []float64) ([]float64, error)
	Classes() []int
}

type modelHeader struct {
	Type      string `json:"type"`
	NFeatures int    `json:"n_features_in"`
}

// LoadModel reads a model artifact and dispatches on its "type" field.
func LoadModel(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var hdr modelHeader
	if err := json.Unmarshal(data, &hdr); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}

	var m Model
	switch hdr.Type {
	case TypeLogisticRegression:
		m, err = decodeLogistic(data)
	case TypeRandomForest:
		m, err = decodeForest(data)
	case TypeGradientBoosting:
		m, err = decodeBoosting(data)
	default:
		return nil, fmt.Errorf("%s: unsupported model type %q", path, hdr.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if hdr.NFeatures > 0 {
		m = &sizedModel{Model: m, n: hdr.NFeatures}
	}
	return m, nil
}

// sizedModel rejects vectors whose length differs from the fitted width.
type sizedModel struct {
	Model
	n int
}

func (m *sizedModel) PredictProba(x []float64) ([]float64, error) {
	if len(x) != m.n {
		return nil, fmt.Errorf("%w: got %d features, model expects %d", ErrDimension, len(x), m.n)
	}
	return m.Model.PredictProba(x)
}

func defaultClasses(classes []int) []int {
	if len(classes) == 0 {
		return []int{0, 1}
	}
	return classes
}
