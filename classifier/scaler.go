package classifier

import (
	"encoding/json"
	"fmt"
	"os"

	"gonum.org/v1/gonum/floats"
)

// Scaler types understood by LoadScaler.
const (
	ScalerStandard = "standard"
	ScalerMinMax   = "minmax"
)

// Scaler is a fitted per-feature affine transform.
type Scaler struct {
	Type  string    `json:"type"`
	Mean  []float64 `json:"mean,omitempty"`
	Min   []float64 `json:"min,omitempty"`
	Scale []float64 `json:"scale"`
}

func LoadScaler(path string) (*Scaler, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &s, nil
}

func (s *Scaler) validate() error {
	if s.Type == "" {
		s.Type = ScalerStandard
	}
	switch s.Type {
	case ScalerStandard:
		if s.Mean != nil && len(s.Mean) != len(s.Scale) {
			return fmt.Errorf("standard scaler has %d means and %d scales", len(s.Mean), len(s.Scale))
		}
	case ScalerMinMax:
		if len(s.Min) != len(s.Scale) {
			return fmt.Errorf("minmax scaler has %d mins and %d scales", len(s.Min), len(s.Scale))
		}
	default:
		return fmt.Errorf("unsupported scaler type %q", s.Type)
	}
	return nil
}

// Dim is the number of features the scaler was fitted on.
func (s *Scaler) Dim() int {
	return len(s.Scale)
}

// Transform returns a scaled copy of x.
func (s *Scaler) Transform(x []float64) ([]float64, error) {
	if len(x) != s.Dim() {
		return nil, fmt.Errorf("%w: got %d features, scaler expects %d", ErrDimension, len(x), s.Dim())
	}
	out := make([]float64, len(x))
	copy(out, x)

	switch s.Type {
	case ScalerMinMax:
		floats.Mul(out, s.Scale)
		floats.Add(out, s.Min)
	default:
		if s.Mean != nil {
			floats.Sub(out, s.Mean)
		}
		for i, sc := range s.Scale {
			if sc != 0 {
				out[i] /= sc
			}
		}
	}
	return out, nil
}
