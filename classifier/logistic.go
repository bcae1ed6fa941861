package classifier

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Logistic is a fitted logistic regression. A single coefficient row is a
// binary model; k rows are a multinomial model over k classes.
type Logistic struct {
	coef      *mat.Dense
	intercept []float64
	classes   []int
}

type logisticArtifact struct {
	Classes   []int       `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

func decodeLogistic(data []byte) (*Logistic, error) {
	var a logisticArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode logistic regression: %w", err)
	}
	return NewLogistic(a.Coef, a.Intercept, a.Classes)
}

func NewLogistic(coef [][]float64, intercept []float64, classes []int) (*Logistic, error) {
	if len(coef) == 0 || len(coef[0]) == 0 {
		return nil, fmt.Errorf("logistic regression has no coefficients")
	}
	if len(intercept) != len(coef) {
		return nil, fmt.Errorf("intercept length %d does not match %d coefficient rows", len(intercept), len(coef))
	}
	cols := len(coef[0])
	flat := make([]float64, 0, len(coef)*cols)
	for i, row := range coef {
		if len(row) != cols {
			return nil, fmt.Errorf("coefficient row %d has %d values, want %d", i, len(row), cols)
		}
		flat = append(flat, row...)
	}
	return &Logistic{
		coef:      mat.NewDense(len(coef), cols, flat),
		intercept: intercept,
		classes:   defaultClasses(classes),
	}, nil
}

func (m *Logistic) Classes() []int { return m.classes }

func (m *Logistic) PredictProba(x []float64) ([]float64, error) {
	rows, cols := m.coef.Dims()
	if len(x) != cols {
		return nil, fmt.Errorf("%w: got %d features, model expects %d", ErrDimension, len(x), cols)
	}

	var z mat.VecDense
	z.MulVec(m.coef, mat.NewVecDense(cols, x))
	scores := make([]float64, rows)
	for i := range scores {
		scores[i] = z.AtVec(i) + m.intercept[i]
	}

	if rows == 1 {
		p := sigmoid(scores[0])
		return []float64{1 - p, p}, nil
	}
	return softmax(scores), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func softmax(scores []float64) []float64 {
	maxScore := floats.Max(scores)
	out := make([]float64, len(scores))
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}
