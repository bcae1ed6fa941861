package classifier

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Forest averages the normalized leaf class distributions of its trees.
type Forest struct {
	trees   []Tree
	classes []int
}

type forestArtifact struct {
	Classes    []int  `json:"classes"`
	Estimators []Tree `json:"estimators"`
}

func decodeForest(data []byte) (*Forest, error) {
	var a forestArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode random forest: %w", err)
	}
	return NewForest(a.Estimators, a.Classes)
}

func NewForest(trees []Tree, classes []int) (*Forest, error) {
	if len(trees) == 0 {
		return nil, fmt.Errorf("random forest has no estimators")
	}
	classes = defaultClasses(classes)
	for i := range trees {
		if err := trees[i].validate(); err != nil {
			return nil, fmt.Errorf("estimator %d: %w", i, err)
		}
		for j, v := range trees[i].Value {
			if len(v) != len(classes) {
				return nil, fmt.Errorf("estimator %d node %d has %d class values, want %d", i, j, len(v), len(classes))
			}
		}
	}
	return &Forest{trees: trees, classes: classes}, nil
}

func (m *Forest) Classes() []int { return m.classes }

func (m *Forest) PredictProba(x []float64) ([]float64, error) {
	proba := make([]float64, len(m.classes))
	dist := make([]float64, len(m.classes))
	for i := range m.trees {
		v, err := m.trees[i].leaf(x)
		if err != nil {
			return nil, err
		}
		copy(dist, v)
		if total := floats.Sum(dist); total > 0 {
			floats.Scale(1/total, dist)
		}
		floats.Add(proba, dist)
	}
	floats.Scale(1/float64(len(m.trees)), proba)
	return proba, nil
}
