package classifier

import (
	"encoding/json"
	"fmt"
)

// Boosting is a binary gradient-boosted tree ensemble with log-loss:
// p(class 1) = sigmoid(init + learning_rate × Σ leaf values).
type Boosting struct {
	init         float64
	learningRate float64
	trees        []Tree
	classes      []int
}

type boostingArtifact struct {
	Classes      []int   `json:"classes"`
	Init         float64 `json:"init"`
	LearningRate float64 `json:"learning_rate"`
	Estimators   []Tree  `json:"estimators"`
}

func decodeBoosting(data []byte) (*Boosting, error) {
	var a boostingArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode gradient boosting: %w", err)
	}
	return NewBoosting(a.Init, a.LearningRate, a.Estimators, a.Classes)
}

func NewBoosting(init, learningRate float64, trees []Tree, classes []int) (*Boosting, error) {
	classes = defaultClasses(classes)
	if len(classes) != 2 {
		return nil, fmt.Errorf("gradient boosting supports 2 classes, got %d", len(classes))
	}
	if learningRate <= 0 {
		return nil, fmt.Errorf("learning_rate must be positive, got %v", learningRate)
	}
	for i := range trees {
		if err := trees[i].validate(); err != nil {
			return nil, fmt.Errorf("estimator %d: %w", i, err)
		}
		for j, v := range trees[i].Value {
			if len(v) == 0 {
				return nil, fmt.Errorf("estimator %d node %d has no value", i, j)
			}
		}
	}
	return &Boosting{init: init, learningRate: learningRate, trees: trees, classes: classes}, nil
}

func (m *Boosting) Classes() []int { return m.classes }

func (m *Boosting) PredictProba(x []float64) ([]float64, error) {
	raw := m.init
	for i := range m.trees {
		v, err := m.trees[i].leaf(x)
		if err != nil {
			return nil, err
		}
		raw += m.learningRate * v[0]
	}
	p := sigmoid(raw)
	return []float64{1 - p, p}, nil
}
