package classifier

import (
	"errors"
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func stumpTree(left, right []float64) Tree {
	return Tree{
		ChildrenLeft:  []int{1, -1, -1},
		ChildrenRight: []int{2, -1, -1},
		Feature:       []int{0, -2, -2},
		Threshold:     []float64{0.5, -2, -2},
		Value:         [][]float64{{0, 0}, left, right},
	}
}

func TestLogisticBinary(t *testing.T) {
	m, err := NewLogistic([][]float64{{1, -1}}, []float64{0}, nil)
	if err != nil {
		t.Fatalf("NewLogistic() error: %v", err)
	}
	proba, err := m.PredictProba([]float64{2, 1})
	if err != nil {
		t.Fatalf("PredictProba() error: %v", err)
	}
	want := 1 / (1 + math.Exp(-1))
	if !approx(proba[1], want) || !approx(proba[0], 1-want) {
		t.Errorf("PredictProba() = %v, want [%v %v]", proba, 1-want, want)
	}

	if _, err := m.PredictProba([]float64{1}); !errors.Is(err, ErrDimension) {
		t.Errorf("PredictProba(short) error = %v, want ErrDimension", err)
	}
}

func TestLogisticMultinomialSumsToOne(t *testing.T) {
	m, err := NewLogistic([][]float64{{1}, {2}, {3}}, []float64{0, 0, 0}, []int{0, 1, 2})
	if err != nil {
		t.Fatalf("NewLogistic() error: %v", err)
	}
	proba, err := m.PredictProba([]float64{1})
	if err != nil {
		t.Fatalf("PredictProba() error: %v", err)
	}
	if !approx(proba[0]+proba[1]+proba[2], 1) {
		t.Errorf("sum(proba) = %v, want 1", proba[0]+proba[1]+proba[2])
	}
	if !(proba[2] > proba[1] && proba[1] > proba[0]) {
		t.Errorf("proba not increasing: %v", proba)
	}
}

func TestLogisticRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name      string
		coef      [][]float64
		intercept []float64
	}{
		{"empty", nil, nil},
		{"intercept mismatch", [][]float64{{1}}, []float64{0, 1}},
		{"ragged", [][]float64{{1, 2}, {1}}, []float64{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLogistic(tt.coef, tt.intercept, nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestForestAveragesTrees(t *testing.T) {
	m, err := NewForest([]Tree{stumpTree([]float64{3, 1}, []float64{0, 4}), stumpTree([]float64{1, 1}, []float64{0, 2})}, nil)
	if err != nil {
		t.Fatalf("NewForest() error: %v", err)
	}

	tests := []struct {
		x    float64
		want []float64
	}{
		{0, []float64{0.625, 0.375}},
		{1, []float64{0, 1}},
	}
	for _, tt := range tests {
		proba, err := m.PredictProba([]float64{tt.x})
		if err != nil {
			t.Fatalf("PredictProba() error: %v", err)
		}
		if !approx(proba[0], tt.want[0]) || !approx(proba[1], tt.want[1]) {
			t.Errorf("PredictProba(%v) = %v, want %v", tt.x, proba, tt.want)
		}
	}

	if _, err := m.PredictProba(nil); !errors.Is(err, ErrDimension) {
		t.Errorf("PredictProba(nil) error = %v, want ErrDimension", err)
	}
}

func TestForestRejectsBrokenTree(t *testing.T) {
	tree := stumpTree([]float64{1, 0}, []float64{0, 1})
	tree.ChildrenLeft[0] = 7
	if _, err := NewForest([]Tree{tree}, nil); err == nil {
		t.Error("expected error for out-of-range child")
	}
}

func TestBoosting(t *testing.T) {
	tree := stumpTree([]float64{-2}, []float64{2})
	tree.Value[0] = []float64{0}
	m, err := NewBoosting(0, 0.5, []Tree{tree}, nil)
	if err != nil {
		t.Fatalf("NewBoosting() error: %v", err)
	}

	proba, err := m.PredictProba([]float64{1})
	if err != nil {
		t.Fatalf("PredictProba() error: %v", err)
	}
	want := 1 / (1 + math.Exp(-1))
	if !approx(proba[1], want) {
		t.Errorf("p(1) = %v, want %v", proba[1], want)
	}

	if _, err := NewBoosting(0, 0.1, nil, []int{0, 1, 2}); err == nil {
		t.Error("expected error for multi-class boosting")
	}
}

func TestScalerTransform(t *testing.T) {
	tests := []struct {
		name   string
		scaler Scaler
		x      []float64
		want   []float64
	}{
		{"standard", Scaler{Type: ScalerStandard, Mean: []float64{1, 2}, Scale: []float64{2, 0}}, []float64{3, 5}, []float64{1, 3}},
		{"minmax", Scaler{Type: ScalerMinMax, Min: []float64{-1}, Scale: []float64{0.5}}, []float64{4}, []float64{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.scaler.Transform(tt.x)
			if err != nil {
				t.Fatalf("Transform() error: %v", err)
			}
			for i := range tt.want {
				if !approx(got[i], tt.want[i]) {
					t.Errorf("Transform() = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}

	s := Scaler{Type: ScalerStandard, Scale: []float64{1, 1}}
	if _, err := s.Transform([]float64{1}); !errors.Is(err, ErrDimension) {
		t.Errorf("Transform(short) error = %v, want ErrDimension", err)
	}
}
