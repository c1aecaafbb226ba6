package ml

import (
	"math"
	"testing"
)

func TestRegressionTreeFitPredict(t *testing.T) {
	features := [][]float64{{0.1}, {0.2}, {0.8}, {0.9}}
	grad := []float64{-1, -1, 1, 1}
	hess := []float64{0.25, 0.25, 0.25, 0.25}

	tree := fitTree(features, grad, hess, 3)
	low := tree.predict([]float64{0.15})
	high := tree.predict([]float64{0.85})
	if low <= high {
		t.Fatalf("expected opposite leaf values, got low=%f high=%f", low, high)
	}
}

func TestBoostedEnsembleSeparable(t *testing.T) {
	features := [][]float64{
		{0.1, 0.2}, {0.2, 0.1}, {0.15, 0.15},
		{0.9, 0.8}, {0.8, 0.9}, {0.85, 0.85},
	}
	labels := []int{0, 0, 0, 1, 1, 1}

	model, err := fitBoostedEnsemble(features, labels, 2, boostOptions{rounds: 10, maxDepth: 2, learningRate: 0.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, vector := range features {
		probs := model.predictProba(vector)
		var sum float64
		best := 0
		for j, p := range probs {
			if p < 0 || p > 1 {
				t.Fatalf("probability out of range: %f", p)
			}
			sum += p
			if p > probs[best] {
				best = j
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Fatalf("probabilities sum to %f", sum)
		}
		if best != labels[i] {
			t.Fatalf("sample %d: expected class %d, got %d (probs %v)", i, labels[i], best, probs)
		}
	}
}

func TestBoostedEnsembleRejectsSingleClass(t *testing.T) {
	features := [][]float64{{0.1}, {0.2}}
	labels := []int{0, 0}
	if _, err := fitBoostedEnsemble(features, labels, 1, boostOptions{}); err == nil {
		t.Fatal("expected error for single class")
	}
}

func TestSoftmaxStability(t *testing.T) {
	probs := softmax([]float64{1000, 1001, 999})
	var sum float64
	for _, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			t.Fatalf("softmax overflow: %v", probs)
		}
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("probabilities sum to %f", sum)
	}
}
