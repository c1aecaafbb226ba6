package ml

import (
	"errors"
	"math"
)

const minHessian = 1e-6

// boostedEnsemble is a multiclass gradient-boosted tree model: one regression
// tree per class per round, softmax over the summed scores.
type boostedEnsemble struct {
	NumClasses   int                `json:"num_classes"`
	LearningRate float64            `json:"learning_rate"`
	Rounds       [][]regressionTree `json:"rounds"`
}

type boostOptions struct {
	rounds       int
	maxDepth     int
	learningRate float64
}

func fitBoostedEnsemble(features [][]float64, labels []int, numClasses int, opts boostOptions) (*boostedEnsemble, error) {
	if len(features) == 0 || len(labels) == 0 {
		return nil, errors.New("features or labels empty")
	}
	if len(features) != len(labels) {
		return nil, errors.New("features and labels size mismatch")
	}
	if numClasses < 2 {
		return nil, ErrInsufficientClasses
	}
	if opts.rounds <= 0 {
		opts.rounds = 50
	}
	if opts.maxDepth <= 0 {
		opts.maxDepth = 4
	}
	if opts.learningRate <= 0 || opts.learningRate > 1 {
		opts.learningRate = 0.3
	}

	n := len(features)
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, numClasses)
	}

	model := &boostedEnsemble{
		NumClasses:   numClasses,
		LearningRate: opts.learningRate,
		Rounds:       make([][]regressionTree, 0, opts.rounds),
	}

	grad := make([]float64, n)
	hess := make([]float64, n)
	for round := 0; round < opts.rounds; round++ {
		roundTrees := make([]regressionTree, numClasses)
		for class := 0; class < numClasses; class++ {
			for i := 0; i < n; i++ {
				probs := softmax(scores[i])
				target := 0.0
				if labels[i] == class {
					target = 1.0
				}
				grad[i] = probs[class] - target
				h := probs[class] * (1 - probs[class])
				if h < minHessian {
					h = minHessian
				}
				hess[i] = h
			}
			roundTrees[class] = fitTree(features, grad, hess, opts.maxDepth)
		}
		for i := 0; i < n; i++ {
			for class := 0; class < numClasses; class++ {
				scores[i][class] += opts.learningRate * roundTrees[class].predict(features[i])
			}
		}
		model.Rounds = append(model.Rounds, roundTrees)
	}
	return model, nil
}

// predictProba returns the softmax class distribution for one feature vector.
func (m *boostedEnsemble) predictProba(features []float64) []float64 {
	scores := make([]float64, m.NumClasses)
	for _, roundTrees := range m.Rounds {
		for class, tree := range roundTrees {
			scores[class] += m.LearningRate * tree.predict(features)
		}
	}
	return softmax(scores)
}

func (m *boostedEnsemble) maxFeatureIndex() int {
	max := -1
	for _, roundTrees := range m.Rounds {
		for _, tree := range roundTrees {
			if idx := tree.maxFeatureIndex(); idx > max {
				max = idx
			}
		}
	}
	return max
}

func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	probs := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		probs[i] = math.Exp(s - maxScore)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
