package ml

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// TrainConfig controls the offline training run. The seed fixes the
// train/test split so runs over the same data are reproducible.
type TrainConfig struct {
	Seed         int64
	Rounds       int
	MaxDepth     int
	LearningRate float64
	TestRatio    float64
}

func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Seed:         42,
		Rounds:       50,
		MaxDepth:     4,
		LearningRate: 0.3,
		TestRatio:    0.2,
	}
}

// TrainResult summarizes one training run.
type TrainResult struct {
	TrainCount int
	TestCount  int
	Accuracy   float64
	Classes    []string
}

// Train fits a classifier on cleaned, labeled records. The schema is built by
// enumerating the encoded columns of the dataset itself; label indices come
// from the sorted set of distinct species; accuracy is measured on the
// held-out partition.
func Train(records []LabeledRecord, cfg TrainConfig) (*Classifier, TrainResult, error) {
	if len(records) == 0 {
		return nil, TrainResult{}, fmt.Errorf("no training records")
	}

	labels := distinctSpecies(records)
	if len(labels) < 2 {
		return nil, TrainResult{}, fmt.Errorf("%w: found %d species", ErrInsufficientClasses, len(labels))
	}
	labelIndex := make(map[string]int, len(labels))
	for i, label := range labels {
		labelIndex[label] = i
	}

	measurements := make([]MeasurementRecord, len(records))
	for i, r := range records {
		measurements[i] = r.MeasurementRecord
	}
	schema := BuildSchema(measurements)

	features := make([][]float64, len(records))
	targets := make([]int, len(records))
	for i, r := range records {
		vector, err := Encode(r.MeasurementRecord, schema)
		if err != nil {
			return nil, TrainResult{}, fmt.Errorf("encode record %d: %w", i, err)
		}
		if !isFiniteVector(vector) {
			return nil, TrainResult{}, fmt.Errorf("record %d has non-finite measurements", i)
		}
		features[i] = vector
		targets[i] = labelIndex[r.Species]
	}

	trainX, trainY, testX, testY := splitDataset(features, targets, cfg.TestRatio, cfg.Seed)

	model, err := fitBoostedEnsemble(trainX, trainY, len(labels), boostOptions{
		rounds:       cfg.Rounds,
		maxDepth:     cfg.MaxDepth,
		learningRate: cfg.LearningRate,
	})
	if err != nil {
		return nil, TrainResult{}, err
	}

	classifier := &Classifier{
		schema: schema,
		labels: labels,
		model:  model,
	}
	classifier.accuracy = evaluateAccuracy(classifier, testX, testY)

	result := TrainResult{
		TrainCount: len(trainY),
		TestCount:  len(testY),
		Accuracy:   classifier.accuracy,
		Classes:    classifier.Labels(),
	}
	return classifier, result, nil
}

func distinctSpecies(records []LabeledRecord) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		if r.Species != "" {
			set[r.Species] = struct{}{}
		}
	}
	labels := make([]string, 0, len(set))
	for label := range set {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

func splitDataset(features [][]float64, labels []int, testRatio float64, seed int64) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	rnd := rand.New(rand.NewSource(seed))
	indices := rnd.Perm(len(features))

	split := int(math.Round(float64(len(features)) * (1 - testRatio)))
	for i, idx := range indices {
		if i < split {
			trainX = append(trainX, features[idx])
			trainY = append(trainY, labels[idx])
		} else {
			testX = append(testX, features[idx])
			testY = append(testY, labels[idx])
		}
	}
	return trainX, trainY, testX, testY
}

func evaluateAccuracy(classifier *Classifier, testX [][]float64, testY []int) float64 {
	if len(testX) == 0 {
		return 0
	}
	correct := 0
	for i, vector := range testX {
		probs, err := classifier.Probabilities(vector)
		if err != nil {
			continue
		}
		best := 0
		for j, p := range probs {
			if p > probs[best] {
				best = j
			}
		}
		if best == testY[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(testX))
}
