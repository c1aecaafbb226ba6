package ml

import "fmt"

// Prediction is the outcome of classifying one measurement.
type Prediction struct {
	Species    string
	Confidence float64
}

// Classifier is an immutable trained model plus the schema and label order it
// was trained with. Predict performs no I/O and is safe for concurrent use.
type Classifier struct {
	schema   FeatureSchema
	labels   []string
	model    *boostedEnsemble
	accuracy float64
}

// Schema returns a copy of the feature column order.
func (c *Classifier) Schema() FeatureSchema {
	return append(FeatureSchema(nil), c.schema...)
}

// Labels returns a copy of the species list, index-ordered.
func (c *Classifier) Labels() []string {
	return append([]string(nil), c.labels...)
}

// Accuracy reports the held-out accuracy recorded at training time.
func (c *Classifier) Accuracy() float64 {
	return c.accuracy
}

// Info returns the artifact metadata for this classifier.
func (c *Classifier) Info() ArtifactInfo {
	return ArtifactInfo{
		FeatureColumns: c.Schema(),
		SpeciesClasses: c.Labels(),
		Accuracy:       c.accuracy,
	}
}

// Predict scores an encoded vector and returns the argmax species with its
// probability. Ties go to the lowest label index.
func (c *Classifier) Predict(vector []float64) (Prediction, error) {
	probs, err := c.Probabilities(vector)
	if err != nil {
		return Prediction{}, err
	}
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}
	return Prediction{Species: c.labels[best], Confidence: probs[best]}, nil
}

// Probabilities returns the full class distribution for an encoded vector.
func (c *Classifier) Probabilities(vector []float64) ([]float64, error) {
	if len(vector) != len(c.schema) {
		return nil, fmt.Errorf("%w: got %d features, schema has %d",
			ErrDimensionMismatch, len(vector), len(c.schema))
	}
	return c.model.predictProba(vector), nil
}

// Classify encodes a record against the classifier's own schema and predicts.
func (c *Classifier) Classify(record MeasurementRecord) (Prediction, error) {
	vector, err := Encode(record, c.schema)
	if err != nil {
		return Prediction{}, err
	}
	return c.Predict(vector)
}
