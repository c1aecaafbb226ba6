package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// ModelFile holds the serialized ensemble parameters.
	ModelFile = "model.json"
	// InfoFile holds the artifact metadata. It is published last, so a
	// readable info file marks a complete artifact pair.
	InfoFile = "model_info.json"
)

// ArtifactInfo is the metadata half of a model artifact.
type ArtifactInfo struct {
	FeatureColumns []string `json:"feature_columns"`
	SpeciesClasses []string `json:"species_classes"`
	Accuracy       float64  `json:"accuracy"`
}

// Save persists the classifier as a two-file artifact under dir. Each file is
// written to a temporary path and renamed, parameters before metadata, so a
// partially written artifact is never visible to a loader.
func (c *Classifier) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	params, err := json.Marshal(c.model)
	if err != nil {
		return err
	}
	if err := writeAtomic(filepath.Join(dir, ModelFile), params); err != nil {
		return err
	}

	info, err := json.MarshalIndent(c.Info(), "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(filepath.Join(dir, InfoFile), info)
}

func writeAtomic(path string, payload []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadClassifier reads and validates an artifact pair from dir. The metadata
// and parameters must agree: non-empty schema and label list, per-class tree
// count matching the label count, and no tree referencing a feature index
// outside the schema.
func LoadClassifier(dir string) (*Classifier, error) {
	infoPayload, err := os.ReadFile(filepath.Join(dir, InfoFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	var info ArtifactInfo
	if err := json.Unmarshal(infoPayload, &info); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}

	modelPayload, err := os.ReadFile(filepath.Join(dir, ModelFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}
	var model boostedEnsemble
	if err := json.Unmarshal(modelPayload, &model); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArtifactCorrupt, err)
	}

	if len(info.FeatureColumns) == 0 {
		return nil, fmt.Errorf("%w: empty feature schema", ErrSchemaMismatch)
	}
	if len(info.SpeciesClasses) == 0 {
		return nil, fmt.Errorf("%w: empty species list", ErrSchemaMismatch)
	}
	if model.NumClasses != len(info.SpeciesClasses) {
		return nil, fmt.Errorf("%w: model has %d classes, metadata lists %d",
			ErrSchemaMismatch, model.NumClasses, len(info.SpeciesClasses))
	}
	for _, roundTrees := range model.Rounds {
		if len(roundTrees) != model.NumClasses {
			return nil, fmt.Errorf("%w: round has %d trees, expected %d",
				ErrSchemaMismatch, len(roundTrees), model.NumClasses)
		}
	}
	if idx := model.maxFeatureIndex(); idx >= len(info.FeatureColumns) {
		return nil, fmt.Errorf("%w: tree references feature %d, schema has %d columns",
			ErrSchemaMismatch, idx, len(info.FeatureColumns))
	}

	return &Classifier{
		schema:   FeatureSchema(info.FeatureColumns),
		labels:   info.SpeciesClasses,
		model:    &model,
		accuracy: info.Accuracy,
	}, nil
}
