package ml

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func trainAndSave(t *testing.T) (*Classifier, string) {
	t.Helper()
	classifier, _, err := Train(sampleLabeledRecords(), DefaultTrainConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dir := t.TempDir()
	if err := classifier.Save(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return classifier, dir
}

func TestArtifactRoundTrip(t *testing.T) {
	trained, dir := trainAndSave(t)

	loaded, err := LoadClassifier(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The schema used at training time and the one served at inference time
	// must be the same ordered list, asserted directly.
	if !reflect.DeepEqual(trained.Schema(), loaded.Schema()) {
		t.Fatalf("schema drift: %v vs %v", trained.Schema(), loaded.Schema())
	}
	if !reflect.DeepEqual(trained.Labels(), loaded.Labels()) {
		t.Fatalf("label drift: %v vs %v", trained.Labels(), loaded.Labels())
	}
	if trained.Accuracy() != loaded.Accuracy() {
		t.Fatalf("accuracy drift: %f vs %f", trained.Accuracy(), loaded.Accuracy())
	}

	record := MeasurementRecord{BillLengthMM: 47.6, BillDepthMM: 14.9, FlipperLengthMM: 217, BodyMassG: 5000}
	fromTrained, err := trained.Classify(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fromLoaded, err := loaded.Classify(record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromTrained != fromLoaded {
		t.Fatalf("predictions differ after reload: %+v vs %+v", fromTrained, fromLoaded)
	}
}

func TestLoadCorruptParameters(t *testing.T) {
	_, dir := trainAndSave(t)
	if err := os.WriteFile(filepath.Join(dir, ModelFile), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := LoadClassifier(dir); !errors.Is(err, ErrArtifactCorrupt) {
		t.Fatalf("expected corrupt artifact error, got %v", err)
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	if _, err := LoadClassifier(t.TempDir()); !errors.Is(err, ErrArtifactCorrupt) {
		t.Fatalf("expected corrupt artifact error, got %v", err)
	}
}

func TestLoadEmptyMetadata(t *testing.T) {
	_, dir := trainAndSave(t)
	payload := []byte(`{"feature_columns":[],"species_classes":["Adelie","Gentoo"],"accuracy":1}`)
	if err := os.WriteFile(filepath.Join(dir, InfoFile), payload, 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := LoadClassifier(dir); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch error, got %v", err)
	}
}

func TestLoadClassCountMismatch(t *testing.T) {
	_, dir := trainAndSave(t)
	payload := []byte(`{"feature_columns":["bill_length_mm"],"species_classes":["Adelie","Gentoo"],"accuracy":1}`)
	if err := os.WriteFile(filepath.Join(dir, InfoFile), payload, 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := LoadClassifier(dir); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch error, got %v", err)
	}
}

func TestLoadedSchemaRejectsShortVector(t *testing.T) {
	_, dir := trainAndSave(t)
	loaded, err := LoadClassifier(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(loaded.Schema()) != 10 {
		t.Fatalf("expected 10 columns, got %d", len(loaded.Schema()))
	}

	if _, err := loaded.Predict(make([]float64, 9)); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("expected dimension mismatch, got %v", err)
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	_, dir := trainAndSave(t)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}
