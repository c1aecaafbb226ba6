package ml

import "errors"

var (
	// ErrUnknownCategory is returned when a record carries a categorical value
	// that has no indicator column in the schema.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrDimensionMismatch is returned when a feature vector's length does not
	// match the loaded schema's length.
	ErrDimensionMismatch = errors.New("feature dimension mismatch")

	// ErrArtifactCorrupt is returned when a model artifact cannot be deserialized.
	ErrArtifactCorrupt = errors.New("model artifact corrupt")

	// ErrSchemaMismatch is returned when the artifact's metadata and parameters
	// are internally inconsistent.
	ErrSchemaMismatch = errors.New("model artifact schema mismatch")

	// ErrInsufficientClasses is returned when training data contains fewer than
	// two distinct species after cleaning.
	ErrInsufficientClasses = errors.New("insufficient label classes")
)
