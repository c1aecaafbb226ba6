package ml

import (
	"fmt"
	"sort"
	"strings"
)

// MeasurementRecord holds one penguin's measurements. Sex and Island are
// optional and empty when absent; Year is optional and zero when absent.
type MeasurementRecord struct {
	BillLengthMM    float64
	BillDepthMM     float64
	FlipperLengthMM float64
	BodyMassG       float64
	Sex             string
	Island          string
	Year            int
}

// LabeledRecord is a measurement together with its species label, as loaded
// from a training dataset.
type LabeledRecord struct {
	MeasurementRecord
	Species string
}

// FeatureSchema is the ordered list of encoded column names. It is produced
// once by training, persisted in the artifact, and consumed by every encode
// call at inference time. Vector positions are valid only relative to the
// schema that produced them.
type FeatureSchema []string

func numericColumns() []string {
	return []string{
		"bill_length_mm",
		"bill_depth_mm",
		"flipper_length_mm",
		"body_mass_g",
		"year",
	}
}

// BuildSchema enumerates the encoded columns for a set of cleaned records:
// the numeric columns in fixed order, then one indicator column per observed
// sex and island category, each group sorted.
func BuildSchema(records []MeasurementRecord) FeatureSchema {
	sexes := make(map[string]struct{})
	islands := make(map[string]struct{})
	for _, r := range records {
		if r.Sex != "" {
			sexes[r.Sex] = struct{}{}
		}
		if r.Island != "" {
			islands[r.Island] = struct{}{}
		}
	}

	schema := FeatureSchema(numericColumns())
	for _, sex := range sortedKeys(sexes) {
		schema = append(schema, "sex_"+sex)
	}
	for _, island := range sortedKeys(islands) {
		schema = append(schema, "island_"+island)
	}
	return schema
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (s FeatureSchema) hasColumn(name string) bool {
	for _, column := range s {
		if column == name {
			return true
		}
	}
	return false
}

// Encode maps a record onto the schema's column order. A present categorical
// value without a matching indicator column is an unknown category error; an
// absent optional field encodes as zero. Pure and deterministic.
func Encode(record MeasurementRecord, schema FeatureSchema) ([]float64, error) {
	if len(schema) == 0 {
		return nil, fmt.Errorf("%w: empty schema", ErrSchemaMismatch)
	}
	if record.Sex != "" && !schema.hasColumn("sex_"+record.Sex) {
		return nil, fmt.Errorf("%w: sex %q", ErrUnknownCategory, record.Sex)
	}
	if record.Island != "" && !schema.hasColumn("island_"+record.Island) {
		return nil, fmt.Errorf("%w: island %q", ErrUnknownCategory, record.Island)
	}

	vector := make([]float64, len(schema))
	for i, column := range schema {
		switch {
		case column == "bill_length_mm":
			vector[i] = record.BillLengthMM
		case column == "bill_depth_mm":
			vector[i] = record.BillDepthMM
		case column == "flipper_length_mm":
			vector[i] = record.FlipperLengthMM
		case column == "body_mass_g":
			vector[i] = record.BodyMassG
		case column == "year":
			vector[i] = float64(record.Year)
		case strings.HasPrefix(column, "sex_"):
			if record.Sex == strings.TrimPrefix(column, "sex_") {
				vector[i] = 1
			}
		case strings.HasPrefix(column, "island_"):
			if record.Island == strings.TrimPrefix(column, "island_") {
				vector[i] = 1
			}
		default:
			return nil, fmt.Errorf("%w: unsupported column %q", ErrSchemaMismatch, column)
		}
	}
	return vector, nil
}
