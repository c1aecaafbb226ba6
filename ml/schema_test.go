package ml

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildSchemaOrder(t *testing.T) {
	records := []MeasurementRecord{
		{BillLengthMM: 39.1, BillDepthMM: 18.7, FlipperLengthMM: 181, BodyMassG: 3750, Sex: "male", Island: "Torgersen", Year: 2007},
		{BillLengthMM: 46.5, BillDepthMM: 14.5, FlipperLengthMM: 213, BodyMassG: 4400, Sex: "female", Island: "Biscoe", Year: 2008},
		{BillLengthMM: 49.2, BillDepthMM: 18.2, FlipperLengthMM: 195, BodyMassG: 4400, Sex: "male", Island: "Dream", Year: 2009},
	}

	schema := BuildSchema(records)
	expected := FeatureSchema{
		"bill_length_mm", "bill_depth_mm", "flipper_length_mm", "body_mass_g", "year",
		"sex_female", "sex_male",
		"island_Biscoe", "island_Dream", "island_Torgersen",
	}
	if !reflect.DeepEqual(schema, expected) {
		t.Fatalf("unexpected schema order: %v", schema)
	}
}

func TestEncodeKnownCategories(t *testing.T) {
	schema := FeatureSchema{
		"bill_length_mm", "bill_depth_mm", "flipper_length_mm", "body_mass_g", "year",
		"sex_female", "sex_male",
		"island_Biscoe", "island_Dream", "island_Torgersen",
	}
	record := MeasurementRecord{
		BillLengthMM:    39.1,
		BillDepthMM:     18.7,
		FlipperLengthMM: 181,
		BodyMassG:       3750,
		Sex:             "male",
		Island:          "Torgersen",
		Year:            2007,
	}

	vector, err := Encode(record, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := []float64{39.1, 18.7, 181, 3750, 2007, 0, 1, 0, 0, 1}
	if !reflect.DeepEqual(vector, expected) {
		t.Fatalf("unexpected vector: %v", vector)
	}
}

func TestEncodeMissingOptionalsZeroFill(t *testing.T) {
	schema := FeatureSchema{
		"bill_length_mm", "bill_depth_mm", "flipper_length_mm", "body_mass_g", "year",
		"sex_female", "sex_male",
	}
	record := MeasurementRecord{BillLengthMM: 39.1, BillDepthMM: 18.7, FlipperLengthMM: 181, BodyMassG: 3750}

	vector, err := Encode(record, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 4; i < len(vector); i++ {
		if vector[i] != 0 {
			t.Fatalf("expected zero fill at %d, got %v", i, vector)
		}
	}
}

func TestEncodeUnknownCategory(t *testing.T) {
	schema := FeatureSchema{
		"bill_length_mm", "bill_depth_mm", "flipper_length_mm", "body_mass_g", "year",
		"sex_female", "sex_male",
	}
	record := MeasurementRecord{BillLengthMM: 39.1, BillDepthMM: 18.7, FlipperLengthMM: 181, BodyMassG: 3750, Sex: "unknown"}

	if _, err := Encode(record, schema); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("expected unknown category error, got %v", err)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	schema := FeatureSchema{
		"bill_length_mm", "bill_depth_mm", "flipper_length_mm", "body_mass_g", "year",
		"sex_female", "sex_male",
		"island_Biscoe", "island_Dream", "island_Torgersen",
	}
	record := MeasurementRecord{
		BillLengthMM: 44.5, BillDepthMM: 17.1, FlipperLengthMM: 200, BodyMassG: 4200,
		Sex: "female", Island: "Dream", Year: 2009,
	}

	first, err := Encode(record, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Encode(record, schema)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("encode not deterministic: %v vs %v", first, second)
	}
}

func TestEncodeEmptySchema(t *testing.T) {
	if _, err := Encode(MeasurementRecord{}, nil); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch error, got %v", err)
	}
}
