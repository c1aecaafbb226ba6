// Package dataset loads the penguins CSV used by the offline trainer.
package dataset

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"penguinclass/ml"
)

// Stats counts rows seen and the incomplete rows excluded. Incompleteness is
// exclusion, not imputation: a row missing any feature or label cell is
// dropped whole.
type Stats struct {
	Total   int
	Kept    int
	Dropped int
}

var requiredColumns = []string{
	"species", "island", "bill_length_mm", "bill_depth_mm",
	"flipper_length_mm", "body_mass_g", "sex", "year",
}

var (
	lowerCaser = cases.Lower(language.English)
	titleCaser = cases.Title(language.English)
)

// Load reads a palmerpenguins-format CSV and returns the complete records.
// Raw categoricals arrive in inconsistent casing (MALE, male, Male), so sex
// is folded to lower case and island to title case before they become
// training categories.
func Load(path string) ([]ml.LabeledRecord, Stats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, Stats{}, fmt.Errorf("missing column %q in %s", name, path)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read rows: %w", err)
	}

	var records []ml.LabeledRecord
	stats := Stats{Total: len(rows)}
	for _, row := range rows {
		record, ok := parseRow(row, columns)
		if !ok {
			stats.Dropped++
			continue
		}
		stats.Kept++
		records = append(records, record)
	}
	return records, stats, nil
}

func parseRow(row []string, columns map[string]int) (ml.LabeledRecord, bool) {
	cell := func(name string) string {
		idx := columns[name]
		if idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	species := cell("species")
	sex := cell("sex")
	island := cell("island")
	if missing(species) || missing(sex) || missing(island) {
		return ml.LabeledRecord{}, false
	}

	billLength, ok := parseMeasurement(cell("bill_length_mm"))
	if !ok {
		return ml.LabeledRecord{}, false
	}
	billDepth, ok := parseMeasurement(cell("bill_depth_mm"))
	if !ok {
		return ml.LabeledRecord{}, false
	}
	flipperLength, ok := parseMeasurement(cell("flipper_length_mm"))
	if !ok {
		return ml.LabeledRecord{}, false
	}
	bodyMass, ok := parseMeasurement(cell("body_mass_g"))
	if !ok {
		return ml.LabeledRecord{}, false
	}
	year, err := strconv.Atoi(cell("year"))
	if err != nil || year <= 0 {
		return ml.LabeledRecord{}, false
	}

	return ml.LabeledRecord{
		MeasurementRecord: ml.MeasurementRecord{
			BillLengthMM:    billLength,
			BillDepthMM:     billDepth,
			FlipperLengthMM: flipperLength,
			BodyMassG:       bodyMass,
			Sex:             lowerCaser.String(sex),
			Island:          titleCaser.String(island),
			Year:            year,
		},
		Species: titleCaser.String(species),
	}, true
}

func parseMeasurement(raw string) (float64, bool) {
	if missing(raw) {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

func missing(raw string) bool {
	return raw == "" || raw == "NA" || raw == "NaN"
}
