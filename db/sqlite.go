package db

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var database *sql.DB

// InitDB opens the SQLite database and creates the tables if needed.
func InitDB(path string) error {
	var err error
	database, err = sql.Open("sqlite3", path)
	if err != nil {
		return err
	}

	query := `
    CREATE TABLE IF NOT EXISTS predictions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        species VARCHAR(20) NOT NULL,
        confidence REAL NOT NULL,
        bill_length_mm REAL NOT NULL,
        bill_depth_mm REAL NOT NULL,
        flipper_length_mm REAL NOT NULL,
        body_mass_g REAL NOT NULL,
        sex VARCHAR(10),
        island VARCHAR(20),
        year INTEGER,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    CREATE TABLE IF NOT EXISTS training_runs (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        data_points INTEGER,
        train_count INTEGER,
        test_count INTEGER,
        accuracy REAL,
        seed INTEGER,
        species_classes TEXT,
        trained_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `

	_, err = database.Exec(query)
	return err
}

// Close closes the database handle.
func Close() error {
	if database == nil {
		return nil
	}
	err := database.Close()
	database = nil
	return err
}

// PredictionRow is one served prediction as stored in the log.
type PredictionRow struct {
	ID              int64     `json:"id"`
	Species         string    `json:"species"`
	Confidence      float64   `json:"confidence"`
	BillLengthMM    float64   `json:"bill_length_mm"`
	BillDepthMM     float64   `json:"bill_depth_mm"`
	FlipperLengthMM float64   `json:"flipper_length_mm"`
	BodyMassG       float64   `json:"body_mass_g"`
	Sex             string    `json:"sex,omitempty"`
	Island          string    `json:"island,omitempty"`
	Year            int       `json:"year,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// SavePrediction appends a prediction to the log.
func SavePrediction(row PredictionRow) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO predictions (species, confidence, bill_length_mm, bill_depth_mm,
            flipper_length_mm, body_mass_g, sex, island, year, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.Species, row.Confidence, row.BillLengthMM, row.BillDepthMM,
		row.FlipperLengthMM, row.BodyMassG, row.Sex, row.Island, row.Year, time.Now())
	return err
}

// QueryPredictions returns the most recent predictions, newest first.
func QueryPredictions(limit int) ([]PredictionRow, error) {
	if database == nil {
		return nil, errors.New("database not initialized")
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := database.Query(`
        SELECT id, species, confidence, bill_length_mm, bill_depth_mm,
               flipper_length_mm, body_mass_g, sex, island, year, created_at
        FROM predictions
        ORDER BY id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var predictions []PredictionRow
	for rows.Next() {
		var p PredictionRow
		var sex, island sql.NullString
		var year sql.NullInt64
		err := rows.Scan(&p.ID, &p.Species, &p.Confidence, &p.BillLengthMM, &p.BillDepthMM,
			&p.FlipperLengthMM, &p.BodyMassG, &sex, &island, &year, &p.CreatedAt)
		if err != nil {
			return nil, err
		}
		if sex.Valid {
			p.Sex = sex.String
		}
		if island.Valid {
			p.Island = island.String
		}
		if year.Valid {
			p.Year = int(year.Int64)
		}
		predictions = append(predictions, p)
	}
	return predictions, rows.Err()
}

// TrainingRun records one offline training run.
type TrainingRun struct {
	DataPoints     int
	TrainCount     int
	TestCount      int
	Accuracy       float64
	Seed           int64
	SpeciesClasses string
}

// SaveTrainingRun appends a training run to the history.
func SaveTrainingRun(run TrainingRun) error {
	if database == nil {
		return errors.New("database not initialized")
	}
	_, err := database.Exec(`
        INSERT INTO training_runs (data_points, train_count, test_count, accuracy, seed, species_classes, trained_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.DataPoints, run.TrainCount, run.TestCount, run.Accuracy, run.Seed, run.SpeciesClasses, time.Now())
	return err
}
