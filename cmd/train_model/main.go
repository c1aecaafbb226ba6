package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"penguinclass/dataset"
	"penguinclass/db"
	"penguinclass/ml"
)

func main() {
	dataPath := flag.String("data", "./data/penguins.csv", "training dataset CSV path")
	outDir := flag.String("out", "./models", "artifact output directory")
	dbPath := flag.String("db", "", "optional sqlite path for the training run log")
	seed := flag.Int64("seed", 42, "train/test split seed")
	rounds := flag.Int("rounds", 50, "boosting rounds")
	maxDepth := flag.Int("max_depth", 4, "max tree depth")
	learningRate := flag.Float64("learning_rate", 0.3, "shrinkage per round")
	testRatio := flag.Float64("test_ratio", 0.2, "held-out test fraction")
	flag.Parse()

	records, stats, err := dataset.Load(*dataPath)
	if err != nil {
		log.Fatalf("failed to load dataset: %v", err)
	}
	log.Printf("loaded %d rows, kept %d, dropped %d incomplete", stats.Total, stats.Kept, stats.Dropped)

	classifier, result, err := ml.Train(records, ml.TrainConfig{
		Seed:         *seed,
		Rounds:       *rounds,
		MaxDepth:     *maxDepth,
		LearningRate: *learningRate,
		TestRatio:    *testRatio,
	})
	if err != nil {
		log.Fatalf("failed to train model: %v", err)
	}
	log.Printf("trained on %d records, tested on %d, accuracy=%.4f",
		result.TrainCount, result.TestCount, result.Accuracy)
	log.Printf("species classes: %v", result.Classes)

	if err := classifier.Save(*outDir); err != nil {
		log.Fatalf("failed to save artifact: %v", err)
	}

	if *dbPath != "" {
		if err := db.InitDB(*dbPath); err != nil {
			log.Fatalf("failed to open training log db: %v", err)
		}
		defer db.Close()
		if err := db.SaveTrainingRun(db.TrainingRun{
			DataPoints:     stats.Kept,
			TrainCount:     result.TrainCount,
			TestCount:      result.TestCount,
			Accuracy:       result.Accuracy,
			Seed:           *seed,
			SpeciesClasses: strings.Join(result.Classes, ","),
		}); err != nil {
			log.Fatalf("failed to record training run: %v", err)
		}
	}

	fmt.Printf("artifact saved to %s\n", *outDir)
}
