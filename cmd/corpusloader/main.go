package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"quizverify"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := quizverify.ConfigFromEnv()

	var (
		input   = flag.String("input", "", "JSON array of reference records (required)")
		dbPath  = flag.String("db", cfg.DBPath, "Database path")
		verbose = flag.Bool("verbose", false, "Enable verbose output")
	)

	flag.Parse()

	quizverify.SetVerbose(*verbose)

	if *input == "" {
		log.Fatal("Input file is required. Use -input flag.")
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}

	var records []quizverify.ReferenceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		log.Fatalf("Failed to parse input: %v", err)
	}

	db, err := quizverify.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	loaded, skipped := 0, 0
	for _, rec := range records {
		if rec.CanonicalTranslation == "" {
			log.Printf("Skipping %s: no canonical translation", rec.CompositeKey)
			skipped++
			continue
		}
		if err := db.UpsertReferenceRecord(rec); err != nil {
			log.Printf("Skipping %s: %v", rec.CompositeKey, err)
			skipped++
			continue
		}
		quizverify.VerboseLog("Loaded %s", rec.CompositeKey)
		loaded++
	}

	fmt.Printf("📚 Loaded %d reference records into %s (%d skipped)\n", loaded, *dbPath, skipped)
}
