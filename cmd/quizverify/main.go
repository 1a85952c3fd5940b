package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"quizverify"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := quizverify.ConfigFromEnv()

	var (
		contentFile = flag.String("content", "", "Quiz document to verify (default: stdin)")
		recordsFile = flag.String("records", "", "JSON array of reference records (overrides -db lookup)")
		dbPath      = flag.String("db", cfg.DBPath, "Database path for the corpus and audit log")
		unit        = flag.Int("unit", 0, "Unit number to load the corpus for")
		from        = flag.Int("from", 0, "First ordinal of the range (0 = open)")
		to          = flag.Int("to", 0, "Last ordinal of the range (0 = open)")
		rulesFile   = flag.String("rules", "", "JSON array of extra relation rules {tag, pattern}")
		subject     = flag.String("subject", "", "Subject ID recorded in the audit log")
		save        = flag.Bool("save", false, "Persist the audit record to the database")
		outputFile  = flag.String("output", "", "Output file for the summary JSON (default: stdout)")
		matchFloor  = flag.Float64("match-floor", cfg.Thresholds.MatchFloor, "Minimum best-match similarity")
		verified    = flag.Float64("verified-floor", cfg.Thresholds.VerifiedFloor, "Similarity at which an answer is verified")
		distinct    = flag.Float64("distinct-ceiling", cfg.Thresholds.DistinctCeiling, "Correction applied only below this answer/candidate similarity")
		workers     = flag.Int("workers", 0, "Batch workers when several files are given as arguments (0 = GOMAXPROCS)")
		verbose     = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	quizverify.SetVerbose(*verbose)

	var (
		db  *quizverify.DB
		err error
	)
	if *recordsFile == "" || *save {
		db, err = quizverify.OpenDB(*dbPath)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.CloseDB()
		if err := db.CreateTables(); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
	}

	records, err := loadRecords(*recordsFile, db, *unit, *from, *to)
	if err != nil {
		log.Fatalf("Failed to load reference records: %v", err)
	}
	if len(records) == 0 {
		log.Printf("Warning: empty corpus, content will pass through unchecked")
	}

	cfg.Thresholds = quizverify.Thresholds{MatchFloor: *matchFloor, VerifiedFloor: *verified, DistinctCeiling: *distinct}
	opts := cfg.EngineOptions()
	if *rulesFile != "" {
		f, err := os.Open(*rulesFile)
		if err != nil {
			log.Fatalf("Failed to open rules file: %v", err)
		}
		extra, err := quizverify.LoadRules(f)
		f.Close()
		if err != nil {
			log.Fatalf("Failed to load rules: %v", err)
		}
		opts = append(opts, quizverify.WithRelationRules(append(quizverify.DefaultRelationRules(), extra...)))
	}

	engine := quizverify.NewEngine(opts...)

	if files := flag.Args(); len(files) > 0 {
		results, err := runBatch(engine, files, records, *workers, *subject)
		if err != nil {
			log.Fatalf("Batch verification failed: %v", err)
		}
		if *save {
			for _, r := range results {
				if err := db.SaveAuditRecord(r.Audit); err != nil {
					log.Fatalf("Failed to save audit record for %s: %v", r.DocumentID, err)
				}
			}
			log.Printf("Saved %d audit records", len(results))
		}
		writeOutput(results, *outputFile)
		return
	}

	content, err := readContent(*contentFile)
	if err != nil {
		log.Fatalf("Failed to read content: %v", err)
	}
	summary := engine.VerifyAndCorrect(content, records)

	if *verbose {
		log.Printf("Checked %d questions: %d reference-related, %d corrected",
			summary.TotalQuestions, summary.ReferenceRelatedQuestions, summary.CorrectionsApplied)
	}

	if *save {
		audit := quizverify.BuildAuditLog(*subject, summary)
		if *unit != 0 {
			audit.Context = &quizverify.VerificationContext{
				SubjectID:  *subject,
				UnitNumber: *unit,
				RangeLabel: quizverify.GenerationRequest{UnitNumber: *unit, FromOrdinal: *from, ToOrdinal: *to}.RangeLabel(),
			}
		}
		if err := db.SaveAuditRecord(audit); err != nil {
			log.Fatalf("Failed to save audit record: %v", err)
		}
		log.Printf("Audit record saved: %s", audit.ID)
	}

	writeOutput(summary, *outputFile)
}

// runBatch verifies every file against the same corpus
func runBatch(engine *quizverify.Engine, files []string, records []quizverify.ReferenceRecord, workers int, subject string) ([]quizverify.BatchResult, error) {
	pool := quizverify.NewQuizPool()
	for _, path := range files {
		content, err := readContent(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		pool.Add(quizverify.Document{
			ID:      path,
			Content: content,
			Records: records,
			Context: quizverify.VerificationContext{SubjectID: subject},
		})
	}
	log.Printf("Verifying %d documents", pool.Size())
	return quizverify.NewBatchVerifier(engine, workers).Run(context.Background(), pool)
}

func writeOutput(v interface{}, outputFile string) {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal summary: %v", err)
	}

	if outputFile != "" {
		if err := os.WriteFile(outputFile, output, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Summary saved to: %s", outputFile)
	} else {
		fmt.Println(string(output))
	}
}

func readContent(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func loadRecords(path string, db *quizverify.DB, unit, from, to int) ([]quizverify.ReferenceRecord, error) {
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var records []quizverify.ReferenceRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return records, nil
	}
	if unit == 0 {
		return nil, fmt.Errorf("either -records or -unit is required")
	}
	return db.GetReferenceRecords(unit, from, to)
}
