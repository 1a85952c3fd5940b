package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"quizverify"

	"github.com/joho/godotenv"
	openai "github.com/sashabaranov/go-openai"
)

func main() {
	_ = godotenv.Load()
	cfg := quizverify.ConfigFromEnv()

	var (
		subject      = flag.String("subject", "", "Subject ID the quiz is generated for")
		unit         = flag.Int("unit", 0, "Unit number (required)")
		unitName     = flag.String("unit-name", "", "Unit name, for logs only")
		from         = flag.Int("from", 0, "First ordinal of the range")
		to           = flag.Int("to", 0, "Last ordinal of the range")
		numQuestions = flag.Int("questions", 10, "Number of questions to generate")
		difficulty   = flag.String("difficulty", "medium", "Difficulty level (easy, medium, hard)")
		dbPath       = flag.String("db", cfg.DBPath, "Database path")
		logDir       = flag.String("log-dir", cfg.LogDir, "Directory for per-quiz run logs (empty disables)")
		outputFile   = flag.String("output", "", "Output file for the verified quiz JSON (default: stdout)")
		apiKey       = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		verbose      = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	quizverify.SetVerbose(*verbose)

	if *unit == 0 {
		log.Fatal("Unit is required. Use -unit flag.")
	}

	if *apiKey == "" {
		*apiKey = cfg.OpenAIAPIKey
		if *apiKey == "" {
			log.Fatal("OpenAI API key is required. Use -api-key flag or set OPENAI_API_KEY environment variable.")
		}
	}

	db, err := quizverify.OpenDB(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	clientCfg := openai.DefaultConfig(*apiKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}
	generator := quizverify.NewContentGeneratorWithConfig(clientCfg)
	generator.SetModel(cfg.Model)

	pipeline := quizverify.NewPipeline(generator, quizverify.NewEngine(cfg.EngineOptions()...), db)
	pipeline.SetLogDir(*logDir)

	req := quizverify.GenerationRequest{
		SubjectID:    *subject,
		UnitNumber:   *unit,
		UnitName:     *unitName,
		FromOrdinal:  *from,
		ToOrdinal:    *to,
		NumQuestions: *numQuestions,
		Difficulty:   *difficulty,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := pipeline.GenerateVerifiedQuiz(ctx, req)
	if err != nil {
		log.Fatalf("Failed to generate quiz: %v", err)
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal quiz: %v", err)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Quiz saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}

	if *verbose {
		log.Printf("Quiz %s: %d corrections applied", result.Quiz.ID, result.Summary.CorrectionsApplied)
	}
}
