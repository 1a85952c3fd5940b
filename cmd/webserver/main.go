package main

import (
	"log"
	"net/http"

	"quizverify"

	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	quizverify.SetVerbose(true)
	cfg := quizverify.ConfigFromEnv()

	db, err := quizverify.OpenDB(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	if cfg.SessionKey == "" {
		log.Fatal("SESSION_KEY environment variable is required")
	}
	store := sessions.NewCookieStore([]byte(cfg.SessionKey))
	store.Options.HttpOnly = true

	engine := quizverify.NewEngine(cfg.EngineOptions()...)
	server := NewServer(db, engine, store)
	server.pipeline.SetLogDir(cfg.LogDir)

	log.Printf("Starting server on %s", cfg.HTTPAddr)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, server.Routes()))
}
