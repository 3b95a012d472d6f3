package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"ideaverse/adapters/llm"
	"ideaverse/adapters/postgres"
	"ideaverse/ai"
	"ideaverse/app"
	"ideaverse/internal/config"
	"ideaverse/ui"
)

func main() {
	// Load .env file if present; real env vars win
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] no .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] invalid configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("[Main] database connection failed: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("[Main] schema bootstrap failed: %v", err)
	}

	repo := postgres.NewSessionRepository(db)

	streamer, err := llm.NewStreamClient(llm.Config{
		APIKey:  cfg.AI.APIKey,
		BaseURL: cfg.AI.BaseURL,
		Timeout: cfg.AI.Timeout,
	})
	if err != nil {
		log.Fatalf("[Main] completion client setup failed: %v", err)
	}

	prompts := ai.NewPromptManager(cfg.AI.PromptsDir)
	hub := ui.NewSSEHub()

	engine := app.NewEngine(repo, streamer, prompts, app.EngineConfig{
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Locale:      cfg.AI.Locale,
	}, hub)

	// Restore the last active session, if any
	if session, err := engine.LoadCurrentSession(ctx); err != nil {
		log.Printf("[Main] could not restore current session: %v", err)
	} else if session != nil {
		log.Printf("[Main] restored session %s at step %d", session.ID, session.CurrentStep)
	}

	if cfg.Profiling.Enabled {
		go func() {
			addr := ":" + cfg.Profiling.Port
			log.Printf("[Main] ops server listening on %s", addr)
			if err := http.ListenAndServe(addr, ui.NewOpsRouter(engine)); err != nil {
				log.Printf("[Main] ops server failed: %v", err)
			}
		}()
	}

	server := ui.NewServer(engine, hub, cfg.Server.GinMode)
	if err := server.Start(cfg.Server.Port); err != nil {
		log.Fatalf("[Main] server failed: %v", err)
	}
}
