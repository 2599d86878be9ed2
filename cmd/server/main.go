package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/evtimahovich/talentflow/api"
	dbfiles "github.com/evtimahovich/talentflow/db"
	"github.com/evtimahovich/talentflow/internal/config"
	"github.com/evtimahovich/talentflow/internal/db"
	"github.com/evtimahovich/talentflow/internal/identity"
	"github.com/evtimahovich/talentflow/internal/jobs"
	"github.com/evtimahovich/talentflow/internal/pipeline"
	"github.com/evtimahovich/talentflow/internal/repository/sqlite"
	"github.com/evtimahovich/talentflow/internal/scoring"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)
	identity.SetLogger(logger)
	scoring.SetLogger(logger)

	log.Printf("Starting talentflow server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	database, err := db.New(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Migrate(ctx, database, dbfiles.Migrations, dbfiles.SeedFiles); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	repo := sqlite.New(database)

	dataset, err := repo.LoadDataset(ctx)
	if err != nil {
		log.Fatalf("Failed to load pipeline dataset: %v", err)
	}
	engine := pipeline.NewEngine(dataset, repo, logger)
	logger.Info("pipeline loaded",
		slog.Int("companies", len(dataset.Companies)),
		slog.Int("vacancies", len(dataset.Vacancies)),
		slog.Int("candidates", len(dataset.Candidates)))

	var idc *identity.Client
	if cfg.Identity.BaseURL != "" {
		idc, err = identity.NewClient(cfg.Identity, nil)
		if err != nil {
			log.Fatalf("Failed to create identity client: %v", err)
		}
	}

	// background scoring is optional; the pipeline never depends on it
	var pool *jobs.WorkerPool
	var scoringClient *scoring.Client
	if cfg.Scoring.BaseURL != "" {
		scoringClient, err = scoring.NewClient(cfg.Scoring, nil)
		if err != nil {
			log.Fatalf("Failed to create scoring client: %v", err)
		}
		scorer := scoring.NewEngine(scoringClient)

		jobRepo := jobs.NewRepository(database)
		handlers := map[string]jobs.Handler{
			jobs.JobTypeScoreCandidate: scoreHandler(engine, scorer),
		}
		pool = jobs.NewWorkerPool(jobRepo, handlers, logger, cfg.WorkerCount)
		pool.Start(ctx)
	}

	handler := api.SetupRoutes(cfg, version, buildTime, engine, repo, idc, pool)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if pool != nil {
		pool.Stop()
	}
	if scoringClient != nil {
		if err := scoringClient.Close(); err != nil {
			log.Printf("Error closing scoring client: %v", err)
		}
	}
	if err := database.Close(); err != nil {
		log.Printf("Error closing DB: %v", err)
	}

	log.Println("Server exited")
}

// scoreHandler computes a match score for a freshly assigned candidate and
// attaches it to the engine state. A candidate or vacancy that disappeared
// since enqueue drops the job; scoring failures surface so the queue retries.
func scoreHandler(engine *pipeline.Engine, scorer *scoring.Engine) jobs.Handler {
	return func(ctx context.Context, j *jobs.Job) error {
		var p jobs.ScorePayload
		if err := json.Unmarshal(j.Payload, &p); err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}

		candidate, err := engine.Candidate(p.CandidateID)
		if err != nil {
			if pipeline.IsNotFound(err) {
				return nil
			}
			return err
		}
		vacancy, err := engine.Vacancy(p.VacancyID)
		if err != nil {
			if pipeline.IsNotFound(err) {
				return nil
			}
			return err
		}

		analysis, err := scorer.Score(ctx, *candidate, *vacancy)
		if err != nil {
			return fmt.Errorf("score candidate %s: %w", p.CandidateID, err)
		}

		return engine.SetAIAnalysis(ctx, p.CandidateID, *analysis)
	}
}
