package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/you/trainticker/handlers"
	"github.com/you/trainticker/models"
	"github.com/you/trainticker/repository"
	"github.com/you/trainticker/service"
)

func main() {
	// Load base .env first, then .env.local (which overrides for local development)
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	var (
		trainRepo    service.TrainRepository
		scheduleRepo service.ScheduleRepository
		pinger       handlers.Pinger
	)

	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		// Postgres backend; schema managed externally
		log.Println("Connecting to Postgres database")
		pg, err := repository.NewPostgresDB(databaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize Postgres database: %v", err)
		}
		defer pg.Close()
		log.Println("Postgres database connection established")

		trainRepo = repository.NewPostgresTrainRepository(pg.Pool())
		scheduleRepo = repository.NewPostgresScheduleRepository(pg.Pool())
		pinger = pg
	} else {
		// SQLite backend (default): owns its schema, optional sample seed
		dbPath := os.Getenv("SQLITE_DATABASE")
		if dbPath == "" {
			dbPath = "./data/trainticker.db"
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			log.Fatalf("Failed to create database directory: %v", err)
		}
		log.Printf("Connecting to SQLite database: %s", dbPath)

		sqliteDB, err := repository.NewSQLiteDB(dbPath)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite database: %v", err)
		}
		defer sqliteDB.Close()
		log.Println("SQLite database connection established")

		if err := repository.EnsureSchema(context.Background(), sqliteDB.GetDB()); err != nil {
			log.Fatalf("Failed to ensure database schema: %v", err)
		}

		trains := repository.NewSQLiteTrainRepository(sqliteDB.GetDB())
		schedules := repository.NewSQLiteScheduleRepository(sqliteDB.GetDB())

		if os.Getenv("SEED_SAMPLE_DATA") == "true" {
			today := time.Now().Format(models.DateLayout)
			if err := repository.SeedSampleData(context.Background(), trains, schedules, today); err != nil {
				log.Fatalf("Failed to seed sample data: %v", err)
			}
		}

		trainRepo = trains
		scheduleRepo = schedules
		pinger = sqliteDB
	}

	trainService := service.NewTrainService(scheduleRepo, trainRepo)
	trainHandler := handlers.NewTrainHandler(trainService)
	healthHandler := handlers.NewHealthHandler(pinger)

	// Setup router
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:8000"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	// Health check endpoint with database connectivity test
	r.Get("/health", healthHandler.GetHealth)

	// Plain liveness endpoints
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Train Ticker API is running"))
	})

	// Schedule query routes
	r.Get("/api/trains", trainHandler.GetTodaysTrains)
	r.Get("/api/trains/upcoming", trainHandler.GetUpcomingTrains)
	r.Get("/api/trains/delayed", trainHandler.GetDelayedTrains)
	r.Get("/api/trains/stats", trainHandler.GetTodaysStats)
	r.Get("/api/trains/time-range", trainHandler.GetTrainsInTimeRange)
	r.Get("/api/trains/destination/{destination}", trainHandler.GetTrainsByDestination)
	r.Get("/api/trains/platform/{platform}", trainHandler.GetTrainsByPlatform)
	r.Get("/api/trains/{date}", trainHandler.GetTrainsByDate)

	// Get port from environment variable, default to 8080
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("API server starting on :%s", port)
	log.Println("Schedule endpoints:")
	log.Println("  GET /api/trains")
	log.Println("  GET /api/trains/{date}")
	log.Println("  GET /api/trains/upcoming")
	log.Println("  GET /api/trains/destination/{destination}")
	log.Println("  GET /api/trains/platform/{platform}")
	log.Println("  GET /api/trains/delayed")
	log.Println("  GET /api/trains/time-range?startTime=HH:mm&endTime=HH:mm")
	log.Println("  GET /api/trains/stats")
	log.Println("Health:")
	log.Println("  GET /health (with database check)")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
