package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"skillsage/interview/internal/config"
	"skillsage/interview/internal/engine"
	"skillsage/interview/internal/handlers"
	"skillsage/interview/internal/jobs"
	"skillsage/interview/internal/llm"
	_ "skillsage/interview/internal/llm/gemini"
	"skillsage/interview/internal/metrics"
	"skillsage/interview/internal/models"
	"skillsage/interview/internal/resume"
	"skillsage/interview/internal/routers"
	"skillsage/interview/internal/transcripts"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func registerRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler, healthHandler *handlers.HealthHandler) {
	routers.HealthRoutes(router, healthHandler)
	routers.SessionRoutes(router, sessionHandler)
}

// Helper functions for environment variables
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// initDatabase initializes the PostgreSQL database connection
func initDatabase() (*gorm.DB, error) {
	host := getEnv("POSTGRES_HOST", "localhost")
	user := getEnv("POSTGRES_USER", "postgres")
	password := getEnv("POSTGRES_PASSWORD", "postgres")
	dbname := getEnv("POSTGRES_DB", "postgres")
	port := getEnv("POSTGRES_PORT", "5432")
	sslmode := getEnv("POSTGRES_SSLMODE", "disable")

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Interview templates are owned by the admin service but migrated here
	// too so the engine runs standalone in development.
	err = db.AutoMigrate(
		&models.Interview{},
		&models.InterviewInstance{},
		&models.InterviewExchange{},
		&models.EvalMetrics{},
		&models.Resume{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	logger.Info("Configuration loaded",
		zap.String("provider", cfg.Provider),
		zap.Int("rephrase_budget", cfg.RephraseBudget))

	// generation gateway based on configuration
	gateway, err := llm.NewGateway(cfg.Provider)
	if err != nil {
		logger.Fatal("Failed to initialize generation gateway", zap.Error(err))
	}

	db, err := initDatabase()
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	resumeStore := resume.NewStore(db)
	sessionEngine := engine.New(db, gateway, resumeStore, logger, cfg.RephraseBudget)

	sessionHandler := handlers.NewSessionHandler(sessionEngine, logger)
	healthHandler := handlers.NewHealthHandler(gateway, db, cfg)

	// transcript exporter job
	exporterConfig := &jobs.ExporterConfig{
		Schedule:      getEnv("TRANSCRIPT_EXPORT_SCHEDULE", "0 2 * * *"),
		ExportDir:     getEnv("TRANSCRIPT_EXPORT_DIR", "./exports"),
		ExportEnabled: getEnv("TRANSCRIPT_EXPORT_ENABLED", "false") == "true",
	}
	exporterJob := jobs.NewTranscriptExporterJob(transcripts.NewManager(db), exporterConfig)
	if exporterConfig.ExportEnabled {
		if err := exporterJob.Start(); err != nil {
			logger.Error("Failed to start transcript exporter job", zap.Error(err))
		} else {
			logger.Info("Transcript exporter job started", zap.String("schedule", exporterConfig.Schedule))
		}
	}

	router := chi.NewRouter()

	// cors middleware
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization", "X-Candidate-ID"},
		AllowCredentials: true,
	}))

	router.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer, middleware.Timeout(60*time.Second))
	router.Use(metrics.Middleware("interview"))

	registerRoutes(router, sessionHandler, healthHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port

	// http server with timeouts
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// starting server in a goroutine
	go func() {
		logger.Info("Interview service starting", zap.String("addr", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// wait for interrupt signal to gracefully shutdown the server
	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)
	<-shutdownChan

	logger.Info("Interview service shutting down...")

	if exporterConfig.ExportEnabled {
		exporterJob.Stop()
		logger.Info("Transcript exporter job stopped")
	}

	// graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("Interview service exited")
}
