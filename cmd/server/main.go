package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"screen2doc.backend/internal/config"
	"screen2doc.backend/internal/infrastructure/email"
	"screen2doc.backend/internal/infrastructure/jobs"
	"screen2doc.backend/internal/infrastructure/models"
	"screen2doc.backend/internal/infrastructure/repositories"
	"screen2doc.backend/internal/interfaces/http/handlers"
	"screen2doc.backend/internal/interfaces/http/middleware"
	"screen2doc.backend/internal/metrics"
	"screen2doc.backend/internal/pipeline/gemini"
	"screen2doc.backend/internal/pipeline/ocr"
	"screen2doc.backend/internal/pipeline/sampler"
	"screen2doc.backend/internal/usecases"
	"screen2doc.backend/pkg/jwt"
	"screen2doc.backend/pkg/logger"
	"screen2doc.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		return gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	}
	runServer = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB  = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := loadCfg()

	// Initialize Logger
	initLog(cfg.Server.Env)
	logger.Info(context.Background(), "Logger initialized", zap.String("env", cfg.Server.Env))

	// Initialize Redis; the document cache degrades to database reads when
	// Redis is unavailable.
	var documentCache usecases.DocumentCache
	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Warn(context.Background(), "Redis unavailable, document caching disabled", zap.Error(err))
	} else {
		logger.Info(context.Background(), "Redis initialized")
		documentCache = redis.NewDocumentCache(cfg.Redis.CacheTTL)
	}

	// Set Gin mode
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database using GORM
	dsn := cfg.Database.URL()
	db, err := openDB(dsn)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Printf("Database not available: %v (endpoints will return errors)", err)
	} else {
		log.Println("Connected to PostgreSQL via GORM")
		if err := db.AutoMigrate(
			&models.User{},
			&models.VerificationCode{},
			&models.Video{},
			&models.Analysis{},
		); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	codeRepo := repositories.NewVerificationCodeRepository(db)
	videoRepo := repositories.NewVideoRepository(db)
	analysisRepo := repositories.NewAnalysisRepository(db)

	// Initialize email sender
	var sender email.Sender
	if cfg.SMTP.Host != "" {
		sender = email.NewSMTPSender(cfg.SMTP)
	} else {
		log.Println("SMTP not configured, verification codes will be logged")
		sender = email.LogSender{}
	}

	// Initialize pipeline components
	frameSampler := sampler.New(cfg.Pipeline.FrameDir, cfg.Pipeline.MaxFrames, cfg.Pipeline.SceneThreshold)
	ocrEngine := ocr.NewTesseractEngine("eng")
	extractor := ocr.NewExtractor(ocrEngine, cfg.Pipeline.OCRTimeout)
	geminiClient := gemini.NewClient(cfg.Gemini.BaseURL, cfg.Gemini.APIKey, cfg.Gemini.Model)
	generator := gemini.NewGenerator(geminiClient, cfg.Pipeline.GenerateTimeout)

	// Initialize usecases
	authUsecase := usecases.NewAuthUsecase(userRepo, codeRepo, sender, jwtService)
	videoUsecase := usecases.NewVideoUsecase(
		videoRepo,
		analysisRepo,
		frameSampler,
		extractor,
		generator,
		documentCache,
		collector,
		cfg.Upload.Dir,
		cfg.Upload.MaxSizeBytes,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	videoHandler := handlers.NewVideoHandler(videoUsecase, cfg.Upload.MaxSizeBytes)
	healthHandler := handlers.NewHealthHandler()

	// Auth endpoints are public, keep probing in check
	authLimiter := middleware.NewRateLimiter(rate.Limit(1), 10)
	defer authLimiter.Stop()

	// Start background jobs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cleanupJob := jobs.NewVerificationCodeCleanupJob(codeRepo, frameSampler.WorkDir())
	go cleanupJob.Start(ctx)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(collector))

	registerRoutes(r, routeDeps{
		authHandler:    authHandler,
		videoHandler:   videoHandler,
		healthHandler:  healthHandler,
		authMiddleware: middleware.AuthMiddleware(authUsecase),
		authLimiter:    authLimiter.Middleware(),
		metricsHandler: metrics.Handler(registry),
	})

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down server...")
		cleanupJob.Stop()
		cancel()
	}()

	log.Printf("Screen2Doc backend starting on port %s", cfg.Server.Port)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
