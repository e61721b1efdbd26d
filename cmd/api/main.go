// @title Quiz Pipeline API
// @version 1.0
// @description Quiz completion pipeline: scoring, attempt recording, streaks, badges, quotas and course progress.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "quiz-pipeline/cmd/api/docs"
	"quiz-pipeline/internal/adapter"
	"quiz-pipeline/internal/cache"
	"quiz-pipeline/internal/config"
	"quiz-pipeline/internal/database"
	"quiz-pipeline/internal/dispatch"
	"quiz-pipeline/internal/domain"
	"quiz-pipeline/internal/handler"
	"quiz-pipeline/internal/logger"
	"quiz-pipeline/internal/middleware"
	"quiz-pipeline/internal/repository"
	"quiz-pipeline/internal/service"
	"quiz-pipeline/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Connect to database
	db, err := database.NewSQLXOracleDB(rootCtx, cfg.GetDSN(), database.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedisClient(rootCtx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// In-process caches; janitors stop with rootCtx
	quizCache := cache.NewTTLCache[*domain.Quiz](cfg.Cache.SweepInterval)
	linkCache := cache.NewTTLCache[*domain.CourseQuizLink](cfg.Cache.SweepInterval)
	go quizCache.Run(rootCtx)
	go linkCache.Run(rootCtx)

	// Initialize repositories
	quizRepository := repository.NewQuizDatabaseAdapter(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)
	userRepository := repository.NewSQLXUserRepository(db)
	badgeRepository := repository.NewSQLXBadgeRepository(db)
	usageRepository := repository.NewSQLXUsageLimitRepository(db)
	courseRepository := repository.NewSQLXCourseRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Side-effect workers
	dispatcher := dispatch.New(dispatch.Config{
		Workers:     cfg.Pipeline.Workers,
		QueueSize:   cfg.Pipeline.QueueSize,
		TaskTimeout: cfg.Pipeline.TaskTimeout,
	}, appLogger.Named("dispatch"))
	dispatcher.Start()

	// Initialize services
	loc := cfg.Location()
	attemptTx := domain.TxOptions{MaxWait: cfg.Pipeline.TxMaxWait, Timeout: cfg.Pipeline.TxTimeout}
	progressTx := domain.TxOptions{MaxWait: cfg.Pipeline.TxMaxWait, Timeout: cfg.Pipeline.ProgressTimeout}

	streakService := service.NewStreakService(userRepository, loc)
	usageService := service.NewUsageLimitService(usageRepository, userRepository, loc)
	submissionService := service.NewSubmissionService(service.SubmissionDeps{
		QuizRepo:    quizRepository,
		Recorder:    service.NewAttemptRecorder(quizRepository, attemptRepository, txManager, attemptTx),
		Streaks:     streakService,
		Badges:      service.NewBadgeService(badgeRepository, attemptRepository),
		Usage:       usageService,
		Progress:    service.NewCourseProgressService(courseRepository, txManager, progressTx, linkCache, cfg.Cache.CourseLinkTTL),
		Performance: service.NewPerformanceTracker(cacheAdapter, cfg.Adaptive.TTL),
		Dispatcher:  dispatcher,
		QuizCache:   quizCache,
	}, cfg)
	tokenService := service.NewTokenService(cfg.JWT)
	appLogger.Info("Services initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(cfg.IsProduction()),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app, handler.Handlers{
		Submission: handler.NewSubmissionHandler(submissionService, validation.NewValidator()),
		Usage:      handler.NewUsageHandler(usageService),
		Streak:     handler.NewStreakHandler(streakService),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"db":    db,
			"redis": handler.PingFunc(cacheAdapter.Ping),
		}),
	}, tokenService)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := dispatcher.Shutdown(ctx); err != nil {
		appLogger.Warn("Side-effect queue not fully drained", zap.Error(err))
	}
	stopBackground()
	appLogger.Info("Server exited gracefully")
}
