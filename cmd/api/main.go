package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"testboard/internal/adapter"
	"testboard/internal/cache"
	"testboard/internal/config"
	"testboard/internal/database"
	"testboard/internal/domain"
	"testboard/internal/handler"
	"testboard/internal/logger"
	"testboard/internal/middleware"
	"testboard/internal/repository"
	"testboard/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXPostgresDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepository := repository.NewSQLXUserRepository(db)
	testRepository := repository.NewSQLXTestRepository(db)
	attemptRepository := repository.NewSQLXAttemptRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Stats cache is optional; the service degrades to direct queries when
	// Redis is not configured.
	var statsCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		statsCache = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Stats cache enabled", zap.String("address", cfg.Redis.Address))
	} else {
		appLogger.Info("Stats cache disabled, redis.address not configured")
	}

	// Initialize services
	authService, err := service.NewAuthService(userRepository, cfg)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	testService := service.NewTestService(userRepository, testRepository, txManager)
	attemptService := service.NewAttemptService(userRepository, testRepository, attemptRepository, txManager, statsCache)
	statsService := service.NewStatsService(userRepository, testRepository, attemptRepository, statsCache, cfg.Stats.CacheTTL)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	testHandler := handler.NewTestHandler(testService)
	attemptHandler := handler.NewAttemptHandler(attemptService)
	statsHandler := handler.NewStatsHandler(statsService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization,Accept-Language", MaxAge: 300}))
	app.Use(recover.New())
	app.Use(middleware.Locale())

	// API group
	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", middleware.Protected(authService), authHandler.Me)

	// Test routes (all protected)
	testGroup := apiGroup.Group("/tests", middleware.Protected(authService))
	testGroup.Get("/", testHandler.List)
	testGroup.Post("/", testHandler.Create)
	testGroup.Get("/:id", testHandler.Get)
	testGroup.Put("/:id", testHandler.Update)
	testGroup.Delete("/:id", testHandler.Delete)
	testGroup.Post("/:id/start", attemptHandler.Start)
	testGroup.Post("/:id/submit", attemptHandler.Submit)
	testGroup.Get("/:id/stats", statsHandler.Stats)
	testGroup.Get("/:id/stats/export", statsHandler.Export)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
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
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
