package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/persona-match/internal/auth"
	"github.com/fadilmartias/persona-match/internal/config"
	"github.com/fadilmartias/persona-match/internal/domain/fiber/handler"
	"github.com/fadilmartias/persona-match/internal/matching"
	"github.com/fadilmartias/persona-match/internal/middleware"
	"github.com/fadilmartias/persona-match/internal/model"
	"github.com/fadilmartias/persona-match/internal/repository"
	"github.com/fadilmartias/persona-match/internal/service"
	"github.com/fadilmartias/persona-match/internal/usecase"
	"github.com/fadilmartias/persona-match/internal/util"
	"github.com/fadilmartias/persona-match/internal/worker"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	if err := godotenv.Load(); err != nil {
		logrus.Warn("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	authConfig := config.LoadAuthConfig()
	configureLogging(appConfig)
	util.Debug = !appConfig.IsProduction()

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}
			return util.ErrorResponse(ctx, util.ErrorResponseFormat{Code: code, Message: message}, err)
		},
	})
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(120, 1*time.Minute))

	db := ConnectDB(appConfig)

	userRepo := repository.NewUserRepository(db)
	matchRepo := repository.NewMatchRepository(db)

	agent := service.NewAgentService(config.LoadAgentConfig(), userRepo)
	llm, embedder := buildModelServices(ctx, appConfig)

	tokens := auth.NewTokenManager(authConfig)
	session := middleware.SessionAuth(tokens, true)
	launcher := worker.NewLauncher()

	strategies := matching.Selector{
		Personal:  matching.NewPersonalAgentStrategy(agent, userRepo),
		Simulated: matching.NewSimulatedAgentStrategy(llm),
	}
	matchUC := usecase.NewMatchUsecase(userRepo, matchRepo, strategies, launcher)
	userUC := usecase.NewUserUsecase(userRepo, matchRepo, tokens, embedder)
	personalityUC := usecase.NewPersonalityUsecase(userRepo, agent)

	handler.NewAuthHandler(userUC, session, authConfig.TokenTTL, appConfig.IsProduction()).RegisterRoutes(app)
	handler.NewUserHandler(userUC, session).RegisterRoutes(app)
	handler.NewPersonalityHandler(personalityUC, session).RegisterRoutes(app)
	handler.NewMatchHandler(matchUC, session).RegisterRoutes(app)

	scheduler, err := worker.StartScheduler(userUC, appConfig.EmbeddingSweepInterval)
	if err != nil {
		logrus.Fatal(err)
	}

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			logrus.Debugf("Active goroutines: %d", runtime.NumGoroutine())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	drained := shutdownOnSignal(quit, app, scheduler, launcher, 30*time.Second)

	logrus.Infof("Server running on %s", appConfig.Port)
	if err := app.Listen(appConfig.Port); err != nil {
		logrus.Fatal(err)
	}
	// Listen returns as soon as the server stops; running matches still need
	// their terminal write.
	<-drained
}

type stopper interface {
	ShutdownWithTimeout(timeout time.Duration) error
}

type taskDrainer interface {
	Wait(ctx context.Context) error
}

// shutdownOnSignal stops the scheduler and the server on the first signal,
// then waits up to drainTimeout for background tasks. The returned channel is
// closed once that sequence is over.
func shutdownOnSignal(quit <-chan os.Signal, server stopper, scheduler interface{ Shutdown() error }, tasks taskDrainer, drainTimeout time.Duration) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-quit
		logrus.Info("Shutting down")
		if err := scheduler.Shutdown(); err != nil {
			logrus.Warnf("scheduler shutdown: %v", err)
		}
		if err := server.ShutdownWithTimeout(10 * time.Second); err != nil {
			logrus.Warnf("server shutdown: %v", err)
		}
		waitCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
		if err := tasks.Wait(waitCtx); err != nil {
			logrus.Warnf("matches still running at exit: %v", err)
		}
	}()
	return done
}

func configureLogging(appConfig *config.AppConfig) {
	if appConfig.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		logrus.SetLevel(logrus.InfoLevel)
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetLevel(logrus.DebugLevel)
}

// buildModelServices picks the generic model backend. Embeddings need Gemini;
// without a Gemini key the backfill job is a no-op.
func buildModelServices(ctx context.Context, appConfig *config.AppConfig) (service.LLMServiceInterface, service.EmbeddingServiceInterface) {
	geminiConfig := config.LoadGeminiConfig()
	var gemini *service.GeminiService
	if geminiConfig.APIKey != "" {
		g, err := service.NewGeminiService(ctx, geminiConfig)
		if err != nil {
			logrus.Fatal(err)
		}
		gemini = g
	}

	var llm service.LLMServiceInterface
	switch appConfig.LLMProvider {
	case "gemini":
		if gemini == nil {
			logrus.Fatal("LLM_PROVIDER=gemini requires GEMINI_API_KEY")
		}
		llm = gemini
	default:
		llm = service.NewOpenRouterService(config.LoadOpenRouterConfig())
	}

	if gemini == nil {
		logrus.Warn("GEMINI_API_KEY not set, interest embeddings disabled")
		return llm, nil
	}
	return llm, gemini
}

func ConnectDB(appConfig *config.AppConfig) *gorm.DB {
	dbConfig := config.LoadDBConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Could not connect to database: %v", err)
	}
	pgDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("Could not get database instance: %v", err)
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		logrus.Fatalf("enable pgvector: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Match{}); err != nil {
		logrus.Fatal("migration failed: ", err)
	}
	return db
}
