package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/marketing-agent/configs"
	"github.com/maheshrc27/marketing-agent/internal/api/handlers"
	"github.com/maheshrc27/marketing-agent/internal/api/middleware"
	"github.com/maheshrc27/marketing-agent/internal/generator"
	job "github.com/maheshrc27/marketing-agent/internal/jobs"
	"github.com/maheshrc27/marketing-agent/internal/publisher"
	"github.com/maheshrc27/marketing-agent/internal/queue"
	"github.com/maheshrc27/marketing-agent/internal/repository"
	"github.com/maheshrc27/marketing-agent/internal/scheduler"
	"github.com/maheshrc27/marketing-agent/internal/service"
	"github.com/maheshrc27/marketing-agent/internal/trigger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := config.LoadConfig()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel})))

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		fatal("failed to connect to database", err)
	}

	if err := db.Ping(); err != nil {
		fatal("database is unreachable", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	location, err := trigger.LoadLocation(cfg.Scheduler.Timezone, time.UTC)
	if err != nil {
		fatal("invalid SCHEDULER_TIMEZONE", err)
	}

	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	contentRepo := repository.NewContentRepository(db)
	apiKeyRepository := repository.NewApiKeyRepository(db)

	gen := generator.NewOpenAIGenerator(generator.OpenAIConfig{
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.OpenAI.Timeout,
	})
	publishers := publisher.NewDefaultRegistry(&http.Client{}, publisher.Endpoints{
		Telegram: cfg.Publisher.TelegramURL,
		LinkedIn: cfg.Publisher.LinkedInURL,
		Graph:    cfg.Publisher.GraphURL,
	}, cfg.Publisher.Timeout)

	var media service.MediaStore
	if cfg.R2.Enabled() {
		r2Service, err := service.NewR2Service(context.Background(), cfg.R2)
		if err != nil {
			fatal("failed to set up R2", err)
		}
		media = r2Service
	} else {
		slog.Info("R2 is not configured, generated media will not be hosted")
	}

	sch := scheduler.New(scheduler.Options{
		Location:     location,
		Workers:      cfg.Scheduler.Workers,
		MaxInstances: cfg.Scheduler.MaxInstances,
		MisfireGrace: cfg.Scheduler.MisfireGrace,
	})

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	settingsService := service.NewSettingsService(*cfg, userRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepository)
	executionService := service.NewExecutionService(*cfg, scheduleRepo, userRepo, contentRepo, gen, publishers, media)
	contentService := service.NewContentService(*cfg, userRepo, contentRepo, gen, publishers, media)
	scheduleService := service.NewScheduleService(*cfg, scheduleRepo, userRepo, sch)

	// cron jobs
	reconcileJob := job.NewReconcileJob(scheduleRepo, sch, executionService, location)
	reconcileJob.Register(cfg.Scheduler.RefreshInterval)
	reconcileJob.Reconcile(context.Background())
	sch.Start()
	slog.Info("scheduler started", "timezone", location.String(), "jobs", len(sch.JobIDs()))

	// queue
	queueW := queue.NewQueue(contentService)
	queueServer := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: cfg.QueueConcurrency,
	})

	go func() {
		mux := asynq.NewServeMux()
		queueW.RegisterHandlers(mux)

		slog.Info("starting the asynq server")
		if err := queueServer.Run(mux); err != nil {
			fatal("could not start asynq server", err)
		}
	}()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("request failed", "path", c.Path(), "error", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Post("/auth/register", auth.Register)
	app.Post("/auth/login", auth.Login)
	app.Post("/auth/logout", auth.Logout)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(*cfg, userService)
	api.Get("/user/info", user.GetUserInfo)
	api.Delete("/user", user.RemoveUser)

	settings := handlers.NewSettingsHandler(settingsService)
	api.Get("/settings/channels", settings.Channels)
	api.Post("/settings/credentials", settings.UpdateCredentials)
	api.Post("/settings/ai", settings.UpdateAISettings)

	schedules := handlers.NewScheduleHandler(scheduleService)
	api.Get("/schedules", schedules.ListSchedules)
	api.Post("/schedules", schedules.CreateSchedule)
	api.Post("/schedules/update", schedules.UpdateSchedule)
	api.Post("/schedules/toggle", schedules.ToggleSchedule)
	api.Post("/schedules/remove", schedules.RemoveSchedule)
	api.Post("/schedules/run", schedules.RunSchedule)
	api.Post("/schedules/validate-cron", schedules.ValidateCron)
	api.Get("/schedules/cron-examples", schedules.CronExamples)

	content := handlers.NewContentHandler(contentService, client)
	api.Post("/content/generate", content.GenerateContent)
	api.Get("/content", content.ListContent)
	api.Post("/content/publish", content.PublishContent)
	api.Get("/content/test-connection/:channel", content.TestConnection)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	go func() {
		if err := app.Listen(":" + cfg.HTTPPort); err != nil {
			fatal("failed to start server", err)
		}
	}()
	slog.Info("server is running", "port", cfg.HTTPPort)

	gracefulShutdown(app, queueServer, sch, db, cfg.ShutdownTimeout)
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}

func closeDB(db *sql.DB) {
	slog.Info("closing database connection")
	if err := db.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}

func gracefulShutdown(app *fiber.App, queueServer *asynq.Server, sch *scheduler.Scheduler, db *sql.DB, timeout time.Duration) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("shutting down server")

	if err := app.ShutdownWithTimeout(timeout); err != nil {
		slog.Error("failed to shut down http server", "error", err)
	}

	queueServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := sch.Stop(ctx); err != nil {
		slog.Warn("scheduler did not drain before the deadline", "error", err)
	}

	closeDB(db)
	slog.Info("server shutdown complete")
}
