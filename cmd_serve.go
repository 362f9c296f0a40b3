package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habitat-nav/handlers"
	"habitat-nav/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func serveCmd() *cobra.Command {
	var envFile string
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	c.Flags().StringVar(&envFile, "env", ".env", "dotenv file loaded before reading the environment")
	return c
}

func runServe(ctx context.Context, envFile string) error {
	// .env 파일 로드 (없으면 환경 변수만 사용)
	envErr := godotenv.Load(envFile)

	cfg := services.LoadConfig()
	logger, err := services.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Warn("dotenv file not loaded, using process environment", zap.String("file", envFile))
	}

	// 텔레메트리 DB (선택)
	var (
		observer services.QueryObserver
		repo     *services.QueryLogRepository
	)
	db, err := services.OpenDatabase(cfg, logger)
	switch {
	case errors.Is(err, services.ErrDatabaseDisabled):
		logger.Warn("DB_DRIVER not set, query telemetry disabled")
	case err != nil:
		return err
	default:
		buffer := services.NewQueryLogBuffer(db, cfg.LogFlushSize, cfg.LogFlushInterval, logger)
		defer buffer.Stop() // 종료 시 남은 로그 저장
		observer = buffer
		repo = services.NewQueryLogRepository(db)
	}

	navigator := services.NewNavigator(cfg, observer, logger)
	layouts := services.NewLayoutStore(time.Now().UnixNano())

	hub := handlers.NewClientManager(logger)
	go hub.Start()
	defer hub.Stop()

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("habitat-nav server is running.")
	})
	handlers.New(navigator, layouts, repo, hub, logger).Register(app)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("server starting",
		zap.String("port", cfg.Port),
		zap.Float64("grid_resolution", navigator.Resolution()),
		zap.Bool("telemetry", repo != nil))
	if err := app.Listen(":" + cfg.Port); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
