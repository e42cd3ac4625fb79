package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"organquiz/internal/config"
	domain "organquiz/internal/domain/quiz"
	"organquiz/internal/infrastructure/imagegen"
	"organquiz/internal/infrastructure/logger"
	"organquiz/internal/infrastructure/observability"
	"organquiz/internal/infrastructure/storage"
	"organquiz/internal/interfaces/httpserver"
)

// @title Organ Quiz API
// @version 1.0
// @description Image-based multiple-choice quiz backed by AWS Bedrock image generation
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	pool, err := domain.LoadPool(cfg.SubjectFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("load subject pool")
	}
	log.Info().Int("subjects", pool.Size()).Msg("subject pool loaded")

	artifactStorage, err := storage.NewLocalStorage(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage")
	}
	if err := artifactStorage.Sweep(ctx); err != nil {
		log.Warn().Err(err).Msg("sweep stale artifacts")
	}

	imageClient, err := imagegen.NewClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize bedrock client")
	}

	roundGenerator := domain.NewRoundGenerator(pool, imageClient, cfg.PromptTemplate, log)
	quizService := domain.NewService(pool, roundGenerator, artifactStorage, log)

	httpServer := httpserver.New(cfg, log, quizService)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
