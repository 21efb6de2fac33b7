package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/junepark678/ebsi-csat/internal/api"
	"github.com/junepark678/ebsi-csat/internal/cache"
	"github.com/junepark678/ebsi-csat/internal/config"
	"github.com/junepark678/ebsi-csat/internal/ebsi"
	"github.com/junepark678/ebsi-csat/internal/repo"
	"github.com/junepark678/ebsi-csat/internal/scheduler"
	"github.com/junepark678/ebsi-csat/internal/sidebar"
	"github.com/junepark678/ebsi-csat/pkg/logger"
)

func main() {
	godotenv.Load()
	cfg := config.Load()
	logger.Init(logger.IsDev(), cfg.LogLevel)
	log := logger.Log

	client := ebsi.New(ebsi.Config{
		SearchURL:            cfg.SearchURL,
		SearchReferer:        cfg.SearchReferer,
		StatsURL:             cfg.StatsURL,
		StatsReferer:         cfg.StatsReferer,
		WorksheetURL:         cfg.WorksheetURL,
		WorksheetReferer:     cfg.WorksheetReferer,
		WorksheetSubjectID:   cfg.WorksheetSubjectID,
		WorksheetPaperTypeID: cfg.WorksheetPaperTypeID,
		Cookie:               cfg.Cookie,
		Timeout:              cfg.RequestTimeout,
		RateLimit:            cfg.RateLimit,
	})

	opts := []sidebar.Option{sidebar.WithConcurrency(cfg.StatsConcurrency)}

	// Stats cache is optional
	if cfg.RedisURL != "" {
		statsCache, err := cache.NewStatsCache(cfg.RedisURL, cfg.StatsCacheTTL)
		if err != nil {
			log.Warn().Err(err).Msg("stats cache disabled")
		} else {
			defer statsCache.Close()
			opts = append(opts, sidebar.WithStatsCache(statsCache))
			log.Info().Dur("ttl", statsCache.TTL()).Msg("stats cache enabled")
		}
	}

	var history api.WorksheetHistory
	if cfg.MongoURL != "" {
		connectCtx, connectCancel := context.WithTimeout(context.Background(), 10*time.Second)
		mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURL))
		connectCancel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to MongoDB")
		}
		defer mongoClient.Disconnect(context.Background())

		history = repo.NewWorksheetRepo(mongoClient.Database(cfg.MongoDB))
		log.Info().Str("db", cfg.MongoDB).Msg("worksheet history enabled")
	}

	sessions := api.NewSessionStore(func() *sidebar.Controller {
		return sidebar.New(client, opts...)
	})
	handler := api.NewHandler(sessions, history, cfg.RequestTimeout*3)

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		Immutable:             true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Error().Err(err).Str("path", c.Path()).Msg("request error")
			return c.Status(500).JSON(fiber.Map{"error": err.Error()})
		},
	})
	app.Use(cors.New())
	api.SetupRoutes(app, handler)

	sweeper := scheduler.New(sessions, cfg.SessionSweepInterval, cfg.SessionIdleTTL)
	if err := sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start session sweeper")
	}
	defer sweeper.Stop()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down")
		app.Shutdown()
	}()

	addr := ":" + cfg.HTTPPort
	log.Info().
		Str("addr", addr).
		Str("search_url", cfg.SearchURL).
		Int("stats_concurrency", cfg.StatsConcurrency).
		Msg("sidebar service started")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("HTTP server error")
	}
}
