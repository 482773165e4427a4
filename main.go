package main

import (
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"payment-gateway/domain/payment"
	"payment-gateway/infrastructure/config"
	"payment-gateway/infrastructure/database"
	"payment-gateway/infrastructure/health"
	"payment-gateway/infrastructure/queue"
	"payment-gateway/infrastructure/service"
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	debug.SetGCPercent(500)

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if lvl, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := database.NewPostgres(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer db.Close()

	redisClient, err := database.NewRedis(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisClient.Close()

	paymentQueue, err := queue.NewPaymentQueue(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("queue setup failed")
	}
	defer paymentQueue.Close()

	paymentRepo := payment.NewRepository(db)
	healthCache := health.NewCache(redisClient, cfg)
	processorClient := service.NewClient(cfg)

	paymentService := payment.NewService(paymentRepo, paymentQueue)
	orchestrator := payment.NewOrchestrator(paymentRepo, healthCache, processorClient, cfg)

	consumer := payment.NewConsumer(paymentQueue, orchestrator, cfg)
	defer consumer.Close()

	go func() {
		if err := consumer.Start(); err != nil {
			log.Fatal().Err(err).Msg("consumer failed")
		}
	}()

	api := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		Concurrency:           2048,
		DisableStartupMessage: true,
		BodyLimit:             1 * 1024 * 1024,
		StreamRequestBody:     true,
	})
	payment.NewController(paymentService, paymentQueue).InitRoutes(api)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info().Msg("shutting down")
		_ = api.Shutdown()
	}()

	if err := api.Listen(":" + cfg.ServerPort); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
