package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/itsm-agent-bridge/internal/api/http"
	"github.com/spec-kit/itsm-agent-bridge/internal/api/http/handlers"
	"github.com/spec-kit/itsm-agent-bridge/internal/backend"
	"github.com/spec-kit/itsm-agent-bridge/internal/cache"
	"github.com/spec-kit/itsm-agent-bridge/internal/config"
	"github.com/spec-kit/itsm-agent-bridge/internal/events"
	"github.com/spec-kit/itsm-agent-bridge/internal/knowledge"
	"github.com/spec-kit/itsm-agent-bridge/internal/model"
	"github.com/spec-kit/itsm-agent-bridge/internal/observability"
	"github.com/spec-kit/itsm-agent-bridge/internal/persistence"
	"github.com/spec-kit/itsm-agent-bridge/internal/service"
	"github.com/spec-kit/itsm-agent-bridge/internal/session"
	"github.com/spec-kit/itsm-agent-bridge/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Backend.Region))
	if err != nil {
		logger.Fatal("failed to load aws config", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var queryCache cache.Store
	var sessions *session.Store
	if redis != nil {
		queryCache = cache.NewRedisStore(redis.Client, cfg.Knowledge.CacheTTL())
		sessions = session.NewStore(redis.Client, cfg.Knowledge.CacheTTL(), 20)
	} else {
		queryCache = cache.NewMemoryStore(cfg.Knowledge.CacheTTL(), cfg.Knowledge.CacheCapacity)
	}

	invoker := backend.New(cfg.Backend, awsCfg, logger, metrics)
	retriever := knowledge.NewRetriever(cfg.Knowledge, awsCfg, cfg.Backend.CallTimeout(), queryCache, logger, metrics)
	generator := model.NewGenerator(awsCfg, cfg.Knowledge.ModelID, cfg.Backend.CallTimeout(), logger)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	worker.StartNotificationWorker(notificationService)

	assistant := service.NewAssistantService(service.AssistantDependencies{
		Invoker:    invoker,
		Retriever:  retriever,
		Responder:  generator,
		Sessions:   sessions,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis)
	assistantHandler := handlers.NewAssistantHandler(assistant)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    healthHandler,
		Assistant: assistantHandler,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
