package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/spec-kit/itsm-agent-bridge/internal/api/action"
	"github.com/spec-kit/itsm-agent-bridge/internal/backend"
	"github.com/spec-kit/itsm-agent-bridge/internal/config"
	"github.com/spec-kit/itsm-agent-bridge/internal/normalizer"
	"github.com/spec-kit/itsm-agent-bridge/internal/observability"
)

var handler *action.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Backend.Region))
	if err != nil {
		log.Fatalf("failed to load aws config: %v", err)
	}

	metrics := observability.NewMetrics()
	invoker := backend.New(cfg.Backend, awsCfg, logger, metrics)
	handler = action.NewHandler(invoker, logger)
}

func main() {
	lambda.Start(func(ctx context.Context, req normalizer.ActionRequest) (any, error) {
		return handler.Handle(ctx, req), nil
	})
}
