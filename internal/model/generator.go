// Package model wraps the hosted LLM for the general-conversation fallback
// path. Inference itself is delegated to the managed runtime.
package model

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"

	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

const anthropicVersion = "bedrock-2023-05-31"

// invokeAPI is the subset of the runtime client the generator needs.
type invokeAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Generator produces free-form replies from the configured model.
type Generator struct {
	client  invokeAPI
	modelID string
	timeout time.Duration
	logger  *zap.Logger
}

// NewGenerator constructs the model client.
func NewGenerator(awsCfg aws.Config, modelID string, timeout time.Duration, logger *zap.Logger) *Generator {
	return &Generator{
		client:  bedrockruntime.NewFromConfig(awsCfg),
		modelID: modelID,
		timeout: timeout,
		logger:  logger,
	}
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Reply generates a single-turn answer for the given prompt.
func (g *Generator) Reply(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        1000,
		Messages:         []anthropicMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}

	resp, err := g.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(g.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		g.logger.Warn("model invocation failed", zap.Error(err))
		return "", apperrors.NewInternalError(err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return "", apperrors.NewMalformedUpstream(err)
	}
	if len(parsed.Content) == 0 {
		return "", apperrors.NewMalformedUpstream(nil)
	}
	return parsed.Content[0].Text, nil
}
