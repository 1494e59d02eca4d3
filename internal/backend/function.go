package backend

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-agent-bridge/internal/config"
	"github.com/spec-kit/itsm-agent-bridge/internal/domain"
	"github.com/spec-kit/itsm-agent-bridge/internal/observability"
	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

// functionCaller is the subset of the Lambda client the invoker needs.
type functionCaller interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// FunctionInvoker calls the backend functions directly instead of going
// through the gateway. Payload shapes match the gateway transport so callers
// can treat the two as interchangeable.
type FunctionInvoker struct {
	client         functionCaller
	createFunction string
	lookupFunction string
	timeout        time.Duration
	logger         *zap.Logger
	metrics        *observability.Metrics
}

// NewFunctionInvoker constructs the direct-invocation transport.
func NewFunctionInvoker(cfg config.BackendConfig, awsCfg aws.Config, logger *zap.Logger, metrics *observability.Metrics) *FunctionInvoker {
	return &FunctionInvoker{
		client:         lambda.NewFromConfig(awsCfg),
		createFunction: cfg.CreateFunctionName,
		lookupFunction: cfg.LookupFunctionName,
		timeout:        cfg.CallTimeout(),
		logger:         logger,
		metrics:        metrics,
	}
}

// CreateTicket invokes the create function with the normalized payload.
func (f *FunctionInvoker) CreateTicket(ctx context.Context, ticket domain.CreateTicket) (*CreateResult, error) {
	var result CreateResult
	if err := f.invoke(ctx, f.createFunction, ticket, &result); err != nil {
		return nil, err
	}
	f.logger.Info("ticket created", zap.String("ticket_number", result.TicketNumber))
	return &result, nil
}

// LookupTicket invokes the lookup function with the ticket number payload.
func (f *FunctionInvoker) LookupTicket(ctx context.Context, ticketNumber string) (*domain.TicketRecord, error) {
	payload := map[string]string{"ticketNumber": ticketNumber}

	var record domain.TicketRecord
	if err := f.invoke(ctx, f.lookupFunction, payload, &record); err != nil {
		return nil, err
	}
	f.logger.Info("ticket lookup completed", zap.String("ticket_number", ticketNumber))
	return &record, nil
}

func (f *FunctionInvoker) invoke(ctx context.Context, functionName string, payload any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	body, err := json.Marshal(payload)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	resp, err := f.client.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        body,
	})
	if err != nil {
		f.logger.Warn("function invocation failed", zap.String("function", functionName), zap.Error(err))
		return classifyTransportError(err)
	}

	status := 200
	if resp.StatusCode != 0 {
		status = int(resp.StatusCode)
	}
	f.metrics.RecordUpstreamCall(functionName, status)

	if resp.FunctionError != nil {
		return apperrors.NewUpstreamHTTPError(500, string(resp.Payload))
	}
	if err := json.Unmarshal(resp.Payload, out); err != nil {
		return apperrors.NewMalformedUpstream(err)
	}
	return nil
}
