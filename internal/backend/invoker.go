// Package backend performs the outbound ITSM API calls. Two transports are
// interchangeable given identical logical inputs and outputs: a SigV4-signed
// HTTP call through the API gateway, and direct invocation of the backend
// functions.
package backend

import (
	"context"
	"errors"
	"net"

	"github.com/aws/aws-sdk-go-v2/aws"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-agent-bridge/internal/config"
	"github.com/spec-kit/itsm-agent-bridge/internal/domain"
	"github.com/spec-kit/itsm-agent-bridge/internal/observability"
	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

// CreateResult is the backend's response to ticket creation.
type CreateResult struct {
	TicketNumber string `json:"ticketNumber"`
}

// Invoker abstracts the ITSM backend transport.
type Invoker interface {
	// CreateTicket submits a normalized creation request and returns the
	// assigned ticket number. Single attempt, bounded timeout.
	CreateTicket(ctx context.Context, ticket domain.CreateTicket) (*CreateResult, error)

	// LookupTicket fetches the record for a validated ticket number.
	LookupTicket(ctx context.Context, ticketNumber string) (*domain.TicketRecord, error)
}

// New selects the transport implementation from configuration.
func New(cfg config.BackendConfig, awsCfg aws.Config, logger *zap.Logger, metrics *observability.Metrics) Invoker {
	if cfg.Transport == config.TransportFunction {
		return NewFunctionInvoker(cfg, awsCfg, logger, metrics)
	}
	return NewGatewayInvoker(cfg, awsCfg, logger, metrics)
}

// classifyTransportError separates a timed-out call from an unreachable
// upstream. The two must surface as distinct status codes (408 vs 503).
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewTimeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewTimeout(err)
	}
	return apperrors.NewConnectionFailure(err)
}
