// Package action implements the agent-platform tool-invocation adapters:
// one inbound action payload in, one backend call, one action envelope out.
package action

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/itsm-agent-bridge/internal/backend"
	"github.com/spec-kit/itsm-agent-bridge/internal/domain"
	"github.com/spec-kit/itsm-agent-bridge/internal/envelope"
	"github.com/spec-kit/itsm-agent-bridge/internal/normalizer"
	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

// Handler adapts action payloads onto the backend operations.
type Handler struct {
	invoker backend.Invoker
	logger  *zap.Logger
}

// NewHandler constructs the action adapter.
func NewHandler(invoker backend.Invoker, logger *zap.Logger) *Handler {
	return &Handler{invoker: invoker, logger: logger}
}

// Handle routes an action payload by its apiPath. Every failure is converted
// here into a structured error result; nothing faults past this boundary.
func (h *Handler) Handle(ctx context.Context, req normalizer.ActionRequest) any {
	switch strings.TrimSuffix(req.APIPath, "/") {
	case "/create", "create":
		return h.HandleCreate(ctx, req)
	case "/lookup", "lookup":
		return h.HandleLookup(ctx, req)
	default:
		h.logger.Warn("unknown apiPath", zap.String("api_path", req.APIPath))
		return errorResult(apperrors.NewDomainError(apperrors.CodeInvalidFormat,
			fmt.Sprintf("unsupported apiPath: %s", req.APIPath), 400, nil))
	}
}

// HandleCreate services the /create action.
func (h *Handler) HandleCreate(ctx context.Context, req normalizer.ActionRequest) any {
	rawType, _ := req.Property("tickettype")
	description, _ := req.Property("description")
	impact, _ := req.Property("impact")
	urgency, _ := req.Property("urgency")

	ticket, err := domain.NormalizeCreate(rawType, description, impact, urgency)
	if err != nil {
		h.logger.Error("create validation failed", zap.Error(err))
		return errorResult(err)
	}

	result, err := h.invoker.CreateTicket(ctx, ticket)
	if err != nil {
		h.logger.Error("create call failed", zap.Error(err))
		return errorResult(err)
	}
	return envelope.ShapeCreateAction(req, result)
}

// HandleLookup services the /lookup action.
func (h *Handler) HandleLookup(ctx context.Context, req normalizer.ActionRequest) any {
	raw, err := req.RequireProperty("ticketNumber")
	if err != nil {
		h.logger.Error("lookup missing ticketNumber", zap.Error(err))
		return errorResult(err)
	}
	ticketNumber, err := domain.ValidateTicketNumber(raw)
	if err != nil {
		h.logger.Error("lookup validation failed", zap.Error(err))
		return errorResult(err)
	}

	record, err := h.invoker.LookupTicket(ctx, ticketNumber)
	if err != nil {
		h.logger.Error("lookup call failed", zap.Error(err))
		return errorResult(err)
	}
	return envelope.ShapeLookupAction(req, record)
}

func errorResult(err error) envelope.ErrorResult {
	domainErr := apperrors.ToDomainError(err)
	return envelope.ErrorResult{
		StatusCode: domainErr.HTTPStatus,
		Body:       fmt.Sprintf("Error: %s", domainErr.Message),
	}
}
