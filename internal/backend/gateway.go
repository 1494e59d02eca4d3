package backend

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-agent-bridge/internal/config"
	"github.com/spec-kit/itsm-agent-bridge/internal/domain"
	"github.com/spec-kit/itsm-agent-bridge/internal/observability"
	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

// signingService is the SigV4 scope for API gateway calls.
const signingService = "execute-api"

// GatewayInvoker reaches the ITSM backend through the API gateway with
// SigV4-signed requests.
type GatewayInvoker struct {
	baseURL     string
	region      string
	apiKey      string
	timeout     time.Duration
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	client      *http.Client
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
}

// NewGatewayInvoker constructs the signed HTTP transport.
func NewGatewayInvoker(cfg config.BackendConfig, awsCfg aws.Config, logger *zap.Logger, metrics *observability.Metrics) *GatewayInvoker {
	return &GatewayInvoker{
		baseURL:     cfg.BaseURL,
		region:      cfg.Region,
		apiKey:      cfg.APIKey,
		timeout:     cfg.CallTimeout(),
		credentials: awsCfg.Credentials,
		signer:      v4.NewSigner(),
		client:      &http.Client{},
		logger:      logger,
		metrics:     metrics,
		now:         time.Now,
	}
}

// CreateTicket POSTs the creation payload to {base}/create.
func (g *GatewayInvoker) CreateTicket(ctx context.Context, ticket domain.CreateTicket) (*CreateResult, error) {
	body, err := json.Marshal(ticket)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	var result CreateResult
	if err := g.do(ctx, http.MethodPost, "/create", nil, body, &result); err != nil {
		return nil, err
	}
	g.logger.Info("ticket created", zap.String("ticket_number", result.TicketNumber))
	return &result, nil
}

// LookupTicket GETs {base}/lookup with the ticket number as a query param.
func (g *GatewayInvoker) LookupTicket(ctx context.Context, ticketNumber string) (*domain.TicketRecord, error) {
	query := url.Values{"ticketNumber": []string{ticketNumber}}

	var record domain.TicketRecord
	if err := g.do(ctx, http.MethodGet, "/lookup", query, nil, &record); err != nil {
		return nil, err
	}
	g.logger.Info("ticket lookup completed", zap.String("ticket_number", ticketNumber))
	return &record, nil
}

// do builds, signs and issues one request, decoding a 2xx JSON body into out.
func (g *GatewayInvoker) do(ctx context.Context, method, path string, query url.Values, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	callURL := g.baseURL + path
	if len(query) > 0 {
		callURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, callURL, reader)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	// The Host header participates in the canonical request; signing fails
	// verification without it.
	req.Host = req.URL.Host
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set("x-api-key", g.apiKey)
	}

	payloadHash := hashPayload(body)
	if method == http.MethodPost {
		req.Header.Set("x-amz-content-sha256", payloadHash)
	}

	creds, err := g.credentials.Retrieve(ctx)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := g.signer.SignHTTP(ctx, creds, req, payloadHash, signingService, g.region, g.now().UTC()); err != nil {
		return apperrors.NewInternalError(err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Warn("backend call failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return classifyTransportError(err)
	}
	defer resp.Body.Close()

	g.metrics.RecordUpstreamCall(path, resp.StatusCode)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperrors.NewUpstreamHTTPError(resp.StatusCode, string(respBody))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.NewMalformedUpstream(err)
	}
	return nil
}

func hashPayload(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
