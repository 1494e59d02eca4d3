// Package envelope reshapes backend responses into the formats the calling
// context expects: the agent-platform action response schema, or the
// simplified conversational reply. Field selection and formatting only; no
// business logic.
package envelope

import (
	"strings"

	"github.com/spec-kit/itsm-agent-bridge/internal/backend"
	"github.com/spec-kit/itsm-agent-bridge/internal/domain"
	"github.com/spec-kit/itsm-agent-bridge/internal/normalizer"
)

// ActionResponse is the agent-platform action response envelope.
type ActionResponse struct {
	Response       ActionBody `json:"response"`
	MessageVersion float64    `json:"messageVersion"`
}

// ActionBody echoes the invocation coordinates and carries the result body.
type ActionBody struct {
	ActionGroup    string                    `json:"actionGroup"`
	APIPath        string                    `json:"apiPath"`
	HTTPMethod     string                    `json:"httpMethod"`
	HTTPStatusCode int                       `json:"httpStatusCode"`
	ResponseBody   map[string]ContentPayload `json:"responseBody"`
}

// ContentPayload wraps the stringified result fields per content type.
type ContentPayload struct {
	Body map[string]string `json:"body"`
}

// Reply is the conversational response envelope.
type Reply struct {
	StatusCode int    `json:"statusCode"`
	SessionID  string `json:"sessionId,omitempty"`
	Message    string `json:"message"`
	Results    []any  `json:"toolResults,omitempty"`
}

// ErrorResult is the terminal failure shape for the action format.
type ErrorResult struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// ShapeLookupAction renders a ticket record into the action envelope. Every
// field is coerced to its string form, absent optional fields become the
// literal "None" to match the downstream contract.
func ShapeLookupAction(req normalizer.ActionRequest, record *domain.TicketRecord) ActionResponse {
	body := map[string]string{
		"ticketStatus":  record.TicketStatus,
		"ticketDesc":    domain.StringOrNone(record.TicketDesc),
		"ticketImpact":  domain.StringOrNone(record.TicketImpact),
		"ticketUrgency": domain.StringOrNone(record.TicketUrgency),
		"createdAt":     domain.StringOrNone(record.CreatedAt),
	}
	return wrapAction(req, body)
}

// ShapeCreateAction renders a creation result into the action envelope.
func ShapeCreateAction(req normalizer.ActionRequest, result *backend.CreateResult) ActionResponse {
	body := map[string]string{
		"ticketNumber": result.TicketNumber,
	}
	return wrapAction(req, body)
}

// LookupSummary builds the natural-language ticket summary, labels in the
// fixed order Status, Description, Impact, Urgency. Only present fields are
// included.
func LookupSummary(record *domain.TicketRecord) string {
	var b strings.Builder
	b.WriteString("Ticket Status: ")
	b.WriteString(record.TicketStatus)
	if record.TicketDesc != nil {
		b.WriteString("\nDescription: ")
		b.WriteString(*record.TicketDesc)
	}
	if record.TicketImpact != nil {
		b.WriteString("\nImpact: ")
		b.WriteString(*record.TicketImpact)
	}
	if record.TicketUrgency != nil {
		b.WriteString("\nUrgency: ")
		b.WriteString(*record.TicketUrgency)
	}
	return b.String()
}

func wrapAction(req normalizer.ActionRequest, body map[string]string) ActionResponse {
	version := req.MessageVersion
	if version == 0 {
		version = 1
	}
	return ActionResponse{
		Response: ActionBody{
			ActionGroup:    req.ActionGroup,
			APIPath:        req.APIPath,
			HTTPMethod:     req.HTTPMethod,
			HTTPStatusCode: 200,
			ResponseBody: map[string]ContentPayload{
				"application/json": {Body: body},
			},
		},
		MessageVersion: version,
	}
}
