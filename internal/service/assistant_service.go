package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/itsm-agent-bridge/internal/backend"
	"github.com/spec-kit/itsm-agent-bridge/internal/domain"
	"github.com/spec-kit/itsm-agent-bridge/internal/envelope"
	"github.com/spec-kit/itsm-agent-bridge/internal/events"
	"github.com/spec-kit/itsm-agent-bridge/internal/knowledge"
	"github.com/spec-kit/itsm-agent-bridge/internal/normalizer"
	"github.com/spec-kit/itsm-agent-bridge/internal/session"
	apperrors "github.com/spec-kit/itsm-agent-bridge/pkg/util"
)

const degradedReply = "I'm having trouble processing that request right now."

// Responder produces a free-form reply for prompts no tool handles.
type Responder interface {
	Reply(ctx context.Context, prompt string) (string, error)
}

// KnowledgeQuerier performs knowledge-base queries.
type KnowledgeQuerier interface {
	Query(ctx context.Context, query string) ([]knowledge.QueryResult, error)
}

// AssistantService routes conversational prompts onto the backend tools and
// shapes their results into the conversational envelope.
type AssistantService struct {
	invoker    backend.Invoker
	retriever  KnowledgeQuerier
	responder  Responder
	sessions   *session.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AssistantDependencies bundles collaborators for the assistant.
type AssistantDependencies struct {
	Invoker    backend.Invoker
	Retriever  KnowledgeQuerier
	Responder  Responder
	Sessions   *session.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAssistantService constructs the service. Sessions and Responder may be
// nil; tool outputs do not depend on either.
func NewAssistantService(deps AssistantDependencies) *AssistantService {
	return &AssistantService{
		invoker:    deps.Invoker,
		retriever:  deps.Retriever,
		responder:  deps.Responder,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// HandleMessage classifies the prompt, executes the matching tool and wraps
// the outcome. All failures terminate inside this boundary as a structured
// reply; nothing propagates as an unstructured fault.
func (s *AssistantService) HandleMessage(ctx context.Context, sessionID, message string) envelope.Reply {
	if strings.TrimSpace(message) == "" {
		return envelope.Reply{
			StatusCode: http.StatusBadRequest,
			SessionID:  sessionID,
			Message:    "No prompt provided.",
		}
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	s.recordTurn(ctx, sessionID, "user", message)

	var reply envelope.Reply
	switch normalizer.ClassifyIntent(message) {
	case normalizer.IntentCreateTicket:
		reply = s.createTicket(ctx, sessionID, message)
	case normalizer.IntentLookupTicket:
		reply = s.lookupTicket(ctx, sessionID, message)
	case normalizer.IntentKnowledge:
		reply = s.queryKnowledge(ctx, sessionID, message)
	default:
		reply = s.generalConversation(ctx, message)
	}

	reply.SessionID = sessionID
	s.recordTurn(ctx, sessionID, "assistant", reply.Message)
	return reply
}

func (s *AssistantService) createTicket(ctx context.Context, sessionID, message string) envelope.Reply {
	ticket, err := domain.NormalizeCreate(inferTicketType(message), message, "", "")
	if err != nil {
		return errorReply(err, "Failed to create ticket")
	}

	result, err := s.invoker.CreateTicket(ctx, ticket)
	if err != nil {
		return errorReply(err, "Failed to create ticket")
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketCreated,
		SessionID: sessionID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: result.TicketNumber,
			TicketType:   string(ticket.Type),
			Impact:       string(ticket.Impact),
			Urgency:      string(ticket.Urgency),
		},
	})
	return envelope.Reply{
		StatusCode: http.StatusOK,
		Message:    fmt.Sprintf("I've created your ticket: %s", result.TicketNumber),
		Results:    []any{result},
	}
}

func (s *AssistantService) lookupTicket(ctx context.Context, sessionID, message string) envelope.Reply {
	ticketNumber, err := normalizer.ExtractTicketNumber(message)
	if err != nil {
		return envelope.Reply{
			StatusCode: http.StatusBadRequest,
			Message:    "Please provide a valid ticket number (e.g., INC12345678).",
		}
	}

	record, err := s.invoker.LookupTicket(ctx, ticketNumber)
	if err != nil {
		return errorReply(err, "Unable to retrieve ticket information")
	}

	s.publish(ctx, events.Event{
		Type:      events.EventTicketLookedUp,
		SessionID: sessionID,
		Payload: events.TicketLookedUpPayload{
			TicketNumber: ticketNumber,
			Status:       record.TicketStatus,
		},
	})
	return envelope.Reply{
		StatusCode: http.StatusOK,
		Message:    envelope.LookupSummary(record),
		Results:    []any{record},
	}
}

func (s *AssistantService) queryKnowledge(ctx context.Context, sessionID, message string) envelope.Reply {
	results, err := s.retriever.Query(ctx, message)
	if err != nil {
		return errorReply(err, "Knowledge base query failed")
	}
	if len(results) == 0 {
		return envelope.Reply{
			StatusCode: http.StatusOK,
			Message:    "I could not find relevant information in the knowledge base for your query.",
		}
	}

	top := results
	if len(top) > 3 {
		top = top[:3]
	}
	passages := make([]string, 0, len(top))
	wrapped := make([]any, 0, len(top))
	for _, result := range top {
		passages = append(passages, result.Content)
		wrapped = append(wrapped, result)
	}

	s.publish(ctx, events.Event{
		Type:      events.EventKnowledgeQuery,
		SessionID: sessionID,
		Payload: events.KnowledgeQueryPayload{
			Query:       message,
			ResultCount: len(results),
		},
	})
	return envelope.Reply{
		StatusCode: http.StatusOK,
		Message:    strings.Join(passages, "\n\n"),
		Results:    wrapped,
	}
}

func (s *AssistantService) generalConversation(ctx context.Context, message string) envelope.Reply {
	if s.responder == nil {
		return envelope.Reply{StatusCode: http.StatusOK, Message: degradedReply}
	}
	answer, err := s.responder.Reply(ctx, message)
	if err != nil {
		s.logger.Warn("general conversation fallback failed", zap.Error(err))
		return envelope.Reply{StatusCode: http.StatusOK, Message: degradedReply}
	}
	return envelope.Reply{StatusCode: http.StatusOK, Message: answer}
}

func (s *AssistantService) recordTurn(ctx context.Context, sessionID, role, content string) {
	if s.sessions == nil || content == "" {
		return
	}
	err := s.sessions.Append(ctx, sessionID, session.Turn{Role: role, Content: content, At: time.Now().UTC()})
	if err != nil {
		s.logger.Warn("session append failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}

func (s *AssistantService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	event.ID = uuid.New().String()
	event.Timestamp = time.Now().UTC()
	_ = s.dispatcher.Publish(ctx, event)
}

// inferTicketType picks the ticket category from prompt wording; anything
// ambiguous lands on INC, matching the validator default.
func inferTicketType(message string) string {
	lowered := strings.ToLower(message)
	switch {
	case strings.Contains(lowered, "request") || strings.Contains(lowered, "access"):
		return string(domain.TicketTypeRequest)
	case strings.Contains(lowered, "change") || strings.Contains(lowered, "modify"):
		return string(domain.TicketTypeChange)
	default:
		return string(domain.TicketTypeIncident)
	}
}

func errorReply(err error, prefix string) envelope.Reply {
	domainErr := apperrors.ToDomainError(err)
	return envelope.Reply{
		StatusCode: domainErr.HTTPStatus,
		Message:    fmt.Sprintf("%s: %s", prefix, domainErr.Message),
	}
}
